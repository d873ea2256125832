package storage

import (
	"context"
	"database/sql"
	"log"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/cashdesk-server/internal/config"
)

type Storage struct {
	DB     *sql.DB
	bobDB  bob.DB
	Reader *Reader
}

func NewStorage(env *config.Config) *Storage {
	db, err := sql.Open("postgres", env.PostgresURL())
	if err != nil {
		log.Fatal(err)
	}

	bobDB := bob.NewDB(db)
	return &Storage{
		DB:     db,
		bobDB:  bobDB,
		Reader: NewReader(bobDB),
	}
}

// Write opens a unit of work. The caller (normally the operator) owns
// Commit/Rollback; every multi-row mutation runs inside exactly one Writer.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.bobDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	writer := NewWriter(tx)
	return &writer, nil
}
