package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	HTTPPort   string
	NumWorkers int

	// KafkaBrokers empty disables integration-event publishing.
	KafkaBrokers string
	KafkaTopic   string
}

func ProcessEnvironmentVariables() (*Config, error) {
	// Optional .env for local runs; absence is not an error.
	_ = godotenv.Load()

	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",
		HTTPPort:         "9446",
		NumWorkers:       4,
		KafkaTopic:       "cashdesk.integration-events",
	}

	if v := os.Getenv("POSTGRES_ADDRESS"); len(v) != 0 {
		env.PostgresAddress = v
	}

	if v := os.Getenv("POSTGRES_PORT"); len(v) != 0 {
		env.PostgresPort = v
	}

	if v := os.Getenv("POSTGRES_DB"); len(v) != 0 {
		env.PostgresDB = v
	}

	if v := os.Getenv("POSTGRES_USERNAME"); len(v) != 0 {
		env.PostgresUsername = v
	}

	if v := os.Getenv("POSTGRES_PASSWORD"); len(v) != 0 {
		env.PostgresPassword = v
	}

	if v := os.Getenv("HTTP_PORT"); len(v) != 0 {
		env.HTTPPort = v
	}

	if v := os.Getenv("NUM_WORKERS"); len(v) != 0 {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		env.NumWorkers = parsed
	}

	if v := os.Getenv("KAFKA_BROKERS"); len(v) != 0 {
		env.KafkaBrokers = v
	}

	if v := os.Getenv("KAFKA_TOPIC"); len(v) != 0 {
		env.KafkaTopic = v
	}

	return &env, nil
}

// PostgresURL assembles the connection string used by both the server and the
// migration runner.
func (c *Config) PostgresURL() string {
	return "postgres://" + c.PostgresUsername + ":" +
		c.PostgresPassword + "@" + c.PostgresAddress + ":" +
		c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}
