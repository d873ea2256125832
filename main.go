package main

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/cashdesk-server/api"
	"github.com/carson-networks/cashdesk-server/internal/cari"
	"github.com/carson-networks/cashdesk-server/internal/config"
	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/events/kafka"
	"github.com/carson-networks/cashdesk-server/internal/journal"
	"github.com/carson-networks/cashdesk-server/internal/logging"
	"github.com/carson-networks/cashdesk-server/internal/operator"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
	"github.com/carson-networks/cashdesk-server/internal/service"
	"github.com/carson-networks/cashdesk-server/internal/storage"
)

func main() {
	logger := logging.SetupLogging()
	logrus.Info("cashdesk-server starting")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	dbStorage := storage.NewStorage(envConfig)
	svc := service.NewService(dbStorage)

	var publisher events.Publisher = events.NopPublisher{}
	if envConfig.KafkaBrokers != "" {
		kafkaPublisher := kafka.NewPublisher(envConfig.KafkaBrokers, envConfig.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	deps := &actions.Deps{
		Journal: journal.NewLedgerPoster(),
		Settler: cari.NewBatchSettler(),
	}

	delegator := operator.NewOperatorDelegator(dbStorage, deps, publisher, envConfig.NumWorkers)
	delegator.Start()
	defer delegator.Stop()

	wg := sync.WaitGroup{}
	wg.Add(1)

	go func() {
		httpRest := api.Rest{
			Logger:   logger,
			Port:     envConfig.HTTPPort,
			Service:  svc,
			Operator: delegator,
		}
		httpRest.Serve()
	}()

	wg.Wait()
}
