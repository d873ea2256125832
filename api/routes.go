package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/settlement"
	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/status"
	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/transfer"
	"github.com/carson-networks/cashdesk-server/internal/logging"
	"github.com/carson-networks/cashdesk-server/internal/operator"
	"github.com/carson-networks/cashdesk-server/internal/service"
)

type Rest struct {
	Logger   *logrus.Logger
	Port     string
	Service  *service.Service
	Operator *operator.OperatorDelegator
}

func (r *Rest) Serve() {
	mux := http.NewServeMux()
	humaAPI := humago.New(mux, huma.DefaultConfig("cashdesk-server", "1.0.0"))
	humaAPI.UseMiddleware(logging.Middleware(r.Logger))
	humaAPI.UseMiddleware(scopeMiddleware(humaAPI))

	status.NewHandler().Register(humaAPI)

	cashtxn.NewCreateCashTransactionHandler(r.Operator).Register(humaAPI)
	cashtxn.NewPostCashTransactionHandler(r.Operator).Register(humaAPI)
	cashtxn.NewCancelCashTransactionHandler(r.Operator).Register(humaAPI)
	cashtxn.NewReverseCashTransactionHandler(r.Operator).Register(humaAPI)
	cashtxn.NewApplyCariHandler(r.Operator).Register(humaAPI)
	cashtxn.NewGetCashTransactionHandler(r.Service.CashTransaction).Register(humaAPI)
	cashtxn.NewListCashTransactionsHandler(r.Service.CashTransaction).Register(humaAPI)

	transfer.NewInitiateTransferHandler(r.Operator).Register(humaAPI)
	transfer.NewReceiveTransferHandler(r.Operator).Register(humaAPI)
	transfer.NewCancelTransferHandler(r.Operator).Register(humaAPI)
	transfer.NewGetTransferHandler(r.Service.Transfer).Register(humaAPI)
	transfer.NewListTransfersHandler(r.Service.Transfer).Register(humaAPI)

	settlement.NewListUnappliedCashHandler(r.Service.Settlement).Register(humaAPI)

	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           mux,
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	r.Logger.Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}
