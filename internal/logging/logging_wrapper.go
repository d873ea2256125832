package logging

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
)

// Middleware wires a fresh LogData into every request context and emits one
// summary line per request with all collected fields and timings.
func Middleware(log *logrus.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		logData := NewLogData(log)
		logData.AddData("operation", ctx.Operation().OperationID)

		endTimer := logData.AddTiming("duration")
		next(huma.WithContext(ctx, WithLogData(ctx.Context(), logData)))
		endTimer()

		logData.AddData("status", ctx.Status())
		logData.Log().Infof("Handler.%v.Complete", ctx.Operation().OperationID)
	}
}
