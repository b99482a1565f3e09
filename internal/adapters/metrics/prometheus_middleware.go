package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/remoteminer-go/internal/application/mediator"
)

// PrometheusMiddleware times every request and counts it by result. Requests
// are labelled with their bare type name, e.g. "ClaimRemoteSourceCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordRequest(mediator.RequestName(request), mediator.RequestKind(request), time.Since(start).Seconds(), err)

		return response, err
	}
}
