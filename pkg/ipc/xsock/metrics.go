package xsock

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/omeyang/xipc/pkg/ipc/xsock"

	metricAcceptTotal   = "xsock.accept.total"
	metricHandlerPanics = "xsock.handler.panics"
	metricHandlerActive = "xsock.handler.active"

	attrKeyServer = "server"
	attrKeyResult = "result"

	resultAccepted = "accepted"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// serverMetrics 服务端指标。
type serverMetrics struct {
	accepts metric.Int64Counter
	panics  metric.Int64Counter
	active  metric.Int64UpDownCounter
	server  attribute.KeyValue
}

func newServerMetrics(mp metric.MeterProvider, title string) (*serverMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	accepts, err := meter.Int64Counter(metricAcceptTotal,
		metric.WithDescription("Connections accepted on local sockets, by result"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	panics, err := meter.Int64Counter(metricHandlerPanics,
		metric.WithDescription("Panics recovered from connection handlers"),
		metric.WithUnit("{panic}"),
	)
	if err != nil {
		return nil, err
	}
	active, err := meter.Int64UpDownCounter(metricHandlerActive,
		metric.WithDescription("Connection handlers currently running"),
		metric.WithUnit("{handler}"),
	)
	if err != nil {
		return nil, err
	}
	return &serverMetrics{
		accepts: accepts,
		panics:  panics,
		active:  active,
		server:  attribute.String(attrKeyServer, title),
	}, nil
}

func (m *serverMetrics) accept(result string) {
	m.accepts.Add(context.Background(), 1,
		metric.WithAttributes(m.server, attribute.String(attrKeyResult, result)))
}

func (m *serverMetrics) handlerPanic() {
	m.panics.Add(context.Background(), 1, metric.WithAttributes(m.server))
}

func (m *serverMetrics) handlerActive(delta int64) {
	m.active.Add(context.Background(), delta, metric.WithAttributes(m.server))
}
