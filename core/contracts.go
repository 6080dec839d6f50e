package core

import (
	"context"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RowStore is the relay row-query contract: a parameterized equality lookup
// against one logical table returning at most one row. A missing row is
// (nil, nil); only transport-level failures return an error.
type RowStore interface {
	FindRow(ctx context.Context, table string, key string, value string) (map[string]any, error)
}

// Replier sends a text payload into a channel through the relay's own reply
// endpoint. The relay ack is returned verbatim.
type Replier interface {
	Reply(ctx context.Context, roomID string, text string) (map[string]any, error)
}

// SessionSource fetches a fresh transient credential pair. Implementations
// must not cache: every privileged action acquires its own session.
type SessionSource interface {
	AcquireSession(ctx context.Context) (Session, error)
}
