package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const TraceIDKey ctxKey = "traceId"

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
		ForceColors:     true,
		DisableColors:   false,
	})
}

// SetDebug switches the standard logger to debug level.
func SetDebug(on bool) {
	if on {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// For returns an entry carrying the trace id attached to ctx, if any.
func For(ctx context.Context) *logrus.Entry {
	id, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logrus.WithField("trace_id", id)
}

// ContextWithID attaches a trace id to ctx for For to pick up.
func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

// Track logs the duration of an operation when the returned func runs.
func Track(ctx context.Context, msg string) func() {
	start := time.Now()
	return func() {
		dur := time.Since(start)
		entry := For(ctx).WithField("duration", dur.String())

		if dur > 500*time.Millisecond {
			entry.Warnf("%s completed (SLOW)", msg)
		} else {
			entry.Infof("%s completed", msg)
		}
	}
}
