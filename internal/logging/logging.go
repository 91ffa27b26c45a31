// Package logging configures logrus and carries request-scoped log entries
// through context.Context.
package logging

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// Init sets the global level and formatter.  Production environments log
// JSON so the output can be shipped as-is; everything else gets the text
// formatter with full timestamps.
func Init(env, level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	if env == "prod" || env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// ToContext stores entry in ctx.
func ToContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the entry stored by ToContext, or a fresh entry on the
// standard logger when none is present.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok && entry != nil {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
