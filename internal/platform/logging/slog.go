package logging

import (
	"log/slog"
	"os"
)

// New builds the service-wide JSON logger. Every record carries the
// host and service name so log lines from different instances stay
// distinguishable after aggregation.
func New(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format("2006-01-02T15:04:05Z07:00"))
			}
			if a.Key == slog.MessageKey {
				return slog.String("message", a.Value.String())
			}
			return a
		},
	})

	logger := slog.New(handler)
	host, err := os.Hostname()
	if err != nil {
		logger.Error("cant get host name", "error", err)
		os.Exit(1)
	}
	return logger.With("host", host, "service", service)
}
