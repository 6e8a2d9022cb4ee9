package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time reports the duration of an operation when the returned func runs.
// Pass a pointer to the caller's named error so failures are logged with
// their cause:
//
//	defer obs.Time(ctx, logger, "sequence stops")(&err)
func Time(ctx context.Context, logger *slog.Logger, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Error("operation failed",
				"req_id", reqID, "op", name, "dur_ms", dur.Milliseconds(), "error", *errp)
			return
		}
		logger.Debug("operation done",
			"req_id", reqID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
