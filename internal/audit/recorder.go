// Package audit writes action log entries for privileged operations.
package audit

import (
	"context"
	"errors"

	"github.com/hongminglow/dbgate/internal/common"
	"github.com/hongminglow/dbgate/internal/logging"
	"github.com/hongminglow/dbgate/internal/storage"
)

// Recorder mirrors every entry to the structured logger and to the action_log
// table. A failed database write is logged and otherwise ignored.
type Recorder struct {
	store storage.AuditStore
	log   logging.Logger
}

func NewRecorder(store storage.AuditStore, log logging.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record writes one entry. userID may be nil for anonymous actions. The write
// survives cancellation of ctx: a backup that already ran must still be logged
// after its client went away.
func (r *Recorder) Record(ctx context.Context, title string, userID *int64) {
	args := []any{"action", title}
	if userID != nil {
		args = append(args, "user_id", *userID)
	}
	if err := r.store.AddActionLog(context.WithoutCancel(ctx), title, userID); err != nil {
		r.log.Error(ctx, "write action log", append(args, "err", err)...)
	}
	r.log.Info(ctx, "action", args...)
}

// Outcome records op when err is nil and op_ERROR when err is unexpected.
// Expected domain errors (not found, denied, conflicts) are not audited.
func (r *Recorder) Outcome(ctx context.Context, op string, userID int64, err error) {
	switch {
	case err == nil:
		r.Record(ctx, op, &userID)
	case errors.Is(common.Kind(err), common.ErrUnexpected):
		r.log.Error(ctx, "operation failed", "action", op, "user_id", userID, "err", err)
		r.Record(ctx, op+"_ERROR", &userID)
	}
}
