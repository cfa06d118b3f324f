package modal

import (
	"context"
	"sync/atomic"

	"github.com/goliatone/go-gridform/pkg/adminerr"
)

// Fixed labels of the delete confirmation.
const (
	DeleteMessage      = "삭제하시겠습니까?"
	DeleteConfirmLabel = "삭제"
	DeleteCancelLabel  = "취소"
	DiscardMessage     = "변경 사항을 저장하지 않고 닫으시겠습니까?"
	DiscardLabel       = "닫기"
)

// ErrBusy is returned when the confirm handler is already running.
var ErrBusy = adminerr.NewPrecondition(adminerr.CodeBusy, "처리 중입니다")

// DeleteConfirm is the two-button destructive confirmation. While the
// handler runs the trigger is reported busy and further runs are refused.
type DeleteConfirm struct {
	Message      string
	ConfirmLabel string
	CancelLabel  string

	confirm func(context.Context) error
	busy    atomic.Bool
}

// NewDeleteConfirm wraps confirm with the fixed layout.
func NewDeleteConfirm(confirm func(context.Context) error) *DeleteConfirm {
	return &DeleteConfirm{
		Message:      DeleteMessage,
		ConfirmLabel: DeleteConfirmLabel,
		CancelLabel:  DeleteCancelLabel,
		confirm:      confirm,
	}
}

// Busy reports whether the confirm trigger is disabled.
func (d *DeleteConfirm) Busy() bool { return d.busy.Load() }

// Run invokes the handler unless a run is already in progress. It does not
// cancel the running call.
func (d *DeleteConfirm) Run(ctx context.Context) error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer d.busy.Store(false)
	if d.confirm == nil {
		return nil
	}
	return d.confirm(ctx)
}
