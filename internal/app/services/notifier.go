package services

import (
	"context"

	"github.com/oguzk/acadcore/internal/pkg/logger"
)

// NoticeKind classifies the logical notices emitted after a reassignment
type NoticeKind string

const (
	// NoticeAssigned goes to the newly assigned advisor
	NoticeAssigned NoticeKind = "ASSIGNED"
	// NoticeConfirmation goes to the assigning department owner
	NoticeConfirmation NoticeKind = "CONFIRMATION"
	// NoticeReassigned goes to the advisor replaced on the class, if any
	NoticeReassigned NoticeKind = "REASSIGNED"
)

// NoticePriority is the delivery priority hint for a notice
type NoticePriority string

const (
	PriorityNormal NoticePriority = "NORMAL"
	PriorityHigh   NoticePriority = "HIGH"
)

// Notice is one outbound notification. Delivery is owned by the external
// notification collaborator; the core only guarantees each notice is emitted
// once per successful reassignment.
type Notice struct {
	ID           string         `json:"id"`
	Kind         NoticeKind     `json:"kind"`
	RecipientID  int64          `json:"recipientId"`
	Message      string         `json:"message"`
	ClassDisplay string         `json:"classDisplay"`
	Priority     NoticePriority `json:"priority"`
}

// Notifier emits notices to the external notification collaborator
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// LogNotifier writes notices to the application log. Stand-in wiring for
// deployments without a notification backend.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the notice
func (n *LogNotifier) Notify(_ context.Context, notice Notice) {
	logger.Info().
		Str("noticeID", notice.ID).
		Str("kind", string(notice.Kind)).
		Int64("recipientID", notice.RecipientID).
		Str("classDisplay", notice.ClassDisplay).
		Str("priority", string(notice.Priority)).
		Msg(notice.Message)
}
