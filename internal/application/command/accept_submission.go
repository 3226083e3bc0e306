package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/registration"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCEPT SUBMISSION COMMAND
// A video note arrived from a registered student with a declared topic:
// mint a submission id, snapshot the topic, and hand the transport a
// review payload for the teacher chat.
// ══════════════════════════════════════════════════════════════════════════════

// ReviewTicket is the payload the transport forwards to the reviewer.
type ReviewTicket struct {
	SubmissionID  review.SubmissionID
	StudentID     student.TelegramID
	StudentName   string
	Group         student.GroupCode
	Topic         string
	StudentChatID int64

	// Tally - сводка ученика на момент подачи, для сообщения учителю.
	Tally stats.Tally
}

// AcceptSubmissionHandler correlates incoming artifacts with students.
type AcceptSubmissionHandler struct {
	students student.Repository
	sessions registration.Table
	pending  review.PendingTable
	ledger   stats.Ledger

	newID func() string
	now   func() time.Time
}

// NewAcceptSubmissionHandler creates a new AcceptSubmissionHandler.
func NewAcceptSubmissionHandler(
	students student.Repository,
	sessions registration.Table,
	pending review.PendingTable,
	ledger stats.Ledger,
) *AcceptSubmissionHandler {
	return &AcceptSubmissionHandler{
		students: students,
		sessions: sessions,
		pending:  pending,
		ledger:   ledger,
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle accepts a submission from the given student.
// Returns shared.ErrNotFound when the student is unregistered and
// shared.ErrInvalidState when no topic is declared; in the latter case
// the session is routed back to the topic step and nothing is pending.
func (h *AcceptSubmissionHandler) Handle(ctx context.Context, userID student.TelegramID, chatID int64) (*ReviewTicket, error) {
	s, err := h.students.GetByTelegramID(ctx, userID)
	if err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			return nil, shared.WrapError("review", "Accept", shared.ErrNotFound, "student not registered", err)
		}
		return nil, storeFailure("review", "Accept", err)
	}

	if !s.HasTopic() {
		// Возвращаем сессию к вводу темы; работа не принимается.
		if sess, sessErr := h.sessions.Get(ctx, userID); sessErr == nil {
			if sess.State == registration.StateAwaitingSubmission {
				_ = sess.ResetToTopic()
				_ = h.sessions.Put(ctx, sess)
			}
		}
		return nil, shared.NewDomainError("review", "Accept", shared.ErrInvalidState, "no declared topic")
	}

	tally, err := h.ledger.TallyForUser(ctx, userID)
	if err != nil {
		return nil, storeFailure("review", "Accept", err)
	}

	sub := &review.PendingSubmission{
		ID:            review.SubmissionID(h.newID()),
		StudentID:     userID,
		StudentName:   s.FullName,
		Group:         s.Group,
		Topic:         s.Topic(),
		StudentChatID: chatID,
		AcceptedAt:    h.now(),
	}

	if err := h.pending.Put(ctx, sub); err != nil {
		return nil, storeFailure("review", "Accept", err)
	}

	return &ReviewTicket{
		SubmissionID:  sub.ID,
		StudentID:     sub.StudentID,
		StudentName:   sub.StudentName,
		Group:         sub.Group,
		Topic:         sub.Topic,
		StudentChatID: sub.StudentChatID,
		Tally:         tally,
	}, nil
}

// AttachMessages records the reviewer-chat message ids on the pending
// entry so they can be retracted when the grade lands.
func (h *AcceptSubmissionHandler) AttachMessages(ctx context.Context, id review.SubmissionID, forwardedID, infoID int) error {
	err := h.pending.Update(ctx, id, func(sub *review.PendingSubmission) {
		sub.ForwardedMessageID = forwardedID
		sub.InfoMessageID = infoID
	})
	if err != nil {
		return shared.WrapError("review", "AttachMessages", shared.ErrNotFound, "pending submission gone", err)
	}
	return nil
}

// Discard drops a pending entry after the transport failed to deliver
// it to the reviewer; the student can resubmit.
func (h *AcceptSubmissionHandler) Discard(ctx context.Context, id review.SubmissionID) {
	_, _ = h.pending.Remove(ctx, id)
}
