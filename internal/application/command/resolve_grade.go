package command

import (
	"context"
	"errors"
	"time"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/registration"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESOLVE GRADE COMMAND
// The teacher pressed a grade button: append the journal record and
// clear the topic in one transaction, retire the pending entry, and
// hand the transport everything it needs to notify both sides.
// ══════════════════════════════════════════════════════════════════════════════

// CacheInvalidator drops read-side cache entries after a grade lands:
// the group summary and the student row whose topic the transaction
// cleared behind the repository wrapper's back.
// Nil-safe at the call site: caching is optional at runtime.
type CacheInvalidator interface {
	InvalidateGroup(ctx context.Context, group student.GroupCode) error
	InvalidateStudent(ctx context.Context, id student.TelegramID) error
}

// UserLocker serializes mutations of one student's in-memory state.
type UserLocker interface {
	LockUser(id student.TelegramID) func()
}

// GradeOutcome is what the transport renders after a resolved grade.
type GradeOutcome struct {
	Submission *review.PendingSubmission
	Grade      review.Grade

	// Tally - сводка ученика, прочитанная в той же транзакции,
	// что и вставка записи: она уже учитывает новую оценку.
	Tally stats.Tally
}

// ResolveGradeHandler handles grade button presses.
type ResolveGradeHandler struct {
	pending     review.PendingTable
	grades      review.GradeRepository
	sessions    registration.Table
	locker      UserLocker
	invalidator CacheInvalidator
	reviewerID  student.TelegramID

	now func() time.Time
}

// NewResolveGradeHandler creates a new ResolveGradeHandler.
// locker and invalidator may be nil (no serialization, no cache).
func NewResolveGradeHandler(
	pending review.PendingTable,
	grades review.GradeRepository,
	sessions registration.Table,
	locker UserLocker,
	invalidator CacheInvalidator,
	reviewerID student.TelegramID,
) *ResolveGradeHandler {
	return &ResolveGradeHandler{
		pending:     pending,
		grades:      grades,
		sessions:    sessions,
		locker:      locker,
		invalidator: invalidator,
		reviewerID:  reviewerID,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Handle resolves a pending submission with the given grade.
// Check order: reviewer identity, grade bounds, pending lookup. A second
// press of the same button finds no pending entry and reports NotFound;
// the journal stays untouched, making the operation idempotent.
func (h *ResolveGradeHandler) Handle(ctx context.Context, reviewerID student.TelegramID, id review.SubmissionID, gradeValue int, feedback string) (*GradeOutcome, error) {
	if reviewerID != h.reviewerID {
		return nil, shared.NewDomainError("review", "Resolve", shared.ErrUnauthorized, "caller is not the designated reviewer")
	}

	grade, err := review.NewGrade(gradeValue)
	if err != nil {
		return nil, shared.WrapError("review", "Resolve", shared.ErrValueOutOfRange, "grade out of range", err)
	}

	sub, err := h.pending.Get(ctx, id)
	if err != nil {
		if errors.Is(err, review.ErrSubmissionNotFound) {
			return nil, shared.WrapError("review", "Resolve", shared.ErrNotFound, "submission already resolved or unknown", err)
		}
		return nil, storeFailure("review", "Resolve", err)
	}

	// Запись + снятие темы + чтение сводки - одна транзакция. При
	// ошибке хранилища ожидающая работа остаётся на месте: нажатие
	// можно повторить.
	tally, err := h.grades.ResolveGrade(ctx, review.GradeRecord{
		StudentID: sub.StudentID,
		Topic:     sub.Topic,
		Grade:     grade,
		Feedback:  feedback,
		GradedAt:  h.now(),
	})
	if err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			return nil, shared.WrapError("review", "Resolve", shared.ErrNotFound, "student row is gone", err)
		}
		return nil, storeFailure("review", "Resolve", err)
	}

	// Транзакция зафиксирована; снятие из таблицы ожидания строго
	// однократное.
	if _, err := h.pending.Remove(ctx, id); err != nil {
		return nil, shared.WrapError("review", "Resolve", shared.ErrNotFound, "submission already resolved", err)
	}

	// Сессия ученика возвращается к вводу темы - под блокировкой её
	// владельца: собственные шаги ученика могут идти параллельно с
	// нажатием учителя. Вызывающий уже держит блокировку учителя,
	// поэтому при совпадении идентификаторов повторный захват опущен.
	if h.locker != nil && sub.StudentID != reviewerID {
		unlock := h.locker.LockUser(sub.StudentID)
		defer unlock()
	}
	if sess, sessErr := h.sessions.Get(ctx, sub.StudentID); sessErr == nil {
		if sess.State == registration.StateAwaitingSubmission {
			_ = sess.ResetToTopic()
			_ = h.sessions.Put(ctx, sess)
		}
	}

	if h.invalidator != nil {
		// Ошибки инвалидации не откатывают оценку: кеш истечёт сам.
		_ = h.invalidator.InvalidateGroup(ctx, sub.Group)
		_ = h.invalidator.InvalidateStudent(ctx, sub.StudentID)
	}

	return &GradeOutcome{
		Submission: sub,
		Grade:      grade,
		Tally:      tally,
	}, nil
}
