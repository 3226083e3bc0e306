// Package command contains write operations (CQRS - Commands).
// Commands drive the registration state machine, the submission
// correlator, and the grade journal.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/registration"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION COMMANDS
// One handler drives every step of the registration state machine:
// name, paginated group choice, confirmation, topic declaration.
// ══════════════════════════════════════════════════════════════════════════════

// StepKind tells the transport which reply to render after a step.
type StepKind string

const (
	// StepAskName - просим полное имя.
	StepAskName StepKind = "ask_name"
	// StepAskGroup - показываем клавиатуру групп.
	StepAskGroup StepKind = "ask_group"
	// StepConfirmGroup - просим подтвердить выбранную группу.
	StepConfirmGroup StepKind = "confirm_group"
	// StepAskTopic - регистрация завершена, просим тему.
	StepAskTopic StepKind = "ask_topic"
	// StepAwaitSubmission - тема принята, ждём видеозапись.
	StepAwaitSubmission StepKind = "await_submission"
)

// StepResult is what the transport renders after a registration step.
type StepResult struct {
	Kind    StepKind
	Session *registration.Session
	Student *student.Student
}

// RegistrationHandler drives the registration state machine.
type RegistrationHandler struct {
	sessions registration.Table
	students student.Repository
	roster   *student.Roster
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(
	sessions registration.Table,
	students student.Repository,
	roster *student.Roster,
) *RegistrationHandler {
	return &RegistrationHandler{
		sessions: sessions,
		students: students,
		roster:   roster,
	}
}

// Roster returns the configured group roster.
func (h *RegistrationHandler) Roster() *student.Roster {
	return h.roster
}

// Start handles /start: returning students shortcut straight to the
// topic step, new ones get a fresh session asking for a name.
func (h *RegistrationHandler) Start(ctx context.Context, userID student.TelegramID) (*StepResult, error) {
	existing, err := h.students.GetByTelegramID(ctx, userID)
	switch {
	case err == nil:
		sess := registration.NewReturningSession(userID)
		if err := h.sessions.Put(ctx, sess); err != nil {
			return nil, storeFailure("registration", "Start", err)
		}
		return &StepResult{Kind: StepAskTopic, Session: sess, Student: existing}, nil

	case errors.Is(err, student.ErrStudentNotFound):
		sess := registration.NewSession(userID)
		if err := h.sessions.Put(ctx, sess); err != nil {
			return nil, storeFailure("registration", "Start", err)
		}
		return &StepResult{Kind: StepAskName, Session: sess}, nil

	default:
		return nil, storeFailure("registration", "Start", err)
	}
}

// SubmitName handles the free-text name step.
func (h *RegistrationHandler) SubmitName(ctx context.Context, userID student.TelegramID, text string) (*StepResult, error) {
	sess, err := h.session(ctx, userID, "SubmitName")
	if err != nil {
		return nil, err
	}

	if err := sess.SetName(text); err != nil {
		return nil, stepFailure("SubmitName", err)
	}
	if err := h.sessions.Put(ctx, sess); err != nil {
		return nil, storeFailure("registration", "SubmitName", err)
	}

	return &StepResult{Kind: StepAskGroup, Session: sess}, nil
}

// ChooseGroup handles a group button press; the choice still needs
// confirmation because group is immutable after registration.
func (h *RegistrationHandler) ChooseGroup(ctx context.Context, userID student.TelegramID, code student.GroupCode) (*StepResult, error) {
	sess, err := h.session(ctx, userID, "ChooseGroup")
	if err != nil {
		return nil, err
	}

	if err := sess.ProposeGroup(code, h.roster); err != nil {
		return nil, stepFailure("ChooseGroup", err)
	}
	if err := h.sessions.Put(ctx, sess); err != nil {
		return nil, storeFailure("registration", "ChooseGroup", err)
	}

	return &StepResult{Kind: StepConfirmGroup, Session: sess}, nil
}

// FlipGroupPage moves the group keyboard page cursor.
func (h *RegistrationHandler) FlipGroupPage(ctx context.Context, userID student.TelegramID, page, pageCount int) (*StepResult, error) {
	sess, err := h.session(ctx, userID, "FlipGroupPage")
	if err != nil {
		return nil, err
	}

	sess.FlipPage(page, pageCount)
	if err := h.sessions.Put(ctx, sess); err != nil {
		return nil, storeFailure("registration", "FlipGroupPage", err)
	}

	return &StepResult{Kind: StepAskGroup, Session: sess}, nil
}

// ConfirmGroup creates the durable student row and completes
// registration. A duplicate row means the student is already
// registered: registration proceeds as complete, the error is swallowed.
func (h *RegistrationHandler) ConfirmGroup(ctx context.Context, userID student.TelegramID, username string) (*StepResult, error) {
	sess, err := h.session(ctx, userID, "ConfirmGroup")
	if err != nil {
		return nil, err
	}

	newStudent, err := student.NewStudent(student.NewStudentParams{
		TelegramID: userID,
		FullName:   sess.PendingName,
		Username:   username,
		Group:      sess.PendingGroup,
	}, h.roster)
	if err != nil {
		return nil, stepFailure("ConfirmGroup", err)
	}

	if err := sess.ConfirmGroup(); err != nil {
		return nil, stepFailure("ConfirmGroup", err)
	}

	if err := h.students.Create(ctx, newStudent); err != nil {
		if !errors.Is(err, student.ErrStudentAlreadyExists) {
			return nil, storeFailure("registration", "ConfirmGroup", err)
		}
		// Уже зарегистрирован - считаем регистрацию завершённой.
	}

	if err := h.sessions.Put(ctx, sess); err != nil {
		return nil, storeFailure("registration", "ConfirmGroup", err)
	}

	return &StepResult{Kind: StepAskTopic, Session: sess, Student: newStudent}, nil
}

// CancelGroup returns to the group choice; the ledger is untouched.
func (h *RegistrationHandler) CancelGroup(ctx context.Context, userID student.TelegramID) (*StepResult, error) {
	sess, err := h.session(ctx, userID, "CancelGroup")
	if err != nil {
		return nil, err
	}

	if err := sess.CancelGroup(); err != nil {
		return nil, stepFailure("CancelGroup", err)
	}
	if err := h.sessions.Put(ctx, sess); err != nil {
		return nil, storeFailure("registration", "CancelGroup", err)
	}

	return &StepResult{Kind: StepAskGroup, Session: sess}, nil
}

// SubmitTopic declares the topic: it is written to the durable row and
// the session moves to awaiting a submission. A second topic before the
// video note arrives simply replaces the first.
func (h *RegistrationHandler) SubmitTopic(ctx context.Context, userID student.TelegramID, text string) (*StepResult, error) {
	sess, err := h.session(ctx, userID, "SubmitTopic")
	if err != nil {
		return nil, err
	}

	// Допустимость шага проверяется до записи в ведомость, чтобы отказ
	// автомата не оставил частично записанную тему.
	if !sess.CanDeclareTopic() {
		return nil, stepFailure("SubmitTopic", registration.ErrBadTransition)
	}

	s, err := h.students.GetByTelegramID(ctx, userID)
	if err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			return nil, stepFailure("SubmitTopic", err)
		}
		return nil, storeFailure("registration", "SubmitTopic", err)
	}

	if err := s.DeclareTopic(text); err != nil {
		return nil, stepFailure("SubmitTopic", err)
	}

	if err := h.students.SetCurrentTopic(ctx, userID, s.CurrentTopic); err != nil {
		return nil, storeFailure("registration", "SubmitTopic", err)
	}

	if err := sess.TopicDeclared(); err != nil {
		return nil, stepFailure("SubmitTopic", err)
	}
	if err := h.sessions.Put(ctx, sess); err != nil {
		return nil, storeFailure("registration", "SubmitTopic", err)
	}

	return &StepResult{Kind: StepAwaitSubmission, Session: sess, Student: s}, nil
}

// session loads the caller's session or reports the missing-session error.
func (h *RegistrationHandler) session(ctx context.Context, userID student.TelegramID, op string) (*registration.Session, error) {
	sess, err := h.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, registration.ErrSessionNotFound) {
			return nil, shared.WrapError("registration", op, shared.ErrNotFound, "no active session", err)
		}
		return nil, storeFailure("registration", op, err)
	}
	return sess, nil
}

// stepFailure maps domain step errors onto the shared taxonomy.
func stepFailure(op string, err error) error {
	kind := shared.ErrInvalidInput
	switch {
	case errors.Is(err, registration.ErrBadTransition):
		kind = shared.ErrStateTransition
	case errors.Is(err, student.ErrStudentNotFound):
		kind = shared.ErrNotFound
	}
	return shared.WrapError("registration", op, kind, err.Error(), err)
}

// storeFailure wraps infrastructure errors as retryable store failures.
func storeFailure(domain, op string, err error) error {
	return shared.WrapError(domain, op, shared.ErrStoreUnavailable,
		fmt.Sprintf("store operation failed: %v", err), err)
}
