package handler

import (
	"context"
	"errors"

	"github.com/maktab-hub/maktab-classroom-bot/internal/application/command"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/registration"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// START HANDLER
// Drives /start and the free-text steps of the registration flow (name
// and topic). Which step a text message belongs to is decided by the
// session state, not by the message itself.
// ══════════════════════════════════════════════════════════════════════════════

// StartHandler handles /start and registration text input.
type StartHandler struct {
	reg      *command.RegistrationHandler
	sessions registration.Table
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(reg *command.RegistrationHandler, sessions registration.Table) *StartHandler {
	return &StartHandler{reg: reg, sessions: sessions}
}

// HandleStart handles the /start command.
func (h *StartHandler) HandleStart(ctx context.Context, userID student.TelegramID) (*Response, error) {
	step, err := h.reg.Start(ctx, userID)
	if err != nil {
		return HTML(presenter.InternalError()), err
	}

	if step.Kind == command.StepAskTopic && step.Student != nil {
		return HTML(presenter.WelcomeBack(step.Student.FullName)), nil
	}
	return HTML(presenter.AskName()), nil
}

// HandleText handles a non-command text message. The session state
// routes it to the name step or the topic step.
func (h *StartHandler) HandleText(ctx context.Context, userID student.TelegramID, text string) (*Response, error) {
	sess, err := h.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, registration.ErrSessionNotFound) {
			return HTML(presenter.NotRegistered()), nil
		}
		return HTML(presenter.InternalError()), err
	}

	switch sess.State {
	case registration.StateAwaitingName:
		return h.submitName(ctx, userID, text)

	case registration.StateAwaitingGroup, registration.StateConfirmingGroup:
		// Группа выбирается кнопками, текст здесь не принимается.
		return HTMLWithKeyboard(
			presenter.AskGroup(sess.PendingName),
			presenter.GroupKeyboard(h.reg.Roster(), sess.Page),
		), nil

	case registration.StateAwaitingTopic, registration.StateAwaitingSubmission:
		return h.submitTopic(ctx, userID, text)

	default:
		return HTML(presenter.NoSession()), nil
	}
}

func (h *StartHandler) submitName(ctx context.Context, userID student.TelegramID, text string) (*Response, error) {
	step, err := h.reg.SubmitName(ctx, userID, text)
	if err != nil {
		if shared.IsValidation(err) {
			return HTML(presenter.AskName()), nil
		}
		return HTML(presenter.InternalError()), err
	}

	return HTMLWithKeyboard(
		presenter.AskGroup(step.Session.PendingName),
		presenter.GroupKeyboard(h.reg.Roster(), step.Session.Page),
	), nil
}

func (h *StartHandler) submitTopic(ctx context.Context, userID student.TelegramID, text string) (*Response, error) {
	step, err := h.reg.SubmitTopic(ctx, userID, text)
	if err != nil {
		if shared.IsValidation(err) {
			return HTML(presenter.NoTopic()), nil
		}
		if shared.IsNotFound(err) {
			return HTML(presenter.NotRegistered()), nil
		}
		return HTML(presenter.InternalError()), err
	}

	return HTML(presenter.AwaitSubmission(step.Student.Topic())), nil
}
