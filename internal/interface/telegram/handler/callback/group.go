// Package callback contains inline keyboard callback handlers.
package callback

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/maktab-hub/maktab-classroom-bot/internal/application/command"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/handler"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// GROUP CALLBACK HANDLER
// Обрабатывает кнопки выбора группы: перелистывание, выбор,
// подтверждение и отмену. Все ответы редактируют сообщение с
// клавиатурой вместо отправки нового.
// ══════════════════════════════════════════════════════════════════════════════

// GroupRequest carries a group keyboard press.
type GroupRequest struct {
	UserID student.TelegramID

	// Username is the Telegram username, stored at confirmation time.
	Username string

	// Data is the raw callback data ("group_...").
	Data string
}

// GroupHandler handles group picker callbacks.
type GroupHandler struct {
	reg *command.RegistrationHandler
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(reg *command.RegistrationHandler) *GroupHandler {
	return &GroupHandler{reg: reg}
}

// Handle dispatches one group keyboard press.
func (h *GroupHandler) Handle(ctx context.Context, req GroupRequest) (*handler.Response, error) {
	switch {
	case strings.HasPrefix(req.Data, "group_page_"):
		return h.flipPage(ctx, req)
	case strings.HasPrefix(req.Data, "group_pick_"):
		return h.pick(ctx, req)
	case req.Data == "group_confirm":
		return h.confirm(ctx, req)
	case req.Data == "group_cancel":
		return h.cancel(ctx, req)
	default:
		return handler.HTML(presenter.NoSession()), nil
	}
}

func (h *GroupHandler) flipPage(ctx context.Context, req GroupRequest) (*handler.Response, error) {
	page, err := strconv.Atoi(strings.TrimPrefix(req.Data, "group_page_"))
	if err != nil {
		return handler.HTML(presenter.NoSession()), nil
	}

	pageCount := presenter.PageCount(h.reg.Roster().Len())
	step, err := h.reg.FlipGroupPage(ctx, req.UserID, page, pageCount)
	if err != nil {
		return h.failure(err)
	}

	return handler.EditHTML(
		presenter.AskGroup(step.Session.PendingName),
		presenter.GroupKeyboard(h.reg.Roster(), step.Session.Page),
	), nil
}

func (h *GroupHandler) pick(ctx context.Context, req GroupRequest) (*handler.Response, error) {
	code := student.GroupCode(strings.TrimPrefix(req.Data, "group_pick_"))

	step, err := h.reg.ChooseGroup(ctx, req.UserID, code)
	if err != nil {
		return h.failure(err)
	}

	return handler.EditHTML(
		presenter.ConfirmGroup(step.Session.PendingGroup),
		presenter.ConfirmGroupKeyboard(),
	), nil
}

func (h *GroupHandler) confirm(ctx context.Context, req GroupRequest) (*handler.Response, error) {
	step, err := h.reg.ConfirmGroup(ctx, req.UserID, req.Username)
	if err != nil {
		return h.failure(err)
	}

	return handler.EditHTML(
		presenter.Registered(step.Student.FullName, step.Student.Group),
		nil,
	), nil
}

func (h *GroupHandler) cancel(ctx context.Context, req GroupRequest) (*handler.Response, error) {
	step, err := h.reg.CancelGroup(ctx, req.UserID)
	if err != nil {
		return h.failure(err)
	}

	return handler.EditHTML(
		presenter.AskGroup(step.Session.PendingName),
		presenter.GroupKeyboard(h.reg.Roster(), step.Session.Page),
	), nil
}

// failure maps step errors onto user-visible texts. Validation and
// stale-keyboard transition errors are answered politely without
// propagating upstream.
func (h *GroupHandler) failure(err error) (*handler.Response, error) {
	switch {
	case shared.IsNotFound(err),
		shared.IsValidation(err),
		errors.Is(err, shared.ErrStateTransition):
		return handler.HTML(presenter.NoSession()), nil
	default:
		return handler.HTML(presenter.InternalError()), err
	}
}
