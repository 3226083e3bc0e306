package handler

import (
	"context"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// HELP HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// HelpHandler handles the /help command.
type HelpHandler struct {
	teacherID student.TelegramID
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(teacherID student.TelegramID) *HelpHandler {
	return &HelpHandler{teacherID: teacherID}
}

// Handle renders the command list; the teacher sees the extra commands.
func (h *HelpHandler) Handle(_ context.Context, userID student.TelegramID) *Response {
	return HTML(presenter.Help(userID == h.teacherID))
}
