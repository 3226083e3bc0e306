package handler

import (
	"context"
	"strings"

	"github.com/maktab-hub/maktab-classroom-bot/internal/application/query"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS HANDLER
// /stats - собственная сводка ученика.
// /group <код> - сводка группы, только для учителя.
// /monthly [код] - оценки текущего месяца, только для учителя.
// ══════════════════════════════════════════════════════════════════════════════

// StatsHandler handles the statistics commands.
type StatsHandler struct {
	tally     *query.GetStudentTallyHandler
	group     *query.GetGroupSummaryHandler
	monthly   *query.GetMonthlySummaryHandler
	roster    *student.Roster
	teacherID student.TelegramID
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(
	tally *query.GetStudentTallyHandler,
	group *query.GetGroupSummaryHandler,
	monthly *query.GetMonthlySummaryHandler,
	roster *student.Roster,
	teacherID student.TelegramID,
) *StatsHandler {
	return &StatsHandler{
		tally:     tally,
		group:     group,
		monthly:   monthly,
		roster:    roster,
		teacherID: teacherID,
	}
}

// HandleStats handles /stats: the caller's own all-time tally.
func (h *StatsHandler) HandleStats(ctx context.Context, userID student.TelegramID) (*Response, error) {
	res, err := h.tally.Handle(ctx, query.GetStudentTallyQuery{StudentID: userID})
	if err != nil {
		return HTML(presenter.InternalError()), err
	}
	return HTML(presenter.StudentTally(res)), nil
}

// HandleGroup handles /group <code>: the group's all-time standings.
func (h *StatsHandler) HandleGroup(ctx context.Context, userID student.TelegramID, args string) (*Response, error) {
	if userID != h.teacherID {
		return HTML(presenter.TeacherOnly()), nil
	}

	code := student.GroupCode(strings.TrimSpace(args))
	if code == "" {
		// Без аргумента показываем клавиатуру выбора группы.
		return HTMLWithKeyboard(presenter.GroupUsage(), presenter.GroupListKeyboard(h.roster, "stats_")), nil
	}

	summary, err := h.group.Handle(ctx, query.GetGroupSummaryQuery{Group: code})
	if err != nil {
		if shared.IsValidation(err) {
			return HTML(presenter.GroupUsage()), nil
		}
		return HTML(presenter.InternalError()), err
	}
	return HTML(presenter.GroupSummary(summary)), nil
}

// HandleMonthly handles /monthly [code]: the current month's digest,
// per group or for one group with ranked students.
func (h *StatsHandler) HandleMonthly(ctx context.Context, userID student.TelegramID, args string) (*Response, error) {
	if userID != h.teacherID {
		return HTML(presenter.TeacherOnly()), nil
	}

	code := student.GroupCode(strings.TrimSpace(args))

	res, err := h.monthly.Handle(ctx, query.GetMonthlySummaryQuery{Group: code})
	if err != nil {
		if shared.IsValidation(err) {
			return HTML(presenter.GroupUsage()), nil
		}
		return HTML(presenter.InternalError()), err
	}
	if code == "" {
		// Общий дайджест дополняем клавиатурой перехода к группе.
		return HTMLWithKeyboard(presenter.MonthlySummary(res), presenter.MonthlyKeyboard(h.roster)), nil
	}
	return HTML(presenter.MonthlySummary(res)), nil
}
