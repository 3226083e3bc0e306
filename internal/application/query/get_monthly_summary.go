package query

import (
	"context"
	"time"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MONTHLY SUMMARY QUERY
// The window is [start of the current month in civic time, now]: civic
// month boundaries, so the last instant of a month never leaks into
// the next one.
// ══════════════════════════════════════════════════════════════════════════════

// GetMonthlySummaryQuery asks for the current month's digest.
// With an empty Group the result covers every group (one row each);
// with a Group it lists that group's ranked students.
type GetMonthlySummaryQuery struct {
	Group student.GroupCode

	// Now anchors the window; the zero value means "current time".
	Now time.Time
}

// Validate validates the query.
func (q GetMonthlySummaryQuery) Validate() error {
	if q.Group != "" && !q.Group.IsValid() {
		return shared.ErrUnknownGroup
	}
	return nil
}

// MonthlySummaryResult contains the digest for the month so far.
type MonthlySummaryResult struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`

	// Group is set when the query targeted a single group.
	Group student.GroupCode `json:"group,omitempty"`

	// Students - ранжированные позиции учеников группы (когда Group задан).
	Students []stats.Standing `json:"students,omitempty"`

	// Groups - строки дайджеста по группам (когда Group пуст).
	Groups []stats.GroupMonthlyRow `json:"groups,omitempty"`

	// Empty - в окне нет ни одной оценки.
	Empty bool `json:"empty"`
}

// GetMonthlySummaryHandler handles GetMonthlySummaryQuery.
type GetMonthlySummaryHandler struct {
	ledger stats.Ledger
}

// NewGetMonthlySummaryHandler creates a new GetMonthlySummaryHandler.
func NewGetMonthlySummaryHandler(ledger stats.Ledger) *GetMonthlySummaryHandler {
	return &GetMonthlySummaryHandler{ledger: ledger}
}

// Handle executes the query.
func (h *GetMonthlySummaryHandler) Handle(ctx context.Context, q GetMonthlySummaryQuery) (*MonthlySummaryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := q.Now
	if now.IsZero() {
		now = timeutil.Now()
	}

	since := timeutil.StartOfMonth(now)
	result := &MonthlySummaryResult{
		Since: since,
		Until: now,
		Group: q.Group,
	}

	if q.Group == "" {
		rows, err := h.ledger.MonthlyByGroup(ctx, since, now)
		if err != nil {
			return nil, shared.WrapError("stats", "GetMonthlySummary", shared.ErrStoreUnavailable, "ledger read failed", err)
		}
		result.Groups = rows
		result.Empty = len(rows) == 0
		return result, nil
	}

	standings, err := h.ledger.MonthlyStandings(ctx, q.Group, since, now)
	if err != nil {
		return nil, shared.WrapError("stats", "GetMonthlySummary", shared.ErrStoreUnavailable, "ledger read failed", err)
	}
	result.Students = stats.Rank(standings)
	result.Empty = len(standings) == 0
	return result, nil
}
