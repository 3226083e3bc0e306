package query

import (
	"context"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GROUP SUMMARY QUERY
// Every student of the group with their tally, ranked; the group
// average is undefined (not zero) when the journal is empty.
// ══════════════════════════════════════════════════════════════════════════════

// GetGroupSummaryQuery asks for the all-time summary of one group.
type GetGroupSummaryQuery struct {
	Group student.GroupCode
}

// Validate validates the query.
func (q GetGroupSummaryQuery) Validate() error {
	if !q.Group.IsValid() {
		return shared.ErrUnknownGroup
	}
	return nil
}

// SummaryCache caches built summaries; a miss or error falls back to
// the ledger. Implemented by the Redis summary cache.
type SummaryCache interface {
	GetSummary(ctx context.Context, group student.GroupCode) (*stats.GroupSummary, error)
	SetSummary(ctx context.Context, summary *stats.GroupSummary) error
}

// GetGroupSummaryHandler handles GetGroupSummaryQuery.
type GetGroupSummaryHandler struct {
	ledger stats.Ledger
	cache  SummaryCache // optional
}

// NewGetGroupSummaryHandler creates a new GetGroupSummaryHandler.
// cache may be nil when no cache is configured.
func NewGetGroupSummaryHandler(ledger stats.Ledger, cache SummaryCache) *GetGroupSummaryHandler {
	return &GetGroupSummaryHandler{ledger: ledger, cache: cache}
}

// Handle executes the query.
func (h *GetGroupSummaryHandler) Handle(ctx context.Context, q GetGroupSummaryQuery) (*stats.GroupSummary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if cached, err := h.cache.GetSummary(ctx, q.Group); err == nil {
			return cached, nil
		}
		// Промах или недоступный Redis - читаем журнал напрямую.
	}

	standings, err := h.ledger.GroupStandings(ctx, q.Group)
	if err != nil {
		return nil, shared.WrapError("stats", "GetGroupSummary", shared.ErrStoreUnavailable, "ledger read failed", err)
	}

	summary := stats.NewGroupSummary(q.Group, standings)

	if h.cache != nil {
		_ = h.cache.SetSummary(ctx, &summary)
	}

	return &summary, nil
}
