// Package query contains read operations (CQRS - Queries).
// Queries never mutate state; everything they return is derived from
// the grade journal at request time (optionally through a cache).
package query

import (
	"context"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT TALLY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentTallyQuery asks for one student's all-time tally.
type GetStudentTallyQuery struct {
	StudentID student.TelegramID
}

// Validate validates the query.
func (q GetStudentTallyQuery) Validate() error {
	if !q.StudentID.IsValid() {
		return shared.ErrInvalidTelegramID
	}
	return nil
}

// StudentTallyResult contains the student's tally, zero-filled.
type StudentTallyResult struct {
	StudentID student.TelegramID `json:"student_id"`
	Total     int                `json:"total"`
	Counts    [5]int             `json:"counts"`
	Average   float64            `json:"average"`
	HasGrades bool               `json:"has_grades"`
}

// GetStudentTallyHandler handles GetStudentTallyQuery.
type GetStudentTallyHandler struct {
	ledger stats.Ledger
}

// NewGetStudentTallyHandler creates a new GetStudentTallyHandler.
func NewGetStudentTallyHandler(ledger stats.Ledger) *GetStudentTallyHandler {
	return &GetStudentTallyHandler{ledger: ledger}
}

// Handle executes the query.
func (h *GetStudentTallyHandler) Handle(ctx context.Context, q GetStudentTallyQuery) (*StudentTallyResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	tally, err := h.ledger.TallyForUser(ctx, q.StudentID)
	if err != nil {
		return nil, shared.WrapError("stats", "GetStudentTally", shared.ErrStoreUnavailable, "ledger read failed", err)
	}

	avg, ok := tally.Average()
	return &StudentTallyResult{
		StudentID: q.StudentID,
		Total:     tally.Total,
		Counts:    tally.Counts,
		Average:   avg,
		HasGrades: ok,
	}, nil
}
