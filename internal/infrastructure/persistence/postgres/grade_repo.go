package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// psql builds queries with PostgreSQL-style placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GradeRepository implements review.GradeRepository (write side) and
// stats.Ledger (read side) over the grades journal.
type GradeRepository struct {
	conn *Connection
	q    Querier
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(conn *Connection) *GradeRepository {
	return &GradeRepository{conn: conn, q: conn}
}

// newGradeRepositoryWithQuerier is used by tests to substitute a mock pool.
// Transactional operations are unavailable on such an instance.
func newGradeRepositoryWithQuerier(q Querier) *GradeRepository {
	return &GradeRepository{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// Write side
// ─────────────────────────────────────────────────────────────────────────────

// ResolveGrade atomically appends a journal record and clears the
// student's current topic, then reads the student's tally within the
// same transaction so it observes the just-inserted record.
func (r *GradeRepository) ResolveGrade(ctx context.Context, rec review.GradeRecord) (stats.Tally, error) {
	var tally stats.Tally

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		query, args, err := psql.
			Insert("grades").
			Columns("user_id", "topic", "grade", "feedback", "graded_at").
			Values(int64(rec.StudentID), rec.Topic, rec.Grade.Int(), rec.Feedback, rec.GradedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if IsForeignKeyViolation(err) {
				return student.ErrStudentNotFound
			}
			return fmt.Errorf("failed to insert grade: %w", err)
		}

		result, err := tx.Exec(ctx,
			`UPDATE users SET current_topic = NULL WHERE user_id = $1`,
			int64(rec.StudentID),
		)
		if err != nil {
			return fmt.Errorf("failed to clear current topic: %w", err)
		}
		if result.RowsAffected() == 0 {
			return student.ErrStudentNotFound
		}

		tally, err = tallyForUser(ctx, tx, rec.StudentID)
		return err
	})
	if err != nil {
		return stats.Tally{}, err
	}

	return tally, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Read side (stats.Ledger)
// ─────────────────────────────────────────────────────────────────────────────

// TallyForUser returns the all-time tally of one student.
func (r *GradeRepository) TallyForUser(ctx context.Context, id student.TelegramID) (stats.Tally, error) {
	return tallyForUser(ctx, r.q, id)
}

func tallyForUser(ctx context.Context, q Querier, id student.TelegramID) (stats.Tally, error) {
	query, args, err := psql.
		Select("grade", "COUNT(*)").
		From("grades").
		Where(sq.Eq{"user_id": int64(id)}).
		GroupBy("grade").
		ToSql()
	if err != nil {
		return stats.Tally{}, fmt.Errorf("failed to build tally query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return stats.Tally{}, fmt.Errorf("failed to query tally: %w", err)
	}
	defer rows.Close()

	var tally stats.Tally
	for rows.Next() {
		var grade, count int
		if err := rows.Scan(&grade, &count); err != nil {
			return stats.Tally{}, fmt.Errorf("failed to scan tally row: %w", err)
		}
		if grade >= 1 && grade <= 5 {
			tally.Counts[grade-1] = count
			tally.Total += count
		}
	}

	return tally, rows.Err()
}

// GroupStandings returns all-time standings of every student in the
// group, including students without a single grade.
func (r *GradeRepository) GroupStandings(ctx context.Context, group student.GroupCode) ([]stats.Standing, error) {
	query, args, err := psql.
		Select("u.user_id", "u.full_name", "g.grade", "COUNT(g.id)").
		From("users u").
		LeftJoin("grades g ON g.user_id = u.user_id").
		Where(sq.Eq{"u.group_name": string(group)}).
		GroupBy("u.user_id", "u.full_name", "g.grade").
		OrderBy("u.full_name ASC", "u.user_id ASC", "g.grade ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build standings query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	return scanStandings(rows)
}

// MonthlyStandings returns standings of the group's students within
// [since, until]. Students with no grades in the window are omitted.
func (r *GradeRepository) MonthlyStandings(ctx context.Context, group student.GroupCode, since, until time.Time) ([]stats.Standing, error) {
	query, args, err := psql.
		Select("u.user_id", "u.full_name", "g.grade", "COUNT(g.id)").
		From("users u").
		Join("grades g ON g.user_id = u.user_id").
		Where(sq.Eq{"u.group_name": string(group)}).
		Where(sq.GtOrEq{"g.graded_at": since}).
		Where(sq.LtOrEq{"g.graded_at": until}).
		GroupBy("u.user_id", "u.full_name", "g.grade").
		OrderBy("u.full_name ASC", "u.user_id ASC", "g.grade ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build monthly standings query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly standings: %w", err)
	}
	defer rows.Close()

	return scanStandings(rows)
}

// MonthlyByGroup returns one digest row per group with grades in
// [since, until].
func (r *GradeRepository) MonthlyByGroup(ctx context.Context, since, until time.Time) ([]stats.GroupMonthlyRow, error) {
	query, args, err := psql.
		Select(
			"u.group_name",
			"COUNT(DISTINCT u.user_id)",
			"COUNT(g.id)",
			"AVG(g.grade)::float8",
		).
		From("grades g").
		Join("users u ON u.user_id = g.user_id").
		Where(sq.GtOrEq{"g.graded_at": since}).
		Where(sq.LtOrEq{"g.graded_at": until}).
		GroupBy("u.group_name").
		OrderBy("u.group_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build digest query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly digest: %w", err)
	}
	defer rows.Close()

	var out []stats.GroupMonthlyRow
	for rows.Next() {
		var (
			row   stats.GroupMonthlyRow
			group string
		)
		if err := rows.Scan(&group, &row.ActiveStudents, &row.Submissions, &row.Average); err != nil {
			return nil, fmt.Errorf("failed to scan digest row: %w", err)
		}
		row.Group = student.GroupCode(group)
		out = append(out, row)
	}

	return out, rows.Err()
}

// scanStandings folds (user, grade, count) rows into per-student
// standings. Rows arrive ordered by name then user id, so one
// student's rows are contiguous even when two students share a name;
// a NULL grade marks a student with no journal records.
func scanStandings(rows pgx.Rows) ([]stats.Standing, error) {
	var (
		out     []stats.Standing
		current *stats.Standing
	)

	for rows.Next() {
		var (
			userID int64
			name   string
			grade  *int
			count  int
		)
		if err := rows.Scan(&userID, &name, &grade, &count); err != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", err)
		}

		id := student.TelegramID(userID)
		if current == nil || current.StudentID != id {
			out = append(out, stats.Standing{StudentID: id, FullName: name})
			current = &out[len(out)-1]
		}

		if grade != nil && *grade >= 1 && *grade <= 5 {
			current.Tally.Counts[*grade-1] = count
			current.Tally.Total += count
		}
	}

	return out, rows.Err()
}
