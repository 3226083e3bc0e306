package postgres

import (
	"context"
	"fmt"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
// It works against the Querier interface so tests can substitute a mock pool.
type StudentRepository struct {
	q Querier
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(q Querier) *StudentRepository {
	return &StudentRepository{q: q}
}

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO users (user_id, full_name, username, group_name, current_topic, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		int64(s.TelegramID),
		s.FullName,
		s.Username,
		string(s.Group),
		s.CurrentTopic,
		s.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return student.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByTelegramID returns a student by Telegram ID.
func (r *StudentRepository) GetByTelegramID(ctx context.Context, telegramID student.TelegramID) (*student.Student, error) {
	query := `
		SELECT user_id, full_name, username, group_name, current_topic, created_at
		FROM users
		WHERE user_id = $1
	`

	row := r.q.QueryRow(ctx, query, int64(telegramID))
	return scanStudent(row)
}

// SetCurrentTopic writes the declared topic (nil clears it).
func (r *StudentRepository) SetCurrentTopic(ctx context.Context, telegramID student.TelegramID, topic *string) error {
	query := `
		UPDATE users SET current_topic = $1
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, topic, int64(telegramID))
	if err != nil {
		return fmt.Errorf("failed to set current topic: %w", err)
	}

	if result.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}

	return nil
}

// ExistsByTelegramID checks existence by Telegram ID.
func (r *StudentRepository) ExistsByTelegramID(ctx context.Context, telegramID student.TelegramID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, int64(telegramID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}

	return exists, nil
}

// GetByGroup returns all students of a group ordered by name.
func (r *StudentRepository) GetByGroup(ctx context.Context, group student.GroupCode) ([]*student.Student, error) {
	query := `
		SELECT user_id, full_name, username, group_name, current_topic, created_at
		FROM users
		WHERE group_name = $1
		ORDER BY full_name ASC
	`

	rows, err := r.q.Query(ctx, query, string(group))
	if err != nil {
		return nil, fmt.Errorf("failed to query students by group: %w", err)
	}
	defer rows.Close()

	return scanStudents(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanStudent(row pgx.Row) (*student.Student, error) {
	var (
		s          student.Student
		telegramID int64
		username   *string
		group      string
	)

	err := row.Scan(
		&telegramID,
		&s.FullName,
		&username,
		&group,
		&s.CurrentTopic,
		&s.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, student.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.TelegramID = student.TelegramID(telegramID)
	s.Group = student.GroupCode(group)
	if username != nil {
		s.Username = *username
	}

	return &s, nil
}

func scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student

	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}
