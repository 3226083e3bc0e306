package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// pgconnUniqueViolation mimics the driver error for a unique constraint.
var pgconnUniqueViolation = pgconn.PgError{Code: "23505"}

func newGradeRepoMock(t *testing.T) (*GradeRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return newGradeRepositoryWithQuerier(mock), mock
}

func TestGradeRepository_TallyForUser(t *testing.T) {
	ctx := context.Background()
	repo, mock := newGradeRepoMock(t)

	rows := pgxmock.NewRows([]string{"grade", "count"}).
		AddRow(4, 2).
		AddRow(5, 3)

	mock.ExpectQuery("SELECT grade, COUNT").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	tally, err := repo.TallyForUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 5, tally.Total)
	assert.Equal(t, 2, tally.Count(4))
	assert.Equal(t, 3, tally.Count(5))
	assert.Equal(t, 0, tally.Count(1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepository_TallyForUser_Empty(t *testing.T) {
	ctx := context.Background()
	repo, mock := newGradeRepoMock(t)

	mock.ExpectQuery("SELECT grade, COUNT").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"grade", "count"}))

	tally, err := repo.TallyForUser(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, tally.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepository_GroupStandings(t *testing.T) {
	ctx := context.Background()
	repo, mock := newGradeRepoMock(t)

	g5, g3 := 5, 3
	rows := pgxmock.NewRows([]string{"user_id", "full_name", "grade", "count"}).
		AddRow(int64(1), "Aziz Aliyev", &g5, 2).
		AddRow(int64(1), "Aziz Aliyev", &g3, 1).
		AddRow(int64(2), "Bekzod Karimov", (*int)(nil), 0)

	mock.ExpectQuery("SELECT u.user_id, u.full_name").
		WithArgs("101").
		WillReturnRows(rows)

	standings, err := repo.GroupStandings(ctx, "101")
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, student.TelegramID(1), standings[0].StudentID)
	assert.Equal(t, 3, standings[0].Tally.Total)
	assert.Equal(t, 2, standings[0].Tally.Count(5))
	assert.Equal(t, 1, standings[0].Tally.Count(3))

	// Ученик без оценок присутствует с нулевой сводкой.
	assert.Equal(t, "Bekzod Karimov", standings[1].FullName)
	assert.Zero(t, standings[1].Tally.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepository_GroupStandings_SameName(t *testing.T) {
	ctx := context.Background()
	repo, mock := newGradeRepoMock(t)

	// Тёзки различаются по user_id: сортировка включает его, поэтому
	// строки одного ученика идут подряд и сводки не смешиваются.
	g5, g3 := 5, 3
	rows := pgxmock.NewRows([]string{"user_id", "full_name", "grade", "count"}).
		AddRow(int64(1), "Aziz Aliyev", &g5, 2).
		AddRow(int64(2), "Aziz Aliyev", &g3, 1)

	mock.ExpectQuery(`ORDER BY u\.full_name ASC, u\.user_id ASC, g\.grade ASC`).
		WithArgs("101").
		WillReturnRows(rows)

	standings, err := repo.GroupStandings(ctx, "101")
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, student.TelegramID(1), standings[0].StudentID)
	assert.Equal(t, 2, standings[0].Tally.Count(5))
	assert.Zero(t, standings[0].Tally.Count(3))

	assert.Equal(t, student.TelegramID(2), standings[1].StudentID)
	assert.Equal(t, 1, standings[1].Tally.Count(3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepository_MonthlyStandings(t *testing.T) {
	ctx := context.Background()
	repo, mock := newGradeRepoMock(t)

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	g4 := 4
	rows := pgxmock.NewRows([]string{"user_id", "full_name", "grade", "count"}).
		AddRow(int64(1), "Aziz Aliyev", &g4, 1)

	mock.ExpectQuery("SELECT u.user_id, u.full_name").
		WithArgs("101", since, until).
		WillReturnRows(rows)

	standings, err := repo.MonthlyStandings(ctx, "101", since, until)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, 1, standings[0].Tally.Count(4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepository_MonthlyByGroup(t *testing.T) {
	ctx := context.Background()
	repo, mock := newGradeRepoMock(t)

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"group_name", "students", "submissions", "avg"}).
		AddRow("101", 3, 7, 4.2).
		AddRow("203", 1, 2, 5.0)

	mock.ExpectQuery("SELECT u.group_name").
		WithArgs(since, until).
		WillReturnRows(rows)

	digest, err := repo.MonthlyByGroup(ctx, since, until)
	require.NoError(t, err)
	require.Len(t, digest, 2)

	assert.Equal(t, stats.GroupMonthlyRow{
		Group:          "101",
		ActiveStudents: 3,
		Submissions:    7,
		Average:        4.2,
	}, digest[0])
	assert.Equal(t, student.GroupCode("203"), digest[1].Group)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepository_MonthlyByGroup_EmptyWindow(t *testing.T) {
	ctx := context.Background()
	repo, mock := newGradeRepoMock(t)

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(time.Hour)

	mock.ExpectQuery("SELECT u.group_name").
		WithArgs(since, until).
		WillReturnRows(pgxmock.NewRows([]string{"group_name", "students", "submissions", "avg"}))

	digest, err := repo.MonthlyByGroup(ctx, since, until)
	require.NoError(t, err)
	assert.Empty(t, digest)
	assert.NoError(t, mock.ExpectationsWereMet())
}
