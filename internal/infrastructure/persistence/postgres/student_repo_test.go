package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

func newStudentRepoMock(t *testing.T) (*StudentRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewStudentRepository(mock), mock
}

func TestStudentRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	s := &student.Student{
		TelegramID: 42,
		FullName:   "Aziz Aliyev",
		Username:   "aziz",
		Group:      "101",
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(42), "Aziz Aliyev", "aziz", "101", s.CurrentTopic, s.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(ctx, s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_Create_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	s := &student.Student{TelegramID: 42, FullName: "Aziz Aliyev", Group: "101"}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(42), "Aziz Aliyev", "", "101", s.CurrentTopic, s.CreatedAt).
		WillReturnError(&pgconnUniqueViolation)

	err := repo.Create(ctx, s)
	assert.ErrorIs(t, err, student.ErrStudentAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetByTelegramID(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	username := "aziz"
	topic := "Unit 3"
	created := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"user_id", "full_name", "username", "group_name", "current_topic", "created_at"}).
		AddRow(int64(42), "Aziz Aliyev", &username, "101", &topic, created)

	mock.ExpectQuery("SELECT user_id, full_name").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	got, err := repo.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, student.TelegramID(42), got.TelegramID)
	assert.Equal(t, "Aziz Aliyev", got.FullName)
	assert.Equal(t, "aziz", got.Username)
	assert.Equal(t, student.GroupCode("101"), got.Group)
	require.NotNil(t, got.CurrentTopic)
	assert.Equal(t, "Unit 3", *got.CurrentTopic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetByTelegramID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	mock.ExpectQuery("SELECT user_id, full_name").
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByTelegramID(ctx, 42)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_SetCurrentTopic(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	topic := "Unit 3"
	mock.ExpectExec("UPDATE users SET current_topic").
		WithArgs(&topic, int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetCurrentTopic(ctx, 42, &topic))

	// Снятие темы: nil вместо значения.
	mock.ExpectExec("UPDATE users SET current_topic").
		WithArgs((*string)(nil), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetCurrentTopic(ctx, 42, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_SetCurrentTopic_NotFound(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	topic := "Unit 3"
	mock.ExpectExec("UPDATE users SET current_topic").
		WithArgs(&topic, int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetCurrentTopic(ctx, 42, &topic)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_ExistsByTelegramID(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetByGroup(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	created := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"user_id", "full_name", "username", "group_name", "current_topic", "created_at"}).
		AddRow(int64(1), "Aziz Aliyev", (*string)(nil), "101", (*string)(nil), created).
		AddRow(int64(2), "Bekzod Karimov", (*string)(nil), "101", (*string)(nil), created)

	mock.ExpectQuery("SELECT user_id, full_name").
		WithArgs("101").
		WillReturnRows(rows)

	students, err := repo.GetByGroup(ctx, "101")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Aziz Aliyev", students[0].FullName)
	assert.Equal(t, "Bekzod Karimov", students[1].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_Create_StoreError(t *testing.T) {
	ctx := context.Background()
	repo, mock := newStudentRepoMock(t)

	s := &student.Student{TelegramID: 42, FullName: "Aziz Aliyev", Group: "101"}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(42), "Aziz Aliyev", "", "101", s.CurrentTopic, s.CreatedAt).
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(ctx, s)
	require.Error(t, err)
	assert.NotErrorIs(t, err, student.ErrStudentAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
