package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-hub/maktab-classroom-bot/internal/application/command"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/internal/infrastructure/persistence/memory"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram/presenter"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeStudentRepo struct {
	students map[student.TelegramID]*student.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[student.TelegramID]*student.Student)}
}

func (r *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	if _, ok := r.students[s.TelegramID]; ok {
		return student.ErrStudentAlreadyExists
	}
	r.students[s.TelegramID] = s.Clone()
	return nil
}

func (r *fakeStudentRepo) GetByTelegramID(_ context.Context, id student.TelegramID) (*student.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (r *fakeStudentRepo) SetCurrentTopic(_ context.Context, id student.TelegramID, topic *string) error {
	s, ok := r.students[id]
	if !ok {
		return student.ErrStudentNotFound
	}
	s.CurrentTopic = topic
	return nil
}

func (r *fakeStudentRepo) ExistsByTelegramID(_ context.Context, id student.TelegramID) (bool, error) {
	_, ok := r.students[id]
	return ok, nil
}

func (r *fakeStudentRepo) GetByGroup(_ context.Context, group student.GroupCode) ([]*student.Student, error) {
	var out []*student.Student
	for _, s := range r.students {
		if s.Group == group {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func newStartHandler(t *testing.T) (*StartHandler, *command.RegistrationHandler, *fakeStudentRepo) {
	t.Helper()
	store := memory.NewStore()
	repo := newFakeStudentRepo()
	reg := command.NewRegistrationHandler(store, repo, student.DefaultRoster())
	return NewStartHandler(reg, store), reg, repo
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestStartHandler_NewUser(t *testing.T) {
	h, _, _ := newStartHandler(t)
	ctx := context.Background()

	resp, err := h.HandleStart(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, presenter.AskName(), resp.Text)
	assert.Nil(t, resp.Keyboard)
}

func TestStartHandler_NameStep_ShowsGroupKeyboard(t *testing.T) {
	h, _, _ := newStartHandler(t)
	ctx := context.Background()

	_, err := h.HandleStart(ctx, 100)
	require.NoError(t, err)

	resp, err := h.HandleText(ctx, 100, "Aziza Karimova")
	require.NoError(t, err)
	assert.Equal(t, presenter.AskGroup("Aziza Karimova"), resp.Text)
	require.NotNil(t, resp.Keyboard)
	assert.NotEmpty(t, resp.Keyboard.Rows)
}

func TestStartHandler_InvalidName_AsksAgain(t *testing.T) {
	h, _, _ := newStartHandler(t)
	ctx := context.Background()

	_, err := h.HandleStart(ctx, 100)
	require.NoError(t, err)

	resp, err := h.HandleText(ctx, 100, "   ")
	require.NoError(t, err)
	assert.Equal(t, presenter.AskName(), resp.Text)
}

func TestStartHandler_TextDuringGroupStep_RepeatsKeyboard(t *testing.T) {
	h, _, _ := newStartHandler(t)
	ctx := context.Background()

	_, err := h.HandleStart(ctx, 100)
	require.NoError(t, err)
	_, err = h.HandleText(ctx, 100, "Aziza Karimova")
	require.NoError(t, err)

	// Группа выбирается только кнопками.
	resp, err := h.HandleText(ctx, 100, "101")
	require.NoError(t, err)
	assert.Equal(t, presenter.AskGroup("Aziza Karimova"), resp.Text)
	assert.NotNil(t, resp.Keyboard)
}

func TestStartHandler_ReturningStudent(t *testing.T) {
	h, _, repo := newStartHandler(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &student.Student{
		TelegramID: 100,
		FullName:   "Aziza Karimova",
		Group:      "101",
	}))

	resp, err := h.HandleStart(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, presenter.WelcomeBack("Aziza Karimova"), resp.Text)
}

func TestStartHandler_TopicStep(t *testing.T) {
	h, reg, repo := newStartHandler(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &student.Student{
		TelegramID: 100,
		FullName:   "Aziza Karimova",
		Group:      "101",
	}))

	_, err := reg.Start(ctx, 100)
	require.NoError(t, err)

	resp, err := h.HandleText(ctx, 100, "Kasrlarni qisqartirish")
	require.NoError(t, err)
	assert.Equal(t, presenter.AwaitSubmission("Kasrlarni qisqartirish"), resp.Text)
}

func TestStartHandler_NoSession(t *testing.T) {
	h, _, _ := newStartHandler(t)

	resp, err := h.HandleText(context.Background(), 999, "hello")
	require.NoError(t, err)
	assert.Equal(t, presenter.NotRegistered(), resp.Text)
}
