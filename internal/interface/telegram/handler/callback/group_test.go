package callback

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

type stubStudentRepo struct {
	students map[student.TelegramID]*student.Student
}

func newStubStudentRepo() *stubStudentRepo {
	return &stubStudentRepo{students: make(map[student.TelegramID]*student.Student)}
}

func (r *stubStudentRepo) Create(_ context.Context, s *student.Student) error {
	if _, ok := r.students[s.TelegramID]; ok {
		return student.ErrStudentAlreadyExists
	}
	r.students[s.TelegramID] = s.Clone()
	return nil
}

func (r *stubStudentRepo) GetByTelegramID(_ context.Context, id student.TelegramID) (*student.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (r *stubStudentRepo) SetCurrentTopic(_ context.Context, id student.TelegramID, topic *string) error {
	s, ok := r.students[id]
	if !ok {
		return student.ErrStudentNotFound
	}
	s.CurrentTopic = topic
	return nil
}

func (r *stubStudentRepo) ExistsByTelegramID(_ context.Context, id student.TelegramID) (bool, error) {
	_, ok := r.students[id]
	return ok, nil
}

func (r *stubStudentRepo) GetByGroup(_ context.Context, _ student.GroupCode) ([]*student.Student, error) {
	return nil, nil
}

// atGroupStep drives a session up to the group keyboard.
func atGroupStep(t *testing.T) (*GroupHandler, *stubStudentRepo) {
	t.Helper()

	store := memory.NewStore()
	repo := newStubStudentRepo()
	reg := command.NewRegistrationHandler(store, repo, student.DefaultRoster())

	ctx := context.Background()
	_, err := reg.Start(ctx, 100)
	require.NoError(t, err)
	_, err = reg.SubmitName(ctx, 100, "Aziza Karimova")
	require.NoError(t, err)

	return NewGroupHandler(reg), repo
}

func TestGroupHandler_PickAndConfirm(t *testing.T) {
	h, repo := atGroupStep(t)
	ctx := context.Background()

	resp, err := h.Handle(ctx, GroupRequest{UserID: 100, Data: "group_pick_101"})
	require.NoError(t, err)
	assert.True(t, resp.Edit)
	assert.Equal(t, presenter.ConfirmGroup("101"), resp.Text)
	require.NotNil(t, resp.Keyboard)

	resp, err = h.Handle(ctx, GroupRequest{UserID: 100, Username: "aziza", Data: "group_confirm"})
	require.NoError(t, err)
	assert.True(t, resp.Edit)
	assert.Equal(t, presenter.Registered("Aziza Karimova", "101"), resp.Text)
	assert.Nil(t, resp.Keyboard)

	s, err := repo.GetByTelegramID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, student.GroupCode("101"), s.Group)
	assert.Equal(t, "aziza", s.Username)
}

func TestGroupHandler_Cancel_ReturnsToKeyboard(t *testing.T) {
	h, _ := atGroupStep(t)
	ctx := context.Background()

	_, err := h.Handle(ctx, GroupRequest{UserID: 100, Data: "group_pick_101"})
	require.NoError(t, err)

	resp, err := h.Handle(ctx, GroupRequest{UserID: 100, Data: "group_cancel"})
	require.NoError(t, err)
	assert.Equal(t, presenter.AskGroup("Aziza Karimova"), resp.Text)
	require.NotNil(t, resp.Keyboard)
}

func TestGroupHandler_FlipPage(t *testing.T) {
	h, _ := atGroupStep(t)
	ctx := context.Background()

	resp, err := h.Handle(ctx, GroupRequest{UserID: 100, Data: "group_page_1"})
	require.NoError(t, err)
	assert.True(t, resp.Edit)
	require.NotNil(t, resp.Keyboard)

	// Вторая страница начинается после первых восьми групп.
	assert.Equal(t, "group_pick_206", resp.Keyboard.Rows[0][0].CallbackData)
}

func TestGroupHandler_StalePress(t *testing.T) {
	store := memory.NewStore()
	reg := command.NewRegistrationHandler(store, newStubStudentRepo(), student.DefaultRoster())
	h := NewGroupHandler(reg)

	// Нажатие по старой клавиатуре без сессии.
	resp, err := h.Handle(context.Background(), GroupRequest{UserID: 500, Data: "group_confirm"})
	require.NoError(t, err)
	assert.Equal(t, presenter.NoSession(), resp.Text)
}

func TestGroupHandler_UnknownData(t *testing.T) {
	h, _ := atGroupStep(t)

	resp, err := h.Handle(context.Background(), GroupRequest{UserID: 100, Data: "group_bogus"})
	require.NoError(t, err)
	assert.Equal(t, presenter.NoSession(), resp.Text)
}
