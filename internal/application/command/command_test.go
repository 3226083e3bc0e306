package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/registration"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/shared"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
	"github.com/maktab-hub/maktab-classroom-bot/internal/infrastructure/persistence/memory"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeStudentRepo struct {
	students map[student.TelegramID]*student.Student
	failing  bool
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[student.TelegramID]*student.Student)}
}

func (r *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	if r.failing {
		return errors.New("store down")
	}
	if _, ok := r.students[s.TelegramID]; ok {
		return student.ErrStudentAlreadyExists
	}
	r.students[s.TelegramID] = s.Clone()
	return nil
}

func (r *fakeStudentRepo) GetByTelegramID(_ context.Context, id student.TelegramID) (*student.Student, error) {
	if r.failing {
		return nil, errors.New("store down")
	}
	s, ok := r.students[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (r *fakeStudentRepo) SetCurrentTopic(_ context.Context, id student.TelegramID, topic *string) error {
	if r.failing {
		return errors.New("store down")
	}
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

type fakeSessions struct {
	sessions map[student.TelegramID]*registration.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[student.TelegramID]*registration.Session)}
}

func (t *fakeSessions) Get(_ context.Context, id student.TelegramID) (*registration.Session, error) {
	s, ok := t.sessions[id]
	if !ok {
		return nil, registration.ErrSessionNotFound
	}
	return s, nil
}

func (t *fakeSessions) Put(_ context.Context, s *registration.Session) error {
	t.sessions[s.StudentID] = s
	return nil
}

func (t *fakeSessions) Remove(_ context.Context, id student.TelegramID) error {
	delete(t.sessions, id)
	return nil
}

type fakePending struct {
	entries map[review.SubmissionID]*review.PendingSubmission
}

func newFakePending() *fakePending {
	return &fakePending{entries: make(map[review.SubmissionID]*review.PendingSubmission)}
}

func (p *fakePending) Put(_ context.Context, sub *review.PendingSubmission) error {
	if _, ok := p.entries[sub.ID]; ok {
		return review.ErrDuplicateSubmission
	}
	p.entries[sub.ID] = sub
	return nil
}

func (p *fakePending) Get(_ context.Context, id review.SubmissionID) (*review.PendingSubmission, error) {
	sub, ok := p.entries[id]
	if !ok {
		return nil, review.ErrSubmissionNotFound
	}
	// Копия: записи изменяются только через Update.
	c := *sub
	return &c, nil
}

func (p *fakePending) Update(_ context.Context, id review.SubmissionID, fn func(*review.PendingSubmission)) error {
	sub, ok := p.entries[id]
	if !ok {
		return review.ErrSubmissionNotFound
	}
	fn(sub)
	return nil
}

func (p *fakePending) Remove(_ context.Context, id review.SubmissionID) (*review.PendingSubmission, error) {
	sub, ok := p.entries[id]
	if !ok {
		return nil, review.ErrSubmissionNotFound
	}
	delete(p.entries, id)
	return sub, nil
}

type fakeGradeRepo struct {
	students *fakeStudentRepo
	records  []review.GradeRecord
	failing  bool
}

func (g *fakeGradeRepo) ResolveGrade(_ context.Context, rec review.GradeRecord) (stats.Tally, error) {
	if g.failing {
		return stats.Tally{}, errors.New("store down")
	}
	if _, ok := g.students.students[rec.StudentID]; !ok {
		return stats.Tally{}, student.ErrStudentNotFound
	}

	g.records = append(g.records, rec)
	g.students.students[rec.StudentID].CurrentTopic = nil

	var tally stats.Tally
	for _, r := range g.records {
		if r.StudentID == rec.StudentID {
			tally.Add(r.Grade.Int())
		}
	}
	return tally, nil
}

func (g *fakeGradeRepo) TallyForUser(_ context.Context, id student.TelegramID) (stats.Tally, error) {
	var tally stats.Tally
	for _, r := range g.records {
		if r.StudentID == id {
			tally.Add(r.Grade.Int())
		}
	}
	return tally, nil
}

func (g *fakeGradeRepo) GroupStandings(context.Context, student.GroupCode) ([]stats.Standing, error) {
	return nil, nil
}

func (g *fakeGradeRepo) MonthlyStandings(context.Context, student.GroupCode, time.Time, time.Time) ([]stats.Standing, error) {
	return nil, nil
}

func (g *fakeGradeRepo) MonthlyByGroup(context.Context, time.Time, time.Time) ([]stats.GroupMonthlyRow, error) {
	return nil, nil
}

type fakeInvalidator struct {
	groups   []student.GroupCode
	students []student.TelegramID
}

func (f *fakeInvalidator) InvalidateGroup(_ context.Context, g student.GroupCode) error {
	f.groups = append(f.groups, g)
	return nil
}

func (f *fakeInvalidator) InvalidateStudent(_ context.Context, id student.TelegramID) error {
	f.students = append(f.students, id)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Registration
// ─────────────────────────────────────────────────────────────────────────────

func testRoster() *student.Roster {
	return student.NewRoster([]student.GroupCode{"101", "102", "203"})
}

func TestRegistrationHandler_FullFlow(t *testing.T) {
	ctx := context.Background()
	students := newFakeStudentRepo()
	h := NewRegistrationHandler(newFakeSessions(), students, testRoster())

	res, err := h.Start(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StepAskName, res.Kind)

	res, err = h.SubmitName(ctx, 42, "Aziz Aliyev")
	require.NoError(t, err)
	assert.Equal(t, StepAskGroup, res.Kind)

	res, err = h.ChooseGroup(ctx, 42, "101")
	require.NoError(t, err)
	assert.Equal(t, StepConfirmGroup, res.Kind)

	res, err = h.ConfirmGroup(ctx, 42, "aziz")
	require.NoError(t, err)
	assert.Equal(t, StepAskTopic, res.Kind)

	stored, err := students.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Aziz Aliyev", stored.FullName)
	assert.Equal(t, student.GroupCode("101"), stored.Group)
	assert.Nil(t, stored.CurrentTopic)

	res, err = h.SubmitTopic(ctx, 42, "Unit 3")
	require.NoError(t, err)
	assert.Equal(t, StepAwaitSubmission, res.Kind)

	stored, err = students.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Unit 3", stored.Topic())
}

func TestRegistrationHandler_RedeclareTopic(t *testing.T) {
	ctx := context.Background()
	students := newFakeStudentRepo()
	students.students[42] = &student.Student{TelegramID: 42, FullName: "Aziz Aliyev", Group: "101"}

	sessions := newFakeSessions()
	h := NewRegistrationHandler(sessions, students, testRoster())

	_, err := h.Start(ctx, 42)
	require.NoError(t, err)
	_, err = h.SubmitTopic(ctx, 42, "Unit 3")
	require.NoError(t, err)

	// Новая тема до видеозаписи заменяет прежнюю: ведомость и автомат
	// остаются согласованными.
	res, err := h.SubmitTopic(ctx, 42, "Unit 4")
	require.NoError(t, err)
	assert.Equal(t, StepAwaitSubmission, res.Kind)

	stored, err := students.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Unit 4", stored.Topic())

	sess, err := sessions.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, registration.StateAwaitingSubmission, sess.State)
}

func TestRegistrationHandler_SubmitTopic_RejectedBeforeLedgerWrite(t *testing.T) {
	ctx := context.Background()
	students := newFakeStudentRepo()
	topic := "Unit 3"
	students.students[42] = &student.Student{
		TelegramID: 42, FullName: "Aziz Aliyev", Group: "101", CurrentTopic: &topic,
	}

	// Сессия застряла на вводе имени - тема из этого шага недопустима.
	sessions := newFakeSessions()
	require.NoError(t, sessions.Put(ctx, registration.NewSession(42)))

	h := NewRegistrationHandler(sessions, students, testRoster())

	_, err := h.SubmitTopic(ctx, 42, "Unit 4")
	assert.ErrorIs(t, err, shared.ErrStateTransition)

	// Ведомость не тронута.
	stored, err := students.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Unit 3", stored.Topic())
}

func TestRegistrationHandler_Start_ReturningStudent(t *testing.T) {
	ctx := context.Background()
	students := newFakeStudentRepo()
	students.students[42] = &student.Student{TelegramID: 42, FullName: "Aziz Aliyev", Group: "101"}

	h := NewRegistrationHandler(newFakeSessions(), students, testRoster())

	res, err := h.Start(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StepAskTopic, res.Kind)
	require.NotNil(t, res.Student)
	assert.Equal(t, "Aziz Aliyev", res.Student.FullName)
}

func TestRegistrationHandler_ConfirmGroup_DuplicateSwallowed(t *testing.T) {
	ctx := context.Background()
	students := newFakeStudentRepo()
	students.students[42] = &student.Student{TelegramID: 42, FullName: "Aziz Aliyev", Group: "101"}

	sessions := newFakeSessions()
	h := NewRegistrationHandler(sessions, students, testRoster())

	// Сессия дошла до подтверждения, хотя запись уже есть.
	sess := registration.NewSession(42)
	require.NoError(t, sess.SetName("Aziz Aliyev"))
	require.NoError(t, sess.ProposeGroup("101", h.Roster()))
	require.NoError(t, sessions.Put(ctx, sess))

	res, err := h.ConfirmGroup(ctx, 42, "aziz")
	require.NoError(t, err)
	assert.Equal(t, StepAskTopic, res.Kind)
}

func TestRegistrationHandler_SubmitName_Invalid(t *testing.T) {
	ctx := context.Background()
	h := NewRegistrationHandler(newFakeSessions(), newFakeStudentRepo(), testRoster())

	_, err := h.Start(ctx, 42)
	require.NoError(t, err)

	_, err = h.SubmitName(ctx, 42, "   ")
	assert.True(t, shared.IsValidation(err))
}

func TestRegistrationHandler_NoSession(t *testing.T) {
	ctx := context.Background()
	h := NewRegistrationHandler(newFakeSessions(), newFakeStudentRepo(), testRoster())

	_, err := h.SubmitName(ctx, 42, "Aziz Aliyev")
	assert.True(t, shared.IsNotFound(err))
}

func TestRegistrationHandler_StoreDown(t *testing.T) {
	ctx := context.Background()
	students := newFakeStudentRepo()
	students.failing = true

	h := NewRegistrationHandler(newFakeSessions(), students, testRoster())

	_, err := h.Start(ctx, 42)
	assert.True(t, shared.IsStoreUnavailable(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Accept submission
// ─────────────────────────────────────────────────────────────────────────────

func acceptFixture(t *testing.T) (*AcceptSubmissionHandler, *fakeStudentRepo, *fakeSessions, *fakePending, *fakeGradeRepo) {
	t.Helper()

	students := newFakeStudentRepo()
	sessions := newFakeSessions()
	pending := newFakePending()
	grades := &fakeGradeRepo{students: students}

	h := NewAcceptSubmissionHandler(students, sessions, pending, grades)
	return h, students, sessions, pending, grades
}

func TestAcceptSubmission_Success(t *testing.T) {
	ctx := context.Background()
	h, students, _, pending, _ := acceptFixture(t)

	topic := "Unit 3"
	students.students[42] = &student.Student{
		TelegramID: 42, FullName: "Aziz Aliyev", Group: "101", CurrentTopic: &topic,
	}

	ticket, err := h.Handle(ctx, 42, 42)
	require.NoError(t, err)
	assert.True(t, ticket.SubmissionID.IsValid())
	assert.Equal(t, "Aziz Aliyev", ticket.StudentName)
	assert.Equal(t, "Unit 3", ticket.Topic)
	assert.Zero(t, ticket.Tally.Total)

	stored, err := pending.Get(ctx, ticket.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, "Unit 3", stored.Topic)
}

func TestAcceptSubmission_Unregistered(t *testing.T) {
	ctx := context.Background()
	h, _, _, pending, _ := acceptFixture(t)

	_, err := h.Handle(ctx, 42, 42)
	assert.True(t, shared.IsNotFound(err))
	assert.Empty(t, pending.entries)
}

func TestAcceptSubmission_NoTopic(t *testing.T) {
	ctx := context.Background()
	h, students, sessions, pending, _ := acceptFixture(t)

	students.students[42] = &student.Student{TelegramID: 42, FullName: "Aziz Aliyev", Group: "101"}

	// Сессия застряла в ожидании видеозаписи - должна вернуться к теме.
	sess := registration.NewReturningSession(42)
	require.NoError(t, sess.TopicDeclared())
	require.NoError(t, sessions.Put(ctx, sess))

	_, err := h.Handle(ctx, 42, 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Empty(t, pending.entries)
	assert.Equal(t, registration.StateAwaitingTopic, sess.State)
}

func TestAcceptSubmission_AttachAndDiscard(t *testing.T) {
	ctx := context.Background()
	h, students, _, pending, _ := acceptFixture(t)

	topic := "Unit 3"
	students.students[42] = &student.Student{
		TelegramID: 42, FullName: "Aziz Aliyev", Group: "101", CurrentTopic: &topic,
	}

	ticket, err := h.Handle(ctx, 42, 42)
	require.NoError(t, err)

	require.NoError(t, h.AttachMessages(ctx, ticket.SubmissionID, 100, 101))
	stored, err := pending.Get(ctx, ticket.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.ForwardedMessageID)
	assert.Equal(t, 101, stored.InfoMessageID)

	h.Discard(ctx, ticket.SubmissionID)
	_, err = pending.Get(ctx, ticket.SubmissionID)
	assert.ErrorIs(t, err, review.ErrSubmissionNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Resolve grade
// ─────────────────────────────────────────────────────────────────────────────

const teacherID = student.TelegramID(999)

func resolveFixture(t *testing.T) (*ResolveGradeHandler, *fakeStudentRepo, *fakeSessions, *fakePending, *fakeGradeRepo, *fakeInvalidator) {
	t.Helper()

	students := newFakeStudentRepo()
	sessions := newFakeSessions()
	pending := newFakePending()
	grades := &fakeGradeRepo{students: students}
	inv := &fakeInvalidator{}

	h := NewResolveGradeHandler(pending, grades, sessions, nil, inv, teacherID)
	return h, students, sessions, pending, grades, inv
}

func pendingEntry(t *testing.T, students *fakeStudentRepo, pending *fakePending) *review.PendingSubmission {
	t.Helper()

	topic := "Unit 3"
	students.students[42] = &student.Student{
		TelegramID: 42, FullName: "Aziz Aliyev", Group: "101", CurrentTopic: &topic,
	}

	sub := &review.PendingSubmission{
		ID:            "sub-1",
		StudentID:     42,
		StudentName:   "Aziz Aliyev",
		Group:         "101",
		Topic:         "Unit 3",
		StudentChatID: 42,
	}
	require.NoError(t, pending.Put(context.Background(), sub))
	return sub
}

func TestResolveGrade_Success(t *testing.T) {
	ctx := context.Background()
	h, students, sessions, pending, grades, inv := resolveFixture(t)
	pendingEntry(t, students, pending)

	sess := registration.NewReturningSession(42)
	require.NoError(t, sess.TopicDeclared())
	require.NoError(t, sessions.Put(ctx, sess))

	outcome, err := h.Handle(ctx, teacherID, "sub-1", 4, "Yaxshi!")
	require.NoError(t, err)

	assert.Equal(t, 4, outcome.Grade.Int())
	assert.Equal(t, 1, outcome.Tally.Total)
	assert.Equal(t, 1, outcome.Tally.Count(4))

	// Запись в журнале со снимком темы, тема снята.
	require.Len(t, grades.records, 1)
	assert.Equal(t, "Unit 3", grades.records[0].Topic)
	assert.Nil(t, students.students[42].CurrentTopic)

	// Ожидающая работа снята, сессия вернулась к теме, кеш сброшен.
	assert.Empty(t, pending.entries)
	assert.Equal(t, registration.StateAwaitingTopic, sess.State)
	assert.Equal(t, []student.GroupCode{"101"}, inv.groups)
	assert.Equal(t, []student.TelegramID{42}, inv.students)
}

func TestResolveGrade_Idempotent(t *testing.T) {
	ctx := context.Background()
	h, students, _, pending, grades, _ := resolveFixture(t)
	pendingEntry(t, students, pending)

	_, err := h.Handle(ctx, teacherID, "sub-1", 4, "")
	require.NoError(t, err)

	// Повторное нажатие: NotFound, журнал не растёт.
	_, err = h.Handle(ctx, teacherID, "sub-1", 4, "")
	assert.True(t, shared.IsNotFound(err))
	assert.Len(t, grades.records, 1)
}

func TestResolveGrade_Unauthorized(t *testing.T) {
	ctx := context.Background()
	h, students, _, pending, grades, _ := resolveFixture(t)
	pendingEntry(t, students, pending)

	_, err := h.Handle(ctx, 42, "sub-1", 4, "")
	assert.True(t, shared.IsUnauthorized(err))
	assert.Empty(t, grades.records)
	assert.Len(t, pending.entries, 1)
}

func TestResolveGrade_OutOfRange(t *testing.T) {
	ctx := context.Background()
	h, students, _, pending, grades, _ := resolveFixture(t)
	pendingEntry(t, students, pending)

	for _, v := range []int{0, 6, -1} {
		_, err := h.Handle(ctx, teacherID, "sub-1", v, "")
		assert.True(t, shared.IsValidation(err), "grade %d", v)
	}
	assert.Empty(t, grades.records)
	assert.Len(t, pending.entries, 1)
}

func TestResolveGrade_UnknownSubmission(t *testing.T) {
	ctx := context.Background()
	h, _, _, _, _, _ := resolveFixture(t)

	_, err := h.Handle(ctx, teacherID, "nope", 4, "")
	assert.True(t, shared.IsNotFound(err))
}

func TestResolveGrade_StoreDown_KeepsPending(t *testing.T) {
	ctx := context.Background()
	h, students, _, pending, grades, _ := resolveFixture(t)
	pendingEntry(t, students, pending)
	grades.failing = true

	_, err := h.Handle(ctx, teacherID, "sub-1", 4, "")
	assert.True(t, shared.IsStoreUnavailable(err))

	// Работа остаётся в ожидании: нажатие можно повторить.
	assert.Len(t, pending.entries, 1)
}

func TestResolveGrade_WaitsForStudentLock(t *testing.T) {
	ctx := context.Background()
	students := newFakeStudentRepo()
	grades := &fakeGradeRepo{students: students}
	store := memory.NewStore()

	topic := "Unit 3"
	students.students[42] = &student.Student{
		TelegramID: 42, FullName: "Aziz Aliyev", Group: "101", CurrentTopic: &topic,
	}
	require.NoError(t, store.PendingTable().Put(ctx, &review.PendingSubmission{
		ID:            "sub-1",
		StudentID:     42,
		StudentName:   "Aziz Aliyev",
		Group:         "101",
		Topic:         "Unit 3",
		StudentChatID: 42,
	}))

	sess := registration.NewReturningSession(42)
	require.NoError(t, sess.TopicDeclared())
	require.NoError(t, store.Put(ctx, sess))

	h := NewResolveGradeHandler(store.PendingTable(), grades, store, store, nil, teacherID)

	// Пока мьютекс ученика занят его собственной операцией, откат
	// сессии учителем не начинается.
	unlock := store.LockUser(42)

	done := make(chan error, 1)
	go func() {
		_, err := h.Handle(ctx, teacherID, "sub-1", 4, "")
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("grade resolution finished while the student lock was held")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, registration.StateAwaitingSubmission, sess.State)

	unlock()
	require.NoError(t, <-done)
	assert.Equal(t, registration.StateAwaitingTopic, sess.State)
}
