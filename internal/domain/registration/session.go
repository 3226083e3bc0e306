// Package registration содержит конечный автомат регистрации и подачи темы.
// Сессии живут только в памяти процесса и теряются при перезапуске.
package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// State определяет шаг, на котором находится ученик.
type State string

const (
	// StateAwaitingName - ждём полное имя.
	StateAwaitingName State = "awaiting_name"
	// StateAwaitingGroup - ждём выбор группы с клавиатуры.
	StateAwaitingGroup State = "awaiting_group"
	// StateConfirmingGroup - ждём подтверждение выбранной группы.
	StateConfirmingGroup State = "confirming_group"
	// StateAwaitingTopic - регистрация завершена, ждём тему.
	StateAwaitingTopic State = "awaiting_topic"
	// StateAwaitingSubmission - тема заявлена, ждём видеозапись.
	StateAwaitingSubmission State = "awaiting_submission"
)

// IsValid проверяет, что состояние корректно.
func (s State) IsValid() bool {
	switch s {
	case StateAwaitingName, StateAwaitingGroup, StateConfirmingGroup,
		StateAwaitingTopic, StateAwaitingSubmission:
		return true
	default:
		return false
	}
}

// transitions - явная таблица допустимых переходов.
// Любой переход вне таблицы - ErrBadTransition.
var transitions = map[State][]State{
	StateAwaitingName:       {StateAwaitingGroup},
	StateAwaitingGroup:      {StateConfirmingGroup},
	StateConfirmingGroup:    {StateAwaitingTopic, StateAwaitingGroup},
	StateAwaitingTopic:      {StateAwaitingSubmission},
	StateAwaitingSubmission: {StateAwaitingTopic, StateAwaitingSubmission},
}

// CanTransition проверяет допустимость перехода from -> to.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrBadTransition - шаг не разрешён из текущего состояния.
	ErrBadTransition = errors.New("registration step not allowed from current state")

	// ErrEmptyName - пустое имя.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyTopic - пустая тема.
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrSessionNotFound - сессия не найдена.
	ErrSessionNotFound = errors.New("registration session not found")

	// ErrNoGroupChosen - группа ещё не выбрана.
	ErrNoGroupChosen = errors.New("no group chosen yet")
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Session хранит частично собранные данные регистрации одного ученика.
type Session struct {
	// StudentID - Telegram ID владельца сессии.
	StudentID student.TelegramID

	// State - текущий шаг автомата.
	State State

	// PendingName - имя, введённое на шаге AwaitingName.
	PendingName string

	// PendingGroup - группа, выбранная, но ещё не подтверждённая.
	PendingGroup student.GroupCode

	// Page - текущая страница клавиатуры групп.
	Page int

	// CreatedAt - время создания сессии.
	CreatedAt time.Time

	// UpdatedAt - время последнего шага.
	UpdatedAt time.Time
}

// NewSession создаёт свежую сессию на шаге ввода имени.
func NewSession(id student.TelegramID) *Session {
	now := time.Now().UTC()
	return &Session{
		StudentID: id,
		State:     StateAwaitingName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewReturningSession создаёт сессию для уже зарегистрированного ученика,
// сразу на шаге ввода темы.
func NewReturningSession(id student.TelegramID) *Session {
	s := NewSession(id)
	s.State = StateAwaitingTopic
	return s
}

// transition переводит сессию в новое состояние с проверкой таблицы.
func (s *Session) transition(to State) error {
	if !CanTransition(s.State, to) {
		return ErrBadTransition
	}
	s.State = to
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// SetName сохраняет имя и переводит сессию к выбору группы.
func (s *Session) SetName(name string) error {
	if s.State != StateAwaitingName {
		return ErrBadTransition
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	s.PendingName = name
	return s.transition(StateAwaitingGroup)
}

// ProposeGroup запоминает выбранную группу и требует подтверждения.
// Группа неизменяема после регистрации, поэтому шаг двухфазный.
func (s *Session) ProposeGroup(code student.GroupCode, roster *student.Roster) error {
	if s.State != StateAwaitingGroup {
		return ErrBadTransition
	}

	if roster == nil || !roster.Contains(code) {
		return student.ErrGroupNotInRoster
	}

	s.PendingGroup = code
	return s.transition(StateConfirmingGroup)
}

// ConfirmGroup подтверждает выбор и завершает регистрацию.
func (s *Session) ConfirmGroup() error {
	if s.State != StateConfirmingGroup {
		return ErrBadTransition
	}
	if s.PendingGroup == "" {
		return ErrNoGroupChosen
	}
	return s.transition(StateAwaitingTopic)
}

// CancelGroup возвращает к выбору группы, сбрасывая неподтверждённый выбор.
func (s *Session) CancelGroup() error {
	if s.State != StateConfirmingGroup {
		return ErrBadTransition
	}

	s.PendingGroup = ""
	return s.transition(StateAwaitingGroup)
}

// CanDeclareTopic сообщает, допустимо ли сейчас заявить тему.
// Повторная тема до отправки видеозаписи заменяет прежнюю.
func (s *Session) CanDeclareTopic() bool {
	return s.State == StateAwaitingTopic || s.State == StateAwaitingSubmission
}

// TopicDeclared фиксирует, что тема заявлена: ждём видеозапись.
func (s *Session) TopicDeclared() error {
	if !s.CanDeclareTopic() {
		return ErrBadTransition
	}
	return s.transition(StateAwaitingSubmission)
}

// ResetToTopic возвращает к вводу темы (после оценки или потери темы).
func (s *Session) ResetToTopic() error {
	if s.State != StateAwaitingSubmission {
		return ErrBadTransition
	}
	return s.transition(StateAwaitingTopic)
}

// FlipPage листает клавиатуру групп. Меняет только курсор страницы,
// состояние автомата не трогает.
func (s *Session) FlipPage(page, pageCount int) {
	if page < 0 {
		page = 0
	}
	if pageCount > 0 && page >= pageCount {
		page = pageCount - 1
	}
	s.Page = page
	s.UpdatedAt = time.Now().UTC()
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION TABLE
// ══════════════════════════════════════════════════════════════════════════════

// Table определяет контракт хранилища сессий. Реализация - in-memory,
// см. infrastructure/persistence/memory.
type Table interface {
	// Get возвращает сессию ученика или ErrSessionNotFound.
	Get(ctx context.Context, id student.TelegramID) (*Session, error)

	// Put сохраняет сессию (создаёт или заменяет).
	Put(ctx context.Context, session *Session) error

	// Remove удаляет сессию, если она есть.
	Remove(ctx context.Context, id student.TelegramID) error
}
