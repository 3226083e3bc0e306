// Package student содержит доменную модель ученика класса.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// TelegramID представляет уникальный идентификатор пользователя Telegram.
type TelegramID int64

// IsValid проверяет, что TelegramID положительный.
func (t TelegramID) IsValid() bool {
	return t > 0
}

// GroupCode представляет код учебной группы (например, "101" или "203").
type GroupCode string

// IsValid проверяет корректность кода группы.
func (g GroupCode) IsValid() bool {
	s := string(g)
	return len(s) >= 2 && len(s) <= 10 && !strings.ContainsAny(s, " \t\n\r")
}

// String возвращает строковое представление кода группы.
func (g GroupCode) String() string {
	return string(g)
}

// Roster - закрытый набор допустимых групп. Ученик может записаться
// только в группу из этого набора.
type Roster struct {
	codes []GroupCode
	index map[GroupCode]struct{}
}

// NewRoster создаёт набор групп, сохраняя исходный порядок кодов.
func NewRoster(codes []GroupCode) *Roster {
	r := &Roster{
		codes: make([]GroupCode, 0, len(codes)),
		index: make(map[GroupCode]struct{}, len(codes)),
	}
	for _, c := range codes {
		if _, ok := r.index[c]; ok {
			continue
		}
		r.codes = append(r.codes, c)
		r.index[c] = struct{}{}
	}
	return r
}

// DefaultRoster возвращает стандартный набор групп школы.
func DefaultRoster() *Roster {
	codes := []GroupCode{"101", "102", "103"}
	for i := 201; i <= 215; i++ {
		codes = append(codes, GroupCode(fmt.Sprintf("%d", i)))
	}
	codes = append(codes, "246")
	return NewRoster(codes)
}

// Contains проверяет, входит ли код в набор.
func (r *Roster) Contains(code GroupCode) bool {
	_, ok := r.index[code]
	return ok
}

// Codes возвращает все коды в исходном порядке.
func (r *Roster) Codes() []GroupCode {
	out := make([]GroupCode, len(r.codes))
	copy(out, r.codes)
	return out
}

// Len возвращает количество групп в наборе.
func (r *Roster) Len() int {
	return len(r.codes)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - центральная сущность системы: ученик, привязанный к группе.
// Имя и группа неизменяемы после регистрации; единственное изменяемое
// поле - CurrentTopic, текущая заявленная тема.
type Student struct {
	// TelegramID - идентификатор пользователя в Telegram (первичный ключ).
	TelegramID TelegramID

	// FullName - полное имя, введённое при регистрации.
	FullName string

	// Username - @username в Telegram, может отсутствовать.
	Username string

	// Group - группа из закрытого набора.
	Group GroupCode

	// CurrentTopic - заявленная тема. nil, когда ученик не находится
	// между объявлением темы и выставлением оценки.
	CurrentTopic *string

	// CreatedAt - время регистрации.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTelegramID - невалидный Telegram ID.
	ErrInvalidTelegramID = errors.New("invalid telegram id: must be positive")

	// ErrInvalidFullName - невалидное имя ученика.
	ErrInvalidFullName = errors.New("invalid full name: must be 1-100 chars")

	// ErrGroupNotInRoster - группа не входит в закрытый набор.
	ErrGroupNotInRoster = errors.New("group is not in the roster")

	// ErrEmptyTopic - пустая тема.
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrNoCurrentTopic - у ученика нет заявленной темы.
	ErrNoCurrentTopic = errors.New("student has no declared topic")

	// ErrStudentNotFound - ученик не найден.
	ErrStudentNotFound = errors.New("student not found")

	// ErrStudentAlreadyExists - ученик уже зарегистрирован.
	ErrStudentAlreadyExists = errors.New("student already registered")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams содержит параметры для регистрации нового ученика.
type NewStudentParams struct {
	TelegramID TelegramID
	FullName   string
	Username   string
	Group      GroupCode
}

// NewStudent создаёт нового ученика с валидацией всех полей.
// Roster задаёт допустимые группы.
func NewStudent(params NewStudentParams, roster *Roster) (*Student, error) {
	if !params.TelegramID.IsValid() {
		return nil, ErrInvalidTelegramID
	}

	fullName := strings.TrimSpace(params.FullName)
	if len(fullName) == 0 || len(fullName) > 100 {
		return nil, ErrInvalidFullName
	}

	if roster == nil || !roster.Contains(params.Group) {
		return nil, ErrGroupNotInRoster
	}

	return &Student{
		TelegramID: params.TelegramID,
		FullName:   fullName,
		Username:   strings.TrimSpace(params.Username),
		Group:      params.Group,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// HasTopic возвращает true, если у ученика есть заявленная тема.
func (s *Student) HasTopic() bool {
	return s.CurrentTopic != nil && *s.CurrentTopic != ""
}

// DeclareTopic заявляет новую тему. Предыдущая тема (если была) заменяется:
// ученик ведёт не более одного цикла тема-оценка одновременно.
func (s *Student) DeclareTopic(topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}

	s.CurrentTopic = &topic
	return nil
}

// ClearTopic снимает заявленную тему после выставления оценки.
func (s *Student) ClearTopic() {
	s.CurrentTopic = nil
}

// Topic возвращает текущую тему или пустую строку.
func (s *Student) Topic() string {
	if s.CurrentTopic == nil {
		return ""
	}
	return *s.CurrentTopic
}

// String возвращает строковое представление ученика для логирования.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{TelegramID: %d, Name: %s, Group: %s, Topic: %q}",
		s.TelegramID, s.FullName, s.Group, s.Topic(),
	)
}

// Clone создаёт глубокую копию ученика.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s
	if s.CurrentTopic != nil {
		topic := *s.CurrentTopic
		clone.CurrentTopic = &topic
	}
	return &clone
}
