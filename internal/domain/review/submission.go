// Package review содержит корреляцию поданных работ с решениями учителя:
// ожидающие проверки работы и записи журнала оценок.
package review

import (
	"context"
	"errors"
	"time"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/stats"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// SubmissionID - непрозрачный идентификатор поданной работы (UUID),
// выдаётся при приёме и живёт до выставления оценки.
type SubmissionID string

// IsValid проверяет, что идентификатор непустой.
func (id SubmissionID) IsValid() bool {
	return id != ""
}

// String возвращает строковое представление идентификатора.
func (id SubmissionID) String() string {
	return string(id)
}

// Grade - балл от 1 до 5 включительно.
type Grade int

// NewGrade валидирует балл.
func NewGrade(v int) (Grade, error) {
	if v < 1 || v > 5 {
		return 0, ErrGradeOutOfRange
	}
	return Grade(v), nil
}

// Int возвращает числовое значение балла.
func (g Grade) Int() int {
	return int(g)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrGradeOutOfRange - балл вне диапазона 1..5.
	ErrGradeOutOfRange = errors.New("grade must be between 1 and 5")

	// ErrSubmissionNotFound - ожидающая работа не найдена
	// (в том числе при повторном нажатии на уже оценённую).
	ErrSubmissionNotFound = errors.New("pending submission not found")

	// ErrDuplicateSubmission - работа с таким идентификатором уже ожидает.
	ErrDuplicateSubmission = errors.New("submission id already pending")

	// ErrNotReviewer - оценивать может только назначенный учитель.
	ErrNotReviewer = errors.New("only the designated reviewer may grade")
)

// ══════════════════════════════════════════════════════════════════════════════
// PENDING SUBMISSION
// ══════════════════════════════════════════════════════════════════════════════

// PendingSubmission - работа, ожидающая решения учителя. Живёт только
// в памяти процесса; перезапуск теряет все ожидающие работы.
type PendingSubmission struct {
	// ID - идентификатор, зашитый в кнопки клавиатуры оценок.
	ID SubmissionID

	// StudentID - владелец работы.
	StudentID student.TelegramID

	// StudentName - снимок имени на момент подачи.
	StudentName string

	// Group - группа ученика.
	Group student.GroupCode

	// Topic - снимок темы на момент подачи. Запись журнала получает
	// именно этот снимок, даже если тема изменится позже.
	Topic string

	// StudentChatID - чат ученика для отправки результата.
	StudentChatID int64

	// ForwardedMessageID - id пересланного видео в чате учителя.
	ForwardedMessageID int

	// InfoMessageID - id сообщения со сводкой и клавиатурой оценок.
	InfoMessageID int

	// AcceptedAt - время приёма работы.
	AcceptedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// PENDING TABLE
// ══════════════════════════════════════════════════════════════════════════════

// PendingTable определяет контракт таблицы ожидающих работ.
// Удаление строго однократное: второй Remove того же id возвращает
// ErrSubmissionNotFound, что и гасит двойные нажатия учителя.
type PendingTable interface {
	// Put сохраняет работу. Возвращает ErrDuplicateSubmission, если
	// работа с таким id уже ожидает.
	Put(ctx context.Context, sub *PendingSubmission) error

	// Get возвращает работу или ErrSubmissionNotFound.
	Get(ctx context.Context, id SubmissionID) (*PendingSubmission, error)

	// Update атомарно изменяет сохранённую работу через fn или
	// возвращает ErrSubmissionNotFound.
	Update(ctx context.Context, id SubmissionID, fn func(*PendingSubmission)) error

	// Remove удаляет работу ровно один раз; повторный вызов -
	// ErrSubmissionNotFound.
	Remove(ctx context.Context, id SubmissionID) (*PendingSubmission, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE LEDGER (write side)
// ══════════════════════════════════════════════════════════════════════════════

// GradeRecord - неизменяемая запись журнала оценок.
type GradeRecord struct {
	StudentID student.TelegramID
	Topic     string
	Grade     Grade
	Feedback  string
	GradedAt  time.Time
}

// GradeRepository определяет запись в журнал оценок.
type GradeRepository interface {
	// ResolveGrade атомарно вставляет запись журнала и снимает
	// текущую тему ученика, затем в той же транзакции читает сводку
	// ученика - она уже учитывает только что вставленную запись.
	ResolveGrade(ctx context.Context, rec GradeRecord) (stats.Tally, error)
}
