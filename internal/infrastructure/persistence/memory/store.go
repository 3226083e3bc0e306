// Package memory реализует процессные таблицы: сессии регистрации,
// ожидающие проверки работы и посерийную блокировку по ученику.
// Всё содержимое теряется при перезапуске - это задокументированное
// ограничение, а не ошибка.
package memory

import (
	"context"
	"sync"

	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/registration"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/review"
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"
)

// Store владеет всем изменяемым процессным состоянием бота.
type Store struct {
	mu       sync.RWMutex
	sessions map[student.TelegramID]*registration.Session
	pending  map[review.SubmissionID]*review.PendingSubmission

	// userLocks - мьютекс на ученика. Именно по ученику, не по шарду:
	// оценка берёт блокировку ученика, уже держа блокировку учителя,
	// и совпадение шардов было бы взаимоблокировкой.
	userLocks sync.Map
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		sessions: make(map[student.TelegramID]*registration.Session),
		pending:  make(map[review.SubmissionID]*review.PendingSubmission),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PER-USER SERIALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// LockUser захватывает мьютекс ученика и возвращает функцию освобождения.
// Гарантирует не более одной мутации на ученика одновременно; операции
// разных учеников идут параллельно.
func (s *Store) LockUser(id student.TelegramID) func() {
	val, _ := s.userLocks.LoadOrStore(id, &sync.Mutex{})
	mu := val.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION TABLE (registration.Table)
// ══════════════════════════════════════════════════════════════════════════════

// Get возвращает сессию ученика.
func (s *Store) Get(_ context.Context, id student.TelegramID) (*registration.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, registration.ErrSessionNotFound
	}
	return sess, nil
}

// Put сохраняет сессию (создаёт или заменяет).
func (s *Store) Put(_ context.Context, sess *registration.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.StudentID] = sess
	return nil
}

// Remove удаляет сессию, если она есть.
func (s *Store) Remove(_ context.Context, id student.TelegramID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PENDING TABLE (review.PendingTable)
// ══════════════════════════════════════════════════════════════════════════════

// PendingTable возвращает представление хранилища как таблицы
// ожидающих работ.
func (s *Store) PendingTable() review.PendingTable {
	return (*pendingView)(s)
}

// pendingView разводит одноимённые методы Get/Put/Remove двух таблиц.
type pendingView Store

func (p *pendingView) Put(_ context.Context, sub *review.PendingSubmission) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pending[sub.ID]; ok {
		return review.ErrDuplicateSubmission
	}
	p.pending[sub.ID] = sub
	return nil
}

func (p *pendingView) Get(_ context.Context, id review.SubmissionID) (*review.PendingSubmission, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sub, ok := p.pending[id]
	if !ok {
		return nil, review.ErrSubmissionNotFound
	}
	return sub, nil
}

// Update изменяет сохранённую работу под блокировкой хранилища.
func (p *pendingView) Update(_ context.Context, id review.SubmissionID, fn func(*review.PendingSubmission)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub, ok := p.pending[id]
	if !ok {
		return review.ErrSubmissionNotFound
	}
	fn(sub)
	return nil
}

// Remove удаляет работу ровно один раз: повторный вызов того же id
// возвращает ErrSubmissionNotFound, гася двойные нажатия.
func (p *pendingView) Remove(_ context.Context, id review.SubmissionID) (*review.PendingSubmission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub, ok := p.pending[id]
	if !ok {
		return nil, review.ErrSubmissionNotFound
	}
	delete(p.pending, id)
	return sub, nil
}

// PendingCount возвращает количество ожидающих работ (для /health).
func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// SessionCount возвращает количество активных сессий (для /health).
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
