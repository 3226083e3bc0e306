package student

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции над записями учеников.
type Repository interface {
	// Create создаёт нового ученика.
	// Возвращает ErrStudentAlreadyExists, если ученик уже зарегистрирован.
	Create(ctx context.Context, student *Student) error

	// GetByTelegramID возвращает ученика по Telegram ID.
	// Возвращает ErrStudentNotFound, если ученик не найден.
	GetByTelegramID(ctx context.Context, telegramID TelegramID) (*Student, error)

	// SetCurrentTopic записывает заявленную тему (nil снимает тему).
	// Возвращает ErrStudentNotFound, если ученик не найден.
	SetCurrentTopic(ctx context.Context, telegramID TelegramID, topic *string) error

	// ExistsByTelegramID проверяет существование по Telegram ID.
	ExistsByTelegramID(ctx context.Context, telegramID TelegramID) (bool, error)

	// GetByGroup возвращает всех учеников группы, отсортированных по имени.
	GetByGroup(ctx context.Context, group GroupCode) ([]*Student, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Для кеширования часто запрашиваемых данных.
// ══════════════════════════════════════════════════════════════════════════════

// Cache определяет операции кеширования данных учеников.
type Cache interface {
	// GetByTelegramID получает ученика из кеша по Telegram ID.
	GetByTelegramID(ctx context.Context, telegramID TelegramID) (*Student, error)

	// SetByTelegramID сохраняет ученика в кеш с ключом Telegram ID.
	SetByTelegramID(ctx context.Context, student *Student, ttl time.Duration) error

	// Invalidate инвалидирует записи ученика в кеше.
	Invalidate(ctx context.Context, telegramID TelegramID) error
}
