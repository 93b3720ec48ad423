package notify

import (
	"context"
	"errors"
	"time"
)

// Status — состояние разрешения на отправку напоминаний.
type Status int

const (
	StatusNotDetermined Status = iota
	StatusDenied
	StatusGranted
)

func (s Status) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusDenied:
		return "denied"
	default:
		return "not_determined"
	}
}

// ErrPermissionDenied — разрешение на напоминания не выдано.
// Не фатальна: планирование становится no-op, данные сохраняются как обычно.
var ErrPermissionDenied = errors.New("notification permission denied")

// Ticket — отложенное напоминание во внешнем сервисе уведомлений.
type Ticket struct {
	ID     string    `json:"id"`
	FireAt time.Time `json:"fire_at"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
}

// Service — контракт внешнего сервиса уведомлений.
// Тикеты хранятся в разрезе владельца: один владелец не видит
// и не трогает чужие напоминания.
// Schedule и Cancel могут падать независимо по каждому тикету;
// планировщик обязан переживать такие отказы.
type Service interface {
	// AuthorizationStatus возвращает текущее состояние разрешения.
	AuthorizationStatus(ctx context.Context) (Status, error)

	// Schedule ставит тикет владельца с детерминированным id на момент fireAt.
	// Повторная постановка того же id перезаписывает существующий тикет.
	Schedule(ctx context.Context, ownerID, ticketID string, fireAt time.Time, title, body string) error

	// Cancel снимает тикеты владельца по id; отсутствующие id — не ошибка.
	Cancel(ctx context.Context, ownerID string, ticketIDs ...string) error

	// ListPending возвращает отложенные тикеты владельца (диагностика).
	ListPending(ctx context.Context, ownerID string) ([]Ticket, error)
}
