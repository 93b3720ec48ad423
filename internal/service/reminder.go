package service

import (
	"context"
	"fmt"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/model"
	"FreshKeeper/internal/notify"

	"go.uber.org/zap"
)

// Суффиксы детерминированных ID тикетов. Формат должен совпадать между
// запусками процесса — на нём держится идемпотентность планирования.
const (
	warningSuffix    = "_warning_notification_id"
	expirationSuffix = "_expiration_notification_id"

	// за сколько дней до истечения срока ставится предупреждение
	warningLeadDays = 7
)

// WarningID возвращает детерминированный ID предупреждающего тикета.
func WarningID(p model.Perishable) string {
	return p.PerishableID() + warningSuffix
}

// ExpirationID возвращает детерминированный ID тикета на день истечения.
func ExpirationID(p model.Perishable) string {
	return p.PerishableID() + expirationSuffix
}

// ReminderScheduler переводит состояние item в тикеты напоминаний.
// На item существует максимум два тикета с воспроизводимыми ID;
// повторный ScheduleFor без смены состояния не плодит дубликатов.
type ReminderScheduler struct {
	notifier notify.Service
	clk      clock.Clock
	hour     int
	minute   int
	logger   *zap.SugaredLogger
}

// NewReminderScheduler создаёт планировщик. hour/minute — локальное время
// срабатывания напоминаний.
func NewReminderScheduler(notifier notify.Service, clk clock.Clock, hour, minute int, logger *zap.SugaredLogger) *ReminderScheduler {
	return &ReminderScheduler{notifier: notifier, clk: clk, hour: hour, minute: minute, logger: logger}
}

// ScheduleFor пересчитывает тикеты для p: сначала безусловно снимает
// существующие (cancel-then-create), затем ставит заново по порогу:
//   - осталось >= 7 дней: warning за 7 дней до срока и expiration в день срока;
//   - осталось от 0 до 6 дней: только expiration;
//   - срок уже прошёл: тикеты не ставятся вовсе.
//
// Отказы сервиса уведомлений не ошибка вызова: напоминания best-effort,
// каждый тикет пробуем независимо, сбои логируем.
func (s *ReminderScheduler) ScheduleFor(ctx context.Context, p model.Perishable) error {
	if err := s.Cancel(ctx, p); err != nil {
		s.logger.Warnw("ScheduleFor: cancel before create failed", "item_id", p.PerishableID(), "error", err)
	}

	status, err := s.notifier.AuthorizationStatus(ctx)
	if err != nil {
		s.logger.Warnw("ScheduleFor: authorization check failed", "item_id", p.PerishableID(), "error", err)
		return nil
	}
	if status != notify.StatusGranted {
		// разрешение советующее, не блокирующее: данные живут дальше без тикетов
		s.logger.Infow("ScheduleFor: notifications not authorized, skipping",
			"item_id", p.PerishableID(), "status", status.String())
		return nil
	}

	day := s.clk.StartOfDay(p.ExpiresAt())
	daysLeft := s.clk.DaysBetween(s.clk.Today(), day)
	if daysLeft < 0 {
		s.logger.Infow("ScheduleFor: item already expired, nothing to schedule",
			"item_id", p.PerishableID(), "expired", day.Format("2006-01-02"))
		return nil
	}

	if daysLeft >= warningLeadDays {
		warnAt := s.triggerAt(s.clk.AddDays(day, -warningLeadDays))
		body := fmt.Sprintf("%s expires in %d days", p.PerishableTitle(), warningLeadDays)
		if err := s.notifier.Schedule(ctx, p.PerishableOwner(), WarningID(p), warnAt, p.PerishableTitle(), body); err != nil {
			// не блокируем второй тикет
			s.logger.Errorw("ScheduleFor: warning ticket failed", "item_id", p.PerishableID(), "error", err)
		}
	}

	expireAt := s.triggerAt(day)
	body := fmt.Sprintf("%s expires today", p.PerishableTitle())
	if err := s.notifier.Schedule(ctx, p.PerishableOwner(), ExpirationID(p), expireAt, p.PerishableTitle(), body); err != nil {
		s.logger.Errorw("ScheduleFor: expiration ticket failed", "item_id", p.PerishableID(), "error", err)
	}
	return nil
}

// Cancel безусловно снимает оба тикета p; отсутствие любого из них — не ошибка.
func (s *ReminderScheduler) Cancel(ctx context.Context, p model.Perishable) error {
	return s.notifier.Cancel(ctx, p.PerishableOwner(), WarningID(p), ExpirationID(p))
}

// triggerAt резолвит фиксированные часы/минуты на дату в поясе планировщика.
// Резолв происходит в момент планирования и позже не пересчитывается.
func (s *ReminderScheduler) triggerAt(day time.Time) time.Time {
	y, m, d := day.In(s.clk.Location()).Date()
	return time.Date(y, m, d, s.hour, s.minute, 0, 0, s.clk.Location())
}
