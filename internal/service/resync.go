package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/repo"

	"go.uber.org/zap"
)

// окно, в течение которого повторный SyncAll по владельцу — no-op
const resyncCooldown = 60 * time.Second

// ResyncCoordinator сводит состояние планировщика с состоянием items
// после рестартов процесса и возвращений приложения на передний план.
// Проход дёшев благодаря идемпотентности ScheduleFor (cancel-then-create),
// но ограничен кулдауном по владельцу.
type ResyncCoordinator struct {
	items     repo.ItemRepository
	grouping  *GroupingEngine
	reminders *ReminderScheduler
	clk       clock.Clock
	logger    *zap.SugaredLogger

	launchOnce sync.Once

	mu         sync.Mutex
	lastSync   map[string]time.Time
	inProgress map[string]bool
}

// NewResyncCoordinator создаёт координатор ресинка.
func NewResyncCoordinator(items repo.ItemRepository, grouping *GroupingEngine, reminders *ReminderScheduler, clk clock.Clock, logger *zap.SugaredLogger) *ResyncCoordinator {
	return &ResyncCoordinator{
		items:      items,
		grouping:   grouping,
		reminders:  reminders,
		clk:        clk,
		logger:     logger,
		lastSync:   make(map[string]time.Time),
		inProgress: make(map[string]bool),
	}
}

// CleanupOnLaunch запускает защитную сборку пустых групп. Выполняется
// ровно один раз за жизнь процесса, повторные вызовы — no-op.
func (c *ResyncCoordinator) CleanupOnLaunch(ctx context.Context, ownerID string) error {
	var err error
	c.launchOnce.Do(func() {
		err = c.grouping.CleanupOrphans(ctx, ownerID)
	})
	return err
}

// SyncAll перепланирует напоминания для всех активных items владельца.
// Повторный вызов в пределах 60 секунд от последнего успешного прохода —
// no-op с логом остатка кулдауна; конкурентный вызов во время идущего
// прохода тоже коротко замыкается, а не встаёт в очередь.
func (c *ResyncCoordinator) SyncAll(ctx context.Context, ownerID string) error {
	now := c.clk.Now()

	c.mu.Lock()
	if c.inProgress[ownerID] {
		c.mu.Unlock()
		c.logger.Infow("SyncAll: already running, skipping", "owner_id", ownerID)
		return nil
	}
	if last, ok := c.lastSync[ownerID]; ok {
		if remaining := resyncCooldown - now.Sub(last); remaining > 0 {
			c.mu.Unlock()
			c.logger.Infow("SyncAll: cooldown active, skipping",
				"owner_id", ownerID, "remaining", remaining.Round(time.Second).String())
			return nil
		}
	}
	c.inProgress[ownerID] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inProgress, ownerID)
		c.mu.Unlock()
	}()

	items, err := c.items.ListActive(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list active items: %w", err)
	}

	for i := range items {
		if err := c.reminders.ScheduleFor(ctx, &items[i]); err != nil {
			// сбой одного item не прерывает проход
			c.logger.Errorw("SyncAll: reschedule failed", "item_id", items[i].ID, "error", err)
		}
	}

	// метка последнего синка — только после завершённого прохода
	c.mu.Lock()
	c.lastSync[ownerID] = c.clk.Now()
	c.mu.Unlock()

	c.logger.Infow("SyncAll: pass complete", "owner_id", ownerID, "items", len(items))
	return nil
}
