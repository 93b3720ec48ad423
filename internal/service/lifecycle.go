package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/model"
	"FreshKeeper/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LifecycleCoordinator — составные операции над item + группа + тикеты.
// Все мутации хранилища одной операции идут в одной транзакции: либо
// виден полный набор эффектов, либо никакой. Вызовы по одному владельцу
// сериализуются мьютексом — каждая операция делает check-then-act по
// разделяемому состоянию.
//
// Внешние вызовы сервиса уведомлений выполняются после коммита и не
// могут ни заблокировать запись, ни откатить её: напоминания best-effort.
type LifecycleCoordinator struct {
	db        *gorm.DB
	items     repo.ItemRepository
	recipes   repo.RecipeRepository
	grouping  *GroupingEngine
	reminders *ReminderScheduler
	clk       clock.Clock
	logger    *zap.SugaredLogger

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

// NewLifecycleCoordinator создаёт координатор жизненного цикла.
func NewLifecycleCoordinator(
	db *gorm.DB,
	items repo.ItemRepository,
	recipes repo.RecipeRepository,
	grouping *GroupingEngine,
	reminders *ReminderScheduler,
	clk clock.Clock,
	logger *zap.SugaredLogger,
) *LifecycleCoordinator {
	return &LifecycleCoordinator{
		db:        db,
		items:     items,
		recipes:   recipes,
		grouping:  grouping,
		reminders: reminders,
		clk:       clk,
		logger:    logger,
		owners:    make(map[string]*sync.Mutex),
	}
}

// ownerLock возвращает мьютекс владельца (одна точка сериализации на владельца).
func (c *LifecycleCoordinator) ownerLock(ownerID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.owners[ownerID]
	if !ok {
		l = &sync.Mutex{}
		c.owners[ownerID] = l
	}
	return l
}

// AddItem создаёт item, помещает его в группу по дню истечения срока и
// ставит напоминания. Возвращает созданный item.
func (c *LifecycleCoordinator) AddItem(ctx context.Context, ownerID, title string, expiration time.Time) (*model.Item, error) {
	l := c.ownerLock(ownerID)
	l.Lock()
	defer l.Unlock()

	it := &model.Item{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Title:          title,
		ExpirationDate: expiration,
		DateAdded:      c.clk.Now(),
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := c.items.WithTx(tx).Create(ctx, it); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		if _, err := c.grouping.WithTx(tx).Assign(ctx, it, ownerID, expiration); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.reminders.ScheduleFor(ctx, it); err != nil {
		c.logger.Errorw("AddItem: schedule failed", "item_id", it.ID, "error", err)
	}
	return it, nil
}

// MarkUsed помечает item использованным, выводит его из группы и снимает
// напоминания. Использованные items сохраняются всегда, независимо от лайка.
func (c *LifecycleCoordinator) MarkUsed(ctx context.Context, ownerID, id string) (*model.Item, error) {
	l := c.ownerLock(ownerID)
	l.Lock()
	defer l.Unlock()

	var it *model.Item
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var err error
		it, err = c.items.WithTx(tx).GetByID(ctx, ownerID, id)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}
		it.IsUsed = true
		if err := c.items.WithTx(tx).Save(ctx, it); err != nil {
			return fmt.Errorf("mark item used: %w", err)
		}
		return c.grouping.WithTx(tx).Detach(ctx, it)
	})
	if err != nil {
		return nil, err
	}

	if err := c.reminders.Cancel(ctx, it); err != nil {
		c.logger.Errorw("MarkUsed: cancel reminders failed", "item_id", id, "error", err)
	}
	return it, nil
}

// Delete удаляет item: выводит из группы, делит дочерние рецепты на
// лайкнутые (выживают с обнулённой ссылкой) и остальные (уходят вместе
// с item), удаляет сам item и снимает напоминания.
func (c *LifecycleCoordinator) Delete(ctx context.Context, ownerID, id string) error {
	l := c.ownerLock(ownerID)
	l.Lock()
	defer l.Unlock()

	var it *model.Item
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var err error
		it, err = c.items.WithTx(tx).GetByID(ctx, ownerID, id)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}
		return c.deleteInTx(ctx, tx, it)
	})
	if err != nil {
		return err
	}

	if err := c.reminders.Cancel(ctx, it); err != nil {
		c.logger.Errorw("Delete: cancel reminders failed", "item_id", id, "error", err)
	}
	return nil
}

// deleteInTx — общая часть удаления item внутри открытой транзакции.
func (c *LifecycleCoordinator) deleteInTx(ctx context.Context, tx *gorm.DB, it *model.Item) error {
	if err := c.grouping.WithTx(tx).Detach(ctx, it); err != nil {
		return err
	}
	if err := c.recipes.WithTx(tx).DetachLiked(ctx, it.ID); err != nil {
		return fmt.Errorf("detach liked recipes: %w", err)
	}
	if err := c.recipes.WithTx(tx).DeleteNonLiked(ctx, it.ID); err != nil {
		return fmt.Errorf("delete recipes: %w", err)
	}
	if err := c.items.WithTx(tx).Delete(ctx, it); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ToggleLike переключает лайк. Особый случай: снятие лайка с одиночного
// (вне группы), неиспользованного item удаляет его целиком — такой item
// существует только потому, что лайкнут. Проверка выполняется ДО любых
// мутаций, по состоянию на момент вызова.
// Возвращает (item, deleted): item == nil когда deleted == true.
func (c *LifecycleCoordinator) ToggleLike(ctx context.Context, ownerID, id string) (*model.Item, bool, error) {
	l := c.ownerLock(ownerID)
	l.Lock()
	defer l.Unlock()

	var it *model.Item
	var deleted bool
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var err error
		it, err = c.items.WithTx(tx).GetByID(ctx, ownerID, id)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}

		if it.IsLiked && it.BucketID == nil && !it.IsUsed {
			deleted = true
			return c.deleteInTx(ctx, tx, it)
		}

		it.IsLiked = !it.IsLiked
		if err := c.items.WithTx(tx).Save(ctx, it); err != nil {
			return fmt.Errorf("toggle like: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if deleted {
		if err := c.reminders.Cancel(ctx, it); err != nil {
			c.logger.Errorw("ToggleLike: cancel reminders failed", "item_id", id, "error", err)
		}
		return nil, true, nil
	}
	return it, false, nil
}
