package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/model"
	"FreshKeeper/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GroupingEngine поддерживает инварианты групп «истекают в один день»:
// item состоит максимум в одной группе, на пару (владелец, день) существует
// максимум одна группа, опустевшая группа удаляется.
type GroupingEngine struct {
	items   repo.ItemRepository
	buckets repo.BucketRepository
	clk     clock.Clock
	logger  *zap.SugaredLogger
}

// NewGroupingEngine создаёт движок группировки.
func NewGroupingEngine(items repo.ItemRepository, buckets repo.BucketRepository, clk clock.Clock, logger *zap.SugaredLogger) *GroupingEngine {
	return &GroupingEngine{items: items, buckets: buckets, clk: clk, logger: logger}
}

// WithTx возвращает копию движка, привязанную к транзакции.
func (g *GroupingEngine) WithTx(tx *gorm.DB) *GroupingEngine {
	return &GroupingEngine{
		items:   g.items.WithTx(tx),
		buckets: g.buckets.WithTx(tx),
		clk:     g.clk,
		logger:  g.logger,
	}
}

// Assign помещает item в группу по нормализованному дню истечения срока,
// лениво создавая группу при отсутствии. Возвращает группу.
func (g *GroupingEngine) Assign(ctx context.Context, it *model.Item, ownerID string, expiration time.Time) (*model.Bucket, error) {
	day := g.clk.StartOfDay(expiration)

	b, err := g.buckets.FindByOwnerAndDay(ctx, ownerID, day)
	switch {
	case err == nil:
		// существующая группа — просто присоединяем
	case errors.Is(err, gorm.ErrRecordNotFound):
		b = &model.Bucket{ID: uuid.NewString(), OwnerID: ownerID, Day: day}
		if err := g.buckets.Create(ctx, b); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		g.logger.Infow("Assign: bucket created", "owner_id", ownerID, "day", day.Format("2006-01-02"), "bucket_id", b.ID)
	default:
		return nil, fmt.Errorf("find bucket: %w", err)
	}

	it.BucketID = &b.ID
	it.ExpirationDate = day
	if err := g.items.Save(ctx, it); err != nil {
		return nil, fmt.Errorf("attach item to bucket: %w", err)
	}
	return b, nil
}

// Detach убирает item из его группы. Опустевшая группа удаляется в том же
// вызове. Если item без группы или группа уже исчезла — no-op.
func (g *GroupingEngine) Detach(ctx context.Context, it *model.Item) error {
	if it.BucketID == nil {
		return nil
	}
	bucketID := *it.BucketID

	it.BucketID = nil
	if err := g.items.Save(ctx, it); err != nil {
		return fmt.Errorf("detach item from bucket: %w", err)
	}

	n, err := g.buckets.MemberCount(ctx, bucketID)
	if err != nil {
		return fmt.Errorf("count bucket members: %w", err)
	}
	if n == 0 {
		// последняя единица ушла — группа больше не нужна
		if err := g.buckets.Delete(ctx, bucketID); err != nil {
			return fmt.Errorf("delete empty bucket: %w", err)
		}
		g.logger.Infow("Detach: empty bucket removed", "bucket_id", bucketID)
	}
	return nil
}

// CleanupOrphans удаляет группы владельца без единого члена — защитная
// сборка мусора от остатков частичных сбоев. Запускается один раз за
// жизнь процесса, до любых других операций с группами.
func (g *GroupingEngine) CleanupOrphans(ctx context.Context, ownerID string) error {
	orphans, err := g.buckets.ListEmpty(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list empty buckets: %w", err)
	}
	for _, b := range orphans {
		if err := g.buckets.Delete(ctx, b.ID); err != nil {
			return fmt.Errorf("delete orphan bucket %s: %w", b.ID, err)
		}
	}
	if len(orphans) > 0 {
		g.logger.Infow("CleanupOrphans: removed empty buckets", "owner_id", ownerID, "count", len(orphans))
	}
	return nil
}
