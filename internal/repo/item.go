package repo

import (
	"context"

	"FreshKeeper/internal/model"

	"gorm.io/gorm"
)

// ItemRepository определяет контракт доступа к Item для слоя сервиса.
type ItemRepository interface {
	// Create сохраняет новый item.
	Create(ctx context.Context, it *model.Item) error

	// Save перезаписывает все поля существующего item.
	Save(ctx context.Context, it *model.Item) error

	// GetByID возвращает item владельца по id. Если не найден — gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, ownerID, id string) (*model.Item, error)

	// ListActive возвращает все неиспользованные items владельца.
	ListActive(ctx context.Context, ownerID string) ([]model.Item, error)

	// ListByBucket возвращает членов группы.
	ListByBucket(ctx context.Context, bucketID string) ([]model.Item, error)

	// Delete удаляет item по id.
	Delete(ctx context.Context, it *model.Item) error

	// WithTx возвращает копию репозитория, привязанную к транзакции.
	WithTx(tx *gorm.DB) ItemRepository
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository создаёт реализацию репозитория для Item.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) WithTx(tx *gorm.DB) ItemRepository {
	return &itemRepo{db: tx}
}

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *itemRepo) Save(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *itemRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) ListActive(ctx context.Context, ownerID string) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_used = ?", ownerID, false).
		Order("expiration_date ASC, date_added ASC").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) ListByBucket(ctx context.Context, bucketID string) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("bucket_id = ?", bucketID).
		Order("date_added ASC").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) Delete(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Delete(&model.Item{}, "id = ?", it.ID).Error
}
