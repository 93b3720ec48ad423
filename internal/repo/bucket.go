package repo

import (
	"context"
	"time"

	"FreshKeeper/internal/model"

	"gorm.io/gorm"
)

// BucketRepository — контракт доступа к группам «истекают в один день».
type BucketRepository interface {
	// FindByOwnerAndDay ищет группу по ключу (владелец, нормализованный день).
	// Если не найдена — gorm.ErrRecordNotFound.
	FindByOwnerAndDay(ctx context.Context, ownerID string, day time.Time) (*model.Bucket, error)

	// Create сохраняет новую группу.
	Create(ctx context.Context, b *model.Bucket) error

	// Delete удаляет группу вместе со всеми её членами (каскад в одном коммите).
	Delete(ctx context.Context, id string) error

	// MemberCount возвращает число членов группы.
	MemberCount(ctx context.Context, id string) (int64, error)

	// ListEmpty возвращает группы владельца без единого члена.
	ListEmpty(ctx context.Context, ownerID string) ([]model.Bucket, error)

	// ListByOwner возвращает все группы владельца с членами, по возрастанию дня.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Bucket, error)

	// WithTx возвращает копию репозитория, привязанную к транзакции.
	WithTx(tx *gorm.DB) BucketRepository
}

type bucketRepo struct {
	db *gorm.DB
}

// NewBucketRepository создаёт реализацию репозитория для Bucket.
func NewBucketRepository(db *gorm.DB) BucketRepository {
	return &bucketRepo{db: db}
}

func (r *bucketRepo) WithTx(tx *gorm.DB) BucketRepository {
	return &bucketRepo{db: tx}
}

func (r *bucketRepo) FindByOwnerAndDay(ctx context.Context, ownerID string, day time.Time) (*model.Bucket, error) {
	var b model.Bucket
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND day = ?", ownerID, day).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bucketRepo) Create(ctx context.Context, b *model.Bucket) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// Delete не полагается на каскад уровня схемы: члены удаляются явно
// в той же транзакции, чтобы семантика не зависела от pragma/диалекта.
func (r *bucketRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bucket_id = ?", id).Delete(&model.Item{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Bucket{}, "id = ?", id).Error
	})
}

func (r *bucketRepo) MemberCount(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("bucket_id = ?", id).
		Count(&n).Error
	return n, err
}

func (r *bucketRepo) ListEmpty(ctx context.Context, ownerID string) ([]model.Bucket, error) {
	var bs []model.Bucket
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND NOT EXISTS (SELECT 1 FROM items WHERE items.bucket_id = buckets.id)", ownerID).
		Find(&bs).Error
	return bs, err
}

func (r *bucketRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Bucket, error) {
	var bs []model.Bucket
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("day ASC").
		Find(&bs).Error
	return bs, err
}
