package repo

import (
	"context"

	"FreshKeeper/internal/model"

	"gorm.io/gorm"
)

// RecipeRepository — контракт доступа к дочерним рецептам продукта.
type RecipeRepository interface {
	// Create сохраняет новый рецепт.
	Create(ctx context.Context, rec *model.Recipe) error

	// ListByItem возвращает рецепты, привязанные к item.
	ListByItem(ctx context.Context, itemID string) ([]model.Recipe, error)

	// DeleteNonLiked удаляет нелайкнутые рецепты item (уходят вместе с ним).
	DeleteNonLiked(ctx context.Context, itemID string) error

	// DetachLiked обнуляет ссылку на item у лайкнутых рецептов (они выживают).
	DetachLiked(ctx context.Context, itemID string) error

	// WithTx возвращает копию репозитория, привязанную к транзакции.
	WithTx(tx *gorm.DB) RecipeRepository
}

type recipeRepo struct {
	db *gorm.DB
}

// NewRecipeRepository создаёт реализацию репозитория для Recipe.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepo{db: db}
}

func (r *recipeRepo) WithTx(tx *gorm.DB) RecipeRepository {
	return &recipeRepo{db: tx}
}

func (r *recipeRepo) Create(ctx context.Context, rec *model.Recipe) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recipeRepo) ListByItem(ctx context.Context, itemID string) ([]model.Recipe, error) {
	var recs []model.Recipe
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Find(&recs).Error
	return recs, err
}

func (r *recipeRepo) DeleteNonLiked(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).
		Where("item_id = ? AND is_liked = ?", itemID, false).
		Delete(&model.Recipe{}).Error
}

func (r *recipeRepo) DetachLiked(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Where("item_id = ? AND is_liked = ?", itemID, true).
		Update("item_id", nil).Error
}
