package model

import "time"

// Recipe — дочерняя сущность продукта (рецепт, найденный для него).
// При удалении родителя лайкнутые рецепты сохраняются с обнулённой
// ссылкой, остальные удаляются вместе с ним.
type Recipe struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	OwnerID string `gorm:"not null;index"`

	Title   string `gorm:"not null"`
	IsLiked bool   `gorm:"not null;default:false"`

	ItemID *string `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
