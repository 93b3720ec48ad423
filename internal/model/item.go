package model

import "time"

// Item — скоропортящийся продукт пользователя.
type Item struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	OwnerID string `gorm:"not null;index"`

	Title          string    `gorm:"not null"`
	ExpirationDate time.Time `gorm:"not null;index"` // нормализована к началу дня
	DateAdded      time.Time `gorm:"not null"`

	IsUsed  bool `gorm:"not null;default:false"`
	IsLiked bool `gorm:"not null;default:false"`

	// Связь с группой: слабая обратная ссылка, владельцем членов является группа.
	BucketID *string `gorm:"type:uuid;index"`
	Bucket   *Bucket `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// Дочерние рецепты: лайкнутые переживают удаление item (ссылка обнуляется).
	Recipes []Recipe `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PerishableID — идентификатор для детерминированных ID напоминаний.
func (i *Item) PerishableID() string { return i.ID }

// PerishableOwner возвращает владельца.
func (i *Item) PerishableOwner() string { return i.OwnerID }

// PerishableTitle возвращает название для текста напоминания.
func (i *Item) PerishableTitle() string { return i.Title }

// ExpiresAt возвращает дату истечения срока годности.
func (i *Item) ExpiresAt() time.Time { return i.ExpirationDate }

var _ Perishable = (*Item)(nil)
