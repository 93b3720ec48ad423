package model

import "time"

// Bucket — группа «истекают в один день»: все активные продукты владельца
// с одинаковым нормализованным днём срока годности.
// Группа эксклюзивно владеет своими членами: удаление группы каскадно
// удаляет все входящие items.
type Bucket struct {
	ID      string    `gorm:"primaryKey;type:uuid"`
	OwnerID string    `gorm:"not null;uniqueIndex:idx_bucket_owner_day"`
	Day     time.Time `gorm:"not null;uniqueIndex:idx_bucket_owner_day"` // начало дня

	Items []Item `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
