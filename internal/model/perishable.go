package model

import "time"

// Perishable — общий контракт сущностей со сроком годности.
// Логика напоминаний (детерминированные ID, пороги warning/expiration)
// написана против этого интерфейса, чтобы разные виды сущностей
// не дублировали одни и те же вычисления.
type Perishable interface {
	PerishableID() string
	PerishableOwner() string
	PerishableTitle() string
	ExpiresAt() time.Time
}
