package clock

import "time"

// Clock — источник времени для группировки и планирования напоминаний.
// Вынесен в интерфейс, чтобы сервисы не зависели от системных часов
// и тесты могли подставлять фиксированное «сегодня».
type Clock interface {
	// Now возвращает текущий момент.
	Now() time.Time

	// Today возвращает начало текущего дня.
	Today() time.Time

	// StartOfDay нормализует момент к началу его календарного дня.
	StartOfDay(t time.Time) time.Time

	// AddDays сдвигает момент на n календарных дней.
	AddDays(t time.Time, n int) time.Time

	// DaysBetween возвращает число календарных дней от a до b (b раньше a — отрицательное).
	DaysBetween(a, b time.Time) int

	// Location — часовой пояс, в котором считаются дни и время срабатывания.
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// New возвращает часы в локальном поясе процесса.
func New() Clock {
	return NewInLocation(time.Local)
}

// NewInLocation возвращает часы в заданном поясе.
func NewInLocation(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *systemClock) Today() time.Time {
	return c.StartOfDay(c.Now())
}

func (c *systemClock) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

func (c *systemClock) AddDays(t time.Time, n int) time.Time {
	return t.In(c.loc).AddDate(0, 0, n)
}

// DaysBetween считает разницу по календарным датам, а не по 24-часовым
// интервалам: переходы DST не влияют на результат.
func (c *systemClock) DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(c.loc).Date()
	by, bm, bd := b.In(c.loc).Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

func (c *systemClock) Location() *time.Location {
	return c.loc
}
