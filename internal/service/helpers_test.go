package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/model"
	"FreshKeeper/internal/notify"
	"FreshKeeper/internal/repo"

	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует in-memory SQLite (modernc.org/sqlite) для тестов сервисов
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file::memory:?cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(&model.Bucket{}, &model.Item{}, &model.Recipe{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM recipes")
		db.Exec("DELETE FROM items")
		db.Exec("DELETE FROM buckets")
	})
	return db
}

// --- Фейковые часы с управляемым «сейчас» ---
type fakeClock struct {
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now.UTC()} }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fakeClock) Now() time.Time   { return f.now }
func (f *fakeClock) Today() time.Time { return f.StartOfDay(f.now) }
func (f *fakeClock) StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
func (f *fakeClock) AddDays(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }
func (f *fakeClock) DaysBetween(a, b time.Time) int {
	return int(f.StartOfDay(b).Sub(f.StartOfDay(a)) / (24 * time.Hour))
}
func (f *fakeClock) Location() *time.Location { return time.UTC }

var _ clock.Clock = (*fakeClock)(nil)

// --- Фейковый сервис уведомлений, хранит тикеты в памяти ---
type fakeNotifier struct {
	mu      sync.Mutex
	status  notify.Status
	tickets map[string]notify.Ticket
	owners  map[string]string // ticketID -> ownerID
	failIDs map[string]bool   // Schedule этих id падает

	scheduleCalls int
	cancelCalls   int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		status:  notify.StatusGranted,
		tickets: make(map[string]notify.Ticket),
		owners:  make(map[string]string),
		failIDs: make(map[string]bool),
	}
}

func (f *fakeNotifier) AuthorizationStatus(ctx context.Context) (notify.Status, error) {
	return f.status, nil
}

func (f *fakeNotifier) Schedule(ctx context.Context, ownerID, ticketID string, fireAt time.Time, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleCalls++
	if f.failIDs[ticketID] {
		return errors.New("notification service rejected ticket")
	}
	f.tickets[ticketID] = notify.Ticket{ID: ticketID, FireAt: fireAt, Title: title, Body: body}
	f.owners[ticketID] = ownerID
	return nil
}

func (f *fakeNotifier) Cancel(ctx context.Context, ownerID string, ticketIDs ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	for _, id := range ticketIDs {
		if f.owners[id] != "" && f.owners[id] != ownerID {
			continue
		}
		delete(f.tickets, id)
		delete(f.owners, id)
	}
	return nil
}

func (f *fakeNotifier) ListPending(ctx context.Context, ownerID string) ([]notify.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notify.Ticket, 0, len(f.tickets))
	for id, t := range f.tickets {
		if f.owners[id] != ownerID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeNotifier) pending() map[string]notify.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]notify.Ticket, len(f.tickets))
	for k, v := range f.tickets {
		out[k] = v
	}
	return out
}

var _ notify.Service = (*fakeNotifier)(nil)

// --- Полный стек сервисов поверх тестовой БД ---
type testStack struct {
	db        *gorm.DB
	items     repo.ItemRepository
	buckets   repo.BucketRepository
	recipes   repo.RecipeRepository
	notifier  *fakeNotifier
	clk       *fakeClock
	grouping  *GroupingEngine
	reminders *ReminderScheduler
	life      *LifecycleCoordinator
	resync    *ResyncCoordinator
}

func newTestStack(t *testing.T, now time.Time) *testStack {
	t.Helper()
	db := newTestDB(t)
	logger := zap.NewNop().Sugar()

	s := &testStack{
		db:       db,
		items:    repo.NewItemRepository(db),
		buckets:  repo.NewBucketRepository(db),
		recipes:  repo.NewRecipeRepository(db),
		notifier: newFakeNotifier(),
		clk:      newFakeClock(now),
	}
	s.grouping = NewGroupingEngine(s.items, s.buckets, s.clk, logger)
	s.reminders = NewReminderScheduler(s.notifier, s.clk, 15, 6, logger)
	s.life = NewLifecycleCoordinator(db, s.items, s.recipes, s.grouping, s.reminders, s.clk, logger)
	s.resync = NewResyncCoordinator(s.items, s.grouping, s.reminders, s.clk, logger)
	return s
}

// testNow — «сейчас» по умолчанию в тестах: 31.08.2026, 10:00 UTC
var testNow = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
