package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/config"
	"FreshKeeper/internal/handlers"
	"FreshKeeper/internal/middleware"
	"FreshKeeper/internal/model"
	"FreshKeeper/internal/notify"
	"FreshKeeper/internal/repo"
	"FreshKeeper/internal/service"

	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// фейковый сервис уведомлений: тикеты в памяти по владельцам, всегда granted
type fakeNotifier struct {
	mu      sync.Mutex
	tickets map[string]notify.Ticket
	owners  map[string]string // ticketID -> ownerID
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		tickets: make(map[string]notify.Ticket),
		owners:  make(map[string]string),
	}
}

func (f *fakeNotifier) AuthorizationStatus(ctx context.Context) (notify.Status, error) {
	return notify.StatusGranted, nil
}

func (f *fakeNotifier) Schedule(ctx context.Context, ownerID, ticketID string, fireAt time.Time, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[ticketID] = notify.Ticket{ID: ticketID, FireAt: fireAt, Title: title, Body: body}
	f.owners[ticketID] = ownerID
	return nil
}

func (f *fakeNotifier) Cancel(ctx context.Context, ownerID string, ticketIDs ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
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

var _ notify.Service = (*fakeNotifier)(nil)

type testServer struct {
	router   http.Handler
	notifier *fakeNotifier
	cfg      *config.Config
	db       *gorm.DB
}

// newTestServer собирает полный стек поверх in-memory SQLite и фейкового нотификатора
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerInLocation(t, time.UTC)
}

// newTestServerInLocation — то же, но с часами в заданном поясе
func newTestServerInLocation(t *testing.T, loc *time.Location) *testServer {
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

	logger := zap.NewNop().Sugar()
	middleware.SetLogger(logger)

	cfg := &config.Config{AuthSecret: "test-secret", ReminderHour: 15, ReminderMinute: 6}
	clk := clock.NewInLocation(loc)
	notifier := newFakeNotifier()

	items := repo.NewItemRepository(db)
	buckets := repo.NewBucketRepository(db)
	recipes := repo.NewRecipeRepository(db)

	grouping := service.NewGroupingEngine(items, buckets, clk, logger)
	reminders := service.NewReminderScheduler(notifier, clk, cfg.ReminderHour, cfg.ReminderMinute, logger)
	lifecycle := service.NewLifecycleCoordinator(db, items, recipes, grouping, reminders, clk, logger)
	resync := service.NewResyncCoordinator(items, grouping, reminders, clk, logger)

	h := handlers.NewHandler(lifecycle, resync, items, buckets, notifier, clk, logger, cfg)
	return &testServer{router: h.Router, notifier: notifier, cfg: cfg, db: db}
}

// authedRequest — запрос с валидной auth-cookie владельца
func (s *testServer) authedRequest(t *testing.T, method, target, owner string, body io.Reader) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rr := httptest.NewRecorder()
	if err := middleware.SetLoginCookie(rr, owner, s.cfg.AuthSecret); err != nil {
		t.Fatalf("set login cookie: %v", err)
	}
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}
