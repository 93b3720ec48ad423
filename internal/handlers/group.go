package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/config"
	"FreshKeeper/internal/middleware"
	"FreshKeeper/internal/notify"
	"FreshKeeper/internal/repo"
	"FreshKeeper/internal/service"

	"go.uber.org/zap"
)

// GroupHandler отдаёт группы «истекают в один день» и запускает ресинк.
type GroupHandler struct {
	Sync     *service.ResyncCoordinator
	Buckets  repo.BucketRepository
	Notifier notify.Service
	Clock    clock.Clock
	Logger   *zap.SugaredLogger
	Config   *config.Config
}

// NewGroupHandler создаёт хендлер групп
func NewGroupHandler(sync *service.ResyncCoordinator, buckets repo.BucketRepository, notifier notify.Service, clk clock.Clock, logger *zap.SugaredLogger, cfg *config.Config) *GroupHandler {
	return &GroupHandler{Sync: sync, Buckets: buckets, Notifier: notifier, Clock: clk, Logger: logger, Config: cfg}
}

// GroupDTO — группа с членами для отображения.
type GroupDTO struct {
	ID    string    `json:"id"`
	Day   string    `json:"day"`
	Items []ItemDTO `json:"items"`
}

// List возвращает группы владельца по возрастанию дня истечения срока.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	buckets, err := h.Buckets.ListByOwner(r.Context(), owner)
	if err != nil {
		h.Logger.Errorw("List groups: repo error", "owner_id", owner, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]GroupDTO, 0, len(buckets))
	for i := range buckets {
		g := GroupDTO{
			ID:    buckets[i].ID,
			Day:   buckets[i].Day.In(h.Clock.Location()).Format("2006-01-02"),
			Items: make([]ItemDTO, 0, len(buckets[i].Items)),
		}
		for j := range buckets[i].Items {
			g.Items = append(g.Items, toItemDTO(&buckets[i].Items[j], h.Clock.Location()))
		}
		out = append(out, g)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}

// Resync запускает сверку напоминаний с состоянием items.
// Вызывается UI при выходе приложения на передний план; защищён кулдауном.
func (h *GroupHandler) Resync(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Sync.CleanupOnLaunch(r.Context(), owner); err != nil {
		h.Logger.Errorw("Resync: cleanup error", "owner_id", owner, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.Sync.SyncAll(r.Context(), owner); err != nil {
		h.Logger.Errorw("Resync: sync error", "owner_id", owner, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"synced_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// Tickets — диагностика: отложенные тикеты владельца во внешнем сервисе уведомлений.
func (h *GroupHandler) Tickets(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tickets, err := h.Notifier.ListPending(r.Context(), owner)
	if err != nil {
		h.Logger.Errorw("Tickets: notifier error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(tickets)
}
