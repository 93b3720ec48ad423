package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/config"
	"FreshKeeper/internal/middleware"
	"FreshKeeper/internal/model"
	"FreshKeeper/internal/repo"
	"FreshKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ItemHandler обрабатывает операции жизненного цикла продуктов.
type ItemHandler struct {
	Lifecycle *service.LifecycleCoordinator
	Items     repo.ItemRepository
	Clock     clock.Clock
	Logger    *zap.SugaredLogger
	Config    *config.Config
}

// NewItemHandler создаёт хендлер items
func NewItemHandler(lifecycle *service.LifecycleCoordinator, items repo.ItemRepository, clk clock.Clock, logger *zap.SugaredLogger, cfg *config.Config) *ItemHandler {
	return &ItemHandler{Lifecycle: lifecycle, Items: items, Clock: clk, Logger: logger, Config: cfg}
}

// AddRequest — запрос на создание продукта.
type AddRequest struct {
	Title          string `json:"title"`
	ExpirationDate string `json:"expiration_date"` // YYYY-MM-DD
}

// ItemDTO — представление продукта в ответах API.
type ItemDTO struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	ExpirationDate string  `json:"expiration_date"`
	DateAdded      string  `json:"date_added"`
	IsUsed         bool    `json:"is_used"`
	IsLiked        bool    `json:"is_liked"`
	BucketID       *string `json:"bucket_id,omitempty"`
}

// toItemDTO рендерит даты в поясе планировщика: тот же пояс, в котором
// разбирался запрос и нормализовался день истечения срока.
func toItemDTO(it *model.Item, loc *time.Location) ItemDTO {
	return ItemDTO{
		ID:             it.ID,
		Title:          it.Title,
		ExpirationDate: it.ExpirationDate.In(loc).Format("2006-01-02"),
		DateAdded:      it.DateAdded.UTC().Format(time.RFC3339),
		IsUsed:         it.IsUsed,
		IsLiked:        it.IsLiked,
		BucketID:       it.BucketID,
	}
}

// Add создаёт продукт, помещает его в группу и ставит напоминания.
func (h *ItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Add: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "missing title", http.StatusBadRequest)
		return
	}
	// дата без пояса: полночь в поясе планировщика, иначе StartOfDay
	// сдвинет день для серверов западнее UTC
	exp, err := time.ParseInLocation("2006-01-02", req.ExpirationDate, h.Clock.Location())
	if err != nil {
		h.Logger.Warnw("Add: invalid expiration_date", "value", req.ExpirationDate, "error", err)
		http.Error(w, "invalid expiration_date", http.StatusBadRequest)
		return
	}

	it, err := h.Lifecycle.AddItem(r.Context(), owner, req.Title, exp)
	if err != nil {
		h.Logger.Errorw("Add: lifecycle error", "owner_id", owner, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toItemDTO(it, h.Clock.Location()))
}

// List возвращает активные (неиспользованные) продукты владельца.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.Items.ListActive(r.Context(), owner)
	if err != nil {
		h.Logger.Errorw("List: repo error", "owner_id", owner, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, toItemDTO(&items[i], h.Clock.Location()))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}

// MarkUsed помечает продукт использованным.
func (h *ItemHandler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	it, err := h.Lifecycle.MarkUsed(r.Context(), owner, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Errorw("MarkUsed: lifecycle error", "owner_id", owner, "item_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(toItemDTO(it, h.Clock.Location()))
}

// ToggleLike переключает лайк; снятие лайка с одиночного неиспользованного
// продукта удаляет его.
func (h *ItemHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	it, deleted, err := h.Lifecycle.ToggleLike(r.Context(), owner, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Errorw("ToggleLike: lifecycle error", "owner_id", owner, "item_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if deleted {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "deleted": true})
		return
	}
	_ = json.NewEncoder(w).Encode(toItemDTO(it, h.Clock.Location()))
}

// Delete удаляет продукт со всеми эффектами (группа, рецепты, тикеты).
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	err := h.Lifecycle.Delete(r.Context(), owner, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Errorw("Delete: lifecycle error", "owner_id", owner, "item_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
