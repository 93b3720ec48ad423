package handlers

import (
	"FreshKeeper/internal/clock"
	"FreshKeeper/internal/config"
	"FreshKeeper/internal/middleware"
	"FreshKeeper/internal/notify"
	"FreshKeeper/internal/repo"
	"FreshKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	lifecycle *service.LifecycleCoordinator,
	resync *service.ResyncCoordinator,
	items repo.ItemRepository,
	buckets repo.BucketRepository,
	notifier notify.Service,
	clk clock.Clock,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	itemHandler := NewItemHandler(lifecycle, items, clk, logger, config)
	groupHandler := NewGroupHandler(resync, buckets, notifier, clk, logger, config)

	// Item routes
	r.Post("/api/items", itemHandler.Add)
	r.Get("/api/items", itemHandler.List)
	r.Post("/api/items/{id}/used", itemHandler.MarkUsed)
	r.Post("/api/items/{id}/like", itemHandler.ToggleLike)
	r.Delete("/api/items/{id}", itemHandler.Delete)

	// Group / sync routes
	r.Get("/api/groups", groupHandler.List)
	r.Post("/api/resync", groupHandler.Resync)
	r.Get("/api/tickets", groupHandler.Tickets)

	return &Handler{Router: r}
}
