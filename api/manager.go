package api

import (
	"toycatalog_server/api/health"
	"toycatalog_server/api/items"

	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	itemRoutes   *items.ItemRoutesManager
	healthRoutes *health.HealthRoutesManager
}

func NewRouterManager(
	itemRoutes *items.ItemRoutesManager,
	healthRoutes *health.HealthRoutesManager,
) *routerManager {
	return &routerManager{
		itemRoutes:   itemRoutes,
		healthRoutes: healthRoutes,
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.itemRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
}
