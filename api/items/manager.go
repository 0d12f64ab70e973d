package items

import (
	"toycatalog_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ItemRoutesManager struct {
	logger        *gecho.Logger
	itemService   *services.ItemService
	importService *services.ImportService
	exportService *services.ExportService
}

func NewItemRoutesManager(
	logger *gecho.Logger,
	itemService *services.ItemService,
	importService *services.ImportService,
	exportService *services.ExportService,
) *ItemRoutesManager {
	return &ItemRoutesManager{
		logger:        logger,
		itemService:   itemService,
		importService: importService,
		exportService: exportService,
	}
}

func (irm *ItemRoutesManager) RegisterRoutes(r chi.Router) {
	r.Get("/items", irm.FetchItems)
	r.Get("/items/import-template", irm.DownloadTemplate)
	r.Get("/items/{id}", irm.FetchItemByID)
	r.Post("/items", irm.CreateItem)
	r.Put("/items/{id}", irm.UpdateItem)
	r.Delete("/items/{id}", irm.DeleteItem)
	r.Post("/items/import", irm.ImportItems)
	r.Post("/items/export", irm.ExportItems)
}
