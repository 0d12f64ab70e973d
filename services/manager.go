package services

import (
	"toycatalog_server/database"
	"toycatalog_server/imaging"
	"toycatalog_server/spreadsheet"
	"toycatalog_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	CacheService  *CacheService
	HealthService *HealthService
	ItemService   *ItemService
	ImportService *ImportService
	ExportService *ExportService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB) (*ServiceManager, error) {
	store, err := imaging.NewStore(cfg.Storage.UploadDir)
	if err != nil {
		return nil, err
	}
	codec := imaging.NewCodec(cfg.Import.MaxImageDim, cfg.Import.JPEGQuality)
	pipeline := imaging.NewPipeline(codec, logger, cfg.Import.WorkerCount, cfg.Import.ImageTimeout)
	writer := spreadsheet.NewWriter(codec, logger)

	cacheService := NewCacheService(logger, cfg)
	healthService := NewHealthService(logger, db)
	itemService := NewItemService(logger, db, cacheService, codec, store)
	importService := NewImportService(logger, cfg, db, pipeline, store)
	exportService, err := NewExportService(logger, cfg, store, writer, itemService)
	if err != nil {
		return nil, err
	}

	return &ServiceManager{
		CacheService:  cacheService,
		HealthService: healthService,
		ItemService:   itemService,
		ImportService: importService,
		ExportService: exportService,
	}, nil
}

// UploadDir exposes the absolute processed-image directory for static serving.
func (sm *ServiceManager) UploadDir() string {
	return sm.ItemService.store.Dir()
}
