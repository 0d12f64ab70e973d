package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"toycatalog_server/imaging"
	"toycatalog_server/spreadsheet"
	"toycatalog_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/xuri/excelize/v2"
)

// TemplateFilename is the download name of the generated import template.
const TemplateFilename = "货物导入模板.xlsx"

// ExportService generates downloadable workbooks from catalog records.
type ExportService struct {
	logger      *gecho.Logger
	config      *structs.Config
	store       *imaging.Store
	writer      *spreadsheet.Writer
	itemService *ItemService
	exportDir   string
}

func NewExportService(logger *gecho.Logger, cfg *structs.Config, store *imaging.Store, writer *spreadsheet.Writer, itemService *ItemService) (*ExportService, error) {
	dir, err := filepath.Abs(cfg.Storage.ExportDir)
	if err != nil {
		return nil, fmt.Errorf("resolve export dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &ExportService{
		logger:      logger,
		config:      cfg,
		store:       store,
		writer:      writer,
		itemService: itemService,
		exportDir:   dir,
	}, nil
}

// ExportItems builds a workbook for the requested ids and saves it to the
// export directory. The file is transient; the handler streaming it is
// responsible for removing it afterwards. Returns the saved file's path.
func (es *ExportService) ExportItems(ctx context.Context, ids []int64) (string, error) {
	startTime := time.Now()

	items, err := es.itemService.GetItemsByIDs(ctx, ids)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrNoItems
	}

	f, err := es.writer.Build(items, es.store.Read)
	if err != nil {
		return "", fmt.Errorf("build export workbook: %w", err)
	}
	defer f.Close()

	name := fmt.Sprintf("货物报价表_%s.xlsx", time.Now().Format("20060102150405"))
	path := filepath.Join(es.exportDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save export workbook: %w", err)
	}

	es.logger.Info("Export generated",
		gecho.Field("items", len(items)),
		gecho.Field("file", name),
		gecho.Field("duration", time.Since(startTime)),
	)
	return path, nil
}

// Template builds the empty import template workbook for direct streaming.
func (es *ExportService) Template() (*excelize.File, error) {
	return spreadsheet.BuildTemplate()
}
