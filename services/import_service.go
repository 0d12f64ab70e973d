package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"toycatalog_server/database"
	"toycatalog_server/imaging"
	"toycatalog_server/spreadsheet"
	"toycatalog_server/structs"
	"toycatalog_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/uptrace/bun"
)

// ImportService turns an uploaded workbook into catalog records: parses the
// sheets, correlates and processes the embedded images, and persists
// everything in a single transaction.
type ImportService struct {
	logger   *gecho.Logger
	config   *structs.Config
	db       *database.DB
	pipeline *imaging.Pipeline
	store    *imaging.Store
}

func NewImportService(logger *gecho.Logger, cfg *structs.Config, db *database.DB, pipeline *imaging.Pipeline, store *imaging.Store) *ImportService {
	return &ImportService{
		logger:   logger,
		config:   cfg,
		db:       db,
		pipeline: pipeline,
		store:    store,
	}
}

// ImportResult summarizes one completed import.
type ImportResult struct {
	ImportedCount int      `json:"imported_count"`
	SkippedCount  int      `json:"skipped_count"`
	Skipped       []string `json:"skipped,omitempty"`
	Message       string   `json:"message"`
}

// ImportWorkbook processes one uploaded spreadsheet. All sheets are read;
// any sheet missing a required column aborts the whole import before a
// single row is touched. Rows missing required fields are skipped with a
// diagnostic, never aborting the batch, and a failed or timed-out image
// degrades its row to no image. Image processing is deduplicated by content
// digest, but every surviving row gets its own stored file, so no two
// records ever share one. The records land in one transaction: either the
// full batch commits or nothing does, with stored image files cleaned up on
// rollback.
func (is *ImportService) ImportWorkbook(ctx context.Context, filename string, data []byte, defaultFactoryName string) (*ImportResult, error) {
	startTime := time.Now()

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	wb, err := spreadsheet.OpenWorkbook(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	// Validate structure up front. Sheets without a header row carry no
	// data and are ignored; a sheet that has headers but lacks a required
	// column fails the import.
	indexes := make(map[string]spreadsheet.ColumnIndex)
	for _, sheet := range wb.Sheets {
		if len(sheet.Headers) == 0 {
			is.logger.Warn("Skipping sheet without header row", gecho.Field("sheet", sheet.Name))
			continue
		}
		idx, err := spreadsheet.BuildColumnIndex(sheet.Name, sheet.Headers)
		if err != nil {
			return nil, err
		}
		indexes[sheet.Name] = idx
	}

	corr := is.correlateImages(wb, indexes, data)
	outcomes := is.pipeline.ProcessUnique(ctx, corr.Unique)

	items, skipped, written := is.assembleItems(wb, indexes, corr, outcomes, defaultFactoryName)

	if len(items) > 0 {
		batchSize := is.config.Import.BatchSize
		if batchSize < 1 {
			batchSize = 100
		}
		err = database.Transaction(is.db, ctx, func(tx bun.Tx) error {
			for start := 0; start < len(items); start += batchSize {
				end := min(start+batchSize, len(items))
				chunk := items[start:end]
				if _, err := tx.NewInsert().Model(&chunk).Exec(ctx); err != nil {
					return fmt.Errorf("insert batch at row %d: %w", start, err)
				}
			}
			return nil
		})
		if err != nil {
			is.removeFiles(written)
			is.logger.Error("Import transaction failed",
				gecho.Field("error", err),
				gecho.Field("items", len(items)),
				gecho.Field("duration", time.Since(startTime)),
			)
			return nil, fmt.Errorf("failed to import items: %w", err)
		}
	}

	result := &ImportResult{
		ImportedCount: len(items),
		SkippedCount:  len(skipped),
		Skipped:       skipped,
		Message:       fmt.Sprintf("Imported %d items, skipped %d rows", len(items), len(skipped)),
	}

	is.logger.Info("Import completed",
		gecho.Field("imported", result.ImportedCount),
		gecho.Field("skipped", result.SkippedCount),
		gecho.Field("unique_images", len(corr.Unique)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return result, nil
}

// correlateImages aligns embedded images with data rows, preferring the
// workbook's own anchor metadata and falling back to raw extraction order
// when the anchors yield nothing.
func (is *ImportService) correlateImages(wb *spreadsheet.Workbook, indexes map[string]spreadsheet.ColumnIndex, data []byte) *spreadsheet.Correlation {
	blobs := spreadsheet.ExtractImages(data)

	corr, err := spreadsheet.AnchorCorrelator{}.Correlate(wb, indexes)
	if err != nil {
		is.logger.Warn("Anchor correlation failed", gecho.Field("error", err))
		corr = nil
	}
	if (corr == nil || len(corr.RowDigest) == 0) && len(blobs) > 0 {
		is.logger.Debug("Falling back to sequential image correlation", gecho.Field("images", len(blobs)))
		corr, _ = spreadsheet.SequentialCorrelator{Images: blobs}.Correlate(wb, indexes)
	}
	if corr == nil {
		corr, _ = spreadsheet.SequentialCorrelator{}.Correlate(wb, indexes)
	}
	return corr
}

// assembleItems walks the data rows of every indexed sheet, building records
// and attaching images. Rows missing required fields become skip diagnostics.
// Each row with a successfully processed image gets its own stored file, even
// when several rows share one image digest; the returned paths cover every
// file written, for rollback cleanup.
func (is *ImportService) assembleItems(
	wb *spreadsheet.Workbook,
	indexes map[string]spreadsheet.ColumnIndex,
	corr *spreadsheet.Correlation,
	outcomes map[string]imaging.Outcome,
	defaultFactoryName string,
) (items []tables.ToyItem, skipped []string, written []string) {
	globalRow := 0
	for _, sheet := range wb.Sheets {
		idx, ok := indexes[sheet.Name]
		if !ok {
			continue
		}
		for r, row := range sheet.Rows {
			rowIndex := globalRow
			globalRow++

			if isEmptyRow(row) {
				continue
			}

			item, diag := idx.BuildItem(sheet.Name, r+2, row, defaultFactoryName)
			if diag != nil {
				is.logger.Warn("Skipping row", gecho.Field("detail", diag.String()))
				skipped = append(skipped, diag.String())
				continue
			}

			if digest, ok := corr.RowDigest[rowIndex]; ok {
				if out, ok := outcomes[digest]; ok {
					switch {
					case out.Err != nil:
						is.logger.Warn("Row image failed processing, importing without image",
							gecho.Field("sheet", sheet.Name),
							gecho.Field("row", r+2),
							gecho.Field("error", out.Err),
						)
					default:
						path, err := is.store.Write(out.Data)
						if err != nil {
							is.logger.Warn("Failed to store row image, importing without image",
								gecho.Field("sheet", sheet.Name),
								gecho.Field("row", r+2),
								gecho.Field("error", err),
							)
						} else {
							item.ImagePath = path
							written = append(written, path)
						}
					}
				}
			}

			items = append(items, item)
		}
	}
	return items, skipped, written
}

// removeFiles deletes the given stored image files, the rollback path.
func (is *ImportService) removeFiles(paths []string) {
	for _, path := range paths {
		if err := is.store.Remove(path); err != nil {
			is.logger.Warn("Failed to remove orphaned image", gecho.Field("path", path), gecho.Field("error", err))
		}
	}
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
