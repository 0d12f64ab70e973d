package items

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"toycatalog_server/lib"
	"toycatalog_server/services"
	"toycatalog_server/spreadsheet"

	"github.com/MonkyMars/gecho"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportItems handles POST /items/import: a multipart form with the
// workbook under "file" and an optional "factory_name" default.
func (irm *ItemRoutesManager) ImportItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.invalidForm"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.importFileRequired"),
			gecho.Send(),
		)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.importFileUnreadable"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	factoryName := lib.SanitizeString(r.FormValue("factory_name"), true, false)

	result, err := irm.importService.ImportWorkbook(ctx, header.Filename, data, factoryName)
	if err != nil {
		var missingCols *spreadsheet.MissingColumnsError
		switch {
		case errors.Is(err, services.ErrUnsupportedFormat):
			gecho.BadRequest(w,
				gecho.WithMessage("error.items.unsupportedImportFormat"),
				gecho.WithData(err.Error()),
				gecho.Send(),
			)
		case errors.As(err, &missingCols):
			gecho.BadRequest(w,
				gecho.WithMessage("error.items.missingImportColumns"),
				gecho.WithData(map[string]any{
					"sheet":   missingCols.Sheet,
					"columns": missingCols.Labels,
				}),
				gecho.Send(),
			)
		default:
			irm.logger.Error("Import failed", gecho.Field("file", header.Filename), gecho.Field("error", err))
			gecho.InternalServerError(w,
				gecho.WithMessage("error.items.importFailed"),
				gecho.WithData(err.Error()),
				gecho.Send(),
			)
		}
		return
	}

	gecho.Success(w,
		gecho.WithData(result),
		gecho.Send(),
	)
}

// ExportRequest is the JSON body of POST /items/export.
type ExportRequest struct {
	ItemIDs []int64 `json:"item_ids" validate:"required,min=1,dive,gt=0"`
}

// ExportItems handles POST /items/export: builds a workbook for the
// requested ids and streams it as a download.
func (irm *ItemRoutesManager) ExportItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := lib.ExtractAndValidateBody[ExportRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.invalidExportRequest"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	path, err := irm.exportService.ExportItems(ctx, req.ItemIDs)
	if err != nil {
		if errors.Is(err, services.ErrNoItems) {
			gecho.NotFound(w,
				gecho.WithMessage("error.items.noItemsToExport"),
				gecho.Send(),
			)
			return
		}
		irm.logger.Error("Export failed", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.items.exportFailed"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			irm.logger.Warn("Failed to remove export file", gecho.Field("path", path), gecho.Field("error", err))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		irm.logger.Error("Failed to open export file", gecho.Field("path", path), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.items.exportFailed"),
			gecho.Send(),
		)
		return
	}
	defer f.Close()

	setDownloadHeaders(w, filepath.Base(path))
	if _, err := io.Copy(w, f); err != nil {
		irm.logger.Warn("Export download interrupted", gecho.Field("error", err))
	}
}

// DownloadTemplate handles GET /items/import-template, streaming a freshly
// generated empty template workbook.
func (irm *ItemRoutesManager) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	f, err := irm.exportService.Template()
	if err != nil {
		irm.logger.Error("Failed to build import template", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.items.templateFailed"),
			gecho.Send(),
		)
		return
	}
	defer f.Close()

	setDownloadHeaders(w, services.TemplateFilename)
	if err := f.Write(w); err != nil {
		irm.logger.Warn("Template download interrupted", gecho.Field("error", err))
	}
}

// setDownloadHeaders marks the response as an attachment. The filename is
// percent-encoded so non-ASCII names survive the header.
func setDownloadHeaders(w http.ResponseWriter, filename string) {
	escaped := url.PathEscape(filename)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"download.xlsx\"; filename*=UTF-8''%s", escaped))
}
