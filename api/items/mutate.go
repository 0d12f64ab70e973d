package items

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"toycatalog_server/services"
	"toycatalog_server/structs/tables"

	"github.com/MonkyMars/gecho"
)

const maxFormMemory = 32 << 20

// CreateItem handles POST /items. The body is a multipart form carrying the
// item fields plus an optional image part.
func (irm *ItemRoutesManager) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.invalidForm"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	item, ok := itemFromForm(w, r)
	if !ok {
		return
	}

	imageData, err := readImagePart(r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.invalidImageUpload"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	created, err := irm.itemService.CreateItem(ctx, &item, imageData)
	if err != nil {
		if errors.Is(err, services.ErrInvalidImage) {
			gecho.BadRequest(w,
				gecho.WithMessage("error.items.invalidImage"),
				gecho.WithData(err.Error()),
				gecho.Send(),
			)
			return
		}
		irm.logger.Error("Failed to create item", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.items.failedToCreate"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"item": created,
		}),
		gecho.Send(),
	)
}

// UpdateItem handles PUT /items/{id}. The body is the full field set, same
// shape as create; an image part replaces the stored image.
func (irm *ItemRoutesManager) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.invalidForm"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	item, ok := itemFromForm(w, r)
	if !ok {
		return
	}

	imageData, err := readImagePart(r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.invalidImageUpload"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	updated, err := irm.itemService.UpdateItem(ctx, id, &item, imageData)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			gecho.NotFound(w,
				gecho.WithMessage("error.items.notFound"),
				gecho.Send(),
			)
		case errors.Is(err, services.ErrInvalidImage):
			gecho.BadRequest(w,
				gecho.WithMessage("error.items.invalidImage"),
				gecho.WithData(err.Error()),
				gecho.Send(),
			)
		default:
			irm.logger.Error("Failed to update item", gecho.Field("id", id), gecho.Field("error", err))
			gecho.InternalServerError(w,
				gecho.WithMessage("error.items.failedToUpdate"),
				gecho.WithData(err.Error()),
				gecho.Send(),
			)
		}
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"item": updated,
		}),
		gecho.Send(),
	)
}

// DeleteItem handles DELETE /items/{id}.
func (irm *ItemRoutesManager) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	if err := irm.itemService.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			gecho.NotFound(w,
				gecho.WithMessage("error.items.notFound"),
				gecho.Send(),
			)
			return
		}
		irm.logger.Error("Failed to delete item", gecho.Field("id", id), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.items.failedToDelete"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Item deleted"),
		gecho.Send(),
	)
}

// readImagePart reads the optional "image" multipart file, nil when absent.
func readImagePart(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// itemFromForm builds the full field set from a parsed multipart form,
// writing the error response itself when a value is unusable.
func itemFromForm(w http.ResponseWriter, r *http.Request) (tables.ToyItem, bool) {
	item := tables.ToyItem{
		FactoryCode:  strings.TrimSpace(r.FormValue("factory_code")),
		FactoryName:  strings.TrimSpace(r.FormValue("factory_name")),
		Name:         strings.TrimSpace(r.FormValue("name")),
		Packaging:    strings.TrimSpace(r.FormValue("packaging")),
		OuterBoxSize: strings.TrimSpace(r.FormValue("outer_box_size")),
		ProductSize:  strings.TrimSpace(r.FormValue("product_size")),
		InnerBox:     strings.TrimSpace(r.FormValue("inner_box")),
		Remarks:      strings.TrimSpace(r.FormValue("remarks")),
	}

	var fieldErr error
	item.PackingQuantity, fieldErr = formInt(r, "packing_quantity", fieldErr)
	item.UnitPrice, fieldErr = formFloat(r, "unit_price", fieldErr)
	item.GrossWeight, fieldErr = formFloat(r, "gross_weight", fieldErr)
	item.NetWeight, fieldErr = formFloat(r, "net_weight", fieldErr)
	if fieldErr != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.invalidNumericField"),
			gecho.WithData(fieldErr.Error()),
			gecho.Send(),
		)
		return tables.ToyItem{}, false
	}

	if !item.HasRequiredFields() {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.missingRequiredFields"),
			gecho.Send(),
		)
		return tables.ToyItem{}, false
	}

	return item, true
}

func formInt(r *http.Request, key string, prev error) (int, error) {
	if prev != nil {
		return 0, prev
	}
	s := strings.TrimSpace(r.FormValue(key))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func formFloat(r *http.Request, key string, prev error) (float64, error) {
	if prev != nil {
		return 0, prev
	}
	s := strings.TrimSpace(r.FormValue(key))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

