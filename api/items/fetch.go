package items

import (
	"errors"
	"net/http"
	"strconv"
	"toycatalog_server/lib"
	"toycatalog_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// FetchItems handles GET /items with optional name and factory_name filters.
func (irm *ItemRoutesManager) FetchItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts := &services.ItemListOptions{
		Name:        lib.SanitizeString(r.URL.Query().Get("name"), true, false),
		FactoryName: lib.SanitizeString(r.URL.Query().Get("factory_name"), true, false),
	}

	items, err := irm.itemService.ListItems(ctx, opts)
	if err != nil {
		irm.logger.Error("Failed to fetch items", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.items.failedToFetch"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"items": items,
			"count": len(items),
		}),
		gecho.Send(),
	)
}

// FetchItemByID handles GET /items/{id}.
func (irm *ItemRoutesManager) FetchItemByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	item, err := irm.itemService.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			gecho.NotFound(w,
				gecho.WithMessage("error.items.notFound"),
				gecho.Send(),
			)
			return
		}
		irm.logger.Error("Failed to fetch item by ID", gecho.Field("id", id), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.items.failedToFetchOne"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"item": item,
		}),
		gecho.Send(),
	)
}

// parseItemID validates the {id} URL parameter, writing the error response
// itself on failure.
func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		gecho.BadRequest(w,
			gecho.WithMessage("error.items.invalidItemId"),
			gecho.Send(),
		)
		return 0, false
	}
	return id, true
}
