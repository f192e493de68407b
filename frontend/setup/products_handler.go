package setup

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"setuptrack/catalog"
	"setuptrack/frontend/shared/api"
	"setuptrack/models"
)

// CellProductsQueryHandler returns the products configured for a cell. The
// key may be a QR code or a cell name.
func CellProductsQueryHandler(catalogStore *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		products, ok := catalogStore.GetCellProducts(key)
		if !ok {
			api.WriteJSON(w, http.StatusOK, map[string]any{
				"success":  false,
				"message":  "no products found for cell",
				"products": []models.Product{},
			})
			return
		}
		api.OK(w, fmt.Sprintf("%d products found", len(products)), map[string]any{
			"products": products,
			"count":    len(products),
		})
	}
}

// ProductItemsQueryHandler returns the items of one product within a cell.
func ProductItemsQueryHandler(catalogStore *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		productCode := chi.URLParam(r, "code")
		items, ok := catalogStore.GetProductItems(key, productCode)
		if !ok {
			api.WriteJSON(w, http.StatusOK, map[string]any{
				"success": false,
				"message": "product not found",
				"items":   []models.Item{},
			})
			return
		}
		api.OK(w, fmt.Sprintf("%d items found", len(items)), map[string]any{
			"items": items,
			"count": len(items),
		})
	}
}
