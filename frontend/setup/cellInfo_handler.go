package setup

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"setuptrack/catalog"
	"setuptrack/frontend/shared/api"
	"setuptrack/setuplog"
)

// CellInfoQueryHandler resolves a scanned QR code and reports the cell's
// current flow state for the setup screen.
func CellInfoQueryHandler(catalogStore *catalog.Store, setups *setuplog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qr := chi.URLParam(r, "qr")
		info, ok := catalogStore.ResolveCell(qr)
		if !ok {
			api.Fail(w, http.StatusNotFound, "qr code is not registered")
			return
		}

		overview := setups.CellOverview(info.CellName)
		api.OK(w, "", map[string]any{
			"qrcode":        info.QRCode,
			"cell_name":     info.CellName,
			"product_count": info.ProductCount,
			"setup_status": map[string]bool{
				"removal": overview.HasRemoval,
				"supply":  overview.HasSupply,
			},
			"most_recent_order": overview.MostRecentOrder,
		})
	}
}

// SetupStatusQueryHandler reports which setup types exist for one order,
// respecting reset checkpoints.
func SetupStatusQueryHandler(setups *setuplog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cellName := r.URL.Query().Get("cell_name")
		orderNumber := r.URL.Query().Get("order_number")
		if cellName == "" || orderNumber == "" {
			api.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"success":     false,
				"message":     "cell and order number are required",
				"has_removal": false,
				"has_supply":  false,
			})
			return
		}

		hasRemoval, hasSupply := setups.CheckStatus(cellName, orderNumber)
		api.OK(w, "status checked", map[string]any{
			"has_removal": hasRemoval,
			"has_supply":  hasSupply,
		})
	}
}
