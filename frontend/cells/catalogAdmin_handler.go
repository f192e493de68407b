package cells

import (
	"fmt"
	"net/http"

	"setuptrack/catalog"
	"setuptrack/frontend/shared/api"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/models"
)

type productRequest struct {
	CellName    string `json:"cell_name"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	ItemCode    string `json:"item_code"`
	ItemName    string `json:"item_name"`
}

// AddProductCommandHandler adds or replaces a product on a cell.
func AddProductCommandHandler(catalogStore *catalog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CellName == "" || req.ProductCode == "" || req.ProductName == "" {
			api.Fail(w, http.StatusBadRequest, "cell, product code and product name are required")
			return
		}

		found, err := catalogStore.UpsertProduct(req.CellName, models.Product{
			Code: req.ProductCode,
			Name: req.ProductName,
		})
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to add product")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "cell not found")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "product.add", audit.EntityCatalog,
			req.CellName+"/"+req.ProductCode, nil,
			map[string]any{"code": req.ProductCode, "name": req.ProductName})

		api.OK(w, "product added", nil)
	}
}

// DeleteProductCommandHandler removes a product from a cell.
func DeleteProductCommandHandler(catalogStore *catalog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CellName == "" || req.ProductCode == "" {
			api.Fail(w, http.StatusBadRequest, "cell and product code are required")
			return
		}

		found, err := catalogStore.RemoveProduct(req.CellName, req.ProductCode)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to delete product")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "cell or product not found")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "product.delete", audit.EntityCatalog,
			req.CellName+"/"+req.ProductCode, map[string]any{"code": req.ProductCode}, nil)

		api.OK(w, "product deleted", nil)
	}
}

// AddItemCommandHandler adds or replaces an item under a product.
func AddItemCommandHandler(catalogStore *catalog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CellName == "" || req.ProductCode == "" || req.ItemCode == "" || req.ItemName == "" {
			api.Fail(w, http.StatusBadRequest, "cell, product code, item code and item name are required")
			return
		}

		found, err := catalogStore.UpsertItem(req.CellName, req.ProductCode, models.Item{
			Code: req.ItemCode,
			Name: req.ItemName,
		})
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to add item")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "cell or product not found")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "item.add", audit.EntityCatalog,
			req.CellName+"/"+req.ProductCode+"/"+req.ItemCode, nil,
			map[string]any{"code": req.ItemCode, "name": req.ItemName})

		api.OK(w, "item added", nil)
	}
}

// DeleteItemCommandHandler removes an item from a product.
func DeleteItemCommandHandler(catalogStore *catalog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CellName == "" || req.ProductCode == "" || req.ItemCode == "" {
			api.Fail(w, http.StatusBadRequest, "cell, product code and item code are required")
			return
		}

		found, err := catalogStore.RemoveItem(req.CellName, req.ProductCode, req.ItemCode)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to delete item")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "cell, product or item not found")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "item.delete", audit.EntityCatalog,
			req.CellName+"/"+req.ProductCode+"/"+req.ItemCode, map[string]any{"code": req.ItemCode}, nil)

		api.OK(w, "item deleted", nil)
	}
}

// MigrateCatalogCommandHandler upgrades legacy bare-string catalog entries to
// the structured shape.
func MigrateCatalogCommandHandler(catalogStore *catalog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		migrated, err := catalogStore.MigrateLegacyFormat()
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to migrate catalog")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if migrated > 0 {
			auditSvc.Record(r.Context(), db, session.Username, "catalog.migrate", audit.EntityCatalog,
				"qrcodes", nil, map[string]any{"migrated": migrated})
		}

		message := "catalog already in the current format"
		if migrated > 0 {
			message = fmt.Sprintf("%d entries migrated", migrated)
		}
		api.OK(w, message, map[string]any{"migrated": migrated})
	}
}
