package cells

import (
	"net/http"
	"net/url"
	"strings"

	"setuptrack/catalog"
	"setuptrack/frontend/shared/api"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/sqlite"
)

// RegisterQRCodeCommandHandler binds a QR code to a cell name from the cells
// page form. Registering an existing code replaces it, catalog included.
func RegisterQRCodeCommandHandler(catalogStore *catalog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/app/cells?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}
		qrCode := strings.TrimSpace(r.FormValue("qr_code"))
		cellName := strings.TrimSpace(r.FormValue("cell_name"))

		if err := catalogStore.Register(qrCode, cellName); err != nil {
			http.Redirect(w, r, "/app/cells?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "qrcode.register", audit.EntityCell,
			qrCode, nil, map[string]any{"cell_name": cellName})

		http.Redirect(w, r, "/app/cells", http.StatusSeeOther)
	}
}

type qrCodeRequest struct {
	QRCode   string `json:"qr_code"`
	CellName string `json:"cell_name"`
}

// UpdateQRCodeCommandHandler renames the cell behind a QR code.
func UpdateQRCodeCommandHandler(catalogStore *catalog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req qrCodeRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.QRCode == "" || req.CellName == "" {
			api.Fail(w, http.StatusBadRequest, "qr code and cell name are required")
			return
		}

		found, err := catalogStore.UpdateCode(req.QRCode, req.CellName)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to update qr code")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "qr code not found")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "qrcode.update", audit.EntityCell,
			req.QRCode, nil, map[string]any{"cell_name": req.CellName})

		api.OK(w, "qr code updated", nil)
	}
}

// DeleteQRCodeCommandHandler removes a QR code registration.
func DeleteQRCodeCommandHandler(catalogStore *catalog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req qrCodeRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.QRCode == "" {
			api.Fail(w, http.StatusBadRequest, "qr code is required")
			return
		}

		found, err := catalogStore.Delete(req.QRCode)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to delete qr code")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "qr code not found")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "qrcode.delete", audit.EntityCell,
			req.QRCode, map[string]any{"qr_code": req.QRCode}, nil)

		api.OK(w, "qr code deleted", nil)
	}
}
