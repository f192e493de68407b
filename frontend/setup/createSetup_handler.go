package setup

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"setuptrack/catalog"
	"setuptrack/frontend/shared/api"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/models"
	"setuptrack/setuplog"
)

// createSetupRequest mirrors the JSON body of a setup submission. Photos are
// base64 data URLs captured by the camera widget.
type createSetupRequest struct {
	QRCode            string                `json:"qr_code"`
	CellName          string                `json:"cell_name"`
	OrderNumber       string                `json:"order_number"`
	SupplierName      string                `json:"supplier_name"`
	Observation       string                `json:"observation"`
	VerificationCheck models.LooseBool      `json:"verification_check"`
	SetupType         string                `json:"setup_type"`
	ProductCode       string                `json:"product_code"`
	ProductName       string                `json:"product_name"`
	ProductPO         string                `json:"product_po"`
	SelectedItems     []models.SelectedItem `json:"selected_items"`
	Photos            []string              `json:"photo_data"`
}

// CreateSetupCommandHandler registers a new setup for a cell. Accepts a JSON
// body or a classic form post with photo_data fields.
func CreateSetupCommandHandler(catalogStore *catalog.Store, setups *setuplog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseCreateRequest(r)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}

		// A QR code may stand in for the cell name.
		if req.CellName == "" && req.QRCode != "" {
			if info, ok := catalogStore.ResolveCell(req.QRCode); ok {
				req.CellName = info.CellName
			}
		}
		if req.CellName == "" {
			api.Fail(w, http.StatusBadRequest, "cell could not be resolved")
			return
		}
		if req.SetupType == "" {
			req.SetupType = models.SetupSupply
		}
		if req.SetupType == models.SetupSupply && (req.ProductCode == "" || req.ProductName == "") {
			api.Fail(w, http.StatusBadRequest, "product is required for supply setups")
			return
		}

		err = setups.CreateSetup(setuplog.CreateInput{
			CellName:          req.CellName,
			OrderNumber:       req.OrderNumber,
			SupplierName:      req.SupplierName,
			Observation:       req.Observation,
			VerificationCheck: req.VerificationCheck.Bool(),
			SetupType:         req.SetupType,
			ProductCode:       req.ProductCode,
			ProductName:       req.ProductName,
			ProductPO:         req.ProductPO,
			SelectedItems:     req.SelectedItems,
			Photos:            req.Photos,
		})
		if err != nil {
			slog.Error("create setup failed",
				slog.String("cell", req.CellName),
				slog.String("order", req.OrderNumber),
				slog.Any("err", err))
			api.Fail(w, http.StatusBadRequest, err.Error())
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "setup.create", audit.EntitySetup,
			req.CellName+"/"+req.OrderNumber+"/"+req.SetupType, nil, map[string]any{
				"order_number":  req.OrderNumber,
				"supplier_name": req.SupplierName,
				"setup_type":    req.SetupType,
				"product_code":  req.ProductCode,
			})

		api.OK(w, "setup registered", nil)
	}
}

func parseCreateRequest(r *http.Request) (createSetupRequest, error) {
	var req createSetupRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := api.DecodeBody(r, &req)
		return req, err
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
	}
	req.QRCode = r.FormValue("qr_code")
	req.CellName = r.FormValue("cell_name")
	req.OrderNumber = strings.TrimSpace(r.FormValue("order_number"))
	req.SupplierName = strings.TrimSpace(r.FormValue("supplier_name"))
	req.Observation = r.FormValue("observation")
	req.VerificationCheck = models.ParseLooseBool(r.FormValue("verification_check"))
	req.SetupType = r.FormValue("setup_type")
	req.ProductCode = r.FormValue("product_code")
	req.ProductName = r.FormValue("product_name")
	req.ProductPO = r.FormValue("product_po")
	req.Photos = r.Form["photo_data"]

	// Selected items arrive as a JSON-encoded form field.
	if raw := r.FormValue("selected_items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.SelectedItems); err != nil {
			slog.Warn("discarding malformed selected_items field", slog.Any("err", err))
			req.SelectedItems = nil
		}
	}
	return req, nil
}
