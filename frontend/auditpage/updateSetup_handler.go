package auditpage

import (
	"net/http"

	"setuptrack/frontend/shared/api"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/models"
	"setuptrack/setuplog"
)

type updateSetupRequest struct {
	CellName          string            `json:"cell_name"`
	OrderNumber       string            `json:"order_number"`
	SetupType         string            `json:"setup_type"`
	SupplierName      *string           `json:"supplier_name"`
	Observation       *string           `json:"observation"`
	VerificationCheck *models.LooseBool `json:"verification_check"`
	Timestamp         *string           `json:"timestamp"`
	Photo             string            `json:"photo_data"`
}

// UpdateSetupCommandHandler edits the fields of an existing setup record.
// Absent fields keep their stored values.
func UpdateSetupCommandHandler(setups *setuplog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateSetupRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CellName == "" || req.OrderNumber == "" {
			api.Fail(w, http.StatusBadRequest, "cell and order number are required")
			return
		}

		in := setuplog.UpdateInput{
			CellName:     req.CellName,
			OrderNumber:  req.OrderNumber,
			SetupType:    req.SetupType,
			SupplierName: req.SupplierName,
			Observation:  req.Observation,
			Timestamp:    req.Timestamp,
			Photo:        req.Photo,
		}
		if req.VerificationCheck != nil {
			v := req.VerificationCheck.Bool()
			in.VerificationCheck = &v
		}

		found, err := setups.UpdateSetup(in)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to update setup")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "setup not found")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		after := map[string]any{}
		if req.SupplierName != nil {
			after["supplier_name"] = *req.SupplierName
		}
		if req.Observation != nil {
			after["observation"] = *req.Observation
		}
		if req.VerificationCheck != nil {
			after["verification_check"] = req.VerificationCheck.Bool()
		}
		auditSvc.Record(r.Context(), db, session.Username, "setup.update", audit.EntitySetup,
			req.CellName+"/"+req.OrderNumber+"/"+req.SetupType, nil, after)

		api.OK(w, "setup updated", nil)
	}
}
