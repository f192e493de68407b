package auditpage

import (
	"net/http"

	"setuptrack/frontend/shared/api"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/setuplog"
)

type deleteSetupRequest struct {
	CellName    string `json:"cell_name"`
	OrderNumber string `json:"order_number"`
	SetupType   string `json:"setup_type"`
}

// DeleteSetupCommandHandler removes a setup record together with its photos.
func DeleteSetupCommandHandler(setups *setuplog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteSetupRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CellName == "" || req.OrderNumber == "" || req.SetupType == "" {
			api.Fail(w, http.StatusBadRequest, "cell, order number and setup type are required")
			return
		}

		found, err := setups.DeleteSetup(req.CellName, req.OrderNumber, req.SetupType)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to delete setup")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "no matching setup found")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		auditSvc.Record(r.Context(), db, session.Username, "setup.delete", audit.EntitySetup,
			req.CellName+"/"+req.OrderNumber+"/"+req.SetupType,
			map[string]any{"order_number": req.OrderNumber, "setup_type": req.SetupType}, nil)

		api.OK(w, "setup deleted", nil)
	}
}
