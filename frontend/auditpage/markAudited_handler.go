package auditpage

import (
	"net/http"

	"setuptrack/frontend/shared/api"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/setuplog"
)

type markAuditedRequest struct {
	CellName    string `json:"cell_name"`
	OrderNumber string `json:"order_number"`
	SetupType   string `json:"setup_type"`
	Audited     bool   `json:"audited"`
	AuditNotes  string `json:"audit_notes"`
}

// MarkAuditedCommandHandler toggles the audited flag on a setup. Marking
// stamps the audit timestamp and the acting auditor; unmarking clears all
// audit fields.
func MarkAuditedCommandHandler(setups *setuplog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req markAuditedRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CellName == "" || req.OrderNumber == "" || req.SetupType == "" {
			api.Fail(w, http.StatusBadRequest, "cell, order number and setup type are required")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())

		audited := req.Audited
		auditorName := session.Username
		notes := req.AuditNotes
		if !audited {
			auditorName = ""
			notes = ""
		}

		found, err := setups.UpdateSetup(setuplog.UpdateInput{
			CellName:    req.CellName,
			OrderNumber: req.OrderNumber,
			SetupType:   req.SetupType,
			Audited:     &audited,
			AuditorName: &auditorName,
			AuditNotes:  &notes,
		})
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to change audit status")
			return
		}
		if !found {
			api.Fail(w, http.StatusNotFound, "setup not found")
			return
		}

		action := "setup.audit.mark"
		if !audited {
			action = "setup.audit.unmark"
		}
		auditSvc.Record(r.Context(), db, session.Username, action, audit.EntitySetup,
			req.CellName+"/"+req.OrderNumber+"/"+req.SetupType,
			map[string]any{"audited": !audited},
			map[string]any{"audited": audited, "auditor_name": auditorName, "audit_notes": notes})

		api.OK(w, "", map[string]any{
			"audited":      audited,
			"auditor_name": auditorName,
			"audit_notes":  notes,
		})
	}
}
