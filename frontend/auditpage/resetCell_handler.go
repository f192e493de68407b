package auditpage

import (
	"net/http"

	"setuptrack/frontend/shared/api"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/setuplog"
)

type resetCellRequest struct {
	CellName string `json:"cell_name"`
	Reason   string `json:"reason"`
}

// ResetCellCommandHandler writes a reset checkpoint for a cell. Records are
// kept; they just stop counting toward the cell's current flow state.
func ResetCellCommandHandler(setups *setuplog.Store, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetCellRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CellName == "" || req.Reason == "" {
			api.Fail(w, http.StatusBadRequest, "cell and reason are required")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := setups.ResetCellFlow(req.CellName, req.Reason, session.Username); err != nil {
			api.Fail(w, http.StatusInternalServerError, "failed to reset cell flow")
			return
		}

		auditSvc.Record(r.Context(), db, session.Username, "cell.reset", audit.EntityCell,
			req.CellName, nil, map[string]any{"reason": req.Reason})

		api.OK(w, "cell flow reset", nil)
	}
}

// ResetHistoryQueryHandler returns the cell's reset checkpoints, newest
// first.
func ResetHistoryQueryHandler(setups *setuplog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cellName := r.URL.Query().Get("cell_name")
		if cellName == "" {
			api.Fail(w, http.StatusBadRequest, "cell name is required")
			return
		}
		api.OK(w, "", map[string]any{"history": setups.ResetHistory(cellName)})
	}
}
