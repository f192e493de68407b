package adminusers

import (
	"net/http"

	"setuptrack/frontend/login"
	"setuptrack/frontend/shared/api"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/cache"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/userstore"
)

type deleteUserRequest struct {
	Username string `json:"username"`
}

// DeleteUserCommandHandler removes a user account and revokes its sessions.
// The admin account, the last user and the requester's own account are
// protected.
func DeleteUserCommandHandler(users *userstore.Store, db *sqlite.DB, sessionCache *cache.SessionCache, userCache *cache.UserCache, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteUserRequest
		if err := api.DecodeBody(r, &req); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Username == "" {
			api.Fail(w, http.StatusBadRequest, "username is required")
			return
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := users.Delete(req.Username, session.Username); err != nil {
			api.Fail(w, http.StatusBadRequest, err.Error())
			return
		}

		sessionCache.DeleteByUsername(req.Username)
		userCache.Delete(req.Username)
		_ = login.DeleteSessionsByUsername(r.Context(), db, req.Username)

		auditSvc.Record(r.Context(), db, session.Username, "user.delete", audit.EntityUser,
			req.Username, map[string]any{"username": req.Username}, nil)

		api.OK(w, "user deleted", nil)
	}
}
