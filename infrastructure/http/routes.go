package http

import (
	"net/http"

	adminusers "setuptrack/frontend/adminUsers"
	"setuptrack/frontend/auditpage"
	"setuptrack/frontend/cells"
	"setuptrack/frontend/login"
	"setuptrack/frontend/setup"
	"setuptrack/infrastructure/rbac"

	"github.com/go-chi/chi/v5"
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/login", login.CreateLoginHandler(s.DB, s.Users, s.SessionCache, s.UserCache))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache))
}

// RegisterSetupRoutes registers the shop-floor setup flow, reachable by both
// profiles.
func (s *Server) RegisterSetupRoutes(r chi.Router) chi.Router {
	both := []string{rbac.ProfileSupplier, rbac.ProfileAuditor}

	s.addFor(both, "SETUP_VIEW", http.MethodGet, "/app/setup")
	r.Get("/setup", setup.SetupPageQueryHandler())

	s.addFor(both, "SETUP_CREATE", http.MethodPost, "/app/setup")
	r.Post("/setup", setup.CreateSetupCommandHandler(s.Catalog, s.Setups, s.DB, s.Audit))

	s.addFor(both, "CELL_LOOKUP", http.MethodGet, "/app/api/cells/*")
	r.Get("/api/cells/{qr}", setup.CellInfoQueryHandler(s.Catalog, s.Setups))
	r.Get("/api/cells/{key}/products", setup.CellProductsQueryHandler(s.Catalog))
	r.Get("/api/cells/{key}/products/{code}/items", setup.ProductItemsQueryHandler(s.Catalog))

	s.addFor(both, "SETUP_STATUS", http.MethodGet, "/app/api/setup-status")
	r.Get("/api/setup-status", setup.SetupStatusQueryHandler(s.Setups))

	s.addFor(both, "SETUP_PHOTOS_VIEW", http.MethodGet, "/app/photos/*")
	r.Get("/photos/{cell}/*", setup.PhotoQueryHandler(s.Setups))

	s.addFor(both, "SETUP_IMAGES_LIST", http.MethodGet, "/app/api/setups/*/*/*/images")
	r.Get("/api/setups/{cell}/{order}/{type}/images", setup.SetupImagesQueryHandler(s.Setups))

	return r
}

// RegisterAuditRoutes registers the auditor-only review flow.
func (s *Server) RegisterAuditRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(rbac.ProfileAuditor, "AUDIT_LIST_VIEW", http.MethodGet, "/app/audit")
	r.Get("/audit", auditpage.AuditPageQueryHandler(s.Setups))

	s.Rbac.Add(rbac.ProfileAuditor, "SETUP_UPDATE", http.MethodPost, "/app/api/setups/update")
	r.Post("/api/setups/update", auditpage.UpdateSetupCommandHandler(s.Setups, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "SETUP_AUDIT_TOGGLE", http.MethodPost, "/app/api/setups/audit")
	r.Post("/api/setups/audit", auditpage.MarkAuditedCommandHandler(s.Setups, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "SETUP_DELETE", http.MethodPost, "/app/api/setups/delete")
	r.Post("/api/setups/delete", auditpage.DeleteSetupCommandHandler(s.Setups, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "CELL_RESET", http.MethodPost, "/app/api/cells/reset")
	r.Post("/api/cells/reset", auditpage.ResetCellCommandHandler(s.Setups, s.DB, s.Audit))

	// Not nested under /api/cells: the supplier cell-lookup grant uses a
	// trailing wildcard and must not cover reset history.
	s.Rbac.Add(rbac.ProfileAuditor, "CELL_RESET_HISTORY", http.MethodGet, "/app/api/reset-history")
	r.Get("/api/reset-history", auditpage.ResetHistoryQueryHandler(s.Setups))

	return r
}

// RegisterCellRoutes registers QR code and catalog management.
func (s *Server) RegisterCellRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(rbac.ProfileAuditor, "CELLS_LIST_VIEW", http.MethodGet, "/app/cells")
	r.Get("/cells", cells.CellsPageQueryHandler(s.Catalog))

	s.Rbac.Add(rbac.ProfileAuditor, "QRCODE_REGISTER", http.MethodPost, "/app/cells")
	r.Post("/cells", cells.RegisterQRCodeCommandHandler(s.Catalog, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "QRCODE_UPDATE", http.MethodPost, "/app/api/qrcodes/update")
	r.Post("/api/qrcodes/update", cells.UpdateQRCodeCommandHandler(s.Catalog, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "QRCODE_DELETE", http.MethodPost, "/app/api/qrcodes/delete")
	r.Post("/api/qrcodes/delete", cells.DeleteQRCodeCommandHandler(s.Catalog, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "PRODUCT_ADD", http.MethodPost, "/app/api/products/add")
	r.Post("/api/products/add", cells.AddProductCommandHandler(s.Catalog, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "PRODUCT_DELETE", http.MethodPost, "/app/api/products/delete")
	r.Post("/api/products/delete", cells.DeleteProductCommandHandler(s.Catalog, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "ITEM_ADD", http.MethodPost, "/app/api/items/add")
	r.Post("/api/items/add", cells.AddItemCommandHandler(s.Catalog, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "ITEM_DELETE", http.MethodPost, "/app/api/items/delete")
	r.Post("/api/items/delete", cells.DeleteItemCommandHandler(s.Catalog, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "CATALOG_MIGRATE", http.MethodPost, "/app/api/catalog/migrate")
	r.Post("/api/catalog/migrate", cells.MigrateCatalogCommandHandler(s.Catalog, s.DB, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "CELL_LABEL_PNG", http.MethodGet, "/app/cells/*/label.png")
	r.Get("/cells/{qr}/label.png", cells.CellLabelPNGQueryHandler(s.Catalog))

	s.Rbac.Add(rbac.ProfileAuditor, "CELL_LABEL_PDF", http.MethodGet, "/app/cells/*/label.pdf")
	r.Get("/cells/{qr}/label.pdf", cells.CellLabelPDFQueryHandler(s.Catalog))

	return r
}

// RegisterAdminRoutes registers user management.
func (s *Server) RegisterAdminRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(rbac.ProfileAuditor, "ADMIN_USERS_LIST_VIEW", http.MethodGet, "/app/admin/users")
	r.Get("/admin/users", adminusers.UsersPageQueryHandler(s.Users))

	s.Rbac.Add(rbac.ProfileAuditor, "ADMIN_USERS_CREATE", http.MethodPost, "/app/admin/users")
	r.Post("/admin/users", adminusers.CreateUserCommandHandler(s.Users, s.DB, s.SessionCache, s.UserCache, s.Audit))

	s.Rbac.Add(rbac.ProfileAuditor, "ADMIN_USERS_DELETE", http.MethodPost, "/app/api/admin/users/delete")
	r.Post("/api/admin/users/delete", adminusers.DeleteUserCommandHandler(s.Users, s.DB, s.SessionCache, s.UserCache, s.Audit))

	return r
}

func (s *Server) addFor(profiles []string, code, method, path string) {
	for _, p := range profiles {
		s.Rbac.Add(p, code, method, path)
	}
}
