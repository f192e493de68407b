package setup

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"setuptrack/frontend/shared/api"
	"setuptrack/models"
	"setuptrack/setuplog"
)

// PhotoQueryHandler serves a stored setup photo. The wildcard may point into
// a per-setup image directory or at a legacy flat file.
func PhotoQueryHandler(setups *setuplog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cellName := chi.URLParam(r, "cell")
		relPath := chi.URLParam(r, "*")

		full, err := setups.PhotoPath(cellName, relPath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, full)
	}
}

// SetupImagesQueryHandler lists the photo URLs of one setup.
func SetupImagesQueryHandler(setups *setuplog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cellName := chi.URLParam(r, "cell")
		orderNumber := chi.URLParam(r, "order")
		setupType := chi.URLParam(r, "type")
		if setupType != models.SetupSupply && setupType != models.SetupRemoval {
			api.Fail(w, http.StatusBadRequest, "invalid setup type")
			return
		}

		paths := setups.SetupImages(cellName, orderNumber, setupType)
		urls := make([]string, 0, len(paths))
		for _, p := range paths {
			urls = append(urls, fmt.Sprintf("/app/photos/%s/%s", cellName, p))
		}
		if len(urls) == 0 {
			api.WriteJSON(w, http.StatusOK, map[string]any{"success": false, "images": []string{}})
			return
		}
		api.OK(w, "", map[string]any{"images": urls})
	}
}
