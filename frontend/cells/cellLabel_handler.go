package cells

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"setuptrack/catalog"
)

// CellLabelPNGQueryHandler serves the QR code of one cell as a PNG for quick
// printing.
func CellLabelPNGQueryHandler(catalogStore *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qrCode := chi.URLParam(r, "qr")
		if _, ok := catalogStore.ResolveCell(qrCode); !ok {
			http.NotFound(w, r)
			return
		}

		data, err := renderQRCodePNG(qrCode, 600)
		if err != nil {
			http.Error(w, "failed to render qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "cell-"+qrCode+".png"))
		_, _ = w.Write(data)
	}
}

// CellLabelPDFQueryHandler serves a printable A4 label for one cell.
func CellLabelPDFQueryHandler(catalogStore *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qrCode := chi.URLParam(r, "qr")
		info, ok := catalogStore.ResolveCell(qrCode)
		if !ok {
			http.NotFound(w, r)
			return
		}

		data, err := renderCellLabelsPDF([]CellLabelData{{
			QRCode:   info.QRCode,
			CellName: info.CellName,
		}}, time.Now())
		if err != nil {
			http.Error(w, "failed to render label", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "cell-"+info.QRCode+".pdf"))
		_, _ = w.Write(data)
	}
}
