package cells

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"setuptrack/catalog"
	sharedhtml "setuptrack/frontend/shared/html"
)

// CellsPageQueryHandler renders the QR code management screen with every
// registered cell and its label links.
func CellsPageQueryHandler(catalogStore *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cells := catalogStore.ListCells()

		var b strings.Builder
		b.WriteString(`<main class="cells"><h1>Cells and QR Codes</h1>
<form method="post" action="/app/cells">
<label>QR code <input type="text" name="qr_code" required></label>
<label>Cell name <input type="text" name="cell_name" required></label>
<button type="submit">Register</button>
</form>
<table><thead><tr><th>QR code</th><th>Cell</th><th>Products</th><th>Label</th></tr></thead><tbody>`)
		for _, c := range cells {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%d</td><td><a href="/app/cells/%s/label.png">PNG</a> <a href="/app/cells/%s/label.pdf">PDF</a></td></tr>`,
				html.EscapeString(c.QRCode), html.EscapeString(c.CellName), c.ProductCount,
				html.EscapeString(c.QRCode), html.EscapeString(c.QRCode))
		}
		b.WriteString(`</tbody></table><script src="/assets/cells.js"></script></main>`)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sharedhtml.RenderLayout("Cells", b.String())))
	}
}
