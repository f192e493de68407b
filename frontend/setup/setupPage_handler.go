package setup

import (
	"fmt"
	"html"
	"net/http"

	sessioncontext "setuptrack/frontend/shared/context"
	sharedhtml "setuptrack/frontend/shared/html"
)

// SetupPageQueryHandler renders the setup registration screen. The page is
// driven by the cell APIs: scanning a QR code resolves the cell and loads its
// product catalog.
func SetupPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		qr := html.EscapeString(r.URL.Query().Get("qr"))
		errMsg := r.URL.Query().Get("error")
		alert := ""
		if errMsg != "" {
			alert = fmt.Sprintf("<p class=\"alert\">%s</p>", html.EscapeString(errMsg))
		}

		body := fmt.Sprintf(`<main class="setup" data-user="%s" data-qr="%s">
<h1>Cell Setup</h1>
%s
<form id="setup-form" method="post" action="/app/setup">
<label>QR code <input type="text" name="qr_code" id="qr-code" value="%s" required></label>
<input type="hidden" name="cell_name" id="cell-name">
<label>Order number <input type="text" name="order_number" required></label>
<label>Supplier <input type="text" name="supplier_name" value="%s" required></label>
<label>Setup type
<select name="setup_type">
<option value="removal">Removal</option>
<option value="supply">Supply</option>
</select>
</label>
<div id="product-picker"></div>
<label>Observation <textarea name="observation"></textarea></label>
<label><input type="checkbox" name="verification_check" value="true"> Verification done</label>
<div id="photo-capture"></div>
<button type="submit">Register setup</button>
</form>
<script src="/assets/setup.js"></script>
</main>`, html.EscapeString(session.Username), qr, alert, qr, html.EscapeString(session.Username))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sharedhtml.RenderLayout("Cell Setup", body)))
	}
}
