package login

import (
	"fmt"
	"html"
	"net/http"

	sharedhtml "setuptrack/frontend/shared/html"
)

// GetLoginScreenHandler renders the login form.
func GetLoginScreenHandler(w http.ResponseWriter, r *http.Request) {
	errMsg := r.URL.Query().Get("error")
	alert := ""
	if errMsg != "" {
		alert = fmt.Sprintf("<p class=\"alert\">%s</p>", html.EscapeString(errMsg))
	}

	body := fmt.Sprintf(`<main class="login">
<h1>Setup Tracker</h1>
%s
<form method="post" action="/login">
<label>Username <input type="text" name="username" autocomplete="username" required></label>
<label>Password <input type="password" name="password" autocomplete="current-password" required></label>
<button type="submit">Sign in</button>
</form>
</main>`, alert)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(sharedhtml.RenderLayout("Login", body)))
}
