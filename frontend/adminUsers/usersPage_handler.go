package adminusers

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	sharedhtml "setuptrack/frontend/shared/html"
	"setuptrack/userstore"
)

// UsersPageQueryHandler renders the user management screen.
func UsersPageQueryHandler(users *userstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errMsg := r.URL.Query().Get("error")
		alert := ""
		if errMsg != "" {
			alert = fmt.Sprintf("<p class=\"alert\">%s</p>", html.EscapeString(errMsg))
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<main class="admin-users"><h1>Users</h1>
%s
<form method="post" action="/app/admin/users">
<label>Username <input type="text" name="username" required></label>
<label>Password <input type="password" name="password" required></label>
<label>Profile
<select name="profile">
<option value="supplier">Supplier</option>
<option value="auditor">Auditor</option>
</select>
</label>
<button type="submit">Save user</button>
</form>
<table><thead><tr><th>Username</th><th>Profile</th><th>Last updated</th></tr></thead><tbody>`, alert)
		for _, u := range users.List() {
			fmt.Fprintf(&b, `<tr data-username="%s"><td>%s</td><td>%s</td><td>%s</td></tr>`,
				html.EscapeString(u.Username), html.EscapeString(u.Username),
				html.EscapeString(u.Profile), html.EscapeString(u.LastUpdated))
		}
		b.WriteString(`</tbody></table><script src="/assets/users.js"></script></main>`)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sharedhtml.RenderLayout("Users", b.String())))
	}
}
