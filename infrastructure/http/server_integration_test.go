package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"setuptrack/catalog"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/cache"
	"setuptrack/infrastructure/rbac"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/setuplog"
	"setuptrack/userstore"
)

type integrationEnv struct {
	server *httptest.Server
	db     *sqlite.DB
}

func setupIntegrationServer(t *testing.T) (*integrationEnv, *http.Client) {
	t.Helper()
	dataDir := t.TempDir()

	db, err := sqlite.OpenDB(filepath.Join(dataDir, "server-integration.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	users := userstore.NewStore(filepath.Join(dataDir, "users.json"))
	if err := users.EnsureAdmin(); err != nil {
		t.Fatalf("seed admin user: %v", err)
	}
	if err := users.Upsert("supplier1", "supplier123", "supplier"); err != nil {
		t.Fatalf("seed supplier user: %v", err)
	}

	catalogStore := catalog.NewStore(filepath.Join(dataDir, "qrcodes.json"))
	setups := setuplog.NewStore(dataDir)

	s := NewServer("127.0.0.1:0", db, cache.NewSessionCache(), cache.NewUserCache(),
		rbac.New(), audit.NewService(), catalogStore, setups, users)
	ts := httptest.NewServer(s.router)
	env := &integrationEnv{server: ts, db: db}
	t.Cleanup(func() {
		env.server.Close()
		_ = env.db.Close()
	})

	return env, newHTTPClient(t)
}

func newHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func csrfToken(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == "X-CSRF-Token" {
			return c.Value
		}
	}
	return ""
}

func get(t *testing.T, client *http.Client, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func postForm(t *testing.T, client *http.Client, baseURL, path string, data url.Values) *http.Response {
	t.Helper()
	if data == nil {
		data = url.Values{}
	}
	if token := csrfToken(t, client, baseURL); token != "" {
		data.Set("_csrf", token)
	}
	resp, err := client.PostForm(baseURL+path, data)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func postJSON(t *testing.T, client *http.Client, baseURL, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", csrfToken(t, client, baseURL))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func loginAs(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()

	resp := get(t, client, baseURL, "/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postForm(t, client, baseURL, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login 303, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.Contains(location, "/app/audit") && !strings.Contains(location, "/app/setup") {
		t.Fatalf("unexpected login redirect: %s", location)
	}
	_ = resp.Body.Close()
}

func TestCSRFPostWithoutTokenRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)

	// No GET first and no Referer: nothing proves the request origin.
	resp, err := client.PostForm(env.server.URL+"/login", url.Values{
		"username": {"admin"},
		"password": {"admin123"},
	})
	if err != nil {
		t.Fatalf("post login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for missing csrf, got %d", resp.StatusCode)
	}
}

func TestCSRFPostWithSameOriginRefererAccepted(t *testing.T) {
	env, client := setupIntegrationServer(t)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/login",
		strings.NewReader(url.Values{"username": {"admin"}, "password": {"admin123"}}.Encode()))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", env.server.URL+"/login")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("post login with referer: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected same-origin login 303, got %d", resp.StatusCode)
	}
}

func TestCSRFPostCrossOriginRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/login",
		strings.NewReader(url.Values{"username": {"admin"}, "password": {"admin123"}}.Encode()))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Referer", "https://evil.example/attack")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("post cross-origin request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-origin post, got %d", resp.StatusCode)
	}
}

func TestLoginRedirectsByProfile(t *testing.T) {
	env, _ := setupIntegrationServer(t)
	auditorClient := newHTTPClient(t)
	supplierClient := newHTTPClient(t)

	resp := get(t, auditorClient, env.server.URL, "/login")
	_ = resp.Body.Close()
	resp = postForm(t, auditorClient, env.server.URL, "/login", url.Values{
		"username": {"admin"}, "password": {"admin123"},
	})
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "/app/audit") {
		t.Fatalf("expected auditor redirect to audit page, got %s", loc)
	}
	_ = resp.Body.Close()

	resp = get(t, supplierClient, env.server.URL, "/login")
	_ = resp.Body.Close()
	resp = postForm(t, supplierClient, env.server.URL, "/login", url.Values{
		"username": {"supplier1"}, "password": {"supplier123"},
	})
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "/app/setup") {
		t.Fatalf("expected supplier redirect to setup page, got %s", loc)
	}
	_ = resp.Body.Close()
}

func TestSupplierDeniedAuditorRoutes(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "supplier1", "supplier123")

	resp := get(t, client, env.server.URL, "/app/audit")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected supplier audit page denied with 303, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postJSON(t, client, env.server.URL, "/app/api/setups/delete", map[string]any{
		"cell_name": "CELL_A", "order_number": "ORD-1", "setup_type": "supply",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected supplier api delete denied with 403, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), `"success":false`) {
		t.Fatalf("expected json failure envelope, got %s", body)
	}

	resp = get(t, client, env.server.URL, "/app/setup")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected supplier setup page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestUnauthenticatedAPIAndPageDenials(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/app/setup")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected page redirect to login, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Location"), "/login") {
		t.Fatalf("unexpected redirect: %s", resp.Header.Get("Location"))
	}
	_ = resp.Body.Close()

	resp = get(t, client, env.server.URL, "/app/api/setup-status?cell_name=X&order_number=1")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected api 401, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestServerEndToEndSetupFlow(t *testing.T) {
	env, _ := setupIntegrationServer(t)
	auditorClient := newHTTPClient(t)
	supplierClient := newHTTPClient(t)

	loginAs(t, auditorClient, env.server.URL, "admin", "admin123")
	resp := postForm(t, auditorClient, env.server.URL, "/app/cells", url.Values{
		"qr_code": {"001"}, "cell_name": {"CELL_A"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected register qr 303, got %d", resp.StatusCode)
	}
	if strings.Contains(resp.Header.Get("Location"), "error=") {
		t.Fatalf("unexpected register error redirect: %s", resp.Header.Get("Location"))
	}
	_ = resp.Body.Close()

	loginAs(t, supplierClient, env.server.URL, "supplier1", "supplier123")

	resp = get(t, supplierClient, env.server.URL, "/app/api/cells/001")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected cell info 200, got %d", resp.StatusCode)
	}
	info := decodeEnvelope(t, resp)
	if info["cell_name"] != "CELL_A" {
		t.Fatalf("expected resolved cell CELL_A, got %v", info["cell_name"])
	}

	resp = postJSON(t, supplierClient, env.server.URL, "/app/setup", map[string]any{
		"qr_code":       "001",
		"order_number":  "ORD-100",
		"supplier_name": "supplier1",
		"setup_type":    "removal",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected create setup 200, got %d", resp.StatusCode)
	}
	created := decodeEnvelope(t, resp)
	if created["success"] != true {
		t.Fatalf("expected setup create success, got %v", created)
	}

	resp = get(t, supplierClient, env.server.URL, "/app/api/setup-status?cell_name=CELL_A&order_number=ORD-100")
	status := decodeEnvelope(t, resp)
	if status["has_removal"] != true || status["has_supply"] != false {
		t.Fatalf("expected removal-only status, got %v", status)
	}

	resp = postJSON(t, auditorClient, env.server.URL, "/app/api/setups/audit", map[string]any{
		"cell_name":    "CELL_A",
		"order_number": "ORD-100",
		"setup_type":   "removal",
		"audited":      true,
		"audit_notes":  "looks complete",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected mark audited 200, got %d", resp.StatusCode)
	}
	marked := decodeEnvelope(t, resp)
	if marked["audited"] != true || marked["auditor_name"] != "admin" {
		t.Fatalf("expected audit stamped by admin, got %v", marked)
	}

	resp = postJSON(t, auditorClient, env.server.URL, "/app/api/cells/reset", map[string]any{
		"cell_name": "CELL_A", "reason": "changeover complete",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected cell reset 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = get(t, auditorClient, env.server.URL, "/app/api/reset-history?cell_name=CELL_A")
	history := decodeEnvelope(t, resp)
	events, ok := history["history"].([]any)
	if !ok || len(events) != 1 {
		t.Fatalf("expected one reset event, got %v", history["history"])
	}
}
