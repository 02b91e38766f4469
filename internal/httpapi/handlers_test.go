package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"admin-console/internal/audit"
	"admin-console/internal/gateway"
	"admin-console/internal/permission"
	"admin-console/internal/session"
	"admin-console/internal/settings"
	"admin-console/internal/token"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeGateway dispatches canned responses per operation, the way the real
// operation-dispatch API would.
func fakeGateway(t *testing.T, byOperation map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			Operation string `json:"operation"`
			Signature string `json:"signature"`
			Reference string `json:"reference"`
		}
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			t.Errorf("decode envelope: %v", err)
		}
		if env.Signature == "" || env.Reference == "" {
			t.Errorf("unsigned call for %q", env.Operation)
		}
		body, ok := byOperation[env.Operation]
		if !ok {
			body = `{"code":"E_UNKNOWN_OPERATION"}`
		}
		w.Write([]byte(body))
	}))
}

type rig struct {
	engine *gin.Engine
	audit  *audit.MemoryRepo
}

func newRig(t *testing.T, gatewayURL string) *rig {
	t.Helper()

	codec, err := token.NewCodec("test-secret", nil)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	store := &session.CookieStore{Name: "sess", ChunkSize: 3000, MaxAge: time.Hour}
	sessions, err := session.NewManager(codec, store, time.Hour)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	perms := permission.NewEvaluator([]string{"super admin"})

	signer, err := gateway.NewSigner("shared-secret")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	client, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL:        gatewayURL,
		Channel:        "admin",
		DefaultCountry: "TH",
		Timeout:        2 * time.Second,
	}, signer, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	settingsSvc, err := settings.NewService(settings.NewMemoryRepo(), time.Minute)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	auditRepo := audit.NewMemoryRepo()

	h := Handlers{
		Sessions: sessions,
		Gateway:  client,
		Perms:    perms,
		Settings: settingsSvc,
		Audit:    audit.NewService(auditRepo),
	}

	r := gin.New()
	v1 := r.Group("/v1")
	v1.Use(gateway.Middleware(client))
	v1.POST("/auth/login", h.SignIn)

	authed := v1.Group("")
	authed.Use(session.Require(sessions))
	authed.POST("/auth/logout", h.SignOut)
	authed.GET("/me", h.Me)
	authed.GET("/games", permission.RequireCapability(perms, "games:view"), h.Forward("games.list"))
	authed.POST("/games", permission.RequireCapability(perms, "games:add"), h.Forward("games.create"))

	return &rig{engine: r, audit: auditRepo}
}

func (rg *rig) do(method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	rg.engine.ServeHTTP(w, req)
	return w
}

func liveCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge > 0 {
			out = append(out, ck)
		}
	}
	return out
}

const operatorJSON = `{
	"id": "op-1001",
	"name": "Alex Operator",
	"username": "alex",
	"email": "alex@example.com",
	"role": "Operator",
	"capabilities": ["games:view"],
	"country": "TH"
}`

func TestSignInIssuesSessionAndGatesCalls(t *testing.T) {
	srv := fakeGateway(t, map[string]string{
		"auth.check": `{"code":"0","data":` + operatorJSON + `}`,
		"games.list": `{"code":"0","data":{"games":[]}}`,
	})
	defer srv.Close()
	rg := newRig(t, srv.URL)

	w := rg.do(http.MethodPost, "/v1/auth/login", `{"username":"alex","password":"pw"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", w.Code, w.Body.String())
	}
	cookies := liveCookies(w)
	if len(cookies) == 0 {
		t.Fatalf("expected session cookies")
	}

	// Identity round-trips through the session.
	w = rg.do(http.MethodGet, "/v1/me", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("me status %d", w.Code)
	}
	var me struct {
		ID           string `json:"id"`
		IsSuperAdmin bool   `json:"is_super_admin"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil || me.ID != "op-1001" {
		t.Fatalf("unexpected me response: %s", w.Body.String())
	}
	if me.IsSuperAdmin {
		t.Fatalf("operator must not be super admin")
	}

	// Granted capability forwards to the gateway.
	w = rg.do(http.MethodGet, "/v1/games", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("games status %d: %s", w.Code, w.Body.String())
	}

	// Missing capability is forbidden before any gateway call.
	w = rg.do(http.MethodPost, "/v1/games", `{"name":"new"}`, cookies)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for games:add, got %d", w.Code)
	}

	// Audit trail recorded the sign-in.
	events := rg.audit.Events()
	if len(events) != 1 || events[0].Type != audit.EventTypeLogin {
		t.Fatalf("unexpected audit events: %+v", events)
	}
}

func TestSignInNormalizesEncodedCapabilities(t *testing.T) {
	// Capability list delivered as a JSON-encoded string.
	identity := strings.Replace(operatorJSON,
		`"capabilities": ["games:view"]`,
		`"capabilities": "[\"games:view\",\"players:view\"]"`, 1)
	srv := fakeGateway(t, map[string]string{
		"auth.check": `{"code":"0","data":` + identity + `}`,
	})
	defer srv.Close()
	rg := newRig(t, srv.URL)

	w := rg.do(http.MethodPost, "/v1/auth/login", `{"username":"alex","password":"pw"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Capabilities []string `json:"capabilities"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Capabilities) != 2 || res.Capabilities[0] != "games:view" {
		t.Fatalf("capabilities not normalized: %v", res.Capabilities)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	srv := fakeGateway(t, map[string]string{
		"auth.check": `{"code":"INVALID_CREDENTIAL","message":"bad credentials"}`,
	})
	defer srv.Close()
	rg := newRig(t, srv.URL)

	w := rg.do(http.MethodPost, "/v1/auth/login", `{"username":"alex","password":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if len(liveCookies(w)) != 0 {
		t.Fatalf("no session may be issued on denial")
	}
	events := rg.audit.Events()
	if len(events) != 1 || events[0].Type != audit.EventTypeLoginDenied {
		t.Fatalf("expected a denied audit event, got %+v", events)
	}
}

func TestSignInSurfacesTransportFailureAsRetryable(t *testing.T) {
	srv := fakeGateway(t, nil)
	srv.Close() // unreachable
	rg := newRig(t, srv.URL)

	w := rg.do(http.MethodPost, "/v1/auth/login", `{"username":"alex","password":"pw"}`, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "try again") {
		t.Fatalf("expected retryable message, got %s", w.Body.String())
	}
}

func TestSignOutDestroysSession(t *testing.T) {
	srv := fakeGateway(t, map[string]string{
		"auth.check": `{"code":"0","data":` + operatorJSON + `}`,
	})
	defer srv.Close()
	rg := newRig(t, srv.URL)

	w := rg.do(http.MethodPost, "/v1/auth/login", `{"username":"alex","password":"pw"}`, nil)
	cookies := liveCookies(w)

	w = rg.do(http.MethodPost, "/v1/auth/logout", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status %d", w.Code)
	}
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge >= 0 {
			t.Fatalf("expected every fragment expired, got %+v", ck)
		}
	}

	// Without cookies the session is gone.
	w = rg.do(http.MethodGet, "/v1/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after sign-out, got %d", w.Code)
	}
}

func TestRequireSessionRejectsInvalidToken(t *testing.T) {
	srv := fakeGateway(t, nil)
	defer srv.Close()
	rg := newRig(t, srv.URL)

	// A cookie that is not a valid token behaves like no session.
	w := rg.do(http.MethodGet, "/v1/me", "", []*http.Cookie{{Name: "sess", Value: "bogus"}})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", w.Code)
	}
}
