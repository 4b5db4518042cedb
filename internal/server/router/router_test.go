package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/repository/sqlstore"
	"github.com/rifqipratama/sibat/internal/server/handlers"
	"github.com/rifqipratama/sibat/internal/service/audit"
	authsvc "github.com/rifqipratama/sibat/internal/service/auth"
	partnersvc "github.com/rifqipratama/sibat/internal/service/partner"
	protocolsvc "github.com/rifqipratama/sibat/internal/service/protocol"
	reportingsvc "github.com/rifqipratama/sibat/internal/service/reporting"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	recorder := audit.NewRecorder(store, nil)
	authService := authsvc.NewService(store, nil)
	if err := authService.EnsureDefaultAdmin(context.Background(), "admin"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	partnerService := partnersvc.NewService(store, recorder, nil)
	protocolService := protocolsvc.NewService(store, protocolsvc.NewGenerator(), nil, recorder, nil)
	reportingService := reportingsvc.NewService(store, nil, nil)

	return New(Handlers{
		Auth:      handlers.NewAuthHandler(authService, nil),
		Partner:   handlers.NewPartnerHandler(partnerService, nil),
		Protocol:  handlers.NewProtocolHandler(protocolService, nil),
		Reporting: handlers.NewReportingHandler(reportingService, recorder, nil),
	}, authService, nil)
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func login(t *testing.T, engine *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/login", "", gin.H{"username": username, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	return decode[authsvc.Session](t, w).Token
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(t)
	w := doJSON(t, engine, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("healthz status %d", w.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	engine := newTestEngine(t)

	if w := doJSON(t, engine, http.MethodGet, "/api/partners", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, "/api/partners", "bogus", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bogus token: status %d", w.Code)
	}
}

func TestDistributionFlow(t *testing.T) {
	engine := newTestEngine(t)
	token := login(t, engine, "admin", "admin")

	// Register a partner.
	w := doJSON(t, engine, http.MethodPost, "/api/partners", token, gin.H{
		"name": "RS Harapan Bunda", "type": "rumah_sakit", "code": "RSX", "province_code": "DKI",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create partner: status %d body %s", w.Code, w.Body.String())
	}
	partner := decode[models.Partner](t, w)

	// Mint a batch of 3.
	w = doJSON(t, engine, http.MethodPost, "/api/protocols", token, gin.H{
		"province_code": "DKI", "partner_id": partner.ID, "quantity": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create batch: status %d body %s", w.Code, w.Body.String())
	}
	batch := decode[protocolsvc.BatchResult](t, w)
	if len(batch.Codes) != 3 {
		t.Fatalf("batch codes = %v", batch.Codes)
	}

	// Anyone can resolve a scanned code.
	code := batch.Codes[0]
	w = doJSON(t, engine, http.MethodGet, "/scan/"+code, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("scan: status %d", w.Code)
	}
	if p := decode[models.Protocol](t, w); p.Status != models.StatusCreated {
		t.Errorf("scanned status = %s", p.Status)
	}

	// Public usage confirmation defaults to marking the kit used.
	w = doJSON(t, engine, http.MethodPost, "/api/confirm-usage/"+code, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm usage: status %d body %s", w.Code, w.Body.String())
	}
	if p := decode[models.Protocol](t, w); p.Status != models.StatusUsed {
		t.Errorf("confirmed status = %s", p.Status)
	}

	// Ledger reflects 3 allocated, 1 used.
	w = doJSON(t, engine, http.MethodGet, "/api/stock", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stock: status %d", w.Code)
	}
	stock := decode[struct {
		Summary models.StockSummary `json:"summary"`
	}](t, w)
	if stock.Summary.TotalAllocated != 3 || stock.Summary.TotalUsed != 1 || stock.Summary.TotalAvailable != 2 {
		t.Errorf("summary = %+v", stock.Summary)
	}

	// Barcode renders for a known code, 404s for an unknown one.
	w = doJSON(t, engine, http.MethodGet, "/barcode/"+code, "", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("barcode: status %d type %s", w.Code, w.Header().Get("Content-Type"))
	}
	w = doJSON(t, engine, http.MethodGet, "/barcode/UNKNOWN", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown barcode: status %d", w.Code)
	}

	w = doJSON(t, engine, http.MethodGet, "/download/barcode/"+code, "", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Disposition") == "" {
		t.Errorf("download barcode: status %d", w.Code)
	}
}

func TestViewerCannotMutate(t *testing.T) {
	engine := newTestEngine(t)
	admin := login(t, engine, "admin", "admin")

	w := doJSON(t, engine, http.MethodPost, "/api/users", admin, gin.H{
		"username": "lihat", "email": "lihat@example.org", "full_name": "Viewer",
		"role": "viewer", "password": "rahasia1", "confirm_password": "rahasia1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create viewer: status %d body %s", w.Code, w.Body.String())
	}

	viewer := login(t, engine, "lihat", "rahasia1")

	if w := doJSON(t, engine, http.MethodGet, "/api/partners", viewer, nil); w.Code != http.StatusOK {
		t.Errorf("viewer read: status %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodPost, "/api/partners", viewer, gin.H{
		"name": "X", "type": "klinik", "code": "XX1", "province_code": "DKI",
	}); w.Code != http.StatusForbidden {
		t.Errorf("viewer create partner: status %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, "/api/users", viewer, nil); w.Code != http.StatusForbidden {
		t.Errorf("viewer list users: status %d", w.Code)
	}
}

func TestValidationErrorsMapToBadRequest(t *testing.T) {
	engine := newTestEngine(t)
	token := login(t, engine, "admin", "admin")

	w := doJSON(t, engine, http.MethodPost, "/api/protocols", token, gin.H{
		"province_code": "ZZZ", "partner_id": 1, "quantity": 1,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad province: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, http.MethodPost, "/api/partners", token, gin.H{
		"name": "X", "type": "apotek", "code": "XX1", "province_code": "DKI",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad type: status %d body %s", w.Code, w.Body.String())
	}
}

func TestDuplicatePartnerCodeConflicts(t *testing.T) {
	engine := newTestEngine(t)
	token := login(t, engine, "admin", "admin")

	payload := gin.H{"name": "RS A", "type": "rumah_sakit", "code": "RSA", "province_code": "DKI"}
	if w := doJSON(t, engine, http.MethodPost, "/api/partners", token, payload); w.Code != http.StatusCreated {
		t.Fatalf("first create: status %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodPost, "/api/partners", token, payload); w.Code != http.StatusConflict {
		t.Errorf("duplicate create: status %d", w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	engine := newTestEngine(t)
	token := login(t, engine, "admin", "admin")

	if w := doJSON(t, engine, http.MethodPost, "/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, "/api/partners", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("token alive after logout: status %d", w.Code)
	}
}

func TestActivityFeedRecordsActions(t *testing.T) {
	engine := newTestEngine(t)
	token := login(t, engine, "admin", "admin")

	w := doJSON(t, engine, http.MethodPost, "/api/partners", token, gin.H{
		"name": "RS A", "type": "rumah_sakit", "code": "RSA", "province_code": "DKI",
	})
	if w.Code != http.StatusCreated {
		t.Fatal(w.Body.String())
	}

	w = doJSON(t, engine, http.MethodGet, "/api/activity", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("activity: status %d", w.Code)
	}
	entries := decode[[]models.ActivityLog](t, w)
	if len(entries) == 0 || entries[0].Action != "create_partner" {
		t.Errorf("activity entries = %+v", entries)
	}
}
