package obs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ssikv/ssikv/pkg/engine"
	"github.com/ssikv/ssikv/pkg/events"
)

func newTestServer() *Server {
	log := events.New(100)
	eng := engine.New(log)
	eng.Begin("T1", 1)
	eng.Read("T1", 2, 2)
	var mu sync.RWMutex
	return New(eng, log, &mu)
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRun(t *testing.T) {
	srv := newTestServer()
	rec := doGet(t, srv, "/run")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /run = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["runId"] == "" {
		t.Error("expected a non-empty runId")
	}
}

func TestHandleSites(t *testing.T) {
	srv := newTestServer()
	rec := doGet(t, srv, "/sites")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /sites = %d", rec.Code)
	}
	var views []siteView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 10 {
		t.Errorf("expected 10 sites, got %d", len(views))
	}
}

func TestHandleSiteRejectsOutOfRangeID(t *testing.T) {
	srv := newTestServer()
	rec := doGet(t, srv, "/sites/99")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET /sites/99 = %d, want 400", rec.Code)
	}
}

func TestHandleTransaction(t *testing.T) {
	srv := newTestServer()
	rec := doGet(t, srv, "/transactions/T1")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /transactions/T1 = %d", rec.Code)
	}
	var v txView
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.ID != "T1" || len(v.Reads) != 1 {
		t.Errorf("unexpected transaction view: %+v", v)
	}
}

func TestHandleTransactionNotFound(t *testing.T) {
	srv := newTestServer()
	rec := doGet(t, srv, "/transactions/T9")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /transactions/T9 = %d, want 404", rec.Code)
	}
}

func TestHandleDump(t *testing.T) {
	srv := newTestServer()
	rec := doGet(t, srv, "/dump")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /dump = %d", rec.Code)
	}
}

func TestHandleGraphQLQuery(t *testing.T) {
	srv := newTestServer()
	body := `{"query":"{ transaction(id: \"T1\") { id state } }"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /graphql = %d, body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Transaction struct {
				ID    string `json:"id"`
				State string `json:"state"`
			} `json:"transaction"`
		} `json:"data"`
		Errors []struct{ Message string } `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors) > 0 {
		t.Fatalf("graphql errors: %+v", resp.Errors)
	}
	if resp.Data.Transaction.ID != "T1" || resp.Data.Transaction.State != "active" {
		t.Errorf("unexpected graphql result: %+v", resp.Data.Transaction)
	}
}

func TestGraphQLRejectsGet(t *testing.T) {
	srv := newTestServer()
	rec := doGet(t, srv, "/graphql")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /graphql = %d, want 405", rec.Code)
	}
}
