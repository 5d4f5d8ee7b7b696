package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/storage"
)

func family() *person.Store {
	return person.NewStore(
		person.Person{ID: 1, Name: "Ann", Sex: person.SexFemale, SpouseID: 2, Tree: "smith"},
		person.Person{ID: 2, Name: "Bob", Sex: person.SexMale, SpouseID: 1, Tree: "smith"},
		person.Person{ID: 3, Name: "Cal", Sex: person.SexMale, FatherID: 2, MotherID: 1, Tree: "smith"},
		person.Person{ID: 4, Name: "Dee", ParentID: 3, Tree: "smith"},
		person.Person{ID: 10, Name: "Eve", Tree: "jones"},
	)
}

type testServer struct {
	t       *testing.T
	srv     *Server
	handler http.Handler
	session string
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	opts.Logger = log.New(io.Discard)
	srv := New(family(), opts)
	return &testServer{t: t, srv: srv, handler: srv.Handler()}
}

// do sends a request with the current session id and remembers the id the
// server returns.
func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if ts.session != "" {
		req.Header.Set(SessionHeader, ts.session)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if id := rec.Header().Get(SessionHeader); id != "" {
		ts.session = id
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, status, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do("GET", "/health", "")
	wantStatus(t, rec, http.StatusOK)
	got := decode[healthResponse](t, rec)
	if got.Status != "ok" || got.People != 5 {
		t.Errorf("health = %+v, want ok with 5 people", got)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, Options{SessionTTL: time.Hour})
	now := time.Now()
	ts.srv.now = func() time.Time { return now }

	rec := ts.do("PUT", "/api/v1/tree", `{"tree":"jones"}`)
	wantStatus(t, rec, http.StatusOK)
	first := ts.session
	if first == "" {
		t.Fatal("no session id returned")
	}

	rec = ts.do("GET", "/api/v1/trees", "")
	if got := decode[treesResponse](t, rec); got.Selected != "jones" {
		t.Errorf("selected tree = %q, want jones (session not reused)", got.Selected)
	}

	now = now.Add(2 * time.Hour)
	rec = ts.do("GET", "/api/v1/trees", "")
	if ts.session == first {
		t.Error("expired session was reused")
	}
	if got := decode[treesResponse](t, rec); got.Selected != person.TreeAll {
		t.Errorf("new session tree = %q, want %q", got.Selected, person.TreeAll)
	}
}

func TestForest_Generations(t *testing.T) {
	ts := newTestServer(t, Options{Tree: "jones"})
	rec := ts.do("GET", "/api/v1/forest", "")
	wantStatus(t, rec, http.StatusOK)
	if f := decode[forestResponse](t, rec); f.People != 1 || f.Generations != 1 {
		t.Errorf("forest = %+v, want 1 person in 1 generation", f)
	}
}

func TestForestAndFold(t *testing.T) {
	ts := newTestServer(t, Options{Tree: "smith"})

	rec := ts.do("GET", "/api/v1/forest", "")
	wantStatus(t, rec, http.StatusOK)
	f := decode[forestResponse](t, rec)
	if f.Tree != "smith" || f.People != 4 || f.Generations != 3 {
		t.Errorf("forest = %+v, want smith with 4 people over 3 generations", f)
	}
	if len(f.Nodes) != 3 {
		t.Errorf("len(nodes) = %d, want 3", len(f.Nodes))
	}

	rec = ts.do("POST", "/api/v1/fold/3", "")
	wantStatus(t, rec, http.StatusOK)
	if got := decode[foldResponse](t, rec); !got.Folded {
		t.Errorf("fold = %+v, want folded", got)
	}

	f = decode[forestResponse](t, ts.do("GET", "/api/v1/forest", ""))
	if len(f.Nodes) != 2 || !f.Nodes[1].Folded || f.Nodes[1].Hidden != 1 {
		t.Errorf("nodes after fold = %+v", f.Nodes)
	}

	wantStatus(t, ts.do("POST", "/api/v1/fold/99", ""), http.StatusNotFound)
	wantStatus(t, ts.do("POST", "/api/v1/fold/abc", ""), http.StatusBadRequest)

	got := decode[foldResponse](t, ts.do("POST", "/api/v1/fold/collapse-all", ""))
	if diff := cmp.Diff([]person.ID{1, 2, 3}, got.All); diff != "" {
		t.Errorf("collapse-all mismatch (-want +got):\n%s", diff)
	}
	got = decode[foldResponse](t, ts.do("POST", "/api/v1/fold/expand-all", ""))
	if len(got.All) != 0 {
		t.Errorf("expand-all left %v collapsed", got.All)
	}
}

func TestRelationship(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do("GET", "/api/v1/relationship?a=3&b=1", "")
	wantStatus(t, rec, http.StatusOK)
	got := decode[relationshipResponse](t, rec)
	if got.Label != "child" || got.Gendered != "son" {
		t.Errorf("relationship = %q/%q, want child/son", got.Label, got.Gendered)
	}
	if got.Sentence != "Cal is the son of Ann" {
		t.Errorf("sentence = %q", got.Sentence)
	}

	rec = ts.do("GET", "/api/v1/relationship?a=3&b=10", "")
	wantStatus(t, rec, http.StatusNotFound)
	if body := decode[errorBody](t, rec); body.Error.Code != "NOT_RELATED" {
		t.Errorf("error code = %q, want NOT_RELATED", body.Error.Code)
	}
	wantStatus(t, ts.do("GET", "/api/v1/relationship?a=3&b=3", ""), http.StatusBadRequest)
	wantStatus(t, ts.do("GET", "/api/v1/relationship?a=3", ""), http.StatusBadRequest)
}

func TestPeopleCRUD(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do("POST", "/api/v1/people", `{"id":5,"name":"Gus","parentId":4,"tree":"smith"}`)
	wantStatus(t, rec, http.StatusCreated)
	if loc := rec.Header().Get("Location"); loc != "/api/v1/people/5" {
		t.Errorf("Location = %q", loc)
	}
	wantStatus(t, ts.do("POST", "/api/v1/people", `{"id":5,"name":"Dup"}`), http.StatusConflict)
	wantStatus(t, ts.do("POST", "/api/v1/people", `{"id":6}`), http.StatusBadRequest)
	wantStatus(t, ts.do("POST", "/api/v1/people", `{"id":6,"name":"X","bogus":1}`), http.StatusUnprocessableEntity)

	rec = ts.do("PATCH", "/api/v1/people/5", `{"name":"Gustav"}`)
	wantStatus(t, rec, http.StatusOK)
	if p := decode[person.Person](t, rec); p.Name != "Gustav" || p.ParentID != 4 {
		t.Errorf("patched person = %+v", p)
	}

	rec = ts.do("GET", "/api/v1/people/5", "")
	wantStatus(t, rec, http.StatusOK)

	// The forest of an existing session picks up the change.
	f := decode[forestResponse](t, ts.do("GET", "/api/v1/forest", ""))
	if f.People != 6 {
		t.Errorf("forest people = %d, want 6", f.People)
	}

	wantStatus(t, ts.do("DELETE", "/api/v1/people/5", ""), http.StatusNoContent)
	wantStatus(t, ts.do("GET", "/api/v1/people/5", ""), http.StatusNotFound)

	people := decode[[]person.Person](t, ts.do("GET", "/api/v1/people?tree=jones", ""))
	if len(people) != 1 || people[0].ID != 10 {
		t.Errorf("people?tree=jones = %+v", people)
	}
}

func TestImportExport(t *testing.T) {
	ts := newTestServer(t, Options{Tree: "smith"})

	rec := ts.do("GET", "/api/v1/export?format=gedcom", "")
	wantStatus(t, rec, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="kintree-smith.ged"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("0 HEAD")) {
		t.Errorf("export body does not start with HEAD: %q", rec.Body.String())
	}

	csv := "id,name,parentId,tree\n20,Hal,4,smith\n"
	rec = ts.do("POST", "/api/v1/import?format=csv&mode=append", csv)
	wantStatus(t, rec, http.StatusOK)
	if got := decode[importResponse](t, rec); got.Imported != 1 || got.People != 6 {
		t.Errorf("import = %+v, want 1 imported, 6 people", got)
	}

	rec = ts.do("POST", "/api/v1/import?format=json", `[{"name":"no id"}]`)
	wantStatus(t, rec, http.StatusUnprocessableEntity)
	if got := decode[healthResponse](t, ts.do("GET", "/health", "")); got.People != 6 {
		t.Errorf("failed import changed the store: %d people", got.People)
	}

	wantStatus(t, ts.do("POST", "/api/v1/import?format=xml", "<x/>"), http.StatusUnprocessableEntity)
	wantStatus(t, ts.do("POST", "/api/v1/import?format=csv&mode=merge", csv), http.StatusBadRequest)
}

func TestDiagnostics(t *testing.T) {
	ts := newTestServer(t, Options{})
	wantStatus(t, ts.do("POST", "/api/v1/people", `{"id":30,"name":"Ivy","parentId":999}`), http.StatusCreated)

	got := decode[diagnosticsResponse](t, ts.do("GET", "/api/v1/diagnostics", ""))
	if got.Clean || len(got.Diagnostics) != 1 || got.Diagnostics[0].Kind != "dangling-parent" {
		t.Errorf("diagnostics = %+v", got)
	}
}

func TestDatasets(t *testing.T) {
	repo := storage.NewMemoryStore()
	ts := newTestServer(t, Options{Repository: repo})

	wantStatus(t, ts.do("POST", "/api/v1/datasets/backup/save", ""), http.StatusOK)
	wantStatus(t, ts.do("DELETE", "/api/v1/people/10", ""), http.StatusNoContent)
	rec := ts.do("POST", "/api/v1/datasets/backup/load", "")
	wantStatus(t, rec, http.StatusOK)
	if got := decode[datasetResponse](t, rec); got.People != 5 {
		t.Errorf("load = %+v, want 5 people", got)
	}

	got := decode[datasetsResponse](t, ts.do("GET", "/api/v1/datasets", ""))
	if diff := cmp.Diff([]string{"backup"}, got.Datasets); diff != "" {
		t.Errorf("datasets mismatch (-want +got):\n%s", diff)
	}
	wantStatus(t, ts.do("POST", "/api/v1/datasets/missing/load", ""), http.StatusNotFound)
	wantStatus(t, ts.do("DELETE", "/api/v1/datasets/backup", ""), http.StatusNoContent)
}

func TestDatasetsDisabled(t *testing.T) {
	ts := newTestServer(t, Options{})
	wantStatus(t, ts.do("GET", "/api/v1/datasets", ""), http.StatusNotFound)
}

func TestMetricsMount(t *testing.T) {
	ts := newTestServer(t, Options{Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "kintree_forest_builds_total 1\n")
	})})
	rec := ts.do("GET", "/metrics", "")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "kintree_forest_builds_total") {
		t.Errorf("metrics body = %q", rec.Body.String())
	}
}
