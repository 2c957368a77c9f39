package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/organizer/internal/models"
	"github.com/starford/organizer/internal/navigation"
	"github.com/starford/organizer/internal/organizer"
	"github.com/starford/organizer/internal/testutil"
)

// testEnv sets up a SQLite-backed service and router for testing.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (*organizer.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, sse http.Handler) (*organizer.Service, http.Handler) {
	t.Helper()
	svc, _ := testutil.TestService(t)
	router := NewRouter(svc, navigation.NewSessions(), authToken != "", authToken, sse)
	return svc, router
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func createRecord(t *testing.T, router http.Handler, kind, title string) models.Record {
	t.Helper()
	w := do(t, router, http.MethodPost, "/records/"+kind, map[string]string{"title": title})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[models.Record](t, w)
}

func TestCreateAndGetRecord(t *testing.T) {
	_, router := testEnv(t, "")

	rec := createRecord(t, router, "items", "Hello")
	if rec.Rank != 1 || rec.Kind != models.KindItem {
		t.Errorf("created = %+v", rec)
	}

	w := do(t, router, http.MethodGet, "/records/items/"+rec.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if got := decode[models.Record](t, w); got.Title != "Hello" {
		t.Errorf("title = %q, want Hello", got.Title)
	}

	// Wrong collection in the path.
	w = do(t, router, http.MethodGet, "/records/notes/"+rec.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get via wrong kind = %d, want 404", w.Code)
	}
}

func TestListRecords(t *testing.T) {
	_, router := testEnv(t, "")
	createRecord(t, router, "notes", "a")
	createRecord(t, router, "notes", "b")

	w := do(t, router, http.MethodGet, "/records/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	resp := decode[RecordListResponse](t, w)
	if len(resp.Records) != 2 || resp.Records[0].Title != "a" || resp.Records[1].Rank != 2 {
		t.Errorf("records = %+v", resp.Records)
	}

	w = do(t, router, http.MethodGet, "/records/items", nil)
	if body := w.Body.String(); body != "{\"records\":[]}\n" {
		t.Errorf("empty list body = %q", body)
	}
}

func TestUnknownCollection(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/records/widgets", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown collection = %d, want 404", w.Code)
	}
}

func TestCreateRecord_Invalid(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/records/items", map[string]any{
		"title": "x",
		"links": []map[string]string{{"title": "no url"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid link = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/records/items", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", rec.Code)
	}
}

func TestUpdateRecord(t *testing.T) {
	_, router := testEnv(t, "")
	rec := createRecord(t, router, "items", "v1")

	w := do(t, router, http.MethodPut, "/records/items/"+rec.ID, map[string]string{"title": "v2", "body": "b"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[models.Record](t, w); got.Title != "v2" || got.Rank != rec.Rank {
		t.Errorf("updated = %+v", got)
	}

	w = do(t, router, http.MethodPut, "/records/items/ghost", map[string]string{"title": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteRecord(t *testing.T) {
	_, router := testEnv(t, "")
	rec := createRecord(t, router, "items", "gone")

	for i := 0; i < 2; i++ {
		w := do(t, router, http.MethodDelete, "/records/items/"+rec.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("delete #%d = %d, want 204", i+1, w.Code)
		}
	}
	w := do(t, router, http.MethodGet, "/records/items/"+rec.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestRecordRoutes_CollectionMustMatch(t *testing.T) {
	svc, router := testEnv(t, "")
	item := createRecord(t, router, "items", "keep")

	for _, tc := range []struct {
		name, method, path string
		body               any
	}{
		{"update via other collection", http.MethodPut, "/records/notes/" + item.ID, map[string]string{"title": "changed"}},
		{"update via unknown collection", http.MethodPut, "/records/bogus/" + item.ID, map[string]string{"title": "changed"}},
		{"delete via other collection", http.MethodDelete, "/records/notes/" + item.ID, nil},
		{"delete via unknown collection", http.MethodDelete, "/records/bogus/" + item.ID, nil},
		{"add task via other collection", http.MethodPost, "/records/notes/" + item.ID + "/tasks", AddTaskRequest{Text: "x"}},
		{"add task via unknown collection", http.MethodPost, "/records/bogus/" + item.ID + "/tasks", AddTaskRequest{Text: "x"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, router, tc.method, tc.path, tc.body)
			if w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", w.Code)
			}
		})
	}

	got, err := svc.GetRecord(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("record was removed: %v", err)
	}
	if got.Title != "keep" || len(got.Tasks) != 0 {
		t.Errorf("record changed through a mismatched path: %+v", got)
	}
}

func TestMoveRecord(t *testing.T) {
	_, router := testEnv(t, "")
	createRecord(t, router, "items", "1")
	createRecord(t, router, "items", "2")
	three := createRecord(t, router, "items", "3")

	w := do(t, router, http.MethodPost, "/records/items/"+three.ID+"/move", MoveRequest{Direction: "up"})
	if w.Code != http.StatusOK {
		t.Fatalf("move status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[RecordListResponse](t, w)
	order := ""
	for _, r := range resp.Records {
		order += r.Title
	}
	if order != "132" {
		t.Errorf("order = %s, want 132", order)
	}

	w = do(t, router, http.MethodPost, "/records/items/"+three.ID+"/move", MoveRequest{Direction: "sideways"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad direction = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodPost, "/records/items/ghost/move", MoveRequest{Direction: "down"})
	if w.Code != http.StatusOK {
		t.Errorf("move missing = %d, want 200 no-op", w.Code)
	}
}

func TestTasks(t *testing.T) {
	_, router := testEnv(t, "")
	rec := createRecord(t, router, "notes", "shopping")

	var ids []string
	for _, text := range []string{"milk", "eggs"} {
		w := do(t, router, http.MethodPost, "/records/notes/"+rec.ID+"/tasks", AddTaskRequest{Text: text})
		if w.Code != http.StatusCreated {
			t.Fatalf("add task = %d, body = %s", w.Code, w.Body.String())
		}
		ids = append(ids, decode[models.Task](t, w).ID)
	}

	w := do(t, router, http.MethodPost, "/tasks/"+ids[1]+"/move", MoveRequest{Direction: "up"})
	if w.Code != http.StatusOK {
		t.Fatalf("move task = %d", w.Code)
	}
	tasks := decode[TaskListResponse](t, w).Tasks
	if len(tasks) != 2 || tasks[0].Text != "eggs" || tasks[0].RecordTitle != "shopping" {
		t.Errorf("tasks = %+v", tasks)
	}

	w = do(t, router, http.MethodDelete, "/tasks/"+ids[0], nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete task = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/tasks", nil)
	if got := decode[TaskListResponse](t, w).Tasks; len(got) != 1 {
		t.Errorf("tasks after delete = %+v", got)
	}

	w = do(t, router, http.MethodPost, "/records/notes/ghost/tasks", AddTaskRequest{Text: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("task on missing record = %d, want 404", w.Code)
	}
}

func TestSessions(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("open = %d", w.Code)
	}
	sess := decode[SessionResponse](t, w)
	if sess.ID == "" || sess.State.Current != nil {
		t.Fatalf("new session = %+v", sess)
	}
	base := "/sessions/" + sess.ID

	do(t, router, http.MethodPost, base+"/navigate", navigation.View{Screen: navigation.ScreenItems})
	w = do(t, router, http.MethodPost, base+"/navigate", navigation.View{Screen: navigation.ScreenEditItem, RecordID: "r1"})
	st := decode[SessionResponse](t, w).State
	if st.Current == nil || st.Current.RecordID != "r1" || len(st.History) != 1 {
		t.Errorf("after navigate = %+v", st)
	}

	w = do(t, router, http.MethodPost, base+"/back", nil)
	st = decode[SessionResponse](t, w).State
	if st.Current == nil || st.Current.Screen != navigation.ScreenItems || len(st.History) != 0 {
		t.Errorf("after back = %+v", st)
	}

	w = do(t, router, http.MethodPost, base+"/root", nil)
	st = decode[SessionResponse](t, w).State
	if st.Current != nil || len(st.History) != 0 {
		t.Errorf("after root = %+v", st)
	}

	w = do(t, router, http.MethodPost, base+"/navigate", map[string]string{"screen": "settings"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown screen = %d, want 400", w.Code)
	}

	if w := do(t, router, http.MethodDelete, base, nil); w.Code != http.StatusNoContent {
		t.Errorf("close = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, base, nil); w.Code != http.StatusNotFound {
		t.Errorf("get closed session = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	body, _ := json.Marshal(map[string]string{"title": "auth"})
	req := httptest.NewRequest(http.MethodPost, "/records/items", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	_, router := testEnv(t, "secret123")

	for name, header := range map[string]string{
		"missing": "",
		"wrong":   "Bearer wrong",
		"scheme":  "Basic secret123",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/records/items", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/records/items", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// sseStub writes headers and blocks until the client goes away.
var sseStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, "secret", sseStub)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, "tok", sseStub)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}
