package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/mtaverne/corkboard/internal/board"
	"github.com/mtaverne/corkboard/internal/testutil"
)

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func wantError(t *testing.T, raw []byte, msg string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal error body %q: %v", raw, err)
	}
	if body.Error != msg {
		t.Errorf("error = %q, want %q", body.Error, msg)
	}
}

func TestBoardLifecycle(t *testing.T) {
	srv, _ := testutil.TestServer(t)

	notes := []board.Note{
		{ID: "n1", Text: "hello", Color: board.DefaultColor, X: 10, Y: 20},
		{ID: "n2", Text: "world", Color: "pink", X: 30, Y: 40},
	}

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/", notes)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, raw)
	}
	var created board.Board
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("unmarshal created board: %v", err)
	}
	if !board.ValidID(created.ID) {
		t.Fatalf("created id %q does not match pattern", created.ID)
	}
	if len(created.Notes) != 2 {
		t.Fatalf("created with %d notes, want 2", len(created.Notes))
	}

	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/api/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, body %s", resp.StatusCode, raw)
	}
	var fetched board.Board
	if err := json.Unmarshal(raw, &fetched); err != nil {
		t.Fatalf("unmarshal fetched board: %v", err)
	}
	if fetched.Notes[0] != notes[0] || fetched.Notes[1] != notes[1] {
		t.Errorf("fetched notes = %+v, want %+v", fetched.Notes, notes)
	}
	if fetched.LastAccessed.Before(created.LastAccessed) {
		t.Error("lastAccessed went backwards across a read")
	}

	replacement := []board.Note{{ID: "n3", Text: "only", Color: "blue"}}
	resp, raw = doJSON(t, http.MethodPut, srv.URL+"/api/"+created.ID, replacement)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace status = %d, body %s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, http.MethodDelete, srv.URL+"/api/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", resp.StatusCode, raw)
	}
	var removed struct {
		Message    string `json:"message"`
		ID         string `json:"id"`
		NotesCount int    `json:"notesCount"`
	}
	if err := json.Unmarshal(raw, &removed); err != nil {
		t.Fatalf("unmarshal remove response: %v", err)
	}
	if removed.Message != "Board deleted" || removed.ID != created.ID || removed.NotesCount != 1 {
		t.Errorf("remove response = %+v", removed)
	}

	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/api/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", resp.StatusCode)
	}
	wantError(t, raw, "Board not found")

	resp, raw = doJSON(t, http.MethodDelete, srv.URL+"/api/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d", resp.StatusCode)
	}
	wantError(t, raw, "Board not found")
}

func TestCreateRejectsBadPayloads(t *testing.T) {
	srv, _ := testutil.TestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"empty array", `[]`},
		{"object", `{"notes":[]}`},
		{"scalar", `42`},
		{"garbage", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()
			raw, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
			}
			wantError(t, raw, "notes must be a non-empty array")
		})
	}
}

func TestReplaceRejectsEmptyArray(t *testing.T) {
	srv, s := testutil.TestServer(t)

	rec, err := s.Create([]board.Note{{ID: "n1", Text: "keep me"}})
	if err != nil {
		t.Fatalf("seed board: %v", err)
	}

	resp, raw := doJSON(t, http.MethodPut, srv.URL+"/api/"+rec.ID, []board.Note{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}
	wantError(t, raw, "notes must be a non-empty array")

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("get after rejected replace: %v", err)
	}
	if len(got.Notes) != 1 || got.Notes[0].Text != "keep me" {
		t.Errorf("board changed after rejected replace: %+v", got.Notes)
	}
}

func TestMalformedBoardID(t *testing.T) {
	srv, _ := testutil.TestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp, raw := doJSON(t, method, srv.URL+"/api/short", nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s status = %d, body %s", method, resp.StatusCode, raw)
			continue
		}
		wantError(t, raw, "Invalid board id")
	}
}

func TestUnknownWellFormedID(t *testing.T) {
	srv, _ := testutil.TestServer(t)

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/zzzzzzzz", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}
	wantError(t, raw, "Board not found")
}

func TestHealth(t *testing.T) {
	srv, s := testutil.TestServer(t)

	for i := range 3 {
		if _, err := s.Create([]board.Note{{ID: fmt.Sprintf("n%d", i), Text: "x"}}); err != nil {
			t.Fatalf("seed board: %v", err)
		}
	}

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}
	var health struct {
		Status           string `json:"status"`
		Boards           int    `json:"boards"`
		Notes            int    `json:"notes"`
		RecentlyAccessed []any  `json:"recentlyAccessed"`
	}
	if err := json.Unmarshal(raw, &health); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if health.Status != "ok" || health.Boards != 3 || health.Notes != 3 {
		t.Errorf("health = %+v", health)
	}
	if len(health.RecentlyAccessed) != 3 {
		t.Errorf("recentlyAccessed has %d entries, want 3", len(health.RecentlyAccessed))
	}
}

func TestShellRoutes(t *testing.T) {
	srv, _ := testutil.TestServer(t)

	for _, path := range []string{"/", "/abcd1234"} {
		resp, raw := doJSON(t, http.MethodGet, srv.URL+path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d", path, resp.StatusCode)
			continue
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("GET %s content-type = %q", path, ct)
		}
		if !bytes.Contains(raw, []byte("<html")) {
			t.Errorf("GET %s did not serve the app shell", path)
		}
	}
}

func TestUnmatchedRoutes(t *testing.T) {
	srv, _ := testutil.TestServer(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/nope"},
		{http.MethodPatch, "/api/abcd1234"},
		{http.MethodPost, "/api/abcd1234"},
	}
	for _, tc := range cases {
		resp, raw := doJSON(t, tc.method, srv.URL+tc.path, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s status = %d", tc.method, tc.path, resp.StatusCode)
			continue
		}
		wantError(t, raw, "Endpoint not found")
	}
}
