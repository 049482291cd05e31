package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wordlebot/wordlebot/internal/config"
	"github.com/wordlebot/wordlebot/internal/db"
)

type fakeHistory struct {
	games     []db.GameRecord
	lastLimit int
	err       error
}

func (f *fakeHistory) ListGames(limit int) ([]db.GameRecord, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.games) {
		return f.games[:limit], nil
	}
	return f.games, nil
}

func (f *fakeHistory) GetGame(id int64) (*db.GameRecord, error) {
	for _, g := range f.games {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, db.ErrGameNotFound
}

func (f *fakeHistory) Stats() (*db.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &db.Stats{Total: len(f.games), Won: len(f.games), WinRate: 1}, nil
}

func newTestServer(h *fakeHistory) http.Handler {
	gin.SetMode(gin.TestMode)
	s := &Server{cfg: config.APIConfig{}, history: h}
	s.router = s.buildRouter()
	return s.Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func sampleGames() []db.GameRecord {
	now := time.UnixMilli(1_700_000_000_000)
	return []db.GameRecord{
		{ID: 2, Username: "user", Outcome: "won", Flag: "F2", StartedAt: now, GuessCount: 3},
		{ID: 1, Username: "user", Outcome: "error", Error: "boom", StartedAt: now.Add(-time.Hour)},
	}
}

func TestPing(t *testing.T) {
	rec := get(t, newTestServer(&fakeHistory{}), "/api/public/ping")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" || body["version"] != config.AppVersion {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestListGames(t *testing.T) {
	h := &fakeHistory{games: sampleGames()}
	srv := newTestServer(h)

	rec := get(t, srv, "/api/games?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Games []db.GameRecord `json:"games"`
		Count int             `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || body.Games[0].ID != 2 {
		t.Errorf("body = %+v", body)
	}

	get(t, srv, "/api/games")
	if h.lastLimit != defaultListLimit {
		t.Errorf("default limit = %d, want %d", h.lastLimit, defaultListLimit)
	}

	get(t, srv, "/api/games?limit=100000")
	if h.lastLimit != maxListLimit {
		t.Errorf("capped limit = %d, want %d", h.lastLimit, maxListLimit)
	}
}

func TestListGamesEmpty(t *testing.T) {
	rec := get(t, newTestServer(&fakeHistory{}), "/api/games")
	var body map[string]json.RawMessage
	json.Unmarshal(rec.Body.Bytes(), &body)
	if string(body["games"]) != "[]" {
		t.Errorf("games = %s, want []", body["games"])
	}
}

func TestListGamesBadLimit(t *testing.T) {
	for _, q := range []string{"abc", "0", "-3"} {
		rec := get(t, newTestServer(&fakeHistory{}), "/api/games?limit="+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestGetGame(t *testing.T) {
	srv := newTestServer(&fakeHistory{games: sampleGames()})

	rec := get(t, srv, "/api/games/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var g db.GameRecord
	json.Unmarshal(rec.Body.Bytes(), &g)
	if g.Flag != "F2" {
		t.Errorf("game = %+v", g)
	}

	if rec := get(t, srv, "/api/games/99"); rec.Code != http.StatusNotFound {
		t.Errorf("missing game status = %d, want 404", rec.Code)
	}
	if rec := get(t, srv, "/api/games/abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestStats(t *testing.T) {
	rec := get(t, newTestServer(&fakeHistory{games: sampleGames()}), "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var s db.Stats
	json.Unmarshal(rec.Body.Bytes(), &s)
	if s.Total != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestStoreFailure(t *testing.T) {
	srv := newTestServer(&fakeHistory{err: errors.New("disk gone")})
	for _, path := range []string{"/api/games", "/api/stats"} {
		if rec := get(t, srv, path); rec.Code != http.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", path, rec.Code)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	if rec := get(t, newTestServer(&fakeHistory{}), "/api/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
