package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/stylelens/internal/db"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func TestLogRunAndRecent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, kind := range []string{"rendered", "api_error", "connection_error"} {
		require.NoError(t, s.LogRun(ctx, Run{
			SessionID:  "s1",
			PageURL:    "https://example.com",
			Kind:       kind,
			HTMLChars:  100 * (i + 1),
			DurationMS: 250,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "connection_error", runs[0].Kind)
	assert.Equal(t, "api_error", runs[1].Kind)
	assert.Equal(t, base.Add(2*time.Minute), runs[0].CreatedAt)
	assert.Equal(t, int64(250), runs[0].DurationMS)
	assert.NotEmpty(t, runs[0].ID)
}

func TestFollowUps(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.LogFollowUp(ctx, FollowUp{SessionID: "s1", Question: "first", Kind: "answered"}))
	require.NoError(t, s.LogFollowUp(ctx, FollowUp{SessionID: "s2", Question: "other", Kind: "answered"}))

	got, err := s.FollowUps(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Question)
}

func TestFollowUpKeepsCreatedAt(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.LogFollowUp(ctx, FollowUp{SessionID: "s1", Question: "q", Kind: "answer", CreatedAt: at}))

	got, err := s.FollowUps(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, at, got[0].CreatedAt)
}

func TestRecentReadsColumnDefault(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Minute)

	_, err := s.db.ExecContext(ctx, `INSERT INTO suggestion_runs (id, session_id, kind) VALUES ('r1', 's1', 'rendered')`)
	require.NoError(t, err)

	runs, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].CreatedAt.After(before), "got %v", runs[0].CreatedAt)
}

func TestRecentRejectsUnreadableTimestamp(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO suggestion_runs (id, session_id, kind, created_at) VALUES ('r1', 's1', 'rendered', 'yesterday')`)
	require.NoError(t, err)

	_, err = s.Recent(ctx, 1)
	assert.ErrorContains(t, err, "created_at")
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, v := range []any{
		"2026-03-01 12:00:00.000000",
		"2026-03-01 12:00:00",
		"2026-03-01T12:00:00Z",
		[]byte("2026-03-01 12:00:00.000"),
		want.In(time.FixedZone("CET", 3600)),
	} {
		got, err := parseTime(v)
		require.NoError(t, err, "%v", v)
		assert.True(t, want.Equal(got), "%v parsed as %v", v, got)
	}

	_, err := parseTime(int64(1))
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.LogRun(context.Background(), Run{SessionID: "s1", Kind: "rendered"}))

	r := chi.NewRouter()
	RegisterRoutes(r, s)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Runs []Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "rendered", body.Runs[0].Kind)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/nobody/followups", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"followups":[]}`, rec.Body.String())
}
