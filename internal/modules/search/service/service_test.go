package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"octofit.app/tracker/internal/entity"
)

type fakeMeili struct {
	mu       sync.Mutex
	requests map[string]string
}

func newFakeMeili(t *testing.T) (*fakeMeili, *httptest.Server) {
	f := &fakeMeili{requests: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests[r.Method+" "+r.URL.Path] = string(body)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/search") {
			_, _ = w.Write([]byte(`{"hits":[{"id":"1","house_id":"h","description":"Plank for 1 minute","xp":10}],"query":"plank"}`))
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"taskUid":1,"indexUid":"challenges","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2024-01-01T00:00:00Z"}`))
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeMeili) body(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.requests[key]
	return b, ok
}

func TestDisabledServiceIsANoop(t *testing.T) {
	svc := NewSearchService(nil)
	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.IndexChallenges([]entity.HouseChallenge{{Description: "x"}}))
	assert.NoError(t, svc.DeleteChallenge("1"))

	hits, err := svc.SearchChallenges("plank", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexAndSearchChallenges(t *testing.T) {
	fake, srv := newFakeMeili(t)
	svc := NewSearchService(meilisearch.New(srv.URL))
	require.True(t, svc.Enabled())

	ch := entity.HouseChallenge{ID: uuid.New(), HouseID: uuid.New(), Description: "<b>Plank</b>  for 1 minute", XP: 10}
	require.NoError(t, svc.IndexChallenges([]entity.HouseChallenge{ch}))

	body, ok := fake.body("POST /indexes/challenges/documents")
	require.True(t, ok)
	var docs []ChallengeDocument
	require.NoError(t, json.Unmarshal([]byte(body), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Plank for 1 minute", docs[0].Description)
	assert.Equal(t, ch.ID.String(), docs[0].ID)

	hits, err := svc.SearchChallenges("plank", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Plank for 1 minute", hits[0].Description)
}
