package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/beattype/internal/rhythm"
)

func TestClientStartSession(t *testing.T) {
	var gotSession string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/session/start", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotSession = r.Header.Get("X-Session-ID")
		var req startRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.Level)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"name":"Digital Dreams","bpm":140,"rhythm_pattern":[1,0,1,1]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	lvl, err := c.StartSession(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Digital Dreams", lvl.Name)
	assert.Equal(t, 140.0, lvl.Tempo)
	assert.Equal(t, "1011", lvl.Pattern.String())
	assert.Equal(t, c.SessionID(), gotSession)
}

func TestClientStartSessionRejectsSilentPattern(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"bpm":120,"rhythm_pattern":[0,0]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).StartSession(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, rhythm.ErrConfiguration)
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestClientStatusErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).NextWord(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusInternalServerError, netErr.Status)
	assert.Equal(t, "fetch word", netErr.Op)
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, &http.Client{Timeout: time.Second}).NextWord(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClientNextWordAndSubmit(t *testing.T) {
	var submitted submitRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/game/challenge", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"word":" tempo "}`))
	})
	mux.HandleFunc("/api/v1/game/submit", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v1/session/end", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"stats":{"max_combo":7,"words_completed":3}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL, nil)
	word, err := c.NextWord(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tempo", word)

	start := time.UnixMilli(1_000)
	err = c.SubmitWordResult(ctx, WordResult{
		Word:      "ab",
		Score:     23,
		Accuracy:  90,
		Combo:     2,
		Completed: true,
		TimingPoints: []rhythm.TimingPoint{
			{Char: 'a', Beat: 0, Expected: start},
			{Char: 'b', Beat: 2, Expected: start.Add(time.Second)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", submitted.Word)
	require.Len(t, submitted.TimingPoints, 2)
	assert.Equal(t, "b", submitted.TimingPoints[1].Letter)
	assert.Equal(t, int64(2_000), submitted.TimingPoints[1].TimeMs)

	end, err := c.EndSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, EndResult{MaxCombo: 7, WordsCompleted: 3}, end)
}

func TestClientEmptyWordIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"word":"","error":"no words"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).NextWord(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "no words")
}

func TestClientReusesConnectionAcrossRequests(t *testing.T) {
	var (
		mu    sync.Mutex
		conns int
	)
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"word":"beat"}`))
	}))
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			mu.Lock()
			conns++
			mu.Unlock()
		}
	}
	srv.Start()
	defer srv.Close()

	transport := &http.Transport{}
	defer transport.CloseIdleConnections()
	c := NewClient(srv.URL, &http.Client{Transport: transport})
	for i := 0; i < 5; i++ {
		word, err := c.NextWord(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "beat", word)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, conns, "response bodies must be drained and closed")
}
