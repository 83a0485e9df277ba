package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/envmerge/pkg/config"
	"github.com/arthur-debert/envmerge/pkg/core"
	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/filesystem"
	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/paths"
	"github.com/arthur-debert/envmerge/pkg/serialize"
	"github.com/arthur-debert/envmerge/pkg/types"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	t.Setenv(paths.EnvStateDir, "/state")
	t.Setenv(paths.EnvRoot, "")

	p, err := paths.New("/contributors")
	require.NoError(t, err)

	cfg := config.Default()
	session, err := core.NewSession(cfg, filesystem.NewMemory(), core.WithPaths(p), core.WithGOOS("linux"))
	require.NoError(t, err)

	s := New(session, cfg.Server)
	t.Cleanup(s.Close)
	s.environ = func() []string { return []string{"HOME=/home/me", "VAR=base"} }

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestCollectionsLifecycle(t *testing.T) {
	s, ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/collections", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)

	resp, _ = do(t, http.MethodPut, ts.URL+"/collections/ext1",
		`{"persistent": false, "mutators": [["VAR", {"type": "append", "value": "1"}]]}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, ts.URL+"/collections/ext2",
		`{"persistent": true, "mutators": [["VAR", {"type": 2, "value": "2"}]]}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodGet, ts.URL+"/collections", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	contributions, err := serialize.UnmarshalRegistry([]byte(body))
	require.NoError(t, err)
	require.Len(t, contributions, 2)
	assert.Equal(t, "ext1", contributions[0].ID)
	assert.True(t, contributions[1].Collection.Persistent)

	resp, body = do(t, http.MethodGet, ts.URL+"/collections/ext2", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"persistent":true,"mutators":[["VAR",{"type":"append","value":"2"}]]}`, body)

	resp, body = do(t, http.MethodGet, ts.URL+"/merged", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []merge.Entry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "ext2", entries[0].Mutators[0].ContributorID)

	saved, err := s.session.Store.LoadCollections()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "ext2", saved[0].ID)

	resp, _ = do(t, http.MethodDelete, ts.URL+"/collections/ext2", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodDelete, ts.URL+"/collections/ext2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"code":"NOT_FOUND"`)

	resp, _ = do(t, http.MethodGet, ts.URL+"/collections/ext2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPutCollection_Invalid(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodPut, ts.URL+"/collections/ext",
		`{"mutators": [["VAR", {"type": "remove", "value": "1"}]]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `"code":"INVALID_INPUT"`)

	resp, _ = do(t, http.MethodPut, ts.URL+"/collections/..", `{}`)
	assert.NotEqual(t, http.StatusNoContent, resp.StatusCode)
}

func TestApply(t *testing.T) {
	_, ts := newTestServer(t)

	do(t, http.MethodPut, ts.URL+"/collections/ext1", `{"mutators": [["VAR", {"type": "append", "value": "1"}]]}`)
	do(t, http.MethodPut, ts.URL+"/collections/ext2", `{"mutators": [["VAR", {"type": "append", "value": "2"}]]}`)

	t.Run("explicit environment", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, ts.URL+"/apply", `{"env": {"OTHER": "x"}}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out ApplyResponse
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		assert.Equal(t, map[string]string{"OTHER": "x", "VAR": "21"}, out.Env)
		assert.Equal(t, []string{"VAR"}, out.Changed)
	})

	t.Run("inherit server environment", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, ts.URL+"/apply", `{"inherit": true, "env": {"HOME": "/override"}}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out ApplyResponse
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		assert.Equal(t, map[string]string{"HOME": "/override", "VAR": "base21"}, out.Env)
	})

	t.Run("empty body", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, ts.URL+"/apply", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"env":{"VAR":"21"},"changed":["VAR"]}`, body)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, ts.URL+"/apply", `{"env": [`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestMetrics(t *testing.T) {
	s, ts := newTestServer(t)

	do(t, http.MethodPut, ts.URL+"/collections/ext1", `{"mutators": [["VAR", {"type": "append", "value": "1"}]]}`)
	do(t, http.MethodPut, ts.URL+"/collections/ext2", `{"mutators": [["VAR", {"type": "append", "value": "2"}], ["EDITOR", {"type": "replace", "value": "vim"}]]}`)
	do(t, http.MethodPost, ts.URL+"/apply", `{}`)

	assert.Equal(t, 2.0, promtest.ToFloat64(s.metrics.contributors))
	assert.Equal(t, 2.0, promtest.ToFloat64(s.metrics.variables))
	assert.Equal(t, 3.0, promtest.ToFloat64(s.metrics.mutators))
	assert.Equal(t, 1.0, promtest.ToFloat64(s.metrics.applies))

	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "envmerge_merged_variables 2")
	assert.Contains(t, body, `envmerge_http_requests_total{method="PUT",route="/collections/{id}",status="204"} 2`)

	do(t, http.MethodDelete, ts.URL+"/collections/ext2", "")
	assert.Equal(t, 1.0, promtest.ToFloat64(s.metrics.contributors))
	assert.Equal(t, 1.0, promtest.ToFloat64(s.metrics.variables))
}

func TestWriteError_StatusByCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", errors.New(errors.ErrInvalidInput, "bad"), http.StatusBadRequest},
		{"invalid mutator", errors.New(errors.ErrMutatorInvalid, "bad"), http.StatusBadRequest},
		{"not found", errors.New(errors.ErrNotFound, "missing"), http.StatusNotFound},
		{"internal", errors.New(errors.ErrStateSave, "disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, errors.GetErrorCode(tt.err), body.Code)
		})
	}
}

func TestMetrics_GaugesFollowMergedSnapshot(t *testing.T) {
	m := newMetrics()

	merged := merge.Merge([]types.Contribution{
		{ID: "a", Collection: types.NewCollection(false, types.Entry{Variable: "PATH", Mutator: types.Append(":a")})},
		{ID: "empty", Collection: types.NewCollection(false)},
		{ID: "b", Collection: types.NewCollection(false, types.Entry{Variable: "PATH", Mutator: types.Append(":b")})},
	}, false)
	m.observeMerged(merged)

	assert.Equal(t, 3.0, promtest.ToFloat64(m.contributors))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.variables))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.mutators))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.recomputes))

	m.observeMerged(merge.Empty(false))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.contributors))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.mutators))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
