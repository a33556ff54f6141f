package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recruitdesk/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecordStore(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects/talent/tables/candidates/records" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"records":[
			{"id":"rec2","name":"Grace Hopper","created_at":"2026-03-01"},
			{"id":"rec1","name":"Ada Lovelace","created_at":"2026-01-10","messages":["Recruiter - mail: Hello Ada"]}
		],"total":2}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, recordStoreURL string, port int) string {
	t.Helper()
	dir := t.TempDir()
	cfg := map[string]any{
		"recordStore": map[string]any{"api_base_url": recordStoreURL, "project": "talent"},
		"database":    map[string]any{"path": filepath.Join(dir, "recruitdesk.db")},
		"server":      map[string]any{"port": port},
		"log_level":   "warn",
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(ctx context.Context, args ...string) (string, error) {
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(context.Background(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "recruitdesk dev")
	assert.Contains(t, out, "Git Commit: unknown")
}

func TestConversationsCommand(t *testing.T) {
	srv := newRecordStore(t)
	path := writeTestConfig(t, srv.URL, 0)

	out, err := execute(context.Background(), "--config", path, "conversations", "--page-size", "5")
	require.NoError(t, err)

	var page service.ConversationsPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 2, page.Stats.Total)
	assert.Equal(t, 1, page.Stats.WithMessages)
	require.Len(t, page.Conversations, 2)
	assert.Equal(t, "rec1", page.Conversations[0].CandidateID, "conversations with messages sort first")
	assert.Equal(t, 5, page.Pagination.PageSize)
}

func TestConversationsCommand_UpstreamDown(t *testing.T) {
	srv := newRecordStore(t)
	path := writeTestConfig(t, srv.URL+"/missing", 0)

	_, err := execute(context.Background(), "--config", path, "conversations")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to aggregate conversations")
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	_, err := execute(context.Background(), "--config", filepath.Join(t.TempDir(), "missing.json"), "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestServeCommand_GracefulShutdown(t *testing.T) {
	srv := newRecordStore(t)
	port := freePort(t)
	path := writeTestConfig(t, srv.URL, port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := execute(ctx, "--config", path, "serve")
		errCh <- err
	}()

	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/conversations", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Session-ID"))

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not shut down")
	}
}

func TestApplyLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    logrus.Level
	}{
		{"", false, logrus.InfoLevel},
		{"warn", false, logrus.WarnLevel},
		{"debug", false, logrus.InfoLevel},
		{"bogus", false, logrus.InfoLevel},
		{"warn", true, logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(io.Discard)
			applyLogLevel(logger, tt.level, tt.verbose)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}
