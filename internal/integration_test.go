package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagearbor/ai-skill-eval-kit/internal/aggregate"
	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/server"
)

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// freeAddr finds a loopback port that is free right now.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// startServer runs a real listener until the test ends.
func startServer(t *testing.T) string {
	t.Helper()
	addr := freeAddr(t)
	srv := server.New(server.Options{
		Source: config.NewSource(config.BuiltinProvider{Profile: "standard"}, logging.Nop()),
		Logger: logging.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, addr) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	return base
}

func postJSON(t *testing.T, url string, body any, wantStatus int) map[string]any {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, wantStatus, resp.StatusCode, "body: %v", out)
	return out
}

func TestIntegrationPeerValidationToAggregate(t *testing.T) {
	skipUnlessIntegration(t)
	base := startServer(t)

	levels := map[string]int{"study": 3, "copy": 2, "output": 4, "research": 1, "ethical": 3}
	people := []struct {
		name   string
		role   string
		period string
	}{
		{"Ada", "Developer", "2025-Q1"},
		{"Lin", "Researcher", "2025-Q1"},
		{"Sam", "Leader", "2025-Q2"},
	}

	root := t.TempDir()
	for _, p := range people {
		req := postJSON(t, base+"/v1/peer/requests", map[string]any{
			"assessee": map[string]any{"name": p.name, "role": p.role},
			"levels":   levels,
			"baseUrl":  "https://aiq.example.com/validate.html",
		}, http.StatusCreated)

		decisions := map[string]any{}
		for _, d := range rubric.Dimensions() {
			decisions[string(d)] = map[string]any{"confirmed": true}
		}
		decisions["research"] = map[string]any{"confirmed": false, "level": 2, "reason": "co-authored an eval paper"}

		done := postJSON(t, base+"/v1/peer/validations", map[string]any{
			"link":      req["link"],
			"validator": map[string]any{"name": "Grace", "relationship": "peer"},
			"decisions": decisions,
		}, http.StatusCreated)
		require.Equal(t, true, done["schema"].(map[string]any)["valid"])

		data, err := json.Marshal(done["report"])
		require.NoError(t, err)
		dir := filepath.Join(root, p.period)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, p.name+".json"), data, 0o644))
	}

	c, err := aggregate.Collect([]string{filepath.Join(root, "2025-Q1"), filepath.Join(root, "2025-Q2")}, logging.Nop())
	require.NoError(t, err)
	require.Len(t, c.Entries, 3)
	assert.Empty(t, c.Skipped)

	stats := aggregate.Compute(c.Entries, time.Now())
	assert.Equal(t, map[string]int{"2": 3}, stats.ByLevel)
	assert.Equal(t, map[string]int{"Developer": 1, "Researcher": 1, "Leader": 1}, stats.ByRole)
	assert.Equal(t, 2.0, stats.DimensionAverages[rubric.Research])
	assert.Equal(t, 2, stats.PeriodTrends["2025-Q1"].Count)
	assert.Equal(t, []string{"2025-Q1", "2025-Q2"}, stats.Periods)

	w, err := aggregate.WriteFiles(filepath.Join(root, "out"), c.Entries, stats)
	require.NoError(t, err)
	for _, f := range []string{w.Summary, w.Stats, w.Combined} {
		_, err := os.Stat(f)
		assert.NoError(t, err)
	}
}

func TestIntegrationScoreMatchesReport(t *testing.T) {
	skipUnlessIntegration(t)
	base := startServer(t)

	levels := map[string]int{"study": 3, "copy": 2, "output": 4, "research": 1, "ethical": 3}
	for _, tier := range []int{1, 2, 3} {
		score := postJSON(t, base+"/v1/score", map[string]any{"levels": levels, "assessmentLevel": tier}, http.StatusOK)
		combined := score["combinedScore"].(map[string]any)

		want := map[int]float64{1: 34, 2: 45, 3: 56}[tier]
		assert.Equal(t, want, combined["normalizedScore"], "tier %d", tier)
	}
}
