package iometrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gnames/lnsdesign/internal/iometrics"
	"github.com/gnames/lnsdesign/pkg/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := iometrics.New()
	for range 3 {
		m.Observe(message.SearchProgress{
			WorkerID:     "w1",
			RelaxedNames: []string{"a", "b"},
			SubBudget:    35 * time.Second,
			StallTime:    2 * time.Second,
		})
	}
	m.Observe(message.SearchProgress{WorkerID: "w2"})
	m.Observe(message.ExecuteCompleted{WorkerID: "w1"})
	m.Observe(message.Empty{})
	m.SetBestCost(12.5)

	n, err := testutil.GatherAndCount(m.Registry(),
		"lnsdesign_search_iterations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per worker")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `lnsdesign_search_iterations_total{worker="w1"} 3`)
	assert.Contains(t, text, `lnsdesign_search_sub_budget_seconds{worker="w1"} 35`)
	assert.Contains(t, text, `lnsdesign_search_relaxed_collections{worker="w1"} 2`)
	assert.Contains(t, text, "lnsdesign_search_workers_completed_total 1")
	assert.Contains(t, text, "lnsdesign_search_best_cost 12.5")
}
