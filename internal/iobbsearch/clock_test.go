package iobbsearch

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gnames/lnsdesign/internal/iocost"
	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/lns"
	"github.com/gnames/lnsdesign/pkg/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock moves one second forward on every reading.
func tickingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestSolveTimeout(t *testing.T) {
	w := workload.Generate(8, 4)
	m := iocost.New(w, nil, nil)
	s := New(false, nil)
	s.now = tickingClock()

	sp := lns.SubProblem{
		Candidates: w.Candidates,
		CostModel:  m,
		Relaxed:    design.New(w.Names()...),
		BestCost:   math.Inf(1),
		Budget:     3 * time.Second,
		Incumbent:  lns.NewIncumbent(),
	}

	res, err := s.Solve(context.Background(), sp)
	require.NoError(t, err)
	assert.Equal(t, lns.StatusTimeout, res.Status)
	assert.Nil(t, res.BestDesign, "no leaf is reached before the deadline")
	assert.Equal(t, 5*time.Second, res.UsedTime)
}
