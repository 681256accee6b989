package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/metrics"
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/repository"
)

type countingCatalog struct {
	loads atomic.Int32
	fail  atomic.Bool
}

func (c *countingCatalog) Load() (*repository.Catalog, error) {
	c.loads.Add(1)
	if c.fail.Load() {
		return nil, &model.DataUnavailableError{Path: "series.csv", Err: errors.New("missing")}
	}
	return repository.NewCatalog(fixtureRows()), nil
}

func TestRefreshServiceRunOnce(t *testing.T) {
	src := &countingCatalog{}
	s := NewRefreshService(src, time.Hour, logger.Nop())

	if n := s.RunOnce(); n != len(fixtureRows()) {
		t.Fatalf("rows: want=%d got=%d", len(fixtureRows()), n)
	}
	if got := testutil.ToFloat64(metrics.CatalogRows); got != float64(len(fixtureRows())) {
		t.Fatalf("gauge: got=%v", got)
	}

	src.fail.Store(true)
	if n := s.RunOnce(); n != 0 {
		t.Fatalf("unavailable rows: want=0 got=%d", n)
	}
	if got := testutil.ToFloat64(metrics.CatalogRows); got != 0 {
		t.Fatalf("gauge after failure: got=%v", got)
	}
}

func TestRefreshServiceTicks(t *testing.T) {
	src := &countingCatalog{}
	s := NewRefreshService(src, 10*time.Millisecond, logger.Nop())
	s.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for src.loads.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	if n := src.loads.Load(); n < 3 {
		t.Fatalf("loads: want>=3 got=%d", n)
	}

	after := src.loads.Load()
	time.Sleep(30 * time.Millisecond)
	if src.loads.Load() != after {
		t.Fatalf("service kept running after Stop")
	}
}
