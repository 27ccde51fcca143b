package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
)

type countingSource struct {
	menu  domain.Menu
	err   error
	calls int
}

func (s *countingSource) Snapshot(context.Context) (domain.Menu, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.menu, nil
}

func sampleMenu() domain.Menu {
	return domain.Menu{{ID: "m1", Name: "Cheeseburger", PriceCents: 899, Available: true}}
}

func TestCacheServesFromMemoryWithinTTL(t *testing.T) {
	src := &countingSource{menu: sampleMenu()}
	c := NewCache(src, time.Minute)

	for i := 0; i < 3; i++ {
		m, err := c.Snapshot(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(m) != 1 {
			t.Fatalf("menu = %v", m)
		}
	}
	if src.calls != 1 {
		t.Errorf("source fetched %d times, want 1", src.calls)
	}
}

func TestCacheRefetchesAfterTTL(t *testing.T) {
	src := &countingSource{menu: sampleMenu()}
	c := NewCache(src, time.Minute)

	clock := time.Now()
	c.now = func() time.Time { return clock }

	if _, err := c.Snapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock = clock.Add(61 * time.Second)
	if _, err := c.Snapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source fetched %d times, want 2", src.calls)
	}
}

func TestCacheFetchFailurePropagates(t *testing.T) {
	src := &countingSource{err: errors.New("menu service down")}
	c := NewCache(src, time.Minute)

	if _, err := c.Snapshot(context.Background()); err == nil {
		t.Fatal("expected fetch error with no prior snapshot")
	}
}

func TestCacheClearForcesRefetch(t *testing.T) {
	src := &countingSource{menu: sampleMenu()}
	c := NewCache(src, time.Hour)

	if _, err := c.Snapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if _, err := c.Snapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source fetched %d times, want 2", src.calls)
	}
}

func TestCacheRefreshBypassesTTL(t *testing.T) {
	src := &countingSource{menu: sampleMenu()}
	c := NewCache(src, time.Hour)

	if _, err := c.Snapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source fetched %d times, want 2", src.calls)
	}
}
