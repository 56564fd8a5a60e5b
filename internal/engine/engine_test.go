package engine

import (
	"testing"

	"go.uber.org/zap"

	"github.com/synoptic-go/synoptic/internal/config"
)

func TestNewSeedsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.RandomSeed = 7
	ctx := New(cfg, zap.NewNop())
	if ctx.Rand == nil {
		t.Fatal("expected New to seed a *rand.Rand")
	}
}

func TestCancelIsCooperative(t *testing.T) {
	ctx := New(config.Default(), zap.NewNop())
	if ctx.Cancelled() {
		t.Fatal("expected a fresh context not to be cancelled")
	}
	ctx.Cancel()
	if !ctx.Cancelled() {
		t.Fatal("expected Cancel to be observed by Cancelled")
	}
}

func TestShuffleIsDeterministicGivenSeed(t *testing.T) {
	cfg := config.Default()
	cfg.RandomSeed = 123

	run := func() []int {
		ctx := New(cfg, zap.NewNop())
		s := []int{1, 2, 3, 4, 5, 6, 7, 8}
		Shuffle(ctx, s)
		return s
	}

	a := run()
	b := run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected two shuffles with the same seed to agree, got %v vs %v", a, b)
		}
	}
}
