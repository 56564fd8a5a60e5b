package model

import "testing"

func TestCounterTimeOrdering(t *testing.T) {
	if !CounterTime(1).Less(CounterTime(2)) {
		t.Fatal("expected 1 < 2")
	}
	if CounterTime(2).Less(CounterTime(1)) {
		t.Fatal("expected 2 not less than 1")
	}
	if got := CounterTime(1).IncrBy(CounterTime(4)); got != CounterTime(5) {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestVectorTimeOrdering(t *testing.T) {
	a := VectorTime{1, 0}
	b := VectorTime{1, 1}
	if !a.Less(b) {
		t.Fatal("expected [1,0] < [1,1]")
	}
	if b.Less(a) {
		t.Fatal("expected [1,1] not less than [1,0]")
	}
	c := VectorTime{0, 1}
	if a.Less(c) || c.Less(a) {
		t.Fatal("expected [1,0] and [0,1] to be incomparable")
	}
}

func TestVectorTimeIncrBy(t *testing.T) {
	a := VectorTime{1, 2}
	delta := VectorTime{3, 4}
	got := a.IncrBy(delta).(VectorTime)
	want := VectorTime{4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
