package model

import "testing"

func TestEventTypeEqual(t *testing.T) {
	a := NewEventType("recv")
	b := NewEventType("recv")
	if !a.Equal(b) {
		t.Fatal("expected two plain event types with the same label to be equal")
	}

	c1 := NewDistributedEventType("recv", "p1")
	c2 := NewDistributedEventType("recv", "p2")
	if c1.Equal(c2) {
		t.Fatal("expected distributed event types on different pids to differ")
	}

	if a.Equal(c1) {
		t.Fatal("expected a plain type to differ from a distinct-pid type sharing its label")
	}
}

func TestEventTypeIsSpecial(t *testing.T) {
	if !Initial.IsSpecial() || !Terminal.IsSpecial() {
		t.Fatal("expected INITIAL and TERMINAL to be special")
	}
	if NewEventType("recv").IsSpecial() {
		t.Fatal("expected an ordinary event type not to be special")
	}
}
