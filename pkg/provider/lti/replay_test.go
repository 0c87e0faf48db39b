package lti

import (
	"testing"
	"time"
)

func TestInMemoryReplayFirstUse(t *testing.T) {
	c := NewInMemoryReplay(0)
	if !c.Remember("demo|1|nonce-a", time.Minute) {
		t.Fatal("first use should be accepted")
	}
	if c.Remember("demo|1|nonce-a", time.Minute) {
		t.Fatal("second use should be rejected")
	}
	if !c.Remember("demo|1|nonce-b", time.Minute) {
		t.Fatal("different nonce should be accepted")
	}
}

func TestInMemoryReplayExpiry(t *testing.T) {
	c := NewInMemoryReplay(0)
	// A non-positive TTL expires immediately, so reuse is allowed.
	if !c.Remember("demo|1|nonce-a", -time.Second) {
		t.Fatal("first use should be accepted")
	}
	if !c.Remember("demo|1|nonce-a", -time.Second) {
		t.Fatal("expired entry should be reusable")
	}
}

func TestInMemoryReplayEmptyValue(t *testing.T) {
	c := NewInMemoryReplay(0)
	if c.Remember("  ", time.Minute) {
		t.Fatal("blank values are never accepted")
	}
}

func TestNoopReplay(t *testing.T) {
	var c NoopReplay
	for i := 0; i < 3; i++ {
		if !c.Remember("same-value", time.Minute) {
			t.Fatal("noop cache must accept everything")
		}
	}
}
