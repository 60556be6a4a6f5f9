package ratelimit

import (
	"testing"
	"time"
)

func TestAllowBurst(t *testing.T) {
	l := New()

	if !l.Allow("k", 2, 1) {
		t.Fatalf("first request should pass")
	}
	if !l.Allow("k", 2, 1) {
		t.Fatalf("second request should pass (burst)")
	}
	if l.Allow("k", 2, 1) {
		t.Fatalf("third request should be limited")
	}
}

func TestRefills(t *testing.T) {
	l := New()

	if !l.Allow("k", 1, 100) {
		t.Fatalf("first request should pass")
	}
	if l.Allow("k", 1, 100) {
		t.Fatalf("bucket should be empty")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Allow("k", 1, 100) {
		t.Fatalf("bucket should have refilled")
	}
}

func TestKeysIndependent(t *testing.T) {
	l := New()

	if !l.Allow("a", 1, 0) {
		t.Fatalf("key a should pass")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("key b should pass")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("key a should be limited")
	}
}
