package classify

import (
	"testing"
	"time"
)

func newTestRegistry(ids []string) (*Registry, *time.Time) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(ids, 60, nil)
	r.now = func() time.Time { return clock }
	return r, &clock
}

func TestRegistryCooldownExpiry(t *testing.T) {
	t.Parallel()

	r, clock := newTestRegistry([]string{"KEY_A"})

	if !r.IsAvailable("KEY_A") {
		t.Fatal("fresh credential should be available")
	}

	r.SetCooldown("KEY_A", 5)
	if r.IsAvailable("KEY_A") {
		t.Fatal("credential should be parked")
	}
	if wait := r.WaitTime("KEY_A"); wait <= 0 || wait > 6 {
		t.Fatalf("WaitTime = %d, want within (0,6]", wait)
	}

	*clock = clock.Add(4 * time.Second)
	if r.IsAvailable("KEY_A") {
		t.Fatal("credential freed before the cooldown elapsed")
	}

	*clock = clock.Add(1 * time.Second)
	if !r.IsAvailable("KEY_A") {
		t.Fatal("credential should free up the instant the cooldown elapses")
	}
	if wait := r.WaitTime("KEY_A"); wait != 0 {
		t.Fatalf("WaitTime after expiry = %d, want 0", wait)
	}
}

func TestRegistryDefaultCooldown(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry([]string{"KEY_A"})

	r.SetCooldown("KEY_A", 0)
	if wait := r.WaitTime("KEY_A"); wait < 59 || wait > 61 {
		t.Fatalf("WaitTime = %d, want the 60s default", wait)
	}
}

func TestRegistryAvailableKeepsPriorityOrder(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry([]string{"KEY_A", "KEY_B", "KEY_C"})

	r.SetCooldown("KEY_B", 30)

	got := r.Available()
	if len(got) != 2 || got[0] != "KEY_A" || got[1] != "KEY_C" {
		t.Fatalf("Available() = %v, want [KEY_A KEY_C]", got)
	}
}

func TestRegistryNextAvailable(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry([]string{"KEY_A", "KEY_B"})

	id, wait, ok := r.NextAvailable()
	if !ok || id != "KEY_A" || wait != 0 {
		t.Fatalf("NextAvailable() = %q,%d,%v; want KEY_A,0,true", id, wait, ok)
	}

	r.SetCooldown("KEY_A", 120)
	r.SetCooldown("KEY_B", 30)

	id, wait, ok = r.NextAvailable()
	if !ok || id != "KEY_B" {
		t.Fatalf("NextAvailable() = %q,%v; want the credential with the smallest wait", id, ok)
	}
	if wait <= 0 || wait > 31 {
		t.Fatalf("wait = %d, want within (0,31]", wait)
	}

	empty, _ := newTestRegistry(nil)
	if _, _, ok := empty.NextAvailable(); ok {
		t.Fatal("empty registry should report no credentials")
	}
}

func TestRegistryReset(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry([]string{"KEY_A"})

	r.SetCooldown("KEY_A", 300)
	r.Reset()
	if !r.IsAvailable("KEY_A") {
		t.Fatal("Reset should clear all cooldowns")
	}
}
