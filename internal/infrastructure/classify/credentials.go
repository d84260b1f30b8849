package classify

import (
	"log/slog"
	"sync"
	"time"

	"NewsScanner/internal/ports"
)

const defaultCooldownSeconds = 60

// Registry tracks per-credential rate-limit cooldowns. Credentials are
// referenced by the name of the environment variable holding them, in
// configured priority order. Expired cooldowns are evicted lazily on read.
type Registry struct {
	mu              sync.Mutex
	order           []string
	cooldowns       map[string]time.Time
	defaultCooldown time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

var _ ports.CredentialRegistry = (*Registry)(nil)

// NewRegistry builds a registry over the configured credential names.
func NewRegistry(order []string, defaultSeconds int, logger *slog.Logger) *Registry {
	if defaultSeconds <= 0 {
		defaultSeconds = defaultCooldownSeconds
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		order:           append([]string(nil), order...),
		cooldowns:       make(map[string]time.Time),
		defaultCooldown: time.Duration(defaultSeconds) * time.Second,
		logger:          logger.With("component", "credentials"),
		now:             time.Now,
	}
}

// IsAvailable reports whether the credential is free of cooldown.
func (r *Registry) IsAvailable(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isAvailableLocked(id)
}

func (r *Registry) isAvailableLocked(id string) bool {
	until, ok := r.cooldowns[id]
	if !ok {
		return true
	}
	// Inclusive boundary: the credential frees up the instant the
	// cooldown has fully elapsed.
	if !r.now().Before(until) {
		delete(r.cooldowns, id)
		return true
	}
	return false
}

// SetCooldown parks the credential for the given number of seconds;
// non-positive values fall back to the configured default.
func (r *Registry) SetCooldown(id string, seconds int) {
	if seconds <= 0 {
		seconds = int(r.defaultCooldown / time.Second)
	}

	r.mu.Lock()
	r.cooldowns[id] = r.now().Add(time.Duration(seconds) * time.Second)
	r.mu.Unlock()

	r.logger.Info("credential parked", "credential", id, "cooldownSeconds", seconds)
}

// WaitTime returns the whole seconds remaining before the credential frees
// up, zero when it is already available.
func (r *Registry) WaitTime(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.cooldowns[id]
	if !ok {
		return 0
	}

	remaining := until.Sub(r.now())
	if remaining <= 0 {
		delete(r.cooldowns, id)
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Available lists the free credentials in priority order.
func (r *Registry) Available() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var free []string
	for _, id := range r.order {
		if r.isAvailableLocked(id) {
			free = append(free, id)
		}
	}
	return free
}

// NextAvailable returns the credential that frees up soonest along with its
// remaining wait in seconds. A free credential reports a zero wait. The
// boolean is false only when no credentials are configured.
func (r *Registry) NextAvailable() (string, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) == 0 {
		return "", 0, false
	}

	best := ""
	bestWait := -1
	for _, id := range r.order {
		if r.isAvailableLocked(id) {
			return id, 0, true
		}
		wait := int(r.cooldowns[id].Sub(r.now()).Seconds()) + 1
		if bestWait < 0 || wait < bestWait {
			best = id
			bestWait = wait
		}
	}
	return best, bestWait, true
}

// Reset clears every cooldown.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.cooldowns = make(map[string]time.Time)
	r.mu.Unlock()
}
