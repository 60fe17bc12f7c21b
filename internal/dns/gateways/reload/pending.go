package reload

import (
	"context"
	"sync"
)

// Pending coalesces reload requests. Mutations call Mark; the caller applies
// once at the end of each operation, so a batch of edits reloads the server
// at most once. Gateway calls are serialized.
type Pending struct {
	mu      sync.Mutex
	gw      Gateway
	pending bool
}

// NewPending wraps gw.
func NewPending(gw Gateway) *Pending {
	return &Pending{gw: gw}
}

// Mark records that the on-disk configuration changed.
func (p *Pending) Mark() {
	p.mu.Lock()
	p.pending = true
	p.mu.Unlock()
}

// IsPending reports whether a change has not been applied yet.
func (p *Pending) IsPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Apply reloads the server if a change is pending. The flag stays set when the
// reload fails so the next Apply tries again.
func (p *Pending) Apply(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.pending {
		return nil
	}
	if err := p.gw.Reload(ctx); err != nil {
		return err
	}
	p.pending = false
	return nil
}

// Force reloads the server unconditionally and clears the flag on success.
func (p *Pending) Force(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.gw.Reload(ctx); err != nil {
		return err
	}
	p.pending = false
	return nil
}

// Status passes through to the gateway.
func (p *Pending) Status(ctx context.Context) string {
	return p.gw.Status(ctx)
}
