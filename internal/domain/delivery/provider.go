// internal/domain/delivery/provider.go
package delivery

import (
	"context"
	"fmt"
)

// ReasonNoEmail is the fixed failure reason recorded for recipients with no
// email on file. The provider transport is never contacted for them.
const ReasonNoEmail = "Recipient has no email on file."

// Provider is the delivery transport capability. Implementations dispatch one
// job's message to the given recipients and partition them into sent and
// failed. A returned error means the transport itself failed (misconfiguration,
// upstream outage) and the whole job must fail atomically.
type Provider interface {
	Deliver(ctx context.Context, subject, body string, recipients []Recipient) (Outcome, error)
}

// Registry resolves a job's provider name to a transport. Adding a transport
// means registering a new implementation, not branching on strings inside the
// processor.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register binds a provider name to a transport implementation.
func (r *Registry) Register(name string, p Provider) {
	r.providers[name] = p
}

// Resolve returns the transport for the given provider name.
func (r *Registry) Resolve(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported delivery provider: %s", name)
	}
	return p, nil
}

// Empty reports whether no transports are configured at all; the processor
// treats that as delivery being disabled.
func (r *Registry) Empty() bool {
	return r == nil || len(r.providers) == 0
}
