package verifier

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Errors
var (
	ErrUnknownVerifier   = errors.New("unknown verifier")
	ErrDuplicateVerifier = errors.New("verifier already registered")
)

// Verifier decides whether an evidence pair falsifies a claim domain's
// correctness predicate. Implementations must be pure, deterministic,
// and safe to call with adversarial bytes.
type Verifier interface {
	// Violates returns true iff (input, output) proves the claim false.
	Violates(input, output []byte) bool
}

// Func adapts a plain function to the Verifier interface
type Func func(input, output []byte) bool

func (f Func) Violates(input, output []byte) bool {
	return f(input, output)
}

// Registry maps verifier reference strings to Verifier instances.
// The claim registry resolves a claim's VerifierRef through it at
// challenge time; the mapping itself never changes mid-dispute.
type Registry struct {
	mu        sync.RWMutex
	verifiers map[string]Verifier
}

// NewRegistry creates an empty verifier registry
func NewRegistry() *Registry {
	return &Registry{verifiers: make(map[string]Verifier)}
}

// DefaultRegistry returns a registry with the built-in domains registered
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Built-in refs are fixed names; registration cannot collide.
	_ = r.Register(RefSort, NewSort())
	_ = r.Register(RefDot, NewDot(DefaultDotTolerance))
	return r
}

// Register adds a verifier under ref. Re-registering an existing ref
// fails; verifiers are not upgradable while claims may reference them.
func (r *Registry) Register(ref string, v Verifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.verifiers[ref]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateVerifier, ref)
	}
	r.verifiers[ref] = v
	return nil
}

// Get resolves a verifier reference
func (r *Registry) Get(ref string) (Verifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.verifiers[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVerifier, ref)
	}
	return v, nil
}

// Has reports whether ref is registered
func (r *Registry) Has(ref string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.verifiers[ref]
	return ok
}

// Names returns all registered references, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.verifiers))
	for ref := range r.verifiers {
		names = append(names, ref)
	}
	sort.Strings(names)
	return names
}
