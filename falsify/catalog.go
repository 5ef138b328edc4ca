package falsify

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// Catalog errors
var (
	ErrUnknownGenerator = errors.New("generator not registered")
	ErrUnknownImpl      = errors.New("implementation not registered")
	ErrDuplicateName    = errors.New("name already registered")
)

// Generator produces one adversarial input, already encoded in the wire
// form the claim's oracle consumes.
type Generator func(rng *rand.Rand, p GenParams) []byte

// Impl is an implementation under test. It receives the encoded input
// and returns an encoded output; a decode failure is a campaign error,
// not a trial failure.
type Impl func(rng *rand.Rand, input []byte) ([]byte, error)

// Catalog maps names to generators and implementations, the way the
// verifier registry maps references to verifiers. Claim definitions
// refer to entries by name.
type Catalog struct {
	mu    sync.RWMutex
	gens  map[string]Generator
	impls map[string]Impl
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		gens:  make(map[string]Generator),
		impls: make(map[string]Impl),
	}
}

// DefaultCatalog returns a catalog with the built-in generators and
// implementations registered.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	_ = c.RegisterGenerator(GenDupHeavy, DupHeavy)
	_ = c.RegisterGenerator(GenNearlySorted, NearlySorted)
	_ = c.RegisterGenerator(GenAllEqual, AllEqual)
	_ = c.RegisterGenerator(GenKDistinct, KDistinct)
	_ = c.RegisterGenerator(GenFloatDot, FloatDotVectors)
	_ = c.RegisterImpl(ImplBuggyQuicksort, BuggyQuicksort)
	_ = c.RegisterImpl(ImplQuicksort3, Quicksort3)
	_ = c.RegisterImpl(ImplDotNaive, DotNaive)
	_ = c.RegisterImpl(ImplDotKahan, DotKahan)
	return c
}

// RegisterGenerator adds a generator under name
func (c *Catalog) RegisterGenerator(name string, g Generator) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.gens[name]; ok {
		return fmt.Errorf("%w: generator %s", ErrDuplicateName, name)
	}
	c.gens[name] = g
	return nil
}

// RegisterImpl adds an implementation under name
func (c *Catalog) RegisterImpl(name string, impl Impl) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.impls[name]; ok {
		return fmt.Errorf("%w: impl %s", ErrDuplicateName, name)
	}
	c.impls[name] = impl
	return nil
}

// Generator resolves a generator name
func (c *Catalog) Generator(name string) (Generator, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g, ok := c.gens[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
	return g, nil
}

// Impl resolves an implementation name
func (c *Catalog) Impl(name string) (Impl, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	impl, ok := c.impls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImpl, name)
	}
	return impl, nil
}

// GeneratorNames returns all registered generator names, sorted
func (c *Catalog) GeneratorNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.gens))
	for name := range c.gens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImplNames returns all registered implementation names, sorted
func (c *Catalog) ImplNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.impls))
	for name := range c.impls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
