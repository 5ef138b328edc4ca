package verifier

import (
	"errors"
	"testing"
)

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("custom/v1", Func(func(in, out []byte) bool { return false })); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	v, err := r.Get("custom/v1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Violates(nil, nil) {
		t.Error("unexpected violation")
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrUnknownVerifier) {
		t.Errorf("expected ErrUnknownVerifier, got %v", err)
	}
	if err := r.Register("custom/v1", NewSort()); !errors.Is(err, ErrDuplicateVerifier) {
		t.Errorf("expected ErrDuplicateVerifier, got %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, ref := range []string{RefSort, RefDot} {
		if !r.Has(ref) {
			t.Errorf("built-in %s not registered", ref)
		}
	}

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 built-ins, got %v", names)
	}
	if names[0] != RefDot || names[1] != RefSort {
		t.Errorf("names not sorted: %v", names)
	}
}

func TestCachedMatchesInner(t *testing.T) {
	inner := NewSort()
	cached := NewCached(inner)

	cases := []struct{ input, output []byte }{
		{EncodeUints([]uint64{3, 1, 2}), EncodeUints([]uint64{1, 2, 3})},
		{EncodeUints([]uint64{3, 1, 2}), EncodeUints([]uint64{3, 2, 1})},
		{[]byte{1}, EncodeUints([]uint64{1})},
		{EncodeUints([]uint64{1}), []byte{1}},
	}

	for _, c := range cases {
		want := inner.Violates(c.input, c.output)
		// First call populates, second must hit the cache; both agree.
		if got := cached.Violates(c.input, c.output); got != want {
			t.Errorf("first call: got %v, want %v", got, want)
		}
		if got := cached.Violates(c.input, c.output); got != want {
			t.Errorf("cached call: got %v, want %v", got, want)
		}
	}
}

func TestCachedKeySeparation(t *testing.T) {
	// (ab, c) and (a, bc) must not share a cache entry.
	calls := 0
	v := NewCached(Func(func(in, out []byte) bool {
		calls++
		return len(in) == 2
	}))

	first := v.Violates([]byte("ab"), []byte("c"))
	second := v.Violates([]byte("a"), []byte("bc"))
	if first == second {
		t.Error("distinct pairs collided in cache")
	}
	if calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", calls)
	}
}
