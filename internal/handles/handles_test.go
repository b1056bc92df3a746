package handles

import (
	"sync"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	type reader struct {
		Name string
		Size int64
	}

	m := New[*reader]()
	h := m.Register(&reader{Name: "doc.pdf", Size: 42})
	if h == 0 {
		t.Fatal("Register should return non-zero handle")
	}

	got, ok := m.Lookup(h)
	if !ok || got == nil {
		t.Fatal("Lookup should find the registered value")
	}
	if got.Name != "doc.pdf" || got.Size != 42 {
		t.Errorf("Lookup returned wrong data: %+v", got)
	}
}

func TestUnregister(t *testing.T) {
	m := New[string]()
	h := m.Register("payload")

	m.Unregister(h)
	if _, ok := m.Lookup(h); ok {
		t.Error("expected lookup to fail after Unregister")
	}
	// Unknown handles are ignored.
	m.Unregister(h)
	m.Unregister(12345)
}

func TestLookupZero(t *testing.T) {
	m := New[int]()
	m.Register(1)
	if _, ok := m.Lookup(0); ok {
		t.Error("handle 0 must never resolve")
	}
}

func TestHandlesAreUnique(t *testing.T) {
	m := New[int]()
	seen := make(map[uintptr]bool)
	for i := 0; i < 1000; i++ {
		h := m.Register(i)
		if seen[h] {
			t.Fatalf("duplicate handle %d", h)
		}
		seen[h] = true
		if i%2 == 0 {
			m.Unregister(h)
		}
	}
	if m.Count() != 500 {
		t.Errorf("Count() = %d, want 500", m.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				h := m.Register(g*1000 + i)
				if v, ok := m.Lookup(h); !ok || v != g*1000+i {
					t.Errorf("Lookup(%d) = %d, %v", h, v, ok)
					return
				}
				m.Unregister(h)
			}
		}(g)
	}
	wg.Wait()

	if m.Count() != 0 {
		t.Errorf("Count() = %d after all unregistered", m.Count())
	}
}
