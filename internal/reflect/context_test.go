package reflect

import (
	"sync"
	"testing"
)

func TestScopeDefineGetUndef(t *testing.T) {
	s := NewScope("root")

	if !s.Define("a", 1) {
		t.Fatalf("expected first Define of %q to succeed", "a")
	}
	if s.Define("a", 2) {
		t.Fatalf("expected redefining %q to be rejected", "a")
	}

	v, ok := s.Get("a")
	if !ok || v.(int) != 1 {
		t.Fatalf("Get(a) = %v, %v, want 1, true", v, ok)
	}

	if got := s.Undef("a"); got.(int) != 1 {
		t.Fatalf("Undef(a) = %v, want 1", got)
	}
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected %q to be gone after Undef", "a")
	}
	if got := s.Undef("a"); got != nil {
		t.Fatalf("Undef of an already-removed key should return nil, got %v", got)
	}
}

func TestScopeKeysPreserveDefinitionOrder(t *testing.T) {
	s := NewScope("root")
	s.Define("first", 1)
	s.Define("second", 2)
	s.Define("third", 3)

	keys := s.Keys()
	want := []string{"first", "second", "third"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestScopeAppendDestinationWinsOnConflict(t *testing.T) {
	dst := NewScope("dst")
	dst.Define("shared", "dst-value")

	src := NewScope("src")
	src.Define("shared", "src-value")
	src.Define("unique", "src-only")

	dst.Append(src)

	v, _ := dst.Get("shared")
	if v != "dst-value" {
		t.Fatalf("Append must not overwrite an existing key, got %v", v)
	}
	v, ok := dst.Get("unique")
	if !ok || v != "src-only" {
		t.Fatalf("Append must copy new keys, got %v, %v", v, ok)
	}
}

func TestScopeConcurrentAccess(t *testing.T) {
	s := NewScope("concurrent")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Define(string(rune('a'+i%26))+"-extra", i)
			s.Get("anything")
		}()
	}
	wg.Wait()
}

func TestContextAppendAndRemove(t *testing.T) {
	dependency := NewContext("dep")
	dependency.Scope().Define("helper", "helper-fn")

	consumer := NewContext("consumer")
	consumer.Scope().Define("own", "own-fn")
	consumer.Append(dependency)

	if _, ok := consumer.Scope().Get("helper"); !ok {
		t.Fatalf("expected helper to be visible in consumer after Append")
	}

	consumer.Remove(dependency)
	if _, ok := consumer.Scope().Get("helper"); ok {
		t.Fatalf("expected helper to be undefined after Remove")
	}
	if _, ok := consumer.Scope().Get("own"); !ok {
		t.Fatalf("Remove must not touch keys the consumer defined itself")
	}
}
