package callgate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoSerializes(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Do(func() {
					n := inFlight.Add(1)
					for {
						m := maxInFlight.Load()
						if n <= m || maxInFlight.CompareAndSwap(m, n) {
							break
						}
					}
					inFlight.Add(-1)
				})
			}
		}()
	}
	wg.Wait()

	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent calls = %d, want 1", got)
	}
}

func TestCallReturnsValue(t *testing.T) {
	before := Calls()
	got := Call(func() int { return 42 })
	if got != 42 {
		t.Errorf("Call() = %d, want 42", got)
	}
	a, b := Call2(func() (int, string) { return 1, "x" })
	if a != 1 || b != "x" {
		t.Errorf("Call2() = %d, %q", a, b)
	}
	if Calls()-before < 2 {
		t.Errorf("Calls() did not advance: before %d, after %d", before, Calls())
	}
}

func TestTryHeld(t *testing.T) {
	if TryHeld() {
		t.Fatal("gate reported held while idle")
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		Do(func() {
			close(entered)
			<-release
		})
		close(done)
	}()

	<-entered
	if !TryHeld() {
		t.Error("gate reported idle while a call was in flight")
	}
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("gated call never finished")
	}
}

func TestPanicReleasesGate(t *testing.T) {
	func() {
		defer func() { _ = recover() }()
		Do(func() { panic("native call failed") })
	}()
	if TryHeld() {
		t.Fatal("gate still held after panic")
	}
}
