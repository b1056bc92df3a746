//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"errors"
	"testing"
)

func TestPinBufferAccounting(t *testing.T) {
	SetPinnedBufferMemoryLimit(0)
	before := PinnedBufferMemoryUsage()

	p1, err := pinBuffer(make([]byte, 64))
	if err != nil {
		t.Fatalf("pinBuffer failed: %v", err)
	}
	p2, err := pinBuffer(nil)
	if err != nil {
		t.Fatalf("pinBuffer(nil) failed: %v", err)
	}

	u := PinnedBufferMemoryUsage()
	if u.PinnedBuffers != before.PinnedBuffers+2 || u.PinnedBytes != before.PinnedBytes+64 {
		t.Fatalf("usage = %+v, before %+v", u, before)
	}

	p1.release()
	p1.release()
	p2.release()
	if u := PinnedBufferMemoryUsage(); u != before {
		t.Errorf("usage after release = %+v, want %+v", u, before)
	}
}

func TestPinBufferLimit(t *testing.T) {
	before := PinnedBufferMemoryUsage()
	SetPinnedBufferMemoryLimit(before.PinnedBytes + 100)
	t.Cleanup(func() { SetPinnedBufferMemoryLimit(0) })

	p, err := pinBuffer(make([]byte, 100))
	if err != nil {
		t.Fatalf("pinBuffer at the limit failed: %v", err)
	}
	if _, err := pinBuffer(make([]byte, 1)); !errors.Is(err, ErrMemoryLimit) {
		t.Fatalf("err = %v, want ErrMemoryLimit", err)
	}
	if u := PinnedBufferMemoryUsage(); u.PinnedBytes != before.PinnedBytes+100 {
		t.Errorf("rejected pin was counted: %+v", u)
	}

	p.release()
	p, err = pinBuffer(make([]byte, 1))
	if err != nil {
		t.Fatalf("pinBuffer after release failed: %v", err)
	}
	p.release()
}
