package memory

import (
	"bytes"
	"testing"
)

type countingReader struct {
	Reader
	calls int
}

func (c *countingReader) Read(addr uint64, length int) ([]byte, error) {
	c.calls++
	return c.Reader.Read(addr, length)
}

func TestCachedReaderCoalescesPageReads(t *testing.T) {
	data := make([]byte, 3*PageSize)
	for i := range data {
		data[i] = byte(i)
	}
	backing := &countingReader{Reader: fakeSpace{0x10000: data}}

	c, err := NewCachedReader(backing, 8)
	if err != nil {
		t.Fatalf("NewCachedReader: %v", err)
	}

	for _, addr := range []uint64{0x10010, 0x10020, 0x10100} {
		got, err := c.Read(addr, 8)
		if err != nil {
			t.Fatalf("Read(0x%x): %v", addr, err)
		}
		if !bytes.Equal(got, data[addr-0x10000:addr-0x10000+8]) {
			t.Errorf("Read(0x%x) = %x", addr, got)
		}
	}
	if backing.calls != 1 {
		t.Errorf("backing reads = %d, want 1", backing.calls)
	}

	// spans the first and second page
	got, err := c.Read(0x10000+PageSize-4, 8)
	if err != nil {
		t.Fatalf("cross-page read: %v", err)
	}
	if !bytes.Equal(got, data[PageSize-4:PageSize+4]) {
		t.Errorf("cross-page read = %x", got)
	}
	if backing.calls != 2 {
		t.Errorf("backing reads = %d, want 2", backing.calls)
	}

	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Len after Reset = %d", c.Len())
	}
	if _, err := c.Read(0x10010, 4); err != nil {
		t.Fatal(err)
	}
	if backing.calls != 3 {
		t.Errorf("backing reads after Reset = %d, want 3", backing.calls)
	}
}

func TestCachedReaderFallsBackOnPartialPage(t *testing.T) {
	backing := fakeSpace{0x20000: bytes.Repeat([]byte{7}, 100)}
	c, err := NewCachedReader(backing, 4)
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Read(0x20010, 4)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte{7, 7, 7, 7}) {
		t.Errorf("got %x", got)
	}
}
