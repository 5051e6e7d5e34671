package cpu

import "testing"

func TestCursorReads(t *testing.T) {
	c := NewCursor([]byte{0x01, 0xFF, 0x34, 0x12})
	if !c.HasBytes() {
		t.Fatal("expected bytes available")
	}
	if v := c.ReadU8(); v != 0x01 {
		t.Errorf("ReadU8 = %#x, want 0x01", v)
	}
	if v := c.ReadI8(); v != -1 {
		t.Errorf("ReadI8 = %d, want -1", v)
	}
	if v := c.ReadU16(); v != 0x1234 {
		t.Errorf("ReadU16 = %#x, want 0x1234", v)
	}
	if c.HasBytes() {
		t.Error("expected stream exhausted")
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v, want nil after exact consumption", c.Err())
	}
}

func TestCursorShortRead(t *testing.T) {
	c := NewCursor([]byte{0x01})
	_ = c.ReadU16()
	if c.Err() == nil {
		t.Fatal("expected sticky short-read error")
	}
	if v := c.ReadU8(); v != 0 {
		t.Errorf("read after error returned %#x, want 0", v)
	}
	if c.Err() != ErrShortRead {
		t.Errorf("Err() = %v, want ErrShortRead", c.Err())
	}
}

func TestCursorPeek(t *testing.T) {
	c := NewCursor([]byte{0x0A})
	b, ok := c.PeekU8()
	if !ok || b != 0x0A {
		t.Fatalf("PeekU8() = (%#x, %v), want (0x0a, true)", b, ok)
	}
	if c.Pos() != 0 {
		t.Errorf("PeekU8 advanced position to %d", c.Pos())
	}
	c.ReadU8()
	if _, ok := c.PeekU8(); ok {
		t.Error("PeekU8 succeeded past end of stream")
	}
}
