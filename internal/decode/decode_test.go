package decode

import (
	"errors"
	"io"
	"testing"
)

// decodeAll decodes every instruction in data and returns their
// rendered strings, failing the test on any unexpected error.
func decodeAll(t *testing.T, data []byte) []string {
	t.Helper()
	dec := New(data)
	var out []string
	for {
		inst, err := dec.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("decode(%x) failed: %v", data, err)
		}
		out = append(out, inst.String())
	}
}

func TestDecodeGoldenForms(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want []string
	}{
		{"mov reg imm", []byte{0xB8, 0x01, 0x00}, []string{"mov ax, 1"}},
		{"mov reg imm chain", []byte{0xB9, 0x03, 0x00}, []string{"mov cx, 3"}},
		{"add rm reg", []byte{0x01, 0xD8}, []string{"add ax, bx"}},
		{"sub imm8 sign-extended", []byte{0x83, 0xE9, 0x01}, []string{"sub cx, 1"}},
		{"cmp acc imm", []byte{0x3D, 0x00, 0x00}, []string{"cmp ax, 0"}},
		{"mov reg rm byte", []byte{0x88, 0xE0}, []string{"mov al, ah"}},
		{"prefix composition", []byte{0xF0, 0x26, 0x88, 0x07}, []string{"lock mov es:[bx], al"}},
		{"push pop reg", []byte{0x50, 0x58}, []string{"push ax", "pop ax"}},
		{"xchg acc reg", []byte{0x93}, []string{"xchg ax, bx"}},
		{"lea", []byte{0x8D, 0x00}, []string{"lea ax, [bx + si]"}},
		{"inc dec reg", []byte{0x40, 0x48}, []string{"inc ax", "dec ax"}},
		{"explicit size byte inc", []byte{0xFE, 0x06, 0x10, 0x00}, []string{"inc byte [16]"}},
		{"and rm imm word", []byte{0x81, 0xE0, 0x0F, 0x00}, []string{"and ax, 15"}},
		{"string movsb with rep", []byte{0xF3, 0xA4}, []string{"rep movsb"}},
		{"far call keyword", []byte{0xFF, 0x1E, 0x00, 0x01}, []string{"call far [256]"}},
	}
	for _, c := range cases {
		got := decodeAll(t, c.data)
		if len(got) != len(c.want) {
			t.Errorf("%s: got %d instructions %v, want %v", c.name, len(got), got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s: instruction %d = %q, want %q", c.name, i, got[i], c.want[i])
			}
		}
	}
}

func TestDecodeShortJumpLabel(t *testing.T) {
	got := decodeAll(t, []byte{0x75, 0xFB})
	want := "jne $-3"
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %v, want [%q]", got, want)
	}
}

func TestDecodeShortJumpSelfLoop(t *testing.T) {
	got := decodeAll(t, []byte{0xEB, 0xFE})
	want := "jmp $+0"
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %v, want [%q]", got, want)
	}
}

func TestDecodeShortRead(t *testing.T) {
	dec := New([]byte{0x88})
	_, err := dec.Next()
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("err = %v (%T), want *Error", err, err)
	}
	if de.Kind != ShortRead {
		t.Errorf("Kind = %v, want ShortRead", de.Kind)
	}
}

func TestDecodeIllegalSubOp(t *testing.T) {
	dec := New([]byte{0xFF, 0xF8})
	_, err := dec.Next()
	de, ok := err.(*Error)
	if !ok || de.Kind != IllegalSubOp {
		t.Fatalf("err = %v, want IllegalSubOp", err)
	}
}

func TestDecodePopCSIllegal(t *testing.T) {
	dec := New([]byte{0x0F})
	_, err := dec.Next()
	de, ok := err.(*Error)
	if !ok || de.Kind != IllegalSegmentSelector {
		t.Fatalf("err = %v, want IllegalSegmentSelector", err)
	}
}

func TestDecodeAAMBadTrailer(t *testing.T) {
	dec := New([]byte{0xD4, 0x05})
	_, err := dec.Next()
	de, ok := err.(*Error)
	if !ok || de.Kind != IllegalSecondByte {
		t.Fatalf("err = %v, want IllegalSecondByte", err)
	}
}

func TestDecodeIdempotent(t *testing.T) {
	data := []byte{0xB8, 0x01, 0x00, 0x01, 0xD8}
	first := decodeAll(t, data)
	second := decodeAll(t, data)
	if len(first) != len(second) {
		t.Fatalf("decode counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("instruction %d differs across runs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestDecodeRestartable(t *testing.T) {
	dec := New([]byte{0xB8, 0x01, 0x00, 0xB9, 0x02, 0x00})
	first, err := dec.Next()
	if err != nil {
		t.Fatal(err)
	}
	second, err := dec.Next()
	if err != nil {
		t.Fatal(err)
	}
	if first.String() != "mov ax, 1" || second.String() != "mov cx, 2" {
		t.Errorf("got %q, %q", first.String(), second.String())
	}
}
