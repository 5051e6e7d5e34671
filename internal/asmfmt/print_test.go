package asmfmt

import "testing"

func TestPrintNegativeDisplacement(t *testing.T) {
	in := &Instruction{
		Mnemonic: MOV,
		Dest:     Register{Size: 2, Index: 0},
		Source:   Memory{Formula: 6, Disp: -30}, // bp - 30
	}
	want := "mov ax, [bp - 30]"
	if got := in.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintDirectAddress(t *testing.T) {
	in := &Instruction{
		Mnemonic: MOV,
		Dest:     Memory{DirectAddress: true, Disp: 100},
		Source:   Register{Size: 1, Index: 0},
	}
	want := "mov [100], al"
	if got := in.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintSegmentOverride(t *testing.T) {
	in := &Instruction{
		Mnemonic: MOV,
		Dest:     Memory{Formula: 0, Segment: SegES},
		Source:   Register{Size: 2, Index: 3},
	}
	want := "mov es:[bx + si], bx"
	if got := in.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintFarPointer(t *testing.T) {
	in := &Instruction{Mnemonic: CALL, Dest: FarPointer{CS: 0x1234, IP: 0x0010}}
	want := "call 0x1234:0x0010"
	if got := in.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintExplicitSizes(t *testing.T) {
	byteInc := &Instruction{Mnemonic: INC, Dest: Memory{Formula: 7, ExplicitSize: true, Size: 1}}
	if got, want := byteInc.String(), "inc byte [bx]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	wordPop := &Instruction{Mnemonic: POP, Dest: Memory{Formula: 7, ExplicitSize: true, Size: 2}}
	if got, want := wordPop.String(), "pop word [bx]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintLockPrefix(t *testing.T) {
	in := &Instruction{
		Mnemonic: XCHG,
		Lock:     true,
		Dest:     Memory{Formula: 7},
		Source:   Register{Size: 2, Index: 0},
	}
	want := "lock xchg [bx], ax"
	if got := in.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintRepVariants(t *testing.T) {
	movs := &Instruction{Mnemonic: MOVS, Rep: true, Size: 1}
	if got, want := movs.String(), "rep movsb"; got != want {
		t.Errorf("MOVS rep: got %q, want %q", got, want)
	}
	cmpsRepe := &Instruction{Mnemonic: CMPS, Rep: true, RepZ: true, Size: 1}
	if got, want := cmpsRepe.String(), "repe cmpsb"; got != want {
		t.Errorf("CMPS repe: got %q, want %q", got, want)
	}
	scasRepne := &Instruction{Mnemonic: SCAS, Rep: true, RepZ: false, Size: 2}
	if got, want := scasRepne.String(), "repne scasw"; got != want {
		t.Errorf("SCAS repne: got %q, want %q", got, want)
	}
}

func TestPrintLabelDisplacement(t *testing.T) {
	in := &Instruction{Mnemonic: JMP, Dest: Label{Disp: 10}}
	want := "jmp $+12"
	if got := in.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintLabelSelfLoop(t *testing.T) {
	in := &Instruction{Mnemonic: JMP, Dest: Label{Disp: -2}}
	want := "jmp $+0"
	if got := in.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintLabelNegative(t *testing.T) {
	in := &Instruction{Mnemonic: JNE, Dest: Label{Disp: -5}}
	want := "jne $-3"
	if got := in.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAllMnemonicsCovered(t *testing.T) {
	names := AllMnemonics()
	if len(names) == 0 {
		t.Fatal("AllMnemonics returned no names")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			t.Error("AllMnemonics produced an empty name")
		}
		if seen[n] {
			t.Errorf("duplicate mnemonic name %q", n)
		}
		seen[n] = true
	}
}
