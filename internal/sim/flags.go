package sim

import "github.com/MooOfDoom/sim8086/internal/cpu"

// sizeMasks returns the value mask and sign-bit mask for an operand of
// the given width in bytes (1 or 2), so the arithmetic-flag formulas
// below work uniformly for byte and word operations.
func sizeMasks(size int) (mask, sign uint32) {
	if size == 1 {
		return 0xFF, 0x80
	}
	return 0xFFFF, 0x8000
}

// addFlags computes the result and CF/OF/ZF/SF/AF/PF for dst+src at
// the given operand width, per the source's ADD formula: CF from bit
// (size*8) of the unsigned sum, OF from signed overflow, AF from
// (a^b^result)&0x10, PF from even parity of the low 8 result bits.
func addFlags(dst, src uint32, size int) (result uint16, cf, of, zf, sf, af, pf bool) {
	mask, sign := sizeMasks(size)
	dst, src = dst&mask, src&mask
	sum := dst + src
	result = uint16(sum & mask)
	cf = sum&(mask+1) != 0
	zf = result == 0
	sf = uint32(result)&sign != 0
	af = (dst^src^uint32(result))&0x10 != 0
	pf = cpu.Parity(result)
	dSign, sSign := dst&sign != 0, src&sign != 0
	of = dSign == sSign && dSign != sf
	return
}

// subFlags computes dst-src (used by both SUB and CMP): CF set iff
// (unsigned) src>dst, AF set iff the low nibble of src exceeds that of
// dst, OF from signed overflow, SF/ZF/PF from the masked result.
func subFlags(dst, src uint32, size int) (result uint16, cf, of, zf, sf, af, pf bool) {
	mask, sign := sizeMasks(size)
	dst, src = dst&mask, src&mask
	diff := dst - src
	result = uint16(diff & mask)
	cf = src > dst
	af = src&0xF > dst&0xF
	zf = result == 0
	sf = uint32(result)&sign != 0
	pf = cpu.Parity(result)
	dSign, sSign := dst&sign != 0, src&sign != 0
	of = dSign != sSign && dSign != sf
	return
}

// logicResult masks a bitwise result to the operand width and reports
// the ZF/SF/PF it implies; AND/OR/XOR/TEST clear CF and OF and leave
// AF undefined (this simulator leaves it untouched).
func logicResult(v uint32, size int) (result uint16, zf, sf, pf bool) {
	mask, sign := sizeMasks(size)
	result = uint16(v & mask)
	zf = result == 0
	sf = uint32(result)&sign != 0
	pf = cpu.Parity(result)
	return
}
