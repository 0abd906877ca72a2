// Package eval implements constant evaluation: the four-valued (0/1/X/Z)
// arbitrary-precision integer used throughout the binder, plus the
// Context that bounds evaluation work and holds call frames while the
// binder walks bound expressions to produce a ConstantValue.
// Int4's two-bit-plane encoding (one plane for the bit value, one for
// "is this bit unknown") is the conventional way 4-state vectors are
// packed, and is what the original's SVInt description in this module's
// source material implies; math/big backs each plane because no example
// in the retrieval pack carries a four-valued bignum type (see DESIGN.md).
package eval

import "math/big"

// MaxBitWidth fixes this module's decision on the spec's open question
// about the maximum representable bit width: 2^24 - 1, matching the
// "typical value" the original documents for SVInt::MAX_BITS.
const MaxBitWidth = 1<<24 - 1

// Int4 is a four-valued, arbitrary-width, optionally-signed integer.
// A bit is 0 or 1 when its position in Unknown is clear; when set, the bit
// is X if the corresponding position in Bits is clear, Z if set — the
// standard two-plane 4-state encoding.
type Int4 struct {
	Width   int
	Signed  bool
	Bits    big.Int
	Unknown big.Int

	// Bad is a sticky sentinel: once set, every operation involving this
	// value produces another Bad value rather than a numeric result. It is
	// distinct from "all bits unknown" — Bad means "this value could not be
	// computed," not "this value is electrically undefined."
	Bad bool
}

// BadValue is the canonical Bad sentinel, returned instead of a diagnostic
// when a value cannot be computed at all (for example a Bad operand or an
// exhausted step budget). Division by zero is not such a case: Div and Mod
// return an all-X value for it.
func BadValue() Int4 {
	return Int4{Bad: true}
}

// FromInt64 builds an unsigned, fully-known Int4 of the given width from an
// ordinary integer.
func FromInt64(v int64, width int) Int4 {
	var r Int4
	r.Width = width
	r.Bits.SetInt64(v)
	r.mask()
	return r
}

func (v *Int4) mask() {
	if v.Width <= 0 {
		return
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(v.Width))
	m.Sub(m, big.NewInt(1))
	v.Bits.And(&v.Bits, m)
	v.Unknown.And(&v.Unknown, m)
}

// HasUnknown reports whether any bit of v is X or Z.
func (v Int4) HasUnknown() bool {
	return !v.Bad && v.Unknown.Sign() != 0
}

// IsInteger reports whether v represents a (possibly unknown-containing)
// integral value at all, as opposed to a Bad sentinel — this exists mainly
// so binder code reads the same as the original's `cv.isInteger()` guard.
func (v Int4) IsInteger() bool {
	return !v.Bad
}

// IsNegative reports whether v is signed and its sign bit is set, treating
// any unknown sign bit as not-negative (conservative, matching the
// original's reliance on a concrete two-valued sign check).
func (v Int4) IsNegative() bool {
	if !v.Signed || v.Width == 0 {
		return false
	}
	return v.Bits.Bit(v.Width-1) == 1 && v.Unknown.Bit(v.Width-1) == 0
}

// AsInt32 coerces v to an int32, returning ok=false if v is Bad, contains
// an unknown bit, or the numeric value doesn't fit — the binder's
// evalInteger uses this to decide between a result and ValueOutOfRange.
func (v Int4) AsInt32() (int32, bool) {
	if v.Bad || v.HasUnknown() {
		return 0, false
	}
	signed := new(big.Int).Set(&v.Bits)
	if v.Signed && v.Width > 0 && v.Bits.Bit(v.Width-1) == 1 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(v.Width))
		signed.Sub(signed, full)
	}
	if !signed.IsInt64() {
		return 0, false
	}
	i64 := signed.Int64()
	if i64 < int64(minInt32) || i64 > int64(maxInt32) {
		return 0, false
	}
	return int32(i64), true
}

const minInt32 = -1 << 31
const maxInt32 = 1<<31 - 1

// CaseEquals implements `===`: every bit, including X/Z, must match
// exactly (unlike `==`, which is Bad/unknown-propagating).
func CaseEquals(a, b Int4) bool {
	if a.Bad || b.Bad {
		return a.Bad == b.Bad
	}
	return a.Bits.Cmp(&b.Bits) == 0 && a.Unknown.Cmp(&b.Unknown) == 0
}

// LogicalEquals implements `==`: if either operand has an unknown bit, the
// result is itself unknown (represented here by returning ok=false — the
// caller must produce a single-bit all-X Int4, not a diagnostic).
func LogicalEquals(a, b Int4) (equal bool, ok bool) {
	if a.Bad || b.Bad || a.HasUnknown() || b.HasUnknown() {
		return false, false
	}
	return a.Bits.Cmp(&b.Bits) == 0, true
}

func widthOf(a, b Int4) int {
	if a.Width > b.Width {
		return a.Width
	}
	return b.Width
}

// Add, Sub, Mul implement the arithmetic operators: any unknown operand bit
// taints the entire result (conventional 4-state arithmetic semantics; the
// spec names the requirement without tabulating it, so this module adopts
// the usual rule rather than inventing a bespoke one).
func Add(a, b Int4) Int4 { return arith(a, b, (*big.Int).Add) }
func Sub(a, b Int4) Int4 { return arith(a, b, (*big.Int).Sub) }
func Mul(a, b Int4) Int4 { return arith(a, b, (*big.Int).Mul) }

func arith(a, b Int4, op func(z, x, y *big.Int) *big.Int) Int4 {
	if a.Bad || b.Bad {
		return BadValue()
	}
	if a.HasUnknown() || b.HasUnknown() {
		var r Int4
		r.Width = widthOf(a, b)
		r.Unknown.Lsh(big.NewInt(1), uint(r.Width))
		r.Unknown.Sub(&r.Unknown, big.NewInt(1))
		return r
	}
	var r Int4
	r.Width = widthOf(a, b)
	r.Signed = a.Signed && b.Signed
	op(&r.Bits, &a.Bits, &b.Bits)
	r.mask()
	return r
}

// Div and Mod produce an all-X result (not an error) on division by zero,
// matching the spec's explicit note that this is not a diagnostic.
func Div(a, b Int4) Int4 { return divOrMod(a, b, true) }
func Mod(a, b Int4) Int4 { return divOrMod(a, b, false) }

func divOrMod(a, b Int4, isDiv bool) Int4 {
	if a.Bad || b.Bad {
		return BadValue()
	}
	if a.HasUnknown() || b.HasUnknown() || b.Bits.Sign() == 0 {
		var r Int4
		r.Width = widthOf(a, b)
		full := new(big.Int).Lsh(big.NewInt(1), uint(r.Width))
		full.Sub(full, big.NewInt(1))
		r.Unknown.Set(full)
		return r
	}
	var r Int4
	r.Width = widthOf(a, b)
	r.Signed = a.Signed && b.Signed
	if isDiv {
		r.Bits.Div(&a.Bits, &b.Bits)
	} else {
		r.Bits.Mod(&a.Bits, &b.Bits)
	}
	r.mask()
	return r
}

// bitwise applies op bit by bit across the 4-state lattice: if either
// operand bit is unknown, the truth table in unknownTable decides the result,
// which for AND/OR allows a known 0/1 to resolve an unknown operand the
// way real gate-level simulation does (0 AND X == 0, 1 OR X == 1).
func bitwise(a, b Int4, known func(x, y bool) bool, unknownTable func(av, bv, au, bu int) (bit, unk bool)) Int4 {
	w := widthOf(a, b)
	var r Int4
	r.Width = w
	for i := 0; i < w; i++ {
		av, bv := bitAt(a.Bits, i), bitAt(b.Bits, i)
		au, bu := bitAt(a.Unknown, i), bitAt(b.Unknown, i)
		if au == 0 && bu == 0 {
			if known(av == 1, bv == 1) {
				r.Bits.SetBit(&r.Bits, i, 1)
			}
			continue
		}
		bit, unk := unknownTable(av, bv, au, bu)
		if unk {
			r.Unknown.SetBit(&r.Unknown, i, 1)
		} else if bit {
			r.Bits.SetBit(&r.Bits, i, 1)
		}
	}
	return r
}

func bitAt(v big.Int, i int) int { return int(v.Bit(i)) }

// And, Or, Xor are the bitwise operators with the conventional 4-state
// resolving behavior described on bitwise.
func And(a, b Int4) Int4 {
	if a.Bad || b.Bad {
		return BadValue()
	}
	return bitwise(a, b, func(x, y bool) bool { return x && y }, func(av, bv, au, bu int) (bool, bool) {
		if (au == 0 && av == 0) || (bu == 0 && bv == 0) {
			return false, false
		}
		return false, true
	})
}

func Or(a, b Int4) Int4 {
	if a.Bad || b.Bad {
		return BadValue()
	}
	return bitwise(a, b, func(x, y bool) bool { return x || y }, func(av, bv, au, bu int) (bool, bool) {
		if (au == 0 && av == 1) || (bu == 0 && bv == 1) {
			return true, false
		}
		return false, true
	})
}

func Xor(a, b Int4) Int4 {
	if a.Bad || b.Bad {
		return BadValue()
	}
	return bitwise(a, b, func(x, y bool) bool { return x != y }, func(av, bv, au, bu int) (bool, bool) {
		return false, true
	})
}
