// Package types models the packed/unpacked dimension and integral/enum/
// struct/net-type family the binder resolves data-type syntax into.
// Grounded structurally on the teacher's typing.DataType interface
// (src/typing/types.go: Repr/equals/coerce/cast) generalized from Chai's
// primitive-plus-generics type system to SystemVerilog's packed/unpacked
// dimension stacks.
package types

import "fmt"

// Type is the common interface every concrete type kind implements.
type Type interface {
	// Repr renders a canonical textual form, used only for diagnostics —
	// never parsed back, so it need not round-trip.
	Repr() string
	equals(other Type) bool
}

// Equals reports whether a and b denote the same type. Exported as a free
// function (rather than a method on the interface) so callers never invoke
// the unexported equals directly, mirroring typing.Equals in the teacher.
func Equals(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.equals(b)
}

// IntegralKind distinguishes the built-in integral base types.
type IntegralKind int

const (
	KindLogic IntegralKind = iota
	KindBit
	KindReg
	KindInt
	KindInteger
	KindShortint
	KindLongint
	KindByte
)

// IntegralType is a packed integral type: a base kind, an explicit
// signedness, and zero or more packed dimensions (outermost first).
type IntegralType struct {
	Base   IntegralKind
	Signed bool
	// Dims holds each packed dimension's width in bits, outermost first; a
	// scalar (no explicit range) has an empty Dims and a Width of 1.
	Dims  []int
	Width int // total bit width, Dims folded together
}

func (t *IntegralType) Repr() string {
	sign := ""
	if t.Signed {
		sign = " signed"
	}
	return fmt.Sprintf("%s%s[%d]", integralKindName(t.Base), sign, t.Width)
}

func (t *IntegralType) equals(other Type) bool {
	o, ok := other.(*IntegralType)
	if !ok {
		return false
	}
	return t.Base == o.Base && t.Signed == o.Signed && t.Width == o.Width
}

func integralKindName(k IntegralKind) string {
	switch k {
	case KindLogic:
		return "logic"
	case KindBit:
		return "bit"
	case KindReg:
		return "reg"
	case KindInt:
		return "int"
	case KindInteger:
		return "integer"
	case KindShortint:
		return "shortint"
	case KindLongint:
		return "longint"
	case KindByte:
		return "byte"
	default:
		return "?"
	}
}

// RealType covers real/shortreal.
type RealType struct {
	Short bool
}

func (t *RealType) Repr() string {
	if t.Short {
		return "shortreal"
	}
	return "real"
}
func (t *RealType) equals(other Type) bool {
	o, ok := other.(*RealType)
	return ok && o.Short == t.Short
}

// StringType is the built-in `string` type.
type StringType struct{}

func (t *StringType) Repr() string       { return "string" }
func (t *StringType) equals(o Type) bool { _, ok := o.(*StringType); return ok }

// VoidType is a function's absent return type.
type VoidType struct{}

func (t *VoidType) Repr() string       { return "void" }
func (t *VoidType) equals(o Type) bool { _, ok := o.(*VoidType); return ok }

// EnumType names its base integral representation and its member names in
// declaration order; TransparentMemberSymbol in package symbols is
// what makes each member visible in the enclosing scope without this type
// itself needing to be a Scope.
type EnumType struct {
	Name    string
	Base    *IntegralType
	Members []string
}

func (t *EnumType) Repr() string { return "enum " + t.Name }
func (t *EnumType) equals(other Type) bool {
	o, ok := other.(*EnumType)
	return ok && o.Name == t.Name
}

// StructField is one member of a StructType, in declaration order.
type StructField struct {
	Name string
	Type Type
}

// StructType covers both `struct` and `union`, packed or not.
type StructType struct {
	Name     string
	IsUnion  bool
	Packed   bool
	Fields   []StructField
}

func (t *StructType) Repr() string {
	kind := "struct"
	if t.IsUnion {
		kind = "union"
	}
	return kind + " " + t.Name
}
func (t *StructType) equals(other Type) bool {
	o, ok := other.(*StructType)
	return ok && o.Name == t.Name && o.IsUnion == t.IsUnion
}

// DimensionKind classifies one unpacked dimension, matching the binder's
// evalDimension result kinds named in the original.
type DimensionKind int

const (
	DimRange DimensionKind = iota
	DimAbbreviatedRange
	DimQueue
	DimDynamic
	DimAssociative
	DimUnknown
)

// Dimension is one unpacked-array dimension attached to a declared variable
// (distinct from IntegralType.Dims, which is packed).
type Dimension struct {
	Kind        DimensionKind
	Left, Right int  // valid for DimRange/DimAbbreviatedRange
	MaxSize     int  // valid for DimQueue, 0 if unbounded
	HasMaxSize  bool
	IndexType   Type // valid for DimAssociative
}

// UnpackedArrayType wraps Element with one or more unpacked dimensions,
// outermost first.
type UnpackedArrayType struct {
	Element Type
	Dims    []Dimension
}

func (t *UnpackedArrayType) Repr() string {
	return t.Element.Repr() + " []"
}
func (t *UnpackedArrayType) equals(other Type) bool {
	o, ok := other.(*UnpackedArrayType)
	if !ok || len(o.Dims) != len(t.Dims) {
		return false
	}
	return Equals(t.Element, o.Element)
}

// IsIntegral reports whether t is an integral type; a packed array counts,
// since it is an IntegralType with Dims.
func IsIntegral(t Type) bool {
	_, ok := t.(*IntegralType)
	return ok
}
