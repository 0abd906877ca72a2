package eval

import "svcore/types"

// ConstantValue is the result of evaluating a bound constant expression:
// either an Int4, or the Bad sentinel, composed into the same tree-walk the
// binder drives rather than returned as a Go error, so a Bad sub-result can
// propagate through an enclosing expression exactly like any other value.
type ConstantValue struct {
	Int   Int4
	IsInt bool

	// DataType is set instead of Int when the expression is itself a type
	// reference (used by evalDimension's associative-array detection: "this
	// expression is actually a data type").
	DataType types.Type
}

// Bad reports whether cv represents the Bad sentinel.
func (cv ConstantValue) Bad() bool {
	return cv.IsInt && cv.Int.Bad
}

// IntConstant wraps an Int4 as a ConstantValue.
func IntConstant(v Int4) ConstantValue {
	return ConstantValue{Int: v, IsInt: true}
}

// TypeConstant wraps a type reference as a ConstantValue, used when a
// dimension's bracketed expression turns out to name a data type rather
// than a value (associative array index type).
func TypeConstant(t types.Type) ConstantValue {
	return ConstantValue{DataType: t}
}

// IsDataType reports whether cv names a type rather than a value.
func (cv ConstantValue) IsDataType() bool {
	return cv.DataType != nil
}

// Context carries the bounded recursion budget and call-frame stack for
// evaluating function calls inside constant expressions, matching this
// module's requirement that constant evaluation "bounds recursion and
// total work" rather than running unbounded.
type Context struct {
	MaxSteps int
	steps    int
	frames   []frame
}

type frame struct {
	locals map[string]ConstantValue
}

// NewContext creates a Context with the given step budget. A budget of 0
// means "use the default" (100,000 steps).
func NewContext(maxSteps int) *Context {
	if maxSteps <= 0 {
		maxSteps = 100000
	}
	return &Context{MaxSteps: maxSteps}
}

// Step charges one unit of work against the budget, returning false once
// the budget is exhausted so the caller can abort with a Bad result instead
// of running away.
func (c *Context) Step() bool {
	c.steps++
	return c.steps <= c.MaxSteps
}

// PushFrame/PopFrame bracket evaluation of a function-call body.
func (c *Context) PushFrame() {
	c.frames = append(c.frames, frame{locals: make(map[string]ConstantValue)})
}

func (c *Context) PopFrame() {
	c.frames = c.frames[:len(c.frames)-1]
}

func (c *Context) SetLocal(name string, v ConstantValue) {
	if len(c.frames) == 0 {
		return
	}
	c.frames[len(c.frames)-1].locals[name] = v
}

func (c *Context) Local(name string) (ConstantValue, bool) {
	if len(c.frames) == 0 {
		return ConstantValue{}, false
	}
	v, ok := c.frames[len(c.frames)-1].locals[name]
	return v, ok
}
