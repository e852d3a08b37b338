package exin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erikdelange/exin-go/internal/tracelog"
)

// Value is a reference-counted, tagged-variant runtime object covering the
// language's five built-in kinds plus the ListNode indirection used for
// list-element lvalues.
type Value struct {
	kind ValueKind

	c byte
	i int64
	f float64
	s string
	l []*Value

	// node is set only when kind == KindListNode: it is a write-through
	// handle into owner.l[index], letting `list[i] = expr` rebind the slot
	// in place.
	node *listSlot

	refs int
}

type listSlot struct {
	owner *Value
	index int
}

// liveValues is a debug-only counter: every newValue increments it, every
// release that drops a value's count to zero decrements it. A program that
// runs to completion with no leaked references returns it to its starting
// count.
var liveValues int

func newValue(k ValueKind) *Value {
	liveValues++
	tracelog.Alloc("alloc", k.String(), 1)
	return &Value{kind: k, refs: 1}
}

func NewNone() *Value {
	return newValue(KindNone)
}

func NewChar(c byte) *Value {
	v := newValue(KindChar)
	v.c = c
	return v
}

func NewInt(i int64) *Value {
	v := newValue(KindInt)
	v.i = i
	return v
}

func NewFloat(f float64) *Value {
	v := newValue(KindFloat)
	v.f = f
	return v
}

func NewStr(s string) *Value {
	v := newValue(KindStr)
	v.s = s
	return v
}

func NewList(items []*Value) *Value {
	v := newValue(KindList)
	v.l = items
	return v
}

// newListNode allocates a write-through handle into owner.l[index],
// retaining owner so the list cannot be released out from under the
// handle while it is alive.
func newListNode(owner *Value, index int) *Value {
	v := newValue(KindListNode)
	v.node = &listSlot{owner: owner.Retain(), index: index}
	return v
}

// Retain increments the reference count: binding a value to an identifier
// keeps it alive.
func (v *Value) Retain() *Value {
	if v != nil {
		v.refs++
	}
	return v
}

// Release decrements the reference count and, on reaching zero, marks the
// value dead for the live-object accounting in liveValues. Composite
// values (List) release their elements in turn so refcounts of nested
// values stay sound.
func (v *Value) Release() {
	if v == nil {
		return
	}
	v.refs--
	if v.refs > 0 {
		return
	}
	if v.refs < 0 {
		panic(raise(DesignError, Pos{}, "double release of value"))
	}
	liveValues--
	tracelog.Alloc("free", v.kind.String(), 0)
	switch v.kind {
	case KindList:
		for _, e := range v.l {
			e.Release()
		}
	case KindListNode:
		v.node.owner.Release()
	}
}

// unwrap follows a ListNode indirection to the slot it addresses,
// returning the value actually stored there. Every operator unwraps
// ListNode transparently, per the design notes.
func (v *Value) unwrap() *Value {
	if v.kind == KindListNode {
		return v.node.owner.l[v.node.index]
	}
	return v
}

// writeThrough rebinds the slot a ListNode addresses to a new value,
// releasing the old occupant. Ownership of nv transfers to the list slot;
// callers that also want to keep using nv (e.g. to return it for a
// chained assignment) must Retain it themselves first.
func (v *Value) writeThrough(nv *Value) {
	slot := v.node
	old := slot.owner.l[slot.index]
	old.Release()
	slot.owner.l[slot.index] = nv
}

func (v *Value) IsChar() bool  { return v.unwrap().kind == KindChar }
func (v *Value) IsInt() bool   { return v.unwrap().kind == KindInt }
func (v *Value) IsFloat() bool { return v.unwrap().kind == KindFloat }
func (v *Value) IsStr() bool   { return v.unwrap().kind == KindStr }
func (v *Value) IsList() bool  { return v.unwrap().kind == KindList }
func (v *Value) IsNone() bool  { return v.unwrap().kind == KindNone }

func (v *Value) IsNumber() bool {
	u := v.unwrap()
	return u.kind == KindChar || u.kind == KindInt || u.kind == KindFloat
}

func (v *Value) Kind() ValueKind { return v.unwrap().kind }

// Int64 returns the value's numeric contribution as an int64, coercing
// char/float to int as needed.
func (v *Value) Int64() int64 {
	u := v.unwrap()
	switch u.kind {
	case KindChar:
		return int64(u.c)
	case KindInt:
		return u.i
	case KindFloat:
		return int64(u.f)
	default:
		return 0
	}
}

func (v *Value) Float64() float64 {
	u := v.unwrap()
	switch u.kind {
	case KindChar:
		return float64(u.c)
	case KindInt:
		return float64(u.i)
	case KindFloat:
		return u.f
	default:
		return 0
	}
}

func (v *Value) Byte() byte {
	u := v.unwrap()
	switch u.kind {
	case KindChar:
		return u.c
	case KindInt:
		return byte(u.i)
	case KindFloat:
		return byte(int64(u.f))
	default:
		return 0
	}
}

func (v *Value) Str() string {
	u := v.unwrap()
	switch u.kind {
	case KindStr:
		return u.s
	case KindChar:
		return string(rune(u.c))
	default:
		return u.String()
	}
}

func (v *Value) List() []*Value { return v.unwrap().l }

// IsTrue reports the value's truthiness: numeric values are true when
// nonzero, strings and lists are true when nonempty.
func (v *Value) IsTrue() bool {
	u := v.unwrap()
	switch u.kind {
	case KindChar:
		return u.c != 0
	case KindInt:
		return u.i != 0
	case KindFloat:
		return u.f != 0
	case KindStr:
		return len(u.s) > 0
	case KindList:
		return len(u.l) > 0
	default:
		return false
	}
}

func boolValue(b bool) *Value {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

// Negate implements unary `!`.
func (v *Value) Negate() *Value {
	return boolValue(!v.IsTrue())
}

// Len reports the length of a str or list value, and 0 otherwise.
func (v *Value) Len() int {
	u := v.unwrap()
	switch u.kind {
	case KindStr:
		return len(u.s)
	case KindList:
		return len(u.l)
	default:
		return 0
	}
}

// Contains implements `in`: substring search for a str operand, deep
// value-equality membership for a list operand.
func (v *Value) Contains(elem *Value) bool {
	u := v.unwrap()
	switch u.kind {
	case KindStr:
		if elem.IsStr() || elem.IsChar() {
			return strings.Contains(u.s, elem.Str())
		}
		return false
	case KindList:
		for _, e := range u.l {
			if valuesEqual(e, elem) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		return i + n
	}
	return i
}

// Slice returns a deep copy of the selected region of a string or list,
// silently clamping start/end to the value's bounds.
func (v *Value) Slice(start, end int) *Value {
	u := v.unwrap()
	n := u.Len()
	start = clamp(normalizeIndex(start, n), 0, n)
	end = clamp(normalizeIndex(end, n), 0, n)
	if end < start {
		end = start
	}
	switch u.kind {
	case KindStr:
		return NewStr(u.s[start:end])
	case KindList:
		items := make([]*Value, end-start)
		for i := range items {
			items[i] = DeepCopy(u.l[start+i])
		}
		return NewList(items)
	default:
		return NewNone()
	}
}

// Index returns a write-through ListNode for list subscripting, or a
// fresh char value for string subscripting (strings are immutable).
// Out-of-range single-index access raises IndexError.
func (v *Value) Index(pos Pos, i int) (*Value, error) {
	u := v.unwrap()
	n := u.Len()
	idx := normalizeIndex(i, n)
	if idx < 0 || idx >= n {
		return nil, raise(IndexError, pos, "index %d out of range (length %d)", i, n)
	}
	switch u.kind {
	case KindStr:
		return NewChar(u.s[idx]), nil
	case KindList:
		return newListNode(u, idx), nil
	default:
		return nil, raise(TypeError, pos, "cannot index a value of type %s", u.kind)
	}
}

// appendElement appends e (ownership transferred in) to a list in place,
// so a variable's list is mutated through any alias sharing the pointer.
func (v *Value) appendElement(e *Value) {
	u := v.unwrap()
	u.l = append(u.l, e)
}

// insertElement inserts e before the clamped index idx.
func (v *Value) insertElement(idx int, e *Value) {
	u := v.unwrap()
	n := len(u.l)
	idx = clamp(idx, 0, n)
	u.l = append(u.l, nil)
	copy(u.l[idx+1:], u.l[idx:])
	u.l[idx] = e
}

// removeElement removes and returns the element at idx (negative indices
// count from the end), or none if idx is out of range.
func (v *Value) removeElement(idx int) *Value {
	u := v.unwrap()
	n := len(u.l)
	norm := normalizeIndex(idx, n)
	if norm < 0 || norm >= n {
		return NewNone()
	}
	removed := u.l[norm]
	u.l = append(u.l[:norm], u.l[norm+1:]...)
	return removed
}

// DeepCopy produces a fresh, refs=1 copy of v. Lists copy recursively,
// which is what makes cycles structurally impossible: a list element is
// always a fresh copy on insertion.
func DeepCopy(v *Value) *Value {
	u := v.unwrap()
	switch u.kind {
	case KindChar:
		return NewChar(u.c)
	case KindInt:
		return NewInt(u.i)
	case KindFloat:
		return NewFloat(u.f)
	case KindStr:
		return NewStr(u.s)
	case KindList:
		items := make([]*Value, len(u.l))
		for i, e := range u.l {
			items[i] = DeepCopy(e)
		}
		return NewList(items)
	default:
		return NewNone()
	}
}

// String formats a value the way a print statement renders it: char as
// the character, int as decimal, float with up to 15 significant digits,
// str raw, list as `[item,item,...]`, none as `none`.
func (v *Value) String() string {
	u := v.unwrap()
	switch u.kind {
	case KindChar:
		return string(rune(u.c))
	case KindInt:
		return strconv.FormatInt(u.i, 10)
	case KindFloat:
		return strconv.FormatFloat(u.f, 'g', 15, 64)
	case KindStr:
		return u.s
	case KindList:
		parts := make([]string, len(u.l))
		for i, e := range u.l {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindNone:
		return "none"
	default:
		return fmt.Sprintf("<listnode %d>", u.node.index)
	}
}

// TypeName implements the built-in `type()` function's return value.
func (v *Value) TypeName() string {
	return v.unwrap().kind.String()
}

func valuesEqual(a, b *Value) bool {
	ua, ub := a.unwrap(), b.unwrap()
	if ua.kind != ub.kind {
		// Mismatched kinds compare unequal rather than erroring. Equal
		// reaches here for every pair that is not both numeric, and
		// Contains for each list element.
		return false
	}
	switch ua.kind {
	case KindChar:
		return ua.c == ub.c
	case KindInt:
		return ua.i == ub.i
	case KindFloat:
		return ua.f == ub.f
	case KindStr:
		return ua.s == ub.s
	case KindList:
		if len(ua.l) != len(ub.l) {
			return false
		}
		for i := range ua.l {
			if !valuesEqual(ua.l[i], ub.l[i]) {
				return false
			}
		}
		return true
	case KindNone:
		return true
	default:
		return false
	}
}

// Equal implements `==`/`!=`: numeric operands compare by value across
// char/int/float, strings and lists compare by deep equality, anything
// else mismatched compares unequal rather than erroring.
func Equal(a, b *Value) bool {
	ua, ub := a.unwrap(), b.unwrap()
	if ua.IsNumber() && ub.IsNumber() {
		return ua.Float64() == ub.Float64()
	}
	return valuesEqual(ua, ub)
}
