package bruntime

import (
	"strconv"
	"strings"

	"github.com/gosuda/brewin/ast"
)

type ValueKind int

const (
	IntKind ValueKind = iota
	StringKind
	FloatKind
	BoolKind
)

func (k ValueKind) String() string {
	switch k {
	case IntKind:
		return "int"
	case StringKind:
		return "string"
	case FloatKind:
		return "float"
	case BoolKind:
		return "bool"
	default:
		return "unknown"
	}
}

type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    bool
}

func Int(v int64) Value {
	return Value{kind: IntKind, i: v}
}

func Str(v string) Value {
	return Value{kind: StringKind, s: v}
}

func Float(v float64) Value {
	return Value{kind: FloatKind, f: v}
}

func Bool(v bool) Value {
	return Value{kind: BoolKind, b: v}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) Int64() int64 {
	switch v.kind {
	case IntKind:
		return v.i
	case FloatKind:
		return int64(v.f)
	}
	return 0
}

func (v Value) Float64() float64 {
	if v.kind == IntKind {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Bool() bool {
	return v.kind == BoolKind && v.b
}

func (v Value) String() string {
	switch v.kind {
	case StringKind:
		return v.s
	case FloatKind:
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		return s
	case BoolKind:
		if v.b {
			return ast.TrueDef
		}
		return ast.FalseDef
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case StringKind:
		return v.s == o.s
	case FloatKind:
		return v.f == o.f
	case BoolKind:
		return v.b == o.b
	default:
		return v.i == o.i
	}
}
