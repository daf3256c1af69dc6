package bruntime

import (
	"math"
	"strings"
)

// Checked int64 arithmetic. Each reports false when the exact result does
// not fit.

func addInt(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	return c, c/b == a
}

func isNumeric(k ValueKind) bool {
	return k == IntKind || k == FloatKind
}

// evalBinary applies a binary operator. left is the operand written right
// after the operator, right the one after that.
func (vm *VM) evalBinary(op string, left, right Value) (Value, error) {
	line := vm.lineNo()
	if op == "&" || op == "|" {
		if left.Kind() != BoolKind || right.Kind() != BoolKind {
			return Value{}, newError(KindNonBooleanOperand, line, "%s needs bool operands, got %s and %s", op, left.Kind(), right.Kind())
		}
		if op == "&" {
			return Bool(left.Bool() && right.Bool()), nil
		}
		return Bool(left.Bool() || right.Bool()), nil
	}

	if left.Kind() != right.Kind() {
		if vm.cfg.Strict {
			return Value{}, newError(KindOperandTypeMismatch, line, "%s on %s and %s", op, left.Kind(), right.Kind())
		}
		switch {
		case isNumeric(left.Kind()) && isNumeric(right.Kind()):
			left, right = Float(left.Float64()), Float(right.Float64())
		case op == "==":
			return Bool(false), nil
		case op == "!=":
			return Bool(true), nil
		default:
			return Value{}, newError(KindOperandTypeMismatch, line, "%s on %s and %s", op, left.Kind(), right.Kind())
		}
	}

	switch left.Kind() {
	case IntKind:
		return evalIntBinary(op, left.Int64(), right.Int64(), line)
	case FloatKind:
		return evalFloatBinary(op, left.Float64(), right.Float64(), line)
	case StringKind:
		return evalStringBinary(op, left.String(), right.String(), line)
	default:
		return evalBoolBinary(op, left.Bool(), right.Bool(), line)
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// evalBoolBinary compares booleans with False ordered before True.
func evalBoolBinary(op string, a, b bool, line int) (Value, error) {
	x, y := boolRank(a), boolRank(b)
	switch op {
	case "<":
		return Bool(x < y), nil
	case "<=":
		return Bool(x <= y), nil
	case ">":
		return Bool(x > y), nil
	case ">=":
		return Bool(x >= y), nil
	case "==":
		return Bool(x == y), nil
	case "!=":
		return Bool(x != y), nil
	}
	return Value{}, newError(KindUnsupportedOperand, line, "%s is not defined on bool", op)
}

func evalIntBinary(op string, a, b int64, line int) (Value, error) {
	var (
		c  int64
		ok bool
	)
	switch op {
	case "+":
		c, ok = addInt(a, b)
	case "-":
		c, ok = subInt(a, b)
	case "*":
		c, ok = mulInt(a, b)
	case "/":
		if b == 0 {
			return Value{}, newError(KindDivideByZero, line, "%d / 0", a)
		}
		if a == math.MinInt64 && b == -1 {
			return Value{}, newError(KindIntegerOverflow, line, "%d / %d does not fit in 64 bits", a, b)
		}
		return Int(a / b), nil
	case "%":
		if b == 0 {
			return Value{}, newError(KindDivideByZero, line, "%d %% 0", a)
		}
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return Int(r), nil
	case "<":
		return Bool(a < b), nil
	case "<=":
		return Bool(a <= b), nil
	case ">":
		return Bool(a > b), nil
	case ">=":
		return Bool(a >= b), nil
	case "==":
		return Bool(a == b), nil
	case "!=":
		return Bool(a != b), nil
	default:
		return Value{}, newError(KindUnsupportedOperand, line, "%s is not defined on int", op)
	}
	if !ok {
		return Value{}, newError(KindIntegerOverflow, line, "%d %s %d does not fit in 64 bits", a, op, b)
	}
	return Int(c), nil
}

func evalFloatBinary(op string, a, b float64, line int) (Value, error) {
	switch op {
	case "+":
		return Float(a + b), nil
	case "-":
		return Float(a - b), nil
	case "*":
		return Float(a * b), nil
	case "/":
		if b == 0 {
			return Value{}, newError(KindDivideByZero, line, "%v / 0", a)
		}
		return Float(a / b), nil
	case "%":
		if b == 0 {
			return Value{}, newError(KindDivideByZero, line, "%v %% 0", a)
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return Float(r), nil
	case "<":
		return Bool(a < b), nil
	case "<=":
		return Bool(a <= b), nil
	case ">":
		return Bool(a > b), nil
	case ">=":
		return Bool(a >= b), nil
	case "==":
		return Bool(a == b), nil
	case "!=":
		return Bool(a != b), nil
	}
	return Value{}, newError(KindUnsupportedOperand, line, "%s is not defined on float", op)
}

func evalStringBinary(op, a, b string, line int) (Value, error) {
	switch op {
	case "+":
		return Str(a + b), nil
	case "<":
		return Bool(strings.Compare(a, b) < 0), nil
	case "<=":
		return Bool(strings.Compare(a, b) <= 0), nil
	case ">":
		return Bool(strings.Compare(a, b) > 0), nil
	case ">=":
		return Bool(strings.Compare(a, b) >= 0), nil
	case "==":
		return Bool(a == b), nil
	case "!=":
		return Bool(a != b), nil
	}
	return Value{}, newError(KindUnsupportedOperand, line, "%s is not defined on string", op)
}
