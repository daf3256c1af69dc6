package bruntime

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	CategorySyntax     Category = "SyntaxError"
	CategoryName       Category = "NameError"
	CategoryType       Category = "TypeError"
	CategoryArithmetic Category = "ArithmeticError"
	CategoryStack      Category = "StackError"
	CategoryResource   Category = "ResourceExhaustion"
)

type Kind string

const (
	// load time
	KindIndentationMismatch Kind = "IndentationMismatch"
	KindUnmatchedBlock      Kind = "UnmatchedBlock"
	KindMissingEntryPoint   Kind = "MissingEntryPoint"
	KindDuplicateFunction   Kind = "DuplicateFunction"
	KindDuplicateElse       Kind = "DuplicateElse"
	KindNestedFunction      Kind = "NestedFunction"
	KindMalformedStatement  Kind = "MalformedStatement"

	// run time
	KindUnknownFunction     Kind = "UnknownFunction"
	KindUndefinedVariable   Kind = "UndefinedVariable"
	KindNonBooleanCondition Kind = "NonBooleanCondition"
	KindOperandTypeMismatch Kind = "OperandTypeMismatch"
	KindUnsupportedOperand  Kind = "UnsupportedOperand"
	KindNonBooleanOperand   Kind = "NonBooleanOperand"
	KindInvalidConversion   Kind = "InvalidConversion"
	KindDivideByZero        Kind = "DivideByZero"
	KindIntegerOverflow     Kind = "IntegerOverflow"
	KindOperandUnderflow    Kind = "OperandUnderflow"
	KindCallDepthExceeded   Kind = "CallDepthExceeded"
	KindStepLimitExceeded   Kind = "StepLimitExceeded"
)

var kindCategory = map[Kind]Category{
	KindIndentationMismatch: CategorySyntax,
	KindUnmatchedBlock:      CategorySyntax,
	KindMissingEntryPoint:   CategorySyntax,
	KindDuplicateFunction:   CategorySyntax,
	KindDuplicateElse:       CategorySyntax,
	KindNestedFunction:      CategorySyntax,
	KindMalformedStatement:  CategorySyntax,
	KindUnknownFunction:     CategoryName,
	KindUndefinedVariable:   CategoryName,
	KindNonBooleanCondition: CategoryType,
	KindOperandTypeMismatch: CategoryType,
	KindUnsupportedOperand:  CategoryType,
	KindNonBooleanOperand:   CategoryType,
	KindInvalidConversion:   CategoryType,
	KindDivideByZero:        CategoryArithmetic,
	KindIntegerOverflow:     CategoryArithmetic,
	KindOperandUnderflow:    CategoryStack,
	KindCallDepthExceeded:   CategoryResource,
	KindStepLimitExceeded:   CategoryResource,
}

// Category sentinels for errors.Is.
var (
	ErrSyntax     = &Error{Category: CategorySyntax}
	ErrName       = &Error{Category: CategoryName}
	ErrType       = &Error{Category: CategoryType}
	ErrArithmetic = &Error{Category: CategoryArithmetic}
	ErrStack      = &Error{Category: CategoryStack}
	ErrResource   = &Error{Category: CategoryResource}
)

// Error is a fatal interpreter fault. Line is the 1-based source line, or 0
// when the fault is not tied to a line (e.g. a missing entry point).
type Error struct {
	Category Category
	Kind     Kind
	Line     int
	Detail   string
	Hint     string
}

func newError(kind Kind, line int, format string, args ...any) *Error {
	return &Error{
		Category: kindCategory[kind],
		Kind:     kind,
		Line:     line,
		Detail:   fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Category))
	if e.Kind != "" {
		b.WriteString(": ")
		b.WriteString(string(e.Kind))
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d", e.Line)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Hint)
	}
	return b.String()
}

// Is matches on category, and on kind when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Category != "" && t.Category != e.Category {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// ErrorLine returns the source line carried by err, or 0.
func ErrorLine(err error) int {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Line
	}
	return 0
}
