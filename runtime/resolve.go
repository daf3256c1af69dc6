package bruntime

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/gosuda/brewin/ast"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// operand is one operand-stack entry: either a raw token from the line or a
// value an operator already computed.
type operand struct {
	tok      string
	val      Value
	computed bool
}

func tokenOperand(tok string) operand {
	return operand{tok: tok}
}

func valueOperand(v Value) operand {
	return operand{val: v, computed: true}
}

func (o operand) String() string {
	if o.computed {
		return o.val.String()
	}
	return o.tok
}

// resolve looks an operand up as a variable first and coerces it as a
// literal second.
func (vm *VM) resolve(o operand) (Value, error) {
	if o.computed {
		return o.val, nil
	}
	if v, ok := vm.vars[o.tok]; ok {
		return v, nil
	}
	if v, ok := CoerceLiteral(o.tok, vm.cfg.Numeric); ok {
		return v, nil
	}
	if isOutOfRangeInt(o.tok) {
		return Value{}, newError(KindIntegerOverflow, vm.lineNo(), "literal %s does not fit in 64 bits", o.tok)
	}
	err := newError(KindUndefinedVariable, vm.lineNo(), "%s is neither a variable nor a literal", o.tok)
	err.Hint = suggest(o.tok, vm.varNames())
	return Value{}, err
}

// CoerceLiteral turns literal token text into a typed value. Quoted text is a
// string, True/False a boolean, decimal text a float (float model only) and
// signed digits an integer.
func CoerceLiteral(tok string, numeric NumericModel) (Value, bool) {
	if ast.IsQuoted(tok) {
		return Str(tok[1 : len(tok)-1]), true
	}
	switch tok {
	case ast.TrueDef:
		return Bool(true), true
	case ast.FalseDef:
		return Bool(false), true
	}
	if strings.Contains(tok, ".") {
		if numeric != NumericFloat {
			return Value{}, false
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Value{}, false
		}
		return Float(f), true
	}
	i, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return Value{}, false
	}
	return Int(i), true
}

// isOutOfRangeInt reports whether tok is integer text too large for int64.
func isOutOfRangeInt(tok string) bool {
	_, err := strconv.ParseInt(tok, 10, 64)
	return errors.Is(err, strconv.ErrRange)
}

func (vm *VM) varNames() []string {
	names := make([]string, 0, len(vm.vars))
	for k := range vm.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (vm *VM) funcNames() []string {
	names := make([]string, 0, len(vm.funcs))
	for k := range vm.funcs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// suggest returns the closest candidate to target, or "" when nothing is close.
func suggest(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	// typos that are not subsequences: fall back to edit distance
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(target), strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

const maxSuggestDistance = 2
