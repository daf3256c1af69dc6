package bruntime

import (
	"github.com/gosuda/brewin/ast"
)

// JumpTable pairs block markers by line index. It is built once before a run
// and only read afterwards.
type JumpTable struct {
	WhileEnd map[int]int // while -> endwhile
	EndWhile map[int]int // endwhile -> while
	IfElse   map[int]int // if -> else
	IfEnd    map[int]int // if -> endif
	ElseEnd  map[int]int // else -> endif
	FuncEnd  map[int]int // func -> endfunc
}

type blockMark struct {
	idx    int
	indent int
}

type elseMark struct {
	ifIdx int
	idx   int
}

func newJumpTable() *JumpTable {
	return &JumpTable{
		WhileEnd: map[int]int{},
		EndWhile: map[int]int{},
		IfElse:   map[int]int{},
		IfEnd:    map[int]int{},
		ElseEnd:  map[int]int{},
		FuncEnd:  map[int]int{},
	}
}

// ResolveBlocks builds the jump table and the function table in one pass.
// Openers are paired with the first unmatched closer; a pair must sit at the
// same indentation depth.
func ResolveBlocks(prog *ast.Program) (*JumpTable, map[string]int, error) {
	jt := newJumpTable()
	funcs := map[string]int{}

	whileStack := make([]blockMark, 0, 8)
	ifStack := make([]blockMark, 0, 8)
	elseStack := make([]elseMark, 0, 8)
	var openFunc *blockMark

	lineNo := func(idx int) int { return prog.Lines[idx].Number }

	for i, line := range prog.Lines {
		if line.Empty() {
			continue
		}
		mark := blockMark{idx: i, indent: line.Indent}
		switch line.Leading() {
		case ast.FuncDef:
			if openFunc != nil {
				return nil, nil, newError(KindNestedFunction, line.Number, "func inside the function opened on line %d", lineNo(openFunc.idx))
			}
			if len(line.Tokens) < 2 {
				return nil, nil, newError(KindMalformedStatement, line.Number, "func without a name")
			}
			name := line.Tokens[1]
			if prev, ok := funcs[name]; ok {
				return nil, nil, newError(KindDuplicateFunction, line.Number, "function %s already defined on line %d", name, lineNo(prev))
			}
			funcs[name] = i
			openFunc = &mark
		case ast.EndFuncDef:
			if openFunc == nil {
				return nil, nil, newError(KindUnmatchedBlock, line.Number, "endfunc without func")
			}
			if n := len(whileStack); n > 0 {
				return nil, nil, newError(KindUnmatchedBlock, lineNo(whileStack[n-1].idx), "while without endwhile")
			}
			if n := len(ifStack); n > 0 {
				return nil, nil, newError(KindUnmatchedBlock, lineNo(ifStack[n-1].idx), "if without endif")
			}
			jt.FuncEnd[openFunc.idx] = i
			openFunc = nil
		case ast.WhileDef:
			whileStack = append(whileStack, mark)
		case ast.EndWhileDef:
			if len(whileStack) == 0 {
				return nil, nil, newError(KindUnmatchedBlock, line.Number, "endwhile without while")
			}
			open := whileStack[len(whileStack)-1]
			whileStack = whileStack[:len(whileStack)-1]
			if n := len(ifStack); n > 0 && ifStack[n-1].idx > open.idx {
				return nil, nil, newError(KindUnmatchedBlock, line.Number, "endwhile closes the while on line %d before the if on line %d", lineNo(open.idx), lineNo(ifStack[n-1].idx))
			}
			if open.indent != line.Indent {
				return nil, nil, newError(KindIndentationMismatch, line.Number, "endwhile indented %d, while on line %d indented %d", line.Indent, lineNo(open.idx), open.indent)
			}
			jt.WhileEnd[open.idx] = i
			jt.EndWhile[i] = open.idx
		case ast.IfDef:
			ifStack = append(ifStack, mark)
		case ast.ElseDef:
			if len(ifStack) == 0 {
				return nil, nil, newError(KindUnmatchedBlock, line.Number, "else without if")
			}
			open := ifStack[len(ifStack)-1]
			if n := len(whileStack); n > 0 && whileStack[n-1].idx > open.idx {
				return nil, nil, newError(KindUnmatchedBlock, line.Number, "else inside the while on line %d belongs to the if on line %d", lineNo(whileStack[n-1].idx), lineNo(open.idx))
			}
			if open.indent != line.Indent {
				return nil, nil, newError(KindIndentationMismatch, line.Number, "else indented %d, if on line %d indented %d", line.Indent, lineNo(open.idx), open.indent)
			}
			if prev, ok := jt.IfElse[open.idx]; ok {
				return nil, nil, newError(KindDuplicateElse, line.Number, "if on line %d already has an else on line %d", lineNo(open.idx), lineNo(prev))
			}
			jt.IfElse[open.idx] = i
			elseStack = append(elseStack, elseMark{ifIdx: open.idx, idx: i})
		case ast.EndIfDef:
			if len(ifStack) == 0 {
				return nil, nil, newError(KindUnmatchedBlock, line.Number, "endif without if")
			}
			open := ifStack[len(ifStack)-1]
			ifStack = ifStack[:len(ifStack)-1]
			if n := len(whileStack); n > 0 && whileStack[n-1].idx > open.idx {
				return nil, nil, newError(KindUnmatchedBlock, line.Number, "endif closes the if on line %d before the while on line %d", lineNo(open.idx), lineNo(whileStack[n-1].idx))
			}
			if open.indent != line.Indent {
				return nil, nil, newError(KindIndentationMismatch, line.Number, "endif indented %d, if on line %d indented %d", line.Indent, lineNo(open.idx), open.indent)
			}
			jt.IfEnd[open.idx] = i
			if n := len(elseStack); n > 0 && elseStack[n-1].ifIdx == open.idx {
				jt.ElseEnd[elseStack[n-1].idx] = i
				elseStack = elseStack[:n-1]
			}
		}
	}

	if openFunc != nil {
		return nil, nil, newError(KindUnmatchedBlock, lineNo(openFunc.idx), "func without endfunc")
	}
	if n := len(whileStack); n > 0 {
		return nil, nil, newError(KindUnmatchedBlock, lineNo(whileStack[n-1].idx), "while without endwhile")
	}
	if n := len(ifStack); n > 0 {
		return nil, nil, newError(KindUnmatchedBlock, lineNo(ifStack[n-1].idx), "if without endif")
	}
	if _, ok := funcs[ast.MainFunc]; !ok {
		return nil, nil, newError(KindMissingEntryPoint, 0, "no %s function defined", ast.MainFunc)
	}
	return jt, funcs, nil
}
