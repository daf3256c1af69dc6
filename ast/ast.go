package ast

// Keywords recognized by the interpreter. Tokens are compared by exact text.
const (
	FuncDef     = "func"
	EndFuncDef  = "endfunc"
	AssignDef   = "assign"
	FuncCallDef = "funccall"
	ReturnDef   = "return"
	WhileDef    = "while"
	EndWhileDef = "endwhile"
	IfDef       = "if"
	ElseDef     = "else"
	EndIfDef    = "endif"
	PrintDef    = "print"
	InputDef    = "input"
	StrToIntDef = "strtoint"

	MainFunc  = "main"
	ResultVar = "result"
	TrueDef   = "True"
	FalseDef  = "False"

	CommentChar = '#'
	QuoteChar   = '"'
)

// Program is the immutable line store built once at load time.
// Blank and comment-only lines are kept so that indices match source order.
type Program struct {
	Lines []Line
}

type Line struct {
	Number int // 1-based source line
	Indent int
	Tokens []string
}

// Leading returns the first token of the line, or "" for an empty line.
func (l Line) Leading() string {
	if len(l.Tokens) == 0 {
		return ""
	}
	return l.Tokens[0]
}

func (l Line) Empty() bool {
	return len(l.Tokens) == 0
}

// IsOperator reports whether tok is one of the binary operator symbols.
func IsOperator(tok string) bool {
	switch tok {
	case "+", "-", "*", "/", "%", "<", "<=", ">", ">=", "!=", "==", "&", "|":
		return true
	default:
		return false
	}
}

func IsQuoted(tok string) bool {
	return len(tok) >= 2 && tok[0] == QuoteChar && tok[len(tok)-1] == QuoteChar
}
