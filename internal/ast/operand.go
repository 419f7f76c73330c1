package ast

// Operand identifies a binary operator.
type Operand int

const (
	OpPow Operand = iota
	OpMul
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpEqual
	OpNotEqual
	OpLt
	OpGt
	OpLtEqual
	OpGtEqual
)

type operandInfo struct {
	symbol string
	rank   int
}

// Rank 0 binds tightest.
var operands = [...]operandInfo{
	OpPow:      {"^", 0},
	OpMul:      {"*", 1},
	OpDiv:      {"/", 1},
	OpMod:      {"%", 1},
	OpAdd:      {"+", 2},
	OpSub:      {"-", 2},
	OpEqual:    {"==", 3},
	OpNotEqual: {"!=", 3},
	OpLt:       {"<", 4},
	OpGt:       {">", 4},
	OpLtEqual:  {"<=", 4},
	OpGtEqual:  {">=", 4},
}

var operandBySymbol = func() map[string]Operand {
	m := make(map[string]Operand, len(operands))
	for op, info := range operands {
		m[info.symbol] = Operand(op)
	}
	return m
}()

// LookupOperand maps an operator's surface text to its Operand and rank.
func LookupOperand(symbol string) (Operand, int, bool) {
	op, ok := operandBySymbol[symbol]
	if !ok {
		return 0, 0, false
	}
	return op, operands[op].rank, true
}

// Rank returns the binding rank of op; lower ranks bind tighter.
func (op Operand) Rank() int {
	return operands[op].rank
}

func (op Operand) String() string {
	if op < 0 || int(op) >= len(operands) {
		return "?"
	}
	return operands[op].symbol
}
