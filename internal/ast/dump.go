package ast

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// Dump renders stmts as a YAML document for debugging. Every node becomes a
// mapping with a `kind` key, its source position and its children in source
// order.
func Dump(stmts []Stmt) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, stmt := range stmts {
		doc.Content = append(doc.Content, dumpNode(stmt))
	}
	return yaml.Marshal(doc)
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

func str(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

type mapping struct {
	node *yaml.Node
}

func newMapping(kind string, n Node) mapping {
	m := mapping{node: &yaml.Node{Kind: yaml.MappingNode}}
	m.set("kind", str(kind))
	if span := n.Span(); span.IsValid() {
		m.set("pos", str(strconv.Itoa(span.Line)+":"+strconv.Itoa(span.Column)))
	}
	return m
}

func (m mapping) set(key string, value *yaml.Node) {
	m.node.Content = append(m.node.Content, str(key), value)
}

// child adds key only when the optional child is present.
func (m mapping) child(key string, n Node) {
	if !isNil(n) {
		m.set(key, dumpNode(n))
	}
}

func (m mapping) list(key string, nodes []Node) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, n := range nodes {
		seq.Content = append(seq.Content, dumpNode(n))
	}
	m.set(key, seq)
}

func exprNodes(exprs []Expr) []Node {
	nodes := make([]Node, len(exprs))
	for i, e := range exprs {
		nodes[i] = e
	}
	return nodes
}

func dumpNode(node Node) *yaml.Node {
	switch n := node.(type) {
	case *BlockExpr:
		m := newMapping("block", n)
		stmts := make([]Node, len(n.Stmts))
		for i, s := range n.Stmts {
			stmts[i] = s
		}
		m.list("stmts", stmts)
		return m.node
	case *NumberLit:
		m := newMapping("number", n)
		m.set("value", scalar(strconv.FormatFloat(n.Value, 'g', -1, 64)))
		return m.node
	case *BoolLit:
		m := newMapping("bool", n)
		m.set("value", scalar(strconv.FormatBool(n.Value)))
		return m.node
	case *StringLit:
		m := newMapping("string", n)
		m.set("value", str(n.Value))
		return m.node
	case *CharLit:
		m := newMapping("char", n)
		m.set("value", str(string(n.Value)))
		return m.node
	case *Ident:
		m := newMapping("identifier", n)
		m.set("name", str(n.Name))
		return m.node
	case *OperationExpr:
		m := newMapping("operation", n)
		m.set("op", str(n.Op.String()))
		m.child("left", n.Left)
		m.child("right", n.Right)
		return m.node
	case *CallExpr:
		m := newMapping("call", n)
		m.child("callee", n.Callee)
		m.list("args", exprNodes(n.Args))
		return m.node
	case *LambdaExpr:
		m := newMapping("lambda", n)
		m.child("return", n.ReturnType)
		params := make([]Node, len(n.Params))
		for i, p := range n.Params {
			params[i] = p
		}
		m.list("params", params)
		m.child("body", n.Body)
		return m.node
	case *Param:
		m := newMapping("param", n)
		m.set("name", str(n.Name.Name))
		m.child("type", n.Type)
		return m.node
	case *ArrayLiteral:
		m := newMapping("array", n)
		m.list("elems", exprNodes(n.Elems))
		return m.node
	case *IndexExpr:
		m := newMapping("index", n)
		m.child("target", n.Target)
		m.child("index", n.Index)
		return m.node

	case *ExprStmt:
		m := newMapping("expression", n)
		m.child("expr", n.Expr)
		return m.node
	case *AssignStmt:
		m := newMapping("assignment", n)
		m.child("target", n.Target)
		m.child("value", n.Value)
		return m.node
	case *DefinitionStmt:
		m := newMapping("definition", n)
		m.set("name", str(n.Name.Name))
		m.child("type", n.Type)
		m.child("value", n.Value)
		return m.node

	case *PrimitiveType:
		m := newMapping("type", n)
		m.set("name", str(n.Kind.String()))
		return m.node
	case *NamedType:
		m := newMapping("named_type", n)
		m.set("name", str(n.Name))
		return m.node
	case *MutType:
		m := newMapping("mut", n)
		m.child("inner", n.Inner)
		return m.node
	case *ArrayType:
		m := newMapping("array_type", n)
		m.child("elem", n.Elem)
		m.child("len", n.Len)
		return m.node
	}

	return str(Format(node))
}
