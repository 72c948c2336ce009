package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"folio/pkg/logic"
)

// Sexpr renders theories as S-expressions and reads them back without
// loss. Every node is a tagged list whose head names the construct; atoms
// after the head are JSON-encoded, so strings are always double-quoted
// and distinguishable from structural symbols.
type Sexpr struct{}

// NewSexpr builds the sexpr codec.
func NewSexpr() *Sexpr { return &Sexpr{} }

// Format implements Compiler.
func (s *Sexpr) Format() Format { return FormatSexpr }

// sexpNode is one rendered S-expression element: sexpList, sexpSym (bare
// symbol), string, int64, float64, bool, or nil.
type sexpNode any

type sexpList []sexpNode

type sexpSym string

// CompileTheory implements Compiler.
func (s *Sexpr) CompileTheory(th *logic.Theory) (Result, error) {
	var b strings.Builder
	renderSexp(&b, s.theoryNode(th), 0, 0)
	b.WriteString("\n")
	return Result{Text: b.String()}, nil
}

// CompileGroup implements Compiler.
func (s *Sexpr) CompileGroup(_ *logic.Theory, g *logic.SentenceGroup) (Result, error) {
	var b strings.Builder
	renderSexp(&b, groupNode(g), 0, 0)
	b.WriteString("\n")
	return Result{Text: b.String()}, nil
}

func (s *Sexpr) theoryNode(th *logic.Theory) sexpList {
	node := sexpList{sexpSym("Theory"), field("name", stringOrNull(th.Name))}
	if names := th.Registry.TypeNames(); len(names) > 0 {
		pairs := make(sexpList, 0, len(names))
		for _, name := range names {
			def, _ := th.Registry.Type(name)
			pairs = append(pairs, sexpList{sexpSym(name), typeDefNode(def)})
		}
		node = append(node, field("type_definitions", dictNode(pairs)))
	}
	if defs := th.Registry.Predicates(); len(defs) > 0 {
		items := make(sexpList, 0, len(defs))
		for _, def := range defs {
			items = append(items, predicateNode(def))
		}
		node = append(node, field("predicate_definitions", items))
	}
	if len(th.Groups) > 0 {
		items := make(sexpList, 0, len(th.Groups))
		for _, g := range th.Groups {
			items = append(items, groupNode(g))
		}
		node = append(node, field("sentence_groups", items))
	}
	if len(th.Facts) > 0 {
		items := make(sexpList, 0, len(th.Facts))
		for _, f := range th.Facts {
			items = append(items, sentenceNode(f))
		}
		node = append(node, field("ground_terms", items))
	}
	if len(th.Annotations) > 0 {
		node = append(node, field("annotations", annotationsNode(th.Annotations)))
	}
	return node
}

func typeDefNode(def logic.TypeDef) sexpNode {
	if !def.IsUnion() {
		return def.Alternatives[0]
	}
	alts := make(sexpList, len(def.Alternatives))
	for i, a := range def.Alternatives {
		alts[i] = a
	}
	return alts
}

func predicateNode(def *logic.PredicateDefinition) sexpList {
	node := sexpList{sexpSym("PredicateDefinition"), field("predicate", def.Predicate)}
	pairs := make(sexpList, 0, len(def.Args))
	for _, a := range def.Args {
		pairs = append(pairs, sexpList{sexpSym(a.Name), a.Type})
	}
	node = append(node, field("arguments", dictNode(pairs)))
	if def.Description != "" {
		node = append(node, field("description", def.Description))
	}
	if len(def.Parents) > 0 {
		parents := make(sexpList, len(def.Parents))
		for i, p := range def.Parents {
			parents[i] = p
		}
		node = append(node, field("parents", parents))
	}
	return node
}

func groupNode(g *logic.SentenceGroup) sexpList {
	node := sexpList{sexpSym("SentenceGroup"), field("name", stringOrNull(g.Name))}
	if g.Kind != logic.GroupUntagged {
		node = append(node, field("group_type", string(g.Kind)))
	}
	if g.Doc != "" {
		node = append(node, field("docstring", g.Doc))
	}
	items := make(sexpList, 0, len(g.Sentences))
	for _, s := range g.Sentences {
		items = append(items, sentenceNode(s))
	}
	node = append(node, field("sentences", items))
	return node
}

func sentenceNode(s logic.Sentence) sexpNode {
	switch x := s.(type) {
	case *logic.Term:
		node := sexpList{sexpSym("Term"), x.Predicate}
		for _, a := range x.Args {
			node = append(node, valueNode(a))
		}
		return node
	case *logic.Variable:
		return variableNode(x)
	case *logic.Not:
		return sexpList{sexpSym("Not"), sentenceNode(x.Operand)}
	case *logic.And:
		return connectiveNode("And", x.Operands)
	case *logic.Or:
		return connectiveNode("Or", x.Operands)
	case *logic.Implies:
		return sexpList{sexpSym("Implies"), sentenceNode(x.Antecedent), sentenceNode(x.Consequent)}
	case *logic.Iff:
		return sexpList{sexpSym("Iff"), sentenceNode(x.Left), sentenceNode(x.Right)}
	case *logic.Forall:
		return quantifierNode("Forall", x.Vars, x.Body)
	case *logic.Exists:
		return quantifierNode("Exists", x.Vars, x.Body)
	case *logic.Probability:
		return sexpList{sexpSym("Probability"), x.Weight, sentenceNode(x.That)}
	case *logic.Evidence:
		return sexpList{sexpSym("Evidence"), sentenceNode(x.That), x.Truth}
	}
	return sexpList{sexpSym("Unknown")}
}

func connectiveNode(tag string, operands []logic.Sentence) sexpList {
	node := sexpList{sexpSym(tag)}
	for _, op := range operands {
		node = append(node, sentenceNode(op))
	}
	return node
}

func quantifierNode(tag string, vars []*logic.Variable, body logic.Sentence) sexpList {
	varList := make(sexpList, len(vars))
	for i, v := range vars {
		varList[i] = variableNode(v)
	}
	return sexpList{sexpSym(tag), varList, sentenceNode(body)}
}

func variableNode(v *logic.Variable) sexpList {
	if v.Domain != "" {
		return sexpList{sexpSym("Variable"), v.Name, v.Domain}
	}
	return sexpList{sexpSym("Variable"), v.Name}
}

func valueNode(v logic.Value) sexpNode {
	switch x := v.(type) {
	case *logic.Variable:
		return variableNode(x)
	case *logic.Term:
		return sentenceNode(x)
	case logic.String:
		return string(x)
	case logic.Integer:
		return int64(x)
	case logic.Float:
		return float64(x)
	case logic.Boolean:
		return bool(x)
	case logic.Null:
		return nil
	}
	return nil
}

func annotationsNode(annotations map[string]any) sexpNode {
	keys := make([]string, 0, len(annotations))
	for k := range annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make(sexpList, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, sexpList{sexpSym(k), annotationValueNode(annotations[k])})
	}
	return dictNode(pairs)
}

// annotationValueNode keeps annotation scalars in their canonical reading
// types, so a written theory reads back structurally identical.
func annotationValueNode(v any) sexpNode {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return int64(x)
	case int64:
		return x
	case float64:
		return x
	case bool:
		return x
	case nil:
		return nil
	case []any:
		items := make(sexpList, len(x))
		for i, e := range x {
			items[i] = annotationValueNode(e)
		}
		return items
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make(sexpList, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, sexpList{sexpSym(k), annotationValueNode(x[k])})
		}
		return dictNode(pairs)
	}
	return fmt.Sprintf("%v", v)
}

func field(name string, value sexpNode) sexpList {
	return sexpList{sexpSym(name), value}
}

func dictNode(pairs sexpList) sexpList {
	return sexpList{sexpSym("dict"), pairs}
}

func stringOrNull(s string) sexpNode {
	if s == "" {
		return nil
	}
	return s
}

// renderSexp writes a node. Lists in any position after a head open on a
// fresh line indented two spaces per depth; atoms stay inline, symbols
// bare and every other atom JSON-encoded.
func renderSexp(b *strings.Builder, n sexpNode, position, depth int) {
	list, isList := n.(sexpList)
	if !isList {
		b.WriteString(atomText(n))
		return
	}
	if position > 0 {
		b.WriteString("\n" + strings.Repeat("  ", depth))
	}
	b.WriteString("(")
	for i, child := range list {
		if _, childIsList := child.(sexpList); i > 0 && !childIsList {
			b.WriteString(" ")
		}
		renderSexp(b, child, i, depth+1)
	}
	b.WriteString(")")
}

func atomText(n sexpNode) string {
	if sym, ok := n.(sexpSym); ok {
		return string(sym)
	}
	switch x := n.(type) {
	case string:
		return jsonQuote(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return floatAtom(x)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "null"
	}
	data, err := json.Marshal(n)
	if err != nil {
		return "null"
	}
	return string(data)
}

// floatAtom keeps whole floats distinguishable from integers.
func floatAtom(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		return s + ".0"
	}
	return s
}
