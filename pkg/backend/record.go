package backend

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"folio/pkg/logic"
)

// Record renders theories as YAML documents and reads them back without
// loss. Every construct is a mapping with a type field and positional
// arguments; mappings are built as yaml nodes directly, which keeps
// declaration order for predicate arguments and type definitions.
type Record struct{}

// NewRecord builds the record codec.
func NewRecord() *Record { return &Record{} }

// Format implements Compiler.
func (r *Record) Format() Format { return FormatRecord }

// CompileTheory implements Compiler.
func (r *Record) CompileTheory(th *logic.Theory) (Result, error) {
	text, err := marshalRecord(r.theoryRecord(th))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text}, nil
}

// CompileGroup implements Compiler.
func (r *Record) CompileGroup(_ *logic.Theory, g *logic.SentenceGroup) (Result, error) {
	text, err := marshalRecord(groupRecord(g))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text}, nil
}

func marshalRecord(node *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("record: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("record: %w", err)
	}
	return buf.String(), nil
}

func (r *Record) theoryRecord(th *logic.Theory) *yaml.Node {
	pairs := []*yaml.Node{yamlStr("type"), yamlStr("Theory"), yamlStr("name"), yamlOptStr(th.Name)}
	if names := th.Registry.TypeNames(); len(names) > 0 {
		var defs []*yaml.Node
		for _, name := range names {
			def, _ := th.Registry.Type(name)
			defs = append(defs, yamlStr(name), typeDefRecord(def))
		}
		pairs = append(pairs, yamlStr("type_definitions"), yamlMap(defs...))
	}
	if defs := th.Registry.Predicates(); len(defs) > 0 {
		items := make([]*yaml.Node, len(defs))
		for i, def := range defs {
			items[i] = predicateRecord(def)
		}
		pairs = append(pairs, yamlStr("predicate_definitions"), yamlSeq(items...))
	}
	if len(th.Groups) > 0 {
		items := make([]*yaml.Node, len(th.Groups))
		for i, g := range th.Groups {
			items[i] = groupRecord(g)
		}
		pairs = append(pairs, yamlStr("sentence_groups"), yamlSeq(items...))
	}
	if len(th.Facts) > 0 {
		items := make([]*yaml.Node, len(th.Facts))
		for i, f := range th.Facts {
			items[i] = sentenceRecord(f)
		}
		pairs = append(pairs, yamlStr("ground_terms"), yamlSeq(items...))
	}
	if len(th.Annotations) > 0 {
		pairs = append(pairs, yamlStr("annotations"), annotationsRecord(th.Annotations))
	}
	return yamlMap(pairs...)
}

func typeDefRecord(def logic.TypeDef) *yaml.Node {
	if !def.IsUnion() {
		return yamlStr(def.Alternatives[0])
	}
	items := make([]*yaml.Node, len(def.Alternatives))
	for i, a := range def.Alternatives {
		items[i] = yamlStr(a)
	}
	return yamlSeq(items...)
}

func predicateRecord(def *logic.PredicateDefinition) *yaml.Node {
	var args []*yaml.Node
	for _, a := range def.Args {
		args = append(args, yamlStr(a.Name), yamlStr(a.Type))
	}
	pairs := []*yaml.Node{
		yamlStr("type"), yamlStr("PredicateDefinition"),
		yamlStr("predicate"), yamlStr(def.Predicate),
		yamlStr("arguments"), yamlMap(args...),
	}
	if def.Description != "" {
		pairs = append(pairs, yamlStr("description"), yamlStr(def.Description))
	}
	if len(def.Parents) > 0 {
		parents := make([]*yaml.Node, len(def.Parents))
		for i, p := range def.Parents {
			parents[i] = yamlStr(p)
		}
		pairs = append(pairs, yamlStr("parents"), yamlSeq(parents...))
	}
	return yamlMap(pairs...)
}

func groupRecord(g *logic.SentenceGroup) *yaml.Node {
	pairs := []*yaml.Node{
		yamlStr("type"), yamlStr("SentenceGroup"),
		yamlStr("name"), yamlOptStr(g.Name),
	}
	if g.Kind != logic.GroupUntagged {
		pairs = append(pairs, yamlStr("group_type"), yamlStr(string(g.Kind)))
	}
	if g.Doc != "" {
		pairs = append(pairs, yamlStr("docstring"), yamlStr(g.Doc))
	}
	items := make([]*yaml.Node, len(g.Sentences))
	for i, s := range g.Sentences {
		items[i] = sentenceRecord(s)
	}
	pairs = append(pairs, yamlStr("sentences"), yamlSeq(items...))
	return yamlMap(pairs...)
}

func sentenceRecord(s logic.Sentence) *yaml.Node {
	switch x := s.(type) {
	case *logic.Term:
		args := []*yaml.Node{yamlStr(x.Predicate)}
		for _, a := range x.Args {
			args = append(args, valueRecord(a))
		}
		return typedRecord("Term", args...)
	case *logic.Variable:
		return variableRecord(x)
	case *logic.Not:
		return typedRecord("Not", sentenceRecord(x.Operand))
	case *logic.And:
		return typedRecord("And", sentenceRecords(x.Operands)...)
	case *logic.Or:
		return typedRecord("Or", sentenceRecords(x.Operands)...)
	case *logic.Implies:
		return typedRecord("Implies", sentenceRecord(x.Antecedent), sentenceRecord(x.Consequent))
	case *logic.Iff:
		return typedRecord("Iff", sentenceRecord(x.Left), sentenceRecord(x.Right))
	case *logic.Forall:
		return typedRecord("Forall", binderRecord(x.Vars), sentenceRecord(x.Body))
	case *logic.Exists:
		return typedRecord("Exists", binderRecord(x.Vars), sentenceRecord(x.Body))
	case *logic.Probability:
		return typedRecord("Probability", yamlFloat(x.Weight), sentenceRecord(x.That))
	case *logic.Evidence:
		return typedRecord("Evidence", sentenceRecord(x.That), yamlBool(x.Truth))
	}
	return typedRecord("Unknown")
}

func sentenceRecords(operands []logic.Sentence) []*yaml.Node {
	out := make([]*yaml.Node, len(operands))
	for i, op := range operands {
		out[i] = sentenceRecord(op)
	}
	return out
}

func binderRecord(vars []*logic.Variable) *yaml.Node {
	items := make([]*yaml.Node, len(vars))
	for i, v := range vars {
		items[i] = variableRecord(v)
	}
	return yamlSeq(items...)
}

func variableRecord(v *logic.Variable) *yaml.Node {
	args := []*yaml.Node{yamlStr(v.Name)}
	if v.Domain != "" {
		args = append(args, yamlStr(v.Domain))
	}
	return typedRecord("Variable", args...)
}

func valueRecord(v logic.Value) *yaml.Node {
	switch x := v.(type) {
	case *logic.Variable:
		return variableRecord(x)
	case *logic.Term:
		return sentenceRecord(x)
	case logic.String:
		return yamlStr(string(x))
	case logic.Integer:
		return yamlInt(int64(x))
	case logic.Float:
		return yamlFloat(float64(x))
	case logic.Boolean:
		return yamlBool(bool(x))
	case logic.Null:
		return yamlNull()
	}
	return yamlNull()
}

func annotationsRecord(annotations map[string]any) *yaml.Node {
	keys := make([]string, 0, len(annotations))
	for k := range annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var pairs []*yaml.Node
	for _, k := range keys {
		pairs = append(pairs, yamlStr(k), annotationValueRecord(annotations[k]))
	}
	return yamlMap(pairs...)
}

func annotationValueRecord(v any) *yaml.Node {
	switch x := v.(type) {
	case string:
		return yamlStr(x)
	case int:
		return yamlInt(int64(x))
	case int64:
		return yamlInt(x)
	case float64:
		return yamlFloat(x)
	case bool:
		return yamlBool(x)
	case nil:
		return yamlNull()
	case []any:
		items := make([]*yaml.Node, len(x))
		for i, e := range x {
			items[i] = annotationValueRecord(e)
		}
		return yamlSeq(items...)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var pairs []*yaml.Node
		for _, k := range keys {
			pairs = append(pairs, yamlStr(k), annotationValueRecord(x[k]))
		}
		return yamlMap(pairs...)
	}
	return yamlStr(fmt.Sprintf("%v", v))
}

func typedRecord(typeName string, args ...*yaml.Node) *yaml.Node {
	return yamlMap(
		yamlStr("type"), yamlStr(typeName),
		yamlStr("arguments"), yamlSeq(args...),
	)
}

func yamlMap(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: pairs}
}

func yamlSeq(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func yamlStr(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func yamlOptStr(s string) *yaml.Node {
	if s == "" {
		return yamlNull()
	}
	return yamlStr(s)
}

func yamlInt(i int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
}

func yamlFloat(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: floatAtom(f)}
}

func yamlBool(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

func yamlNull() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
