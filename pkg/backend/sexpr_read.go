package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"folio/pkg/logic"
)

var sexprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[-+]?\d+(\.\d+)?([eE][-+]?\d+)?`},
	{Name: "Symbol", Pattern: `[A-Za-z_][A-Za-z0-9_.-]*`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type sexprForm struct {
	List *sexprListForm `parser:"  @@"`
	Str  *string        `parser:"| @String"`
	Num  *string        `parser:"| @Number"`
	Sym  *string        `parser:"| @Symbol"`
}

type sexprListForm struct {
	Items []*sexprForm `parser:"'(' @@* ')'"`
}

var sexprParser = participle.MustBuild[sexprForm](
	participle.Lexer(sexprLexer),
	participle.Unquote("String"),
	participle.Elide("Whitespace"),
)

// ReadTheory implements Reader.
func (s *Sexpr) ReadTheory(data []byte) (*logic.Theory, error) {
	form, err := sexprParser.ParseBytes("", data)
	if err != nil {
		return nil, fmt.Errorf("sexpr: %w", err)
	}
	node, err := formNode(form)
	if err != nil {
		return nil, err
	}
	return decodeTheory(node)
}

// formNode converts the parse tree into the node model the writer uses:
// lists, bare symbols, and typed atoms.
func formNode(f *sexprForm) (sexpNode, error) {
	switch {
	case f.List != nil:
		out := make(sexpList, 0, len(f.List.Items))
		for _, item := range f.List.Items {
			n, err := formNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case f.Str != nil:
		return *f.Str, nil
	case f.Num != nil:
		text := *f.Num
		if strings.ContainsAny(text, ".eE") {
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("sexpr: bad number %q: %w", text, err)
			}
			return v, nil
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("sexpr: bad number %q: %w", text, err)
		}
		return v, nil
	case f.Sym != nil:
		switch *f.Sym {
		case "null":
			return nil, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return sexpSym(*f.Sym), nil
	}
	return nil, fmt.Errorf("sexpr: empty form")
}

func decodeTheory(n sexpNode) (*logic.Theory, error) {
	list, err := taggedList(n, "Theory")
	if err != nil {
		return nil, err
	}
	th := logic.NewTheory("")
	for _, f := range list[1:] {
		key, value, err := fieldPair(f)
		if err != nil {
			return nil, err
		}
		switch key {
		case "name":
			th.Name, err = optionalString(value)
			if err != nil {
				return nil, fmt.Errorf("sexpr: theory name: %w", err)
			}
		case "type_definitions":
			pairs, err := dictPairs(value)
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				def, err := decodeTypeDef(p.value)
				if err != nil {
					return nil, fmt.Errorf("sexpr: type %s: %w", p.key, err)
				}
				if err := th.Registry.DeclareType(p.key, def); err != nil {
					return nil, err
				}
			}
		case "predicate_definitions":
			items, ok := value.(sexpList)
			if !ok {
				return nil, fmt.Errorf("sexpr: predicate_definitions is not a list")
			}
			for _, item := range items {
				def, err := decodePredicate(item)
				if err != nil {
					return nil, err
				}
				if err := th.Registry.DeclarePredicate(def); err != nil {
					return nil, err
				}
			}
		case "sentence_groups":
			items, ok := value.(sexpList)
			if !ok {
				return nil, fmt.Errorf("sexpr: sentence_groups is not a list")
			}
			for _, item := range items {
				g, err := decodeGroup(item)
				if err != nil {
					return nil, err
				}
				th.AddGroup(g)
			}
		case "ground_terms":
			items, ok := value.(sexpList)
			if !ok {
				return nil, fmt.Errorf("sexpr: ground_terms is not a list")
			}
			for _, item := range items {
				s, err := decodeSentence(item)
				if err != nil {
					return nil, err
				}
				t, ok := s.(*logic.Term)
				if !ok {
					return nil, fmt.Errorf("sexpr: ground term is not a Term: %s", s)
				}
				if err := th.AddFact(t); err != nil {
					return nil, err
				}
			}
		case "annotations":
			annotations, err := decodeAnnotations(value)
			if err != nil {
				return nil, err
			}
			th.Annotations = annotations
		default:
			return nil, fmt.Errorf("sexpr: unknown theory field %q", key)
		}
	}
	return th, nil
}

func decodeTypeDef(n sexpNode) (logic.TypeDef, error) {
	switch x := n.(type) {
	case string:
		return logic.Alias(x), nil
	case sexpList:
		alts := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return logic.TypeDef{}, fmt.Errorf("union alternative is not a string")
			}
			alts = append(alts, s)
		}
		return logic.UnionOf(alts...), nil
	}
	return logic.TypeDef{}, fmt.Errorf("definition must be a string or list")
}

func decodePredicate(n sexpNode) (*logic.PredicateDefinition, error) {
	list, err := taggedList(n, "PredicateDefinition")
	if err != nil {
		return nil, err
	}
	def := &logic.PredicateDefinition{}
	for _, f := range list[1:] {
		key, value, err := fieldPair(f)
		if err != nil {
			return nil, err
		}
		switch key {
		case "predicate":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("sexpr: predicate name is not a string")
			}
			def.Predicate = s
		case "arguments":
			pairs, err := dictPairs(value)
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				typ, ok := p.value.(string)
				if !ok {
					return nil, fmt.Errorf("sexpr: argument %s type is not a string", p.key)
				}
				def.Args = append(def.Args, logic.ArgSpec{Name: p.key, Type: typ})
			}
		case "description":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("sexpr: description is not a string")
			}
			def.Description = s
		case "parents":
			items, ok := value.(sexpList)
			if !ok {
				return nil, fmt.Errorf("sexpr: parents is not a list")
			}
			for _, item := range items {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("sexpr: parent is not a string")
				}
				def.Parents = append(def.Parents, s)
			}
		default:
			return nil, fmt.Errorf("sexpr: unknown predicate field %q", key)
		}
	}
	if def.Predicate == "" {
		return nil, fmt.Errorf("sexpr: predicate definition without a name")
	}
	return def, nil
}

func decodeGroup(n sexpNode) (*logic.SentenceGroup, error) {
	list, err := taggedList(n, "SentenceGroup")
	if err != nil {
		return nil, err
	}
	g := &logic.SentenceGroup{}
	for _, f := range list[1:] {
		key, value, err := fieldPair(f)
		if err != nil {
			return nil, err
		}
		switch key {
		case "name":
			g.Name, err = optionalString(value)
			if err != nil {
				return nil, fmt.Errorf("sexpr: group name: %w", err)
			}
		case "group_type":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("sexpr: group_type is not a string")
			}
			switch logic.GroupKind(s) {
			case logic.GroupAxiom, logic.GroupGoal, logic.GroupUntagged:
				g.Kind = logic.GroupKind(s)
			default:
				return nil, fmt.Errorf("sexpr: unknown group_type %q", s)
			}
		case "docstring":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("sexpr: docstring is not a string")
			}
			g.Doc = s
		case "sentences":
			items, ok := value.(sexpList)
			if !ok {
				return nil, fmt.Errorf("sexpr: sentences is not a list")
			}
			for _, item := range items {
				s, err := decodeSentence(item)
				if err != nil {
					return nil, err
				}
				g.Sentences = append(g.Sentences, s)
			}
		default:
			return nil, fmt.Errorf("sexpr: unknown group field %q", key)
		}
	}
	return g, nil
}

func decodeSentence(n sexpNode) (logic.Sentence, error) {
	list, ok := n.(sexpList)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("sexpr: sentence must be a tagged list, got %v", n)
	}
	tag, ok := list[0].(sexpSym)
	if !ok {
		return nil, fmt.Errorf("sexpr: sentence tag must be a symbol, got %v", list[0])
	}
	args := list[1:]
	switch string(tag) {
	case "Term":
		if len(args) == 0 {
			return nil, fmt.Errorf("sexpr: Term without a predicate")
		}
		pred, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("sexpr: Term predicate is not a string")
		}
		values := make([]logic.Value, 0, len(args)-1)
		for _, a := range args[1:] {
			v, err := decodeValue(a)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return logic.NewTerm(pred, values...), nil
	case "Variable":
		return decodeVariable(args)
	case "Not":
		if len(args) != 1 {
			return nil, fmt.Errorf("sexpr: Not takes one operand, got %d", len(args))
		}
		op, err := decodeSentence(args[0])
		if err != nil {
			return nil, err
		}
		return logic.NewNot(op), nil
	case "And", "Or":
		ops := make([]logic.Sentence, 0, len(args))
		for _, a := range args {
			op, err := decodeSentence(a)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
		}
		if tag == "And" {
			return logic.NewAnd(ops...), nil
		}
		return logic.NewOr(ops...), nil
	case "Implies", "Iff":
		if len(args) != 2 {
			return nil, fmt.Errorf("sexpr: %s takes two operands, got %d", tag, len(args))
		}
		left, err := decodeSentence(args[0])
		if err != nil {
			return nil, err
		}
		right, err := decodeSentence(args[1])
		if err != nil {
			return nil, err
		}
		if tag == "Implies" {
			return logic.NewImplies(left, right), nil
		}
		return logic.NewIff(left, right), nil
	case "Forall", "Exists":
		if len(args) != 2 {
			return nil, fmt.Errorf("sexpr: %s takes binders and a body, got %d operands", tag, len(args))
		}
		binderList, ok := args[0].(sexpList)
		if !ok {
			return nil, fmt.Errorf("sexpr: %s binders must be a list", tag)
		}
		vars := make([]*logic.Variable, 0, len(binderList))
		for _, b := range binderList {
			s, err := decodeSentence(b)
			if err != nil {
				return nil, err
			}
			v, ok := s.(*logic.Variable)
			if !ok {
				return nil, fmt.Errorf("sexpr: %s binder is not a Variable: %s", tag, s)
			}
			vars = append(vars, v)
		}
		body, err := decodeSentence(args[1])
		if err != nil {
			return nil, err
		}
		if tag == "Forall" {
			return logic.NewForall(vars, body), nil
		}
		return logic.NewExists(vars, body), nil
	case "Probability":
		if len(args) != 2 {
			return nil, fmt.Errorf("sexpr: Probability takes a weight and a sentence, got %d operands", len(args))
		}
		var weight float64
		switch w := args[0].(type) {
		case float64:
			weight = w
		case int64:
			weight = float64(w)
		default:
			return nil, fmt.Errorf("sexpr: Probability weight is not a number: %v", args[0])
		}
		that, err := decodeSentence(args[1])
		if err != nil {
			return nil, err
		}
		return &logic.Probability{Weight: weight, That: that}, nil
	case "Evidence":
		if len(args) != 2 {
			return nil, fmt.Errorf("sexpr: Evidence takes a sentence and a truth value, got %d operands", len(args))
		}
		that, err := decodeSentence(args[0])
		if err != nil {
			return nil, err
		}
		truth, ok := args[1].(bool)
		if !ok {
			return nil, fmt.Errorf("sexpr: Evidence truth is not a boolean: %v", args[1])
		}
		return &logic.Evidence{That: that, Truth: truth}, nil
	}
	return nil, fmt.Errorf("sexpr: unknown sentence tag %q", tag)
}

func decodeVariable(args sexpList) (*logic.Variable, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("sexpr: Variable takes a name and optional domain, got %d operands", len(args))
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("sexpr: Variable name is not a string")
	}
	v := logic.NewVar(name)
	if len(args) == 2 {
		domain, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("sexpr: Variable domain is not a string")
		}
		v.Domain = domain
	}
	return v, nil
}

func decodeValue(n sexpNode) (logic.Value, error) {
	switch x := n.(type) {
	case string:
		return logic.String(x), nil
	case int64:
		return logic.Integer(x), nil
	case float64:
		return logic.Float(x), nil
	case bool:
		return logic.Boolean(x), nil
	case nil:
		return logic.Null{}, nil
	case sexpList:
		s, err := decodeSentence(x)
		if err != nil {
			return nil, err
		}
		v, ok := s.(logic.Value)
		if !ok {
			return nil, fmt.Errorf("sexpr: %s cannot appear as a term argument", s)
		}
		return v, nil
	}
	return nil, fmt.Errorf("sexpr: unexpected value %v", n)
}

func decodeAnnotations(n sexpNode) (map[string]any, error) {
	pairs, err := dictPairs(n)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		v, err := decodeAnnotationValue(p.value)
		if err != nil {
			return nil, err
		}
		out[p.key] = v
	}
	return out, nil
}

func decodeAnnotationValue(n sexpNode) (any, error) {
	switch x := n.(type) {
	case string, int64, float64, bool, nil:
		return x, nil
	case sexpList:
		if len(x) > 0 {
			if tag, ok := x[0].(sexpSym); ok && tag == "dict" {
				nested, err := decodeAnnotations(x)
				if err != nil {
					return nil, err
				}
				return nested, nil
			}
		}
		items := make([]any, 0, len(x))
		for _, item := range x {
			v, err := decodeAnnotationValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	}
	return nil, fmt.Errorf("sexpr: unexpected annotation value %v", n)
}

type dictPair struct {
	key   string
	value sexpNode
}

// dictPairs unpacks (dict ((key value) ...)) keeping declaration order.
func dictPairs(n sexpNode) ([]dictPair, error) {
	list, err := taggedList(n, "dict")
	if err != nil {
		return nil, err
	}
	if len(list) != 2 {
		return nil, fmt.Errorf("sexpr: dict takes one pair list, got %d operands", len(list)-1)
	}
	pairList, ok := list[1].(sexpList)
	if !ok {
		return nil, fmt.Errorf("sexpr: dict pairs must be a list")
	}
	out := make([]dictPair, 0, len(pairList))
	for _, p := range pairList {
		pair, ok := p.(sexpList)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("sexpr: dict entry must be a key-value pair, got %v", p)
		}
		var key string
		switch k := pair[0].(type) {
		case sexpSym:
			key = string(k)
		case string:
			key = k
		default:
			return nil, fmt.Errorf("sexpr: dict key must be a symbol, got %v", pair[0])
		}
		out = append(out, dictPair{key: key, value: pair[1]})
	}
	return out, nil
}

func taggedList(n sexpNode, tag string) (sexpList, error) {
	list, ok := n.(sexpList)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("sexpr: expected (%s ...), got %v", tag, n)
	}
	head, ok := list[0].(sexpSym)
	if !ok || string(head) != tag {
		return nil, fmt.Errorf("sexpr: expected (%s ...), got head %v", tag, list[0])
	}
	return list, nil
}

func fieldPair(n sexpNode) (string, sexpNode, error) {
	pair, ok := n.(sexpList)
	if !ok || len(pair) != 2 {
		return "", nil, fmt.Errorf("sexpr: expected a (field value) pair, got %v", n)
	}
	key, ok := pair[0].(sexpSym)
	if !ok {
		return "", nil, fmt.Errorf("sexpr: field name must be a symbol, got %v", pair[0])
	}
	return string(key), pair[1], nil
}

func optionalString(n sexpNode) (string, error) {
	switch x := n.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	}
	return "", fmt.Errorf("expected a string or null, got %v", n)
}
