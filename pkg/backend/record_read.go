package backend

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"folio/pkg/logic"
)

// ReadTheory implements Reader. Mappings are walked as yaml nodes rather
// than decoded into Go maps, which would scramble predicate argument
// order.
func (r *Record) ReadTheory(data []byte) (*logic.Theory, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, fmt.Errorf("record: empty document")
		}
		root = root.Content[0]
	}
	return decodeRecordTheory(root)
}

func decodeRecordTheory(node *yaml.Node) (*logic.Theory, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("record: expected mapping at top level, got %s", yamlKindName(node))
	}
	th := logic.NewTheory("")
	sawType := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "type":
			if value.Value != "Theory" {
				return nil, fmt.Errorf("record: expected type Theory, got %q", value.Value)
			}
			sawType = true
		case "name":
			th.Name = scalarOrEmpty(value)
		case "type_definitions":
			if value.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("record: type_definitions must be a mapping")
			}
			for j := 0; j+1 < len(value.Content); j += 2 {
				def, err := decodeRecordTypeDef(value.Content[j+1])
				if err != nil {
					return nil, err
				}
				if err := th.Registry.DeclareType(value.Content[j].Value, def); err != nil {
					return nil, fmt.Errorf("record: %w", err)
				}
			}
		case "predicate_definitions":
			items, err := sequenceItems(value, "predicate_definitions")
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				def, err := decodeRecordPredicate(item)
				if err != nil {
					return nil, err
				}
				if err := th.Registry.DeclarePredicate(def); err != nil {
					return nil, fmt.Errorf("record: %w", err)
				}
			}
		case "sentence_groups":
			items, err := sequenceItems(value, "sentence_groups")
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				g, err := decodeRecordGroup(item)
				if err != nil {
					return nil, err
				}
				th.Groups = append(th.Groups, g)
			}
		case "ground_terms":
			items, err := sequenceItems(value, "ground_terms")
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				s, err := decodeRecordSentence(item)
				if err != nil {
					return nil, err
				}
				t, ok := s.(*logic.Term)
				if !ok {
					return nil, fmt.Errorf("record: ground_terms entry is not a term")
				}
				th.Facts = append(th.Facts, t)
			}
		case "annotations":
			a, err := decodeRecordAnnotations(value)
			if err != nil {
				return nil, err
			}
			th.Annotations = a
		default:
			return nil, fmt.Errorf("record: unknown theory field %q", key)
		}
	}
	if !sawType {
		return nil, fmt.Errorf("record: missing type field")
	}
	return th, nil
}

func decodeRecordTypeDef(node *yaml.Node) (logic.TypeDef, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return logic.Alias(node.Value), nil
	case yaml.SequenceNode:
		alts := make([]string, len(node.Content))
		for i, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return logic.TypeDef{}, fmt.Errorf("record: union alternative must be a scalar")
			}
			alts[i] = item.Value
		}
		return logic.UnionOf(alts...), nil
	}
	return logic.TypeDef{}, fmt.Errorf("record: type definition must be a scalar or sequence")
}

func decodeRecordPredicate(node *yaml.Node) (*logic.PredicateDefinition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("record: predicate definition must be a mapping")
	}
	def := &logic.PredicateDefinition{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "type":
			if value.Value != "PredicateDefinition" {
				return nil, fmt.Errorf("record: expected type PredicateDefinition, got %q", value.Value)
			}
		case "predicate":
			def.Predicate = value.Value
		case "arguments":
			if value.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("record: predicate arguments must be a mapping")
			}
			for j := 0; j+1 < len(value.Content); j += 2 {
				def.Args = append(def.Args, logic.ArgSpec{
					Name: value.Content[j].Value,
					Type: value.Content[j+1].Value,
				})
			}
		case "description":
			def.Description = value.Value
		case "parents":
			items, err := sequenceItems(value, "parents")
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				def.Parents = append(def.Parents, item.Value)
			}
		default:
			return nil, fmt.Errorf("record: unknown predicate field %q", key)
		}
	}
	if def.Predicate == "" {
		return nil, fmt.Errorf("record: predicate definition missing predicate name")
	}
	return def, nil
}

func decodeRecordGroup(node *yaml.Node) (*logic.SentenceGroup, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("record: sentence group must be a mapping")
	}
	g := &logic.SentenceGroup{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "type":
			if value.Value != "SentenceGroup" {
				return nil, fmt.Errorf("record: expected type SentenceGroup, got %q", value.Value)
			}
		case "name":
			g.Name = scalarOrEmpty(value)
		case "group_type":
			kind := logic.GroupKind(value.Value)
			switch kind {
			case logic.GroupAxiom, logic.GroupGoal, logic.GroupUntagged:
				g.Kind = kind
			default:
				return nil, fmt.Errorf("record: unknown group_type %q", value.Value)
			}
		case "docstring":
			g.Doc = scalarOrEmpty(value)
		case "sentences":
			items, err := sequenceItems(value, "sentences")
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				s, err := decodeRecordSentence(item)
				if err != nil {
					return nil, err
				}
				g.Sentences = append(g.Sentences, s)
			}
		default:
			return nil, fmt.Errorf("record: unknown group field %q", key)
		}
	}
	return g, nil
}

func decodeRecordSentence(node *yaml.Node) (logic.Sentence, error) {
	typeName, args, err := typedRecordParts(node)
	if err != nil {
		return nil, err
	}
	switch typeName {
	case "Term":
		if len(args) == 0 {
			return nil, fmt.Errorf("record: Term needs a predicate")
		}
		if args[0].Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("record: Term predicate must be a scalar")
		}
		values := make([]logic.Value, 0, len(args)-1)
		for _, a := range args[1:] {
			v, err := decodeRecordValue(a)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return logic.NewTerm(args[0].Value, values...), nil
	case "Variable":
		return decodeRecordVariable(node)
	case "Not":
		if len(args) != 1 {
			return nil, fmt.Errorf("record: Not takes one argument, got %d", len(args))
		}
		op, err := decodeRecordSentence(args[0])
		if err != nil {
			return nil, err
		}
		return logic.NewNot(op), nil
	case "And", "Or":
		operands := make([]logic.Sentence, len(args))
		for i, a := range args {
			s, err := decodeRecordSentence(a)
			if err != nil {
				return nil, err
			}
			operands[i] = s
		}
		if typeName == "And" {
			return logic.NewAnd(operands...), nil
		}
		return logic.NewOr(operands...), nil
	case "Implies", "Iff":
		if len(args) != 2 {
			return nil, fmt.Errorf("record: %s takes two arguments, got %d", typeName, len(args))
		}
		left, err := decodeRecordSentence(args[0])
		if err != nil {
			return nil, err
		}
		right, err := decodeRecordSentence(args[1])
		if err != nil {
			return nil, err
		}
		if typeName == "Implies" {
			return logic.NewImplies(left, right), nil
		}
		return logic.NewIff(left, right), nil
	case "Forall", "Exists":
		if len(args) != 2 {
			return nil, fmt.Errorf("record: %s takes binders and a body, got %d arguments", typeName, len(args))
		}
		binders, err := sequenceItems(args[0], "binders")
		if err != nil {
			return nil, err
		}
		vars := make([]*logic.Variable, len(binders))
		for i, b := range binders {
			v, err := decodeRecordVariable(b)
			if err != nil {
				return nil, err
			}
			vars[i] = v
		}
		body, err := decodeRecordSentence(args[1])
		if err != nil {
			return nil, err
		}
		if typeName == "Forall" {
			return logic.NewForall(vars, body), nil
		}
		return logic.NewExists(vars, body), nil
	case "Probability":
		if len(args) != 2 {
			return nil, fmt.Errorf("record: Probability takes a weight and a sentence, got %d arguments", len(args))
		}
		if args[0].Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("record: Probability weight must be a scalar")
		}
		w, err := strconv.ParseFloat(args[0].Value, 64)
		if err != nil {
			return nil, fmt.Errorf("record: bad probability weight %q", args[0].Value)
		}
		that, err := decodeRecordSentence(args[1])
		if err != nil {
			return nil, err
		}
		return &logic.Probability{Weight: w, That: that}, nil
	case "Evidence":
		if len(args) != 2 {
			return nil, fmt.Errorf("record: Evidence takes a sentence and a truth value, got %d arguments", len(args))
		}
		that, err := decodeRecordSentence(args[0])
		if err != nil {
			return nil, err
		}
		if args[1].Tag != "!!bool" {
			return nil, fmt.Errorf("record: Evidence truth must be a boolean")
		}
		truth, err := strconv.ParseBool(args[1].Value)
		if err != nil {
			return nil, fmt.Errorf("record: bad evidence truth %q", args[1].Value)
		}
		return &logic.Evidence{That: that, Truth: truth}, nil
	}
	return nil, fmt.Errorf("record: unknown sentence type %q", typeName)
}

func decodeRecordVariable(node *yaml.Node) (*logic.Variable, error) {
	typeName, args, err := typedRecordParts(node)
	if err != nil {
		return nil, err
	}
	if typeName != "Variable" {
		return nil, fmt.Errorf("record: expected Variable, got %q", typeName)
	}
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("record: Variable takes a name and optional domain, got %d arguments", len(args))
	}
	v := logic.NewVar(args[0].Value)
	if len(args) == 2 {
		v.Domain = args[1].Value
	}
	return v, nil
}

func decodeRecordValue(node *yaml.Node) (logic.Value, error) {
	switch node.Kind {
	case yaml.MappingNode:
		s, err := decodeRecordSentence(node)
		if err != nil {
			return nil, err
		}
		v, ok := s.(logic.Value)
		if !ok {
			return nil, fmt.Errorf("record: %T cannot appear as a term argument", s)
		}
		return v, nil
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!str":
			return logic.String(node.Value), nil
		case "!!int":
			i, err := strconv.ParseInt(node.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("record: bad integer %q", node.Value)
			}
			return logic.Integer(i), nil
		case "!!float":
			f, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("record: bad float %q", node.Value)
			}
			return logic.Float(f), nil
		case "!!bool":
			b, err := strconv.ParseBool(node.Value)
			if err != nil {
				return nil, fmt.Errorf("record: bad boolean %q", node.Value)
			}
			return logic.Boolean(b), nil
		case "!!null":
			return logic.Null{}, nil
		}
		return nil, fmt.Errorf("record: unsupported scalar tag %s", node.Tag)
	}
	return nil, fmt.Errorf("record: term argument must be a scalar or mapping, got %s", yamlKindName(node))
}

func decodeRecordAnnotations(node *yaml.Node) (map[string]any, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("record: annotations must be a mapping")
	}
	out := make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := decodeRecordAnnotationValue(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		out[node.Content[i].Value] = v
	}
	return out, nil
}

func decodeRecordAnnotationValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!str":
			return node.Value, nil
		case "!!int":
			i, err := strconv.ParseInt(node.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("record: bad integer %q", node.Value)
			}
			return i, nil
		case "!!float":
			f, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("record: bad float %q", node.Value)
			}
			return f, nil
		case "!!bool":
			b, err := strconv.ParseBool(node.Value)
			if err != nil {
				return nil, fmt.Errorf("record: bad boolean %q", node.Value)
			}
			return b, nil
		case "!!null":
			return nil, nil
		}
		return node.Value, nil
	case yaml.SequenceNode:
		items := make([]any, len(node.Content))
		for i, item := range node.Content {
			v, err := decodeRecordAnnotationValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := decodeRecordAnnotationValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[node.Content[i].Value] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("record: unsupported annotation value")
}

func typedRecordParts(node *yaml.Node) (string, []*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return "", nil, fmt.Errorf("record: sentence must be a mapping, got %s", yamlKindName(node))
	}
	var typeName string
	var args []*yaml.Node
	sawArgs := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "type":
			typeName = value.Value
		case "arguments":
			items, err := sequenceItems(value, "arguments")
			if err != nil {
				return "", nil, err
			}
			args = items
			sawArgs = true
		default:
			return "", nil, fmt.Errorf("record: unknown sentence field %q", key)
		}
	}
	if typeName == "" {
		return "", nil, fmt.Errorf("record: sentence missing type field")
	}
	if !sawArgs {
		return "", nil, fmt.Errorf("record: sentence %s missing arguments", typeName)
	}
	return typeName, args, nil
}

func sequenceItems(node *yaml.Node, field string) ([]*yaml.Node, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("record: %s must be a sequence, got %s", field, yamlKindName(node))
	}
	return node.Content, nil
}

func scalarOrEmpty(node *yaml.Node) string {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return ""
	}
	return node.Value
}

func yamlKindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
