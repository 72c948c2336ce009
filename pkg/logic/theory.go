package logic

import (
	"fmt"
	"sort"
)

// GroupKind tags a sentence group's role.
type GroupKind string

const (
	// GroupAxiom marks assumptions.
	GroupAxiom GroupKind = "axiom"
	// GroupGoal marks conjectures to prove or query.
	GroupGoal GroupKind = "goal"
	// GroupUntagged marks groups with no declared role; backends treat
	// them as axioms.
	GroupUntagged GroupKind = ""
)

// SentenceGroup is a named, ordered collection of sentences.
type SentenceGroup struct {
	Name      string
	Kind      GroupKind
	Doc       string
	Sentences []Sentence
}

// Theory aggregates declarations, sentence groups, ground facts, and
// free-form annotations under a name.
type Theory struct {
	Name        string
	Registry    *Registry
	Groups      []*SentenceGroup
	Facts       []*Term
	Annotations map[string]any
}

// NewTheory returns an empty theory with the given name.
func NewTheory(name string) *Theory {
	return &Theory{Name: name, Registry: NewRegistry()}
}

// Add appends sentences to the trailing untagged "Sentences" group,
// creating it if the theory's last group is named or tagged.
func (t *Theory) Add(sentences ...Sentence) {
	if len(sentences) == 0 {
		return
	}
	if n := len(t.Groups); n > 0 {
		last := t.Groups[n-1]
		if last.Name == "Sentences" && last.Kind == GroupUntagged {
			last.Sentences = append(last.Sentences, sentences...)
			return
		}
	}
	t.Groups = append(t.Groups, &SentenceGroup{Name: "Sentences", Sentences: sentences})
}

// AddGroup appends a sentence group.
func (t *Theory) AddGroup(g *SentenceGroup) {
	t.Groups = append(t.Groups, g)
}

// AddFact appends a ground fact. Terms containing variables are rejected.
func (t *Theory) AddFact(f *Term) error {
	if !IsGround(f) {
		return fmt.Errorf("fact %s is not ground: %w", f, ErrUnsafeHeadVariable)
	}
	t.Facts = append(t.Facts, f)
	return nil
}

// Group finds a sentence group by name.
func (t *Theory) Group(name string) (*SentenceGroup, bool) {
	for _, g := range t.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Sentences returns every group's sentences in declaration order.
func (t *Theory) Sentences() []Sentence {
	var out []Sentence
	for _, g := range t.Groups {
		out = append(out, g.Sentences...)
	}
	return out
}

// Goals returns the sentences of all goal-tagged groups.
func (t *Theory) Goals() []Sentence {
	var out []Sentence
	for _, g := range t.Groups {
		if g.Kind == GroupGoal {
			out = append(out, g.Sentences...)
		}
	}
	return out
}

// Annotate sets a free-form annotation.
func (t *Theory) Annotate(key string, value any) {
	if t.Annotations == nil {
		t.Annotations = map[string]any{}
	}
	t.Annotations[key] = value
}

// Annotation looks up a free-form annotation.
func (t *Theory) Annotation(key string) (any, bool) {
	v, ok := t.Annotations[key]
	return v, ok
}

// AnnotationKeys returns annotation keys in sorted order.
func (t *Theory) AnnotationKeys() []string {
	keys := make([]string, 0, len(t.Annotations))
	for k := range t.Annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnrollType expands a type alias to its primitive types.
func (t *Theory) UnrollType(name string) ([]string, error) {
	return t.Registry.ResolveType(name)
}

// Merge folds another theory into this one. Declarations must agree
// (identical redeclarations are fine, conflicts fail). Groups with the
// same name are merged; other groups, facts, and annotations are appended,
// the other theory's annotations winning on key conflicts.
func (t *Theory) Merge(other *Theory) error {
	for _, name := range other.Registry.TypeNames() {
		def, _ := other.Registry.Type(name)
		if err := t.Registry.DeclareType(name, def); err != nil {
			return err
		}
	}
	for _, def := range other.Registry.Predicates() {
		if err := t.Registry.DeclarePredicate(def); err != nil {
			return err
		}
	}
	for _, g := range other.Groups {
		if existing, ok := t.Group(g.Name); ok && existing.Kind == g.Kind {
			existing.Sentences = append(existing.Sentences, g.Sentences...)
			continue
		}
		t.Groups = append(t.Groups, &SentenceGroup{
			Name:      g.Name,
			Kind:      g.Kind,
			Doc:       g.Doc,
			Sentences: append([]Sentence(nil), g.Sentences...),
		})
	}
	t.Facts = append(t.Facts, other.Facts...)
	for _, k := range other.AnnotationKeys() {
		t.Annotate(k, other.Annotations[k])
	}
	return nil
}

// ImpliesFromParents derives one implication per declared parent of each
// predicate: holding the child entails holding the parent on the argument
// positions they share by name. The derived sentences are returned as a
// group named "Inferred"; predicates whose parents are undeclared or share
// no argument names are reported as diagnostics.
func ImpliesFromParents(t *Theory) (*SentenceGroup, []Diagnostic) {
	group := &SentenceGroup{Name: "Inferred", Kind: GroupAxiom}
	var diags []Diagnostic
	for _, child := range t.Registry.Predicates() {
		for _, parentName := range child.Parents {
			parent, ok := t.Registry.Predicate(parentName)
			if !ok {
				diags = append(diags, Diagf(CodeUnknownType, nil,
					"predicate %s: parent %s is not declared", child.Predicate, parentName))
				continue
			}
			childVars := make([]*Variable, len(child.Args))
			childArgs := make([]Value, len(child.Args))
			byName := map[string]*Variable{}
			for i, arg := range child.Args {
				v := NewVar(arg.Name)
				childVars[i] = v
				childArgs[i] = v
				byName[arg.Name] = v
			}
			parentArgs := make([]Value, len(parent.Args))
			missing := false
			for i, arg := range parent.Args {
				v, ok := byName[arg.Name]
				if !ok {
					diags = append(diags, Diagf(CodeArityMismatch, nil,
						"predicate %s: parent %s argument %s has no matching child argument",
						child.Predicate, parentName, arg.Name))
					missing = true
					break
				}
				parentArgs[i] = v
			}
			if missing {
				continue
			}
			group.Sentences = append(group.Sentences, NewForall(childVars,
				NewImplies(
					NewTerm(child.Predicate, childArgs...),
					NewTerm(parent.Predicate, parentArgs...),
				)))
		}
	}
	return group, diags
}
