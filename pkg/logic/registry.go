package logic

import (
	"fmt"
	"strings"
)

// Primitive type names understood by every backend.
const (
	TypeStr   = "str"
	TypeInt   = "int"
	TypeFloat = "float"
	TypeBool  = "bool"
)

func isPrimitiveType(name string) bool {
	switch name {
	case TypeStr, TypeInt, TypeFloat, TypeBool:
		return true
	}
	return false
}

// TypeDef is the target of a named type alias: a single type name, or an
// ordered union of alternatives. Alternatives may reference other aliases.
type TypeDef struct {
	Alternatives []string
}

// Alias builds a plain (single-target) type alias.
func Alias(target string) TypeDef {
	return TypeDef{Alternatives: []string{target}}
}

// UnionOf builds a union type alias.
func UnionOf(targets ...string) TypeDef {
	return TypeDef{Alternatives: targets}
}

// IsUnion reports whether the definition has more than one alternative.
func (d TypeDef) IsUnion() bool { return len(d.Alternatives) > 1 }

func (d TypeDef) equal(o TypeDef) bool {
	if len(d.Alternatives) != len(o.Alternatives) {
		return false
	}
	for i := range d.Alternatives {
		if d.Alternatives[i] != o.Alternatives[i] {
			return false
		}
	}
	return true
}

// ArgSpec is one named, typed argument position of a predicate.
type ArgSpec struct {
	Name string
	Type string
}

// PredicateDefinition declares a predicate: its name, ordered argument
// list, optional description, and optional parent predicates.
type PredicateDefinition struct {
	Predicate   string
	Args        []ArgSpec
	Description string
	Parents     []string
}

// Arity returns the number of declared arguments.
func (p *PredicateDefinition) Arity() int { return len(p.Args) }

// Signature renders the declaration as "Name(arg: type, ...)".
func (p *PredicateDefinition) Signature() string {
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		parts[i] = a.Name + ": " + a.Type
	}
	return p.Predicate + "(" + strings.Join(parts, ", ") + ")"
}

func (p *PredicateDefinition) equal(o *PredicateDefinition) bool {
	if p.Predicate != o.Predicate || p.Description != o.Description {
		return false
	}
	if len(p.Args) != len(o.Args) || len(p.Parents) != len(o.Parents) {
		return false
	}
	for i := range p.Args {
		if p.Args[i] != o.Args[i] {
			return false
		}
	}
	for i := range p.Parents {
		if p.Parents[i] != o.Parents[i] {
			return false
		}
	}
	return true
}

// Registry holds a theory's type aliases and predicate declarations in
// declaration order.
type Registry struct {
	typeOrder []string
	types     map[string]TypeDef
	predOrder []string
	preds     map[string]*PredicateDefinition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: map[string]TypeDef{},
		preds: map[string]*PredicateDefinition{},
	}
}

// DeclareType registers a named type alias. Redeclaring a name with an
// identical definition is a no-op; a conflicting redeclaration fails with
// ErrDuplicateDeclaration.
func (r *Registry) DeclareType(name string, def TypeDef) error {
	if len(def.Alternatives) == 0 {
		return fmt.Errorf("type %q: %w: empty definition", name, ErrUnknownType)
	}
	if existing, ok := r.types[name]; ok {
		if existing.equal(def) {
			return nil
		}
		return fmt.Errorf("type %q: %w", name, ErrDuplicateDeclaration)
	}
	r.typeOrder = append(r.typeOrder, name)
	r.types[name] = def
	return nil
}

// DeclarePredicate registers a predicate declaration. Redeclaring with an
// identical definition is a no-op; a conflicting redeclaration fails with
// ErrDuplicateDeclaration.
func (r *Registry) DeclarePredicate(def *PredicateDefinition) error {
	if def.Predicate == "" {
		return fmt.Errorf("%w: predicate with empty name", ErrDuplicateDeclaration)
	}
	if existing, ok := r.preds[def.Predicate]; ok {
		if existing.equal(def) {
			return nil
		}
		return fmt.Errorf("predicate %q: %w", def.Predicate, ErrDuplicateDeclaration)
	}
	r.predOrder = append(r.predOrder, def.Predicate)
	r.preds[def.Predicate] = def
	return nil
}

// TypeNames returns declared alias names in declaration order.
func (r *Registry) TypeNames() []string {
	out := make([]string, len(r.typeOrder))
	copy(out, r.typeOrder)
	return out
}

// Type looks up a type alias by name.
func (r *Registry) Type(name string) (TypeDef, bool) {
	d, ok := r.types[name]
	return d, ok
}

// PredicateNames returns declared predicate names in declaration order.
func (r *Registry) PredicateNames() []string {
	out := make([]string, len(r.predOrder))
	copy(out, r.predOrder)
	return out
}

// Predicate looks up a predicate declaration by name.
func (r *Registry) Predicate(name string) (*PredicateDefinition, bool) {
	p, ok := r.preds[name]
	return p, ok
}

// Predicates returns all declarations in declaration order.
func (r *Registry) Predicates() []*PredicateDefinition {
	out := make([]*PredicateDefinition, 0, len(r.predOrder))
	for _, name := range r.predOrder {
		out = append(out, r.preds[name])
	}
	return out
}

// ResolveType expands a type name to the primitive types it may hold,
// following alias chains and flattening unions. Alias cycles and
// references to undeclared non-primitive names fail with ErrUnknownType.
func (r *Registry) ResolveType(name string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	if err := r.resolveType(name, seen, &out); err != nil {
		return nil, err
	}
	return dedupe(out), nil
}

func (r *Registry) resolveType(name string, seen map[string]bool, out *[]string) error {
	if isPrimitiveType(name) {
		*out = append(*out, name)
		return nil
	}
	if seen[name] {
		return fmt.Errorf("type %q: %w: alias cycle", name, ErrUnknownType)
	}
	def, ok := r.types[name]
	if !ok {
		return fmt.Errorf("type %q: %w", name, ErrUnknownType)
	}
	seen[name] = true
	for _, alt := range def.Alternatives {
		if err := r.resolveType(alt, seen, out); err != nil {
			return err
		}
	}
	delete(seen, name)
	return nil
}

// CheckTerm validates a term against the registry. Undeclared predicates
// pass (declarations are optional); declared predicates must be applied at
// their declared arity. Builtin predicates are exempt.
func (r *Registry) CheckTerm(t *Term) error {
	if IsBuiltin(t.Predicate) {
		return nil
	}
	def, ok := r.preds[t.Predicate]
	if !ok {
		return nil
	}
	if len(t.Args) != def.Arity() {
		return fmt.Errorf("%s applied to %d args, declared %s: %w",
			t.Predicate, len(t.Args), def.Signature(), ErrArityMismatch)
	}
	return nil
}

// Validate checks every declared predicate's argument types against the
// registry, returning one diagnostic per unresolvable type.
func (r *Registry) Validate() []Diagnostic {
	var diags []Diagnostic
	for _, name := range r.predOrder {
		def := r.preds[name]
		for _, arg := range def.Args {
			if arg.Type == "" {
				continue
			}
			if _, err := r.ResolveType(arg.Type); err != nil {
				diags = append(diags, Diagf(CodeUnknownType, nil,
					"predicate %s: argument %s: %v", name, arg.Name, err))
			}
		}
	}
	for _, name := range r.typeOrder {
		if _, err := r.ResolveType(name); err != nil {
			diags = append(diags, Diagf(CodeUnknownType, nil, "%v", err))
		}
	}
	return diags
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
