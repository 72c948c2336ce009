package logic

// Equal reports whether two sentences are structurally identical. Operand
// order matters; no normalization is applied.
func Equal(a, b Sentence) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Term:
		y, ok := b.(*Term)
		return ok && EqualTerm(x, y)
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name && x.Domain == y.Domain
	case *Not:
		y, ok := b.(*Not)
		return ok && Equal(x.Operand, y.Operand)
	case *And:
		y, ok := b.(*And)
		return ok && equalSlices(x.Operands, y.Operands)
	case *Or:
		y, ok := b.(*Or)
		return ok && equalSlices(x.Operands, y.Operands)
	case *Implies:
		y, ok := b.(*Implies)
		return ok && Equal(x.Antecedent, y.Antecedent) && Equal(x.Consequent, y.Consequent)
	case *Iff:
		y, ok := b.(*Iff)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Forall:
		y, ok := b.(*Forall)
		return ok && equalVars(x.Vars, y.Vars) && Equal(x.Body, y.Body)
	case *Exists:
		y, ok := b.(*Exists)
		return ok && equalVars(x.Vars, y.Vars) && Equal(x.Body, y.Body)
	case *Probability:
		y, ok := b.(*Probability)
		return ok && x.Weight == y.Weight && Equal(x.That, y.That)
	case *Evidence:
		y, ok := b.(*Evidence)
		return ok && x.Truth == y.Truth && Equal(x.That, y.That)
	}
	return false
}

// EqualTerm reports whether two terms have the same predicate and
// structurally identical arguments.
func EqualTerm(a, b *Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Predicate != b.Predicate || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !EqualValue(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

// EqualValue reports whether two term arguments are structurally identical.
func EqualValue(a, b Value) bool {
	switch x := a.(type) {
	case *Term:
		y, ok := b.(*Term)
		return ok && EqualTerm(x, y)
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name && x.Domain == y.Domain
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Integer:
		y, ok := b.(Integer)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && x == y
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x == y
	case Null:
		_, ok := b.(Null)
		return ok
	}
	return false
}

func equalSlices(a, b []Sentence) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalVars(a, b []*Variable) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Domain != b[i].Domain {
			return false
		}
	}
	return true
}

// FreeVars returns the names of all variables occurring in s. Quantifier
// binders count as occurrences; shadowing is not tracked.
func FreeVars(s Sentence) map[string]bool {
	vars := map[string]bool{}
	collectVars(s, vars)
	return vars
}

func collectVars(s Sentence, into map[string]bool) {
	switch x := s.(type) {
	case *Term:
		for _, a := range x.Args {
			collectValueVars(a, into)
		}
	case *Variable:
		into[x.Name] = true
	case *Not:
		collectVars(x.Operand, into)
	case *And:
		for _, op := range x.Operands {
			collectVars(op, into)
		}
	case *Or:
		for _, op := range x.Operands {
			collectVars(op, into)
		}
	case *Implies:
		collectVars(x.Antecedent, into)
		collectVars(x.Consequent, into)
	case *Iff:
		collectVars(x.Left, into)
		collectVars(x.Right, into)
	case *Forall:
		for _, v := range x.Vars {
			into[v.Name] = true
		}
		collectVars(x.Body, into)
	case *Exists:
		for _, v := range x.Vars {
			into[v.Name] = true
		}
		collectVars(x.Body, into)
	case *Probability:
		collectVars(x.That, into)
	case *Evidence:
		collectVars(x.That, into)
	}
}

func collectValueVars(v Value, into map[string]bool) {
	switch x := v.(type) {
	case *Variable:
		into[x.Name] = true
	case *Term:
		for _, a := range x.Args {
			collectValueVars(a, into)
		}
	}
}

// IsGround reports whether t contains no variables.
func IsGround(t *Term) bool {
	vars := map[string]bool{}
	for _, a := range t.Args {
		collectValueVars(a, vars)
	}
	return len(vars) == 0
}

// Substitute replaces every occurrence of the named variables with the
// given values and returns a new sentence. The input is not modified.
func Substitute(s Sentence, bindings map[string]Value) Sentence {
	if len(bindings) == 0 {
		return s
	}
	switch x := s.(type) {
	case *Term:
		return substituteTerm(x, bindings)
	case *Variable:
		if v, ok := bindings[x.Name]; ok {
			if sent, ok := v.(Sentence); ok {
				return sent
			}
		}
		return x
	case *Not:
		return &Not{Operand: Substitute(x.Operand, bindings)}
	case *And:
		return &And{Operands: substituteSlice(x.Operands, bindings)}
	case *Or:
		return &Or{Operands: substituteSlice(x.Operands, bindings)}
	case *Implies:
		return &Implies{
			Antecedent: Substitute(x.Antecedent, bindings),
			Consequent: Substitute(x.Consequent, bindings),
		}
	case *Iff:
		return &Iff{Left: Substitute(x.Left, bindings), Right: Substitute(x.Right, bindings)}
	case *Forall:
		return &Forall{Vars: dropBound(x.Vars, bindings), Body: Substitute(x.Body, bindings)}
	case *Exists:
		return &Exists{Vars: dropBound(x.Vars, bindings), Body: Substitute(x.Body, bindings)}
	case *Probability:
		return &Probability{Weight: x.Weight, That: Substitute(x.That, bindings)}
	case *Evidence:
		return &Evidence{That: Substitute(x.That, bindings), Truth: x.Truth}
	}
	return s
}

func substituteTerm(t *Term, bindings map[string]Value) *Term {
	args := make([]Value, len(t.Args))
	for i, a := range t.Args {
		args[i] = substituteValue(a, bindings)
	}
	return &Term{Predicate: t.Predicate, Args: args}
}

func substituteValue(v Value, bindings map[string]Value) Value {
	switch x := v.(type) {
	case *Variable:
		if b, ok := bindings[x.Name]; ok {
			return b
		}
		return x
	case *Term:
		return substituteTerm(x, bindings)
	}
	return v
}

func substituteSlice(operands []Sentence, bindings map[string]Value) []Sentence {
	out := make([]Sentence, len(operands))
	for i, op := range operands {
		out[i] = Substitute(op, bindings)
	}
	return out
}

func dropBound(vars []*Variable, bindings map[string]Value) []*Variable {
	out := make([]*Variable, 0, len(vars))
	for _, v := range vars {
		if _, bound := bindings[v.Name]; !bound {
			out = append(out, v)
		}
	}
	return out
}

// CollectTerms returns every Term in s, including terms nested inside
// other terms' arguments, in depth-first order.
func CollectTerms(s Sentence) []*Term {
	var out []*Term
	collectTerms(s, &out)
	return out
}

func collectTerms(s Sentence, into *[]*Term) {
	switch x := s.(type) {
	case *Term:
		*into = append(*into, x)
		for _, a := range x.Args {
			if nested, ok := a.(*Term); ok {
				collectTerms(nested, into)
			}
		}
	case *Variable:
	case *Not:
		collectTerms(x.Operand, into)
	case *And:
		for _, op := range x.Operands {
			collectTerms(op, into)
		}
	case *Or:
		for _, op := range x.Operands {
			collectTerms(op, into)
		}
	case *Implies:
		collectTerms(x.Antecedent, into)
		collectTerms(x.Consequent, into)
	case *Iff:
		collectTerms(x.Left, into)
		collectTerms(x.Right, into)
	case *Forall:
		collectTerms(x.Body, into)
	case *Exists:
		collectTerms(x.Body, into)
	case *Probability:
		collectTerms(x.That, into)
	case *Evidence:
		collectTerms(x.That, into)
	}
}
