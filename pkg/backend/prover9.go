package backend

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"folio/pkg/logic"
)

// Prover9 renders theories in Prover9/LADR syntax: an assumptions list
// holding axiom and untagged groups plus ground facts, and a goals list
// holding goal groups. Variables are lowercased, string constants get an
// s_ prefix, and floats become exact rational terms.
type Prover9 struct{}

// NewProver9 builds a Prover9 emitter.
func NewProver9() *Prover9 { return &Prover9{} }

// Format implements Compiler.
func (p *Prover9) Format() Format { return FormatProver9 }

// CompileTheory implements Compiler.
func (p *Prover9) CompileTheory(th *logic.Theory) (Result, error) {
	var b strings.Builder
	var diags []logic.Diagnostic
	fmt.Fprintf(&b, "%% Problem: %s\n", th.Name)
	b.WriteString("formulas(assumptions).\n")
	for _, g := range th.Groups {
		if g.Kind == logic.GroupGoal {
			continue
		}
		diags = p.writeGroup(&b, g, diags)
	}
	for _, f := range th.Facts {
		diags = p.writeFormula(&b, "", f, diags)
	}
	b.WriteString("end_of_list.\n\nformulas(goals).\n")
	for _, g := range th.Groups {
		if g.Kind != logic.GroupGoal {
			continue
		}
		diags = p.writeGroup(&b, g, diags)
	}
	b.WriteString("end_of_list.\n")
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

// CompileGroup implements Compiler.
func (p *Prover9) CompileGroup(_ *logic.Theory, g *logic.SentenceGroup) (Result, error) {
	var b strings.Builder
	diags := p.writeGroup(&b, g, nil)
	return Result{Text: b.String(), Diagnostics: diags}, nil
}

func (p *Prover9) writeGroup(b *strings.Builder, g *logic.SentenceGroup, diags []logic.Diagnostic) []logic.Diagnostic {
	for _, s := range g.Sentences {
		diags = p.writeFormula(b, g.Name, s, diags)
	}
	return diags
}

func (p *Prover9) writeFormula(b *strings.Builder, group string, s logic.Sentence, diags []logic.Diagnostic) []logic.Diagnostic {
	formula, err := prover9Formula(s)
	if err != nil {
		d := logic.Diagf(diagCode(err), s, "%v", err)
		d.Group = group
		diags = append(diags, d)
		b.WriteString(skipComment(d))
		return diags
	}
	b.WriteString("    " + formula + ".\n")
	return diags
}

func prover9Formula(s logic.Sentence) (string, error) {
	switch x := s.(type) {
	case *logic.Term:
		return prover9Term(x)
	case *logic.Variable:
		return strings.ToLower(x.Name), nil
	case *logic.Not:
		sub, err := prover9Formula(x.Operand)
		if err != nil {
			return "", err
		}
		return "- (" + sub + ")", nil
	case *logic.And:
		return prover9Join(x.Operands, " & ", "true")
	case *logic.Or:
		return prover9Join(x.Operands, " | ", "false")
	case *logic.Implies:
		a, err := prover9Formula(x.Antecedent)
		if err != nil {
			return "", err
		}
		c, err := prover9Formula(x.Consequent)
		if err != nil {
			return "", err
		}
		return "(" + a + " -> " + c + ")", nil
	case *logic.Iff:
		l, err := prover9Formula(x.Left)
		if err != nil {
			return "", err
		}
		r, err := prover9Formula(x.Right)
		if err != nil {
			return "", err
		}
		return "(" + l + " <-> " + r + ")", nil
	case *logic.Forall:
		return prover9Quantified("all", x.Vars, x.Body)
	case *logic.Exists:
		return prover9Quantified("exists", x.Vars, x.Body)
	}
	return "", fmt.Errorf("%w: %s has no Prover9 form", logic.ErrUnsupportedConstraintShape, s)
}

// prover9Quantified chains one quantifier per variable, which is the form
// the LADR parser accepts.
func prover9Quantified(op string, vars []*logic.Variable, body logic.Sentence) (string, error) {
	sub, err := prover9Formula(body)
	if err != nil {
		return "", err
	}
	var prefix strings.Builder
	for _, v := range vars {
		prefix.WriteString(op + " " + strings.ToLower(v.Name) + " ")
	}
	return prefix.String() + "(" + sub + ")", nil
}

func prover9Join(operands []logic.Sentence, sep, empty string) (string, error) {
	if len(operands) == 0 {
		return empty, nil
	}
	parts := make([]string, len(operands))
	for i, op := range operands {
		sub, err := prover9Formula(op)
		if err != nil {
			return "", err
		}
		parts[i] = sub
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func prover9Term(t *logic.Term) (string, error) {
	if len(t.Args) == 0 {
		return t.Predicate, nil
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		txt, err := prover9Value(a)
		if err != nil {
			return "", err
		}
		args[i] = txt
	}
	return t.Predicate + "(" + strings.Join(args, ", ") + ")", nil
}

func prover9Value(v logic.Value) (string, error) {
	switch x := v.(type) {
	case *logic.Variable:
		return strings.ToLower(x.Name), nil
	case *logic.Term:
		return prover9Term(x)
	case logic.String:
		return "s_" + strings.ReplaceAll(string(x), " ", "_"), nil
	case logic.Integer:
		return strconv.FormatInt(int64(x), 10), nil
	case logic.Float:
		num, den := rationalize(float64(x))
		return "rational(" + num + "," + den + ")", nil
	case logic.Boolean:
		return strconv.FormatBool(bool(x)), nil
	case logic.Null:
		return "null", nil
	}
	return "", fmt.Errorf("%w: unrenderable value %v", logic.ErrUnsupportedConstraintShape, v)
}

// maxRationalDenominator bounds the denominators produced for float
// constants, so 0.9 renders as 9/10 rather than its exact binary fraction.
const maxRationalDenominator = 1_000_000

// rationalize converts a float to the closest fraction with a bounded
// denominator, by walking the float's continued-fraction convergents.
func rationalize(f float64) (num, den string) {
	exact := new(big.Rat).SetFloat64(f)
	if exact == nil {
		return "0", "1"
	}
	limited := limitDenominator(exact, big.NewInt(maxRationalDenominator))
	return limited.Num().String(), limited.Denom().String()
}

func limitDenominator(r *big.Rat, md *big.Int) *big.Rat {
	if r.Denom().Cmp(md) <= 0 {
		return r
	}
	neg := r.Sign() < 0
	abs := new(big.Rat).Abs(r)

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n := new(big.Int).Set(abs.Num())
	d := new(big.Int).Set(abs.Denom())
	for {
		a := new(big.Int).Quo(n, d)
		q2 := new(big.Int).Add(q0, new(big.Int).Mul(a, q1))
		if q2.Cmp(md) > 0 {
			break
		}
		p2 := new(big.Int).Add(p0, new(big.Int).Mul(a, p1))
		p0, q0, p1, q1 = p1, q1, p2, q2
		n, d = d, new(big.Int).Sub(n, new(big.Int).Mul(a, d))
	}
	k := new(big.Int).Quo(new(big.Int).Sub(md, q0), q1)
	first := new(big.Rat).SetFrac(
		new(big.Int).Add(p0, new(big.Int).Mul(k, p1)),
		new(big.Int).Add(q0, new(big.Int).Mul(k, q1)),
	)
	second := new(big.Rat).SetFrac(p1, q1)

	d1 := new(big.Rat).Abs(new(big.Rat).Sub(first, abs))
	d2 := new(big.Rat).Abs(new(big.Rat).Sub(second, abs))
	best := first
	if d2.Cmp(d1) <= 0 {
		best = second
	}
	if neg {
		best = new(big.Rat).Neg(best)
	}
	return best
}
