package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/envelope3d/pkg/envelope"
	"github.com/chazu/envelope3d/pkg/kernel"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpEnvelope holds an envelope by pointer so merge, merge-point and
// intersect can update it in place, matching the Go methods.
type sexpEnvelope struct {
	env envelope.Envelope3D
}

func (e *sexpEnvelope) SexpString(ps *zygo.PrintState) string {
	v := e.env
	return fmt.Sprintf("(envelope %g %g %g %g %g %g)", v.MinX, v.MinY, v.MinZ, v.MaxX, v.MaxY, v.MaxZ)
}
func (e *sexpEnvelope) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel.Solid.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return "(solid " + s.desc + ")"
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A keyword with no following value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toFloats extracts every element of args as a float64.
func toFloats(args []zygo.Sexp) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// toEnvelope extracts the envelope wrapper from a Sexp.
func toEnvelope(s zygo.Sexp) (*sexpEnvelope, error) {
	if e, ok := s.(*sexpEnvelope); ok {
		return e, nil
	}
	return nil, fmt.Errorf("expected envelope, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a kernel.Solid from a Sexp.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if sol, ok := s.(*sexpSolid); ok {
		return sol.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// twoEnvelopes extracts exactly two envelope arguments for builtin name.
func twoEnvelopes(name string, args []zygo.Sexp) (*sexpEnvelope, *sexpEnvelope, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s requires exactly 2 arguments, got %d", name, len(args))
	}
	a, err := toEnvelope(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: first: %w", name, err)
	}
	b, err := toEnvelope(args[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: second: %w", name, err)
	}
	return a, b, nil
}

func sexpBool(v bool) zygo.Sexp {
	return &zygo.SexpBool{Val: v}
}

// ---------------------------------------------------------------------------
// Envelope construction
// ---------------------------------------------------------------------------

// envelopeFromArgs implements the call shapes of (envelope ...):
//
//	(envelope)                                  empty sentinel
//	(envelope minx miny maxx maxy)              2D, Z = 0
//	(envelope minx miny minz maxx maxy maxz)    3D
//	(envelope :min-x 1 :min-y 2 :max-x 3 :max-y 4 [:min-z 0] [:max-z 5])
func envelopeFromArgs(args []zygo.Sexp) (envelope.Envelope3D, error) {
	pa := parseArgs(args)
	if len(pa.kw) > 0 {
		if len(pa.positional) > 0 {
			return envelope.Envelope3D{}, fmt.Errorf("envelope: cannot mix keyword and positional bounds")
		}
		return envelopeFromKeywords(pa.kw)
	}

	vals, err := toFloats(pa.positional)
	if err != nil {
		return envelope.Envelope3D{}, fmt.Errorf("envelope: %w", err)
	}
	switch len(vals) {
	case 0:
		return envelope.New(), nil
	case 4:
		return envelope.New2D(vals[0], vals[1], vals[2], vals[3]), nil
	case 6:
		return envelope.FromMinMax(
			[3]float64{vals[0], vals[1], vals[2]},
			[3]float64{vals[3], vals[4], vals[5]},
		), nil
	}
	return envelope.Envelope3D{}, fmt.Errorf("envelope takes 0, 4 or 6 bounds, got %d", len(vals))
}

// envelopeFromKeywords builds an envelope from :min-x style keywords.
// The X and Y keywords are required; the Z keywords default to 0.
func envelopeFromKeywords(kw map[string]zygo.Sexp) (envelope.Envelope3D, error) {
	var b envelope.Bounds
	required := []struct {
		name string
		dst  *float64
	}{
		{"min-x", &b.MinX},
		{"min-y", &b.MinY},
		{"max-x", &b.MaxX},
		{"max-y", &b.MaxY},
	}
	for _, r := range required {
		v, ok := kw[r.name]
		if !ok {
			return envelope.Envelope3D{}, fmt.Errorf("envelope: missing :%s", r.name)
		}
		f, err := toFloat64(v)
		if err != nil {
			return envelope.Envelope3D{}, fmt.Errorf("envelope: %s: %w", r.name, err)
		}
		*r.dst = f
	}

	optional := []struct {
		name string
		dst  **float64
	}{
		{"min-z", &b.MinZ},
		{"max-z", &b.MaxZ},
	}
	for _, o := range optional {
		v, ok := kw[o.name]
		if !ok {
			continue
		}
		f, err := toFloat64(v)
		if err != nil {
			return envelope.Envelope3D{}, fmt.Errorf("envelope: %s: %w", o.name, err)
		}
		*o.dst = &f
	}

	for name := range kw {
		switch name {
		case "min-x", "min-y", "min-z", "max-x", "max-y", "max-z":
		default:
			return envelope.Envelope3D{}, fmt.Errorf("envelope: unknown keyword :%s", name)
		}
	}
	return envelope.FromBounds(b), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerEnvelopeBuiltins installs the envelope algebra into env.
// Source must be preprocessed with preprocessSource() so that kebab-case
// names and :keywords reach these builtins in their converted form.
func registerEnvelopeBuiltins(env *zygo.Zlisp) {

	// (envelope ...): see envelopeFromArgs for the call shapes.
	env.AddFunction("envelope", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		e, err := envelopeFromArgs(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpEnvelope{env: e}, nil
	})

	// (is-empty e)
	env.AddFunction("is_empty", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("is-empty requires exactly 1 argument, got %d", len(args))
		}
		e, err := toEnvelope(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("is-empty: %w", err)
		}
		return sexpBool(e.env.IsEmpty()), nil
	})

	// (merge e other): grows e in place and returns it.
	env.AddFunction("merge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoEnvelopes("merge", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		a.env.Merge(b.env)
		return a, nil
	})

	// (merge-point e x y z): grows e in place and returns it.
	env.AddFunction("merge_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("merge-point requires an envelope and 3 coordinates, got %d arguments", len(args))
		}
		e, err := toEnvelope(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("merge-point: %w", err)
		}
		p, err := toFloats(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("merge-point: %w", err)
		}
		e.env.MergePoint(p[0], p[1], p[2])
		return e, nil
	})

	// (intersects a b)
	env.AddFunction("intersects", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoEnvelopes("intersects", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return sexpBool(a.env.Intersects(b.env)), nil
	})

	// (intersect e other): narrows e in place and returns it.
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoEnvelopes("intersect", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		a.env.Intersect(b.env)
		return a, nil
	})

	// (contains a b)
	env.AddFunction("contains", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoEnvelopes("contains", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return sexpBool(a.env.Contains(b.env)), nil
	})

	// (extent e1 e2 ...): a new envelope merging all arguments.
	env.AddFunction("extent", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		envs := make([]envelope.Envelope3D, 0, len(args))
		for i, a := range args {
			e, err := toEnvelope(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extent: argument %d: %w", i+1, err)
			}
			envs = append(envs, e.env)
		}
		return &sexpEnvelope{env: envelope.Extent(envs...)}, nil
	})

	// (bounds e): list of minx miny minz maxx maxy maxz.
	env.AddFunction("bounds", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("bounds requires exactly 1 argument, got %d", len(args))
		}
		e, err := toEnvelope(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bounds: %w", err)
		}
		min, max := e.env.Min(), e.env.Max()
		vals := make([]zygo.Sexp, 0, 6)
		for _, v := range append(min[:], max[:]...) {
			vals = append(vals, &zygo.SexpFloat{Val: v})
		}
		return zygo.MakeList(vals), nil
	})
}

// registerSolidBuiltins installs builtins that build solids with k and
// report their extents.
func registerSolidBuiltins(env *zygo.Zlisp, k kernel.Kernel) {

	// (box x y z): min corner at the origin.
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("box requires exactly 3 arguments, got %d", len(args))
		}
		d, err := toFloats(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if d[0] <= 0 || d[1] <= 0 || d[2] <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: dimensions must be positive, got %g %g %g", d[0], d[1], d[2])
		}
		return &sexpSolid{
			solid: k.Box(d[0], d[1], d[2]),
			desc:  fmt.Sprintf("box %gx%gx%g", d[0], d[1], d[2]),
		}, nil
	})

	// (cylinder height radius): centered on the origin along Z.
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("cylinder requires exactly 2 arguments, got %d", len(args))
		}
		d, err := toFloats(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		if d[0] <= 0 || d[1] <= 0 {
			return zygo.SexpNull, fmt.Errorf("cylinder: height and radius must be positive, got %g %g", d[0], d[1])
		}
		return &sexpSolid{
			solid: k.Cylinder(d[0], d[1]),
			desc:  fmt.Sprintf("cylinder h=%g r=%g", d[0], d[1]),
		}, nil
	})

	// (translate s x y z)
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid and 3 offsets, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		d, err := toFloats(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		return &sexpSolid{
			solid: k.Translate(s, d[0], d[1], d[2]),
			desc:  fmt.Sprintf("translated %g %g %g", d[0], d[1], d[2]),
		}, nil
	})

	booleans := []struct {
		name string
		op   func(a, b kernel.Solid) kernel.Solid
	}{
		{"union", k.Union},
		{"difference", k.Difference},
		{"intersection", k.Intersection},
	}
	// (union a b), (difference a b), (intersection a b)
	for _, b := range booleans {
		env.AddFunction(b.name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 arguments, got %d", b.name, len(args))
			}
			x, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: first: %w", b.name, err)
			}
			y, err := toSolid(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: second: %w", b.name, err)
			}
			return &sexpSolid{solid: b.op(x, y), desc: b.name}, nil
		})
	}

	// (solid-envelope s): the kernel's bounding box for s.
	env.AddFunction("solid_envelope", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("solid-envelope requires exactly 1 argument, got %d", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid-envelope: %w", err)
		}
		return &sexpEnvelope{env: s.Envelope()}, nil
	})

	// (mesh-envelope s): extent of the tessellated surface of s.
	env.AddFunction("mesh_envelope", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("mesh-envelope requires exactly 1 argument, got %d", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh-envelope: %w", err)
		}
		m, err := k.ToMesh(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh-envelope: %w", err)
		}
		return &sexpEnvelope{env: m.Envelope()}, nil
	})
}
