package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/envelope3d/pkg/envelope"
	"github.com/chazu/envelope3d/pkg/kernel/sdfx"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(envelope :min-x 1)`,
			expect: `(envelope "__kw_min-x" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`merge-point :x`",
			expect: "`merge-point :x`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(merge-point e 1 2 3)`,
			expect: `(merge_point e 1 2 3)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(envelope -1 -2 3 4)`,
			expect: `(envelope -1 -2 3 4)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "comment stops at newline",
			input:  "; note\n(is-empty e)",
			expect: "// note\n(is_empty e)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// evalEnvelope evaluates source and returns the resulting envelope.
func evalEnvelope(t *testing.T, eng *Engine, source string) envelope.Envelope3D {
	t.Helper()
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res.Envelope == nil {
		t.Fatalf("expected an envelope result, got %q", res.Value)
	}
	return *res.Envelope
}

// evalValue evaluates source and returns the printed result.
func evalValue(t *testing.T, eng *Engine, source string) string {
	t.Helper()
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	return res.Value
}

// evalFails evaluates source and returns the first eval error message.
func evalFails(t *testing.T, eng *Engine, source string) string {
	t.Helper()
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result, got %q", res.Value)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	return evalErrs[0].Message
}

func box(minX, minY, minZ, maxX, maxY, maxZ float64) envelope.Envelope3D {
	return envelope.Envelope3D{MinX: minX, MinY: minY, MinZ: minZ, MaxX: maxX, MaxY: maxY, MaxZ: maxZ}
}

// ---------------------------------------------------------------------------
// Envelope builtins
// ---------------------------------------------------------------------------

func TestEnvelopeConstructors(t *testing.T) {
	eng := NewEngine(nil)
	tests := []struct {
		name   string
		source string
		want   envelope.Envelope3D
	}{
		{"empty", `(envelope)`, envelope.New()},
		{"3d", `(envelope 1 2 3 4 5 6)`, box(1, 2, 3, 4, 5, 6)},
		{"2d", `(envelope 0 0 10 10)`, box(0, 0, 0, 10, 10, 0)},
		{"floats", `(envelope -1.5 0 0 2.5 1 1)`, box(-1.5, 0, 0, 2.5, 1, 1)},
		{"keywords without z", `(envelope :min-x 0 :min-y 0 :max-x 10 :max-y 10)`, box(0, 0, 0, 10, 10, 0)},
		{"keywords with z", `(envelope :min-x 1 :min-y 2 :min-z 3 :max-x 4 :max-y 5 :max-z 6)`, box(1, 2, 3, 4, 5, 6)},
		{"keywords only max z", `(envelope :min-x 0 :min-y 0 :max-x 1 :max-y 1 :max-z 9)`, box(0, 0, 0, 1, 1, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalEnvelope(t, eng, tt.source); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestEnvelopeConstructorErrors(t *testing.T) {
	eng := NewEngine(nil)
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"wrong arity", `(envelope 1 2 3)`, "0, 4 or 6"},
		{"non-number", `(envelope 1 2 "x" 4)`, "expected number"},
		{"missing keyword", `(envelope :min-x 0 :min-y 0 :max-x 1)`, "max-y"},
		{"unknown keyword", `(envelope :min-x 0 :min-y 0 :max-x 1 :max-y 1 :depth 2)`, "depth"},
		{"mixed", `(envelope 1 :min-x 0)`, "mix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evalFails(t, eng, tt.source)
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error = %q, want containing %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestIsEmptyBuiltin(t *testing.T) {
	eng := NewEngine(nil)
	if v := evalValue(t, eng, `(is-empty (envelope))`); v != "true" {
		t.Errorf("is-empty of empty = %q, want true", v)
	}
	if v := evalValue(t, eng, `(is-empty (envelope 0 0 0 0 0 0))`); v != "true" {
		t.Errorf("is-empty of all-zero = %q, want true", v)
	}
	if v := evalValue(t, eng, `(is-empty (envelope 1 2 3 4 5 6))`); v != "false" {
		t.Errorf("is-empty of box = %q, want false", v)
	}
}

func TestMergeBuiltinMutatesInPlace(t *testing.T) {
	eng := NewEngine(nil)
	src := `
(def e (envelope))
(merge e (envelope 0 0 0 1 1 1))
(merge e (envelope 5 5 5 6 6 6))
e
`
	if got, want := evalEnvelope(t, eng, src), box(0, 0, 0, 6, 6, 6); got != want {
		t.Errorf("e = %v, want %v", got, want)
	}
}

func TestMergePointBuiltin(t *testing.T) {
	eng := NewEngine(nil)
	if got, want := evalEnvelope(t, eng, `(merge-point (envelope) 5 5 5)`), box(5, 5, 5, 5, 5, 5); got != want {
		t.Errorf("merge-point on empty = %v, want %v", got, want)
	}
	if got, want := evalEnvelope(t, eng, `(merge-point (envelope 0 0 0 10 10 10) 5 5 5)`), box(0, 0, 0, 10, 10, 10); got != want {
		t.Errorf("merge-point inside = %v, want %v", got, want)
	}
	msg := evalFails(t, eng, `(merge-point (envelope) 1 2)`)
	if !strings.Contains(msg, "3 coordinates") {
		t.Errorf("error = %q", msg)
	}
}

func TestIntersectsAndContainsBuiltins(t *testing.T) {
	eng := NewEngine(nil)
	tests := []struct {
		source string
		want   string
	}{
		{`(intersects (envelope 0 0 0 1 1 1) (envelope 1 0 0 2 1 1))`, "true"},
		{`(intersects (envelope 0 0 0 1 1 1) (envelope 5 5 5 6 6 6))`, "false"},
		{`(contains (envelope 0 0 0 10 10 10) (envelope 2 2 2 8 8 8))`, "true"},
		{`(contains (envelope 2 2 2 8 8 8) (envelope 0 0 0 10 10 10))`, "false"},
		{`(def a (envelope 0 0 0 10 10 10)) (contains a a)`, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := evalValue(t, eng, tt.source); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestIntersectBuiltin(t *testing.T) {
	eng := NewEngine(nil)
	got := evalEnvelope(t, eng, `(intersect (envelope 0 0 0 10 10 10) (envelope 5 5 5 15 15 15))`)
	if want := box(5, 5, 5, 10, 10, 10); got != want {
		t.Errorf("intersect = %v, want %v", got, want)
	}
	got = evalEnvelope(t, eng, `(intersect (envelope 0 0 0 1 1 1) (envelope 5 5 5 6 6 6))`)
	if !got.IsEmpty() {
		t.Errorf("intersect of disjoint = %v, want empty", got)
	}
}

func TestEnvelopeScenarioScript(t *testing.T) {
	eng := NewEngine(nil)
	src := `
;; accumulate, widen to the origin, then clip
(def e (envelope))
(merge e (envelope :min-x 1 :min-y 1 :min-z 0 :max-x 3 :max-y 3 :max-z 0))
(merge-point e 0 0 0)
(intersect e (envelope :min-x 2 :min-y 2 :max-x 5 :max-y 5))
e
`
	if got, want := evalEnvelope(t, eng, src), box(2, 2, 0, 3, 3, 0); got != want {
		t.Errorf("scenario = %v, want %v", got, want)
	}
}

func TestExtentAndBoundsBuiltins(t *testing.T) {
	eng := NewEngine(nil)
	got := evalEnvelope(t, eng, `(extent (envelope 0 0 0 1 1 1) (envelope -1 2 0 0 3 4))`)
	if want := box(-1, 0, 0, 1, 3, 4); got != want {
		t.Errorf("extent = %v, want %v", got, want)
	}

	v := evalValue(t, eng, `(bounds (envelope 1 2 3 4 5 6))`)
	for _, want := range []string{"1", "2", "3", "4", "5", "6"} {
		if !strings.Contains(v, want) {
			t.Errorf("bounds = %q, missing %s", v, want)
		}
	}
}

func TestEnvelopeBuiltinTypeErrors(t *testing.T) {
	eng := NewEngine(nil)
	tests := []struct {
		source  string
		wantMsg string
	}{
		{`(merge (envelope) 5)`, "expected envelope"},
		{`(intersects (envelope))`, "exactly 2 arguments"},
		{`(is-empty 1)`, "expected envelope"},
		{`(bounds)`, "exactly 1 argument"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			msg := evalFails(t, eng, tt.source)
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error = %q, want containing %q", msg, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Solid builtins
// ---------------------------------------------------------------------------

func TestSolidBuiltinsNeedKernel(t *testing.T) {
	eng := NewEngine(nil)
	evalFails(t, eng, `(box 1 1 1)`)
}

func TestSolidEnvelope(t *testing.T) {
	eng := NewEngine(sdfx.NewWithCells(20))
	const tol = 0.01
	tests := []struct {
		name   string
		source string
		want   envelope.Envelope3D
	}{
		{"box", `(solid-envelope (box 10 20 30))`, box(0, 0, 0, 10, 20, 30)},
		{"translated", `(solid-envelope (translate (box 10 10 10) 5 0 -5))`, box(5, 0, -5, 15, 10, 5)},
		{"cylinder", `(solid-envelope (cylinder 10 2))`, box(-2, -2, -5, 2, 2, 5)},
		{
			"union",
			`(solid-envelope (union (box 1 1 1) (translate (box 1 1 1) 4 0 0)))`,
			box(0, 0, 0, 5, 1, 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalEnvelope(t, eng, tt.source)
			gmin, gmax := got.Min(), got.Max()
			wmin, wmax := tt.want.Min(), tt.want.Max()
			for i := 0; i < 3; i++ {
				if math.Abs(gmin[i]-wmin[i]) > tol || math.Abs(gmax[i]-wmax[i]) > tol {
					t.Fatalf("%s = %v, want ~%v", tt.source, got, tt.want)
				}
			}
		})
	}
}

func TestSolidEnvelopesDriveIntersects(t *testing.T) {
	eng := NewEngine(sdfx.NewWithCells(20))
	src := `
(def a (solid-envelope (box 10 10 10)))
(def b (solid-envelope (translate (box 10 10 10) 20 0 0)))
(intersects a b)
`
	if v := evalValue(t, eng, src); v != "false" {
		t.Errorf("intersects = %q, want false", v)
	}
}

func TestMeshEnvelope(t *testing.T) {
	eng := NewEngine(sdfx.NewWithCells(20))
	got := evalEnvelope(t, eng, `(mesh-envelope (box 10 10 10))`)
	want := box(0, 0, 0, 10, 10, 10)
	// Marching cubes lands within a cell of the true surface.
	const tol = 1.5
	gmin, gmax := got.Min(), got.Max()
	wmin, wmax := want.Min(), want.Max()
	for i := 0; i < 3; i++ {
		if math.Abs(gmin[i]-wmin[i]) > tol || math.Abs(gmax[i]-wmax[i]) > tol {
			t.Fatalf("mesh-envelope = %v, want ~%v", got, want)
		}
	}
}

func TestSolidBuiltinErrors(t *testing.T) {
	eng := NewEngine(sdfx.NewWithCells(20))
	tests := []struct {
		source  string
		wantMsg string
	}{
		{`(box 1 1)`, "exactly 3 arguments"},
		{`(box 1 0 1)`, "positive"},
		{`(cylinder 1 -1)`, "positive"},
		{`(translate (envelope) 1 1 1)`, "expected solid"},
		{`(union (box 1 1 1))`, "exactly 2 arguments"},
		{`(solid-envelope (envelope))`, "expected solid"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			msg := evalFails(t, eng, tt.source)
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error = %q, want containing %q", msg, tt.wantMsg)
			}
		})
	}
}
