// Command envelope evaluates an envelope script and prints the value of
// its last expression.
//
// Usage:
//
//	envelope [-json] [-cells N] [script]
//	envelope -e '(merge (envelope 0 0 0 1 1 1) (envelope 2 2 2 3 3 3))'
//
// With no script argument the source is read from stdin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/envelope3d/pkg/engine"
	"github.com/chazu/envelope3d/pkg/kernel/sdfx"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("envelope: ")

	inline := flag.String("e", "", "evaluate this source instead of a file")
	asJSON := flag.Bool("json", false, "print an envelope result as JSON")
	cells := flag.Int("cells", 0, "marching cubes resolution for mesh-envelope (0 = default)")
	flag.Parse()

	source, err := readSource(*inline, flag.Args())
	if err != nil {
		log.Fatalf("reading source: %v", err)
	}

	eng := engine.NewEngine(sdfx.NewWithCells(*cells))
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("%v", e)
		}
		os.Exit(1)
	}

	if err := printResult(os.Stdout, res, *asJSON); err != nil {
		log.Fatalf("writing result: %v", err)
	}
}

// readSource picks the script: inline source, a file argument, or stdin.
func readSource(inline string, args []string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("expected at most one script, got %d", len(args))
	}
	if len(args) == 1 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("stdin: %w", err)
	}
	return string(b), nil
}

// printResult writes res to w. Envelope results are printed as JSON when
// asJSON is set; everything else prints its Lisp form.
func printResult(w io.Writer, res *engine.Result, asJSON bool) error {
	if asJSON && res.Envelope != nil {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Envelope)
	}
	if res.Envelope != nil {
		_, err := fmt.Fprintln(w, res.Envelope.String())
		return err
	}
	_, err := fmt.Fprintln(w, res.Value)
	return err
}
