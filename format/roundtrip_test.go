package format

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/parser"
)

var testcasesDir string
var testFilter string

func init() {
	flag.StringVar(&testcasesDir, "testcases", "", "directory containing .cs test files")
	flag.StringVar(&testFilter, "filter", "", "filter test files by substring match on filename")
}

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

// TestRoundTrip_Testcases renders every .cs file under testdata (or the
// -testcases directory) unchanged and checks that the output equals the
// input byte for byte. Files that parse cleanly are also pretty printed
// and re-parsed, and must keep their node counts.
// Use -filter to filter files by substring: go test ./format -filter=enum
func TestRoundTrip_Testcases(t *testing.T) {
	dir := testcasesDir
	if dir == "" {
		dir = "testdata"
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".cs") {
			if testFilter != "" && !strings.Contains(path, testFilter) {
				return nil
			}
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk testcases directory: %v", err)
	}
	if len(files) == 0 {
		t.Skipf("no .cs files found in %s", dir)
	}

	for _, file := range files {
		relPath, err := filepath.Rel(dir, file)
		if err != nil {
			relPath = filepath.Base(file)
		}
		testName := strings.ReplaceAll(relPath, string(filepath.Separator), "_")
		testName = strings.TrimSuffix(testName, ".cs")

		t.Run(testName, func(t *testing.T) {
			runRoundTripTest(t, file)
		})
	}
}

func runRoundTripTest(t *testing.T, filename string) {
	source, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	cu, err := parser.Parse(source, parser.WithFile(filename))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := Render(cu, Source); got != string(source) {
		t.Fatalf("render differs from source\n=== want ===\n%s\n=== got ===\n%s", source, got)
	}
	if hasParseErrors(cu) {
		// Pretty printing broken input is not expected to reparse the same.
		return
	}

	origCounts := countNodeKinds(cu)
	formatted := Pretty(cu)
	again, err := parser.Parse([]byte(formatted))
	if err != nil {
		t.Fatalf("parse formatted: %v", err)
	}
	if hasParseErrors(again) {
		t.Errorf("formatted output has parse errors:\n%s", formatParseErrors(again))
		t.Logf("\n=== Formatted output ===\n%s", formatted)
		return
	}
	if diffs := compareNodeCounts(origCounts, countNodeKinds(again)); len(diffs) > 0 {
		t.Errorf("node count mismatch after pretty printing:\n\n%s", formatDiffs(diffs))
		t.Logf("\n=== Formatted output ===\n%s", formatted)
	}
}

// TestRoundTrip_Snippets covers inputs that are easier to read inline,
// including malformed ones: whatever the parser makes of them, rendering
// must give back the input.
func TestRoundTrip_Snippets(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only whitespace", "  \n\t\n"},
		{"only comment", "// nothing here\n"},
		{"using", "using System;\nusing static System.Math;\nusing IO = System.IO;\n"},
		{"odd spacing", "namespace  A.B {class   C:Base,IFoo{ }}"},
		{"file scoped", "namespace A; // here\n\nclass C { }\n"},
		{"generic method", "class C {\n  T Get<T>(T[] xs, int i = 0) where T : class => xs[i];\n}\n"},
		{"broken generic member", "class B { void M<) { } int y; }"},
		{"field missing initializer", "class C { int a = ; }"},
		{"enum member missing value", "enum E { A = }"},
		{"property missing initializer", "class C { int P { get; } = ; }"},
		{"parameter missing default", "class C { void M(int x = ) { } }"},
		{"properties", "class C { public int X { get; private set; } = 3; string Y => \"y\"; }"},
		{"constructor", "class C { C(int x) : base(x) { } }"},
		{"attributes", "[Serializable]\n[Obsolete(\"no\")] public sealed class C { [Key] int id; }\n"},
		{"doc comment", "/// <summary>C</summary>\nclass C\n{\n    /* inline */ void M() { }\n}\n"},
		{"statements", "class C { void M() { for (int i = 0; i < 10; i++) { if (i % 2 == 0) continue; else { x += i; } } } }"},
		{"switch", "class C { int M(int k) { switch (k) { case 1: return 2; default: break; } return 0; } }"},
		{"try", "class C { void M() { try { Run(); } catch (IOException e) when (e != null) { } finally { Done(); } } }"},
		{"lambda and new", "class C { void M() { var f = (int a, int b) => a + b; var l = new List<int> { 1, 2, }; g(x => x * 2); } }"},
		{"enum", "enum Color\n{\n    Red = 1, // warm\n    Green,\n    Blue,\n}\n"},
		{"missing semicolon", "class C { void M() { int x = 1 } }"},
		{"orphan catch", "class C { void M() { catch (E e) { } } }"},
		{"junk tokens", "class C { int x; ) ) ; void M() { } }"},
		{"unclosed class", "class C { void M() {"},
		{"stray modifier", "class C { public }"},
		{"preprocessor", "#if DEBUG\nclass C { }\n#endif\n"},
		{"crlf", "class C\r\n{\r\n    int x;\r\n}\r\n"},
		{"unicode", "class Grüße { string s = \"héllo\"; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cu, err := parser.Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := Render(cu, Source); got != tt.input {
				t.Errorf("Render() = %q, want %q", got, tt.input)
			}
		})
	}
}

// NodeCountDiff represents a difference in node counts between the
// original and the formatted tree
type NodeCountDiff struct {
	Kind      ast.Kind
	Original  int
	Formatted int
}

func countNodeKinds(node ast.Node) map[ast.Kind]int {
	counts := make(map[ast.Kind]int)
	ast.Walk(node, func(n ast.Node) bool {
		counts[n.Kind()]++
		return true
	})
	return counts
}

func hasParseErrors(node ast.Node) bool {
	for _, d := range ast.Diagnostics(node) {
		if d.Origin() == ast.OriginParse {
			return true
		}
	}
	return false
}

func formatParseErrors(node ast.Node) string {
	var errors []string
	for _, d := range ast.Diagnostics(node) {
		errors = append(errors, "  - "+d.String())
	}
	return strings.Join(errors, "\n")
}

func compareNodeCounts(original, formatted map[ast.Kind]int) []NodeCountDiff {
	var diffs []NodeCountDiff

	allKinds := make(map[ast.Kind]bool)
	for k := range original {
		allKinds[k] = true
	}
	for k := range formatted {
		allKinds[k] = true
	}

	for kind := range allKinds {
		if original[kind] != formatted[kind] {
			diffs = append(diffs, NodeCountDiff{
				Kind:      kind,
				Original:  original[kind],
				Formatted: formatted[kind],
			})
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Original-diffs[i].Formatted > diffs[j].Original-diffs[j].Formatted
	})
	return diffs
}

func formatDiffs(diffs []NodeCountDiff) string {
	var sb strings.Builder
	sb.WriteString("Kind                          Original  Formatted  Delta\n")
	sb.WriteString("------------------------------------------------------------\n")
	for _, d := range diffs {
		delta := d.Formatted - d.Original
		sign := "+"
		if delta < 0 {
			sign = ""
		}
		sb.WriteString(fmt.Sprintf("%-30s %8d  %9d  %s%d\n",
			d.Kind.String(), d.Original, d.Formatted, sign, delta))
	}
	return sb.String()
}
