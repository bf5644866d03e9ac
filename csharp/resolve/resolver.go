package resolve

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/codedom/csharp/ast"
)

var log = commonlog.GetLogger("codedom.resolve")

// maxDepth bounds the nested lookups one query may trigger, such as a
// base type whose name has to be resolved through its own members.
const maxDepth = 64

// Resolver binds names in parse trees to the symbols they denote. A
// Resolver is not safe for concurrent use, and neither is resolving two
// units that see each other's declarations at the same time.
type Resolver struct {
	registry *ast.Registry
	flags    Flags
	depth    int
}

type Option func(*Resolver)

// WithRegistry sets the registry used for the global namespace. By
// default it is taken from the compilation unit being resolved.
func WithRegistry(reg *ast.Registry) Option {
	return func(r *Resolver) {
		r.registry = reg
	}
}

// WithFlags restricts ResolveUnit to the given phases.
func WithFlags(f Flags) Option {
	return func(r *Resolver) {
		r.flags = f
	}
}

func New(opts ...Option) *Resolver {
	r := &Resolver{flags: AllPhases}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats counts the outcomes of one ResolveUnit call.
type Stats struct {
	Resolved   int
	Ambiguous  int
	Unresolved int
	// Skipped are member names whose container has no modeled members,
	// such as members of predefined types.
	Skipped int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d resolved, %d ambiguous, %d unresolved, %d skipped",
		s.Resolved, s.Ambiguous, s.Unresolved, s.Skipped)
}

// Resolve binds every name in cu with a resolver built from opts.
func Resolve(cu *ast.CompilationUnit, opts ...Option) Stats {
	return New(opts...).ResolveUnit(cu)
}

// ResolveUnit replaces the unresolved and ambiguous names of cu with the
// outcome of looking them up again. Declarations are resolved before
// bodies so that member types are bound when bodies need them. Names that
// cannot be bound stay in the tree with a diagnostic attached.
func (r *Resolver) ResolveUnit(cu *ast.CompilationUnit) Stats {
	var st Stats
	for _, phase := range []Flags{Declarations, Bodies} {
		if r.flags&phase == 0 {
			continue
		}
		names := pending(cu, phase)
		log.Debugf("%s: %d names in %s", cu.Path, len(names), phase)
		for _, n := range names {
			r.bind(n, &st)
		}
	}
	log.Debugf("%s: %s", cu.Path, st)
	return st
}

func pending(root ast.Node, phase Flags) []ast.NameNode {
	var out []ast.NameNode
	ast.Walk(root, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.UnresolvedRef, *ast.AmbiguousRef:
			if phaseOf(x) == phase {
				out = append(out, x.(ast.NameNode))
			}
		}
		return true
	})
	return out
}

func (r *Resolver) bind(n ast.NameNode, st *Stats) {
	clearMessages(n)
	name, _ := ast.NameOf(n)
	cat, arity := contextOf(n)
	syms, known := r.resolveName(n, name, cat, arity)
	switch {
	case !known:
		st.Skipped++
		if _, ok := n.(*ast.AmbiguousRef); ok {
			ast.Rebind(n, ast.NewName(name))
		}
	case len(syms) == 0:
		st.Unresolved++
		if _, ok := n.(*ast.UnresolvedRef); !ok {
			n = ast.Rebind(n, ast.NewName(name))
		}
		ast.AddDiagnostic(n, ast.OriginResolve, ast.SeverityWarning, fmt.Sprintf("cannot resolve %s %q", cat, name))
	case len(syms) == 1:
		st.Resolved++
		ast.Rebind(n, ast.NewRef(syms[0]))
	default:
		st.Ambiguous++
		if a, ok := n.(*ast.AmbiguousRef); !ok || !slices.Equal(a.Candidates, syms) {
			n = ast.Rebind(n, ast.NewAmbiguousRef(name, syms))
		}
		ast.AddDiagnostic(n, ast.OriginResolve, ast.SeverityError,
			fmt.Sprintf("ambiguous %s %q: %d candidates (%s)", cat, name, len(syms), describe(syms)))
	}
}

func clearMessages(n ast.Node) {
	for _, a := range ast.Messages(n) {
		if a.Origin == ast.OriginResolve {
			ast.RemoveAnnotation(n, a)
		}
	}
}

// Lookup returns the symbols name denotes in category cat when used at
// from, walking the enclosing scopes outward. It does not modify the
// tree.
func (r *Resolver) Lookup(from ast.Node, name string, cat Category) []ast.Symbol {
	return r.lookup(from, name, cat, -1)
}

// Candidates resolves a name or a member access expression without
// modifying the tree.
func (r *Resolver) Candidates(e ast.Expr, cat Category) []ast.Symbol {
	switch x := e.(type) {
	case *ast.Ref:
		return []ast.Symbol{x.Target}
	case *ast.AmbiguousRef:
		return append([]ast.Symbol(nil), x.Candidates...)
	case *ast.UnresolvedRef:
		syms, _ := r.resolveName(x, x.Name, cat, -1)
		return syms
	case *ast.Dot:
		return r.Candidates(x.Name, cat)
	case *ast.Paren:
		return r.Candidates(x.X, cat)
	}
	return nil
}

// resolveName looks up one name node. known is false for a member whose
// container could not be determined.
func (r *Resolver) resolveName(n ast.NameNode, name string, cat Category, arity int) (syms []ast.Symbol, known bool) {
	if d, ok := n.Base().Parent().(*ast.Dot); ok && ast.Node(d.Name) == ast.Node(n) {
		c := r.container(d.X)
		if c == nil {
			return nil, false
		}
		s := &search{r: r, name: name, cat: cat}
		return r.finish(s.accept(r.membersOf(c, name)), cat, arity), true
	}
	syms = r.lookup(n, name, cat, arity)
	if len(syms) == 0 && cat == CategoryAttribute && !strings.HasSuffix(name, "Attribute") {
		syms = r.lookup(n, name+"Attribute", cat, arity)
	}
	return syms, true
}

func (r *Resolver) lookup(from ast.Node, name string, cat Category, arity int) []ast.Symbol {
	if r.depth >= maxDepth {
		log.Warningf("lookup of %q nested too deeply", name)
		return nil
	}
	r.depth++
	defer func() { r.depth-- }()

	s := &search{r: r, name: name, cat: cat, noUsing: ast.Enclosing(from, ast.KindUsing) != nil}
	child := from
	for scope := from.Base().Parent(); scope != nil; child, scope = scope, scope.Base().Parent() {
		if s.scope(scope, child) {
			return r.finish(s.found, cat, arity)
		}
	}
	if reg := r.registryFor(from); reg != nil && s.local(reg.Global().Lookup(name)...) {
		return r.finish(s.found, cat, arity)
	}
	if cat == CategoryType || cat == CategoryNamespaceOrType || cat == CategoryExpression {
		if b, ok := ast.LookupBuiltin(name); ok && s.local(b) {
			return r.finish(s.found, cat, arity)
		}
	}
	return r.finish(s.imported, cat, arity)
}

func (r *Resolver) registryFor(n ast.Node) *ast.Registry {
	if r.registry != nil {
		return r.registry
	}
	if cu, ok := ast.Root(n).(*ast.CompilationUnit); ok {
		return cu.Registry
	}
	return nil
}

// finish removes duplicates, merges the parts of a partial type, applies
// the call arity and orders what is left.
func (r *Resolver) finish(syms []ast.Symbol, cat Category, arity int) []ast.Symbol {
	syms = slices.Clone(syms)
	sort.SliceStable(syms, func(i, j int) bool { return symbolKey(syms[i]) < symbolKey(syms[j]) })
	var out []ast.Symbol
	seen := make(map[string]bool)
	for _, sym := range syms {
		k := symbolKey(sym)
		if td, ok := sym.(*ast.TypeDecl); ok && td.IsPartial() {
			k = "partial " + td.FullName()
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, sym)
	}
	if cat == CategoryMethod && arity >= 0 && len(out) > 1 {
		var fit []ast.Symbol
		for _, sym := range out {
			if m, ok := sym.(*ast.Method); !ok || accepts(m, arity) {
				fit = append(fit, sym)
			}
		}
		if len(fit) > 0 {
			out = fit
		}
	}
	return out
}

// accepts reports whether m can be called with n arguments.
func accepts(m *ast.Method, n int) bool {
	lo, hi := 0, 0
	for _, p := range m.Params.Items() {
		switch {
		case p.Modifier == "params":
			hi = -1
		case p.Default == nil:
			lo++
		}
		if hi >= 0 {
			hi++
		}
	}
	return n >= lo && (hi < 0 || n <= hi)
}

// symbolKey orders symbols by where they are declared so that ambiguity
// sets do not depend on the order files were parsed in.
func symbolKey(sym ast.Symbol) string {
	switch x := sym.(type) {
	case *ast.Namespace:
		return "0 " + x.FullName()
	case *ast.Builtin:
		return "1 " + x.Name
	case ValueParam:
		return fmt.Sprintf("2 %p", x.Accessor)
	case ast.Node:
		start := x.Base().Span.Start
		path := ""
		if cu, ok := ast.Root(x).(*ast.CompilationUnit); ok {
			path = cu.Path
		}
		return fmt.Sprintf("3 %s %010d %s %p", path, start.Offset, sym.SymbolName(), x)
	}
	return "4 " + sym.SymbolName()
}

func describe(syms []ast.Symbol) string {
	parts := make([]string, len(syms))
	for i, sym := range syms {
		parts[i] = Qualified(sym)
	}
	return strings.Join(parts, ", ")
}

// Qualified returns the dotted name of a symbol for messages.
func Qualified(sym ast.Symbol) string {
	switch x := sym.(type) {
	case *ast.Namespace:
		return x.FullName()
	case *ast.TypeDecl:
		return x.FullName()
	case ast.Node:
		if td := ast.EnclosingType(x); td != nil {
			return td.FullName() + "." + sym.SymbolName()
		}
	}
	return sym.SymbolName()
}
