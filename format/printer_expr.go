package format

import (
	"strconv"
	"unicode"

	"github.com/dhamidi/codedom/csharp/ast"
)

func (p *Printer) expr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.Literal:
		p.tok(x, "lit", x.Text, "")
	case *ast.SelfRef:
		p.tok(x, "kw", x.Keyword(), "")
	case ast.NameNode:
		p.name(x)
	case *ast.Binary:
		p.node(x.X, "")
		p.tok(x, "op", x.Op, " ")
		p.node(x.Y, " ")
	case *ast.Unary:
		p.tok(x, "op", x.Op, "")
		sep := ""
		if isWord(x.Op) {
			sep = " "
		}
		p.node(x.X, sep)
	case *ast.Postfix:
		p.node(x.X, "")
		p.tok(x, "op", x.Op, "")
	case *ast.Conditional:
		p.node(x.Cond, "")
		p.tok(x, "?", "?", " ")
		p.node(x.Then, " ")
		p.tok(x, ":", ":", " ")
		p.node(x.Else, " ")
	case *ast.Call:
		p.node(x.Fun, "")
		p.tok(x, "(", "(", "")
		p.list(nodes(x.Args.Items()), "")
		p.tok(x, ")", ")", "")
	case *ast.Index:
		p.node(x.X, "")
		p.tok(x, "[", "[", "")
		p.list(nodes(x.Args.Items()), "")
		p.tok(x, "]", "]", "")
	case *ast.Dot:
		op := x.Op
		if op == "" {
			op = "."
		}
		p.node(x.X, "")
		p.tok(x, ".", op, "")
		p.node(x.Name, "")
	case *ast.Paren:
		p.tok(x, "(", "(", "")
		p.node(x.X, "")
		p.tok(x, ")", ")", "")
	case *ast.New:
		p.tok(x, "kw", "new", "")
		p.node(x.Type, " ")
		if x.HasArgs {
			p.tok(x, "(", "(", "")
			p.list(nodes(x.Args.Items()), "")
			p.tok(x, ")", ")", "")
		}
		p.node(x.Init, " ")
	case *ast.InitList:
		p.tok(x, "{", "{", "")
		p.list(nodes(x.Items.Items()), " ")
		p.tok(x, "}", "}", " ")
	case *ast.Cast:
		p.tok(x, "(", "(", "")
		p.node(x.Type, "")
		p.tok(x, ")", ")", "")
		p.node(x.X, "")
	case *ast.ArrayType:
		p.node(x.Elem, "")
		p.tok(x, "[", "[", "")
		if x.Size != nil {
			p.node(x.Size, "")
		} else {
			for i := 1; i < x.Rank; i++ {
				p.tok(x, "rank:"+strconv.Itoa(i), ",", "")
			}
		}
		p.tok(x, "]", "]", "")
	case *ast.NullableType:
		p.node(x.Elem, "")
		p.tok(x, "?", "?", "")
	case *ast.Lambda:
		p.lambda(x)
	default:
		log.Warningf("no rendering for expression %s", e.Kind())
	}
}

func (p *Printer) name(n ast.NameNode) {
	name, _ := ast.NameOf(n)
	p.tok(n, "name", name, "")
	args := ast.TypeArgsOf(n)
	if args.Len() == 0 {
		p.optTok(n, "<", "<")
		p.optTok(n, ">", ">")
		return
	}
	p.tok(n, "<", "<", "")
	p.list(nodes(args.Items()), "")
	p.tok(n, ">", ">", "")
}

func (p *Printer) lambda(l *ast.Lambda) {
	p.mods(l, l.Mods)
	params := l.Params.Items()
	if l.Parenthesized || len(params) != 1 {
		p.tok(l, "(", "(", " ")
		p.list(nodes(params), "")
		p.tok(l, ")", ")", "")
	} else {
		p.node(params[0], " ")
	}
	p.tok(l, "=>", "=>", " ")
	if b, ok := l.Body.(*ast.Block); ok {
		if p.desc() {
			p.write(" { ... }")
			return
		}
		p.node(b, p.blockLead(b))
		return
	}
	p.node(l.Body, " ")
}

func isWord(op string) bool {
	for _, r := range op {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return op != ""
}
