package format

import (
	"strings"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/mattn/go-runewidth"
)

// alignedRow is one enum member laid out in columns.
type alignedRow struct {
	member *ast.EnumMember
	name   string
	value  string
	text   string
}

// alignedEnum renders enum members with their initializers and end of
// line comments lined up in columns. Widths are display widths, so wide
// characters in names count twice.
func (p *Printer) alignedEnum(items []ast.Node) {
	var rows []*alignedRow
	nameW := 0
	for _, it := range items {
		m, ok := it.(*ast.EnumMember)
		if !ok {
			continue
		}
		r := &alignedRow{member: m, name: m.Name}
		if m.Value != nil {
			r.value = strings.TrimLeft(p.capture(func() { p.node(m.Value, "") }), " \t")
			nameW = max(nameW, runewidth.StringWidth(m.Name))
		}
		rows = append(rows, r)
	}

	lineW := 0
	for i, r := range rows {
		r.text = r.name
		if r.value != "" {
			r.text = padRight(r.name, nameW) + " = " + r.value
		}
		if i < len(rows)-1 || r.member.Base().Layout.HasGap(",") {
			r.text += ","
		}
		if hasEOL(r.member) {
			lineW = max(lineW, runewidth.StringWidth(r.text))
		}
	}

	next := 0
	for _, it := range items {
		if next >= len(rows) || ast.Node(rows[next].member) != it {
			p.item(it, p.nl(1), false)
			continue
		}
		r := rows[next]
		next++
		p.lead(r.member, p.nl(1))
		p.write(r.text)
		for _, a := range r.member.Base().Annotations() {
			if a.Place == ast.PlaceEOL && a.Kind != ast.AnnMessage {
				p.write(strings.Repeat(" ", lineW-runewidth.StringWidth(r.text)+1))
				p.annotation(a)
			}
		}
		p.trailer(r.member, false)
	}
}

func hasEOL(n ast.Node) bool {
	for _, a := range n.Base().Annotations() {
		if a.Place == ast.PlaceEOL && a.Kind != ast.AnnMessage {
			return true
		}
	}
	return false
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
