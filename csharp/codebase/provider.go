package codebase

import (
	"unicode"
	"unicode/utf8"
)

// KeyAction tells a completion list what to do with a typed key.
type KeyAction int

const (
	// KeyBeforeStart means the caret moved before the start of the
	// completed identifier; the list should close.
	KeyBeforeStart KeyAction = iota
	// KeyNormal means the key extends the identifier; the list keeps
	// filtering.
	KeyNormal
	// KeyInsertion means the key commits the selected item.
	KeyInsertion
)

func (a KeyAction) String() string {
	switch a {
	case KeyBeforeStart:
		return "before-start"
	case KeyNormal:
		return "normal"
	case KeyInsertion:
		return "insertion"
	}
	return "unknown"
}

// CompletionDataProvider is what a completion list needs from the code
// model. The list itself lives outside this package.
type CompletionDataProvider interface {
	GenerateCandidates(path string, caret int, trigger rune) []CompletionItem
	ProcessKey(ch rune) KeyAction
	InsertAction(item CompletionItem, caret int, terminator rune) bool
}

// Provider implements CompletionDataProvider on top of a Codebase. It
// tracks one completion session at a time.
type Provider struct {
	codebase *Codebase
	path     string
	start    int
	caret    int
	// widths holds the byte length of each rune typed in this session.
	widths []int
}

var _ CompletionDataProvider = (*Provider)(nil)

func NewProvider(c *Codebase) *Provider {
	return &Provider{codebase: c}
}

// GenerateCandidates starts a session at caret in path. trigger is the
// character that opened the list, or 0 when it was requested explicitly.
func (p *Provider) GenerateCandidates(path string, caret int, trigger rune) []CompletionItem {
	site, err := p.codebase.ExpressionAt(path, caret)
	if err != nil {
		log.Debugf("completion: %s", err)
		return nil
	}
	if trigger == '.' && site.Receiver == nil && site.Prefix == "" {
		return nil
	}
	p.path, p.start, p.caret = path, site.Start, caret
	p.widths = p.widths[:0]
	return p.codebase.CompletionsAt(path, caret)
}

// ProcessKey classifies a key typed while the list is open. Backspace is
// '\b'. The caret is a byte offset, so it moves by the UTF-8 width of ch.
func (p *Provider) ProcessKey(ch rune) KeyAction {
	switch {
	case ch == '\b':
		w := 1
		if n := len(p.widths); n > 0 {
			w = p.widths[n-1]
			p.widths = p.widths[:n-1]
		}
		p.caret -= w
		if p.caret < p.start {
			return KeyBeforeStart
		}
		return KeyNormal
	case ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch):
		w := utf8.RuneLen(ch)
		p.caret += w
		p.widths = append(p.widths, w)
		return KeyNormal
	}
	return KeyInsertion
}

// InsertAction replaces the identifier typed so far with item. It
// reports whether terminator should still be inserted after it: keys
// that only commit, such as tab or enter, are swallowed.
func (p *Provider) InsertAction(item CompletionItem, caret int, terminator rune) bool {
	if p.path == "" || caret < p.start {
		return false
	}
	if err := p.codebase.ApplyEdit(p.path, p.start, caret, item.Text()); err != nil {
		log.Warningf("completion: %s", err)
		return false
	}
	p.caret = p.start + len(item.Text())
	p.widths = p.widths[:0]
	switch terminator {
	case 0, '\t', '\n', '\r':
		return false
	}
	return true
}
