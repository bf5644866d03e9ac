package codebase

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"fortio.org/safecast"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/codedom/csharp/ast"
)

const lsName = "codedom"

// LSPServer serves a codebase over the language server protocol:
// diagnostics, completion, hover, go to definition and formatting.
type LSPServer struct {
	codebase *Codebase
	watcher  *FileWatcher
	handler  protocol.Handler
	server   *server.Server
	version  string

	mu     sync.Mutex
	open   map[string]bool
	notify glsp.NotifyFunc
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
		open:    make(map[string]bool),
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
		TextDocumentHover:      ls.textDocumentHover,
		TextDocumentDefinition: ls.textDocumentDefinition,
		TextDocumentFormatting: ls.textDocumentFormatting,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := getRootDir()
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg, err := LoadConfig(rootDir)
	if err != nil {
		log.Warningf("configuration: %s", err)
		cfg = DefaultConfig()
	}
	ls.codebase = New(rootDir, WithConfig(cfg))

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	triggerChars := []string{"."}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: triggerChars,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()

	if err := ls.codebase.ScanAll(context.Background()); err != nil {
		log.Errorf("scanning %s: %s", ls.codebase.RootDir(), err)
	}
	ls.watcher = NewFileWatcher(ls.codebase)
	ls.watcher.OnChange(func([]string) { ls.publishOpen() })
	ls.watcher.Start()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.mu.Lock()
	ls.open[path] = true
	ls.mu.Unlock()
	ls.update(path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.mu.Lock()
	delete(ls.open, path)
	ls.mu.Unlock()
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.update(path, []byte(*params.Text))
		return nil
	}
	if err := ls.codebase.ScanFile(path); err != nil {
		log.Warningf("reloading %s: %s", path, err)
	}
	ls.publishOpen()
	return nil
}

func (ls *LSPServer) update(path string, content []byte) {
	if err := ls.codebase.UpdateFile(path, content); err != nil {
		log.Warningf("updating %s: %s", path, err)
		return
	}
	ls.publishOpen()
}

// publishOpen sends the diagnostics of every open document. An edit in
// one file can change what names in another file resolve to.
func (ls *LSPServer) publishOpen() {
	ls.mu.Lock()
	notify := ls.notify
	paths := make([]string, 0, len(ls.open))
	for p := range ls.open {
		paths = append(paths, p)
	}
	ls.mu.Unlock()
	if notify == nil {
		return
	}
	for _, path := range paths {
		f := ls.codebase.GetFile(path)
		if f == nil {
			continue
		}
		notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         pathToURI(path),
			Diagnostics: toProtocolDiagnostics(f.Content, Findings(ls.codebase.Diagnostics(path))),
		})
	}
}

func toProtocolDiagnostics(content []byte, findings []Finding) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(findings))
	source := lsName
	for _, f := range findings {
		sev := toProtocolSeverity(f.Severity)
		end := f.End.Offset
		if !f.End.IsValid() || end < f.Pos.Offset {
			end = f.Pos.Offset
		}
		out = append(out, protocol.Diagnostic{
			Range:    protocol.Range{Start: lspPosition(content, f.Pos.Offset), End: lspPosition(content, end)},
			Severity: &sev,
			Source:   &source,
			Message:  f.Message,
		})
	}
	return out
}

func toProtocolSeverity(s ast.Severity) protocol.DiagnosticSeverity {
	switch s {
	case ast.SeverityError:
		return protocol.DiagnosticSeverityError
	case ast.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityInformation
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}

	offset := offsetOf(file.Content, params.Position)
	completions := ls.codebase.CompletionsAt(path, offset)
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toProtocolKind(c.Kind)
		detail := c.Detail
		insertText := c.InsertText
		format := protocol.InsertTextFormatSnippet

		items = append(items, protocol.CompletionItem{
			Label:            c.Label,
			Kind:             &kind,
			Detail:           &detail,
			InsertText:       &insertText,
			InsertTextFormat: &format,
		})
	}

	return items, nil
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}
	sym, name := ls.codebase.SymbolAt(path, offsetOf(file.Content, params.Position))
	var text string
	switch {
	case sym != nil:
		text = Describe(sym)
	case name != nil:
		for _, m := range ast.Messages(name) {
			text = m.Text
		}
	}
	if text == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: "```csharp\n" + text + "\n```"},
	}, nil
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}
	sym, _ := ls.codebase.SymbolAt(path, offsetOf(file.Content, params.Position))
	if sym == nil {
		return nil, nil
	}
	span, ok := Declaration(sym)
	if !ok {
		return nil, nil
	}
	target := ls.codebase.GetFile(span.Start.File)
	if target == nil {
		return nil, nil
	}
	return protocol.Location{
		URI: pathToURI(target.Path),
		Range: protocol.Range{
			Start: lspPosition(target.Content, span.Start.Offset),
			End:   lspPosition(target.Content, span.End.Offset),
		},
	}, nil
}

func (ls *LSPServer) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}
	text, err := ls.codebase.Format(path)
	if err != nil {
		log.Infof("not formatting %s: %s", path, err)
		return nil, nil
	}
	if text == string(file.Content) {
		return nil, nil
	}
	return []protocol.TextEdit{{
		Range:   protocol.Range{Start: lspPosition(file.Content, 0), End: lspPosition(file.Content, len(file.Content))},
		NewText: text,
	}}, nil
}

func toProtocolKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKindMethod:
		return protocol.CompletionItemKindMethod
	case CompletionKindField:
		return protocol.CompletionItemKindField
	case CompletionKindClass:
		return protocol.CompletionItemKindClass
	case CompletionKindInterface:
		return protocol.CompletionItemKindInterface
	case CompletionKindStruct:
		return protocol.CompletionItemKindStruct
	case CompletionKindEnum:
		return protocol.CompletionItemKindEnum
	case CompletionKindEnumMember:
		return protocol.CompletionItemKindEnumMember
	case CompletionKindProperty:
		return protocol.CompletionItemKindProperty
	case CompletionKindVariable:
		return protocol.CompletionItemKindVariable
	case CompletionKindNamespace:
		return protocol.CompletionItemKindModule
	case CompletionKindTypeParameter:
		return protocol.CompletionItemKindTypeParameter
	case CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindText
	}
}

// lspPosition converts a byte offset to a protocol position, which counts
// characters in UTF-16 code units.
func lspPosition(content []byte, offset int) protocol.Position {
	offset = min(max(offset, 0), len(content))
	line, col := 0, 0
	for i := 0; i < offset; {
		r, size := utf8.DecodeRune(content[i:])
		i += size
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col += utf16Len(r)
	}
	l, err := safecast.Conv[protocol.UInteger](line)
	if err != nil {
		l = 0
	}
	c, err := safecast.Conv[protocol.UInteger](col)
	if err != nil {
		c = 0
	}
	return protocol.Position{Line: l, Character: c}
}

// offsetOf converts a protocol position to a byte offset, clamping to the
// end of the line or content.
func offsetOf(content []byte, pos protocol.Position) int {
	line, err := safecast.Conv[int](pos.Line)
	if err != nil {
		return len(content)
	}
	want, err := safecast.Conv[int](pos.Character)
	if err != nil {
		want = 0
	}
	i := 0
	for ; line > 0 && i < len(content); i++ {
		if content[i] == '\n' {
			line--
		}
	}
	for col := 0; i < len(content) && col < want; {
		r, size := utf8.DecodeRune(content[i:])
		if r == '\n' {
			break
		}
		col += utf16Len(r)
		i += size
	}
	return i
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}

func getRootDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
