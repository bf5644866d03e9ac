// Package parser reads C#-like source into an ast tree, tolerating
// malformed and incomplete input.
//
// # Overview
//
// Parsing happens in two stages. The Lexer splits the input into tokens
// and attaches all whitespace, comments and preprocessor lines in front
// of a token to that token as its Trivia. The Parser then walks the token
// slice and builds nodes, moving every piece of trivia onto the node that
// owns the token. Rendering the tree without changes reproduces the input
// byte for byte, including text the parser could not make sense of.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │   (tree)    │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                                              │
//	                                              ▼
//	                                       ┌─────────────┐
//	                                       │ Parse-point │
//	                                       │   Table     │
//	                                       └─────────────┘
//
// # Parse points
//
// The parser does not switch on keywords. Every construct is a parse
// point registered in a Table under the token text that starts it, with
// a priority and an optional list of node kinds that must enclose it:
//
//	t := parser.DefaultTable()
//	t.AddParsePoint("unless", 0, parseUnless, ast.KindBlock)
//	cu, err := parser.Parse(src, parser.WithTable(t))
//
// Candidates are tried by descending priority. A callback that returns
// nil without consuming input lets the next one try.
//
// When no point applies, the parser reads a fragment (a type in a
// declaration body, an expression in a block) and keeps it in the
// unused buffer. Later points claim those fragments: '(' after "Type
// Name" makes a method, '=' after "Type name" in a block makes a local
// declaration, ';' after an expression ends an expression statement.
// Fragments nobody claims become statements or unrecognized nodes with a
// diagnostic.
//
// # Errors
//
// Parsing never fails on bad syntax. Problems are attached to the nearest
// node as parse diagnostics (see ast.Diagnostics), and skipped tokens are
// kept as skipped-text annotations so nothing is lost. Finish only
// returns an error when reading the input fails.
//
// # Usage
//
//	p := parser.ParseCompilationUnit(r, parser.WithFile("Program.cs"))
//	node, err := p.Finish()
//
// ParseExpression and ParseStatement parse snippets; IsComplete tells a
// line-oriented front end whether more input is needed.
package parser
