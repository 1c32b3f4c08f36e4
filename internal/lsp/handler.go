package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"jmmc/internal/ast"
	"jmmc/internal/compiler"
)

var log = commonlog.GetLogger("jmmc.lsp")

// Define the set of supported semantic token types advertised in the legend
var SemanticTokenTypes = []string{
	"namespace",
	"type",
	"method",
	"variable",
	"parameter",
	"property",
	"number",
}

// Define the set of supported semantic token modifiers
var SemanticTokenModifiers = []string{
	"declaration",
	"static",
}

// document is the last known state of an open file
type document struct {
	text    string
	program *ast.Program // last program that parsed, kept across syntax errors
}

// JmmHandler implements the LSP server handlers for Java--
type JmmHandler struct {
	mu     sync.RWMutex
	docs   map[protocol.DocumentUri]*document
	config compiler.Config
}

// NewJmmHandler creates a handler that compiles every document with config
func NewJmmHandler(config compiler.Config) *JmmHandler {
	return &JmmHandler{
		docs:   make(map[protocol.DocumentUri]*document),
		config: config,
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *JmmHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *JmmHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *JmmHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

func (h *JmmHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen compiles the opened document and publishes its diagnostics
func (h *JmmHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debugf("opened %s", params.TextDocument.URI)
	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange recompiles the document from the last full-content change
func (h *JmmHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed %s", params.TextDocument.URI)

	text, found := "", false
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			text, found = whole.Text, true
		}
	}
	if !found {
		return fmt.Errorf("no full-content change for %s", params.TextDocument.URI)
	}
	return h.update(ctx, params.TextDocument.URI, text)
}

func (h *JmmHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Debugf("closed %s", params.TextDocument.URI)

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.docs, params.TextDocument.URI)
	return nil
}

// TextDocumentCompletion offers keywords plus the members of the document's class
func (h *JmmHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	h.mu.RLock()
	doc := h.docs[params.TextDocument.URI]
	h.mu.RUnlock()

	var program *ast.Program
	if doc != nil {
		program = doc.program
	}
	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        completionItems(program),
	}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *JmmHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	h.mu.RLock()
	doc := h.docs[params.TextDocument.URI]
	h.mu.RUnlock()

	if doc == nil {
		return nil, fmt.Errorf("document %s is not open", params.TextDocument.URI)
	}

	tokens := collectSemanticTokens(doc.program, doc.text)

	var data []uint32
	var prevLine, prevStart uint32

	// Encode tokens into LSP wire format (using delta-line, delta-start compression)
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		} else {
			deltaStart = token.StartChar
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

// update compiles text, records the document and publishes its diagnostics.
// An empty list is published too so stale markers get cleared.
func (h *JmmHandler) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	result, errs := compiler.Check(path, text, h.config)

	h.mu.Lock()
	doc, ok := h.docs[uri]
	if !ok {
		doc = &document{}
		h.docs[uri] = doc
	}
	doc.text = text
	if result.Program != nil {
		doc.program = result.Program
	}
	h.mu.Unlock()

	diagnostics := ConvertErrors(errs)
	log.Debugf("%s: %d diagnostics", path, len(diagnostics))
	sendDiagnosticNotification(ctx, uri, diagnostics)
	return nil
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) to get C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
