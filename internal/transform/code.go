package transform

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/graphlore/graphlore/internal/loader"
	"github.com/graphlore/graphlore/internal/source"
)

// FallbackChunkLines is the fixed line count per chunk used when a source
// cannot be parsed. The fallback never fails on malformed input.
const FallbackChunkLines = 50

// CodeTransformer extracts function and class definitions as individual
// chunks, with CALLS and INHERITS relations. Languages without a usable
// parser, and files the parser rejects, go through the generic fixed-line
// chunker instead.
type CodeTransformer struct{}

// NewCodeTransformer creates a CodeTransformer.
func NewCodeTransformer() *CodeTransformer {
	return &CodeTransformer{}
}

// Name returns the transformer identifier.
func (t *CodeTransformer) Name() string { return "code" }

// CanHandle reports true for code-typed sources.
func (t *CodeTransformer) CanHandle(src *source.DataSource) bool {
	return src.Type == source.SourceTypeCode
}

// Transform extracts definitions and relations from source code. Parser
// failures are not propagated: the fixed-line fallback guarantees a
// successful result with at least one chunk for any non-empty input.
func (t *CodeTransformer) Transform(ctx context.Context, src *source.DataSource, content string) (*source.ProcessingResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewTransformError(fmt.Sprintf("code source %s has no content", src.Name), nil)
	}

	lang := src.StringMetadata("language")
	if lang == "" {
		lang = loader.DetectLanguage(src.Path)
	}

	var result *source.ProcessingResult
	var err error
	switch lang {
	case "go":
		result, err = t.transformGo(src, content)
	case "python":
		result, err = t.transformPython(src, content)
	default:
		err = fmt.Errorf("no parser for language %q", lang)
	}
	if err != nil || len(result.Chunks) == 0 {
		result = t.fallback(src, content, lang)
	}
	result.WithMetadata("transformer", t.Name()).WithMetadata("language", lang)
	return result, nil
}

// fallback chunks the file into fixed 50-line blocks. It cannot fail.
func (t *CodeTransformer) fallback(src *source.DataSource, content, lang string) *source.ProcessingResult {
	result := source.NewProcessingResult(src.ID)
	lines := strings.Split(content, "\n")
	for start := 0; start < len(lines); start += FallbackChunkLines {
		end := start + FallbackChunkLines
		if end > len(lines) {
			end = len(lines)
		}
		block := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(block) == "" && len(result.Chunks) > 0 {
			continue
		}
		chunk := source.NewChunk(src.ID, source.ChunkTypeCodeModule, block).
			WithTitle(fmt.Sprintf("%s lines %d-%d", src.Name, start+1, end)).
			WithMetadata("start_line", start+1).
			WithMetadata("end_line", end).
			WithMetadata("generic_fallback", true)
		if lang != "" {
			chunk.WithMetadata("language", lang)
		}
		result.Chunks = append(result.Chunks, chunk)
	}
	result.WithMetadata("fallback", true)
	return result
}

// transformGo parses Go source with go/parser and extracts one chunk per
// top-level function and type declaration.
func (t *CodeTransformer) transformGo(src *source.DataSource, content string) (*source.ProcessingResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, src.Name, content, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	result := source.NewProcessingResult(src.ID)

	snippet := func(start, end token.Pos) (string, int, int) {
		sp := fset.Position(start)
		ep := fset.Position(end)
		so, eo := sp.Offset, ep.Offset
		if so < 0 || eo > len(content) || so > eo {
			return "", sp.Line, ep.Line
		}
		return content[so:eo], sp.Line, ep.Line
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			if d.Recv != nil && len(d.Recv.List) > 0 {
				name = receiverTypeName(d.Recv.List[0].Type) + "." + name
			}
			start := d.Pos()
			if d.Doc != nil {
				start = d.Doc.Pos()
			}
			body, startLine, endLine := snippet(start, d.End())
			chunk := source.NewChunk(src.ID, source.ChunkTypeCodeFunction, body).
				WithTitle(name).
				WithMetadata("parameters", goParamNames(d.Type.Params)).
				WithMetadata("start_line", startLine).
				WithMetadata("end_line", endLine)
			if d.Doc != nil {
				chunk.WithSummary(firstLine(d.Doc.Text()))
			}
			result.Chunks = append(result.Chunks, chunk)

			for _, callee := range goCallees(d) {
				result.Relations = append(result.Relations,
					source.NewRelation(src.ID, name, callee, source.RelationCalls))
			}

		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				start := ts.Pos()
				if d.Doc != nil && len(d.Specs) == 1 {
					start = d.Doc.Pos()
				}
				body, startLine, endLine := snippet(start, ts.End())
				chunk := source.NewChunk(src.ID, source.ChunkTypeCodeClass, body).
					WithTitle(ts.Name.Name).
					WithMetadata("start_line", startLine).
					WithMetadata("end_line", endLine)
				if d.Doc != nil {
					chunk.WithSummary(firstLine(d.Doc.Text()))
				}
				result.Chunks = append(result.Chunks, chunk)

				for _, base := range goEmbeddedTypes(ts) {
					result.Relations = append(result.Relations,
						source.NewRelation(src.ID, ts.Name.Name, base, source.RelationInherits))
				}
			}
		}
	}

	return result, nil
}

// receiverTypeName resolves the named type of a method receiver.
func receiverTypeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return receiverTypeName(e.X)
	case *ast.IndexExpr:
		return receiverTypeName(e.X)
	case *ast.IndexListExpr:
		return receiverTypeName(e.X)
	default:
		return ""
	}
}

// goParamNames lists the parameter names of a function signature.
func goParamNames(fields *ast.FieldList) []string {
	var names []string
	if fields == nil {
		return names
	}
	for _, field := range fields.List {
		for _, n := range field.Names {
			names = append(names, n.Name)
		}
	}
	return names
}

// goCallees collects the callee names referenced by a function body.
// Selector calls keep their qualifier (pkg.Fn, recv.Method).
func goCallees(fn *ast.FuncDecl) []string {
	if fn.Body == nil {
		return nil
	}
	seen := make(map[string]bool)
	var callees []string
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		var name string
		switch fun := call.Fun.(type) {
		case *ast.Ident:
			name = fun.Name
		case *ast.SelectorExpr:
			if x, ok := fun.X.(*ast.Ident); ok {
				name = x.Name + "." + fun.Sel.Name
			} else {
				name = fun.Sel.Name
			}
		}
		if name != "" && !seen[name] {
			seen[name] = true
			callees = append(callees, name)
		}
		return true
	})
	return callees
}

// goEmbeddedTypes returns the embedded (inherited) type names of a struct or
// interface declaration.
func goEmbeddedTypes(ts *ast.TypeSpec) []string {
	var bases []string
	collect := func(fields *ast.FieldList) {
		if fields == nil {
			return
		}
		for _, field := range fields.List {
			if len(field.Names) > 0 {
				continue // named field, not embedded
			}
			if name := receiverTypeName(field.Type); name != "" {
				bases = append(bases, name)
			} else if sel, ok := field.Type.(*ast.SelectorExpr); ok {
				if x, ok := sel.X.(*ast.Ident); ok {
					bases = append(bases, x.Name+"."+sel.Sel.Name)
				}
			}
		}
	}
	switch typ := ts.Type.(type) {
	case *ast.StructType:
		collect(typ.Fields)
	case *ast.InterfaceType:
		collect(typ.Methods)
	}
	return bases
}

var (
	pythonDef   = regexp.MustCompile(`^(\s*)def\s+(\w+)\s*\(([^)]*)`)
	pythonClass = regexp.MustCompile(`^(\s*)class\s+(\w+)\s*(?:\(([^)]*)\))?\s*:`)
	pythonCall  = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_.]*)\s*\(`)
)

// pythonKeywords are callables-looking tokens that are statements, not calls.
var pythonKeywords = map[string]bool{
	"if": true, "elif": true, "while": true, "for": true, "return": true,
	"def": true, "class": true, "with": true, "assert": true, "lambda": true,
	"yield": true, "and": true, "or": true, "not": true, "in": true,
	"except": true, "raise": true, "del": true,
}

// transformPython extracts top-level functions and classes with line-based
// heuristics. Indented helpers stay inside their parent's chunk.
func (t *CodeTransformer) transformPython(src *source.DataSource, content string) (*source.ProcessingResult, error) {
	lines := strings.Split(content, "\n")

	type definition struct {
		kind   source.ChunkType
		name   string
		params string
		bases  []string
		start  int // inclusive line index
		end    int // exclusive line index
	}

	var defs []definition
	for i, line := range lines {
		if m := pythonDef.FindStringSubmatch(line); m != nil && m[1] == "" {
			defs = append(defs, definition{
				kind:   source.ChunkTypeCodeFunction,
				name:   m[2],
				params: strings.TrimSpace(m[3]),
				start:  i,
			})
		} else if m := pythonClass.FindStringSubmatch(line); m != nil && m[1] == "" {
			var bases []string
			for _, base := range strings.Split(m[3], ",") {
				if b := strings.TrimSpace(base); b != "" && b != "object" {
					bases = append(bases, b)
				}
			}
			defs = append(defs, definition{
				kind:  source.ChunkTypeCodeClass,
				name:  m[2],
				bases: bases,
				start: i,
			})
		}
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no top-level definitions in %s", src.Name)
	}

	for i := range defs {
		if i+1 < len(defs) {
			defs[i].end = defs[i+1].start
		} else {
			defs[i].end = len(lines)
		}
	}

	result := source.NewProcessingResult(src.ID)
	for _, def := range defs {
		body := strings.Join(lines[def.start:def.end], "\n")
		chunk := source.NewChunk(src.ID, def.kind, strings.TrimRight(body, "\n ")).
			WithTitle(def.name).
			WithMetadata("start_line", def.start+1).
			WithMetadata("end_line", def.end)
		if def.params != "" {
			chunk.WithMetadata("parameters", strings.Split(def.params, ","))
		}
		if doc := pythonDocstring(lines[def.start:def.end]); doc != "" {
			chunk.WithSummary(doc)
		}
		result.Chunks = append(result.Chunks, chunk)

		if def.kind == source.ChunkTypeCodeFunction {
			seen := map[string]bool{def.name: true}
			for _, m := range pythonCall.FindAllStringSubmatch(body, -1) {
				callee := m[1]
				if pythonKeywords[callee] || seen[callee] {
					continue
				}
				seen[callee] = true
				result.Relations = append(result.Relations,
					source.NewRelation(src.ID, def.name, callee, source.RelationCalls))
			}
		}
		for _, base := range def.bases {
			result.Relations = append(result.Relations,
				source.NewRelation(src.ID, def.name, base, source.RelationInherits))
		}
	}
	return result, nil
}

// pythonDocstring returns the first line of a definition's docstring.
func pythonDocstring(defLines []string) string {
	for i := 1; i < len(defLines) && i < 5; i++ {
		trimmed := strings.TrimSpace(defLines[i])
		if trimmed == "" {
			continue
		}
		for _, q := range []string{`"""`, "'''"} {
			if strings.HasPrefix(trimmed, q) {
				doc := strings.TrimPrefix(trimmed, q)
				if idx := strings.Index(doc, q); idx >= 0 {
					doc = doc[:idx]
				}
				return firstLine(strings.TrimSpace(doc))
			}
		}
		return ""
	}
	return ""
}

// firstLine returns the first non-empty line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
