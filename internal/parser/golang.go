package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoParser is the tree-sitter adapter for Go sources. Method declarations
// are deliberately not surfaced as declarations: receiver-style calls are
// never resolved, and a method name extracted as a plain function would
// attract bare-identifier calls it does not own.
type GoParser struct{}

func (g *GoParser) Language() string { return "go" }

func (g *GoParser) Extensions() []string { return []string{".go"} }

func (g *GoParser) Parse(ctx context.Context, path string, source []byte) (*File, error) {
	ts := sitter.NewParser()
	ts.SetLanguage(golang.GetLanguage())

	tree, err := ts.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: no syntax tree", path)
	}

	file := &File{Path: path, Language: "go"}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "function_declaration":
			if decl := g.buildFunction(node, source); decl != nil {
				file.Decls = append(file.Decls, decl)
			}
		case "type_declaration":
			file.Decls = append(file.Decls, g.buildTypes(node, source)...)
		}
	}

	return file, nil
}

func (g *GoParser) buildFunction(node *sitter.Node, source []byte) *Decl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	locals := make(map[string]struct{})
	g.collectBindings(node, source, locals)

	decl := &Decl{
		Kind: DeclFunction,
		Name: nameNode.Content(source),
		Span: nodeSpan(node),
	}
	g.walkBody(node, decl, source, locals)
	return decl
}

// buildTypes expands one type_declaration into a Decl per struct or
// interface spec. Aliases and named basic types are not callable and are
// skipped.
func (g *GoParser) buildTypes(node *sitter.Node, source []byte) []*Decl {
	var decls []*Decl
	for i := 0; i < int(node.NamedChildCount()); i++ {
		spec := node.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			continue
		}
		switch typeNode.Type() {
		case "struct_type", "interface_type":
			decls = append(decls, &Decl{
				Kind: DeclClass,
				Name: nameNode.Content(source),
				Span: nodeSpan(spec),
			})
		}
	}
	return decls
}

func (g *GoParser) collectBindings(node *sitter.Node, source []byte, out map[string]struct{}) {
	switch node.Type() {
	case "parameter_declaration", "variadic_parameter_declaration", "var_spec":
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.FieldNameForChild(i) == "name" {
				collectIdentifiers(node.Child(i), source, out)
			}
		}
	case "short_var_declaration", "range_clause":
		if left := node.ChildByFieldName("left"); left != nil {
			collectIdentifiers(left, source, out)
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		g.collectBindings(node.NamedChild(i), source, out)
	}
}

func (g *GoParser) walkBody(node *sitter.Node, owner *Decl, source []byte, locals map[string]struct{}) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "type_declaration" {
			// Function-local types: invisible as symbols, kept as
			// nested declarations for the scanner's depth accounting.
			owner.Children = append(owner.Children, g.buildTypes(child, source)...)
			continue
		}
		if child.Type() == "call_expression" {
			if call, ok := g.analyzeCall(child, source, locals); ok {
				owner.Calls = append(owner.Calls, call)
			}
		}
		g.walkBody(child, owner, source, locals)
	}
}

func (g *GoParser) analyzeCall(node *sitter.Node, source []byte, locals map[string]struct{}) (Call, bool) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return Call{}, false
	}

	call := Call{
		Text: collapseWhitespace(fn.Content(source)),
		Span: nodeSpan(node),
	}

	switch fn.Type() {
	case "identifier":
		call.Root = fn.Content(source)
	case "selector_expression":
		cur := fn
		for cur != nil && cur.Type() == "selector_expression" {
			call.AttrDepth++
			cur = cur.ChildByFieldName("operand")
		}
		if cur != nil && cur.Type() == "identifier" {
			call.Root = cur.Content(source)
			_, call.RootIsLocal = locals[call.Root]
		} else {
			call.RootIsValue = true
		}
	default:
		call.RootIsValue = true
	}

	return call, true
}
