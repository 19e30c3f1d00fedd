package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonParser is the tree-sitter adapter for Python sources.
type PythonParser struct{}

func (p *PythonParser) Language() string { return "python" }

func (p *PythonParser) Extensions() []string { return []string{".py"} }

func (p *PythonParser) Parse(ctx context.Context, path string, source []byte) (*File, error) {
	ts := sitter.NewParser()
	ts.SetLanguage(python.GetLanguage())

	tree, err := ts.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: no syntax tree", path)
	}

	file := &File{Path: path, Language: "python"}

	// Only direct children of the module root are candidates for
	// extraction. Nested definitions stay inside the subtree and are
	// handled by buildDecl.
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := unwrapDecorated(root.NamedChild(i))
		kind, ok := pythonDeclKind(node)
		if !ok {
			continue
		}
		decl := p.buildDecl(node, kind, source)
		if decl != nil {
			file.Decls = append(file.Decls, decl)
		}
	}

	return file, nil
}

// unwrapDecorated returns the wrapped definition for decorated_definition
// nodes, the node itself otherwise.
func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node != nil && node.Type() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

func pythonDeclKind(node *sitter.Node) (DeclKind, bool) {
	if node == nil {
		return "", false
	}
	switch node.Type() {
	case "function_definition":
		return DeclFunction, true
	case "class_definition":
		return DeclClass, true
	}
	return "", false
}

// buildDecl converts one declaration node and its whole subtree. Local
// bindings are collected over the full subtree first so call roots can be
// flagged before the tree is walked.
func (p *PythonParser) buildDecl(node *sitter.Node, kind DeclKind, source []byte) *Decl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	locals := make(map[string]struct{})
	p.collectBindings(node, source, locals)

	decl := &Decl{
		Kind: kind,
		Name: nameNode.Content(source),
		Span: nodeSpan(node),
	}
	p.walkBody(node, decl, source, locals)
	return decl
}

// collectBindings records names bound by parameters and simple assignment
// forms. This is deliberately shallow: no imports, no attribute targets,
// no type information.
func (p *PythonParser) collectBindings(node *sitter.Node, source []byte, out map[string]struct{}) {
	switch node.Type() {
	case "parameters":
		collectIdentifiers(node, source, out)
		return
	case "assignment", "augmented_assignment":
		if left := node.ChildByFieldName("left"); left != nil {
			collectIdentifiers(left, source, out)
		}
	case "for_statement":
		if left := node.ChildByFieldName("left"); left != nil {
			collectIdentifiers(left, source, out)
		}
	case "as_pattern":
		if alias := node.ChildByFieldName("alias"); alias != nil {
			collectIdentifiers(alias, source, out)
		}
	case "named_expression":
		if name := node.ChildByFieldName("name"); name != nil {
			collectIdentifiers(name, source, out)
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		p.collectBindings(node.NamedChild(i), source, out)
	}
}

// collectIdentifiers adds every identifier under node, covering tuple and
// list unpacking targets without enumerating their node types.
func collectIdentifiers(node *sitter.Node, source []byte, out map[string]struct{}) {
	if node.Type() == "identifier" {
		out[node.Content(source)] = struct{}{}
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectIdentifiers(node.NamedChild(i), source, out)
	}
}

// walkBody descends into node's children, attaching nested declarations
// as Children and call expressions to the nearest enclosing Decl.
func (p *PythonParser) walkBody(node *sitter.Node, owner *Decl, source []byte, locals map[string]struct{}) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := unwrapDecorated(node.NamedChild(i))
		if child == nil {
			continue
		}
		if kind, ok := pythonDeclKind(child); ok && child != node {
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			nested := &Decl{
				Kind: kind,
				Name: nameNode.Content(source),
				Span: nodeSpan(child),
			}
			owner.Children = append(owner.Children, nested)
			p.walkBody(child, nested, source, locals)
			continue
		}
		if child.Type() == "call" {
			if call, ok := p.analyzeCall(child, source, locals); ok {
				owner.Calls = append(owner.Calls, call)
			}
			// Arguments may contain further calls: f(g()).
			p.walkBody(child, owner, source, locals)
			continue
		}
		p.walkBody(child, owner, source, locals)
	}
}

// analyzeCall derives the structural facts of a call's callee expression.
func (p *PythonParser) analyzeCall(node *sitter.Node, source []byte, locals map[string]struct{}) (Call, bool) {
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
	case "attribute":
		cur := fn
		for cur != nil && cur.Type() == "attribute" {
			call.AttrDepth++
			cur = cur.ChildByFieldName("object")
		}
		if cur != nil && cur.Type() == "identifier" {
			call.Root = cur.Content(source)
			_, call.RootIsLocal = locals[call.Root]
		} else {
			call.RootIsValue = true
		}
	default:
		// Call on a call result, subscript, lambda, parenthesized
		// expression: never a plain name.
		call.RootIsValue = true
	}

	return call, true
}

func nodeSpan(node *sitter.Node) Span {
	return Span{
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		StartByte: node.StartByte(),
		EndByte:   node.EndByte(),
	}
}
