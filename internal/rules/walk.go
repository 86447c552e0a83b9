package rules

import "github.com/paiml/bashrs-sub018/internal/ast"

// Walk visits every Item in the tree rooted at items, depth-first,
// including items nested inside pipelines, lists, and control-structure
// bodies. Rules that need to inspect every Command or Word in a script
// build on this instead of re-deriving the AST's shape themselves.
func Walk(items []ast.Item, visit func(ast.Item)) {
	for _, it := range items {
		walkOne(it, visit)
	}
}

func walkOne(it ast.Item, visit func(ast.Item)) {
	if it == nil {
		return
	}
	visit(it)
	switch v := it.(type) {
	case *ast.Pipeline:
		Walk(v.Stages, visit)
	case *ast.List:
		for _, e := range v.Elems {
			walkOne(e.Item, visit)
		}
	case *ast.If:
		walkOne(v.Cond, visit)
		Walk(v.Then, visit)
		for _, elif := range v.Elifs {
			walkOne(elif.Cond, visit)
			Walk(elif.Body, visit)
		}
		Walk(v.Else, visit)
	case *ast.For:
		Walk(v.Body, visit)
	case *ast.While:
		walkOne(v.Cond, visit)
		Walk(v.Body, visit)
	case *ast.Case:
		for _, arm := range v.Arms {
			Walk(arm.Body, visit)
		}
	case *ast.Function:
		Walk(v.Body, visit)
	case *ast.Subshell:
		Walk(v.Body, visit)
	case *ast.Group:
		Walk(v.Body, visit)
	}
}

// Commands collects every *ast.Command reachable from items.
func Commands(items []ast.Item) []*ast.Command {
	var out []*ast.Command
	Walk(items, func(it ast.Item) {
		if c, ok := it.(*ast.Command); ok {
			out = append(out, c)
		}
	})
	return out
}

// Words collects every Word belonging to a Command: its name, its
// args, its env assignment values, and its redirection targets.
func Words(c *ast.Command) []*ast.Word {
	var out []*ast.Word
	if c.Name != nil {
		out = append(out, c.Name)
	}
	out = append(out, c.Args...)
	for _, e := range c.Env {
		if e.Value != nil {
			out = append(out, e.Value)
		}
	}
	for _, r := range c.Redirs {
		if r.Target != nil {
			out = append(out, r.Target)
		}
	}
	return out
}

// WalkSegments visits every Segment in w, recursing into DoubleQuoted
// parts, CmdSub bodies and ProcessSub bodies.
func WalkSegments(w *ast.Word, visit func(ast.Segment)) {
	if w == nil {
		return
	}
	for _, s := range w.Segments {
		walkSegment(s, visit)
	}
}

func walkSegment(s ast.Segment, visit func(ast.Segment)) {
	visit(s)
	switch v := s.(type) {
	case *ast.DoubleQuoted:
		for _, p := range v.Parts {
			walkSegment(p, visit)
		}
	case *ast.ProcessSub:
		if v.Body != nil {
			Walk(v.Body.Items, func(it ast.Item) {
				if c, ok := it.(*ast.Command); ok {
					for _, w2 := range Words(c) {
						WalkSegments(w2, visit)
					}
				}
			})
		}
	case *ast.CmdSub:
		if v.Body != nil {
			Walk(v.Body.Items, func(it ast.Item) {
				if c, ok := it.(*ast.Command); ok {
					for _, w2 := range Words(c) {
						WalkSegments(w2, visit)
					}
				}
			})
		}
	}
}
