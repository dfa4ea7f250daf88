package ir

import (
	"errors"
	"strconv"

	"scriptc/pkg/script"
)

// CompileSource parses src and compiles it.
func CompileSource(src string) (*Context, error) {
	tree, err := script.Parse(src)
	if err != nil {
		return nil, err
	}
	return Compile(tree)
}

// Compile compiles a whole script tree: either a List of statements or a
// single statement. No partial result is returned on error.
func Compile(tree *script.Node) (*Context, error) {
	ctx := NewContext()
	if err := compileScript(tree, ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

// compileScript compiles each statement of a List (or tree itself when it
// is a single statement), resetting synthetic numbering after each one.
func compileScript(tree *script.Node, ctx *Context) error {
	if tree.Kind != script.List {
		_, err := compileExpr(tree, ctx, "")
		ctx.resetSynthetics()
		return err
	}
	for _, stmt := range tree.Children {
		if _, err := compileExpr(stmt, ctx, ""); err != nil {
			return err
		}
		ctx.resetSynthetics()
	}
	return nil
}

func fail(n *script.Node, err error) error {
	return &CompileError{Line: n.Line, Token: n.Text, Err: err}
}

// compileExpr compiles the subtree n and returns the local that holds its
// value. When target is non-empty the value is written there directly.
// Statements that produce no value return "".
func compileExpr(n *script.Node, ctx *Context, target string) (string, error) {
	switch n.Kind {
	case script.Number, script.Ident:
		if !n.IsLeaf() {
			return "", fail(n, ErrUnknownConstruct)
		}
		return resolveLocal(n, ctx, target)

	case script.Binary:
		op, ok := LookupBinary(n.Text)
		if !ok || len(n.Children) != 2 {
			return "", fail(n, ErrUnknownConstruct)
		}
		left, err := compileValue(n.Children[0], ctx, "")
		if err != nil {
			return "", err
		}
		right, err := compileValue(n.Children[1], ctx, "")
		if err != nil {
			return "", err
		}
		dst := ctx.allocate(target)
		ctx.append(BinaryOperation{Target: dst, Op: op, Left: left, Right: right})
		return dst, nil

	case script.Unary:
		op, ok := LookupUnary(n.Text)
		if !ok || len(n.Children) != 1 {
			return "", fail(n, ErrUnknownConstruct)
		}
		src, err := compileValue(n.Children[0], ctx, "")
		if err != nil {
			return "", err
		}
		dst := ctx.allocate(target)
		ctx.append(UnaryOperation{Target: dst, Op: op, Source: src})
		return dst, nil

	case script.Assign:
		if len(n.Children) != 2 {
			return "", fail(n, ErrUnknownConstruct)
		}
		lhs := n.Children[0]
		if lhs.Kind != script.Ident || !lhs.IsLeaf() || !script.IsIdentifier(lhs.Text) {
			return "", fail(lhs, ErrBadAssignTarget)
		}
		// Declared even if never read, so the backend allocates it.
		ctx.declare(lhs.Text)
		if _, err := compileValue(n.Children[1], ctx, lhs.Text); err != nil {
			return "", err
		}
		if target != "" && target != lhs.Text {
			ctx.append(Move{Target: target, Source: lhs.Text})
			return target, nil
		}
		return lhs.Text, nil

	case script.Call:
		if len(n.Children) == 0 {
			return "", fail(n, ErrBadCall)
		}
		fn := n.Children[0]
		if fn.Kind != script.Ident || !fn.IsLeaf() {
			return "", fail(fn, ErrBadCall)
		}
		args := make([]string, 0, len(n.Children)-1)
		for _, c := range n.Children[1:] {
			arg, err := compileValue(c, ctx, "")
			if err != nil {
				return "", err
			}
			args = append(args, arg)
		}
		dst := ctx.allocate(target)
		ctx.append(Call{Target: dst, Func: fn.Text, Args: args})
		return dst, nil

	case script.Return:
		if len(n.Children) != 1 {
			return "", fail(n, ErrUnknownConstruct)
		}
		src, err := compileValue(n.Children[0], ctx, "")
		if err != nil {
			return "", err
		}
		ctx.append(Return{Source: src})
		return "", nil

	case script.Block, script.List:
		for _, stmt := range n.Children {
			if err := compileScript(stmt, ctx); err != nil {
				return "", err
			}
		}
		return "", nil
	}
	return "", fail(n, ErrUnknownConstruct)
}

// compileValue is compileExpr for positions that need a value.
func compileValue(n *script.Node, ctx *Context, target string) (string, error) {
	name, err := compileExpr(n, ctx, target)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fail(n, ErrNotAValue)
	}
	return name, nil
}

// resolveLocal handles a leaf. A literal is always materialized with a
// ConstantAssign; a variable is declared and, if a target was forced,
// copied into it.
func resolveLocal(n *script.Node, ctx *Context, target string) (string, error) {
	if n.Kind == script.Number {
		v, err := strconv.ParseInt(n.Text, 10, 32)
		if errors.Is(err, strconv.ErrRange) {
			return "", fail(n, ErrLiteralRange)
		}
		if err != nil {
			return "", fail(n, ErrUnknownConstruct)
		}
		dst := ctx.allocate(target)
		ctx.append(ConstantAssign{Target: dst, Value: int32(v)})
		return dst, nil
	}

	if !script.IsIdentifier(n.Text) {
		return "", fail(n, ErrUnknownConstruct)
	}
	ctx.declare(n.Text)
	if target == "" {
		return n.Text, nil
	}
	ctx.append(Move{Target: target, Source: n.Text})
	return target, nil
}
