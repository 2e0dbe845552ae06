package mini

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/signaldeck/shell-engine/core/value"
	"github.com/signaldeck/shell-engine/sandbox"
)

type evaluator struct {
	bindings map[string]value.Value
	external map[string]bool
	out      strings.Builder
	pause    func(op string, args []value.Value) (value.Value, error)
}

func (ev *evaluator) takeOutput() string {
	s := ev.out.String()
	ev.out.Reset()
	return s
}

// runStmts executes the snippet's statements in order. The returned value is
// the last bare expression's result; assignments produce no value.
func (ev *evaluator) runStmts(stmts []stmtNode) (value.Value, bool, error) {
	var last value.Value
	hasValue := false
	for _, s := range stmts {
		if s.await {
			return value.Value{}, false, sandbox.ErrAsyncUnsupported
		}
		v, err := ev.eval(s.expr)
		if err != nil {
			return value.Value{}, false, err
		}
		if s.assign != "" {
			ev.bindings[s.assign] = v
			hasValue = false
			continue
		}
		last, hasValue = v, true
	}
	return last, hasValue, nil
}

func (ev *evaluator) eval(n node) (value.Value, error) {
	switch x := n.(type) {
	case intLit:
		return value.Int(x.v), nil
	case floatLit:
		return value.Float(x.v), nil
	case strLit:
		return value.Str(x.v), nil
	case ident:
		if v, ok := ev.bindings[x.name]; ok {
			return v, nil
		}
		return value.Value{}, fmt.Errorf("name '%s' is not defined", x.name)
	case listLit:
		items := make([]value.Value, 0, len(x.elems))
		for _, el := range x.elems {
			v, err := ev.eval(el)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.List(items...), nil
	case unaryOp:
		return ev.evalUnary(x)
	case binaryOp:
		return ev.evalBinary(x)
	case callExpr:
		return ev.evalCall(x)
	case attrExpr:
		return ev.evalAttr(x)
	}
	return value.Value{}, fmt.Errorf("unsupported expression")
}

func (ev *evaluator) evalUnary(x unaryOp) (value.Value, error) {
	v, err := ev.eval(x.x)
	if err != nil {
		return value.Value{}, err
	}
	switch v.Kind {
	case value.KindInt:
		return value.Int(-v.I), nil
	case value.KindFloat:
		return value.Float(-v.F), nil
	}
	return value.Value{}, fmt.Errorf("bad operand type for unary -: '%s'", v.Kind)
}

func (ev *evaluator) evalBinary(x binaryOp) (value.Value, error) {
	a, err := ev.eval(x.x)
	if err != nil {
		return value.Value{}, err
	}
	b, err := ev.eval(x.y)
	if err != nil {
		return value.Value{}, err
	}

	switch x.op {
	case "==":
		return value.Bool(equals(a, b)), nil
	case "!=":
		return value.Bool(!equals(a, b)), nil
	case "<", "<=", ">", ">=":
		return compare(x.op, a, b)
	}

	// String and list forms of + and *.
	if a.Kind == value.KindStr && b.Kind == value.KindStr && x.op == "+" {
		return value.Str(a.S + b.S), nil
	}
	if a.Kind == value.KindStr && b.Kind == value.KindInt && x.op == "*" {
		return value.Str(strings.Repeat(a.S, int(b.I))), nil
	}
	if a.Kind == value.KindList && b.Kind == value.KindList && x.op == "+" {
		return value.List(append(append([]value.Value{}, a.Items...), b.Items...)...), nil
	}

	if a.Kind == value.KindInt && b.Kind == value.KindInt {
		return intArith(x.op, a.I, b.I)
	}
	af, aok := numeric(a)
	bf, bok := numeric(b)
	if aok && bok {
		return floatArith(x.op, af, bf)
	}
	return value.Value{}, fmt.Errorf("unsupported operand type(s) for %s: '%s' and '%s'", x.op, a.Kind, b.Kind)
}

func numeric(v value.Value) (float64, bool) {
	switch v.Kind {
	case value.KindInt:
		return float64(v.I), true
	case value.KindFloat:
		return v.F, true
	}
	return 0, false
}

func intArith(op string, a, b int64) (value.Value, error) {
	switch op {
	case "+":
		return value.Int(a + b), nil
	case "-":
		return value.Int(a - b), nil
	case "*":
		return value.Int(a * b), nil
	case "/":
		if b == 0 {
			return value.Value{}, fmt.Errorf("division by zero")
		}
		if a%b == 0 {
			return value.Int(a / b), nil
		}
		return value.Float(float64(a) / float64(b)), nil
	case "%":
		if b == 0 {
			return value.Value{}, fmt.Errorf("integer modulo by zero")
		}
		return value.Int(a % b), nil
	}
	return value.Value{}, fmt.Errorf("unsupported operator %q", op)
}

func floatArith(op string, a, b float64) (value.Value, error) {
	switch op {
	case "+":
		return value.Float(a + b), nil
	case "-":
		return value.Float(a - b), nil
	case "*":
		return value.Float(a * b), nil
	case "/":
		if b == 0 {
			return value.Value{}, fmt.Errorf("division by zero")
		}
		return value.Float(a / b), nil
	case "%":
		return value.Value{}, fmt.Errorf("unsupported operand type(s) for %%: 'float'")
	}
	return value.Value{}, fmt.Errorf("unsupported operator %q", op)
}

func equals(a, b value.Value) bool {
	af, aok := numeric(a)
	bf, bok := numeric(b)
	if aok && bok {
		return af == bf
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.KindNull:
		return true
	case value.KindBool:
		return a.B == b.B
	case value.KindStr:
		return a.S == b.S
	case value.KindList:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !equals(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	default:
		return a.String() == b.String()
	}
}

func compare(op string, a, b value.Value) (value.Value, error) {
	var cmp int
	if af, aok := numeric(a); aok {
		bf, bok := numeric(b)
		if !bok {
			return value.Value{}, fmt.Errorf("'%s' not supported between instances of '%s' and '%s'", op, a.Kind, b.Kind)
		}
		switch {
		case af < bf:
			cmp = -1
		case af > bf:
			cmp = 1
		}
	} else if a.Kind == value.KindStr && b.Kind == value.KindStr {
		cmp = strings.Compare(a.S, b.S)
	} else {
		return value.Value{}, fmt.Errorf("'%s' not supported between instances of '%s' and '%s'", op, a.Kind, b.Kind)
	}
	switch op {
	case "<":
		return value.Bool(cmp < 0), nil
	case "<=":
		return value.Bool(cmp <= 0), nil
	case ">":
		return value.Bool(cmp > 0), nil
	default:
		return value.Bool(cmp >= 0), nil
	}
}

func (ev *evaluator) evalCall(x callExpr) (value.Value, error) {
	fn, ok := x.fn.(ident)
	if !ok {
		// Evaluate attribute callees so os.* surfaces its own failure.
		if at, isAttr := x.fn.(attrExpr); isAttr {
			if _, err := ev.evalAttr(at); err != nil {
				return value.Value{}, err
			}
		}
		return value.Value{}, fmt.Errorf("expression is not callable")
	}

	args := make([]value.Value, 0, len(x.args))
	for _, a := range x.args {
		v, err := ev.eval(a)
		if err != nil {
			return value.Value{}, err
		}
		args = append(args, v)
	}

	if ev.external[fn.name] {
		return ev.pause(fn.name, args)
	}

	switch fn.name {
	case "print":
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		ev.out.WriteString(strings.Join(parts, " "))
		ev.out.WriteByte('\n')
		return value.Null(), nil
	case "len":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("len() takes exactly one argument (%d given)", len(args))
		}
		switch args[0].Kind {
		case value.KindStr:
			return value.Int(int64(len(args[0].S))), nil
		case value.KindList:
			return value.Int(int64(len(args[0].Items))), nil
		case value.KindDict:
			return value.Int(int64(len(args[0].Pairs))), nil
		}
		return value.Value{}, fmt.Errorf("object of type '%s' has no len()", args[0].Kind)
	case "str":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("str() takes exactly one argument (%d given)", len(args))
		}
		return value.Str(args[0].String()), nil
	case "int":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("int() takes exactly one argument (%d given)", len(args))
		}
		switch args[0].Kind {
		case value.KindInt:
			return args[0], nil
		case value.KindFloat:
			return value.Int(int64(args[0].F)), nil
		case value.KindStr:
			i, err := strconv.ParseInt(strings.TrimSpace(args[0].S), 10, 64)
			if err != nil {
				return value.Value{}, fmt.Errorf("invalid literal for int(): %q", args[0].S)
			}
			return value.Int(i), nil
		}
		return value.Value{}, fmt.Errorf("int() argument must be a string or a number, not '%s'", args[0].Kind)
	}
	if v, ok := ev.bindings[fn.name]; ok {
		return value.Value{}, fmt.Errorf("'%s' object is not callable", v.Kind)
	}
	return value.Value{}, fmt.Errorf("name '%s' is not defined", fn.name)
}

func (ev *evaluator) evalAttr(x attrExpr) (value.Value, error) {
	if base, ok := x.x.(ident); ok && base.name == "os" {
		if _, bound := ev.bindings["os"]; !bound {
			return value.Value{}, sandbox.ErrSyscallUnsupported
		}
	}
	v, err := ev.eval(x.x)
	if err != nil {
		return value.Value{}, err
	}
	switch v.Kind {
	case value.KindRecord:
		if f, ok := v.Rec.Get(x.name); ok {
			return f, nil
		}
		return value.Value{}, fmt.Errorf("'%s' object has no attribute '%s'", v.Rec.Name, x.name)
	case value.KindDict:
		if f, ok := v.DictGet(x.name); ok {
			return f, nil
		}
	}
	return value.Value{}, fmt.Errorf("'%s' object has no attribute '%s'", v.Kind, x.name)
}
