package ir

import "testing"

func TestInstructionString(t *testing.T) {
	tests := []struct {
		inst Instruction
		want string
	}{
		{ConstantAssign{Target: "!1", Value: -7}, "[!1] <- -7"},
		{Move{Target: "x", Source: "y"}, "[x] <- [y]"},
		{BinaryOperation{Target: "a", Op: OpAdd, Left: "!1", Right: "!4"}, "[a] <- ADD([!1], [!4])"},
		{BinaryOperation{Target: "a", Op: OpUnsignedShiftRight, Left: "b", Right: "c"}, "[a] <- UNSIGNED_SHIFT_RIGHT([b], [c])"},
		{UnaryOperation{Target: "!2", Op: OpNegate, Source: "x"}, "[!2] <- NEGATE([x])"},
		{Call{Target: "!2", Func: "max", Args: []string{"!1", "x"}}, "[!2] <- CALL max([!1], [x])"},
		{Call{Target: "w", Func: "width"}, "[w] <- CALL width()"},
		{Return{Source: "x"}, "RETURN [x]"},
	}
	for _, tt := range tests {
		if got := tt.inst.String(); got != tt.want {
			t.Errorf("String() = %q; want %q", got, tt.want)
		}
	}
}

func TestInstructionEquality(t *testing.T) {
	same := []struct{ a, b Instruction }{
		{ConstantAssign{"x", 1}, ConstantAssign{"x", 1}},
		{Move{"x", "y"}, Move{"x", "y"}},
		{BinaryOperation{"x", OpAdd, "a", "b"}, BinaryOperation{"x", OpAdd, "a", "b"}},
		{UnaryOperation{"x", OpNot, "a"}, UnaryOperation{"x", OpNot, "a"}},
		{Call{"x", "f", []string{"a", "b"}}, Call{"x", "f", []string{"a", "b"}}},
		{Call{"x", "f", nil}, Call{"x", "f", []string{}}},
		{Return{"x"}, Return{"x"}},
	}
	for _, tc := range same {
		if !Equal(tc.a, tc.b) {
			t.Errorf("Equal(%s, %s) = false", tc.a, tc.b)
		}
		if Hash(tc.a) != Hash(tc.b) {
			t.Errorf("Hash(%s) != Hash(%s)", tc.a, tc.b)
		}
	}

	different := []struct{ a, b Instruction }{
		{ConstantAssign{"x", 1}, ConstantAssign{"x", 2}},
		{ConstantAssign{"x", 1}, ConstantAssign{"y", 1}},
		{Move{"x", "y"}, Move{"y", "x"}},
		{BinaryOperation{"x", OpAdd, "a", "b"}, BinaryOperation{"x", OpSubtract, "a", "b"}},
		{BinaryOperation{"x", OpAdd, "a", "b"}, BinaryOperation{"x", OpAdd, "b", "a"}},
		{UnaryOperation{"x", OpNot, "a"}, UnaryOperation{"x", OpNegate, "a"}},
		{Call{"x", "f", []string{"a", "b"}}, Call{"x", "f", []string{"a"}}},
		{Call{"x", "f", []string{"ab"}}, Call{"x", "f", []string{"a", "b"}}},
		{Call{"x", "f", nil}, Call{"x", "g", nil}},
		{Return{"x"}, Return{"y"}},
		// Same operands, different variant.
		{Move{"x", "y"}, UnaryOperation{"x", OpNegate, "y"}},
		{Return{"x"}, Move{"x", "x"}},
	}
	for _, tc := range different {
		if Equal(tc.a, tc.b) || Equal(tc.b, tc.a) {
			t.Errorf("Equal(%s, %s) = true", tc.a, tc.b)
		}
		if Hash(tc.a) == Hash(tc.b) {
			t.Errorf("Hash(%s) == Hash(%s)", tc.a, tc.b)
		}
	}
}

func TestHashUsableAsDedupKey(t *testing.T) {
	insts := []Instruction{
		ConstantAssign{"!1", 1},
		Call{"!2", "f", []string{"!1"}},
		ConstantAssign{"!1", 1},
		Call{"!2", "f", []string{"!1"}},
		Return{"!2"},
	}
	seen := map[uint64][]Instruction{}
	unique := 0
	for _, inst := range insts {
		dup := false
		for _, prev := range seen[Hash(inst)] {
			if Equal(prev, inst) {
				dup = true
			}
		}
		if !dup {
			seen[Hash(inst)] = append(seen[Hash(inst)], inst)
			unique++
		}
	}
	if unique != 3 {
		t.Errorf("unique instructions = %d; want 3", unique)
	}
}

func TestOperatorTables(t *testing.T) {
	binary := map[string]BinOp{
		"+": OpAdd, "-": OpSubtract, "*": OpMultiply, "/": OpDivide, "%": OpRemainder,
		"&": OpAnd, "|": OpOr, "^": OpXor, "<<": OpShiftLeft, ">>": OpShiftRight,
		">>>": OpUnsignedShiftRight,
	}
	for tok, want := range binary {
		if got, ok := LookupBinary(tok); !ok || got != want {
			t.Errorf("LookupBinary(%q) = %v, %v; want %v", tok, got, ok, want)
		}
	}
	for _, tok := range []string{"NEG", "~", "=", "**", ""} {
		if _, ok := LookupBinary(tok); ok {
			t.Errorf("LookupBinary(%q) succeeded", tok)
		}
	}

	if op, ok := LookupUnary("NEG"); !ok || op != OpNegate {
		t.Errorf("LookupUnary(NEG) = %v, %v", op, ok)
	}
	if op, ok := LookupUnary("~"); !ok || op != OpNot {
		t.Errorf("LookupUnary(~) = %v, %v", op, ok)
	}
	if _, ok := LookupUnary("-"); ok {
		t.Error("LookupUnary(-) succeeded; minus is only binary")
	}
}
