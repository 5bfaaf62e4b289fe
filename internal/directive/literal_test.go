package directive

import (
	"errors"
	"reflect"
	"testing"
)

func TestEvalLiteral(t *testing.T) {
	tests := []struct {
		raw      string
		expected interface{}
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{"`backtick`", "backtick"},
		{`"with \"inner\" quotes"`, `with "inner" quotes`},
		{`"tab\there"`, "tab\there"},
		{`"line\nbreak"`, "line\nbreak"},
		{`"back\\slash"`, `back\slash`},
		{`""`, ""},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"-0.5", -0.5},
		{"true", true},
		{"false", false},
		{"  99  ", int64(99)},
	}

	for i, tt := range tests {
		got, err := EvalLiteral(tt.raw)
		if err != nil {
			t.Errorf("tests[%d] - unexpected error: %v", i, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("tests[%d] - value wrong. expected=%#v, got=%#v", i, tt.expected, got)
		}
	}
}

func TestEvalLiteralRejectsNonLiterals(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"bareword",
		"1 + 2",
		"process.exit(1)",
		`"unterminated`,
		`"dangling\`,
		`"mixed'`,
		"True",
	}

	for i, raw := range tests {
		_, err := EvalLiteral(raw)
		if err == nil {
			t.Errorf("tests[%d] - expected error for %q", i, raw)
			continue
		}
		var evalErr *ArgumentEvaluationError
		if !errors.As(err, &evalErr) {
			t.Errorf("tests[%d] - error type wrong. got=%T", i, err)
		}
	}
}

func TestEvalArgs(t *testing.T) {
	vals, err := EvalArgs([]string{"5", `"ten"`, "true", "2.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []interface{}{int64(5), "ten", true, 2.5}
	if !reflect.DeepEqual(vals, expected) {
		t.Errorf("values wrong. expected=%#v, got=%#v", expected, vals)
	}

	if vals, err := EvalArgs(nil); err != nil || vals != nil {
		t.Errorf("empty input should produce nil, nil; got %#v, %v", vals, err)
	}

	if _, err := EvalArgs([]string{"5", "nope", "7"}); err == nil {
		t.Errorf("expected error on first non-literal argument")
	}
}
