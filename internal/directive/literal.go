package directive

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgumentEvaluationError reports a raw argument substring that is not
// one of the accepted literal forms.
type ArgumentEvaluationError struct {
	Raw    string
	Reason string
}

func (e *ArgumentEvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate argument %q: %s", e.Raw, e.Reason)
}

// EvalLiteral interprets one raw argument substring as a typed value.
// Only quoted strings (double quote, backtick, or single quote, with
// backslash escapes), integers, floats, and booleans are accepted;
// anything else returns an *ArgumentEvaluationError. Model output is
// never executed as an expression.
func EvalLiteral(raw string) (interface{}, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ArgumentEvaluationError{Raw: raw, Reason: "empty argument"}
	}

	switch trimmed[0] {
	case '"', '\'', '`':
		return evalQuoted(trimmed)
	}

	switch trimmed {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f, nil
	}

	return nil, &ArgumentEvaluationError{Raw: raw, Reason: "not a string, number, or boolean literal"}
}

// EvalArgs interprets every raw argument, failing on the first one
// that is not a literal.
func EvalArgs(rawArgs []string) ([]interface{}, error) {
	if len(rawArgs) == 0 {
		return nil, nil
	}
	vals := make([]interface{}, 0, len(rawArgs))
	for _, raw := range rawArgs {
		v, err := EvalLiteral(raw)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func evalQuoted(trimmed string) (interface{}, error) {
	quote := trimmed[0]
	if len(trimmed) < 2 || trimmed[len(trimmed)-1] != quote {
		return nil, &ArgumentEvaluationError{Raw: trimmed, Reason: "unterminated string literal"}
	}
	inner := trimmed[1 : len(trimmed)-1]

	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if ch == quote {
			return nil, &ArgumentEvaluationError{Raw: trimmed, Reason: "unescaped quote inside string literal"}
		}
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		i++
		if i >= len(inner) {
			return nil, &ArgumentEvaluationError{Raw: trimmed, Reason: "dangling escape at end of string literal"}
		}
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			// Everything else escapes to itself, including the
			// quote characters and the backslash.
			b.WriteByte(inner[i])
		}
	}
	return b.String(), nil
}
