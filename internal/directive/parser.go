package directive

import (
	"fmt"
	"strings"
)

const (
	toolPrefix  = "TOOL:"
	agentPrefix = "AGENT:"

	doneSentinel = "done"

	// Characters that terminate the identifier segment after a
	// directive prefix.
	identifierDelims = "(. \n"
)

// Parse extracts directives from one raw model response. Directives
// are recognized at line starts only; everything else is prose and is
// carried into Content verbatim. Malformed directives never fail the
// parse: a line whose grammar does not complete is copied through as
// plain text, and an unterminated argument list yields an empty
// argument sequence plus a warning.
func Parse(raw string) Message {
	p := &parser{s: NewScanner(raw)}
	p.run()
	p.msg.Content = p.content
	return p.msg
}

type parser struct {
	s       *Scanner
	msg     Message
	content string

	// afterDirective is set between a directive line and the next
	// appended content so the single separating blank line can be
	// enforced.
	afterDirective bool
}

func (p *parser) run() {
	for !p.s.EOF() {
		mark := p.s.Mark()
		if p.s.HasPrefix(toolPrefix) {
			if p.parseTool() {
				continue
			}
			p.s.Reset(mark)
		} else if p.s.HasPrefix(agentPrefix) {
			if p.parseAgent() {
				continue
			}
			p.s.Reset(mark)
		}
		p.ordinaryLine()
	}
}

// ordinaryLine copies the current line into content verbatim,
// including its trailing newline when present.
func (p *parser) ordinaryLine() {
	line := p.s.NextUntil("\n")
	hasNewline := !p.s.EOF()
	if hasNewline {
		p.s.Next()
	}
	if line == "" {
		// A blank source line directly after a directive is itself
		// the separator.
		p.content += "\n"
		p.afterDirective = false
		return
	}
	if p.afterDirective {
		p.content = ensureBlankLine(p.content)
		p.afterDirective = false
	}
	p.content += line
	if hasNewline {
		p.content += "\n"
	}
}

// parseTool consumes a TOOL: directive at the cursor. Returns false
// (without restoring the cursor) when the grammar does not complete.
func (p *parser) parseTool() bool {
	p.advance(len(toolPrefix))
	seg := p.s.NextUntil(identifierDelims)

	if seg == doneSentinel {
		p.msg.Done = true
		p.emitDirective("[Task completed]")
		return true
	}

	corr, name := splitCorrelation(seg)
	if name == "" || p.s.Peek() != '.' {
		return false
	}
	p.s.Next()
	fn := p.s.NextUntil(identifierDelims)
	if fn == "" || p.s.Peek() != '(' {
		return false
	}

	args, ok := p.s.ParseArguments()
	if !ok {
		p.warnf("unterminated argument list in TOOL directive %s.%s", name, fn)
	}

	p.msg.ToolCalls = append(p.msg.ToolCalls, ToolCall{
		Tool:          name,
		CorrelationID: corr,
		Function:      fn,
		RawArgs:       args,
	})
	p.emitDirective(fmt.Sprintf("[Using %s.%s(%s)]", name, fn, strings.Join(args, ", ")))
	return true
}

// parseAgent consumes an AGENT: directive at the cursor.
func (p *parser) parseAgent() bool {
	p.advance(len(agentPrefix))
	seg := p.s.NextUntil(identifierDelims)

	corr, name := splitCorrelation(seg)
	if name == "" || p.s.Peek() != '(' {
		return false
	}

	args, ok := p.s.ParseArguments()
	if !ok {
		p.warnf("unterminated argument list in AGENT directive for %s", name)
	}
	message := ""
	if len(args) > 0 {
		message = stripQuotes(args[0])
	}

	p.msg.AgentCalls = append(p.msg.AgentCalls, AgentCall{
		Agent:         name,
		CorrelationID: corr,
		Message:       message,
	})
	p.emitDirective(fmt.Sprintf("[Delegating to agent %s: %q]", name, message))
	return true
}

// emitDirective appends a bracketed description with the surrounding
// blank-line rules: a blank line before it (unless content is still
// empty), same-line trailing text after a forced blank line, and the
// directive line's own newline carried through.
func (p *parser) emitDirective(desc string) {
	p.content = ensureBlankLine(p.content)
	p.content += desc

	rest := p.s.NextUntil("\n")
	hasNewline := !p.s.EOF()
	if hasNewline {
		p.s.Next()
	}

	if trailing := strings.TrimSpace(rest); trailing != "" {
		p.content += "\n\n" + trailing
		if hasNewline {
			p.content += "\n"
		}
		p.afterDirective = false
		return
	}
	if hasNewline {
		p.content += "\n"
	}
	p.afterDirective = true
}

func (p *parser) advance(n int) {
	for i := 0; i < n; i++ {
		p.s.Next()
	}
}

func (p *parser) warnf(format string, args ...interface{}) {
	p.msg.Warnings = append(p.msg.Warnings,
		fmt.Sprintf("line %d: ", p.s.Line())+fmt.Sprintf(format, args...))
}

// splitCorrelation applies the correlation-id tie-break: the segment
// carries a correlation id only when splitting on ':' yields exactly
// two non-empty parts. Any other shape means the whole segment is the
// name and the id is the default.
func splitCorrelation(seg string) (corr, name string) {
	parts := strings.Split(seg, ":")
	if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		return parts[0], parts[1]
	}
	return DefaultCorrelationID, seg
}

// stripQuotes removes one matching layer of surrounding quotes from a
// raw argument and resolves backslash escapes inside it. Unquoted
// input is returned unchanged.
func stripQuotes(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	q := raw[0]
	if (q != '"' && q != '\'' && q != '`') || raw[len(raw)-1] != q {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// ensureBlankLine pads content so it ends with exactly one blank line.
// Empty content stays empty so a leading directive gets no separator.
func ensureBlankLine(content string) string {
	switch {
	case content == "":
		return content
	case strings.HasSuffix(content, "\n\n"):
		return content
	case strings.HasSuffix(content, "\n"):
		return content + "\n"
	default:
		return content + "\n\n"
	}
}
