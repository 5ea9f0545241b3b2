package scanner

import (
	"bufio"
	"bytes"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Assignment is a literal NAME=value found in shell or .env text.
type Assignment struct {
	Name  string
	Value string
}

// ShellAssignments parses shell rc text and returns assignments whose
// values are literals, in source order. Text the shell parser rejects is
// read line by line instead.
func ShellAssignments(content []byte) []Assignment {
	f, err := syntax.NewParser().Parse(bytes.NewReader(content), "")
	if err != nil {
		return EnvAssignments(content)
	}
	var out []Assignment
	syntax.Walk(f, func(node syntax.Node) bool {
		a, ok := node.(*syntax.Assign)
		if !ok || a.Name == nil || a.Value == nil || a.Array != nil {
			return true
		}
		if v, ok := literal(a.Value); ok {
			out = append(out, Assignment{Name: a.Name.Value, Value: v})
		}
		return true
	})
	return out
}

// literal returns the value of a word made only of literal and quoted
// parts. Words containing expansions are rejected.
func literal(w *syntax.Word) (string, bool) {
	var b strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			b.WriteString(p.Value)
		case *syntax.SglQuoted:
			b.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				lit, ok := inner.(*syntax.Lit)
				if !ok {
					return "", false
				}
				b.WriteString(lit.Value)
			}
		default:
			return "", false
		}
	}
	return b.String(), true
}

// EnvAssignments reads KEY=value lines as found in .env files. Comments,
// blank lines and an "export " prefix are skipped; matching surrounding
// quotes are removed.
func EnvAssignments(content []byte) []Assignment {
	var out []Assignment
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t") {
			continue
		}
		out = append(out, Assignment{Name: name, Value: unquote(strings.TrimSpace(value))})
	}
	return out
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
