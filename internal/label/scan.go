package label

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/provider"
)

// Patterns is the ordered regex list for one label, most specific first.
type Patterns struct {
	Label string
	exprs []*regexp.Regexp
}

// CompilePatterns compiles raw patterns in order.
func CompilePatterns(name string, raw []string) (*Patterns, error) {
	p := &Patterns{Label: name}
	for i, r := range raw {
		re, err := regexp.Compile(r)
		if err != nil {
			return nil, &provider.ValidationError{
				Field:  "pattern",
				Reason: fmt.Sprintf("label %q pattern %d %q: %v", name, i, r, err),
			}
		}
		p.exprs = append(p.exprs, re)
	}
	return p, nil
}

// ReadPatterns reads one pattern per line. Blank lines and lines starting
// with '#' are skipped.
func ReadPatterns(name string, r io.Reader) (*Patterns, error) {
	var raw []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw = append(raw, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading patterns for %s: %w", name, err)
	}
	return CompilePatterns(name, raw)
}

// Len returns the number of patterns.
func (p *Patterns) Len() int {
	return len(p.exprs)
}

// Index returns the index of the first pattern matching s, or -1.
func (p *Patterns) Index(s string) int {
	for i, re := range p.exprs {
		if re.MatchString(s) {
			return i
		}
	}
	return -1
}

// Candidate is one provider/model pair in discovery order.
type Candidate struct {
	Provider string
	Model    string
}

func (c Candidate) String() string {
	return c.Provider + ":" + c.Model
}

// Match is the outcome of a best-match search.
type Match struct {
	Candidate Candidate
	Pattern   int
}

// Best evaluates every candidate against every pattern and returns the
// candidate matched by the lowest pattern index. Ties go to the candidate
// discovered first. ok is false when nothing matches.
func (p *Patterns) Best(candidates []Candidate) (m Match, ok bool) {
	best := -1
	for _, c := range candidates {
		idx := p.Index(c.String())
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			m = Match{Candidate: c, Pattern: idx}
			if idx == 0 {
				break
			}
		}
	}
	return m, best >= 0
}

// Candidates lists every (provider, model) pair across instances in order.
// Instances without models contribute nothing.
func Candidates(instances []*provider.Instance) []Candidate {
	var out []Candidate
	for _, inst := range instances {
		for _, m := range inst.Models {
			out = append(out, Candidate{Provider: inst.ProviderType, Model: m.ID})
		}
	}
	return out
}
