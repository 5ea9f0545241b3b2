package envvar

import (
	"fmt"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/provider"
)

// Shells lists the supported export formats.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// FormatExports renders variables as shell statements sorted by name.
func FormatExports(vars map[string]string, shell string) (string, error) {
	line, err := exportFunc(shell)
	if err != nil {
		return "", err
	}
	r := &Result{Variables: vars}
	var b strings.Builder
	for _, k := range r.Names() {
		b.WriteString(line(k, vars[k]))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func exportFunc(shell string) (func(k, v string) string, error) {
	switch strings.ToLower(shell) {
	case "", "bash", "zsh", "sh":
		return func(k, v string) string {
			return fmt.Sprintf("export %s='%s'", k, strings.ReplaceAll(v, "'", `'\''`))
		}, nil
	case "fish":
		return func(k, v string) string {
			v = strings.ReplaceAll(v, `\`, `\\`)
			return fmt.Sprintf("set -gx %s '%s'", k, strings.ReplaceAll(v, "'", `\'`))
		}, nil
	case "powershell", "pwsh":
		return func(k, v string) string {
			return fmt.Sprintf("$env:%s = '%s'", k, strings.ReplaceAll(v, "'", "''"))
		}, nil
	}
	return nil, &provider.ValidationError{
		Field:  "format",
		Reason: fmt.Sprintf("unsupported shell %q (want one of %s)", shell, strings.Join(Shells, ", ")),
	}
}
