package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/aicred-sub000/internal/scanners"
)

func TestEnvironSource(t *testing.T) {
	src := &EnvironSource{Environ: func() []string {
		return []string{
			"PATH=/usr/bin",
			"OPENAI_API_KEY=sk-proj-abcdefghijklmnopqrst",
			"ANTHROPIC_API_KEY=",
			"GROQ_API_KEY=your-api-key-here",
		}
	}}

	creds, err := src.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "openai", creds[0].Provider)
	assert.Equal(t, "env:OPENAI_API_KEY", creds[0].Source)
}

func TestEnvironSourceInRun(t *testing.T) {
	d := &Scanner{
		Registry: scanners.NewRegistry(),
		Home:     t.TempDir(),
		Sources: []Source{&EnvironSource{Environ: func() []string {
			return []string{"OPENAI_API_KEY=sk-proj-abcdefghijklmnopqrst"}
		}}},
	}
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Configs, 1)
	assert.Equal(t, "Process environment", res.Configs[0].AppName)
	inst := res.Instances()
	require.Len(t, inst, 1)
	assert.Equal(t, "sk-proj-abcdefghijklmnopqrst", inst[0].Key())
}
