package provider

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/aicred-sub000/internal/credential"
)

func cred(p string, vt credential.ValueType, v string) credential.Credential {
	return credential.New(p, "/tmp/src", vt, v, credential.High)
}

func TestAssembleGroupsByProvider(t *testing.T) {
	creds := []credential.Credential{
		cred("groq", credential.APIKey, "gsk_first_key_000000"),
		cred("openrouter", credential.APIKey, "sk-or-v1-abcdefghijkl"),
		cred("groq", credential.ModelID, "llama3-70b-8192"),
		cred("groq", credential.APIKey, "gsk_second_key_11111"),
		cred("groq", credential.BaseURL, "https://api.groq.com/openai/v1"),
		cred("groq", credential.Temperature, "0.2"),
		cred("groq", credential.ParallelToolCalls, "true"),
		cred("groq", credential.Custom("region"), "us"),
		cred("openrouter", credential.ModelID, "anthropic/claude-3-opus"),
	}

	a := &Assembler{}
	got := a.Assemble("/tmp/src", creds)
	require.Len(t, got, 2)

	groq := got[0]
	assert.Equal(t, "groq", groq.ID)
	assert.Equal(t, "groq", groq.ProviderType)
	assert.Equal(t, "gsk_first_key_000000", groq.Key(), "first api key wins")
	assert.Equal(t, "https://api.groq.com/openai/v1", groq.BaseURL)
	assert.Equal(t, []string{"llama3-70b-8192"}, groq.ModelIDs())
	want := map[string]string{"temperature": "0.2", "parallel_tool_calls": "true", "region": "us"}
	if diff := cmp.Diff(want, groq.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	or := got[1]
	assert.Equal(t, "openrouter", or.ProviderType)
	assert.Equal(t, []string{"anthropic/claude-3-opus"}, or.ModelIDs())
	assert.Empty(t, or.BaseURL)
}

func TestAssembleNeverCrossesProviders(t *testing.T) {
	creds := []credential.Credential{
		cred("openai", credential.APIKey, "sk-openai-aaaaaaaaaaaa"),
		cred("anthropic", credential.ModelID, "claude-3-opus"),
	}
	got := (&Assembler{}).Assemble("s", creds)
	require.Len(t, got, 2)
	assert.False(t, got[0].HasModel("claude-3-opus"))
	assert.False(t, got[1].HasAPIKey())
}

func TestAssembleSettingsOnlyGroup(t *testing.T) {
	got := (&Assembler{}).Assemble("s", []credential.Credential{
		cred("groq", credential.ModelID, "llama3-70b-8192"),
		cred("groq", credential.Temperature, "0.5"),
	})
	require.Len(t, got, 1)
	assert.Nil(t, got[0].APIKey)
	assert.Equal(t, "0.5", got[0].Metadata["temperature"])
}

func TestAssembleDuplicateModelSkipped(t *testing.T) {
	got := (&Assembler{}).Assemble("s", []credential.Credential{
		cred("openai", credential.ModelID, "gpt-4"),
		{Provider: "openai", ValueType: credential.ModelID, Value: "gpt-4"},
	})
	require.Len(t, got, 1)
	assert.Len(t, got[0].Models, 1)
}

type fakeRegistry map[string]ModelInfo

func (f fakeRegistry) Lookup(id string) (ModelInfo, bool) {
	m, ok := f[id]
	return m, ok
}

func TestAssembleEnrichesFromRegistry(t *testing.T) {
	a := &Assembler{Models: fakeRegistry{
		"gpt-4": {ID: "gpt-4", Name: "GPT-4", ContextWindow: 8192, Capabilities: []string{"chat"}},
	}}
	got := a.Assemble("s", []credential.Credential{
		cred("openai", credential.ModelID, "gpt-4"),
		cred("openai", credential.ModelID, "gpt-unknown"),
	})
	require.Len(t, got[0].Models, 2)
	assert.Equal(t, "GPT-4", got[0].Models[0].Name)
	assert.Equal(t, 8192, got[0].Models[0].ContextWindow)
	assert.Equal(t, "gpt-unknown", got[0].Models[1].Name)
	assert.Zero(t, got[0].Models[1].ContextWindow)
}

func TestEnrichLeavesDetailedModels(t *testing.T) {
	reg := fakeRegistry{"gpt-4": {ID: "gpt-4", Name: "GPT-4", ContextWindow: 8192}}
	in := NewInstance("openai", "openai")
	in.AddModel(Model{ID: "gpt-4", Name: "gpt-4"})
	in.AddModel(Model{ID: "custom", Name: "Custom", ContextWindow: 1})

	(&Assembler{Models: reg}).Enrich([]*Instance{in})
	assert.Equal(t, "GPT-4", in.Models[0].Name)
	assert.Equal(t, "Custom", in.Models[1].Name)
	assert.Equal(t, 1, in.Models[1].ContextWindow)
}

func TestMerge(t *testing.T) {
	a := NewInstance("openai", "openai")
	a.AddModel(Model{ID: "gpt-4", Name: "gpt-4"})
	a.Metadata["temperature"] = "0.1"

	b := NewInstance("openai", "openai")
	b.SetKey("sk-merged-key-0000000")
	b.BaseURL = "https://api.openai.com/v1"
	b.AddModel(Model{ID: "gpt-4", Name: "gpt-4"})
	b.AddModel(Model{ID: "gpt-4o", Name: "gpt-4o"})
	b.Metadata["temperature"] = "0.9"

	c := NewInstance("groq", "groq")

	got := Merge(a, b, nil, c)
	require.Len(t, got, 2)
	assert.Equal(t, "sk-merged-key-0000000", got[0].Key())
	assert.Equal(t, "https://api.openai.com/v1", got[0].BaseURL)
	assert.Equal(t, []string{"gpt-4", "gpt-4o"}, got[0].ModelIDs())
	assert.Equal(t, "0.1", got[0].Metadata["temperature"])
	assert.Len(t, a.Models, 1, "inputs are not mutated")
}

func TestValidateSet(t *testing.T) {
	ok := []*Instance{NewInstance("a", "openai"), NewInstance("b", "openai")}
	assert.NoError(t, ValidateSet(ok))

	dup := []*Instance{NewInstance("a", "openai"), NewInstance("a", "groq")}
	err := ValidateSet(dup)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "duplicate")

	empty := []*Instance{NewInstance("", "openai")}
	assert.True(t, IsValidation(ValidateSet(empty)))
}

func TestFindNotFound(t *testing.T) {
	_, err := Find(nil, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMetadataValueCaseInsensitive(t *testing.T) {
	inst := NewInstance("x", "x")
	inst.Metadata["Temperature"] = "0.3"
	v, ok := inst.MetadataValue("temperature")
	assert.True(t, ok)
	assert.Equal(t, "0.3", v)
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(strings.NewReader(`
models:
  - id: gpt-4
    name: GPT-4
    context_window: 8192
`))
	require.NoError(t, err)
	m, ok := reg.Lookup("openai/gpt-4")
	assert.True(t, ok)
	assert.Equal(t, "GPT-4", m.Name)
	_, ok = reg.Lookup("nope")
	assert.False(t, ok)

	_, err = LoadRegistry(strings.NewReader("models:\n  - name: no id\n"))
	assert.True(t, IsValidation(err))

	_, err = LoadRegistry(strings.NewReader("models: [\n"))
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Greater(t, reg.Len(), 0)
	_, ok := reg.Lookup("gpt-4")
	assert.True(t, ok)
}
