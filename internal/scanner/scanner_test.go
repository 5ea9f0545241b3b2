package scanner

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/provider"
)

type stubScanner struct {
	name string
	ext  string
}

func (s stubScanner) Name() string                   { return s.name }
func (s stubScanner) AppName() string                { return strings.ToUpper(s.name) }
func (s stubScanner) ScanPaths(home string) []string { return []string{home + "/." + s.name} }
func (s stubScanner) CanHandleFile(path string) bool { return strings.HasSuffix(path, s.ext) }
func (s stubScanner) ParseConfig(path string, content []byte) Result {
	return NewResult(s, path, DefaultEnvTable().Extract(path, content), nil)
}

type schemaScanner struct{ stubScanner }

func (schemaScanner) EnvVarSchema() []envvar.Declaration {
	return []envvar.Declaration{envvar.Required("X_API_KEY", "", credential.APIKey)}
}

func (schemaScanner) LabelMappings() []envvar.Mapping {
	return []envvar.Mapping{{Label: "fast", Group: "X"}}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubScanner{name: "b", ext: ".b"}))
	require.NoError(t, r.Register(stubScanner{name: "a", ext: ".a"}))

	err := r.Register(stubScanner{name: "a"})
	assert.True(t, errors.Is(err, ErrDuplicateScanner))

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Nil(t, r.Get("missing"))
	assert.Equal(t, "a", r.All()[0].Name())

	got := r.ForFile("/x/config.b")
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Name())

	sel, err := r.Select(nil, []string{"a"})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, "b", sel[0].Name())

	sel, err = r.Select([]string{"a"}, nil)
	require.NoError(t, err)
	assert.Len(t, sel, 1)

	_, err = r.Select([]string{"zzz"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownScanner))
}

func TestSchemaDefaultsToEmpty(t *testing.T) {
	decls, maps := Schema(stubScanner{name: "a"})
	assert.Nil(t, decls)
	assert.Nil(t, maps)

	decls, maps = Schema(schemaScanner{stubScanner{name: "x"}})
	assert.Len(t, decls, 1)
	assert.Len(t, maps, 1)
}

func TestEnvTableExtract(t *testing.T) {
	content := []byte(`
# keys
export OPENAI_API_KEY="sk-proj-abcdefghijklmnop"
ANTHROPIC_API_KEY=sk-ant-api03-abcdefghijk
GROQ_API_KEY=short
MY_OPENAI_API_KEY=sk-notthisoneatall12345
HF_TOKEN=hf_abcdefghijklmnop.qrstuv
GROQ_MODEL=llama3-70b-8192 # fast
GROQ_TEMPERATURE='0.4'
OPENROUTER_API_KEY=your-api-key-goes-here
`)
	got := DefaultEnvTable().Extract("/h/.env", content)

	type row struct{ provider, vt, value string }
	var rows []row
	for _, c := range got {
		rows = append(rows, row{c.Provider, c.ValueType.Key(), c.Value})
	}
	assert.Equal(t, []row{
		{"openai", "api_key", "sk-proj-abcdefghijklmnop"},
		{"anthropic", "api_key", "sk-ant-api03-abcdefghijk"},
		{"groq", "model_id", "llama3-70b-8192"},
		{"groq", "temperature", "0.4"},
	}, rows)
	assert.Equal(t, credential.High, got[0].Confidence)
}

func TestEnvTableValidation(t *testing.T) {
	_, err := NewEnvTable([]EnvRule{{Name: "X"}})
	assert.True(t, provider.IsValidation(err))

	_, err = LoadEnvTable([]byte("variables: [\n"))
	var cerr *provider.ConfigError
	assert.ErrorAs(t, err, &cerr)

	tbl, err := LoadEnvTable([]byte("variables:\n  - {name: FOO_KEY, provider: foo, type: api_key}\n"))
	require.NoError(t, err)
	r, ok := tbl.Lookup("foo_key")
	assert.True(t, ok)
	assert.Equal(t, credential.APIKey, r.ValueType)
}

func TestShellAssignments(t *testing.T) {
	content := []byte(`
# gsh config
export GSH_FAST_MODEL_API_KEY='gsk_abcdefghijklmnop'
GSH_FAST_MODEL_ID="llama3-70b-8192"
export GSH_SLOW_MODEL_API_KEY=$OPENROUTER_KEY
if true; then
  export OPENAI_API_KEY=sk-inside-a-block-0000
fi
`)
	got := ShellAssignments(content)
	assert.Equal(t, []Assignment{
		{Name: "GSH_FAST_MODEL_API_KEY", Value: "gsk_abcdefghijklmnop"},
		{Name: "GSH_FAST_MODEL_ID", Value: "llama3-70b-8192"},
		{Name: "OPENAI_API_KEY", Value: "sk-inside-a-block-0000"},
	}, got)
}

func TestShellAssignmentsFallback(t *testing.T) {
	got := ShellAssignments([]byte("A=1\nif then fi (((\nB='two'\n"))
	assert.Equal(t, []Assignment{{Name: "A", Value: "1"}, {Name: "B", Value: "two"}}, got)
}

func TestParseDocs(t *testing.T) {
	d, err := ParseJSON("c.json", []byte(`{"a": {"b": "x", "n": 3, "t": true}}`))
	require.NoError(t, err)
	v, ok := d.Path("a").String("b")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	n, _ := d.Map("a").String("n")
	assert.Equal(t, "3", n)
	b, _ := d.Map("a").String("t")
	assert.Equal(t, "true", b)
	assert.Equal(t, []string{"b", "n", "t"}, d.Map("a").Keys())
	assert.Nil(t, d.Path("a", "b", "c"))

	_, err = ParseJSON("bad.json", []byte(`{`))
	var perr *provider.ParseError
	assert.ErrorAs(t, err, &perr)

	td, err := ParseTOML("c.toml", []byte("model = \"o3\"\n[model_providers.x]\nbase_url = \"http://x\"\n"))
	require.NoError(t, err)
	u, _ := td.Path("model_providers", "x").String("base_url")
	assert.Equal(t, "http://x", u)

	yd, err := ParseYAML("c.yaml", []byte("llm:\n  provider: openai\n  max_tokens: 100\n1: one\n"))
	require.NoError(t, err)
	p, _ := yd.Map("llm").String("provider")
	assert.Equal(t, "openai", p)
	mt, _ := yd.Map("llm").String("max_tokens")
	assert.Equal(t, "100", mt)
	one, _ := yd.String("1")
	assert.Equal(t, "one", one)

	empty, err := ParseYAML("e.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestYAMLToJSONRejectsCompositeKeys(t *testing.T) {
	_, err := YAMLToJSON(map[string]any{
		"outer": map[any]any{[2]string{"a", "b"}: "value"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outer: unsupported mapping key")

	got, err := YAMLToJSON([]any{map[any]any{true: 1, 2.5: "x"}})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"true": 1, "2.5": "x"}}, got)
}

func TestNewResult(t *testing.T) {
	s := stubScanner{name: "stub", ext: ".env"}
	res := s.ParseConfig("/h/.env", []byte("OPENAI_API_KEY=sk-proj-abcdefghijklmnop\nOPENAI_API_KEY=sk-proj-abcdefghijklmnop\nOPENAI_MODEL=gpt-4\n"))
	require.Len(t, res.Keys, 2)
	require.Len(t, res.Instances, 1)
	ci := res.Instances[0]
	assert.Equal(t, "STUB", ci.AppName)
	assert.Equal(t, "/h/.env", ci.ConfigPath)
	require.Len(t, ci.Providers, 1)
	assert.Equal(t, "sk-proj-abcdefghijklmnop", ci.Providers[0].Key())
	assert.Equal(t, []string{"gpt-4"}, ci.Providers[0].ModelIDs())

	again := s.ParseConfig("/h/.env", []byte("OPENAI_API_KEY=sk-proj-abcdefghijklmnop\n"))
	assert.Equal(t, ci.ID, again.Instances[0].ID)

	assert.True(t, s.ParseConfig("/h/.env", []byte("garbage")).Empty())
}
