package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIgnoresSource(t *testing.T) {
	a := New("openai", "/home/u/.gshrc", APIKey, "sk-test-1234567890", High)
	b := New("openai", "/home/u/.langchain/config.yaml", APIKey, "sk-test-1234567890", Medium)
	assert.Equal(t, a.Hash, b.Hash)

	c := New("anthropic", "/home/u/.gshrc", APIKey, "sk-test-1234567890", High)
	assert.NotEqual(t, a.Hash, c.Hash, "provider must change the hash")

	d := New("openai", "/home/u/.gshrc", BaseURL, "sk-test-1234567890", High)
	assert.NotEqual(t, a.Hash, d.Hash, "value type must change the hash")
}

func TestHashCustomName(t *testing.T) {
	assert.NotEqual(t,
		Hash("openai", Custom("region"), "us"),
		Hash("openai", Custom("zone"), "us"))
}

func TestDeduplicateKeepsFirst(t *testing.T) {
	first := New("openai", "a", APIKey, "sk-one-aaaaaaaaaaaaaaaa", High)
	dup := New("openai", "b", APIKey, "sk-one-aaaaaaaaaaaaaaaa", Low)
	other := New("openai", "a", ModelID, "gpt-4", Medium)

	got := Deduplicate([]Credential{first, other, dup})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Source)
	assert.Equal(t, High, got[0].Confidence)
	assert.Equal(t, ModelID, got[1].ValueType)
}

func TestDeduperAcrossPasses(t *testing.T) {
	d := NewDeduper()
	structured := New("groq", "x", APIKey, "gsk_abcdefghijklmnop", High)
	assert.Equal(t, 1, d.Add(structured))

	regex := New("groq", "x", APIKey, "gsk_abcdefghijklmnop", Medium)
	assert.Equal(t, 0, d.Add(regex))
	assert.True(t, d.Seen(structured.Hash))
	assert.Equal(t, 1, d.Len())

	// Missing hashes are computed on insert.
	raw := Credential{Provider: "groq", ValueType: ModelID, Value: "llama3"}
	assert.Equal(t, 1, d.Add(raw))
	assert.NotEmpty(t, d.Credentials()[1].Hash)
}

func TestMaskAndRedact(t *testing.T) {
	tests := []struct {
		in, mask, redact string
	}{
		{"sk-test123", "sk-t***t123", "****t123"},
		{"12345678", "****", "12****"},
		{"ab", "****", "****"},
		{"", "****", "****"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.mask, Mask(tt.in))
			assert.Equal(t, tt.redact, Redact(tt.in))
		})
	}
}

func TestRedactedLeavesSettingsVisible(t *testing.T) {
	c := New("openai", "s", Temperature, "0.7", Medium)
	assert.Equal(t, "0.7", c.Redacted())
}

func TestValueTypeRoundTrip(t *testing.T) {
	for _, vt := range []ValueType{APIKey, BaseURL, ModelID, Temperature, MaxTokens, ParallelToolCalls, Headers, Custom("region")} {
		b, err := vt.MarshalText()
		require.NoError(t, err)
		var got ValueType
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, vt, got)
	}
	got, err := ParseValueType("Custom(region)")
	require.NoError(t, err)
	assert.Equal(t, Custom("region"), got)

	_, err = ParseValueType("")
	assert.Error(t, err)
}

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, High, ConfidenceFor("sk-ant-api03-xyz"))
	assert.Equal(t, High, ConfidenceFor("hf_abcdef"))
	assert.Equal(t, Medium, ConfidenceFor("abcdefghijklmnopqrstuvwxyz0123456"))
	assert.Equal(t, Low, ConfidenceFor("abcdefghijklmnop"))
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", "your-api-key", "<OPENAI_KEY>", "${OPENAI_API_KEY}", "xxxxxxxx", "CHANGEME"} {
		assert.True(t, IsPlaceholder(v), v)
	}
	assert.False(t, IsPlaceholder("sk-proj-abc123def456"))
}
