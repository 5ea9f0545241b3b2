package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseEnvFlags(t *testing.T) {
	tests := []struct {
		name     string
		envFlags []string
		wantEnv  map[string]string
		wantErr  bool
	}{
		{
			name:     "empty flags",
			envFlags: []string{},
			wantEnv:  nil,
		},
		{
			name:     "multiple valid flags",
			envFlags: []string{"FOO=bar", "BAZ=qux"},
			wantEnv:  map[string]string{"FOO": "bar", "BAZ": "qux"},
		},
		{
			name:     "value with equals sign",
			envFlags: []string{"FOO=bar=baz"},
			wantEnv:  map[string]string{"FOO": "bar=baz"},
		},
		{
			name:     "empty value",
			envFlags: []string{"FOO="},
			wantEnv:  map[string]string{"FOO": ""},
		},
		{
			name:     "later flag wins",
			envFlags: []string{"FOO=one", "FOO=two"},
			wantEnv:  map[string]string{"FOO": "two"},
		},
		{
			name:     "missing equals",
			envFlags: []string{"FOO"},
			wantErr:  true,
		},
		{
			name:     "invalid key - starts with digit",
			envFlags: []string{"1FOO=bar"},
			wantErr:  true,
		},
		{
			name:     "invalid key - contains hyphen",
			envFlags: []string{"FOO-BAR=baz"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEnvFlags(tt.envFlags)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEnvFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.wantEnv, got); diff != "" {
				t.Errorf("ParseEnvFlags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeEnviron(t *testing.T) {
	environ := []string{"PATH=/usr/bin", "GSH_FAST_MODEL=old", "HOME=/home/u"}
	got := MergeEnviron(environ, map[string]string{
		"GSH_FAST_MODEL":   "groq:llama3",
		"GSH_FAST_API_KEY": "gsk_abc",
	})
	want := []string{
		"PATH=/usr/bin",
		"HOME=/home/u",
		"GSH_FAST_API_KEY=gsk_abc",
		"GSH_FAST_MODEL=groq:llama3",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeEnviron() mismatch (-want +got):\n%s", diff)
	}
}
