// Package keychain reads AI credentials that applications keep in the
// system keychain.
//
// Platform requirements:
//   - macOS: Keychain via the Security framework
//   - Linux: Secret Service (GNOME Keyring, KWallet)
//   - Windows: Windows Credential Manager
//
// Missing entries and unavailable keychains are skipped, so a headless
// machine simply contributes nothing.
package keychain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/user"
	"sort"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

// Format describes how an entry's secret is encoded.
type Format string

const (
	// FormatRaw is the API key itself.
	FormatRaw Format = "raw"
	// FormatClaudeOAuth is Claude Code's {"claudeAiOauth": {...}} document.
	FormatClaudeOAuth Format = "claude-oauth-json"
	// FormatEnvJSON is a JSON object of environment variable names to
	// values, as stored by Goose.
	FormatEnvJSON Format = "env-json"
)

// Entry is one known keychain item.
type Entry struct {
	Service string
	// Account defaults to the current user's name.
	Account  string
	Provider string
	Format   Format
}

// DefaultEntries lists the keychain items known to hold AI credentials.
var DefaultEntries = []Entry{
	{Service: "Claude Code-credentials", Provider: "anthropic", Format: FormatClaudeOAuth},
	{Service: "goose", Account: "secrets", Format: FormatEnvJSON},
}

// claudeOAuthCredentials is the document Claude Code stores.
type claudeOAuthCredentials struct {
	ClaudeAiOauth *claudeOAuthToken `json:"claudeAiOauth,omitempty"`
}

type claudeOAuthToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"` // Unix timestamp in milliseconds
}

func (t *claudeOAuthToken) expired(now time.Time) bool {
	return t.ExpiresAt > 0 && now.After(time.UnixMilli(t.ExpiresAt))
}

// Source implements discovery.Source over a table of entries.
type Source struct {
	Entries []Entry
	// Table maps variable names for FormatEnvJSON entries. Nil uses the
	// default env table.
	Table *scanner.EnvTable

	// get is keyring.Get; tests replace it to simulate failures.
	get func(service, account string) (string, error)
	now func() time.Time
}

// New returns a Source reading DefaultEntries.
func New() *Source {
	return &Source{Entries: DefaultEntries}
}

func (s *Source) Name() string    { return "keychain" }
func (s *Source) AppName() string { return "System keychain" }

// Discover looks up every entry. It only fails when ctx is done.
func (s *Source) Discover(ctx context.Context) ([]credential.Credential, error) {
	var out []credential.Credential
	for _, e := range s.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		account := e.Account
		if account == "" {
			account = currentUser()
		}
		secret, err := s.lookup(e.Service, account)
		if err != nil {
			if !errors.Is(err, keyring.ErrNotFound) {
				log.Debug("keychain unavailable", "service", e.Service, "error", err)
			}
			continue
		}
		creds, err := s.decode(e, secret)
		if err != nil {
			log.Debug("skipping keychain entry", "service", e.Service, "error", err)
			continue
		}
		out = append(out, creds...)
	}
	return out, nil
}

func (s *Source) lookup(service, account string) (string, error) {
	if s.get != nil {
		return s.get(service, account)
	}
	return keyring.Get(service, account)
}

func (s *Source) decode(e Entry, secret string) ([]credential.Credential, error) {
	source := "keychain:" + e.Service
	switch e.Format {
	case FormatRaw, "":
		c, ok := key(e.Provider, source, secret)
		if !ok {
			return nil, nil
		}
		return []credential.Credential{c}, nil

	case FormatClaudeOAuth:
		var doc claudeOAuthCredentials
		if err := json.Unmarshal([]byte(secret), &doc); err != nil {
			return nil, fmt.Errorf("parsing keychain credentials: %w", err)
		}
		if doc.ClaudeAiOauth == nil {
			return nil, fmt.Errorf("no OAuth credentials found in keychain")
		}
		if doc.ClaudeAiOauth.expired(s.clock()) {
			return nil, fmt.Errorf("OAuth token expired")
		}
		c, ok := key(e.Provider, source, doc.ClaudeAiOauth.AccessToken)
		if !ok {
			return nil, nil
		}
		return []credential.Credential{c}, nil

	case FormatEnvJSON:
		var vars map[string]string
		if err := json.Unmarshal([]byte(secret), &vars); err != nil {
			return nil, fmt.Errorf("parsing keychain secrets: %w", err)
		}
		names := make([]string, 0, len(vars))
		for k := range vars {
			names = append(names, k)
		}
		sort.Strings(names)
		table := s.Table
		if table == nil {
			table = scanner.DefaultEnvTable()
		}
		var out []credential.Credential
		for _, name := range names {
			rule, ok := table.Lookup(name)
			if !ok {
				continue
			}
			if rule.ValueType.Kind != credential.KindAPIKey {
				if c, ok := scanner.Setting(rule.Provider, source, rule.ValueType, vars[name]); ok {
					out = append(out, c)
				}
				continue
			}
			if c, ok := key(rule.Provider, source, vars[name]); ok {
				out = append(out, c)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown keychain format %q", e.Format)
}

// key builds an API key credential. Values read from the keychain were put
// there by the application itself, so they get the highest confidence.
func key(provider, source, v string) (credential.Credential, bool) {
	c, ok := scanner.Key(provider, source, v)
	if !ok {
		return c, false
	}
	c.Confidence = credential.VeryHigh
	return c, true
}

func (s *Source) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
