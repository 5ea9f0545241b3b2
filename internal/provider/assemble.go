package provider

import (
	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/log"
)

// Assembler groups credentials by provider into instances.
type Assembler struct {
	// Models enriches assembled models. Nil disables enrichment.
	Models ModelRegistry
}

// Assemble builds one instance per distinct provider in creds, in order of
// first appearance. The first API key of each provider wins. Credentials of
// one provider never contribute to another provider's instance.
func (a *Assembler) Assemble(source string, creds []credential.Credential) []*Instance {
	var order []string
	groups := make(map[string]*Instance)

	for _, c := range creds {
		if c.Provider == "" {
			continue
		}
		inst, ok := groups[c.Provider]
		if !ok {
			inst = NewInstance(c.Provider, c.Provider)
			inst.Source = source
			groups[c.Provider] = inst
			order = append(order, c.Provider)
		}

		switch c.ValueType.Kind {
		case credential.KindAPIKey:
			if inst.APIKey != nil {
				log.Debug("ignoring additional api key",
					"provider", c.Provider,
					"source", c.Source,
					"hash", shortHash(c.Hash))
				continue
			}
			inst.SetKey(c.Value)
		case credential.KindBaseURL:
			inst.BaseURL = c.Value
		case credential.KindModelID:
			inst.AddModel(a.model(c.Value))
		case credential.KindTemperature,
			credential.KindMaxTokens,
			credential.KindParallelToolCalls,
			credential.KindHeaders,
			credential.KindCustom:
			inst.Metadata[c.ValueType.Key()] = c.Value
		}
	}

	out := make([]*Instance, 0, len(order))
	for _, p := range order {
		out = append(out, groups[p])
	}
	return out
}

// Enrich replaces models that carry only an id with registry details.
// Instances are updated in place.
func (a *Assembler) Enrich(instances []*Instance) {
	for _, in := range instances {
		for i, m := range in.Models {
			if m.ContextWindow == 0 && len(m.Capabilities) == 0 && m.Name == m.ID {
				in.Models[i] = a.model(m.ID)
			}
		}
	}
}

func (a *Assembler) model(id string) Model {
	m := Model{ID: id, Name: id}
	if a == nil || a.Models == nil {
		return m
	}
	info, ok := a.Models.Lookup(id)
	if !ok {
		return m
	}
	if info.Name != "" {
		m.Name = info.Name
	}
	m.ContextWindow = info.ContextWindow
	m.InputCostPerMillion = info.InputCostPerMillion
	m.OutputCostPerMillion = info.OutputCostPerMillion
	m.Capabilities = append([]string(nil), info.Capabilities...)
	return m
}

// Merge combines instances sharing an id, keeping the first non-empty key,
// base URL and metadata value per key, and the union of models in order.
func Merge(instances ...*Instance) []*Instance {
	var order []string
	merged := make(map[string]*Instance)
	for _, in := range instances {
		if in == nil {
			continue
		}
		cur, ok := merged[in.ID]
		if !ok {
			cp := *in
			cp.Models = append([]Model(nil), in.Models...)
			cp.Metadata = make(map[string]string, len(in.Metadata))
			for k, v := range in.Metadata {
				cp.Metadata[k] = v
			}
			merged[in.ID] = &cp
			order = append(order, in.ID)
			continue
		}
		if !cur.HasAPIKey() && in.HasAPIKey() {
			cur.SetKey(in.Key())
		}
		if cur.BaseURL == "" {
			cur.BaseURL = in.BaseURL
		}
		for _, m := range in.Models {
			cur.AddModel(m)
		}
		for k, v := range in.Metadata {
			if _, exists := cur.Metadata[k]; !exists {
				cur.Metadata[k] = v
			}
		}
		if in.UpdatedAt.After(cur.UpdatedAt) {
			cur.UpdatedAt = in.UpdatedAt
		}
	}
	out := make([]*Instance, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
