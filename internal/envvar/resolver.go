package envvar

import (
	"sort"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/label"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/provider"
)

// Result is the outcome of a resolution.
type Result struct {
	Variables        map[string]string `json:"variables"`
	ResolvedLabels   []string          `json:"resolved_labels"`
	UnresolvedLabels []string          `json:"unresolved_labels"`
	MissingRequired  []string          `json:"missing_required"`
}

func newResult() *Result {
	return &Result{Variables: make(map[string]string)}
}

// IsSuccessful reports whether every required variable resolved.
func (r *Result) IsSuccessful() bool {
	return len(r.MissingRequired) == 0
}

// Names returns the variable names sorted.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Variables))
	for k := range r.Variables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Environ returns KEY=value pairs sorted by key.
func (r *Result) Environ() []string {
	out := make([]string, 0, len(r.Variables))
	for _, k := range r.Names() {
		out = append(out, k+"="+r.Variables[k])
	}
	return out
}

func appendOnce(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func (r *Result) addResolved(l string)   { r.ResolvedLabels = appendOnce(r.ResolvedLabels, l) }
func (r *Result) addUnresolved(l string) { r.UnresolvedLabels = appendOnce(r.UnresolvedLabels, l) }
func (r *Result) addMissing(v string)    { r.MissingRequired = appendOnce(r.MissingRequired, v) }

// Resolver maps labels onto provider instances and fills a variable schema.
// Construct it with NewResolver; a zero Resolver resolves nothing.
type Resolver struct {
	instances []*provider.Instance
	labels    []label.Label
	schema    []Declaration
	mappings  []Mapping
}

// NewResolver builds a resolver. When both schema and mappings are empty the
// default schema for labels is generated.
func NewResolver(instances []*provider.Instance, labels []label.Label, schema []Declaration, mappings []Mapping) *Resolver {
	if len(schema) == 0 && len(mappings) == 0 {
		schema, mappings = DefaultSchema(labels)
	}
	return &Resolver{
		instances: instances,
		labels:    labels,
		schema:    schema,
		mappings:  mappings,
	}
}

// Schema returns the declarations in use.
func (r *Resolver) Schema() []Declaration {
	return r.schema
}

// Mappings returns the label mappings in use.
func (r *Resolver) Mappings() []Mapping {
	return r.mappings
}

// Resolve computes the environment. In dry-run mode API keys are masked and
// unresolved group variables are not reported as missing.
func (r *Resolver) Resolve(dryRun bool) *Result {
	res := newResult()
	matched := r.matchLabels()
	owners := r.groupOwners()

	for _, m := range r.mappings {
		l, ok := label.Find(r.labels, m.Label)
		if !ok {
			continue
		}
		inst, ok := matched[l.Name]
		if !ok {
			res.addUnresolved(m.Label)
			continue
		}
		r.resolveGroup(m.Group, owners, inst, l.Target, dryRun, res)
		res.addResolved(m.Label)
	}

	if len(r.mappings) == 0 && len(r.labels) > 0 {
		r.resolveDirect(matched, dryRun, res)
	}

	for _, d := range r.schema {
		if !d.Required {
			continue
		}
		if _, ok := res.Variables[d.Name]; !ok {
			res.addMissing(d.Name)
		}
	}

	log.Debug("resolved environment",
		"variables", len(res.Variables),
		"resolved", len(res.ResolvedLabels),
		"unresolved", len(res.UnresolvedLabels),
		"missing", len(res.MissingRequired),
		"dry_run", dryRun)
	return res
}

// ResolveFromMappings resolves with a schema generated from mappings.
func ResolveFromMappings(instances []*provider.Instance, labels []label.Label, mappings []Mapping, dryRun bool) *Result {
	r := &Resolver{
		instances: instances,
		labels:    labels,
		schema:    SchemaFromMappings(mappings),
		mappings:  mappings,
	}
	return r.Resolve(dryRun)
}

// matchLabels finds, per label, the first instance whose provider type is
// the target provider and which lists the target model, if one is set.
func (r *Resolver) matchLabels() map[string]*provider.Instance {
	out := make(map[string]*provider.Instance, len(r.labels))
	for _, l := range r.labels {
		if inst := r.findInstance(l.Target); inst != nil {
			out[l.Name] = inst
		}
	}
	return out
}

func (r *Resolver) findInstance(t label.Tuple) *provider.Instance {
	for _, inst := range r.instances {
		if inst.ProviderType != t.Provider {
			continue
		}
		if t.Model == "" || inst.HasModel(t.Model) {
			return inst
		}
	}
	return nil
}

// groupOwners maps each declaration name to the mapping group it belongs to.
// A name belongs to the longest group it extends at an underscore boundary,
// so GSH_FAST never claims GSH_FAST_LANE_API_KEY when both groups exist.
func (r *Resolver) groupOwners() map[string]string {
	owners := make(map[string]string, len(r.schema))
	for _, d := range r.schema {
		for _, m := range r.mappings {
			if !inGroup(d.Name, m.Group) {
				continue
			}
			if len(m.Group) > len(owners[d.Name]) {
				owners[d.Name] = m.Group
			}
		}
	}
	return owners
}

func inGroup(name, group string) bool {
	return name == group || strings.HasPrefix(name, group+"_")
}

func (r *Resolver) resolveGroup(group string, owners map[string]string, inst *provider.Instance, target label.Tuple, dryRun bool, res *Result) {
	for _, d := range r.schema {
		if owners[d.Name] != group {
			continue
		}
		if v, ok := resolveValue(d, inst, target, dryRun); ok {
			res.Variables[d.Name] = v
		} else if d.Required && !dryRun {
			res.addMissing(d.Name)
		}
	}
}

func (r *Resolver) resolveDirect(matched map[string]*provider.Instance, dryRun bool, res *Result) {
	for _, l := range r.labels {
		inst, ok := matched[l.Name]
		if !ok {
			res.addUnresolved(l.Name)
			continue
		}
		for _, prefix := range DefaultPrefixes {
			group := GroupName(prefix, l.Name)
			res.Variables[group+"_MODEL"] = l.Target.String()
			if inst.HasAPIKey() {
				res.Variables[group+"_API_KEY"] = apiKeyValue(inst.Key(), dryRun)
			}
			if inst.BaseURL != "" {
				res.Variables[group+"_BASE_URL"] = inst.BaseURL
			}
			for k, v := range inst.Metadata {
				res.Variables[group+"_"+strings.ToUpper(k)] = v
			}
		}
		res.addResolved(l.Name)
	}
}

func apiKeyValue(key string, dryRun bool) string {
	if dryRun {
		return credential.Mask(key)
	}
	return key
}

func resolveValue(d Declaration, inst *provider.Instance, target label.Tuple, dryRun bool) (string, bool) {
	name := d.Name
	switch {
	case strings.HasSuffix(name, "_API_KEY"):
		if !inst.HasAPIKey() {
			return "", false
		}
		return apiKeyValue(inst.Key(), dryRun), true
	case strings.HasSuffix(name, "_BASE_URL"):
		if inst.BaseURL != "" {
			return inst.BaseURL, true
		}
		return d.Default()
	case strings.HasSuffix(name, "_MODEL"), strings.HasSuffix(name, "_MODEL_ID"):
		if target.Model != "" {
			return target.Provider + ":" + target.Model, true
		}
		if len(inst.Models) > 0 {
			return inst.ProviderType + ":" + inst.Models[0].ID, true
		}
		return d.Default()
	case strings.HasSuffix(name, "_TEMPERATURE"):
		return metadataOrDefault(d, inst, "temperature")
	case strings.HasSuffix(name, "_MAX_TOKENS"):
		return metadataOrDefault(d, inst, "max_tokens")
	case strings.Contains(name, "_PARALLEL_TOOL_CALLS"):
		return metadataOrDefault(d, inst, "parallel_tool_calls")
	case strings.Contains(name, "_HEADERS"):
		return metadataOrDefault(d, inst, "headers")
	default:
		return d.Default()
	}
}

func metadataOrDefault(d Declaration, inst *provider.Instance, key string) (string, bool) {
	if v, ok := inst.MetadataValue(key); ok {
		return v, true
	}
	return d.Default()
}
