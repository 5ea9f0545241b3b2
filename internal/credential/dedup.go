package credential

// Deduper accumulates credentials across extraction passes, keeping the
// first occurrence of each hash in insertion order.
type Deduper struct {
	seen  map[string]struct{}
	creds []Credential
}

// NewDeduper returns an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Add appends credentials whose hash has not been seen yet. It reports how
// many were kept.
func (d *Deduper) Add(creds ...Credential) int {
	kept := 0
	for _, c := range creds {
		h := c.Hash
		if h == "" {
			h = Hash(c.Provider, c.ValueType, c.Value)
			c.Hash = h
		}
		if _, ok := d.seen[h]; ok {
			continue
		}
		d.seen[h] = struct{}{}
		d.creds = append(d.creds, c)
		kept++
	}
	return kept
}

// Seen reports whether a credential with this hash has been added.
func (d *Deduper) Seen(hash string) bool {
	_, ok := d.seen[hash]
	return ok
}

// Len returns the number of retained credentials.
func (d *Deduper) Len() int {
	return len(d.creds)
}

// Credentials returns the retained credentials in insertion order.
func (d *Deduper) Credentials() []Credential {
	out := make([]Credential, len(d.creds))
	copy(out, d.creds)
	return out
}

// Deduplicate returns creds with later duplicates removed.
func Deduplicate(creds []Credential) []Credential {
	d := NewDeduper()
	d.Add(creds...)
	return d.Credentials()
}
