package namelist

import "strings"

// Params is an insertion-ordered parameter map. Ordering matters for
// reproducible run identifiers and argument strings, so a plain Go map
// is not enough.
type Params struct {
	keys []string
	m    map[string]Value
}

// NewParams returns an empty ordered parameter map.
func NewParams() *Params {
	return &Params{m: make(map[string]Value)}
}

// Set inserts or overwrites a key. A new key is appended at the end;
// overwriting keeps the original position.
func (p *Params) Set(key string, v Value) {
	if _, ok := p.m[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.m[key] = v
}

// SetDefault sets key only if it is not present yet.
func (p *Params) SetDefault(key string, v Value) {
	if _, ok := p.m[key]; !ok {
		p.Set(key, v)
	}
}

// Get returns the value for key.
func (p *Params) Get(key string) (Value, bool) {
	v, ok := p.m[key]
	return v, ok
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	_, ok := p.m[key]
	return ok
}

// Delete removes key if present.
func (p *Params) Delete(key string) {
	if _, ok := p.m[key]; !ok {
		return
	}
	delete(p.m, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not modify it.
func (p *Params) Keys() []string { return p.keys }

// Len returns the number of entries.
func (p *Params) Len() int { return len(p.keys) }

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	c := NewParams()
	for _, k := range p.keys {
		c.Set(k, p.m[k])
	}
	return c
}

// Merge sets every entry of other that is not already present.
func (p *Params) Merge(other *Params) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		p.SetDefault(k, other.m[k])
	}
}

// ArgString renders the parameters as the space-separated "key value"
// sequence consumed by the init job script.
func (p *Params) ArgString() string {
	parts := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		parts = append(parts, k+" "+p.m[k].String())
	}
	return strings.Join(parts, " ")
}
