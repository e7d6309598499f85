package pipeline

import (
	"cmp"
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"
)

// Target is the resolved location of a reference id.
type Target struct {
	File     string
	Fragment string
}

// Href renders the target as a relative link.
func (t Target) Href() string {
	if t.Fragment == "" {
		return t.File
	}
	return t.File + "#" + t.Fragment
}

// IndexEntry is a read-only view of one Index key.
type IndexEntry struct {
	ID       string
	Alias    string // canonical id this key points to, empty for canonical keys
	Owner    int    // unit that defines the id, NoUnit if none
	Target   Target
	Resolved bool
}

type indexEntry struct {
	alias    string
	owner    int
	target   Target
	resolved bool
}

// Index maps reference ids to their final targets. Keys are registered by
// Collect and resolved by Assemble as owning units receive files.
type Index struct {
	entries map[string]*indexEntry
	seq     int
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]*indexEntry)}
}

// Len returns the number of keys, aliases included.
func (x *Index) Len() int { return len(x.entries) }

// Register records id as defined by owner. Ids that are not valid XML names
// get an alias to a generated canonical id. It returns the canonical id and
// false when id was already registered.
func (x *Index) Register(id string, owner int) (string, bool) {
	if e, ok := x.entries[id]; ok {
		if e.alias != "" {
			return e.alias, false
		}
		return id, false
	}
	if ValidID(id) {
		x.entries[id] = &indexEntry{owner: owner}
		return id, true
	}
	canonical := x.fresh("ref")
	x.entries[canonical] = &indexEntry{owner: owner}
	x.entries[id] = &indexEntry{alias: canonical, owner: owner}
	return canonical, true
}

// Reserve registers a new generated id starting with prefix, already resolved
// to t, and returns it.
func (x *Index) Reserve(prefix string, owner int, t Target) string {
	id := x.fresh(prefix)
	t.Fragment = id
	x.entries[id] = &indexEntry{owner: owner, target: t, resolved: true}
	return id
}

// fresh returns an id that is not yet a key.
func (x *Index) fresh(prefix string) string {
	for {
		x.seq++
		id := fmt.Sprintf("%s-%d", prefix, x.seq)
		if _, taken := x.entries[id]; !taken {
			return id
		}
	}
}

// Registered reports whether id is a key.
func (x *Index) Registered(id string) bool {
	_, ok := x.entries[id]
	return ok
}

// Canonical returns the id an alias points to, or id itself.
func (x *Index) Canonical(id string) string {
	if e, ok := x.entries[id]; ok && e.alias != "" {
		return e.alias
	}
	return id
}

// Owner returns the unit defining id, NoUnit when unknown.
func (x *Index) Owner(id string) int {
	if e, ok := x.entries[x.Canonical(id)]; ok {
		return e.owner
	}
	return NoUnit
}

// SetOwner moves id to owner.
func (x *Index) SetOwner(id string, owner int) {
	canonical := x.Canonical(id)
	if e, ok := x.entries[canonical]; ok {
		e.owner = owner
	}
	if e, ok := x.entries[id]; ok && id != canonical {
		e.owner = owner
	}
}

// Resolve fixes the target of a canonical id.
func (x *Index) Resolve(id string, t Target) {
	if e, ok := x.entries[x.Canonical(id)]; ok {
		e.target = t
		e.resolved = true
	}
}

// Lookup returns the target of id, following an alias.
func (x *Index) Lookup(id string) (Target, bool) {
	e, ok := x.entries[x.Canonical(id)]
	if !ok || !e.resolved {
		return Target{}, false
	}
	return e.target, true
}

// Flatten copies canonical targets into their aliases so that no key is
// left pointing at another key.
func (x *Index) Flatten() {
	for _, e := range x.entries {
		if e.alias == "" {
			continue
		}
		if c, ok := x.entries[e.alias]; ok && c.resolved {
			e.target = c.target
			e.resolved = true
		}
	}
}

// Unresolved returns the sorted keys without a target.
func (x *Index) Unresolved() []string {
	var out []string
	for id, e := range x.entries {
		if !e.resolved {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Entries returns every key, sorted by id.
func (x *Index) Entries() []IndexEntry {
	out := make([]IndexEntry, 0, len(x.entries))
	for id, e := range x.entries {
		out = append(out, IndexEntry{
			ID:       id,
			Alias:    e.alias,
			Owner:    e.owner,
			Target:   e.target,
			Resolved: e.resolved,
		})
	}
	slices.SortFunc(out, func(a, b IndexEntry) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// ValidID reports whether id is a valid XML NCName and can be used verbatim
// as an XHTML id attribute.
func ValidID(id string) bool {
	if id == "" {
		return false
	}
	for i, r := range id {
		if r == utf8.RuneError {
			return false
		}
		if i == 0 {
			if !(r == '_' || unicode.IsLetter(r)) {
				return false
			}
			continue
		}
		if !(r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) ||
			unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)) {
			return false
		}
	}
	return true
}
