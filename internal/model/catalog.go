package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Resolved is the value stored for one attribute together with the place it
// was read from. Both fields are always serialized, as null when unset.
type Resolved struct {
	Source *string `json:"source"`
	Value  *string `json:"value"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Entry holds the resolved attributes of one project in insertion order.
type Entry struct {
	Name  string
	order []string
	attrs map[string]Resolved
}

func newEntry(name string) *Entry {
	return &Entry{Name: name, attrs: map[string]Resolved{}}
}

// Set stores r under attr. Replacing an attribute keeps its position.
func (e *Entry) Set(attr string, r Resolved) {
	if _, ok := e.attrs[attr]; !ok {
		e.order = append(e.order, attr)
	}
	e.attrs[attr] = r
}

// Get returns the resolved attribute and whether it exists.
func (e *Entry) Get(attr string) (Resolved, bool) {
	r, ok := e.attrs[attr]
	return r, ok
}

// Attributes returns the attribute names in insertion order.
func (e *Entry) Attributes() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Value returns the attribute value, or "" when it is missing or null.
func (e *Entry) Value(attr string) string {
	if r, ok := e.attrs[attr]; ok && r.Value != nil {
		return *r.Value
	}
	return ""
}

// Source returns the attribute source, or "" when it is missing or null.
func (e *Entry) Source(attr string) string {
	if r, ok := e.attrs[attr]; ok && r.Source != nil {
		return *r.Source
	}
	return ""
}

// Has reports whether attr has a non-empty value.
func (e *Entry) Has(attr string) bool {
	return e.Value(attr) != ""
}

// Catalog maps project names to their entries, keeping insertion order so
// the serialized document and the rendered listing share one ordering.
type Catalog struct {
	order   []string
	entries map[string]*Entry
}

func NewCatalog() *Catalog {
	return &Catalog{entries: map[string]*Entry{}}
}

// Set stores r for attr of project, creating the project entry on first use.
func (c *Catalog) Set(project, attr string, r Resolved) {
	c.entry(project).Set(attr, r)
}

func (c *Catalog) entry(project string) *Entry {
	if c.entries == nil {
		c.entries = map[string]*Entry{}
	}
	e, ok := c.entries[project]
	if !ok {
		e = newEntry(project)
		c.entries[project] = e
		c.order = append(c.order, project)
	}
	return e
}

// Entry returns the entry for project.
func (c *Catalog) Entry(project string) (*Entry, bool) {
	e, ok := c.entries[project]
	return e, ok
}

// Names returns project names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Entries returns the project entries in catalog order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.order)
}

// MarshalJSON writes the catalog as a JSON object in catalog order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := c.entries[name].writeJSON(&buf); err != nil {
			return nil, fmt.Errorf("project %q: %w", name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *Entry) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, attr := range e.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(buf, attr); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeJSON(buf, e.attrs[attr]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON reads a catalog document, keeping the document order of
// projects and attributes.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	fresh := NewCatalog()
	err := eachMember(data, func(project string, raw json.RawMessage) error {
		e := fresh.entry(project)
		return eachMember(raw, func(attr string, raw json.RawMessage) error {
			var r Resolved
			if err := json.Unmarshal(raw, &r); err != nil {
				return fmt.Errorf("project %q attribute %q: %w", project, attr, err)
			}
			e.Set(attr, r)
			return nil
		})
	})
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}
