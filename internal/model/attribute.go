package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DescriptorPath is the location of the descriptor inside every
// registered repository.
const DescriptorPath = "PSL_catalog.json"

// Descriptor "type" values.
const (
	TypeGitHubFile = "github_file"
	TypeHTML       = "html"
)

// ErrInvalidDescriptor is returned when a descriptor cannot be decoded or a
// recognized attribute lacks a field it needs.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// AttributeSource says where the value of an attribute comes from. It is
// one of RemoteFileRegion, InlineHTML or Unrecognized.
type AttributeSource interface {
	sourceKind() string
}

// RemoteFileRegion pulls the text between two markers of a file stored in
// the project's repository. A nil marker means the start or end of the file.
type RemoteFileRegion struct {
	Path        string
	StartMarker *string
	EndMarker   *string
}

// InlineHTML carries its value in the descriptor itself.
type InlineHTML struct {
	Data        *string
	SourceLabel *string
}

// Unrecognized is any entry whose type is missing or unknown.
type Unrecognized struct {
	Type string
}

func (RemoteFileRegion) sourceKind() string { return TypeGitHubFile }
func (InlineHTML) sourceKind() string       { return TypeHTML }
func (u Unrecognized) sourceKind() string   { return u.Type }

// Attribute is one named entry of a descriptor.
type Attribute struct {
	Name   string
	Source AttributeSource
	Raw    json.RawMessage // entry as it appeared in the descriptor
}

// Descriptor is a parsed PSL_catalog.json, attributes in document order.
type Descriptor struct {
	Attributes []Attribute
}

// The on-disk descriptor entries look like:
//
//	{"type": "github_file", "start_header": "...", "end_header": "...", "source": "README.md"}
//	{"type": "html", "data": "<p>...</p>", "source": "..."}
//
// Only "type" is read first; the remaining fields are decoded for the kind
// it selects, so unrelated fields never fail an entry.
type rawKind struct {
	Type json.RawMessage `json:"type"`
}

type rawRemoteFile struct {
	StartHeader *string `json:"start_header"`
	EndHeader   *string `json:"end_header"`
	Source      *string `json:"source"`
}

type rawInline struct {
	Data   *string `json:"data"`
	Source *string `json:"source"`
}

// ParseDescriptor decodes a descriptor document, keeping attribute order.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	desc := &Descriptor{}
	err := eachMember(data, func(name string, raw json.RawMessage) error {
		attr, err := parseAttribute(name, raw)
		if err != nil {
			return err
		}
		desc.Attributes = append(desc.Attributes, attr)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidDescriptor) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	return desc, nil
}

func parseAttribute(name string, raw json.RawMessage) (Attribute, error) {
	var rk rawKind
	if err := json.Unmarshal(raw, &rk); err != nil {
		return Attribute{}, fmt.Errorf("%w: attribute %q: %v", ErrInvalidDescriptor, name, err)
	}

	attr := Attribute{Name: name, Raw: raw}
	var kind string
	if err := json.Unmarshal(rk.Type, &kind); err != nil {
		// missing or non-string type
		attr.Source = Unrecognized{Type: string(rk.Type)}
		return attr, nil
	}

	switch kind {
	case TypeGitHubFile:
		var rf rawRemoteFile
		if err := json.Unmarshal(raw, &rf); err != nil {
			return Attribute{}, fmt.Errorf("%w: attribute %q: %v", ErrInvalidDescriptor, name, err)
		}
		if rf.Source == nil || *rf.Source == "" {
			return Attribute{}, fmt.Errorf("%w: attribute %q: github_file without source path", ErrInvalidDescriptor, name)
		}
		attr.Source = RemoteFileRegion{
			Path:        *rf.Source,
			StartMarker: rf.StartHeader,
			EndMarker:   rf.EndHeader,
		}
	case TypeHTML:
		var ri rawInline
		if err := json.Unmarshal(raw, &ri); err != nil {
			return Attribute{}, fmt.Errorf("%w: attribute %q: %v", ErrInvalidDescriptor, name, err)
		}
		attr.Source = InlineHTML{Data: ri.Data, SourceLabel: ri.Source}
	default:
		attr.Source = Unrecognized{Type: kind}
	}
	return attr, nil
}
