// Package model defines the data structures shared by the catalog builder:
// registry projects, descriptor attributes and the assembled catalog.
package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Project struct {
	Org    string `json:"org" yaml:"org"`       // GitHub organization or user
	Repo   string `json:"repo" yaml:"repo"`     // Repository name, unique within a run
	Branch string `json:"branch" yaml:"branch"` // Branch the descriptor and files are read from
}

// SortKey returns the key used to order projects in the catalog. Names are
// compared case-insensitively, so "Alpha" sorts before "beta". Full case
// mapping is used, so "straße" and "STRASSE" share a key.
func (p Project) SortKey() string {
	return cases.Upper(language.Und).String(p.Repo)
}

// String returns "org/repo@branch".
func (p Project) String() string {
	return p.Org + "/" + p.Repo + "@" + p.Branch
}
