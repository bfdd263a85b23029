// Package blocks defines the résumé block model shared by the ingestion
// pipeline, the stores and the HTTP API.
package blocks

import (
	"fmt"
	"time"
)

// Type is the closed set of block kinds.
type Type string

const (
	TypeExperience Type = "experience"
	TypeEducation  Type = "education"
	TypeProject    Type = "project"
	TypeSkill      Type = "skill"
	TypeSummary    Type = "summary"
)

// Types lists every valid block type in display order.
var Types = []Type{TypeExperience, TypeEducation, TypeProject, TypeSkill, TypeSummary}

// Valid reports whether t is one of the known block types.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType converts s into a Type, rejecting unknown values.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown block type %q (want one of %v)", s, Types)
	}
	return t, nil
}

// Content is the semi-structured payload of a block. Every field is optional.
type Content struct {
	Title              string   `json:"title,omitempty"`
	Company            string   `json:"company,omitempty"` // company, school or organization
	Location           string   `json:"location,omitempty"`
	DateRange          string   `json:"date_range,omitempty"`
	DescriptionBullets []string `json:"description_bullets,omitempty"`
	SkillName          string   `json:"skill_name,omitempty"`
	Proficiency        string   `json:"proficiency,omitempty"`
}

// IsZero reports whether no content field is set.
func (c Content) IsZero() bool {
	return c.Title == "" && c.Company == "" && c.Location == "" && c.DateRange == "" &&
		len(c.DescriptionBullets) == 0 && c.SkillName == "" && c.Proficiency == ""
}

// Block is one structured unit of résumé content.
// ID and CreatedAt are assigned by the store on insert.
type Block struct {
	ID        string    `json:"id,omitempty"`
	OwnerID   string    `json:"user_id"`
	Type      Type      `json:"type"`
	Content   Content   `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// WithOwner returns a copy of the block owned by ownerID.
func (b Block) WithOwner(ownerID string) Block {
	b.OwnerID = ownerID
	return b
}

// Label returns a short human-readable name for the block.
func (b Block) Label() string {
	switch {
	case b.Content.Title != "" && b.Content.Company != "":
		return b.Content.Title + " @ " + b.Content.Company
	case b.Content.Title != "":
		return b.Content.Title
	case b.Content.SkillName != "":
		return b.Content.SkillName
	case b.Content.Company != "":
		return b.Content.Company
	default:
		return string(b.Type)
	}
}
