package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Attribute names one of the six fixed knight abilities.
type Attribute string

const (
	Strength     Attribute = "strength"
	Dexterity    Attribute = "dexterity"
	Constitution Attribute = "constitution"
	Intelligence Attribute = "intelligence"
	Wisdom       Attribute = "wisdom"
	Charisma     Attribute = "charisma"
)

// AllAttributes lists the attributes in their canonical order.
var AllAttributes = []Attribute{
	Strength,
	Dexterity,
	Constitution,
	Intelligence,
	Wisdom,
	Charisma,
}

func ParseAttribute(s string) (Attribute, error) {
	for _, attr := range AllAttributes {
		if string(attr) == s {
			return attr, nil
		}
	}
	return "", fmt.Errorf("unknown attribute %q", s)
}

// Attributes is the canonical score accessor. Every knight read from storage
// or decoded from a cached snapshot ends up in this shape.
type Attributes map[Attribute]int

// NewAttributes fills every missing attribute with 0 and rejects unknown keys.
func NewAttributes(raw map[string]int) (Attributes, error) {
	attrs := make(Attributes, len(AllAttributes))
	for _, attr := range AllAttributes {
		attrs[attr] = 0
	}
	for key, score := range raw {
		attr, err := ParseAttribute(key)
		if err != nil {
			return nil, err
		}
		attrs[attr] = score
	}
	return attrs, nil
}

// Score returns the stored score and whether it was present.
func (a Attributes) Score(attr Attribute) (int, bool) {
	if a == nil {
		return 0, false
	}
	score, ok := a[attr]
	return score, ok
}

// MarshalJSON writes scores in canonical attribute order, followed by any
// unrecognized keys sorted by name.
func (a Attributes) MarshalJSON() ([]byte, error) {
	keys := make([]Attribute, 0, len(a))
	for _, attr := range AllAttributes {
		if _, ok := a[attr]; ok {
			keys = append(keys, attr)
		}
	}
	extra := make([]Attribute, 0)
	for key := range a {
		if _, err := ParseAttribute(string(key)); err != nil {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	keys = append(keys, extra...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(string(key))
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(a[key]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
