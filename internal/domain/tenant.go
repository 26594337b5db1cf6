package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TenantID identifies a house. Houses are addressed externally either as
// small integers or as their string form; both normalize to the same ID.
type TenantID string

// UnmarshalJSON accepts both `"1"` and `1`.
func (t *TenantID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TenantID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("house number must be a string or integer: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("house number must be an integer: %w", err)
	}
	*t = TenantID(n.String())
	return nil
}

// String returns the normalized form of the ID.
func (t TenantID) String() string {
	return string(t)
}

// TenantSet is the closed set of houses accepted by the service.
type TenantSet struct {
	ids   []TenantID
	index map[TenantID]struct{}
}

// NewTenantSet builds a set from raw identifiers, ignoring blanks and duplicates.
func NewTenantSet(raw ...string) TenantSet {
	s := TenantSet{index: make(map[TenantID]struct{}, len(raw))}
	for _, r := range raw {
		id := TenantID(strings.TrimSpace(r))
		if id == "" {
			continue
		}
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Contains reports whether id is a known house.
func (s TenantSet) Contains(id TenantID) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the houses in configuration order.
func (s TenantSet) IDs() []TenantID {
	out := make([]TenantID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of houses.
func (s TenantSet) Len() int {
	return len(s.ids)
}
