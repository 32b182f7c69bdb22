// ABOUTME: Routine model and the ordered exercise id list it carries.
// ABOUTME: IDList serializes as a comma-joined string; order is display order.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IDList is an ordered list of exercise ids.
type IDList []int64

// ParseIDList parses a comma-joined id string. Blank segments are skipped.
func ParseIDList(s string) (IDList, error) {
	var ids IDList
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse exercise id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// String returns the comma-joined form, e.g. "3,1,7".
func (l IDList) String() string {
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the list as a comma-joined string.
func (l IDList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either a comma-joined string or an array of numbers.
func (l *IDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var ids []int64
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		*l = ids
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ids, err := ParseIDList(s)
	if err != nil {
		return err
	}
	*l = ids
	return nil
}

// Routine is a named, ordered list of exercises owned by a user.
type Routine struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ImageURI    string `json:"imageUri" yaml:"imageUri"`
	ExerciseIDs IDList `json:"exerciseIds" yaml:"exerciseIds"`
	UserID      int64  `json:"userId" yaml:"userId"`
}

// Kind implements Entity.
func (r *Routine) Kind() Kind { return KindRoutine }

// GetID implements Entity.
func (r *Routine) GetID() int64 { return r.ID }

// SetID implements Entity.
func (r *Routine) SetID(id int64) { r.ID = id }

// OwnerID implements Owned.
func (r *Routine) OwnerID() int64 { return r.UserID }

// Validate implements Entity.
func (r *Routine) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalidf(KindRoutine, "name is required")
	}
	return nil
}
