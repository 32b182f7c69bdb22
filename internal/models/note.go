// ABOUTME: Note and TargetLocation models.
// ABOUTME: Note timestamps are unix milliseconds; locations validate coordinate ranges.
package models

import (
	"math"
	"strings"
	"time"
)

// Note is a free-form journal entry.
type Note struct {
	ID        int64  `json:"id" yaml:"id"`
	Header    string `json:"header" yaml:"header"`
	Text      string `json:"text" yaml:"text"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
	UserID    int64  `json:"userId" yaml:"userId"`
}

// NewNote creates a note stamped with the current time.
func NewNote(userID int64, header, text string) *Note {
	return &Note{
		Header:    header,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		UserID:    userID,
	}
}

// Time returns the note timestamp as a time.Time.
func (n *Note) Time() time.Time {
	return time.UnixMilli(n.Timestamp)
}

// Kind implements Entity.
func (n *Note) Kind() Kind { return KindNote }

// GetID implements Entity.
func (n *Note) GetID() int64 { return n.ID }

// SetID implements Entity.
func (n *Note) SetID(id int64) { n.ID = id }

// OwnerID implements Owned.
func (n *Note) OwnerID() int64 { return n.UserID }

// Validate implements Entity.
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Header) == "" && strings.TrimSpace(n.Text) == "" {
		return invalidf(KindNote, "header or text is required")
	}
	return nil
}

// Position is a WGS84 coordinate.
type Position struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// TargetLocation is a geofenced place such as a gym.
type TargetLocation struct {
	ID           int64    `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Position     Position `json:"position" yaml:"position"`
	RadiusMeters float64  `json:"radiusMeters" yaml:"radiusMeters"`
}

// Kind implements Entity.
func (t *TargetLocation) Kind() Kind { return KindTargetLocation }

// GetID implements Entity.
func (t *TargetLocation) GetID() int64 { return t.ID }

// SetID implements Entity.
func (t *TargetLocation) SetID(id int64) { t.ID = id }

// Validate implements Entity.
func (t *TargetLocation) Validate() error {
	p := t.Position
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return invalidf(KindTargetLocation, "lat %v out of range [-90,90]", p.Lat)
	}
	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return invalidf(KindTargetLocation, "lng %v out of range [-180,180]", p.Lng)
	}
	if !(t.RadiusMeters > 0) || math.IsInf(t.RadiusMeters, 0) {
		return invalidf(KindTargetLocation, "radiusMeters must be > 0")
	}
	return nil
}
