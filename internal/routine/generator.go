// ABOUTME: Deterministic weekly routine generation from a body-mass metric.
// ABOUTME: No I/O; callers push the drafts through the sync engine in day order.
package routine

import (
	"errors"
	"fmt"
	"math"

	"github.com/harperreed/fitsync/internal/models"
)

// ErrInvalidMetric is returned for non-finite or non-positive metrics.
var ErrInvalidMetric = errors.New("invalid metric")

// Bucket is a metric classification.
type Bucket int

const (
	Underweight Bucket = iota
	Normal
	Overweight
	Obese
)

// Buckets returns every bucket from lowest to highest.
func Buckets() []Bucket {
	return []Bucket{Underweight, Normal, Overweight, Obese}
}

func (b Bucket) String() string {
	switch b {
	case Underweight:
		return "underweight"
	case Normal:
		return "normal"
	case Overweight:
		return "overweight"
	case Obese:
		return "obese"
	}
	return fmt.Sprintf("bucket(%d)", int(b))
}

// Classify maps a metric to its bucket. A value on a boundary belongs to the
// higher bucket.
func Classify(metric float64) Bucket {
	switch {
	case metric < 18.5:
		return Underweight
	case metric < 25:
		return Normal
	case metric < 30:
		return Overweight
	}
	return Obese
}

// Generate returns seven routine drafts, Monday first, for the bucket of
// metric. Drafts have id 0 and belong to userID.
func Generate(metric float64, userID int64) ([]*models.Routine, error) {
	if math.IsNaN(metric) || math.IsInf(metric, 0) || metric <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetric, metric)
	}

	bucket := Classify(metric)
	p := programs[bucket]
	routines := make([]*models.Routine, 0, len(p.days))
	for i, d := range p.days {
		routines = append(routines, &models.Routine{
			Name:        weekdays[i] + " - " + d.title,
			Description: p.focus,
			ExerciseIDs: d.exerciseIDs(),
			UserID:      userID,
		})
	}
	return routines, nil
}

func (d day) exerciseIDs() models.IDList {
	var ids models.IDList
	for _, s := range d.slices {
		ids = append(ids, categories[s.cat][s.from:s.to]...)
	}
	return ids
}
