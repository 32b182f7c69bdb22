// ABOUTME: Exercise catalog entry and ExerciseLog models.
// ABOUTME: Logs reference exercises by id only; dangling references are allowed.
package models

import (
	"math"
	"time"
)

// DateLayout is the calendar date format used by exercise logs.
const DateLayout = "2006-01-02"

// Exercise is one entry of the remote exercise catalog.
type Exercise struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ImageURI    string `json:"imageUri" yaml:"imageUri"`
}

// Kind implements Entity.
func (e *Exercise) Kind() Kind { return KindExercise }

// GetID implements Entity.
func (e *Exercise) GetID() int64 { return e.ID }

// SetID implements Entity.
func (e *Exercise) SetID(id int64) { e.ID = id }

// Validate implements Entity.
func (e *Exercise) Validate() error {
	if e.Name == "" {
		return invalidf(KindExercise, "name is required")
	}
	return nil
}

// ExerciseLog records one set of an exercise on a given day.
type ExerciseLog struct {
	ID         int64   `json:"id" yaml:"id"`
	ExerciseID int64   `json:"exerciseId" yaml:"exerciseId"`
	Date       string  `json:"date" yaml:"date"`
	Weight     float64 `json:"weight" yaml:"weight"`
	Reps       int     `json:"reps" yaml:"reps"`
	UserID     int64   `json:"userId" yaml:"userId"`
}

// NewExerciseLog creates a log dated today.
func NewExerciseLog(exerciseID, userID int64, weight float64, reps int) *ExerciseLog {
	return &ExerciseLog{
		ExerciseID: exerciseID,
		Date:       time.Now().Format(DateLayout),
		Weight:     weight,
		Reps:       reps,
		UserID:     userID,
	}
}

// WithDate sets the calendar date of the log.
func (l *ExerciseLog) WithDate(t time.Time) *ExerciseLog {
	l.Date = t.Format(DateLayout)
	return l
}

// Kind implements Entity.
func (l *ExerciseLog) Kind() Kind { return KindLog }

// GetID implements Entity.
func (l *ExerciseLog) GetID() int64 { return l.ID }

// SetID implements Entity.
func (l *ExerciseLog) SetID(id int64) { l.ID = id }

// OwnerID implements Owned.
func (l *ExerciseLog) OwnerID() int64 { return l.UserID }

// Validate implements Entity.
func (l *ExerciseLog) Validate() error {
	if _, err := time.Parse(DateLayout, l.Date); err != nil {
		return invalidf(KindLog, "date %q is not YYYY-MM-DD", l.Date)
	}
	if l.Weight < 0 || math.IsNaN(l.Weight) || math.IsInf(l.Weight, 0) {
		return invalidf(KindLog, "weight must be a finite value >= 0")
	}
	if l.Reps < 0 {
		return invalidf(KindLog, "reps must be >= 0")
	}
	return nil
}
