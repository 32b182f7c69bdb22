// ABOUTME: Tests for entity models, validation, and id list encoding.
// ABOUTME: Covers kind parsing, JSON shapes, and listing order.
package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"routines", KindRoutine, false},
		{"routine", KindRoutine, false},
		{"logs", KindLog, false},
		{"location", KindTargetLocation, false},
		{"user", KindUser, false},
		{"workouts", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseKind(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestUserScopedKinds(t *testing.T) {
	scoped := map[Kind]bool{
		KindUser:           true,
		KindRoutine:        true,
		KindLog:            true,
		KindNote:           true,
		KindExercise:       false,
		KindTargetLocation: false,
	}
	for kind, want := range scoped {
		if got := kind.UserScoped(); got != want {
			t.Errorf("%s.UserScoped() = %v, want %v", kind, got, want)
		}
	}
}

func TestNewReturnsMatchingKind(t *testing.T) {
	for _, kind := range AllKinds {
		e, err := New(kind)
		if err != nil {
			t.Fatalf("New(%s) failed: %v", kind, err)
		}
		if e.Kind() != kind {
			t.Errorf("New(%s).Kind() = %s", kind, e.Kind())
		}
	}
}

func TestIDListJSON(t *testing.T) {
	r := &Routine{Name: "Lunes", ExerciseIDs: IDList{3, 1, 7}, UserID: 9}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw failed: %v", err)
	}
	if raw["exerciseIds"] != "3,1,7" {
		t.Errorf("exerciseIds = %v, want \"3,1,7\"", raw["exerciseIds"])
	}

	var fromArray Routine
	if err := json.Unmarshal([]byte(`{"name":"x","exerciseIds":[4,5]}`), &fromArray); err != nil {
		t.Fatalf("Unmarshal array failed: %v", err)
	}
	if fromArray.ExerciseIDs.String() != "4,5" {
		t.Errorf("ExerciseIDs = %s, want 4,5", fromArray.ExerciseIDs)
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList(" 1, 2,,3 ")
	if err != nil {
		t.Fatalf("ParseIDList failed: %v", err)
	}
	if ids.String() != "1,2,3" {
		t.Errorf("got %s, want 1,2,3", ids)
	}

	if _, err := ParseIDList("1,x"); err == nil {
		t.Error("expected error for non-numeric id")
	}

	empty, err := ParseIDList("")
	if err != nil || len(empty) != 0 {
		t.Errorf("ParseIDList(\"\") = %v, %v", empty, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entity  Entity
		wantErr bool
	}{
		{"valid user", NewUser("ana@example.com").WithName("Ana"), false},
		{"user without email", &User{}, true},
		{"valid log", &ExerciseLog{ExerciseID: 1, Date: "2024-03-01", Weight: 40, Reps: 10}, false},
		{"log with bad date", &ExerciseLog{Date: "01/03/2024"}, true},
		{"log with negative weight", &ExerciseLog{Date: "2024-03-01", Weight: -1}, true},
		{"log with negative reps", &ExerciseLog{Date: "2024-03-01", Reps: -2}, true},
		{"valid note", NewNote(1, "Día 1", "pierna"), false},
		{"empty note", &Note{}, true},
		{"valid location", &TargetLocation{Name: "Gym", Position: Position{Lat: 40.4, Lng: -3.7}, RadiusMeters: 50}, false},
		{"lat out of range", &TargetLocation{Position: Position{Lat: 91}, RadiusMeters: 1}, true},
		{"lng out of range", &TargetLocation{Position: Position{Lng: -181}, RadiusMeters: 1}, true},
		{"zero radius", &TargetLocation{RadiusMeters: 0}, true},
		{"nan radius", &TargetLocation{RadiusMeters: math.NaN()}, true},
		{"routine without name", &Routine{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Validate() = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestSortEntitiesLogsNewestFirst(t *testing.T) {
	items := []Entity{
		&ExerciseLog{ID: 1, Date: "2024-01-01"},
		&ExerciseLog{ID: 2, Date: "2024-02-01"},
		&ExerciseLog{ID: 3, Date: "2024-02-01"},
	}
	SortEntities(KindLog, items)

	want := []int64{3, 2, 1}
	for i, e := range items {
		if e.GetID() != want[i] {
			t.Errorf("position %d: got id %d, want %d", i, e.GetID(), want[i])
		}
	}
}

func TestSortEntitiesByID(t *testing.T) {
	items := []Entity{&Exercise{ID: 5}, &Exercise{ID: 2}, &Exercise{ID: 9}}
	SortEntities(KindExercise, items)

	if items[0].GetID() != 2 || items[2].GetID() != 9 {
		t.Errorf("unexpected order: %d, %d, %d", items[0].GetID(), items[1].GetID(), items[2].GetID())
	}
}
