// ABOUTME: Static exercise category catalog and the weekly programs built from it.
// ABOUTME: Tables are package-private and validated at init; callers only get copies.
package routine

import (
	"errors"
	"fmt"
)

// Category names a group of catalog exercise ids.
type Category string

const (
	FuerzaBasica   Category = "fuerza_basica"
	FuerzaAvanzada Category = "fuerza_avanzada"
	Hipertrofia    Category = "hipertrofia"
	CardioModerado Category = "cardio_moderado"
	CardioIntenso  Category = "cardio_intenso"
	HIIT           Category = "hiit"
	BajoImpacto    Category = "bajo_impacto"
	Movilidad      Category = "movilidad"
	Core           Category = "core"
	DescansoActivo Category = "descanso_activo"
)

var categories = map[Category][]int64{
	FuerzaBasica:   {1, 2, 3, 4, 5, 6},
	FuerzaAvanzada: {7, 8, 9, 10, 11, 12},
	Hipertrofia:    {13, 14, 15, 16, 17, 18},
	CardioModerado: {19, 20, 21, 22},
	CardioIntenso:  {23, 24, 25, 26},
	HIIT:           {27, 28, 29, 30},
	BajoImpacto:    {31, 32, 33, 34},
	Movilidad:      {35, 36, 37, 38},
	Core:           {39, 40, 41, 42},
	DescansoActivo: {43, 44},
}

// Categories returns every category name in a stable order.
func Categories() []Category {
	return []Category{
		FuerzaBasica, FuerzaAvanzada, Hipertrofia,
		CardioModerado, CardioIntenso, HIIT,
		BajoImpacto, Movilidad, Core, DescansoActivo,
	}
}

// CategoryIDs returns a copy of the ids in c.
func CategoryIDs(c Category) ([]int64, bool) {
	ids, ok := categories[c]
	if !ok {
		return nil, false
	}
	return append([]int64(nil), ids...), true
}

// slice selects ids[from:to] of a category.
type slice struct {
	cat      Category
	from, to int
}

type day struct {
	title  string
	slices []slice
}

type program struct {
	focus string
	days  [7]day
}

// Weekday names in output order.
var weekdays = [7]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

var programs = map[Bucket]program{
	Underweight: {
		focus: "Fuerza e hipertrofia para ganar masa muscular",
		days: [7]day{
			{"Fuerza básica", []slice{{FuerzaBasica, 0, 3}, {Core, 0, 2}}},
			{"Hipertrofia tren superior", []slice{{Hipertrofia, 0, 3}, {FuerzaBasica, 3, 5}}},
			{"Movilidad", []slice{{Movilidad, 0, 3}, {DescansoActivo, 0, 1}}},
			{"Hipertrofia tren inferior", []slice{{Hipertrofia, 3, 6}, {FuerzaAvanzada, 0, 2}}},
			{"Fuerza total", []slice{{FuerzaBasica, 0, 2}, {FuerzaAvanzada, 2, 4}, {Core, 2, 4}}},
			{"Cardio suave", []slice{{CardioModerado, 0, 2}, {Movilidad, 2, 4}}},
			{"Descanso activo", []slice{{DescansoActivo, 0, 2}, {Movilidad, 0, 2}}},
		},
	},
	Normal: {
		focus: "Programa equilibrado de fuerza y cardio",
		days: [7]day{
			{"Fuerza", []slice{{FuerzaBasica, 0, 2}, {FuerzaAvanzada, 0, 2}}},
			{"Cardio", []slice{{CardioModerado, 0, 2}, {CardioIntenso, 0, 2}}},
			{"Core y movilidad", []slice{{Core, 0, 3}, {Movilidad, 0, 2}}},
			{"Hipertrofia", []slice{{Hipertrofia, 0, 2}, {FuerzaBasica, 2, 4}}},
			{"HIIT", []slice{{HIIT, 0, 2}, {CardioModerado, 2, 4}}},
			{"Fuerza avanzada", []slice{{FuerzaAvanzada, 2, 5}, {Core, 3, 4}}},
			{"Descanso activo", []slice{{DescansoActivo, 0, 2}}},
		},
	},
	Overweight: {
		focus: "HIIT y cardio para perder grasa",
		days: [7]day{
			{"HIIT", []slice{{HIIT, 0, 3}, {Core, 0, 2}}},
			{"Cardio moderado", []slice{{CardioModerado, 0, 3}, {Movilidad, 0, 1}}},
			{"Fuerza básica", []slice{{FuerzaBasica, 0, 3}, {BajoImpacto, 0, 1}}},
			{"HIIT intervalos", []slice{{HIIT, 1, 4}, {CardioIntenso, 0, 2}}},
			{"Cardio y core", []slice{{CardioModerado, 1, 3}, {Core, 1, 3}}},
			{"Bajo impacto", []slice{{BajoImpacto, 0, 2}, {Movilidad, 0, 2}}},
			{"Descanso activo", []slice{{DescansoActivo, 0, 2}}},
		},
	},
	Obese: {
		focus: "Bajo impacto con progresión gradual",
		days: [7]day{
			{"Bajo impacto", []slice{{BajoImpacto, 0, 3}, {Movilidad, 0, 1}}},
			{"Movilidad", []slice{{Movilidad, 0, 3}, {DescansoActivo, 0, 1}}},
			{"Fuerza básica", []slice{{FuerzaBasica, 0, 2}, {BajoImpacto, 2, 4}}},
			{"Cardio moderado", []slice{{CardioModerado, 0, 2}, {BajoImpacto, 0, 1}}},
			{"Core suave", []slice{{Core, 0, 2}, {Movilidad, 1, 3}}},
			{"Bajo impacto progresivo", []slice{{BajoImpacto, 1, 4}, {CardioModerado, 2, 3}}},
			{"Descanso activo", []slice{{DescansoActivo, 0, 2}, {Movilidad, 3, 4}}},
		},
	},
}

func init() {
	if err := ValidateCatalog(); err != nil {
		panic(err)
	}
}

// ValidateCatalog checks that every program exists, every day references a
// known category, and every slice fits inside its category.
func ValidateCatalog() error {
	return validate(categories, programs)
}

func validate(cats map[Category][]int64, progs map[Bucket]program) error {
	var errs []error
	for _, b := range Buckets() {
		p, ok := progs[b]
		if !ok {
			errs = append(errs, fmt.Errorf("catalog: no program for bucket %s", b))
			continue
		}
		for i, d := range p.days {
			if len(d.slices) == 0 {
				errs = append(errs, fmt.Errorf("catalog: %s day %d selects no exercises", b, i))
			}
			for _, s := range d.slices {
				ids, ok := cats[s.cat]
				if !ok {
					errs = append(errs, fmt.Errorf("catalog: %s day %d references unknown category %q", b, i, s.cat))
					continue
				}
				if s.from < 0 || s.from >= s.to || s.to > len(ids) {
					errs = append(errs, fmt.Errorf("catalog: %s day %d slice %s[%d:%d] out of range (len %d)",
						b, i, s.cat, s.from, s.to, len(ids)))
				}
			}
		}
	}
	return errors.Join(errs...)
}
