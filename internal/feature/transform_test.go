package feature

import (
	"reflect"
	"testing"

	"github.com/retainhq/retain-backend/internal/model"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := NewSchema("test", []Definition{
		{Name: "age", Default: 20},
		{Name: "gender", Default: "other"},
		{Name: "gpa", Default: 2.5},
		{Name: "attendance_rate", Default: 75},
		{Name: "previous_failures", Default: 0},
		{Name: "study_hours_per_week", Default: 15},
		{Name: "internet_access", Default: true},
		{Name: "extracurricular_involvement", Default: false},
		{Name: "part_time_job", Default: false},
		{Name: "financial_aid", Default: false},
		{Name: "family_income", Default: 30000},
		{Name: "parental_education_level", Default: "high_school"},
		{Name: "course_of_study", Default: "unknown"},
		{Name: "semester", Default: 1},
		{Name: "living_situation", Default: "with_family"},
		{Name: "distance_from_home", Default: 10},
		{Name: "mental_health_score", Default: 5},
		{Name: "mode_of_transport", Default: "public_transport"},
		{Name: "grades_average", Default: 75},
		{Name: "grades_count", Default: 0},
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return schema
}

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }
func sptr(v string) *string   { return &v }

func TestTransformCoversEverySchemaFeature(t *testing.T) {
	schema := testSchema(t)
	tr := NewTransformer(schema)

	vec := tr.Transform(&model.Student{FullName: "Any", Age: 21, Gender: model.GenderMale})

	if vec.Len() != schema.Len() {
		t.Fatalf("vector has %d entries, schema has %d", vec.Len(), schema.Len())
	}
	for i, def := range schema.Definitions() {
		if vec.Names()[i] != def.Name {
			t.Errorf("position %d: got %s, want %s", i, vec.Names()[i], def.Name)
		}
	}
}

func TestTransformDefaultsForSparseRecord(t *testing.T) {
	tr := NewTransformer(testSchema(t))

	vec := tr.Transform(&model.Student{})

	if v, _ := vec.Float("gpa"); v != 2.5 {
		t.Errorf("gpa = %v, want schema default 2.5", v)
	}
	if v, _ := vec.Bool("internet_access"); !v {
		t.Error("internet_access should default to true")
	}
	if v, _ := vec.Get("gender"); v != "other" {
		t.Errorf("gender = %v, want other", v)
	}
	if v, _ := vec.Get("course_of_study"); v != "course_unknown" {
		t.Errorf("course_of_study = %v, want course_unknown", v)
	}
	if v, _ := vec.Float("grades_average"); v != 75 {
		t.Errorf("grades_average = %v, want 75", v)
	}
	if v, _ := vec.Float("family_income"); v != 30000 {
		t.Errorf("family_income = %v, want 30000", v)
	}
}

func TestTransformClampsRanges(t *testing.T) {
	tr := NewTransformer(testSchema(t))

	vec := tr.Transform(&model.Student{
		AttendanceRate:    150,
		PreviousFailures:  50,
		StudyHoursPerWeek: 200,
		DistanceFromHome:  5000,
		MentalHealthScore: fptr(15),
		Semester:          99,
	})

	checks := map[string]float64{
		"attendance_rate":      100,
		"previous_failures":    30,
		"study_hours_per_week": 80,
		"distance_from_home":   2000,
		"mental_health_score":  10,
		"semester":             12,
	}
	for name, want := range checks {
		if v, _ := vec.Float(name); v != want {
			t.Errorf("%s = %v, want %v", name, v, want)
		}
	}
}

func TestTransformTokenizesStrings(t *testing.T) {
	tr := NewTransformer(testSchema(t))

	vec := tr.Transform(&model.Student{
		Gender:                 model.GenderFemale,
		ParentalEducationLevel: sptr("Bachelor's Degree"),
		CourseOfStudy:          sptr("Computer Science & AI"),
		LivingSituation:        sptr("On Campus"),
		ModeOfTransport:        sptr("Public Transport"),
	})

	if v, _ := vec.Get("parental_education_level"); v != "bachelor_s_degree" {
		t.Errorf("parental_education_level = %v", v)
	}
	if v, _ := vec.Get("course_of_study"); v != "course_computer_science_ai" {
		t.Errorf("course_of_study = %v", v)
	}
	if v, _ := vec.Get("living_situation"); v != "on_campus" {
		t.Errorf("living_situation = %v", v)
	}
	if v, _ := vec.Get("mode_of_transport"); v != "public_transport" {
		t.Errorf("mode_of_transport = %v", v)
	}
}

func TestTransformDerivesGPAFromGrades(t *testing.T) {
	tr := NewTransformer(testSchema(t))

	vec := tr.Transform(&model.Student{
		Grades: []model.GradeEntry{
			{Subject: "Math", Grade: "A"},
			{Subject: "English", Grade: "B"},
		},
	})

	if v, _ := vec.Float("gpa"); v != 3.5 {
		t.Errorf("gpa = %v, want grade-derived 3.5", v)
	}
	if v, _ := vec.Float("grades_average"); v != 90 {
		t.Errorf("grades_average = %v, want 90", v)
	}
	if v, _ := vec.Float("grades_count"); v != 2 {
		t.Errorf("grades_count = %v, want 2", v)
	}
}

func TestTransformExplicitGPAWinsOverGrades(t *testing.T) {
	tr := NewTransformer(testSchema(t))

	vec := tr.Transform(&model.Student{
		GPA:    fptr(1.2),
		Grades: []model.GradeEntry{{Subject: "Math", Grade: "A"}},
	})

	if v, _ := vec.Float("gpa"); v != 1.2 {
		t.Errorf("gpa = %v, want explicit 1.2", v)
	}
}

func TestTransformGradesCountDefault(t *testing.T) {
	schema, err := NewSchema("test", []Definition{
		{Name: "grades_count", Default: 5},
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	tr := NewTransformer(schema)

	// No grades at all: the schema default stands in for "missing".
	vec := tr.Transform(&model.Student{})
	if v, _ := vec.Float("grades_count"); v != 5 {
		t.Errorf("grades_count = %v, want default 5", v)
	}

	// A real grade list overrides the default, even when shorter.
	vec = tr.Transform(&model.Student{
		Grades: []model.GradeEntry{{Subject: "Math", Grade: "A"}},
	})
	if v, _ := vec.Float("grades_count"); v != 1 {
		t.Errorf("grades_count = %v, want 1", v)
	}
}

func TestTransformUnknownFeaturePassesDefaultThrough(t *testing.T) {
	schema, err := NewSchema("test", []Definition{
		{Name: "mystery_feature", Default: "as_is"},
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	tr := NewTransformer(schema)

	vec := tr.Transform(&model.Student{})
	if v, _ := vec.Get("mystery_feature"); v != "as_is" {
		t.Errorf("mystery_feature = %v, want raw default", v)
	}
}

func TestTransformDeterministic(t *testing.T) {
	tr := NewTransformer(testSchema(t))
	student := &model.Student{
		FullName:          "Repeat",
		Age:               22,
		Gender:            model.GenderMale,
		GPA:               fptr(3.14159),
		AttendanceRate:    88.88888,
		InternetAccess:    bptr(true),
		Grades:            []model.GradeEntry{{Subject: "Math", Grade: 77.7}},
		MentalHealthScore: fptr(6),
	}

	first := tr.Transform(student)
	second := tr.Transform(student)

	if !reflect.DeepEqual(first.Names(), second.Names()) {
		t.Error("name order differs between runs")
	}
	for _, name := range first.Names() {
		a, _ := first.Get(name)
		b, _ := second.Get(name)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s differs: %v vs %v", name, a, b)
		}
	}
}

func TestTransformRoundsToFourDecimals(t *testing.T) {
	tr := NewTransformer(testSchema(t))

	vec := tr.Transform(&model.Student{GPA: fptr(3.123456789)})
	if v, _ := vec.Float("gpa"); v != 3.1235 {
		t.Errorf("gpa = %v, want 3.1235", v)
	}
}
