package feature

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/retainhq/retain-backend/internal/model"
)

// Documented neutral defaults used when neither the student nor the schema
// can supply a value.
const (
	neutralGPA           = 2.5
	neutralGradesAverage = 75
	unknownCourseToken   = "course_unknown"
)

// Transformer maps a student record plus the loaded schema into a flat,
// schema-ordered feature vector. It is a pure function of its inputs: bad or
// missing student data is normalized via default substitution and clamping,
// never rejected.
type Transformer struct {
	schema *Schema
}

// NewTransformer creates a transformer bound to a loaded schema.
func NewTransformer(schema *Schema) *Transformer {
	return &Transformer{schema: schema}
}

// Schema returns the schema the transformer was built with.
func (t *Transformer) Schema() *Schema { return t.schema }

// Transform produces one vector entry per schema definition, in definition
// order. Every schema key is always present in the output.
func (t *Transformer) Transform(s *model.Student) *Vector {
	vec := NewVector(t.schema.Len())
	for _, def := range t.schema.Definitions() {
		vec.Set(def.Name, t.mapFeature(s, def))
	}
	return vec
}

// mapFeature dispatches a feature name to its normalization rule. The set of
// rules is closed: names the transformer does not recognize pass the schema
// default through unchanged.
func (t *Transformer) mapFeature(s *model.Student, def Definition) any {
	switch def.Name {
	case "age":
		return int(numericValue(s.Age, def.Default, nil, nil))
	case "gender":
		return snakeToken(stringOr(string(s.Gender), def.Default))
	case "gpa":
		return t.determineGPA(s, def.Default)
	case "attendance_rate":
		return numericValue(s.AttendanceRate, def.Default, f(0), f(100))
	case "previous_failures":
		return numericValue(s.PreviousFailures, def.Default, f(0), f(30))
	case "study_hours_per_week":
		return numericValue(s.StudyHoursPerWeek, def.Default, f(0), f(80))
	case "internet_access":
		return boolValue(s.InternetAccess, def.Default)
	case "extracurricular_involvement":
		return boolValue(s.ExtracurricularInvolvement, def.Default)
	case "part_time_job":
		return boolValue(s.PartTimeJob, def.Default)
	case "financial_aid":
		return boolValue(s.FinancialAid, def.Default)
	case "family_income":
		return numericValue(deref(s.FamilyIncome), def.Default, f(0), nil)
	case "parental_education_level":
		return snakeToken(stringPtrOr(s.ParentalEducationLevel, def.Default))
	case "course_of_study":
		return courseToken(stringPtrOr(s.CourseOfStudy, def.Default))
	case "semester":
		return numericValue(s.Semester, def.Default, f(1), f(12))
	case "living_situation":
		return snakeToken(stringPtrOr(s.LivingSituation, def.Default))
	case "distance_from_home":
		return numericValue(s.DistanceFromHome, def.Default, f(0), f(2000))
	case "mental_health_score":
		return numericValue(deref(s.MentalHealthScore), def.Default, f(0), f(10))
	case "mode_of_transport":
		return snakeToken(stringPtrOr(s.ModeOfTransport, def.Default))
	case "grades_average":
		return t.gradesAverage(s, def.Default)
	case "grades_count":
		return t.gradesCount(s, def.Default)
	default:
		return def.Default
	}
}

// determineGPA prefers an explicit gpa, then the grade-point average derived
// from the grade list, then the schema default, then the neutral 2.5.
func (t *Transformer) determineGPA(s *model.Student, def any) float64 {
	if s.GPA != nil {
		return numericValue(*s.GPA, def, f(0), f(4))
	}

	points, _ := ExtractGradeMetrics(s.Grades)
	if points == nil {
		return numericValue(def, neutralGPA, f(0), f(4))
	}
	return numericValue(*points, neutralGPA, f(0), f(4))
}

func (t *Transformer) gradesAverage(s *model.Student, def any) float64 {
	_, percentage := ExtractGradeMetrics(s.Grades)
	if percentage == nil {
		return numericValue(def, neutralGradesAverage, f(0), f(100))
	}
	return numericValue(*percentage, neutralGradesAverage, f(0), f(100))
}

// gradesCount counts entries with a non-null grade. A zero count defers to
// the schema default so the schema can distinguish "missing" from a genuine
// zero.
func (t *Transformer) gradesCount(s *model.Student, def any) float64 {
	count := CountGrades(s.Grades)
	if count == 0 && def != nil {
		if v, ok := toFloat(def); ok {
			return v
		}
	}
	return float64(count)
}

// ─── Normalization helpers ──────────────────────────────────────────

// numericValue coerces value to a float, substituting the default (or 0)
// for non-numeric input, clamping to [min,max] where given, and rounding to
// 4 decimal places. Re-applying it to its own output is a no-op.
func numericValue(value, def any, min, max *float64) float64 {
	numeric, ok := toFloat(value)
	if !ok {
		numeric, ok = toFloat(def)
		if !ok {
			numeric = 0
		}
	}

	if min != nil && numeric < *min {
		numeric = *min
	}
	if max != nil && numeric > *max {
		numeric = *max
	}

	return round4(numeric)
}

// boolValue uses the typed value when known, otherwise truthy-parses the
// schema default.
func boolValue(value *bool, def any) bool {
	if value != nil {
		return *value
	}
	return parseTruthy(def)
}

// parseTruthy interprets loosely-typed truthy/falsy tokens: "1", "true",
// "yes", "y" and nonzero numbers are true; "0", "false", "no", "n", empty
// strings, zero, and nil are false. Other non-empty strings are true.
func parseTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y":
			return true
		case "false", "0", "no", "n", "":
			return false
		default:
			return true
		}
	default:
		if numeric, ok := toFloat(value); ok {
			return numeric != 0
		}
		return false
	}
}

// snakeToken lowercases a value and replaces every non-alphanumeric run
// character with an underscore.
func snakeToken(value string) string {
	lowered := strings.ToLower(value)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// courseToken prefixes the tokenized course name with "course_", collapsing
// doubled separators. Absent values yield the fixed sentinel.
func courseToken(value string) string {
	if value == "" {
		return unknownCourseToken
	}
	token := "course_" + snakeToken(value)
	for strings.Contains(token, "__") {
		token = strings.ReplaceAll(token, "__", "_")
	}
	return token
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// toFloat coerces numeric-ish values (numbers, json.Number, numeric strings)
// to float64. Booleans and non-numeric strings are not numeric.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func stringOr(value string, def any) string {
	if value != "" {
		return value
	}
	return stringify(def)
}

func stringPtrOr(value *string, def any) string {
	if value != nil && *value != "" {
		return *value
	}
	return stringify(def)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// f is shorthand for taking the address of a clamp bound.
func f(v float64) *float64 { return &v }
