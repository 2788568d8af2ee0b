package feature

import (
	"strings"

	"github.com/retainhq/retain-backend/internal/model"
)

// letterGradePoints and letterGradePercentages are the two fixed lookup
// tables for the 14-symbol letter scale. Keeping both lets one pass over a
// grade list feed the GPA-style metric and the percentage-style metric
// independently.
var letterGradePoints = map[string]float64{
	"A+": 4.0, "A": 4.0, "A-": 3.7,
	"B+": 3.3, "B": 3.0, "B-": 2.7,
	"C+": 2.3, "C": 2.0, "C-": 1.7,
	"D+": 1.3, "D": 1.0, "D-": 0.7,
	"E": 0.5, "F": 0.0,
}

var letterGradePercentages = map[string]float64{
	"A+": 98, "A": 95, "A-": 92,
	"B+": 88, "B": 85, "B-": 82,
	"C+": 78, "C": 75, "C-": 72,
	"D+": 68, "D": 65, "D-": 62,
	"E": 55, "F": 45,
}

// ExtractGradeMetrics reduces a free-form grade list to an average
// grade-point value and an average percentage value. Numeric grades count as
// raw percentages and are divided by 25 for an approximate 0-4 point value
// (a historical quirk the trained models depend on; do not "fix" it).
// Letter grades resolve through both lookup tables; unrecognized tokens and
// null grades contribute to neither average. Either average is nil when no
// entry contributed to it.
func ExtractGradeMetrics(grades []model.GradeEntry) (avgPoints, avgPercentage *float64) {
	if len(grades) == 0 {
		return nil, nil
	}

	var points, percentages []float64

	for _, entry := range grades {
		if entry.Grade == nil {
			continue
		}

		if numeric, ok := toFloat(entry.Grade); ok {
			percentages = append(percentages, numeric)
			points = append(points, numeric/25)
			continue
		}

		raw, ok := entry.Grade.(string)
		if !ok {
			continue
		}
		letter := strings.ToUpper(strings.TrimSpace(raw))

		if p, ok := letterGradePoints[letter]; ok {
			points = append(points, p)
		}
		if pct, ok := letterGradePercentages[letter]; ok {
			percentages = append(percentages, pct)
		}
	}

	return mean(points), mean(percentages)
}

// CountGrades returns the number of entries carrying a non-null grade value.
func CountGrades(grades []model.GradeEntry) int {
	count := 0
	for _, entry := range grades {
		if entry.Grade != nil {
			count++
		}
	}
	return count
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}
