package feature

import (
	"math"
	"testing"

	"github.com/retainhq/retain-backend/internal/model"
)

// closeTo absorbs float summation error; the aggregator averages in a
// different association order than a test's literal expression.
func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestExtractGradeMetricsLetterGrades(t *testing.T) {
	grades := []model.GradeEntry{
		{Subject: "Math", Grade: "A"},
		{Subject: "English", Grade: "B-"},
	}

	points, pct := ExtractGradeMetrics(grades)
	if points == nil || pct == nil {
		t.Fatal("expected both averages")
	}
	if !closeTo(*points, (4.0+2.7)/2) {
		t.Errorf("points = %v", *points)
	}
	if !closeTo(*pct, (95.0+82.0)/2) {
		t.Errorf("percentage = %v", *pct)
	}
}

func TestExtractGradeMetricsNumericGrades(t *testing.T) {
	grades := []model.GradeEntry{
		{Subject: "Math", Grade: 80.0},
		{Subject: "English", Grade: 90.0},
	}

	points, pct := ExtractGradeMetrics(grades)
	if points == nil || pct == nil {
		t.Fatal("expected both averages")
	}
	// Numeric grades count as percentages and divide by 25 for points.
	if !closeTo(*pct, 85.0) {
		t.Errorf("percentage = %v, want 85", *pct)
	}
	if !closeTo(*points, 85.0/25) {
		t.Errorf("points = %v, want %v", *points, 85.0/25)
	}
}

func TestExtractGradeMetricsMixed(t *testing.T) {
	grades := []model.GradeEntry{
		{Subject: "Math", Grade: "A+"},
		{Subject: "English", Grade: 50.0},
	}

	points, pct := ExtractGradeMetrics(grades)
	if points == nil || pct == nil {
		t.Fatal("expected both averages")
	}
	if !closeTo(*points, (4.0+2.0)/2) {
		t.Errorf("points = %v", *points)
	}
	if !closeTo(*pct, (98.0+50.0)/2) {
		t.Errorf("percentage = %v", *pct)
	}
}

func TestExtractGradeMetricsSkipsUnusable(t *testing.T) {
	grades := []model.GradeEntry{
		{Subject: "Math", Grade: nil},
		{Subject: "English", Grade: "Z+"},
		{Subject: "History", Grade: "B"},
	}

	points, pct := ExtractGradeMetrics(grades)
	if points == nil || *points != 3.0 {
		t.Errorf("points = %v, want 3.0 from the single usable grade", points)
	}
	if pct == nil || *pct != 85.0 {
		t.Errorf("percentage = %v, want 85", pct)
	}
}

func TestExtractGradeMetricsAllUnusable(t *testing.T) {
	grades := []model.GradeEntry{
		{Subject: "Math", Grade: nil},
		{Subject: "English", Grade: "??"},
	}

	points, pct := ExtractGradeMetrics(grades)
	if points != nil || pct != nil {
		t.Errorf("expected nil averages, got %v / %v", points, pct)
	}
}

func TestExtractGradeMetricsEmpty(t *testing.T) {
	points, pct := ExtractGradeMetrics(nil)
	if points != nil || pct != nil {
		t.Error("expected nil averages for empty list")
	}
}

func TestExtractGradeMetricsCaseAndWhitespace(t *testing.T) {
	grades := []model.GradeEntry{{Subject: "Math", Grade: " a+ "}}

	points, _ := ExtractGradeMetrics(grades)
	if points == nil || *points != 4.0 {
		t.Errorf("points = %v, want 4.0", points)
	}
}

func TestCountGrades(t *testing.T) {
	grades := []model.GradeEntry{
		{Subject: "Math", Grade: "A"},
		{Subject: "English", Grade: nil},
		{Subject: "History", Grade: 70.0},
	}
	if got := CountGrades(grades); got != 2 {
		t.Errorf("CountGrades = %d, want 2", got)
	}
	if got := CountGrades(nil); got != 0 {
		t.Errorf("CountGrades(nil) = %d, want 0", got)
	}
}
