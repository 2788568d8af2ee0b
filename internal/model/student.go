package model

import "time"

// Gender represents the student's gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// GradeEntry is a single per-subject grade. Grade may be a raw percentage
// (JSON number) or a letter grade on the A+..F scale. Null and unrecognized
// grades are skipped by the aggregator, never defaulted.
type GradeEntry struct {
	Subject string `json:"subject"`
	Grade   any    `json:"grade"`
}

// Student is a student record owned by a college admin. Nil pointer fields
// mean "unknown", not zero; the feature transformer substitutes schema
// defaults for them.
type Student struct {
	ID                         int            `json:"id"`
	CollegeAdminID             int            `json:"college_admin_id"`
	FullName                   string         `json:"full_name"`
	Age                        int            `json:"age"`
	Gender                     Gender         `json:"gender"`
	GPA                        *float64       `json:"gpa"`
	AttendanceRate             float64        `json:"attendance_rate"`
	Grades                     []GradeEntry   `json:"grades"`
	ParentalEducationLevel     *string        `json:"parental_education_level"`
	FamilyIncome               *float64       `json:"family_income"`
	ModeOfTransport            *string        `json:"mode_of_transport"`
	InternetAccess             *bool          `json:"internet_access"`
	PreviousFailures           int            `json:"previous_failures"`
	ExtracurricularInvolvement *bool          `json:"extracurricular_involvement"`
	MentalHealthScore          *float64       `json:"mental_health_score"`
	StudyHoursPerWeek          int            `json:"study_hours_per_week"`
	PartTimeJob                *bool          `json:"part_time_job"`
	LivingSituation            *string        `json:"living_situation"`
	DistanceFromHome           int            `json:"distance_from_home"`
	FinancialAid               *bool          `json:"financial_aid"`
	CourseOfStudy              *string        `json:"course_of_study"`
	Semester                   int            `json:"semester"`
	AdditionalFactors          map[string]any `json:"additional_factors,omitempty"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
}

// StudentWithRisk decorates a student with their latest prediction for list views.
type StudentWithRisk struct {
	Student
	LatestPrediction *Prediction `json:"latest_prediction"`
}

// CreateStudentRequest is the payload for creating a new student.
type CreateStudentRequest struct {
	FullName                   string         `json:"full_name" binding:"required,max=255"`
	Age                        int            `json:"age" binding:"required,min=16,max=65"`
	Gender                     Gender         `json:"gender" binding:"required,oneof=male female other"`
	GPA                        *float64       `json:"gpa" binding:"omitempty,min=0,max=4"`
	AttendanceRate             float64        `json:"attendance_rate" binding:"min=0,max=100"`
	Grades                     []GradeEntry   `json:"grades"`
	ParentalEducationLevel     *string        `json:"parental_education_level"`
	FamilyIncome               *float64       `json:"family_income" binding:"omitempty,min=0"`
	ModeOfTransport            *string        `json:"mode_of_transport"`
	InternetAccess             *bool          `json:"internet_access"`
	PreviousFailures           int            `json:"previous_failures" binding:"min=0"`
	ExtracurricularInvolvement *bool          `json:"extracurricular_involvement"`
	MentalHealthScore          *float64       `json:"mental_health_score" binding:"omitempty,min=0,max=10"`
	StudyHoursPerWeek          int            `json:"study_hours_per_week" binding:"min=0"`
	PartTimeJob                *bool          `json:"part_time_job"`
	LivingSituation            *string        `json:"living_situation"`
	DistanceFromHome           int            `json:"distance_from_home" binding:"min=0"`
	FinancialAid               *bool          `json:"financial_aid"`
	CourseOfStudy              *string        `json:"course_of_study"`
	Semester                   int            `json:"semester" binding:"omitempty,min=1"`
	AdditionalFactors          map[string]any `json:"additional_factors"`
	Model                      string         `json:"model" binding:"omitempty,max=128"`
}

// UpdateStudentRequest is the payload for partially updating a student.
// Nil fields are left untouched.
type UpdateStudentRequest struct {
	FullName                   *string        `json:"full_name" binding:"omitempty,max=255"`
	Age                        *int           `json:"age" binding:"omitempty,min=16,max=65"`
	Gender                     *Gender        `json:"gender" binding:"omitempty,oneof=male female other"`
	GPA                        *float64       `json:"gpa" binding:"omitempty,min=0,max=4"`
	AttendanceRate             *float64       `json:"attendance_rate" binding:"omitempty,min=0,max=100"`
	Grades                     []GradeEntry   `json:"grades"`
	ParentalEducationLevel     *string        `json:"parental_education_level"`
	FamilyIncome               *float64       `json:"family_income" binding:"omitempty,min=0"`
	ModeOfTransport            *string        `json:"mode_of_transport"`
	InternetAccess             *bool          `json:"internet_access"`
	PreviousFailures           *int           `json:"previous_failures" binding:"omitempty,min=0"`
	ExtracurricularInvolvement *bool          `json:"extracurricular_involvement"`
	MentalHealthScore          *float64       `json:"mental_health_score" binding:"omitempty,min=0,max=10"`
	StudyHoursPerWeek          *int           `json:"study_hours_per_week" binding:"omitempty,min=0"`
	PartTimeJob                *bool          `json:"part_time_job"`
	LivingSituation            *string        `json:"living_situation"`
	DistanceFromHome           *int           `json:"distance_from_home" binding:"omitempty,min=0"`
	FinancialAid               *bool          `json:"financial_aid"`
	CourseOfStudy              *string        `json:"course_of_study"`
	Semester                   *int           `json:"semester" binding:"omitempty,min=1"`
	AdditionalFactors          map[string]any `json:"additional_factors"`
}

// TriggersNewPrediction reports whether the update touches a field that
// materially changes dropout risk, warranting a fresh scoring attempt.
func (r *UpdateStudentRequest) TriggersNewPrediction() bool {
	return r.GPA != nil ||
		r.AttendanceRate != nil ||
		r.PreviousFailures != nil ||
		r.MentalHealthScore != nil ||
		r.StudyHoursPerWeek != nil ||
		r.Grades != nil
}
