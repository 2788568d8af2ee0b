package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retainhq/retain-backend/internal/model"
)

var ErrStudentNotFound = errors.New("student not found")

const studentColumns = `id, college_admin_id, full_name, age, gender, gpa, attendance_rate, grades,
	parental_education_level, family_income, mode_of_transport, internet_access, previous_failures,
	extracurricular_involvement, mental_health_score, study_hours_per_week, part_time_job,
	living_situation, distance_from_home, financial_aid, course_of_study, semester,
	additional_factors, created_at, updated_at`

// StudentRepository handles student data access. Grades and additional
// factors live in JSONB columns and are (un)marshalled at this boundary.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row interface{ Scan(...any) error }) (*model.Student, error) {
	s := &model.Student{}
	var gradesRaw, factorsRaw []byte
	err := row.Scan(&s.ID, &s.CollegeAdminID, &s.FullName, &s.Age, &s.Gender, &s.GPA,
		&s.AttendanceRate, &gradesRaw, &s.ParentalEducationLevel, &s.FamilyIncome,
		&s.ModeOfTransport, &s.InternetAccess, &s.PreviousFailures, &s.ExtracurricularInvolvement,
		&s.MentalHealthScore, &s.StudyHoursPerWeek, &s.PartTimeJob, &s.LivingSituation,
		&s.DistanceFromHome, &s.FinancialAid, &s.CourseOfStudy, &s.Semester,
		&factorsRaw, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if len(gradesRaw) > 0 {
		if err := json.Unmarshal(gradesRaw, &s.Grades); err != nil {
			return nil, fmt.Errorf("decode grades: %w", err)
		}
	}
	if len(factorsRaw) > 0 {
		if err := json.Unmarshal(factorsRaw, &s.AdditionalFactors); err != nil {
			return nil, fmt.Errorf("decode additional factors: %w", err)
		}
	}
	return s, nil
}

func encodeStudentJSON(s *model.Student) (grades, factors []byte, err error) {
	if s.Grades == nil {
		s.Grades = []model.GradeEntry{}
	}
	grades, err = json.Marshal(s.Grades)
	if err != nil {
		return nil, nil, fmt.Errorf("encode grades: %w", err)
	}
	if s.AdditionalFactors != nil {
		factors, err = json.Marshal(s.AdditionalFactors)
		if err != nil {
			return nil, nil, fmt.Errorf("encode additional factors: %w", err)
		}
	}
	return grades, factors, nil
}

// GetByID retrieves a student owned by the given admin.
func (r *StudentRepository) GetByID(ctx context.Context, adminID, id int) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1 AND college_admin_id = $2`, id, adminID))
}

// ListPaginated retrieves an admin's students newest-first, with optional
// name substring search and latest-risk filter. The risk filter matches each
// student's most recent prediction.
func (r *StudentRepository) ListPaginated(ctx context.Context, adminID int, search string, riskLevel model.RiskLevel, limit, offset int) ([]model.Student, int, error) {
	where := ` WHERE s.college_admin_id = $1`
	args := []any{adminID}
	argIdx := 2

	if search != "" {
		where += ` AND s.full_name ILIKE $` + strconv.Itoa(argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}
	if riskLevel != "" {
		where += ` AND (
			SELECT p.prediction_result FROM predictions p
			WHERE p.student_id = s.id
			ORDER BY p.created_at DESC LIMIT 1
		) = $` + strconv.Itoa(argIdx)
		args = append(args, riskLevel)
		argIdx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + studentColumns + ` FROM students s` + where +
		` ORDER BY s.created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, *s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	grades, factors, err := encodeStudentJSON(s)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO students (college_admin_id, full_name, age, gender, gpa, attendance_rate, grades,
			parental_education_level, family_income, mode_of_transport, internet_access, previous_failures,
			extracurricular_involvement, mental_health_score, study_hours_per_week, part_time_job,
			living_situation, distance_from_home, financial_aid, course_of_study, semester, additional_factors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		 RETURNING id, created_at, updated_at`,
		s.CollegeAdminID, s.FullName, s.Age, s.Gender, s.GPA, s.AttendanceRate, grades,
		s.ParentalEducationLevel, s.FamilyIncome, s.ModeOfTransport, s.InternetAccess, s.PreviousFailures,
		s.ExtracurricularInvolvement, s.MentalHealthScore, s.StudyHoursPerWeek, s.PartTimeJob,
		s.LivingSituation, s.DistanceFromHome, s.FinancialAid, s.CourseOfStudy, s.Semester, factors,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update overwrites a student's record with the given state.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	grades, factors, err := encodeStudentJSON(s)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET full_name = $1, age = $2, gender = $3, gpa = $4, attendance_rate = $5,
			grades = $6, parental_education_level = $7, family_income = $8, mode_of_transport = $9,
			internet_access = $10, previous_failures = $11, extracurricular_involvement = $12,
			mental_health_score = $13, study_hours_per_week = $14, part_time_job = $15,
			living_situation = $16, distance_from_home = $17, financial_aid = $18,
			course_of_study = $19, semester = $20, additional_factors = $21, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $22 AND college_admin_id = $23`,
		s.FullName, s.Age, s.Gender, s.GPA, s.AttendanceRate, grades,
		s.ParentalEducationLevel, s.FamilyIncome, s.ModeOfTransport, s.InternetAccess,
		s.PreviousFailures, s.ExtracurricularInvolvement, s.MentalHealthScore, s.StudyHoursPerWeek,
		s.PartTimeJob, s.LivingSituation, s.DistanceFromHome, s.FinancialAid, s.CourseOfStudy,
		s.Semester, factors, s.ID, s.CollegeAdminID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// Delete removes a student owned by the given admin. Their predictions
// cascade away with them.
func (r *StudentRepository) Delete(ctx context.Context, adminID, id int) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM students WHERE id = $1 AND college_admin_id = $2`, id, adminID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}
	return nil
}
