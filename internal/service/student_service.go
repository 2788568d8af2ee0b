package service

import (
	"context"
	"errors"

	"github.com/retainhq/retain-backend/internal/model"
	"github.com/retainhq/retain-backend/internal/repository"
)

// StudentService manages student records. All reads and writes are scoped to
// the owning admin; a student is never visible to another admin.
type StudentService struct {
	students    *repository.StudentRepository
	predictions *repository.PredictionRepository
}

// NewStudentService creates a new StudentService.
func NewStudentService(students *repository.StudentRepository, predictions *repository.PredictionRepository) *StudentService {
	return &StudentService{students: students, predictions: predictions}
}

// Create inserts a student owned by the given admin.
func (s *StudentService) Create(ctx context.Context, adminID int, req *model.CreateStudentRequest) (*model.Student, error) {
	student := &model.Student{
		CollegeAdminID:             adminID,
		FullName:                   req.FullName,
		Age:                        req.Age,
		Gender:                     req.Gender,
		GPA:                        req.GPA,
		AttendanceRate:             req.AttendanceRate,
		Grades:                     req.Grades,
		ParentalEducationLevel:     req.ParentalEducationLevel,
		FamilyIncome:               req.FamilyIncome,
		ModeOfTransport:            req.ModeOfTransport,
		InternetAccess:             req.InternetAccess,
		PreviousFailures:           req.PreviousFailures,
		ExtracurricularInvolvement: req.ExtracurricularInvolvement,
		MentalHealthScore:          req.MentalHealthScore,
		StudyHoursPerWeek:          req.StudyHoursPerWeek,
		PartTimeJob:                req.PartTimeJob,
		LivingSituation:            req.LivingSituation,
		DistanceFromHome:           req.DistanceFromHome,
		FinancialAid:               req.FinancialAid,
		CourseOfStudy:              req.CourseOfStudy,
		Semester:                   req.Semester,
		AdditionalFactors:          req.AdditionalFactors,
	}
	if student.Semester == 0 {
		student.Semester = 1
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Get returns a student with their latest prediction attached.
func (s *StudentService) Get(ctx context.Context, adminID, id int) (*model.StudentWithRisk, error) {
	student, err := s.students.GetByID(ctx, adminID, id)
	if err != nil {
		return nil, err
	}

	latest, err := s.predictions.LatestByStudent(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNoPrediction) {
		return nil, err
	}

	return &model.StudentWithRisk{Student: *student, LatestPrediction: latest}, nil
}

// List returns a page of the admin's students, each with their latest
// prediction, optionally filtered by name search and current risk level.
func (s *StudentService) List(ctx context.Context, adminID int, search string, riskLevel model.RiskLevel, page, perPage int) ([]model.StudentWithRisk, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 15
	}

	students, total, err := s.students.ListPaginated(ctx, adminID, search, riskLevel, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int, len(students))
	for i := range students {
		ids[i] = students[i].ID
	}
	latest, err := s.predictions.LatestForStudents(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]model.StudentWithRisk, len(students))
	for i := range students {
		result[i] = model.StudentWithRisk{
			Student:          students[i],
			LatestPrediction: latest[students[i].ID],
		}
	}
	return result, total, nil
}

// Update applies a partial update. The second return value reports whether
// the change touched an academic signal and a fresh prediction is warranted.
func (s *StudentService) Update(ctx context.Context, adminID, id int, req *model.UpdateStudentRequest) (*model.Student, bool, error) {
	student, err := s.students.GetByID(ctx, adminID, id)
	if err != nil {
		return nil, false, err
	}

	applyStudentUpdate(student, req)

	if err := s.students.Update(ctx, student); err != nil {
		return nil, false, err
	}
	return student, req.TriggersNewPrediction(), nil
}

// Delete removes a student and, via cascade, their prediction history.
func (s *StudentService) Delete(ctx context.Context, adminID, id int) error {
	return s.students.Delete(ctx, adminID, id)
}

func applyStudentUpdate(student *model.Student, req *model.UpdateStudentRequest) {
	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Age != nil {
		student.Age = *req.Age
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.GPA != nil {
		student.GPA = req.GPA
	}
	if req.AttendanceRate != nil {
		student.AttendanceRate = *req.AttendanceRate
	}
	if req.Grades != nil {
		student.Grades = req.Grades
	}
	if req.ParentalEducationLevel != nil {
		student.ParentalEducationLevel = req.ParentalEducationLevel
	}
	if req.FamilyIncome != nil {
		student.FamilyIncome = req.FamilyIncome
	}
	if req.ModeOfTransport != nil {
		student.ModeOfTransport = req.ModeOfTransport
	}
	if req.InternetAccess != nil {
		student.InternetAccess = req.InternetAccess
	}
	if req.PreviousFailures != nil {
		student.PreviousFailures = *req.PreviousFailures
	}
	if req.ExtracurricularInvolvement != nil {
		student.ExtracurricularInvolvement = req.ExtracurricularInvolvement
	}
	if req.MentalHealthScore != nil {
		student.MentalHealthScore = req.MentalHealthScore
	}
	if req.StudyHoursPerWeek != nil {
		student.StudyHoursPerWeek = *req.StudyHoursPerWeek
	}
	if req.PartTimeJob != nil {
		student.PartTimeJob = req.PartTimeJob
	}
	if req.LivingSituation != nil {
		student.LivingSituation = req.LivingSituation
	}
	if req.DistanceFromHome != nil {
		student.DistanceFromHome = *req.DistanceFromHome
	}
	if req.FinancialAid != nil {
		student.FinancialAid = req.FinancialAid
	}
	if req.CourseOfStudy != nil {
		student.CourseOfStudy = req.CourseOfStudy
	}
	if req.Semester != nil {
		student.Semester = *req.Semester
	}
	if req.AdditionalFactors != nil {
		student.AdditionalFactors = req.AdditionalFactors
	}
}
