package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/retainhq/retain-backend/internal/config"
	"github.com/retainhq/retain-backend/internal/database"
	"github.com/retainhq/retain-backend/internal/feature"
	"github.com/retainhq/retain-backend/internal/logger"
	"github.com/retainhq/retain-backend/internal/model"
	"github.com/retainhq/retain-backend/internal/repository"
	"github.com/retainhq/retain-backend/internal/scorer"
)

const seededModelVersion = "seeded_data_v1.0"

func main() {
	var adminEmail string
	var count int
	flag.StringVar(&adminEmail, "admin", "", "Email of the admin that will own the seeded students")
	flag.IntVar(&count, "count", 50, "Number of students to seed")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if adminEmail == "" {
		log.Fatal().Msg("-admin flag is required")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	schema, err := feature.LoadSchema(cfg.MLSchemaPaths)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load feature schema")
	}
	transformer := feature.NewTransformer(schema)

	adminRepo := repository.NewAdminRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	predictionRepo := repository.NewPredictionRepository(pool)

	admin, err := adminRepo.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatal().Err(err).Str("email", adminEmail).Msg("Admin not found")
	}

	fmt.Printf("=== Seeding %d Students for %s ===\n", count, admin.Name)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	successCount := 0

	for i := 0; i < count; i++ {
		student := randomStudent(rng, admin.ID, i)
		if err := studentRepo.Create(ctx, student); err != nil {
			fmt.Printf("Error creating student %s: %v\n", student.FullName, err)
			continue
		}

		// Give every seeded student an initial prediction from the
		// rule-based estimator, tagged so real scores replace it cleanly.
		vec := transformer.Transform(student)
		fb := scorer.EstimateFallback(vec, "")
		inputData, _ := json.Marshal(vec)

		prediction := &model.Prediction{
			StudentID:       student.ID,
			CollegeAdminID:  admin.ID,
			Result:          fb.Result,
			ConfidenceScore: fb.Confidence,
			ModelVersion:    seededModelVersion,
			ModelProvenance: model.ProvenanceSeeded,
			ModelMetadata:   map[string]any{"seeded": true},
			InputData:       inputData,
			PredictedAt:     time.Now().UTC(),
		}
		if err := predictionRepo.Create(ctx, prediction); err != nil {
			fmt.Printf("Error recording prediction for %s: %v\n", student.FullName, err)
			continue
		}

		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Created %d students...\n", i+1)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d students.\n", successCount, count)
}

var seedNames = []string{
	"Aarav Sharma", "Bella Thompson", "Carlos Mendez", "Diana Okafor", "Ethan Walker",
	"Fatima Al-Rashid", "Gabriel Silva", "Hannah Kim", "Ivan Petrov", "Julia Nakamura",
	"Kofi Mensah", "Leila Haddad", "Marcus Johnson", "Nadia Kowalski", "Omar Farouk",
	"Priya Patel", "Quinn O'Brien", "Rosa Martinez", "Samuel Adeyemi", "Tara Singh",
	"Umar Khan", "Valentina Rossi", "Wei Chen", "Ximena Lopez", "Yusuf Demir",
	"Zara Ahmed", "Adam Nowak", "Beatriz Costa", "Connor Murphy", "Daniela Vargas",
}

var seedCourses = []string{
	"Computer Science", "Business Administration", "Mechanical Engineering",
	"Psychology", "Nursing", "Economics", "Biology",
}

func randomStudent(rng *rand.Rand, adminID, i int) *model.Student {
	gender := model.GenderMale
	if i%2 != 0 {
		gender = model.GenderFemale
	}

	gpa := 1.5 + rng.Float64()*2.5
	mental := float64(rng.Intn(10) + 1)
	internet := rng.Intn(4) != 0
	course := seedCourses[rng.Intn(len(seedCourses))]

	return &model.Student{
		CollegeAdminID:    adminID,
		FullName:          seedNames[i%len(seedNames)],
		Age:               18 + rng.Intn(8),
		Gender:            gender,
		GPA:               &gpa,
		AttendanceRate:    50 + rng.Float64()*50,
		PreviousFailures:  rng.Intn(4),
		MentalHealthScore: &mental,
		StudyHoursPerWeek: 5 + rng.Intn(30),
		InternetAccess:    &internet,
		CourseOfStudy:     &course,
		DistanceFromHome:  rng.Intn(100),
		Semester:          1 + rng.Intn(8),
		Grades: []model.GradeEntry{
			{Subject: "Mathematics", Grade: 40 + rng.Float64()*60},
			{Subject: "English", Grade: 40 + rng.Float64()*60},
		},
	}
}
