package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sujittra/Uni-Exam/internal/config"
	"github.com/sujittra/Uni-Exam/internal/database"
	"github.com/sujittra/Uni-Exam/internal/logger"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)
	examRepo := repository.NewExamRepository(pool)

	fmt.Println("=== Seeding Demo Roster and Exam ===")

	students := []model.Student{
		{ID: "64001", Name: "Alice Student", Section: "SEC01"},
		{ID: "64002", Name: "Bob Student", Section: "SEC02"},
	}
	for i := range students {
		if err := studentRepo.Create(ctx, &students[i]); err != nil {
			log.Fatal().Err(err).Str("student_id", students[i].ID).Msg("Failed to seed student")
		}
		fmt.Printf("Seeded student %s (%s)\n", students[i].Name, students[i].ID)
	}

	exam := &model.Exam{
		ID:              uuid.New(),
		Title:           "CS101 Midterm: Java Basics",
		Description:     "Fundamental concepts of Java Programming.",
		DurationMinutes: 60,
		Sections:        []string{"SEC01", "SEC02"},
		Active:          true,
		Questions: []model.Question{
			{
				ID:                 uuid.New(),
				Kind:               model.QuestionKindMultipleChoice,
				Text:               "Which data type is used to create a variable that should store text?",
				Points:             5,
				Options:            []string{"String", "char", "float", "boolean"},
				CorrectOptionIndex: 0,
				OrderNum:           1,
			},
			{
				ID:              uuid.New(),
				Kind:            model.QuestionKindShortAnswer,
				Text:            "What keyword declares a constant field in Java?",
				Points:          5,
				AcceptedAnswers: []string{"final", "final keyword"},
				OrderNum:        2,
			},
			{
				ID:     uuid.New(),
				Kind:   model.QuestionKindCode,
				Text:   "Write a Java method named `sum` that takes two integers and returns their sum.",
				Points: 20,
				TestCases: []model.TestCase{
					{Input: "1 2", Expected: "3"},
					{Input: "10 -5", Expected: "5"},
				},
				OrderNum: 3,
			},
		},
	}

	if err := exam.ValidateForPublish(); err != nil {
		log.Fatal().Err(err).Msg("Seed exam is not publishable")
	}

	if err := examRepo.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed exam")
	}
	fmt.Printf("Seeded exam '%s' with %d questions (ID: %s)\n", exam.Title, len(exam.Questions), exam.ID)

	fmt.Println("Done.")
}
