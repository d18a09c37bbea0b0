package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"exam-bank/internal/config"
	"exam-bank/internal/database"
	"exam-bank/internal/domain"
	"exam-bank/internal/dto"
	"exam-bank/internal/logger"
	"exam-bank/internal/repository"
	"exam-bank/internal/service"

	"go.uber.org/zap"
)

// seedBank is the on-disk shape of one seed file: a bank of questions
// plus the exams configured over it.
type seedBank struct {
	BankID    string                `json:"bank_id"`
	Questions []dto.QuestionRequest `json:"questions"`
	Exams     []dto.ExamRequest     `json:"exams"`
}

func main() {
	seedFilePath := flag.String("file", "database/seed/sample_bank.json", "seed file to load")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting bank seeding", zap.String("file", *seedFilePath))

	db, err := database.NewSQLXSQLiteDB(cfg.DB.Path)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	raw, err := os.ReadFile(*seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFilePath), zap.Error(err))
	}

	var bank seedBank
	if err := json.Unmarshal(raw, &bank); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	if bank.BankID == "" {
		log.Fatal("Seed file is missing bank_id")
	}

	questionRepository := repository.NewSQLXQuestionRepository(db)
	examRepository := repository.NewSQLXExamRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)

	clock := domain.SystemClock{}
	questionService := service.NewQuestionService(questionRepository, clock)
	examService := service.NewExamService(examRepository, questionRepository, attemptRepository,
		domain.NewSelector(), service.NewResultCacheService(nil, 0), clock)

	for i := range bank.Questions {
		resp, err := questionService.CreateQuestion(ctx, bank.BankID, &bank.Questions[i])
		if err != nil {
			log.Fatal("Failed to seed question",
				zap.Int("index", i), zap.Error(err))
		}
		log.Info("Seeded question", zap.String("questionID", resp.ID), zap.String("kind", resp.Kind))
	}

	// Exams go in last so pool verification sees the full bank.
	for i := range bank.Exams {
		resp, err := examService.CreateExam(ctx, bank.BankID, &bank.Exams[i])
		if err != nil {
			log.Fatal("Failed to seed exam",
				zap.String("title", bank.Exams[i].Title), zap.Error(err))
		}
		log.Info("Seeded exam", zap.String("examID", resp.ID), zap.String("title", resp.Title))
	}

	log.Info("Bank seeding completed",
		zap.String("bankID", bank.BankID),
		zap.Int("questions", len(bank.Questions)),
		zap.Int("exams", len(bank.Exams)))
}
