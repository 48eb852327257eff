package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"questa-search/cmd/seed_questions/internal/seedmodels"
	"questa-search/internal/adapter/legacy"
	"questa-search/internal/config"
	"questa-search/internal/database"
	"questa-search/internal/domain"
	"questa-search/internal/logger"
	"questa-search/internal/repository"
	"questa-search/internal/service"

	"go.uber.org/zap"
)

const defaultSeedFile = "configs/seed_data/initial_questions.json"

func main() {
	seedFile := flag.String("file", defaultSeedFile, "seed file to import")
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

	log.Info("Starting question seeding process...")
	db, err := database.NewSQLXDB(ctx, cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.DB.Driver); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	log.Info("Loading seed data from file", zap.String("path", *seedFile))
	byteValue, err := os.ReadFile(*seedFile)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFile), zap.Error(err))
	}

	var subjects []seedmodels.SeedSubject
	if err := json.Unmarshal(byteValue, &subjects); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}

	questions, skipped := decodeSeed(subjects)
	log.Info("Decoded seed data",
		zap.Int("subjects", len(subjects)),
		zap.Int("questions", len(questions)),
		zap.Int("skipped", skipped))

	repo := repository.NewQuestionDatabaseAdapter(db, repository.Dialect(cfg.DB.Driver))
	svc := service.NewSearchService(repo, repository.NewTransactionManagerAdapter(db), nil, cfg.CacheTTLs)

	n, err := svc.ImportQuestions(ctx, questions)
	if err != nil {
		log.Fatal("Seeding failed, nothing was saved", zap.Error(err))
	}
	log.Info("Question seeding completed", zap.Int("imported", n))
}

// decodeSeed flattens the seed file. A record without a subject inherits its group's.
func decodeSeed(subjects []seedmodels.SeedSubject) ([]*domain.Question, int) {
	var questions []*domain.Question
	skipped := 0
	for _, s := range subjects {
		for _, record := range s.Questions {
			q, err := legacy.DecodeQuestion(record)
			if err != nil {
				skipped++
				continue
			}
			if q.Subject == "" {
				q.Subject = domain.Subject(s.Subject)
			}
			questions = append(questions, q)
		}
	}
	return questions, skipped
}
