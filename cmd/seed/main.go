package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quizforge/internal/config"
	"quizforge/internal/database"
	"quizforge/internal/domain"
	"quizforge/internal/logger"
	"quizforge/internal/repository"
	"quizforge/internal/repository/models"
	"quizforge/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const seedFilePath = "configs/seed_data/sample_quizzes.json"

// seedQuiz mirrors the structure of the seed data file.
type seedQuiz struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Questions   []struct {
		QuestionText string `json:"question_text"`
		Options      []struct {
			OptionText string `json:"option_text"`
			IsCorrect  bool   `json:"is_correct"`
		} `json:"options"`
	} `json:"questions"`
}

func main() {
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

	log.Info("Starting data seeding")
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}

	var seeds []seedQuiz
	if err := json.Unmarshal(byteValue, &seeds); err != nil {
		log.Fatal("Failed to parse seed file", zap.Error(err))
	}

	userRepo := repository.NewSQLXUserRepository(db)
	quizRepo := repository.NewSQLXQuizRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Seed owner for all sample quizzes. Reuse an existing one so the
	// command can be rerun without tripping the google_id unique index.
	owner, err := userRepo.GetUserByGoogleID(ctx, "seed-owner")
	if err != nil {
		log.Fatal("Failed to look up seed owner", zap.Error(err))
	}
	if owner == nil {
		owner = &models.User{
			ID:       util.NewULID(),
			GoogleID: "seed-owner",
			Email:    "seed@quizforge.local",
			Name:     "Seed Owner",
		}
		if err := userRepo.CreateUser(ctx, owner); err != nil {
			log.Fatal("Failed to create seed owner", zap.Error(err))
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)

	for _, seed := range seeds {
		seed := seed
		group.Go(func() error {
			quiz, err := toDomainQuiz(owner.ID, seed)
			if err != nil {
				return fmt.Errorf("seed quiz %q: %w", seed.Title, err)
			}
			if err := quiz.Validate(); err != nil {
				return fmt.Errorf("seed quiz %q: %w", seed.Title, err)
			}
			return txManager.WithTransaction(groupCtx, func(txCtx context.Context) error {
				return quizRepo.CreateQuiz(txCtx, quiz)
			})
		})
	}

	if err := group.Wait(); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seeding completed", zap.Int("quizzes", len(seeds)))
}

func toDomainQuiz(ownerID string, seed seedQuiz) (*domain.Quiz, error) {
	difficulty, ok := domain.ParseDifficulty(seed.Difficulty)
	if !ok {
		return nil, fmt.Errorf("invalid difficulty %q", seed.Difficulty)
	}

	quiz := &domain.Quiz{
		OwnerID:     ownerID,
		Title:       seed.Title,
		Description: seed.Description,
		Difficulty:  difficulty,
	}
	for i, q := range seed.Questions {
		question := &domain.Question{
			QuestionText: q.QuestionText,
			QuestionType: domain.QuestionTypeMultipleChoice,
			OrderIndex:   i,
		}
		for j, opt := range q.Options {
			question.Options = append(question.Options, &domain.Option{
				OptionText: opt.OptionText,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: j,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}
