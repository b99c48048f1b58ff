// Seeds training modules, quiz questions and a manager account from a YAML file.
// Modules that already exist (matched by title) are skipped, so the script can be re-run.
//
// Usage: go run scripts/seed_modules.go -file scripts/modules.yaml

package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/service"
	"pharmtrain_backend/internal/training"
	"pharmtrain_backend/pkg/database"
	"pharmtrain_backend/pkg/logger"
)

type seedFile struct {
	Manager struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"manager"`
	Modules []seedModule `yaml:"modules"`
}

type seedModule struct {
	Title           string         `yaml:"title"`
	Description     string         `yaml:"description"`
	Category        string         `yaml:"category"`
	Order           int            `yaml:"order"`
	DurationMinutes int            `yaml:"duration_minutes"`
	Questions       []seedQuestion `yaml:"questions"`
}

type seedQuestion struct {
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
	Answer  string   `yaml:"answer"`
}

func main() {
	file := flag.String("file", "scripts/modules.yaml", "seed file")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg)

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seedManager(db, seed); err != nil {
		log.Fatalf("Failed to seed manager: %v", err)
	}

	created := 0
	for _, m := range seed.Modules {
		ok, err := seedOne(db, m)
		if err != nil {
			log.Fatalf("Failed to seed module %q: %v", m.Title, err)
		}
		if ok {
			created++
		}
	}
	log.Printf("Seeded %d of %d modules", created, len(seed.Modules))
}

func seedManager(db *gorm.DB, seed seedFile) error {
	if seed.Manager.Email == "" {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(seed.Manager.Email))
	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := service.HashPassword(seed.Manager.Password)
	if err != nil {
		return err
	}
	return db.Create(&model.User{
		Name:     seed.Manager.Name,
		Email:    email,
		Password: hashed,
		Role:     model.Manager,
	}).Error
}

func seedOne(db *gorm.DB, m seedModule) (bool, error) {
	var count int64
	if err := db.Model(&model.TrainingModule{}).Where("title = ?", m.Title).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	return true, db.Transaction(func(tx *gorm.DB) error {
		module := model.TrainingModule{
			Title:           m.Title,
			Description:     m.Description,
			Category:        m.Category,
			OrderIndex:      m.Order,
			DurationMinutes: m.DurationMinutes,
		}
		if err := tx.Create(&module).Error; err != nil {
			return err
		}
		for i, q := range m.Questions {
			question := model.QuizQuestion{
				ModuleID:      module.ID,
				Position:      i,
				Prompt:        q.Prompt,
				Options:       q.Options,
				CorrectAnswer: q.Answer,
			}
			if training.CorrectIndex(question) < 0 {
				return errors.New("answer is not one of the options: " + q.Prompt)
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
