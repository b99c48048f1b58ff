package database

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/model"
)

const DefaultGroupName = "Main pharmacy"

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

// Migrate creates or updates every table and inserts the default team group.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.TeamGroup{},
		&model.User{},
		&model.TrainingModule{},
		&model.QuizQuestion{},
		&model.ModuleProgress{},
		&model.QuizResponse{},
		&model.CompetencyRecord{},
		&model.Recommendation{},
		&model.ConsultationSession{},
		&model.ConsultationMessage{},
		&model.Certification{},
	)
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.TeamGroup{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(&model.TeamGroup{Name: DefaultGroupName}).Error
	}
	return nil
}
