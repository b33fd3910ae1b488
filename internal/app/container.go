package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studyplan/internal/infrastructure/config"
	"github.com/eslsoft/studyplan/internal/infrastructure/database"
	"github.com/eslsoft/studyplan/internal/infrastructure/server"
	"github.com/eslsoft/studyplan/internal/repository"
	"github.com/eslsoft/studyplan/internal/usecase"
	"github.com/eslsoft/studyplan/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *database.DB
	Plan   usecase.StudyPlanUsecase
	Backup *backup.Service
	Server *server.Server
}

func providePlanSettings(cfg *config.Config) usecase.PlanSettings {
	return usecase.PlanSettings{
		ForecastHorizonDays: cfg.Plan.ForecastHorizonDays,
		ExamOffsetDays:      cfg.Plan.ExamOffsetDays,
	}
}

func provideBackupService(repo repository.CurriculumRepository) *backup.Service {
	return backup.NewService(repo)
}
