//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/studyplan/internal/adapter/httpapi"
	"github.com/eslsoft/studyplan/internal/adapter/repository"
	"github.com/eslsoft/studyplan/internal/infrastructure/config"
	"github.com/eslsoft/studyplan/internal/infrastructure/database"
	"github.com/eslsoft/studyplan/internal/infrastructure/server"
	"github.com/eslsoft/studyplan/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
	providePlanSettings,
)

var databaseSet = wire.NewSet(
	database.NewDB,
)

var repositorySet = wire.NewSet(
	repository.NewCurriculumRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewStudyPlanUsecase,
	provideBackupService,
)

var serviceSet = wire.NewSet(
	httpapi.NewHub,
	wire.Bind(new(usecase.ChangeNotifier), new(*httpapi.Hub)),
	httpapi.NewHandler,
	httpapi.NewRouter,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
