package main

import (
	"context"

	"launchdeck/internal/copygen"
	"launchdeck/internal/dispatch"
	"launchdeck/internal/handlers"
	"launchdeck/internal/store"
	"launchdeck/pkg/config"
	"launchdeck/pkg/database"
	"launchdeck/pkg/llm"
	"launchdeck/pkg/logging"
	"launchdeck/pkg/monitoring"
	"launchdeck/pkg/server"
	"launchdeck/pkg/version"
)

func main() {
	logger := logging.NewLoggerWithService("launchdeck")
	config.LoadEnv(logger)

	port := config.GetEnv("PORT", "18040")
	databaseURL := config.RequireEnv("DATABASE_URL")
	jwtSecret := config.RequireEnv("JWT_SECRET")
	dispatchToken := config.GetEnv("DISPATCH_TOKEN", "")

	dbConfig := database.DefaultConfig()
	dbConfig.URL = databaseURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	if config.GetEnvBool("MIGRATE_ON_START", false) {
		if err := database.ApplySchema(context.Background(), db, logger); err != nil {
			logger.WithError(err).Fatal("Failed to apply database schema")
		}
	}

	healthChecker := monitoring.NewHealthChecker("launchdeck", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("launchdeck", version.Version, version.GitCommit)

	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": databaseURL,
		"JWT_SECRET":   jwtSecret,
	}))

	dispatchPosts, writebackFailures, passDuration := metricsCollector.CreateDispatchMetrics()
	apiOperations := metricsCollector.NewCounter(
		"api_operations_total", "API operations by outcome", []string{"operation", "status"},
	)

	llmConfig := llm.LoadConfig()
	provider, err := llm.NewProvider(llmConfig)
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure copy generation provider")
	}
	generator := copygen.NewGenerator(provider, logger)

	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		Store:     dispatch.NewPostgresStore(db),
		NewClient: dispatch.TwitterClientFactory(),
		Logger:    logger,
		Metrics: &dispatch.Metrics{
			Posts:             dispatchPosts,
			WritebackFailures: writebackFailures,
			PassDuration:      passDuration,
		},
		PostTimeout: config.GetEnvDuration("POST_TIMEOUT", 0),
	})

	app := server.SetupServiceRouter(logger, "launchdeck", healthChecker, metricsCollector)

	handlers.RegisterRoutes(app, handlers.RouterConfig{
		Store:         store.New(db),
		Generator:     generator,
		Runner:        dispatcher,
		ClientFactory: dispatch.TwitterClientFactory(),
		JWTSecret:     []byte(jwtSecret),
		DispatchToken: dispatchToken,
		Logger:        logger,
		Metrics:       &handlers.APIMetrics{Operations: apiOperations},
	})

	if dispatchToken == "" {
		logger.Warn("DISPATCH_TOKEN not set, dispatch trigger is unauthenticated")
	}

	serverConfig := server.DefaultConfig("launchdeck", port)
	if err := server.Start(serverConfig, app, logger); err != nil {
		logger.Fatal(err.Error())
	}
}
