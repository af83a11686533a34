package main

import (
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"pirizgpt/internal/config"
	"pirizgpt/internal/domain/chat"
	"pirizgpt/internal/infrastructure/database"
	"pirizgpt/internal/infrastructure/database/repository/turnrepo"
	"pirizgpt/internal/infrastructure/inference"
	"pirizgpt/internal/infrastructure/logger"
	"pirizgpt/internal/interfaces/httpserver"
	"pirizgpt/internal/interfaces/httpserver/handlers/chathandler"
	"pirizgpt/internal/interfaces/httpserver/handlers/historyhandler"
	chatroute "pirizgpt/internal/interfaces/httpserver/routes/chat"
	historyroute "pirizgpt/internal/interfaces/httpserver/routes/history"

	_ "net/http/pprof"
)

func main() {
	// .env is optional; the environment may already be populated.
	_ = godotenv.Load()

	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	log, err = logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log = logger.GetLogger()
		log.Warn().Err(err).Msg("invalid log configuration, using defaults")
	}

	if !cfg.HasModelAPIKey() {
		log.Warn().Msg("MODEL_API_KEY not set; completion calls will fail until provided")
	}

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := database.Migration(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	repo := turnrepo.NewTurnGormRepository(db)
	gateway := inference.NewOpenAIGateway(cfg)
	service := chat.NewChatService(repo, gateway, log)

	chatHandler := chathandler.NewChatHandler(service, log)
	historyHandler := historyhandler.NewHistoryHandler(service, log)
	server := httpserver.NewHTTPServer(
		cfg,
		log,
		chatroute.NewChatRoute(chatHandler),
		historyroute.NewHistoryRoute(historyHandler),
	)

	var eg errgroup.Group
	eg.Go(func() error {
		return http.ListenAndServe(fmt.Sprintf("localhost:%d", cfg.PprofPort), nil)
	})
	eg.Go(func() error {
		log.Info().Int("port", cfg.HTTPPort).Str("model", cfg.ModelID).Msg("starting server")
		return server.Run()
	})

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
