package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"github.com/voidswing/ff-l/config"
	"github.com/voidswing/ff-l/controllers"
	"github.com/voidswing/ff-l/database"
	"github.com/voidswing/ff-l/routes"
	"github.com/voidswing/ff-l/services"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := zap.NewProductionConfig().Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	var completer services.ChatCompleter
	if cfg.OpenAIAPIKey != "" {
		completer = openai.NewClient(cfg.OpenAIAPIKey)
	} else {
		logger.Warn("OPENAI_API_KEY not set, judge requests will fail until configured")
	}

	identity := services.NewIdentityService(db, logger)
	requests := services.NewRequestLogService(db, logger)
	engine := services.NewJudgmentEngine(completer, cfg.OpenAIModel, cfg.OpenAITimeout, logger)
	notifier := services.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannel, logger)
	defer notifier.Close()

	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-USER-UDID")
	r.Use(cors.New(corsCfg))

	r.GET("/health", controllers.HealthCheck)
	routes.JudgeRoutes(r, controllers.NewJudgeController(identity, requests, engine, notifier, logger))
	routes.UserRoutes(r, controllers.NewUserController(identity, logger))

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
