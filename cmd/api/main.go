package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/gamequiz-api/internal/config"
	"github.com/yourusername/gamequiz-api/internal/handler"
	"github.com/yourusername/gamequiz-api/internal/middleware"
	pgRepo "github.com/yourusername/gamequiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/gamequiz-api/internal/repository/redis"
	"github.com/yourusername/gamequiz-api/internal/service"
	ws "github.com/yourusername/gamequiz-api/internal/websocket"
	"github.com/yourusername/gamequiz-api/pkg/auth"
	"github.com/yourusername/gamequiz-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	eventRepo := pgRepo.NewEventRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Создаем контекст с отменой для корректного завершения фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация WebSocket Hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Инициализируем сервисы
	clock := service.SystemClock()
	wallet := service.NewCoinWallet(userRepo)
	eventService := service.NewEventService(eventRepo, clock)
	lifecycleService := service.NewLifecycleService(eventRepo, clock)
	attemptService := service.NewAttemptService(eventRepo, attemptRepo, wallet, hub, cacheRepo, clock)
	leaderboardService := service.NewLeaderboardService(attemptRepo, userRepo, cacheRepo, cfg.Engine.LeaderboardCacheTTL())
	analyticsService := service.NewAnalyticsService(attemptRepo)

	// Запускаем транзишенер статусов: фиксированный тик, каждый проход идемпотентен
	go func() {
		ticker := time.NewTicker(cfg.Engine.TickInterval())
		defer ticker.Stop()

		log.Printf("Запуск транзишенера статусов событий (интервал %v)", cfg.Engine.TickInterval())

		for {
			select {
			case <-ticker.C:
				if _, err := lifecycleService.Tick(); err != nil {
					log.Printf("Ошибка тика транзишенера: %v", err)
				}
			case <-ctx.Done():
				log.Println("Завершение работы транзишенера статусов")
				return
			}
		}
	}()

	// Инициализируем обработчики
	eventHandler := handler.NewEventHandler(eventService, attemptService, leaderboardService, analyticsService)
	attemptHandler := handler.NewAttemptHandler(attemptService)
	wsHandler := handler.NewWSHandler(hub, jwtService, cfg.Server.AllowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		events := api.Group("/gaming-events")
		{
			// Публичные read-пути
			events.GET("", eventHandler.ListEvents)

			// Группа маршрутов, требующих eventID
			eventWithID := events.Group("/:id")
			eventWithID.Use(middleware.ExtractUintParam("id", "eventID")) // Применяем middleware
			{
				eventWithID.GET("", eventHandler.GetEvent)
				eventWithID.GET("/leaderboard", eventHandler.GetLeaderboard)

				// Маршруты участника
				player := eventWithID.Group("")
				player.Use(authMiddleware.RequireAuth())
				{
					player.POST("/join", rateLimiter.Limit(middleware.JoinRateLimitConfig()), attemptHandler.JoinEvent)
					player.GET("/questions", attemptHandler.GetQuestions)
					player.POST("/submit", rateLimiter.Limit(middleware.SubmitRateLimitConfig()), attemptHandler.SubmitAnswers)
					player.GET("/completed", attemptHandler.CheckCompleted)
				}

				// Маршруты администратора
				adminEvents := eventWithID.Group("")
				adminEvents.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
				{
					adminEvents.PATCH("", eventHandler.UpdateEvent)
					adminEvents.DELETE("", eventHandler.DeleteEvent)
					adminEvents.GET("/analytics", eventHandler.GetAnalytics)
					adminEvents.GET("/leaderboard/export", eventHandler.ExportLeaderboard)
				}
			}

			// Создание события (не требует ID)
			adminCreate := events.Group("")
			adminCreate.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
			{
				adminCreate.POST("", eventHandler.CreateEvent)
			}

		}

		// Дисквалификация попытки. Отдельная группа: сегмент /attempts
		// не может жить рядом с wildcard /:id внутри /gaming-events
		attemptAdmin := api.Group("/attempts/:attempt_id")
		attemptAdmin.Use(middleware.ExtractUintParam("attempt_id", "attemptID"))
		attemptAdmin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			attemptAdmin.POST("/disqualify", eventHandler.DisqualifyAttempt)
		}

		// Проверка завершения для внешнего сервиса наград
		checkCompleted := api.Group("/check-completed/:event_id/:user_id")
		checkCompleted.Use(
			middleware.ExtractUintParam("event_id", "eventID"),
			middleware.ExtractUintParam("user_id", "targetUserID"),
			authMiddleware.RequireAuth(),
		)
		{
			checkCompleted.GET("", attemptHandler.CheckCompletedFor)
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
