package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/auth"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/config"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/handler"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/ratelimit"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/repository"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service/storage"
)

func connectWithRetry(dsn, dbName string, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	// Сначала подключаемся к системной базе postgres, которая всегда существует
	pgDSN := strings.Replace(dsn, "dbname="+dbName, "dbname=postgres", 1)
	pgDB, err := sqlx.Connect("postgres", pgDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres database: %v", err)
	}
	defer pgDB.Close()

	// Проверяем, существует ли целевая база данных
	var exists bool
	err = pgDB.Get(&exists, "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)", dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	// Если базы нет, создаем её
	if !exists {
		log.Printf("Database %s does not exist, creating...", dbName)
		_, err = pgDB.Exec(fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName)))
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	var db *sqlx.DB
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %v", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	var m *migrate.Migrate
	var err error

	for i := 0; i < 5; i++ {
		m, err = migrate.New("file://migrations", databaseURL)
		if err == nil {
			break
		}
		log.Printf("Failed to create migrate instance (attempt %d/5): %v", i+1, err)
		time.Sleep(time.Second * 5)
	}

	if err != nil {
		return fmt.Errorf("failed to create migrate instance after retries: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// newStorage выбирает бэкенд хранилища по конфигурации.
// Дальше по коду выбор нигде не проверяется: оба бэкенда удовлетворяют
// общему интерфейсу.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "local":
		return storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Server.BaseURL)
	case "s3":
		s3Config, err := storage.NewConfig(".s3.env")
		if err != nil {
			return nil, fmt.Errorf("failed to load S3 config: %w", err)
		}
		return storage.NewClient(s3Config)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

func main() {
	// Загружаем конфигурацию
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаемся к базе данных
	db, err := connectWithRetry(appConfig.Database.GetDSN(), appConfig.Database.Name, 5, time.Second*5)
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Инициализация хранилища файлов
	store, err := newStorage(appConfig)
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Создаем учетную запись администратора, если её нет
	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userRepo.EnsureAdmin(bootstrapCtx, appConfig.Admin.Name, appConfig.Admin.Email); err != nil {
		cancelBootstrap()
		log.Fatalf("Failed to ensure admin account: %v", err)
	}
	cancelBootstrap()

	// Инициализация сервисов
	resolver := auth.NewResolver(userRepo)
	policyService := service.NewPolicyService()
	activityService := service.NewActivityService(activityRepo)
	fileService := service.NewFileService(uploadRepo, userRepo, store, policyService, activityService)
	userService := service.NewUserService(userRepo, activityService)

	// Инициализация хендлеров
	fileHandler := handler.NewFileHandler(fileService, resolver)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(userService, activityService, resolver)

	// Ограничитель частоты запросов: фиксированное окно по адресу клиента
	limiter := ratelimit.NewFixedWindow(120, time.Minute)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.EmailHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(ratelimit.Middleware(limiter))

	// HTTP маршруты
	r.Route("/v1", func(r chi.Router) {
		r.Post("/users/register", userHandler.Register)

		r.Post("/uploads", fileHandler.UploadFile)
		r.Get("/uploads", fileHandler.ListUploads)
		r.Route("/uploads/{key}", func(r chi.Router) {
			r.Delete("/", fileHandler.DeleteUpload)
			r.Put("/title", fileHandler.UpdateTitle)
		})

		r.Route("/files/{key}", func(r chi.Router) {
			r.Get("/", fileHandler.ServeFile)
			r.Get("/link", fileHandler.GetViewLink)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/managers/pending", adminHandler.PendingManagers)
			r.Put("/managers/{id}/approve", adminHandler.ApproveManager)
			r.Put("/managers/{id}/reject", adminHandler.RejectManager)
			r.Get("/activity", adminHandler.GetActivity)
		})
	})

	// Создаем HTTP сервер
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	// Канал для сигналов завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем HTTP сервер
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}

	log.Println("Server exited properly")
}
