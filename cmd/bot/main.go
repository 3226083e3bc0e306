// Package main - точка входа Telegram-бота учебного процесса.
//
// Поток работы: ученик регистрируется (имя и группа с клавиатуры),
// заявляет тему, присылает видеозапись; учитель ставит оценку кнопкой,
// ученик получает результат и сводку. Статистика считается по журналу
// оценок в Postgres, часовой пояс - Ташкент.
//
// Архитектура:
// - Domain: ученики, сессии регистрации, проверка, журнал оценок
// - Application: команды (регистрация, приём, оценка) и запросы (сводки)
// - Infrastructure: Postgres, Redis-кеш, Telegram API
// - Interface: Telegram bot handlers, служебные HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/maktab-hub/maktab-classroom-bot/config"

	// Application layer
	"github.com/maktab-hub/maktab-classroom-bot/internal/application/command"
	"github.com/maktab-hub/maktab-classroom-bot/internal/application/query"

	// Domain layer
	"github.com/maktab-hub/maktab-classroom-bot/internal/domain/student"

	// Infrastructure layer
	"github.com/maktab-hub/maktab-classroom-bot/internal/infrastructure/persistence/memory"
	"github.com/maktab-hub/maktab-classroom-bot/internal/infrastructure/persistence/postgres"
	"github.com/maktab-hub/maktab-classroom-bot/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/maktab-hub/maktab-classroom-bot/internal/interface/http"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/http/handlers"
	"github.com/maktab-hub/maktab-classroom-bot/internal/interface/telegram"

	// Packages
	"github.com/maktab-hub/maktab-classroom-bot/pkg/logger"
	"github.com/maktab-hub/maktab-classroom-bot/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	// .env удобен в разработке; в бою переменные приходят из окружения.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting classroom bot",
		"env", string(cfg.App.Environment),
		"debug", cfg.App.Debug,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	// База может подниматься параллельно с ботом: ping с бэкоффом.
	err = retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
		if pingErr := dbConn.Ping(ctx); pingErr != nil {
			return retry.Retryable(pingErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled && cfg.Redis.URL != "" {
		log.Info("connecting to Redis...")
		redisCache, err = redis.NewCacheFromURL(cfg.Redis.URL)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ ХРАНИЛИЩ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")

	// Сессии регистрации и очередь проверки живут в памяти процесса.
	store := memory.NewStore()

	gradeRepo := postgres.NewGradeRepository(dbConn)

	var studentRepo student.Repository = postgres.NewStudentRepository(dbConn)
	var summaryCache query.SummaryCache
	var invalidator command.CacheInvalidator

	if redisCache != nil {
		sc := redis.NewSummaryCache(redisCache)
		stc := redis.NewStudentCache(redisCache)
		summaryCache = sc
		invalidator = &resolveCacheInvalidator{summaries: sc, students: stc}
		studentRepo = &cachedStudentRepository{
			repo:  studentRepo,
			cache: stc,
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. РОСТЕР ГРУПП
	// ─────────────────────────────────────────────────────────────────────────
	roster := student.DefaultRoster()
	if len(cfg.Classroom.GroupCodes) > 0 {
		codes := make([]student.GroupCode, 0, len(cfg.Classroom.GroupCodes))
		for _, c := range cfg.Classroom.GroupCodes {
			codes = append(codes, student.GroupCode(c))
		}
		roster = student.NewRoster(codes)
	}
	log.Info("group roster loaded", "groups", roster.Len())

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	teacherID := student.TelegramID(cfg.Classroom.TeacherID)

	registrationCmd := command.NewRegistrationHandler(store, studentRepo, roster)
	acceptCmd := command.NewAcceptSubmissionHandler(studentRepo, store, store.PendingTable(), gradeRepo)
	resolveCmd := command.NewResolveGradeHandler(store.PendingTable(), gradeRepo, store, store, invalidator, teacherID)

	tallyQuery := query.NewGetStudentTallyHandler(gradeRepo)
	groupQuery := query.NewGetGroupSummaryHandler(gradeRepo, summaryCache)
	monthlyQuery := query.NewGetMonthlySummaryHandler(gradeRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. СОЗДАНИЕ TELEGRAM BOT
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing Telegram bot...")

	botConfig := telegram.DefaultBotConfig(cfg.Telegram.Token)
	botConfig.PollingTimeout = int(cfg.Telegram.PollingTimeout.Seconds())
	botConfig.Debug = cfg.App.Debug
	botConfig.Logger = log
	botConfig.GracefulShutdownTimeout = cfg.App.ShutdownTimeout

	botDeps := telegram.BotDependencies{
		Registration:  registrationCmd,
		Accept:        acceptCmd,
		Resolve:       resolveCmd,
		TallyQuery:    tallyQuery,
		GroupQuery:    groupQuery,
		MonthlyQuery:  monthlyQuery,
		Sessions:      store,
		Locker:        store,
		TeacherID:     teacherID,
		TeacherChatID: cfg.Classroom.TeacherChatID,
	}

	bot, err := telegram.NewBot(botConfig, botDeps)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. СОЗДАНИЕ HTTP SERVER (health, stats)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("postgres", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("redis", handlers.NewCacheCheck(redisCache))
	}

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpServer := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		Logger:        logger.Default(),
		HealthChecker: healthChecker,
		BotStats:      bot.GetStats,
		Workload:      store,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ЗАПУСК СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting services...")

	errCh := make(chan error, 2)

	if cfg.HTTP.Enabled {
		go func() {
			log.Info("starting HTTP server", "address", httpServer.Address())
			if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server error: %w", err)
			}
		}()
	}

	go func() {
		log.Info("starting Telegram bot")
		if err := bot.Start(ctx); err != nil {
			errCh <- fmt.Errorf("telegram bot error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("classroom bot is running",
		"http_address", httpServer.Address(),
		"teacher_id", cfg.Classroom.TeacherID,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	// Сначала бот: перестаём принимать обновления, дорабатываем текущие.
	log.Info("stopping Telegram bot...")
	if err := bot.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop bot gracefully", "error", err)
		shutdownErr = err
	}

	log.Info("stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// These adapt infrastructure implementations to domain interfaces.
// ══════════════════════════════════════════════════════════════════════════════

// resolveCacheInvalidator drops both read-side caches touched by a
// resolved grade: the group summary and the student row, whose topic
// the grading transaction clears behind the repository wrapper's back.
type resolveCacheInvalidator struct {
	summaries *redis.SummaryCache
	students  student.Cache
}

func (i *resolveCacheInvalidator) InvalidateGroup(ctx context.Context, group student.GroupCode) error {
	return i.summaries.InvalidateGroup(ctx, group)
}

func (i *resolveCacheInvalidator) InvalidateStudent(ctx context.Context, id student.TelegramID) error {
	return i.students.Invalidate(ctx, id)
}

// cachedStudentRepository wraps the Postgres repository with a
// read-through Redis cache for the hot GetByTelegramID path. Writes go
// to Postgres first, then invalidate the cache entry.
type cachedStudentRepository struct {
	repo  student.Repository
	cache student.Cache
}

func (r *cachedStudentRepository) Create(ctx context.Context, s *student.Student) error {
	if err := r.repo.Create(ctx, s); err != nil {
		return err
	}
	_ = r.cache.Invalidate(ctx, s.TelegramID)
	return nil
}

func (r *cachedStudentRepository) GetByTelegramID(ctx context.Context, telegramID student.TelegramID) (*student.Student, error) {
	if cached, err := r.cache.GetByTelegramID(ctx, telegramID); err == nil && cached != nil {
		return cached, nil
	}

	s, err := r.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	_ = r.cache.SetByTelegramID(ctx, s, redis.TTLStudentCache)
	return s, nil
}

func (r *cachedStudentRepository) SetCurrentTopic(ctx context.Context, telegramID student.TelegramID, topic *string) error {
	if err := r.repo.SetCurrentTopic(ctx, telegramID, topic); err != nil {
		return err
	}
	_ = r.cache.Invalidate(ctx, telegramID)
	return nil
}

func (r *cachedStudentRepository) ExistsByTelegramID(ctx context.Context, telegramID student.TelegramID) (bool, error) {
	return r.repo.ExistsByTelegramID(ctx, telegramID)
}

func (r *cachedStudentRepository) GetByGroup(ctx context.Context, group student.GroupCode) ([]*student.Student, error) {
	return r.repo.GetByGroup(ctx, group)
}
