package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"smart_quiz_portal/internal/config"
	"smart_quiz_portal/internal/controller"
	"smart_quiz_portal/internal/middleware"
	"smart_quiz_portal/internal/repository"
	"smart_quiz_portal/internal/service"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/configwatcher"
	"smart_quiz_portal/pkg/database"
	"smart_quiz_portal/pkg/logger"
	"smart_quiz_portal/pkg/monitoring"
	"smart_quiz_portal/pkg/security"
	"smart_quiz_portal/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	limiter         *security.RateLimiter
	memSessions     *repository.MemorySessionRepository
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	class   *repository.ClassRepository
	quiz    *repository.QuizRepository
	result  *repository.ResultRepository
	session service.SessionStore
}

type services struct {
	session *service.SessionService
	auth    *service.AuthService
	user    *service.UserService
	class   *service.ClassService
	quiz    *service.QuizService
	scoring *service.ScoringService
	report  *service.ReportService
	storage *service.StorageService
	// 可热更新的评分参数
	settings *service.ScoringSettings
}

type controllers struct {
	auth   *controller.AuthController
	user   *controller.UserController
	class  *controller.ClassController
	quiz   *controller.QuizController
	report *controller.ReportController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		user:   repository.NewUserRepository(db),
		class:  repository.NewClassRepository(db),
		quiz:   repository.NewQuizRepository(db),
		result: repository.NewResultRepository(db),
	}
	if rdb != nil {
		repos.session = repository.NewRedisSessionRepository(rdb)
	} else {
		a.memSessions = repository.NewMemorySessionRepository(time.Minute)
		repos.session = a.memSessions
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.settings = service.NewScoringSettings(cfg.Scoring)
	s.storage = service.NewStorageService(&cfg.Storage)
	s.session = service.NewSessionService(repos.session, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	s.auth = service.NewAuthService(repos.user, s.session)
	s.user = service.NewUserService(repos.user)
	s.class = service.NewClassService(repos.class)
	s.quiz = service.NewQuizService(repos.quiz, repos.class)
	s.scoring = service.NewScoringService(repos.quiz, repos.class, repos.result, s.settings)
	s.report = service.NewReportService(repos.result, repos.class, repos.quiz, repos.user, s.settings, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth, a.Config.Session.CookieName, a.Config.Server.Mode == gin.ReleaseMode),
		user:   controller.NewUserController(s.user),
		class:  controller.NewClassController(s.class),
		quiz:   controller.NewQuizController(s.quiz, s.scoring),
		report: controller.NewReportController(s.report),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// mountReportDownloads 按实际生效的存储后端决定是否提供 /uploads 下载
func mountReportDownloads(router *gin.Engine, storage *service.StorageService) {
	if root, ok := storage.LocalRoot(); ok {
		router.Static("/uploads", root)
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)
	if err := util.RegisterValidators(); err != nil {
		logger.Log.Fatal("Failed to register validators", zap.Error(err))
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var rdb *redis.Client
	if cfg.Session.Store == "redis" {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			log.Fatalf("Failed to initialize redis: %v", err)
		}
	}

	app := &App{
		Config:    cfg,
		ConfigDir: "configs",
		DB:        db,
		Redis:     rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services

	// debug 模式或指定 -migrate 时执行迁移
	if cfg.Server.Mode == gin.DebugMode || cfg.ForceMigrate {
		if err := database.Migrate(db, cfg.Scoring); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		if err := services.auth.EnsureAdmin(context.Background(), cfg.Admin); err != nil {
			logger.Log.Fatal("Failed to seed admin account", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return app
	}

	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("smart-quiz-portal", cfg.Tracing.CollectorEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.setupMiddlewares(router, cfg)

	guard := middleware.NewGuard(services.session, cfg.Session.CookieName)
	app.registerRoutes(router, controllers, guard)

	mountReportDownloads(router, services.storage)

	app.RegisterConfigCallback(services.settings.ApplyConfig)
	app.RegisterConfigCallback(func(c *config.Config) {
		app.limiter.Update(c.RateLimit.MaxRequests, time.Duration(c.RateLimit.WindowMinutes)*time.Minute)
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	go func() {
		path := filepath.Join(a.ConfigDir, "config.yaml")
		if err := configwatcher.WatchConfig(watchCtx, path, a.applyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	stopWatch()
	a.limiter.Stop()
	if a.memSessions != nil {
		a.memSessions.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
