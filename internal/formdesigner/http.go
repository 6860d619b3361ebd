// Пакет formdesigner - HTTP-сервис конструктора форм. Формы описываются через административное API,
// показываются на публичных страницах, отправки проверяются, сохраняются и рассылаются по почте.
//
// Основные возможности:
//   - Публичные страницы форм и JSON API для встраивания.
//   - Административное API описаний форм и сохраненных отправок.
//   - Метрики Prometheus и фоновая очистка старых отправок по расписанию.
package formdesigner

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/business"
	"github.com/aisa-it/formdesigner/internal/formdesigner/config"
	"github.com/aisa-it/formdesigner/internal/formdesigner/cronmanager"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/forms"
	"github.com/aisa-it/formdesigner/internal/formdesigner/maintenance"
	"github.com/aisa-it/formdesigner/internal/formdesigner/notifications"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

//go:generate go run ../../cmd/docsgen/main.go -src apierrors/apierrors.go -out ../../api_errors.md

const shutdownTimeout = 10 * time.Second

type Services struct {
	db           *gorm.DB
	cfg          *config.Config
	materializer *forms.Materializer
	processor    *business.Processor
	renderer     *pageRenderer
	registry     *prometheus.Registry
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "FormDesigner")
		return next(c)
	}
}

// NewServices собирает зависимости обработчиков. Метрики регистрируются в собственном реестре сервиса.
func NewServices(db *gorm.DB, cfg *config.Config, mailer notifications.Mailer) *Services {
	sources := make(map[string]forms.ChoiceSource, len(cfg.ChoiceModels))
	for name, src := range dao.NewTableChoiceSources(db, cfg.ChoiceModels) {
		sources[name] = src
	}
	materializer := forms.NewMaterializer(forms.Config{
		SubmitFlagFormat: cfg.SubmitFlagFormat,
		ChoiceSources:    sources,
		FormTemplates:    cfg.FormTemplates,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Services{
		db:           db,
		cfg:          cfg,
		materializer: materializer,
		processor:    business.NewProcessor(db, materializer, mailer, reg),
		renderer:     &pageRenderer{db: db, defaultTemplate: cfg.DefaultFormTemplate},
		registry:     reg,
	}
}

// Echo создает HTTP-сервер со всеми маршрутами сервиса.
func (s *Services) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		if code == http.StatusMethodNotAllowed {
			EErrorMsgStatus(c, errors.New(http.StatusText(code)), code)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	e.Use(ServerHeader)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("2M"))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     5,
		MinLength: 2048,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "formdesigner",
		Subsystem:                 "http",
		Registerer:                s.registry,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/metrics")
		},
	}))

	e.Validator = NewRequestValidator()

	s.AddFormServices(e)

	apiGroup := e.Group("/api/")
	if s.cfg.AdminToken != "" {
		s.AddAdminServices(apiGroup.Group("admin/", AdminAuthMiddleware(s.cfg.AdminToken)))
	} else {
		slog.Warn("ADMIN_TOKEN is empty, admin API disabled")
	}

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.registry}))
	return e
}

// jobRegistry возвращает фоновые задачи, включенные в конфигурации.
func (s *Services) jobRegistry() cronmanager.JobRegistry {
	jobs := cronmanager.JobRegistry{}
	if s.cfg.SubmissionsRetentionDays > 0 {
		jobs["submissions_clean"] = cronmanager.Job{
			Func:     maintenance.NewSubmissionsCleaner(s.db, s.cfg.SubmissionsRetentionDays).CleanSubmissions,
			Schedule: "0 3 * * *", // daily at 03:00
		}
	}
	return jobs
}

// Server запускает HTTP-сервер и фоновые задачи и работает до сигнала завершения.
func Server(db *gorm.DB, cfg *config.Config, version string) error {
	s := NewServices(db, cfg, notifications.NewEmailService(cfg))

	bootTimeGauge := promauto.With(s.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "formdesigner",
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))

	cronManager := cronmanager.NewCronManager(s.jobRegistry())
	if err := cronManager.LoadJobs(); err != nil {
		return err
	}
	cronManager.Start()
	defer cronManager.Stop()

	e := s.Echo()
	e.GET("/api/version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": version,
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Start HTTP server", "addr", cfg.ListenAddr, "version", version)
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
