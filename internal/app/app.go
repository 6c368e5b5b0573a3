package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lessonplay/server/internal/client/lessonapi"
	"github.com/lessonplay/server/internal/controller"
	"github.com/lessonplay/server/internal/prober"
	playbackRedis "github.com/lessonplay/server/internal/repository/playback/redis"
	"github.com/lessonplay/server/internal/service/playback"
	"github.com/lessonplay/server/pkg/ctxlogger"
	"github.com/lessonplay/server/pkg/drivemeta"
	"github.com/lessonplay/server/pkg/redisclient"
)

type AppConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`

	LessonAPIURL string `json:"lesson_api_url"`

	ProbeTimeout      time.Duration `json:"probe_timeout"`
	RetryMaxAttempts  int           `json:"retry_max_attempts"`
	ResetMaxAttempts  int           `json:"reset_max_attempts"`
	ProgressInterval  time.Duration `json:"progress_interval"`
	WatermarkInterval time.Duration `json:"watermark_interval"`
	PositionCacheTTL  time.Duration `json:"position_cache_ttl"`

	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisPassword string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.LessonAPIURL == "" {
		return fmt.Errorf("lesson api url must be set")
	}
	if cfg.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be greater than 0")
	}
	if cfg.ResetMaxAttempts < 1 {
		return fmt.Errorf("reset max attempts must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	positionCache := playbackRedis.NewRepo(rc, cfg.PositionCacheTTL)
	lessonAPI := lessonapi.NewClient(cfg.LessonAPIURL)
	endpointProber := prober.New(http.DefaultTransport, &prober.Config{
		ProbeTimeout: cfg.ProbeTimeout,
	}, logger)

	sessionCfg := playback.DefaultSessionConfig()
	sessionCfg.Retry.MaxAttempts = cfg.RetryMaxAttempts
	sessionCfg.ResetMaxAttempts = cfg.ResetMaxAttempts
	if cfg.ProgressInterval > 0 {
		sessionCfg.ProgressInterval = cfg.ProgressInterval
	}

	playbackService := playback.NewService(endpointProber, lessonAPI, positionCache, drivemeta.NewClient(), sessionCfg, logger)
	controller := controller.NewController(playbackService, controller.Config{
		WatermarkInterval: cfg.WatermarkInterval,
	}, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
