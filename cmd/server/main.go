package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lessonplay/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	lessonAPIURL = configVar[string]{
		envKey:       "SERVER_LESSON_API_URL",
		flagKey:      "lesson-api-url",
		defaultValue: "",
	}
	probeTimeout = configVar[time.Duration]{
		envKey:       "SERVER_PROBE_TIMEOUT",
		flagKey:      "probe-timeout",
		defaultValue: 5 * time.Second,
	}
	retryMaxAttempts = configVar[int]{
		envKey:       "SERVER_RETRY_MAX_ATTEMPTS",
		flagKey:      "retry-max-attempts",
		defaultValue: 5,
	}
	resetMaxAttempts = configVar[int]{
		envKey:       "SERVER_RESET_MAX_ATTEMPTS",
		flagKey:      "reset-max-attempts",
		defaultValue: 3,
	}
	progressInterval = configVar[time.Duration]{
		envKey:       "SERVER_PROGRESS_INTERVAL",
		flagKey:      "progress-interval",
		defaultValue: 30 * time.Second,
	}
	watermarkInterval = configVar[time.Duration]{
		envKey:       "SERVER_WATERMARK_INTERVAL",
		flagKey:      "watermark-interval",
		defaultValue: 1100 * time.Millisecond,
	}
	positionCacheTTL = configVar[time.Duration]{
		envKey:       "SERVER_POSITION_CACHE_TTL",
		flagKey:      "position-cache-ttl",
		defaultValue: 14 * 24 * time.Hour,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(lessonAPIURL.flagKey, lessonAPIURL.defaultValue, "Base URL of the course backend API")
	pflag.Duration(probeTimeout.flagKey, probeTimeout.defaultValue, "Timeout for probing a single playback endpoint")
	pflag.Int(retryMaxAttempts.flagKey, retryMaxAttempts.defaultValue, "Maximum automatic reloads after a playback error")
	pflag.Int(resetMaxAttempts.flagKey, resetMaxAttempts.defaultValue, "Maximum recoveries from position resets per session")
	pflag.Duration(progressInterval.flagKey, progressInterval.defaultValue, "Interval between periodic progress saves")
	pflag.Duration(watermarkInterval.flagKey, watermarkInterval.defaultValue, "Interval between watermark moves")
	pflag.Duration(positionCacheTTL.flagKey, positionCacheTTL.defaultValue, "Retention of cached playback positions")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(lessonAPIURL.flagKey, lessonAPIURL.envKey)
	viper.BindEnv(probeTimeout.flagKey, probeTimeout.envKey)
	viper.BindEnv(retryMaxAttempts.flagKey, retryMaxAttempts.envKey)
	viper.BindEnv(resetMaxAttempts.flagKey, resetMaxAttempts.envKey)
	viper.BindEnv(progressInterval.flagKey, progressInterval.envKey)
	viper.BindEnv(watermarkInterval.flagKey, watermarkInterval.envKey)
	viper.BindEnv(positionCacheTTL.flagKey, positionCacheTTL.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(lessonAPIURL.flagKey, lessonAPIURL.defaultValue)
	viper.SetDefault(probeTimeout.flagKey, probeTimeout.defaultValue)
	viper.SetDefault(retryMaxAttempts.flagKey, retryMaxAttempts.defaultValue)
	viper.SetDefault(resetMaxAttempts.flagKey, resetMaxAttempts.defaultValue)
	viper.SetDefault(progressInterval.flagKey, progressInterval.defaultValue)
	viper.SetDefault(watermarkInterval.flagKey, watermarkInterval.defaultValue)
	viper.SetDefault(positionCacheTTL.flagKey, positionCacheTTL.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		LessonAPIURL:      viper.GetString(lessonAPIURL.flagKey),
		ProbeTimeout:      viper.GetDuration(probeTimeout.flagKey),
		RetryMaxAttempts:  viper.GetInt(retryMaxAttempts.flagKey),
		ResetMaxAttempts:  viper.GetInt(resetMaxAttempts.flagKey),
		ProgressInterval:  viper.GetDuration(progressInterval.flagKey),
		WatermarkInterval: viper.GetDuration(watermarkInterval.flagKey),
		PositionCacheTTL:  viper.GetDuration(positionCacheTTL.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
