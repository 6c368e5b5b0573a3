package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lessonplay/server/internal/service/playback"
	"github.com/lessonplay/server/pkg/randstr"
	"github.com/lessonplay/server/pkg/validator"
	"github.com/lessonplay/server/pkg/wsrouter"
)

type iPlaybackService interface {
	Resolve(context.Context, *playback.ResolveParams) (playback.ResolveResponse, error)
	StartSession(context.Context, *playback.StartSessionParams) (playback.StartSessionResponse, error)
	GetSession(clientID string) (*playback.Session, error)
	EndSession(ctx context.Context, clientID string) error
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	WatermarkInterval time.Duration
}

type controller struct {
	playbackService iPlaybackService
	upgrader        websocket.Upgrader
	generator       iGenerator
	validate        *validator.Validator
	wsmux           *wsrouter.WSRouter
	logger          *slog.Logger
	cfg             Config
}

func NewController(playbackService iPlaybackService, cfg Config, logger *slog.Logger) *controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		playbackService: playbackService,
		generator:       randstr.New([]byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")),
		validate:        validator.NewValidator(),
		logger:          logger,
		cfg:             cfg,
	}
	c.wsmux = c.getWSRouter()

	return c
}
