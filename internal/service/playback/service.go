package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lessonplay/server/internal/client/lessonapi"
	"github.com/lessonplay/server/internal/domain"
	"github.com/lessonplay/server/internal/repository/playback"
	"github.com/lessonplay/server/pkg/drivemeta"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrNotVideoLesson  = errors.New("lesson has no video")
)

type iProber interface {
	FindWorkingEndpoint(ctx context.Context, fileID string) (domain.ResolvedEndpoint, error)
}

type iLessonAPI interface {
	GetLesson(ctx context.Context, token, courseID, lessonID string) (lessonapi.Lesson, error)
	GetProgress(ctx context.Context, token, courseID, lessonID string) (lessonapi.Progress, error)
	SaveProgress(ctx context.Context, token, courseID, lessonID string, positionMillis int64) error
	MarkCompleted(ctx context.Context, token, courseID, lessonID string) error
}

type iPositionCache interface {
	SetPosition(context.Context, *playback.SetPositionParams) error
	GetPosition(context.Context, *playback.GetPositionParams) (playback.Position, error)
	MarkCompleted(context.Context, *playback.MarkCompletedParams) error
	RemovePosition(context.Context, *playback.RemovePositionParams) error
}

type iDriveMeta interface {
	Get(ctx context.Context, fileID string) (*drivemeta.FileData, error)
}

type service struct {
	prober     iProber
	lessonAPI  iLessonAPI
	cache      iPositionCache
	driveMeta  iDriveMeta
	sessionCfg SessionConfig
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewService(prober iProber, lessonAPI iLessonAPI, cache iPositionCache, driveMeta iDriveMeta, sessionCfg SessionConfig, logger *slog.Logger) *service {
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		prober:     prober,
		lessonAPI:  lessonAPI,
		cache:      cache,
		driveMeta:  driveMeta,
		sessionCfg: sessionCfg,
		logger:     logger,
		sessions:   make(map[string]*Session),
	}
}

type ResolveParams struct {
	URL string
}

type ResolveResponse struct {
	URL      string
	Kind     string
	Verified bool
}

// Resolve turns a raw lesson video URL into a playable endpoint without
// starting a session.
func (s *service) Resolve(ctx context.Context, params *ResolveParams) (ResolveResponse, error) {
	endpoint, err := s.resolveEndpoint(ctx, params.URL)
	if err != nil {
		return ResolveResponse{}, err
	}

	return ResolveResponse{
		URL:      endpoint.URL,
		Kind:     endpoint.Kind.String(),
		Verified: endpoint.Verified,
	}, nil
}

type StartSessionParams struct {
	ClientID  string
	AuthToken string
	CourseID  string
	LessonID  string
	Player    Player
	Callbacks SessionCallbacks
}

type StartSessionResponse struct {
	Lesson           domain.Lesson
	Endpoint         domain.ResolvedEndpoint
	ResumePosition   int64
	AlreadyCompleted bool
}

// StartSession resolves the lesson, works out where playback should resume,
// and registers a session bound to the client's player. The caller starts
// playback with Session.Start once its transport is ready for commands.
func (s *service) StartSession(ctx context.Context, params *StartSessionParams) (StartSessionResponse, error) {
	s.mu.Lock()
	if _, ok := s.sessions[params.ClientID]; ok {
		s.mu.Unlock()
		return StartSessionResponse{}, ErrSessionExists
	}
	s.mu.Unlock()

	apiLesson, err := s.lessonAPI.GetLesson(ctx, params.AuthToken, params.CourseID, params.LessonID)
	if err != nil {
		return StartSessionResponse{}, fmt.Errorf("failed to get lesson: %w", err)
	}

	lesson := domain.Lesson{
		Type:        apiLesson.Type,
		Title:       apiLesson.Title,
		Description: apiLesson.Description,
		VideoURL:    apiLesson.VideoURL,
		PDFURL:      apiLesson.PDFURL,
	}

	if lesson.Type != domain.LessonTypeVideo || lesson.VideoURL == "" {
		return StartSessionResponse{}, ErrNotVideoLesson
	}

	endpoint, err := s.resolveEndpoint(ctx, lesson.VideoURL)
	if err != nil {
		return StartSessionResponse{}, err
	}

	if lesson.Title == "" {
		lesson.Title = s.lookupDriveTitle(ctx, lesson.VideoURL)
	}

	resumePosition, alreadyCompleted := s.resumePoint(ctx, params)

	session := NewSession(params.Player, &progressSink{
		service:  s,
		token:    params.AuthToken,
		courseID: params.CourseID,
		lessonID: params.LessonID,
		userID:   params.ClientID,
	}, s.sessionCfg, params.Callbacks, s.logger)

	s.mu.Lock()
	if _, ok := s.sessions[params.ClientID]; ok {
		s.mu.Unlock()
		return StartSessionResponse{}, ErrSessionExists
	}
	s.sessions[params.ClientID] = session
	s.mu.Unlock()

	return StartSessionResponse{
		Lesson:           lesson,
		Endpoint:         endpoint,
		ResumePosition:   resumePosition,
		AlreadyCompleted: alreadyCompleted,
	}, nil
}

// GetSession returns the active session for a client.
func (s *service) GetSession(clientID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[clientID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// EndSession tears the client's session down and forgets it.
func (s *service) EndSession(ctx context.Context, clientID string) error {
	s.mu.Lock()
	session, ok := s.sessions[clientID]
	delete(s.sessions, clientID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.Teardown(ctx)

	return nil
}

func (s *service) resolveEndpoint(ctx context.Context, rawURL string) (domain.ResolvedEndpoint, error) {
	source, err := domain.NewVideoSource(rawURL)
	if err != nil {
		return domain.ResolvedEndpoint{}, fmt.Errorf("failed to parse video url: %w", err)
	}

	if !source.IsExternalDriveLink {
		return domain.NewDirectEndpoint(source.RawURL), nil
	}

	endpoint, err := s.prober.FindWorkingEndpoint(ctx, source.FileID)
	if err != nil {
		return domain.ResolvedEndpoint{}, fmt.Errorf("failed to find working endpoint: %w", err)
	}

	return endpoint, nil
}

// resumePoint prefers the backend progress record and falls back to the
// position cache. Completed lessons always restart from zero.
func (s *service) resumePoint(ctx context.Context, params *StartSessionParams) (int64, bool) {
	progress, err := s.lessonAPI.GetProgress(ctx, params.AuthToken, params.CourseID, params.LessonID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to get progress, falling back to cache", "error", err)
	}

	positionMillis := progress.PositionMillis
	completed := progress.Completed

	if err != nil || positionMillis == 0 {
		cached, cacheErr := s.cache.GetPosition(ctx, &playback.GetPositionParams{
			UserID:   params.ClientID,
			LessonID: params.LessonID,
		})
		if cacheErr == nil {
			if cached.PositionMillis > positionMillis {
				positionMillis = cached.PositionMillis
			}
			completed = completed || cached.Completed
		} else if !errors.Is(cacheErr, playback.ErrPositionNotFound) {
			s.logger.WarnContext(ctx, "failed to get cached position", "error", cacheErr)
		}
	}

	if completed {
		return 0, true
	}

	return positionMillis, false
}

func (s *service) lookupDriveTitle(ctx context.Context, rawURL string) string {
	if s.driveMeta == nil {
		return ""
	}

	source, err := domain.NewVideoSource(rawURL)
	if err != nil || !source.IsExternalDriveLink {
		return ""
	}

	fileData, err := s.driveMeta.Get(ctx, source.FileID)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to get drive title", "error", err)
		return ""
	}

	return fileData.Title
}

// progressSink fans progress updates out to the backend API and the
// position cache.
type progressSink struct {
	service  *service
	token    string
	courseID string
	lessonID string
	userID   string
}

func (p *progressSink) SaveProgress(ctx context.Context, positionMillis int64) error {
	if err := p.service.cache.SetPosition(ctx, &playback.SetPositionParams{
		UserID:         p.userID,
		LessonID:       p.lessonID,
		PositionMillis: positionMillis,
		UpdatedAt:      time.Now().Unix(),
	}); err != nil {
		p.service.logger.WarnContext(ctx, "failed to cache position", "error", err)
	}

	if err := p.service.lessonAPI.SaveProgress(ctx, p.token, p.courseID, p.lessonID, positionMillis); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return nil
}

func (p *progressSink) MarkCompleted(ctx context.Context) error {
	if err := p.service.cache.MarkCompleted(ctx, &playback.MarkCompletedParams{
		UserID:    p.userID,
		LessonID:  p.lessonID,
		UpdatedAt: time.Now().Unix(),
	}); err != nil {
		p.service.logger.WarnContext(ctx, "failed to cache completion", "error", err)
	}

	if err := p.service.lessonAPI.MarkCompleted(ctx, p.token, p.courseID, p.lessonID); err != nil {
		return fmt.Errorf("failed to mark completed: %w", err)
	}

	return nil
}
