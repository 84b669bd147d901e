package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/evaluation"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/profile"
	"github.com/spigell/interview-coach/internal/prompts"
	"github.com/spigell/interview-coach/internal/questions"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/store"
)

// ErrAlreadyEvaluated is returned when answers are submitted twice for one session.
var ErrAlreadyEvaluated = store.ErrAlreadyEvaluated

// Store is the persistence the service needs.
type Store interface {
	SaveSession(ctx context.Context, session *interview.Session) error
	Session(ctx context.Context, id string) (*interview.Session, error)
	Sessions(ctx context.Context) ([]*interview.Session, error)
	SaveEvaluation(ctx context.Context, session *interview.Session) error
	SaveResume(ctx context.Context, resume *interview.Resume) error
	Resume(ctx context.Context, id string) (*interview.Resume, error)
	UpdateProfile(ctx context.Context, resumeID string, profile *interview.Profile) error
}

// StartRequest describes a new interview. ResumeID is required for the cv
// mode, Data for every other mode.
type StartRequest struct {
	Mode     interview.Mode
	Data     string
	ResumeID string
}

// Result is the outcome of a submitted interview.
type Result struct {
	Session   *interview.Session
	Aggregate float64
}

// Summary is a history entry.
type Summary struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Mode               interview.Mode `json:"mode"`
	CreatedAt          time.Time      `json:"created_at"`
	Completed          bool           `json:"completed"`
	AverageScore       float64        `json:"average_score"`
	ProgressPercentage float64        `json:"progress_percentage"`
}

// Service runs interview simulations end to end.
type Service struct {
	store     Store
	questions *questions.Generator
	fuser     *evaluation.Fuser
	profiles  *profile.Extractor
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(st Store, generator *questions.Generator, fuser *evaluation.Fuser, extractor *profile.Extractor, log *zap.Logger) *Service {
	return &Service{
		store:     st,
		questions: generator,
		fuser:     fuser,
		profiles:  extractor,
		logger:    logger.OrNop(log),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// UploadResume stores the text of the résumé at path and tries to attach a
// structured profile. Extraction failures leave the résumé without a profile.
func (s *Service) UploadResume(ctx context.Context, path string) (*interview.Resume, error) {
	text, err := resume.ReadText(path, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interview.ErrInvalidInput, err)
	}

	r := &interview.Resume{
		ID:         s.newID(),
		FileName:   filepath.Base(path),
		Text:       text,
		UploadedAt: s.now(),
	}
	if err := s.store.SaveResume(ctx, r); err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("resume_id", r.ID))
	log.Info("resume stored", zap.String("file", r.FileName), zap.Int("length", len(text)))

	p := s.profiles.Extract(ctx, text)
	if p == nil {
		return r, nil
	}
	if err := s.store.UpdateProfile(ctx, r.ID, p); err != nil {
		log.Warn("failed to store extracted profile", zap.Error(err))
		return r, nil
	}
	r.Profile = p

	return r, nil
}

// Start generates the questions for a new interview and persists the session.
func (s *Service) Start(ctx context.Context, req StartRequest) (*interview.Session, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown interview mode %q", interview.ErrInvalidInput, req.Mode)
	}

	data, contextData, err := s.contextFor(ctx, req)
	if err != nil {
		return nil, err
	}

	generated, err := s.questions.Generate(ctx, prompts.Context(req.Mode, data), req.Mode)
	if err != nil {
		return nil, err
	}

	session, err := interview.NewSession(s.newID(), req.Mode, contextData, generated, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	logger.WithFields(s.logger, logger.SessionFields(session.ID, session.Mode.String())...).
		Info("interview started", zap.Int("questions", len(session.Questions)))
	return session, nil
}

// contextFor returns the text the questions are based on and the value kept
// as the session context data.
func (s *Service) contextFor(ctx context.Context, req StartRequest) (string, string, error) {
	if req.Mode != interview.ModeCV {
		data := strings.TrimSpace(req.Data)
		if data == "" {
			return "", "", fmt.Errorf("%w: %s interview requires context data", interview.ErrInvalidInput, req.Mode)
		}
		return data, data, nil
	}

	if strings.TrimSpace(req.ResumeID) == "" {
		return "", "", fmt.Errorf("%w: cv interview requires a resume id", interview.ErrInvalidInput)
	}
	r, err := s.store.Resume(ctx, req.ResumeID)
	if err != nil {
		return "", "", err
	}

	text := r.Text
	if !r.Profile.Empty() {
		if encoded, err := json.Marshal(r.Profile); err == nil {
			text = string(encoded)
		}
	}
	return text, r.FileName, nil
}

// Submit evaluates the answers of a pending session. The session is stored
// only once the whole evaluation succeeded.
func (s *Service) Submit(ctx context.Context, sessionID string, answers []string) (*Result, error) {
	session, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrAlreadyEvaluated)
	}

	log := logger.WithFields(s.logger, logger.SessionFields(session.ID, session.Mode.String())...)

	batch := session.Batch(answers)
	eval, err := s.fuser.Evaluate(ctx, batch, session.Mode)
	if err != nil {
		log.Error("evaluation failed", zap.Error(err))
		return nil, err
	}

	if err := session.ApplyEvaluation(batch, eval, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.SaveEvaluation(ctx, session); err != nil {
		return nil, err
	}

	aggregate := session.AggregateScore()
	log.Info("interview evaluated", zap.Float64("aggregate", aggregate))
	return &Result{Session: session, Aggregate: aggregate}, nil
}

// History lists every session, newest first.
func (s *Service) History(ctx context.Context) ([]Summary, error) {
	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(sessions))
	for _, session := range sessions {
		avg := session.AggregateScore()
		summaries = append(summaries, Summary{
			ID:                 session.ID,
			Title:              session.Title(),
			Mode:               session.Mode,
			CreatedAt:          session.CreatedAt,
			Completed:          session.Completed(),
			AverageScore:       avg,
			ProgressPercentage: math.Round(avg * 10),
		})
	}
	return summaries, nil
}

// Session returns the full detail of one session.
func (s *Service) Session(ctx context.Context, id string) (*interview.Session, error) {
	return s.store.Session(ctx, id)
}

// IsNotFound reports whether err means an unknown session or résumé.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
