package app

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"docuchat/internal/model"
)

// FallbackErrorAnswer is appended as the assistant message whenever the
// question-answering call fails; the underlying error is only logged.
const FallbackErrorAnswer = "Sorry, there was an error processing your question. Please try again."

// AnswerClient is the outbound edge of one send cycle.
type AnswerClient interface {
	Ask(ctx context.Context, doc *model.Document, question string) (string, error)
}

type inflight struct {
	cancel context.CancelFunc
}

// AskService runs the send cycle: user message in, pending marker up, backend
// call, pending marker down, exactly one assistant message out. A session
// never has more than one in-flight request; a new send cancels the previous
// one.
type AskService struct {
	docs     *DocumentService
	sessions *SessionService
	settings *SettingsService
	client   AnswerClient
	answers  *gocache.Cache
	timeout  time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]*inflight // session id -> in-flight request
}

func NewAskService(
	docs *DocumentService,
	sessions *SessionService,
	settings *SettingsService,
	client AnswerClient,
	timeout time.Duration,
	answerTTL time.Duration,
	log *zap.Logger,
) *AskService {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if answerTTL <= 0 {
		answerTTL = 5 * time.Minute
	}
	return &AskService{
		docs:     docs,
		sessions: sessions,
		settings: settings,
		client:   client,
		answers:  gocache.New(answerTTL, 2*answerTTL),
		timeout:  timeout,
		log:      log,
		pending:  make(map[string]*inflight),
	}
}

type AskResult struct {
	Session          *model.ChatSession `json:"session"`
	UserMessage      model.ChatMessage  `json:"user_message"`
	AssistantMessage model.ChatMessage  `json:"assistant_message"`
	Answered         bool               `json:"answered"`
}

// Ask performs one full send cycle against the currently selected document
// and session; a session is created lazily when none is current. Both the
// success and the failure path append exactly one assistant message and leave
// the service ready for the next question.
func (s *AskService) Ask(ctx context.Context, question string) (*AskResult, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, ErrQuestionEmpty
	}
	doc, ok := s.docs.Current()
	if !ok {
		return nil, ErrNoDocumentSelected
	}

	session, ok := s.sessions.Current()
	if !ok {
		created, err := s.sessions.Create(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		session = created
	}

	userMsg, err := s.sessions.AddMessage(ctx, session.ID, q, model.MessageTypeUser)
	if err != nil {
		return nil, err
	}

	askCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	fl := s.beginAsk(session.ID, cancel)

	answer, askErr := s.lookupOrAsk(askCtx, doc, q)

	// The pending marker comes down before the outcome is appended, on both
	// paths.
	s.endAsk(session.ID, fl)

	answered := askErr == nil
	if askErr != nil {
		s.log.Warn("qa request failed",
			zap.String("session_id", session.ID),
			zap.String("document_id", doc.ID),
			zap.Error(askErr))
		answer = FallbackErrorAnswer
	}

	assistantMsg, err := s.sessions.AddMessage(ctx, session.ID, answer, model.MessageTypeAssistant)
	if err != nil {
		return nil, err
	}

	if answered {
		s.settings.IncrementQueryCount(ctx)
	}

	// Sessions come out of the store as snapshots; re-read so the result
	// carries both messages appended above.
	if updated, ok := s.sessions.Get(session.ID); ok {
		session = updated
	}

	return &AskResult{
		Session:          session,
		UserMessage:      *userMsg,
		AssistantMessage: *assistantMsg,
		Answered:         answered,
	}, nil
}

// Pending reports whether the session has a request in flight; the render
// layer shows the typing indicator from this.
func (s *AskService) Pending(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[sessionID]
	return ok
}

func (s *AskService) beginAsk(sessionID string, cancel context.CancelFunc) *inflight {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.pending[sessionID]; ok {
		prev.cancel()
	}
	fl := &inflight{cancel: cancel}
	s.pending[sessionID] = fl
	return fl
}

func (s *AskService) endAsk(sessionID string, fl *inflight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[sessionID] == fl {
		delete(s.pending, sessionID)
	}
}

func (s *AskService) lookupOrAsk(ctx context.Context, doc *model.Document, question string) (string, error) {
	key := doc.ID + "|" + question
	if cached, ok := s.answers.Get(key); ok {
		return cached.(string), nil
	}
	answer, err := s.client.Ask(ctx, doc, question)
	if err != nil {
		return "", err
	}
	s.answers.Set(key, answer, gocache.DefaultExpiration)
	return answer, nil
}
