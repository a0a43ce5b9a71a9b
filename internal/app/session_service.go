package app

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"docuchat/internal/model"
	"docuchat/internal/store"
)

const (
	sessionsKey   = "chatSessions"
	defaultTitle  = "New Chat"
	maxTitleRunes = 50
)

// SessionService is the chat session store. Sessions live in memory and the
// whole map is mirrored to the persistent store after every mutation;
// persistence failures are logged and swallowed so the UI stays usable
// without durability.
//
// Every session leaving the service is a deep copy: handlers marshal and
// render sessions concurrently with AddMessage, so no live pointer may
// escape the lock.
type SessionService struct {
	st      store.Store
	persist Persister
	log     *zap.Logger
	now     func() time.Time

	mu        sync.RWMutex
	sessions  map[string]*model.ChatSession
	order     []string
	currentID string
}

func NewSessionService(st store.Store, persist Persister, log *zap.Logger) *SessionService {
	s := &SessionService{
		st:       st,
		persist:  persist,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*model.ChatSession),
	}
	s.rehydrate(context.Background())
	return s
}

// rehydrate loads the stored session map. An absent or corrupt value starts
// the store empty; it never fails.
func (s *SessionService) rehydrate(ctx context.Context) {
	raw, err := s.st.Get(ctx, sessionsKey)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.log.Warn("load chat sessions failed", zap.Error(err))
		}
		return
	}

	var entries []model.SessionEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.log.Warn("stored chat sessions corrupt, starting empty", zap.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.ID == "" || entry.Session == nil {
			continue
		}
		if _, dup := s.sessions[entry.ID]; dup {
			continue
		}
		s.sessions[entry.ID] = entry.Session
		s.order = append(s.order, entry.ID)
	}
}

// Create starts a new session bound to documentID and makes it current.
// Creation is refused without a selected document.
func (s *SessionService) Create(ctx context.Context, documentID string) (*model.ChatSession, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, ErrNoDocumentSelected
	}

	session := &model.ChatSession{
		ID:         model.NewID(),
		Title:      defaultTitle,
		Messages:   []model.ChatMessage{},
		CreatedAt:  s.now(),
		DocumentID: documentID,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.order = append(s.order, session.ID)
	s.currentID = session.ID
	s.persistLocked(ctx)
	out := cloneSession(session)
	s.mu.Unlock()

	return out, nil
}

// AddMessage appends to the session's message list. The session title is
// rewritten exactly once: when the first message arrives and it is
// user-authored.
func (s *SessionService) AddMessage(ctx context.Context, sessionID, text string, typ model.MessageType) (*model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	msg := model.ChatMessage{
		ID:        model.NewID(),
		Text:      text,
		Type:      typ,
		Timestamp: s.now(),
	}
	session.Messages = append(session.Messages, msg)

	if len(session.Messages) == 1 && typ == model.MessageTypeUser {
		session.Title = truncateTitle(text)
	}

	s.persistLocked(ctx)
	return &msg, nil
}

// Select sets the current session pointer without validating the id.
func (s *SessionService) Select(id string) {
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
}

func (s *SessionService) Get(id string) (*model.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return cloneSession(session), true
}

func (s *SessionService) Current() (*model.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentID == "" {
		return nil, false
	}
	session, ok := s.sessions[s.currentID]
	if !ok {
		return nil, false
	}
	return cloneSession(session), true
}

func (s *SessionService) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// List returns sessions sorted by creation time descending; sessions created
// in the same instant keep their creation order.
func (s *SessionService) List() []*model.ChatSession {
	s.mu.RLock()
	out := make([]*model.ChatSession, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneSession(s.sessions[id]))
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Persist writes the current session map out immediately. Mutations already
// persist themselves; this exists for shutdown flushes.
func (s *SessionService) Persist(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.persistLocked(ctx)
}

// persistLocked serializes every session as [id, session] pairs in insertion
// order. Caller holds the lock. Last writer wins; failures are non-fatal.
func (s *SessionService) persistLocked(ctx context.Context) {
	entries := make([]model.SessionEntry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, model.SessionEntry{ID: id, Session: s.sessions[id]})
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		s.log.Warn("marshal chat sessions failed", zap.Error(err))
		return
	}
	if err := s.persist.Set(ctx, sessionsKey, payload); err != nil {
		s.log.Warn("persist chat sessions failed", zap.Error(err))
	}
}

func cloneSession(session *model.ChatSession) *model.ChatSession {
	out := *session
	out.Messages = append([]model.ChatMessage(nil), session.Messages...)
	return &out
}

func truncateTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTitleRunes {
		return text
	}
	return string(runes[:maxTitleRunes]) + "..."
}
