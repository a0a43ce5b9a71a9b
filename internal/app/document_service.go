package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"docuchat/internal/model"
	"docuchat/internal/pkg/pdfcheck"
	"docuchat/internal/store"
)

const (
	defaultMaxDocumentSize = 50 << 20 // 50 MB
	uploadJournalKey       = "uploadedDocuments"
)

// DocumentService is the document registry: an in-memory catalog of uploaded
// files available for questioning. Content never touches the persistent
// store; only the uploadedDocuments metadata journal survives a restart.
type DocumentService struct {
	st      store.Store
	persist Persister
	log     *zap.Logger
	maxSize int64

	mu        sync.RWMutex
	docs      map[string]*model.Document
	order     []string
	currentID string
}

func NewDocumentService(st store.Store, persist Persister, log *zap.Logger) *DocumentService {
	return &DocumentService{
		st:      st,
		persist: persist,
		log:     log,
		maxSize: defaultMaxDocumentSize,
		docs:    make(map[string]*model.Document),
	}
}

type AddDocumentInput struct {
	Name    string
	Content []byte
}

// Add validates the upload, registers the document, and makes it current.
func (s *DocumentService) Add(ctx context.Context, input AddDocumentInput) (*model.Document, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(input.Content) == 0 {
		return nil, ErrInvalidInput
	}
	if int64(len(input.Content)) > s.maxSize {
		return nil, ErrDocumentTooLarge
	}
	if !pdfcheck.IsPDF(input.Content) {
		return nil, ErrNotPDF
	}

	doc := &model.Document{
		ID:      model.NewID(),
		Name:    name,
		Size:    int64(len(input.Content)),
		Content: input.Content,
		AddedAt: time.Now(),
	}

	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	s.currentID = doc.ID
	s.mu.Unlock()

	if pages, err := pdfcheck.PageCount(doc.Content); err == nil {
		s.log.Info("document added",
			zap.String("document_id", doc.ID),
			zap.String("name", doc.Name),
			zap.Int64("size", doc.Size),
			zap.Int("pages", pages))
	} else {
		s.log.Info("document added",
			zap.String("document_id", doc.ID),
			zap.String("name", doc.Name),
			zap.Int64("size", doc.Size))
	}

	s.appendUploadJournal(ctx, doc)
	return doc, nil
}

// Remove deletes the document; removing the current one clears the current
// pointer. Unknown ids are a no-op.
func (s *DocumentService) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return
	}
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.currentID == id {
		s.currentID = ""
	}
}

// Select sets the current pointer without validating the id; callers are
// expected to pass ids obtained from List.
func (s *DocumentService) Select(id string) {
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
}

func (s *DocumentService) Get(id string) (*model.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Current returns the selected document, if the pointer refers to one.
func (s *DocumentService) Current() (*model.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentID == "" {
		return nil, false
	}
	doc, ok := s.docs[s.currentID]
	return doc, ok
}

func (s *DocumentService) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// List returns documents in upload order.
func (s *DocumentService) List() []*model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	return out
}

func (s *DocumentService) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs) == 0
}

// appendUploadJournal records {name, date} under uploadedDocuments. A corrupt
// journal is replaced, and persistence failures are swallowed with a warning:
// the upload itself already succeeded.
func (s *DocumentService) appendUploadJournal(ctx context.Context, doc *model.Document) {
	var journal []model.DocumentUpload
	raw, err := s.st.Get(ctx, uploadJournalKey)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &journal); err != nil {
			s.log.Warn("upload journal corrupt, starting over", zap.Error(err))
			journal = nil
		}
	case errors.Is(err, store.ErrKeyNotFound):
	default:
		s.log.Warn("read upload journal failed", zap.Error(err))
	}

	journal = append(journal, model.DocumentUpload{Name: doc.Name, Date: doc.AddedAt})
	payload, err := json.Marshal(journal)
	if err != nil {
		s.log.Warn("marshal upload journal failed", zap.Error(err))
		return
	}
	if err := s.persist.Set(ctx, uploadJournalKey, payload); err != nil {
		s.log.Warn("persist upload journal failed", zap.Error(err))
	}
}
