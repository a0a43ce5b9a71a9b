package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docuchat/internal/model"
	"docuchat/internal/store"
)

type stubAnswerClient struct {
	answer string
	err    error

	calls        int
	lastQuestion string
	lastDocID    string
}

func (c *stubAnswerClient) Ask(_ context.Context, doc *model.Document, question string) (string, error) {
	c.calls++
	c.lastQuestion = question
	c.lastDocID = doc.ID
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

type askFixture struct {
	docs     *DocumentService
	sessions *SessionService
	settings *SettingsService
	client   *stubAnswerClient
	ask      *AskService
}

func newAskFixture(t *testing.T) *askFixture {
	t.Helper()
	st := store.NewMemoryStore()
	log := zap.NewNop()
	f := &askFixture{
		docs:     NewDocumentService(st, st, log),
		sessions: NewSessionService(st, st, log),
		settings: NewSettingsService(st, st, log),
		client:   &stubAnswerClient{answer: "the answer"},
	}
	f.ask = NewAskService(f.docs, f.sessions, f.settings, f.client, time.Second, time.Minute, log)
	return f
}

func (f *askFixture) addDocument(t *testing.T) *model.Document {
	t.Helper()
	doc, err := f.docs.Add(context.Background(), AddDocumentInput{Name: "report.pdf", Content: pdfContent})
	require.NoError(t, err)
	return doc
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	f := newAskFixture(t)
	f.addDocument(t)

	_, err := f.ask.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrQuestionEmpty)
}

func TestAskRequiresSelectedDocument(t *testing.T) {
	f := newAskFixture(t)

	_, err := f.ask.Ask(context.Background(), "anything?")
	assert.ErrorIs(t, err, ErrNoDocumentSelected)
}

func TestAskCreatesSessionLazily(t *testing.T) {
	f := newAskFixture(t)
	doc := f.addDocument(t)
	require.Empty(t, f.sessions.CurrentID())

	result, err := f.ask.Ask(context.Background(), "What does it say?")
	require.NoError(t, err)

	assert.Equal(t, result.Session.ID, f.sessions.CurrentID())
	assert.Equal(t, doc.ID, result.Session.DocumentID)
	assert.Equal(t, "What does it say?", result.Session.Title)

	require.Len(t, result.Session.Messages, 2)
	assert.Equal(t, model.MessageTypeUser, result.Session.Messages[0].Type)
	assert.Equal(t, "What does it say?", result.Session.Messages[0].Text)
	assert.Equal(t, model.MessageTypeAssistant, result.Session.Messages[1].Type)
	assert.Equal(t, "the answer", result.Session.Messages[1].Text)

	assert.True(t, result.Answered)
	assert.Equal(t, 1, f.settings.QueryCount())
}

func TestAskReusesCurrentSession(t *testing.T) {
	f := newAskFixture(t)
	doc := f.addDocument(t)
	session, err := f.sessions.Create(context.Background(), doc.ID)
	require.NoError(t, err)

	result, err := f.ask.Ask(context.Background(), "first?")
	require.NoError(t, err)
	assert.Equal(t, session.ID, result.Session.ID)
	assert.Len(t, f.sessions.List(), 1)
}

func TestAskFailureAppendsFallbackMessage(t *testing.T) {
	f := newAskFixture(t)
	f.addDocument(t)
	f.client.err = errors.New("backend down")

	result, err := f.ask.Ask(context.Background(), "What now?")
	require.NoError(t, err)

	assert.False(t, result.Answered)
	assert.Equal(t, FallbackErrorAnswer, result.AssistantMessage.Text)
	require.Len(t, result.Session.Messages, 2)
	assert.Equal(t, FallbackErrorAnswer, result.Session.Messages[1].Text)

	// Failed asks do not count as answered questions.
	assert.Equal(t, 0, f.settings.QueryCount())
}

func TestAskCachesRepeatedQuestions(t *testing.T) {
	f := newAskFixture(t)
	f.addDocument(t)

	_, err := f.ask.Ask(context.Background(), "same question")
	require.NoError(t, err)
	result, err := f.ask.Ask(context.Background(), "same question")
	require.NoError(t, err)

	assert.Equal(t, 1, f.client.calls)
	assert.True(t, result.Answered)
	assert.Equal(t, "the answer", result.AssistantMessage.Text)
}

func TestAskCacheIsPerDocument(t *testing.T) {
	f := newAskFixture(t)
	f.addDocument(t)

	_, err := f.ask.Ask(context.Background(), "same question")
	require.NoError(t, err)

	f.addDocument(t)
	_, err = f.ask.Ask(context.Background(), "same question")
	require.NoError(t, err)

	assert.Equal(t, 2, f.client.calls)
}

func TestPendingClearedAfterCycle(t *testing.T) {
	f := newAskFixture(t)
	f.addDocument(t)

	result, err := f.ask.Ask(context.Background(), "done yet?")
	require.NoError(t, err)
	assert.False(t, f.ask.Pending(result.Session.ID))
}
