package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docuchat/internal/model"
	"docuchat/internal/store"
)

var pdfContent = []byte("%PDF-1.4\nfake body\n%%EOF")

func newDocumentService(st store.Store) *DocumentService {
	return NewDocumentService(st, st, zap.NewNop())
}

func TestAddDocumentValidation(t *testing.T) {
	svc := newDocumentService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Add(ctx, AddDocumentInput{Name: "", Content: pdfContent})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Add(ctx, AddDocumentInput{Name: "a.pdf", Content: nil})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Add(ctx, AddDocumentInput{Name: "a.pdf", Content: []byte("plain text")})
	assert.ErrorIs(t, err, ErrNotPDF)

	svc.maxSize = 8
	_, err = svc.Add(ctx, AddDocumentInput{Name: "a.pdf", Content: pdfContent})
	assert.ErrorIs(t, err, ErrDocumentTooLarge)
}

func TestAddDocumentSelectsAndJournals(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newDocumentService(st)
	ctx := context.Background()

	first, err := svc.Add(ctx, AddDocumentInput{Name: "first.pdf", Content: pdfContent})
	require.NoError(t, err)
	assert.Equal(t, first.ID, svc.CurrentID())
	assert.Equal(t, int64(len(pdfContent)), first.Size)

	second, err := svc.Add(ctx, AddDocumentInput{Name: "second.pdf", Content: pdfContent})
	require.NoError(t, err)
	assert.Equal(t, second.ID, svc.CurrentID())

	raw, err := st.Get(ctx, "uploadedDocuments")
	require.NoError(t, err)
	var journal []model.DocumentUpload
	require.NoError(t, json.Unmarshal(raw, &journal))
	require.Len(t, journal, 2)
	assert.Equal(t, "first.pdf", journal[0].Name)
	assert.Equal(t, "second.pdf", journal[1].Name)
}

func TestDocumentContentStaysOutOfStore(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newDocumentService(st)

	_, err := svc.Add(context.Background(), AddDocumentInput{Name: "a.pdf", Content: pdfContent})
	require.NoError(t, err)

	raw, err := st.Get(context.Background(), "uploadedDocuments")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "fake body")
}

func TestRemoveClearsCurrentPointer(t *testing.T) {
	svc := newDocumentService(store.NewMemoryStore())
	ctx := context.Background()

	doc, err := svc.Add(ctx, AddDocumentInput{Name: "a.pdf", Content: pdfContent})
	require.NoError(t, err)

	svc.Remove(doc.ID)
	assert.True(t, svc.Empty())
	assert.Empty(t, svc.CurrentID())

	// Unknown ids are ignored.
	svc.Remove("missing")
}

func TestRemoveKeepsOtherSelection(t *testing.T) {
	svc := newDocumentService(store.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.Add(ctx, AddDocumentInput{Name: "a.pdf", Content: pdfContent})
	require.NoError(t, err)
	second, err := svc.Add(ctx, AddDocumentInput{Name: "b.pdf", Content: pdfContent})
	require.NoError(t, err)

	svc.Remove(first.ID)
	assert.Equal(t, second.ID, svc.CurrentID())

	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestListKeepsUploadOrder(t *testing.T) {
	svc := newDocumentService(store.NewMemoryStore())
	ctx := context.Background()

	names := []string{"one.pdf", "two.pdf", "three.pdf"}
	for _, name := range names {
		_, err := svc.Add(ctx, AddDocumentInput{Name: name, Content: pdfContent})
		require.NoError(t, err)
	}

	list := svc.List()
	require.Len(t, list, 3)
	for i, name := range names {
		assert.Equal(t, name, list[i].Name)
	}
}
