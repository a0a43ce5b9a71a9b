package model

import "time"

// Document is an uploaded file held by the document registry. Content is the
// raw file bytes; the registry owns it for the lifetime of the process and it
// is never written to the persistent store.
type Document struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Content []byte    `json:"-"`
	AddedAt time.Time `json:"addedAt"`
}

// DocumentUpload is one entry of the uploadedDocuments journal: metadata only,
// recorded at upload time and kept across restarts.
type DocumentUpload struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}
