package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChatSession is one chat thread tied to the document that was selected when
// the session was created. DocumentID is a weak reference: it is kept as-is
// even after the document is removed from the registry.
type ChatSession struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Messages   []ChatMessage `json:"messages"`
	CreatedAt  time.Time     `json:"createdAt"`
	DocumentID string        `json:"documentId"`
}

// SessionEntry serializes as the two-element [id, session] array used by the
// stored chatSessions value, so the persisted payload keeps the entries-array
// layout the frontends wrote.
type SessionEntry struct {
	ID      string
	Session *ChatSession
}

func (e SessionEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.ID, e.Session})
}

func (e *SessionEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("session entry has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.ID); err != nil {
		return fmt.Errorf("decode session entry id failed: %w", err)
	}
	e.Session = &ChatSession{}
	if err := json.Unmarshal(raw[1], e.Session); err != nil {
		return fmt.Errorf("decode session entry body failed: %w", err)
	}
	return nil
}
