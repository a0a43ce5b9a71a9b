// Package view holds the projections from store state to the rendered page.
// Rendering is a full rebuild every time: the template walks these slices and
// re-emits the whole list, so output only depends on enumeration order.
package view

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type Page struct {
	AppName             string
	Theme               string
	Documents           []DocumentItem
	Sessions            []SessionItem
	Messages            []MessageItem
	HasDocuments        bool
	InputEnabled        bool
	ShowWelcome         bool
	Pending             bool
	CurrentDocumentName string
	QueryCount          int
}

type DocumentItem struct {
	ID       string
	Name     string
	Size     string
	Selected bool
}

type SessionItem struct {
	ID     string
	Title  string
	Age    string
	Active bool
}

type MessageItem struct {
	Text string
	Type string
}

// FormatFileSize renders a byte count with 1024-based units, at most two
// decimals, trailing zeros dropped ("1.95 MB", "2 MB").
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(size)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	value := math.Round(float64(size)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + units[i]
}

// FormatRelativeAge renders a coarse relative age: day granularity, then hour,
// then "Just now".
func FormatRelativeAge(t, now time.Time) string {
	hours := int(now.Sub(t).Hours())
	if days := hours / 24; days > 0 {
		return fmt.Sprintf("%dd ago", days)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh ago", hours)
	}
	return "Just now"
}
