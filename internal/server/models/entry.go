// Package models defines server-side data models persisted in the database.
package models

import "time"

// Entry is one diary record. ID, UserID and CreatedAt are assigned on insert
// and never change; UpdatedAt stays nil because entries have no update path.
type Entry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// Indicators summarises which media kinds an entry has. It is derived from
// the media table on every query and never stored.
type Indicators struct {
	HasImage bool `json:"has_image"`
	HasAudio bool `json:"has_audio"`
	HasVideo bool `json:"has_video"`
}

// EntryWithIndicators is an entry augmented with its indicator set.
type EntryWithIndicators struct {
	Entry
	Indicators
}
