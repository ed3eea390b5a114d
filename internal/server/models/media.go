package models

import (
	"fmt"
	"io"
	"time"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// ParseMediaKind validates caller input against the closed set of kinds.
func ParseMediaKind(s string) (MediaKind, error) {
	switch k := MediaKind(s); k {
	case MediaImage, MediaVideo, MediaAudio:
		return k, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", s)
	}
}

// Media is a stored file attached to exactly one entry.
type Media struct {
	ID          string    `json:"id"`
	EntryID     string    `json:"entry_id"`
	Kind        MediaKind `json:"kind"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// MediaKindRow is the projection used for indicator aggregation. Kind is kept
// as a raw string so values outside the known set can be skipped.
type MediaKindRow struct {
	EntryID string
	Kind    string
}

// LocalFile is an already resolved upload source.
type LocalFile struct {
	Content  io.Reader
	Name     string
	MimeType string
}

// MediaWithURL pairs a media row with a freshly signed read URL.
type MediaWithURL struct {
	Media
	URL string `json:"url"`
}

// EntryDetails is an entry together with its media and their signed URLs.
type EntryDetails struct {
	Entry *Entry         `json:"entry"`
	Media []MediaWithURL `json:"media"`
}
