package services

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50

	PaginationModeCursor = "cursor"
	PaginationModeOffset = "offset"
)

// cursorPayload is the wire form of a cursor: base64url-encoded JSON carrying
// the last seen (createdAt, id) sort key.
type cursorPayload struct {
	CreatedAt string `json:"createdAt"`
	ID        string `json:"id"`
}

type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

func EncodeCursor(createdAt time.Time, id int64) string {
	payload := cursorPayload{
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
		ID:        strconv.FormatInt(id, 10),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor validates an opaque cursor. Any structural problem is reported
// as invalid rather than an error: the caller silently falls back to offset
// pagination.
func DecodeCursor(raw string) (*Cursor, bool) {
	if raw == "" {
		return nil, false
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		// Tolerate padded encoders
		data, err = base64.URLEncoding.DecodeString(raw)
		if err != nil {
			return nil, false
		}
	}

	var payload cursorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.CreatedAt == "" || payload.ID == "" {
		return nil, false
	}

	createdAt, err := time.Parse(time.RFC3339Nano, payload.CreatedAt)
	if err != nil {
		return nil, false
	}
	id, err := strconv.ParseInt(payload.ID, 10, 64)
	if err != nil {
		return nil, false
	}

	return &Cursor{CreatedAt: createdAt, ID: id}, true
}

func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
