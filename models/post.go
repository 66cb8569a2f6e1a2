package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PostTypeQuestion = "question"
	PostTypeShare    = "share"
)

// StringList stores an ordered list of strings as a JSON column, so the same
// model runs on Postgres and the SQLite test backend.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]string)(l))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(l))
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// Post - a community question or share. Content is stored as sanitized HTML
// and may embed <img> tags.
type Post struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID        int64      `gorm:"index" json:"authorId"`
	Type            string     `gorm:"size:20;index" json:"type"` // question, share
	Title           string     `gorm:"size:255" json:"title"`
	Content         string     `gorm:"type:text" json:"content"`
	Category        string     `gorm:"size:60;index" json:"category"`
	Subcategory     string     `gorm:"size:60;index" json:"subcategory,omitempty"`
	Tags            StringList `gorm:"type:text" json:"tags"`
	Views           int64      `json:"views"`
	Likes           int64      `json:"likes"`
	IsResolved      bool       `json:"isResolved"`
	AdoptedAnswerID *int64     `json:"adoptedAnswerId,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (Post) TableName() string {
	return "posts"
}

// PostAuthor - the author projection attached to listing rows
type PostAuthor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image,omitempty"`
	IsVerified  bool   `json:"isVerified"`
	IsExpert    bool   `json:"isExpert"`
	BadgeType   string `json:"badgeType,omitempty"`
	IsFollowing bool   `json:"isFollowing"`
}

// DecoratedPost - a listing row with all per-post derived fields attached.
// Responder counts are only present for offset-paginated pages.
type DecoratedPost struct {
	ID              int64      `json:"id"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Excerpt         string     `json:"excerpt"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory,omitempty"`
	Tags            StringList `json:"tags"`
	Views           int64      `json:"views"`
	Likes           int64      `json:"likes"`
	IsResolved      bool       `json:"isResolved"`
	AdoptedAnswerID *int64     `json:"adoptedAnswerId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Author PostAuthor `json:"author"`

	AnswersCount      int64 `json:"answersCount"`
	PostCommentsCount int64 `json:"postCommentsCount"`
	CommentsCount     int64 `json:"commentsCount"`

	CertifiedResponderCount *int `json:"certifiedResponderCount,omitempty"`
	OtherResponderCount     *int `json:"otherResponderCount,omitempty"`

	IsLiked      bool `json:"isLiked"`
	IsBookmarked bool `json:"isBookmarked"`

	TrustBadge  string  `json:"trustBadge"`
	TrustWeight float64 `json:"trustWeight"`

	Thumbnail  *string  `json:"thumbnail,omitempty"`
	Thumbnails []string `json:"thumbnails,omitempty"`
	ImageCount int      `json:"imageCount"`
}
