package models

import "time"

// Like - one row per (user, post)
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:likes_user_post_idx,unique" json:"userId"`
	PostID    int64     `gorm:"index:likes_user_post_idx,unique;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}

// Bookmark - one row per (user, post)
type Bookmark struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:bookmarks_user_post_idx,unique" json:"userId"`
	PostID    int64     `gorm:"index:bookmarks_user_post_idx,unique;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

// Follow - follower -> following edge, one row per pair
type Follow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID  int64     `gorm:"index:follows_pair_idx,unique;index" json:"followerId"`
	FollowingID int64     `gorm:"index:follows_pair_idx,unique;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Follow) TableName() string {
	return "follows"
}
