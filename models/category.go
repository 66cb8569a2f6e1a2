package models

import "time"

// Category - hierarchical category; ParentID links legacy child rows to a
// parent. The hot listing path uses the static group map instead of this
// table, the table remains the fallback for legacy non-group parents.
type Category struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug     string `gorm:"size:60;uniqueIndex" json:"slug"`
	Name     string `gorm:"size:120" json:"name"`
	ParentID *int64 `gorm:"index" json:"parentId,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// CategorySubscription - a user subscribed to a whole parent category
type CategorySubscription struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"index:category_sub_idx,unique" json:"userId"`
	CategoryID int64     `gorm:"index:category_sub_idx,unique" json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (CategorySubscription) TableName() string {
	return "category_subscriptions"
}

// TopicSubscription - a user subscribed to an individual topic (child) slug
type TopicSubscription struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"index:topic_sub_idx,unique" json:"userId"`
	CategoryID int64     `gorm:"index:topic_sub_idx,unique" json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (TopicSubscription) TableName() string {
	return "topic_subscriptions"
}
