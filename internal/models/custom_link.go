package models

import "time"

// CustomLink is a user-defined labelled link. The full set is replaced on every save.
type CustomLink struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;index:idx_custom_links_user_position,priority:1" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Position  int       `gorm:"not null;default:0;index:idx_custom_links_user_position,priority:2" json:"position"`
	Label     string    `gorm:"type:text" json:"label"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkInput is a submitted label/url pair before it is persisted.
type LinkInput struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}
