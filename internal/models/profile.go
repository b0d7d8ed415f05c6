package models

import "time"

// ProfileFields are the user-editable columns of a profile. Every save overwrites all of them.
type ProfileFields struct {
	Name      string `gorm:"type:text" json:"name"`
	Bio       string `gorm:"type:text" json:"bio"`
	Avatar    string `json:"avatar"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	YouTube   string `gorm:"column:youtube" json:"youtube"`
	LinkedIn  string `gorm:"column:linkedin" json:"linkedin"`
	GitHub    string `gorm:"column:github" json:"github"`
}

// Profile holds the public-facing details for a single user.
type Profile struct {
	ID            uint  `gorm:"primaryKey" json:"-"`
	UserID        uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User          *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProfileFields `gorm:"embedded"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SocialLink is one populated social network field.
type SocialLink struct {
	Network string `json:"network"`
	Label   string `json:"label"`
	URL     string `json:"url"`
}

// SocialLinks returns the populated social fields in display order.
func (f ProfileFields) SocialLinks() []SocialLink {
	all := []SocialLink{
		{Network: "instagram", Label: "Instagram", URL: f.Instagram},
		{Network: "twitter", Label: "Twitter", URL: f.Twitter},
		{Network: "youtube", Label: "YouTube", URL: f.YouTube},
		{Network: "linkedin", Label: "LinkedIn", URL: f.LinkedIn},
		{Network: "github", Label: "GitHub", URL: f.GitHub},
	}
	out := make([]SocialLink, 0, len(all))
	for _, l := range all {
		if l.URL != "" {
			out = append(out, l)
		}
	}
	return out
}
