// models.go this is our database models
package main

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record holds the columns every table shares. Timestamps are opaque strings
// supplied by the caller; nothing fills them in.
type Record struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	CreatedAt *string `gorm:"size:50" json:"created_at"`
	UpdatedAt *string `gorm:"size:50" json:"updated_at"`
}

func (r Record) Key() uint { return r.ID }

type Project struct {
	Record
	Title       string                      `gorm:"size:200;not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Image       *string                     `gorm:"size:500" json:"image"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	LiveURL     *string                     `gorm:"size:500" json:"live_url"`
	GithubURL   *string                     `gorm:"size:500" json:"github_url"`
	Featured    string                      `gorm:"size:10;default:'false'" json:"featured"` // "true" or "false"
	OrderIndex  int                         `gorm:"default:0" json:"order_index"`
}

type Experience struct {
	Record
	Role        string                      `gorm:"size:200;not null" json:"role"`
	Company     string                      `gorm:"size:200;not null" json:"company"`
	Period      string                      `gorm:"size:100;not null" json:"period"` // e.g. "2023 - Present"
	StartDate   *string                     `gorm:"size:50" json:"start_date"`
	EndDate     *string                     `gorm:"size:50" json:"end_date"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	OrderIndex  int                         `gorm:"default:0" json:"order_index"`
}

type SkillCategory struct {
	Record
	Name       string  `gorm:"size:100;not null;uniqueIndex" json:"name"`
	OrderIndex int     `gorm:"default:0" json:"order_index"`
	Skills     []Skill `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"skills"`
}

// AfterFind keeps the embedded list a JSON array when a category has no skills.
func (c *SkillCategory) AfterFind(tx *gorm.DB) error {
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	return nil
}

type Skill struct {
	Record
	Name       string `gorm:"size:100;not null" json:"name"`
	CategoryID uint   `gorm:"not null;index" json:"category_id"`
	OrderIndex int    `gorm:"default:0" json:"order_index"`
}

type About struct {
	Record
	Section    string `gorm:"size:50;not null;uniqueIndex" json:"section"` // e.g. "intro"
	Content    string `gorm:"type:text;not null" json:"content"`
	OrderIndex int    `gorm:"default:0" json:"order_index"`
}

func (About) TableName() string {
	return "about"
}

type Stat struct {
	Record
	Number     string `gorm:"size:50;not null" json:"number"` // e.g. "50+"
	Label      string `gorm:"size:200;not null" json:"label"`
	OrderIndex int    `gorm:"default:0" json:"order_index"`
}

type Contact struct {
	Record
	Name    string `gorm:"size:200;not null" json:"name"`
	Email   string `gorm:"size:200;not null" json:"email"`
	Message string `gorm:"type:text;not null" json:"message"`
	Status  string `gorm:"size:20;default:'new'" json:"status"` // new, read, replied, archived
}

type SocialLink struct {
	Record
	Platform   string  `gorm:"size:50;not null;uniqueIndex" json:"platform"`
	URL        string  `gorm:"size:500;not null" json:"url"`
	IconName   *string `gorm:"size:50" json:"icon_name"`
	OrderIndex int     `gorm:"default:0" json:"order_index"`
}

// models lists every table in dependency order for AutoMigrate.
func models() []any {
	return []any{
		&Project{}, &Experience{}, &SkillCategory{}, &Skill{},
		&About{}, &Stat{}, &Contact{}, &SocialLink{},
	}
}
