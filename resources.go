package main

import (
	"fmt"
	"slices"

	"gorm.io/gorm"
)

var byOrderIndex = []string{"order_index asc", "id asc"}

// resources holds one controller per content type.
type resources struct {
	projects    *resource[Project]
	experiences *resource[Experience]
	categories  *resource[SkillCategory]
	skills      *resource[Skill]
	about       *resource[About]
	stats       *resource[Stat]
	contacts    *resource[Contact]
	socialLinks *resource[SocialLink]
}

func newResources(s *server) (*resources, error) {
	schemas := make(map[string]schemaPair)
	for _, name := range []string{"project", "experience", "skill_category", "skill", "about", "stat", "contact", "social_link"} {
		pair, err := loadSchemas(name)
		if err != nil {
			return nil, err
		}
		schemas[name] = pair
	}

	return &resources{
		projects: &resource[Project]{
			srv:     s,
			name:    "projects",
			label:   "Project",
			order:   byOrderIndex,
			schemas: schemas["project"],
			defaults: func(p *Project) {
				if p.Featured == "" {
					p.Featured = "false"
				}
			},
		},
		experiences: &resource[Experience]{
			srv:     s,
			name:    "experiences",
			label:   "Experience",
			order:   byOrderIndex,
			schemas: schemas["experience"],
		},
		categories: &resource[SkillCategory]{
			srv:     s,
			name:    "skill_categories",
			label:   "Category",
			order:   byOrderIndex,
			scope:   withSkills,
			schemas: schemas["skill_category"],
			related: []string{"skills"},
			cascade: func(tx *gorm.DB, c *SkillCategory) error {
				if err := tx.Where("category_id = ?", c.ID).Delete(&Skill{}).Error; err != nil {
					return fmt.Errorf("deleting skills of category %d: %w", c.ID, err)
				}
				return nil
			},
		},
		skills: &resource[Skill]{
			srv:     s,
			name:    "skills",
			label:   "Skill",
			order:   []string{"category_id asc", "order_index asc", "id asc"},
			schemas: schemas["skill"],
			related: []string{"skill_categories"},
			check: func(tx *gorm.DB, prev, next *Skill, fields []string) error {
				if prev != nil && (!slices.Contains(fields, "category_id") || next.CategoryID == prev.CategoryID) {
					return nil
				}
				return categoryExists(tx, next.CategoryID)
			},
		},
		about: &resource[About]{
			srv:     s,
			name:    "about",
			label:   "About section",
			order:   byOrderIndex,
			schemas: schemas["about"],
		},
		stats: &resource[Stat]{
			srv:     s,
			name:    "stats",
			label:   "Stat",
			order:   byOrderIndex,
			schemas: schemas["stat"],
		},
		contacts: &resource[Contact]{
			srv:     s,
			name:    "contacts",
			label:   "Contact",
			order:   []string{"created_at desc", "id desc"},
			schemas: schemas["contact"],
			defaults: func(c *Contact) {
				if c.Status == "" {
					c.Status = "new"
				}
			},
		},
		socialLinks: &resource[SocialLink]{
			srv:     s,
			name:    "social_links",
			label:   "Social link",
			order:   byOrderIndex,
			schemas: schemas["social_link"],
		},
	}, nil
}

// withSkills embeds each category's skills, ordered like the category list.
func withSkills(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Skills", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc").Order("id asc")
	})
}

func categoryExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&SkillCategory{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("looking up category %d: %w", id, err)
	}
	if n == 0 {
		return &NotFoundError{Resource: "Category"}
	}
	return nil
}
