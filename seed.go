package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// seedFile is the YAML layout accepted by the seed command. Item fields are
// the same as the API create bodies.
type seedFile struct {
	SkillCategories []seedCategory   `yaml:"skill_categories"`
	Projects        []map[string]any `yaml:"projects"`
	Experiences     []map[string]any `yaml:"experiences"`
	About           []map[string]any `yaml:"about"`
	Stats           []map[string]any `yaml:"stats"`
	SocialLinks     []map[string]any `yaml:"social_links"`
	Contacts        []map[string]any `yaml:"contacts"`
}

type seedCategory struct {
	Fields map[string]any   `yaml:",inline"`
	Skills []map[string]any `yaml:"skills"`
}

// seedCounts reports how many records of each resource were inserted.
type seedCounts map[string]int

func readSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return &f, nil
}

// seed inserts everything in f in one transaction; the first failure rolls
// the whole file back. Each seeded resource is revalidated once on success.
func (s *server) seed(f *seedFile) (seedCounts, error) {
	counts := seedCounts{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i, c := range f.SkillCategories {
			cat, err := seedOne(tx, s.res.categories, c.Fields, i)
			if err != nil {
				return err
			}
			counts[s.res.categories.name]++
			for j, item := range c.Skills {
				if item == nil {
					item = map[string]any{}
				}
				item["category_id"] = cat.ID
				if _, err := seedOne(tx, s.res.skills, item, j); err != nil {
					return fmt.Errorf("category %q: %w", cat.Name, err)
				}
				counts[s.res.skills.name]++
			}
		}
		if err := seedAll(tx, s.res.projects, f.Projects, counts); err != nil {
			return err
		}
		if err := seedAll(tx, s.res.experiences, f.Experiences, counts); err != nil {
			return err
		}
		if err := seedAll(tx, s.res.about, f.About, counts); err != nil {
			return err
		}
		if err := seedAll(tx, s.res.stats, f.Stats, counts); err != nil {
			return err
		}
		if err := seedAll(tx, s.res.socialLinks, f.SocialLinks, counts); err != nil {
			return err
		}
		return seedAll(tx, s.res.contacts, f.Contacts, counts)
	})
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"skill_categories", "skills", "projects", "experiences", "about", "stats", "social_links", "contacts"} {
		if counts[name] > 0 {
			s.lists.invalidate(name)
			s.reval.trigger(name)
		}
	}
	return counts, nil
}

func seedAll[T entity](tx *gorm.DB, res *resource[T], items []map[string]any, counts seedCounts) error {
	for i, item := range items {
		if _, err := seedOne(tx, res, item, i); err != nil {
			return err
		}
		counts[res.name]++
	}
	return nil
}

func seedOne[T entity](tx *gorm.DB, res *resource[T], item map[string]any, index int) (T, error) {
	var zero T
	if item == nil {
		item = map[string]any{}
	}
	body, err := json.Marshal(item)
	if err != nil {
		return zero, fmt.Errorf("%s[%d]: encoding item: %w", res.name, index, err)
	}
	rec, fields, err := res.parseCreate(body)
	if err != nil {
		return zero, fmt.Errorf("%s[%d]: %w", res.name, index, err)
	}
	rec, err = res.insert(tx, rec, fields)
	if err != nil {
		return zero, fmt.Errorf("%s[%d]: %w", res.name, index, err)
	}
	return rec, nil
}
