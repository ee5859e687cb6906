package family

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/models"
)

// Document is the YAML layout accepted by Import. Habits name their members
// by member name.
type Document struct {
	Family  FamilyDoc   `yaml:"family"`
	Members []MemberDoc `yaml:"members"`
	Habits  []HabitDoc  `yaml:"habits"`
}

type FamilyDoc struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
	Locale   string `yaml:"locale"`
}

type MemberDoc struct {
	Name string         `yaml:"name"`
	Role constants.Role `yaml:"role"`
	Age  *int           `yaml:"age,omitempty"`
}

type HabitDoc struct {
	Title      string              `yaml:"title"`
	Icon       string              `yaml:"icon,omitempty"`
	XPReward   int                 `yaml:"xp_reward"`
	Frequency  constants.Frequency `yaml:"frequency"`
	DaysOfWeek []int               `yaml:"days_of_week,omitempty"`
	TimeOfDay  string              `yaml:"time_of_day,omitempty"`
	Members    []string            `yaml:"members"`
}

// ImportResult is what Import created.
type ImportResult struct {
	Family  models.Family
	Members []models.Member
	Habits  []models.Habit
}

// ParseDocument decodes a family document, rejecting unknown keys.
func ParseDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse family document: %w", err)
	}
	if len(doc.Members) == 0 {
		return Document{}, fmt.Errorf("family document has no members")
	}
	return doc, nil
}

// Import creates a family for ownerID from a YAML document. Member
// references in habits are checked before anything is written.
func (s *Service) Import(ctx context.Context, ownerID string, r io.Reader) (ImportResult, error) {
	doc, err := ParseDocument(r)
	if err != nil {
		return ImportResult{}, err
	}

	names := make(map[string]bool, len(doc.Members))
	for _, m := range doc.Members {
		names[strings.ToLower(strings.TrimSpace(m.Name))] = true
	}
	for _, h := range doc.Habits {
		for _, ref := range h.Members {
			if !names[strings.ToLower(strings.TrimSpace(ref))] {
				return ImportResult{}, fmt.Errorf("habit %q references unknown member %q", h.Title, ref)
			}
		}
	}

	f, err := s.CreateFamily(ctx, ownerID, doc.Family.Name, doc.Family.Timezone, doc.Family.Locale)
	if err != nil {
		return ImportResult{}, err
	}
	result := ImportResult{Family: f}

	byName := make(map[string]string, len(doc.Members))
	for _, md := range doc.Members {
		m, err := s.AddMember(ctx, f.ID, MemberInput{Name: md.Name, Role: md.Role, Age: md.Age})
		if err != nil {
			return result, fmt.Errorf("member %q: %w", md.Name, err)
		}
		byName[strings.ToLower(m.Name)] = m.ID
		result.Members = append(result.Members, m)
	}

	for _, hd := range doc.Habits {
		ids := make([]string, 0, len(hd.Members))
		for _, ref := range hd.Members {
			ids = append(ids, byName[strings.ToLower(strings.TrimSpace(ref))])
		}
		h, err := s.CreateHabit(ctx, f.ID, HabitInput{
			Title:      hd.Title,
			Icon:       hd.Icon,
			XPReward:   hd.XPReward,
			Frequency:  hd.Frequency,
			DaysOfWeek: hd.DaysOfWeek,
			MemberIDs:  ids,
			TimeOfDay:  hd.TimeOfDay,
		})
		if err != nil {
			return result, fmt.Errorf("habit %q: %w", hd.Title, err)
		}
		result.Habits = append(result.Habits, h)
	}
	return result, nil
}
