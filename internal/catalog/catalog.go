// Package catalog holds the reference tables served by the public API:
// services, portfolio projects, testimonials, team members and the company
// timeline.
//
// Tables are parsed once from a YAML seed (embedded by default) and are
// read-only afterwards. Every accessor returns a copy, so the same content is
// handed out for the lifetime of the process no matter what callers do with
// the results.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/ranjit-agency/site/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// ErrDuplicateID is returned when a seed reuses an id within one table.
var ErrDuplicateID = errors.New("duplicate id in seed")

// ErrMissingID is returned when a seed record has an empty id.
var ErrMissingID = errors.New("missing id in seed")

// Tables is the immutable set of reference data.
type Tables struct {
	services     []domain.Service
	projects     []domain.Project
	projectIndex map[string]int
	testimonials []domain.Testimonial
	team         []domain.TeamMember
	timeline     []domain.TimelineEvent
}

type seedFile struct {
	Services     []domain.Service       `yaml:"services"`
	Projects     []domain.Project       `yaml:"projects"`
	Testimonials []domain.Testimonial   `yaml:"testimonials"`
	Team         []domain.TeamMember    `yaml:"team"`
	Timeline     []domain.TimelineEvent `yaml:"timeline"`
}

// Load parses the embedded seed.
func Load() (*Tables, error) {
	return Parse(defaultSeed)
}

// MustLoad is Load for program start-up; a broken embedded seed is a build
// defect, not a runtime condition.
func MustLoad() *Tables {
	t, err := Load()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed: %v", err))
	}
	return t
}

// LoadFile parses a seed file from disk, replacing the embedded content.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return t, nil
}

// Parse builds Tables from a YAML document.
func Parse(data []byte) (*Tables, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	checks := []struct {
		table string
		ids   []string
	}{
		{"services", ids(seed.Services, func(s domain.Service) string { return s.ID })},
		{"projects", ids(seed.Projects, func(p domain.Project) string { return p.ID })},
		{"testimonials", ids(seed.Testimonials, func(t domain.Testimonial) string { return t.ID })},
		{"team", ids(seed.Team, func(m domain.TeamMember) string { return m.ID })},
		{"timeline", ids(seed.Timeline, func(e domain.TimelineEvent) string { return e.ID })},
	}
	for _, c := range checks {
		if err := checkIDs(c.table, c.ids); err != nil {
			return nil, err
		}
	}

	t := &Tables{
		services:     seed.Services,
		projects:     seed.Projects,
		projectIndex: make(map[string]int, len(seed.Projects)),
		testimonials: seed.Testimonials,
		team:         seed.Team,
		timeline:     seed.Timeline,
	}
	for i, p := range t.projects {
		t.projectIndex[p.ID] = i
	}
	return t, nil
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func checkIDs(table string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("%s[%d]: %w", table, i, ErrMissingID)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%s %q: %w", table, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Services returns every service in seed order.
func (t *Tables) Services() []domain.Service {
	out := make([]domain.Service, len(t.services))
	for i, s := range t.services {
		s.Features = slices.Clone(s.Features)
		out[i] = s
	}
	return out
}

// Projects returns every portfolio project in seed order.
func (t *Tables) Projects() []domain.Project {
	out := make([]domain.Project, len(t.projects))
	for i, p := range t.projects {
		out[i] = cloneProject(p)
	}
	return out
}

// Project looks up a project by id.
func (t *Tables) Project(id string) (domain.Project, bool) {
	i, ok := t.projectIndex[id]
	if !ok {
		return domain.Project{}, false
	}
	return cloneProject(t.projects[i]), true
}

// Testimonials returns every testimonial in seed order.
func (t *Tables) Testimonials() []domain.Testimonial {
	return slices.Clone(t.testimonials)
}

// TeamMembers returns every team member in seed order.
func (t *Tables) TeamMembers() []domain.TeamMember {
	return slices.Clone(t.team)
}

// Timeline returns every timeline event in seed order.
func (t *Tables) Timeline() []domain.TimelineEvent {
	return slices.Clone(t.timeline)
}

func cloneProject(p domain.Project) domain.Project {
	p.Technologies = slices.Clone(p.Technologies)
	p.Results = slices.Clone(p.Results)
	return p
}
