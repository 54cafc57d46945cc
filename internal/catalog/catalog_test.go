package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedSeed(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	assert.Len(t, tables.Services(), 6)
	assert.Len(t, tables.Projects(), 6)
	assert.Len(t, tables.Testimonials(), 5)
	assert.Len(t, tables.TeamMembers(), 6)
	assert.Len(t, tables.Timeline(), 6)

	assert.Equal(t, "web-development", tables.Services()[0].ID)
	assert.Equal(t, "Code2", tables.Services()[0].Icon)
	assert.Equal(t, "2015", tables.Timeline()[0].Year)
	assert.Equal(t, 5, tables.Testimonials()[0].Rating)
}

func TestProjectLookup(t *testing.T) {
	tables := MustLoad()

	p, ok := tables.Project("fintech-dashboard")
	require.True(t, ok)
	assert.Equal(t, "FinTech Dashboard", p.Title)
	assert.Equal(t, "Web Development", p.Category)
	assert.Equal(t, "WealthStream Capital", p.Client)
	assert.Len(t, p.Results, 3)

	for _, id := range []string{"does-not-exist", "", "FINTECH-DASHBOARD"} {
		_, ok := tables.Project(id)
		assert.False(t, ok, "id %q", id)
	}

	for _, want := range tables.Projects() {
		got, ok := tables.Project(want.ID)
		require.True(t, ok, want.ID)
		assert.Equal(t, want, got)
	}
}

func TestTeamSocialLinks(t *testing.T) {
	team := MustLoad().TeamMembers()
	assert.Equal(t, "#", team[0].Social.LinkedIn)
	assert.Equal(t, "#", team[0].Social.Twitter)
	assert.Empty(t, team[0].Social.GitHub)
	assert.Equal(t, "#", team[1].Social.GitHub)
	assert.Empty(t, team[4].Social.Twitter)
}

func TestAccessorsReturnCopies(t *testing.T) {
	tables := MustLoad()

	services := tables.Services()
	services[0].Title = "changed"
	services[0].Features[0] = "changed"

	projects := tables.Projects()
	projects[0].Technologies[0] = "changed"
	p, _ := tables.Project("fintech-dashboard")
	p.Results[0] = "changed"

	timeline := tables.Timeline()
	timeline[0].Title = "changed"

	assert.Equal(t, "Web Development", tables.Services()[0].Title)
	assert.Equal(t, "Custom Web Applications", tables.Services()[0].Features[0])
	assert.Equal(t, "React", tables.Projects()[0].Technologies[0])
	again, _ := tables.Project("fintech-dashboard")
	assert.Equal(t, "40% faster data processing", again.Results[0])
	assert.Equal(t, "Founded in San Francisco", tables.Timeline()[0].Title)
}

func TestAccessorsAreIdempotent(t *testing.T) {
	tables := MustLoad()
	assert.Equal(t, tables.Services(), tables.Services())
	assert.Equal(t, tables.Projects(), tables.Projects())
	assert.Equal(t, tables.Testimonials(), tables.Testimonials())
	assert.Equal(t, tables.TeamMembers(), tables.TeamMembers())
	assert.Equal(t, tables.Timeline(), tables.Timeline())
}

func TestParseRejectsBadSeeds(t *testing.T) {
	_, err := Parse([]byte("services:\n  - id: a\n  - id: a\n"))
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = Parse([]byte("timeline:\n  - title: no id\n"))
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = Parse([]byte("services: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
projects:
  - id: "only-project"
    title: "Only"
    category: "SaaS"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, tables.Projects(), 1)
	assert.Empty(t, tables.Services())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
