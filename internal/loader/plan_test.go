package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"repocache/internal/cache"
	"repocache/internal/domain"
	"repocache/internal/fixture"
	"repocache/internal/repository/sqlite"
)

const clinicYAML = `
kinds:
  - schema: species
    defaults:
      legs: 4
  - schema: animal
    defaults:
      color: brown
    requires:
      - schema: species
        default: bovine
fields:
  species: equine
fixtures:
  - schema: animal
    name: bossie
    options:
      color: black
      species: bovine
  - schema: animal
    names: [Jake the Ox, hank]
shorthand:
  - schema: animal
  - schemas: [species]
load_fully:
  - schema: animal
    names: [bossie]
`

const clinicJSONC = `{
  // kinds a suite uses
  "kinds": [
    {"schema": "species"},
    {"schema": "animal", "requires": [{"schema": "species", "default": "bovine"}]},
  ],
  "fixtures": [
    {"schema": "animal", "name": "bossie"},
  ],
  "shorthand": [{"schema": "animal", "name": "bossie"}],
}`

func TestParseYAML(t *testing.T) {
	plan, err := ParseYAML([]byte(clinicYAML))
	require.NoError(t, err)

	require.Len(t, plan.Kinds, 2)
	require.Equal(t, []domain.Parent{{Schema: "species", Default: "bovine"}}, plan.Kinds[1].Requires)
	require.Equal(t, 4, plan.Kinds[0].Defaults["legs"])
	require.Equal(t, map[string]any{"species": "equine"}, plan.Fields)
	require.Equal(t, []string{"Jake the Ox", "hank"}, plan.Fixtures[1].Names)
	require.Len(t, plan.Shorthand, 2)
	require.Len(t, plan.LoadFully, 1)
}

func TestParseJSONWithComments(t *testing.T) {
	plan, err := ParseJSON([]byte(clinicJSONC))
	require.NoError(t, err)
	require.Len(t, plan.Kinds, 2)
	require.Equal(t, "bossie", plan.Fixtures[0].Name)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "kinds: [unclosed"},
		{"fixture without schema", "fixtures:\n  - name: bossie\n"},
		{"fixture with name and names", "fixtures:\n  - schema: animal\n    name: a\n    names: [b]\n"},
		{"fixture with neither", "fixtures:\n  - schema: animal\n"},
		{"names with options", "fixtures:\n  - schema: animal\n    names: [a]\n    options: {color: red}\n"},
		{"unknown target option", "shorthand:\n  - schema: animal\n    limit: 2\n"},
		{"mixed target shape", "load_fully:\n  - schemas: [animal]\n    name: bossie\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParseYAML([]byte(tt.yaml))
			require.Error(t, err)
			require.Nil(t, plan)
		})
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(clinicYAML), 0644))
	plan, err := Load(yamlPath)
	require.NoError(t, err)
	require.Len(t, plan.Fixtures, 2)

	jsonPath := filepath.Join(dir, "plan.jsonc")
	require.NoError(t, os.WriteFile(jsonPath, []byte(clinicJSONC), 0644))
	plan, err = Load(jsonPath)
	require.NoError(t, err)
	require.Len(t, plan.Fixtures, 1)

	txtPath := filepath.Join(dir, "plan.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0644))
	_, err = Load(txtPath)
	require.ErrorContains(t, err, "unsupported plan format")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	plan, err := ParseYAML([]byte(clinicYAML))
	require.NoError(t, err)

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	b, err := fixture.New(repo, plan.Kinds)
	require.NoError(t, err)

	c, err := plan.Apply(ctx, b, cache.New())
	require.NoError(t, err)

	// bossie names bovine explicitly; the others fall back to the seeded field
	require.Equal(t, []string{"bovine", "equine"}, c.Names("species"))
	require.Equal(t, []string{"Jake the Ox", "bossie", "hank"}, c.Names("animal"))

	aliases := c.Aliases()
	for _, alias := range []string{"bossie", "jake_the_ox", "hank", "bovine", "equine"} {
		require.Contains(t, aliases, alias)
	}

	bossie, _ := c.Alias("bossie")
	require.Contains(t, bossie.(*domain.Record).Associations, "species")
	hank, _ := c.Alias("hank")
	require.Empty(t, hank.(*domain.Record).Associations)
}

func TestApplyMissingShorthandName(t *testing.T) {
	ctx := context.Background()
	plan, err := ParseYAML([]byte(`
kinds:
  - schema: species
shorthand:
  - schema: species
    name: bovine
`))
	require.NoError(t, err)

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	b, err := fixture.New(repo, plan.Kinds)
	require.NoError(t, err)

	_, err = plan.Apply(ctx, b, cache.New())
	require.ErrorIs(t, err, cache.ErrMissingEntry)
}
