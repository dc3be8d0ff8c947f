package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"repocache/internal/codec"
	"repocache/internal/config"
	"repocache/internal/domain"
	"repocache/internal/fixture"
)

const testPlan = `
kinds:
  - schema: species
  - schema: animal
    defaults:
      color: brown
    requires:
      - schema: species
        default: bovine
fixtures:
  - schema: animal
    names: [bossie, Jake the Ox]
shorthand:
  - schemas: [animal, species]
load_fully:
  - schema: animal
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunWritesSnapshotToStdout(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "repocache.yaml", "database:\n  path: \":memory:\"\n")
	planPath := writeFile(t, dir, "plan.yaml", testPlan)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-c", cfgPath, "-p", planPath}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	var snap codec.Snapshot
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &snap))
	require.Len(t, snap.Schemas["animal"], 2)
	require.Contains(t, snap.Aliases, "jake_the_ox")
	require.Contains(t, snap.Aliases, "bovine")

	bossie := snap.Schemas["animal"]["bossie"].(map[string]any)
	require.Contains(t, bossie, "associations")
	require.Contains(t, stderr.String(), "fixtures built")
}

func TestRunWritesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "repocache.yaml", "log:\n  level: warn\n")
	planPath := writeFile(t, dir, "plan.yaml", testPlan)
	outPath := filepath.Join(dir, "snapshot.yaml")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"--config", cfgPath,
		"--plan", planPath,
		"--db", filepath.Join(dir, "fixtures.db"),
		"--format", "yaml",
		"--out", outPath,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.Empty(t, stdout.String())

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	snap, err := codec.NewYAMLCodec().Parse(f)
	require.NoError(t, err)
	restored, err := snap.Restore(fixture.DecodeRecord)
	require.NoError(t, err)
	require.Equal(t, []string{"Jake the Ox", "bossie"}, restored.Names("animal"))

	jake, ok := restored.Alias("jake_the_ox")
	require.True(t, ok)
	require.Equal(t, "bovine", jake.(*domain.Record).Associations["species"].Name)
}

// snapshotIDs maps "schema/name" to the stored record ID
func snapshotIDs(t *testing.T, data []byte) map[string]string {
	t.Helper()
	var snap codec.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	ids := make(map[string]string)
	for schema, entries := range snap.Schemas {
		for name, v := range entries {
			id, _ := v.(map[string]any)["id"].(string)
			require.NotEmpty(t, id, "%s/%s", schema, name)
			ids[schema+"/"+name] = id
		}
	}
	return ids
}

func TestRunTwiceAgainstSameDatabase(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "repocache.yaml", "version: 1\n")
	planPath := writeFile(t, dir, "plan.yaml", testPlan)
	args := []string{"-c", cfgPath, "-p", planPath, "--db", filepath.Join(dir, "fixtures.db")}

	var first, second, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), args, &first, &stderr), stderr.String())
	require.NoError(t, run(context.Background(), args, &second, &stderr), stderr.String())

	require.Equal(t, snapshotIDs(t, first.Bytes()), snapshotIDs(t, second.Bytes()))
}

func TestRunFromSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "repocache.yaml", "version: 1\n")
	planPath := writeFile(t, dir, "plan.yaml", testPlan)
	dbPath := filepath.Join(dir, "fixtures.db")
	seedPath := filepath.Join(dir, "seed.json")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{
		"-c", cfgPath, "-p", planPath, "--db", dbPath, "-o", seedPath,
	}, &stdout, &stderr), stderr.String())
	seed, err := os.ReadFile(seedPath)
	require.NoError(t, err)

	// The second plan adds one animal whose species comes from the snapshot
	more := writeFile(t, dir, "more.yaml", strings.Replace(testPlan, "[bossie, Jake the Ox]", "[bossie, Jake the Ox, hank]", 1))
	stdout.Reset()
	stderr.Reset()
	require.NoError(t, run(context.Background(), []string{
		"-c", cfgPath, "-p", more, "--db", dbPath, "--from-snapshot", seedPath,
	}, &stdout, &stderr), stderr.String())
	require.Contains(t, stderr.String(), "snapshot restored")

	before := snapshotIDs(t, seed)
	after := snapshotIDs(t, stdout.Bytes())
	for key, id := range before {
		require.Equal(t, id, after[key], key)
	}
	require.Contains(t, after, "animal/hank")

	var snap codec.Snapshot
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &snap))
	hank := snap.Schemas["animal"]["hank"].(map[string]any)
	require.Equal(t, before["species/bovine"], hank["fields"].(map[string]any)["species_id"])
	require.Contains(t, snap.Aliases, "hank")
}

func TestRunSaveConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "repocache.yaml", "log:\n  level: warn\n")
	savedPath := filepath.Join(dir, "saved", "repocache.yaml")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-c", cfgPath,
		"--db", filepath.Join(dir, "fixtures.db"),
		"-f", "yaml",
		"--save-config", savedPath,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.Empty(t, stdout.String())

	saved, _, err := config.LoadFromPath(savedPath)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "fixtures.db"), saved.Database.Path)
	require.Equal(t, "yaml", saved.Output.Format)
	require.Equal(t, "warn", saved.Log.Level)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "repocache.yaml", "version: 1\n")
	goodPlan := writeFile(t, dir, "plan.yaml", testPlan)
	badPlan := writeFile(t, dir, "bad.yaml", "fixtures:\n  - schema: animal\n    name: bossie\n    options: {wings: 2}\nkinds:\n  - schema: animal\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown flag", []string{"--nope"}, "unknown flag"},
		{"bad format", []string{"-c", cfgPath, "-f", "xml"}, "output.format"},
		{"missing plan", []string{"-c", cfgPath, "-p", filepath.Join(dir, "none.yaml")}, "load plan"},
		{"unknown option", []string{"-c", cfgPath, "-p", badPlan}, "wings"},
		{"missing snapshot", []string{"-c", cfgPath, "-p", goodPlan, "-s", filepath.Join(dir, "none.json")}, "open snapshot"},
		{"snapshot format", []string{"-c", cfgPath, "-p", goodPlan, "-s", goodPlan + ".txt"}, "unknown format"},
		{"plan as snapshot", []string{"-c", cfgPath, "-p", goodPlan, "-s", goodPlan}, "read snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			require.Error(t, err)
			require.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}
