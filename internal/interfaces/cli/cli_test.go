package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixtures lays out a minimal corpus and a config file pointing at it,
// returning the config path.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	reactions := writeFile("reactions.json", `[
		{"ec": "1.1.1.1", "reactants": ["CCO"], "products": ["CC=O"]},
		{"ec": "1.1.1.1", "reactants": ["CC(C)O"], "products": ["CC(C)=O"]},
		{"ec": "2.7.1.1", "reactants": ["OCC"], "products": ["CCO"]}
	]`)
	sequences := writeFile("sequences.json", `{
		"P11111": "MKVAVLG",
		"P22222": "MSTNPKP",
		"P33333": "MKLVINA"
	}`)
	ecIndex := writeFile("ec2uniprot.json", `{
		"1.1.1.1": ["P11111", "P22222"],
		"2.7.1.1": ["P33333"]
	}`)

	config := "paths:\n" +
		"  reactions: " + reactions + "\n" +
		"  sequences: " + sequences + "\n" +
		"  ec_index: " + ecIndex + "\n" +
		"split:\n" +
		"  strategy: sequence\n" +
		"  seed: 7\n" +
		"cache:\n" +
		"  backend: none\n" +
		"log:\n" +
		"  level: error\n"
	return writeFile("enzymeset.yaml", config)
}

// runCommand executes the root command with args and returns captured stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "enzymeset", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"split", "build", "sample"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
}

func TestSplitCommand(t *testing.T) {
	cfgPath := writeFixtures(t)

	out, err := runCommand(t, "--config", cfgPath, "split")
	require.NoError(t, err)

	var report splitReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "sequence", report.Strategy)
	assert.Equal(t, int64(7), report.Seed)
	assert.Equal(t, 3, report.Keys)

	total := 0
	for _, n := range report.Counts {
		total += n
	}
	assert.Equal(t, 3, total)
}

func TestSplitCommand_Export(t *testing.T) {
	cfgPath := writeFixtures(t)
	outPath := filepath.Join(t.TempDir(), "assignment.json")

	_, err := runCommand(t, "--config", cfgPath, "split", "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var mapping map[string]string
	require.NoError(t, json.Unmarshal(data, &mapping))
	assert.Len(t, mapping, 3)
	for _, split := range mapping {
		assert.Contains(t, []string{"train", "dev", "test"}, split)
	}
}

func TestBuildCommand(t *testing.T) {
	cfgPath := writeFixtures(t)

	out, err := runCommand(t, "--config", cfgPath, "build")
	require.NoError(t, err)

	var report buildReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.BuildID)
	assert.Equal(t, 3, report.Samples)
	assert.Equal(t, 3, report.Stats.Records)
	assert.Zero(t, report.Stats.Skipped)
}

func TestBuildCommand_SplitFiltered(t *testing.T) {
	cfgPath := writeFixtures(t)

	out, err := runCommand(t, "--config", cfgPath, "build", "--split", "train")
	require.NoError(t, err)

	var report buildReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "train", report.Split)
	assert.LessOrEqual(t, report.Samples, 3)
}

func TestBuildCommand_BadSplitName(t *testing.T) {
	cfgPath := writeFixtures(t)

	_, err := runCommand(t, "--config", cfgPath, "build", "--split", "validation")
	assert.Error(t, err)
}

func TestSampleCommand(t *testing.T) {
	cfgPath := writeFixtures(t)

	out, err := runCommand(t, "--config", cfgPath, "sample", "-n", "2")
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewBufferString(out))
	items := 0
	for dec.More() {
		var item map[string]interface{}
		require.NoError(t, dec.Decode(&item))
		assert.NotEmpty(t, item["sample_id"])
		assert.NotEmpty(t, item["sequence"])
		items++
	}
	assert.Equal(t, 2, items)
}

func TestCommand_MissingCorpus(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"paths:\n  reactions: "+filepath.Join(dir, "missing.json")+"\n"+
			"  sequences: "+filepath.Join(dir, "missing2.json")+"\n"+
			"  ec_index: "+filepath.Join(dir, "missing3.json")+"\n"+
			"cache:\n  backend: none\nlog:\n  level: error\n"), 0o644))

	_, err := runCommand(t, "--config", cfgPath, "split")
	assert.Error(t, err)
}
