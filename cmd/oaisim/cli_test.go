package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	out, err := execute(t, "check", "../../data/repo1.json")
	require.NoError(t, err)
	assert.Contains(t, out, "repository: OAI-PMH Simulator Repository 1\n")
	assert.Contains(t, out, "items: 3\n")
	assert.Contains(t, out, "records: 3\n")
	assert.Contains(t, out, "formats: oai_dc\n")
	assert.Contains(t, out, "sets: a a:b c\n")
}

func TestCheckReportsAllProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"deletedRecord": "maybe",
		"records": [{"identifier": "x"}, {"datestamp": "2001-01-01"}]
	}`), 0644))
	out, err := execute(t, "check", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 problem(s)")
	assert.Contains(t, out, "deletedRecord must be one of")
	assert.Contains(t, out, "missing datestamp")
	assert.Contains(t, out, "missing identifier")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "oaisim "+oaisim.Version+"\n", out)
}
