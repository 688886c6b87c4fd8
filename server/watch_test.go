package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

func writeRepo(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo.json")
	writeRepo(t, path, `{"repositoryName": "Before", "records": []}`)
	repo, err := oaisim.LoadRepository(path, nil)
	require.NoError(t, err)
	s := New(repo, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, path) }()

	// A broken file keeps the current repository.
	writeRepo(t, path, `{"repositoryName": "Broken", "records": [{"identifier": "x"}]}`)
	time.Sleep(2 * reloadDelay)
	assert.Equal(t, "Before", s.Repository().Name)

	// Rewrite until the watcher is known to be registered.
	assert.Eventually(t, func() bool {
		if s.Repository().Name == "After" {
			return true
		}
		writeRepo(t, path, `{"repositoryName": "After", "records": [{"identifier": "x", "datestamp": "2001-01-01"}]}`)
		return false
	}, 5*time.Second, 3*reloadDelay)
	assert.Equal(t, 1, s.Repository().Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	s := New(newTestRepository(t, "Test"), Options{})
	err := s.Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "repo.json"))
	assert.Error(t, err)
}
