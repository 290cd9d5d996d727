package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aihub/internal/domain"
)

func TestDirFetcher_Fetch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice", "a.csv"), []byte("x\n1\n"), 0o600))

	f := NewDirFetcher(dir)
	body, err := f.Fetch(context.Background(), "alice/a.csv")
	require.NoError(t, err)
	defer body.Close()

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(content))
}

func TestDirFetcher_MissingObjectIsNotFound(t *testing.T) {
	t.Parallel()

	f := NewDirFetcher(t.TempDir())
	_, err := f.Fetch(context.Background(), "nope.csv")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDirFetcher_RejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	f := NewDirFetcher(t.TempDir())
	_, err := f.Fetch(context.Background(), "../../etc/passwd")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}
