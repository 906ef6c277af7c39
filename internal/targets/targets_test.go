package targets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadSkipsBlankAndCommentLines(t *testing.T) {
	t.Parallel()

	in := "https://example.com/rooms/1\n\n  https://example.com/rooms/2  \r\n# skipped\nhttps://example.com/rooms/3\n\n"
	urls, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.com/rooms/1",
		"https://example.com/rooms/2",
		"https://example.com/rooms/3",
	}, urls)
}

func TestReadEmpty(t *testing.T) {
	t.Parallel()

	urls, err := Read(strings.NewReader("\n\n"))
	require.NoError(t, err)
	require.Empty(t, urls)
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorContains(t, err, "open url list")
}

func TestCollectOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://b\nhttps://c\n"), 0o600))

	urls, err := Collect([]string{"https://a", " "}, path, []string{" https://d "})
	require.NoError(t, err)
	require.Equal(t, []string{"https://a", "https://b", "https://c", "https://d"}, urls)
}

func TestCollectWithoutFile(t *testing.T) {
	t.Parallel()

	urls, err := Collect(nil, "", []string{"https://a"})
	require.NoError(t, err)
	require.Equal(t, []string{"https://a"}, urls)
}
