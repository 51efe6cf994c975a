package origin

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutOpen(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	require.NoError(t, s.Put("img/photo_rrs_w640.webp", strings.NewReader("variant")))

	f, err := s.Open("img/photo_rrs_w640.webp")
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "variant", string(b))

	// leading slash is the same key
	f2, err := s.Open("/img/photo_rrs_w640.webp")
	require.NoError(t, err)
	f2.Close()

	require.NoError(t, s.Put("img/photo_rrs_w640.webp", strings.NewReader("replaced")))
	b, err = os.ReadFile(filepath.Join(s.Dir, "img", "photo_rrs_w640.webp"))
	require.NoError(t, err)
	require.Equal(t, "replaced", string(b))

	entries, err := os.ReadDir(filepath.Join(s.Dir, "img"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestOpenMissing(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	_, err := s.Open("nope.jpg")
	require.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, s.Put("dir/a.jpg", strings.NewReader("a")))
	_, err = s.Open("dir")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenStaysInDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0o644))
	s := Store{Dir: filepath.Join(root, "origin")}
	require.NoError(t, s.Put("ok.jpg", strings.NewReader("ok")))

	_, err := s.Open("../secret.txt")
	require.ErrorIs(t, err, fs.ErrNotExist)
	_, err = s.Open("/../../secret.txt")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestETag(t *testing.T) {
	r := bytes.NewReader([]byte("content"))
	a, err := ETag(r)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(a, `"`) && strings.HasSuffix(a, `"`))
	require.Len(t, a, 34)

	// rewound
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "content", string(rest))

	b, err := ETag(bytes.NewReader([]byte("content")))
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := ETag(bytes.NewReader([]byte("other")))
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
