package origin

import (
	"encoding/hex"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Store is an origin bucket laid out on disk: the object key is the path
// below Dir.
type Store struct {
	Dir string
}

func (s Store) path(key string) string {
	// rooting the key before cleaning keeps ".." from leaving Dir
	return filepath.Join(s.Dir, filepath.FromSlash(path.Clean("/"+key)))
}

// Open opens the object at key. Directories are reported as missing.
func (s Store) Open(key string) (f *os.File, err error) {
	f, err = os.Open(s.path(key))
	if err != nil {
		return
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, &fs.PathError{Op: "open", Path: key, Err: fs.ErrNotExist}
	}
	return
}

// Put stores blob at key, replacing any existing object. The object only
// becomes visible once fully written.
func (s Store) Put(key string, blob io.Reader) (err error) {
	filename := s.path(key)
	dir := filepath.Dir(filename)
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return
	}
	tmpFilename := filepath.Join(dir, ".tmp-"+strconv.FormatUint(rand.Uint64(), 10))
	f, err := os.Create(tmpFilename)
	if err != nil {
		return
	}
	_, err = io.Copy(f, blob)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpFilename)
		return
	}
	return os.Rename(tmpFilename, filename)
}

// ETag returns a strong entity tag for the content of r and rewinds it.
func ETag(r io.ReadSeeker) (tag string, err error) {
	hasher := xxh3.New()
	_, err = io.Copy(hasher, r)
	if err != nil {
		return
	}
	_, err = r.Seek(0, io.SeekStart)
	if err != nil {
		return
	}
	sum := hasher.Sum128().Bytes()
	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}
