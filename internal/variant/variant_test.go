package variant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	base, ext, ok := Split("/img/photo.jpg")
	require.True(t, ok)
	require.Equal(t, "/img/photo", base)
	require.Equal(t, "jpg", ext)

	base, ext, ok = Split("/img/archive.tar.gz")
	require.True(t, ok)
	require.Equal(t, "/img/archive.tar", base)
	require.Equal(t, "gz", ext)

	_, _, ok = Split("/img/noext")
	require.False(t, ok)

	base, ext, ok = Split("/img/trailing.")
	require.True(t, ok)
	require.Equal(t, "/img/trailing", base)
	require.Equal(t, "", ext)
}

func TestKey(t *testing.T) {
	require.Equal(t, "/img/photo_rrs_w640.jpg", Key("/img/photo", "640", "jpg"))
	require.True(t, IsVariant("/img/photo_rrs_w640.jpg"))
	require.False(t, IsVariant("/img/photo.jpg"))
}

func TestPlan(t *testing.T) {
	keys, err := Plan("uploads/my+cat.png", "image/png", []int{128, 256}, "")
	require.NoError(t, err)
	require.Equal(t, []string{
		"uploads/my cat_rrs_w128.png",
		"uploads/my cat_rrs_w256.png",
	}, keys)

	// the original's extension is kept, not derived from the content type
	keys, err = Plan("a/b/c.jpeg", "image/jpeg", []int{500}, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a/b/c_rrs_w500.jpeg"}, keys)

	keys, err = Plan("a/b.jpeg", "image/jpeg", []int{500}, "webp")
	require.NoError(t, err)
	require.Equal(t, []string{"a/b_rrs_w500.webp"}, keys)

	keys, err = Plan("a/b.png", "image/png", []int{500}, "jpg")
	require.NoError(t, err)
	require.Equal(t, []string{"a/b_rrs_w500.jpg"}, keys)

	keys, err = Plan("a/b.png", "image/png", []int{500}, "jpeg")
	require.NoError(t, err)
	require.Equal(t, []string{"a/b_rrs_w500.jpeg"}, keys)
}

func TestPlanRejects(t *testing.T) {
	_, err := Plan("doc.pdf", "application/pdf", []int{500}, "")
	require.ErrorIs(t, err, ErrNotImage)

	_, err = Plan("a_rrs_w500.jpg", "image/jpeg", []int{500}, "")
	require.ErrorIs(t, err, ErrAlreadyVariant)

	_, err = Plan("noext", "image/jpeg", []int{500}, "")
	require.ErrorIs(t, err, ErrNoExtension)

	_, err = Plan("a.gif", "image/gif", []int{500}, "")
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = Plan("a.jpg", "image/jpeg", []int{500}, "avif")
	require.ErrorIs(t, err, ErrUnsupported)

	// a gif is fine once the pipeline converts it to an override format
	_, err = Plan("a.gif", "image/gif", []int{500}, "webp")
	require.NoError(t, err)
}

func TestContentTypeFor(t *testing.T) {
	for ext, want := range map[string]string{
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"png":  "image/png",
		"webp": "image/webp",
	} {
		ct, ok := ContentTypeFor(ext)
		require.True(t, ok, ext)
		require.Equal(t, want, ct, ext)
	}
	_, ok := ContentTypeFor("avif")
	require.False(t, ok)
}

func TestTargetWidth(t *testing.T) {
	require.Equal(t, 640, TargetWidth(2000, 640, true))
	require.Equal(t, 300, TargetWidth(300, 640, true))
	require.Equal(t, 640, TargetWidth(300, 640, false))
	require.Equal(t, 640, TargetWidth(640, 640, true))
}
