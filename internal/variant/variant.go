package variant

import (
	"errors"
	"strconv"
	"strings"
)

// Marker separates the original key from the variant width.
const Marker = "_rrs_w"

var (
	ErrNotImage       = errors.New("object is not an image")
	ErrUnsupported    = errors.New("unsupported image format")
	ErrAlreadyVariant = errors.New("object is already a resized variant")
	ErrNoExtension    = errors.New("object key has no extension")
)

// Key returns the key of the variant of base at the given width, in the
// format ext. width is used verbatim.
func Key(base, width, ext string) string {
	return base + Marker + width + "." + ext
}

// Split splits a key at its last '.' into base and extension. ok is false
// when the key has no '.' at all.
func Split(key string) (base, ext string, ok bool) {
	i := strings.LastIndexByte(key, '.')
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

func IsVariant(key string) bool {
	return strings.Contains(key, Marker)
}

func ExtensionFor(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg":
		return "jpg", true
	case "image/png":
		return "png", true
	case "image/webp":
		return "webp", true
	}
	return "", false
}

// ContentTypeFor is the format the resize pipeline writes for a variant
// extension.
func ContentTypeFor(ext string) (string, bool) {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg", true
	case "png":
		return "image/png", true
	case "webp":
		return "image/webp", true
	}
	return "", false
}

// Plan lists the variant keys the resize pipeline has to produce for an
// uploaded original, named exactly as the rewriter requests them. key is
// taken as it arrives in a storage event, with spaces encoded as '+'.
//
// Without an override a variant keeps the extension of the original and is
// written in the original's format; with one the override is used verbatim.
// Keys without an extension are never rewritten, so they have no variants.
func Plan(key, contentType string, sizes []int, override string) (keys []string, err error) {
	key = strings.ReplaceAll(key, "+", " ")
	if !strings.HasPrefix(contentType, "image/") {
		err = ErrNotImage
		return
	}
	if IsVariant(key) {
		err = ErrAlreadyVariant
		return
	}
	base, ext, ok := Split(key)
	if !ok {
		err = ErrNoExtension
		return
	}
	if override != "" {
		ext = override
		_, ok = ContentTypeFor(override)
	} else {
		_, ok = ExtensionFor(contentType)
	}
	if !ok {
		err = ErrUnsupported
		return
	}
	keys = make([]string, len(sizes))
	for i, w := range sizes {
		keys[i] = Key(base, strconv.Itoa(w), ext)
	}
	return
}

// TargetWidth is the width a variant is rendered at. With skipUpscaling an
// original narrower than width keeps its own width; the variant is still
// stored under the requested width.
func TargetWidth(srcWidth, width int, skipUpscaling bool) int {
	if skipUpscaling && srcWidth <= width {
		return srcWidth
	}
	return width
}
