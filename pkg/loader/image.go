package loader

import (
	"bytes"
	"image"

	// registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/urlimage-io/urlimage/pkg/util/ierr"
)

// Image is the decoded payload of a load. Instances are shared between the
// cache and every observer of a key; treat them as immutable.
type Image struct {
	// Raw is the fetched encoded bytes.
	Raw []byte
	// Format is the registered decoder name, e.g. "png".
	Format string
	// Bounds is the pixel rectangle of the decoded image.
	Bounds image.Rectangle
	// Decoded is the decoded pixel data.
	Decoded image.Image
}

// Size returns the approximate byte cost charged against the cache capacity.
func (img *Image) Size() int64 {
	return int64(len(img.Raw))
}

func decodeImage(key string, raw []byte) (*Image, error) {
	decoded, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ierr.WrapErrDecode(key, err)
	}
	return &Image{
		Raw:     raw,
		Format:  format,
		Bounds:  decoded.Bounds(),
		Decoded: decoded,
	}, nil
}
