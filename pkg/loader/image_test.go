package loader

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlimage-io/urlimage/pkg/util/ierr"
)

func TestDecodeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	img, err := decodeImage("http://example.com/a.png", pngBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds)
	assert.Equal(t, int64(pngBuf.Len()), img.Size())

	var jpegBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpegBuf, src, nil))
	img, err = decodeImage("http://example.com/a.jpg", jpegBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", img.Format)
}

func TestDecodeImageInvalid(t *testing.T) {
	_, err := decodeImage("http://example.com/a.png", []byte("not an image"))
	assert.ErrorIs(t, err, ierr.ErrDecode)
	assert.False(t, ierr.IsRetryable(err))

	_, err = decodeImage("http://example.com/empty.png", nil)
	assert.ErrorIs(t, err, ierr.ErrDecode)
}
