package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

var ErrNotAnImage = errors.New("not an image")

/**
 * @brief Decodes image files into tightly packed pixels ready for a texture
 * upload. LDR formats come out as RGBA8, Radiance HDR files as RGB16F.
 */
type ImageLoader struct{}

// Load reads path and decodes it. params may be a metadata.ImageParams or nil.
func (il *ImageLoader) Load(path string, params interface{}) (interface{}, error) {
	var p metadata.ImageParams
	switch v := params.(type) {
	case nil:
	case metadata.ImageParams:
		p = v
	case *metadata.ImageParams:
		p = *v
	default:
		return nil, fmt.Errorf("image loader: params %T: %w", params, core.ErrInvalidArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(data, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func DecodeImage(data []byte, params metadata.ImageParams) (metadata.Image, error) {
	if isRadiance(data) {
		return decodeRadiance(data, params.FlipY)
	}
	if !filetype.IsImage(data) {
		return metadata.Image{}, ErrNotAnImage
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return metadata.Image{}, err
	}

	rgba := clone.AsRGBA(src)
	if params.FlipY {
		rgba = transform.FlipV(rgba)
	}

	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
		copy(pixels[y*width*4:], row)
	}

	core.LogDebug("decoded %s image %dx%d", format, width, height)
	return metadata.Image{
		Width:       uint32(width),
		Height:      uint32(height),
		PixelFormat: metadata.PixelFormatRGBA8,
		Pixels:      pixels,
	}, nil
}
