package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"

	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

var ErrBadRadiance = errors.New("malformed radiance image")

var radianceSignatures = [][]byte{[]byte("#?RADIANCE"), []byte("#?RGBE")}

func isRadiance(data []byte) bool {
	for _, sig := range radianceSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

/**
 * @brief Decodes a Radiance RGBE file with the standard "-Y h +X w"
 * orientation. Both flat and run length encoded scanlines are accepted.
 */
func decodeRadiance(data []byte, flipY bool) (metadata.Image, error) {
	// header ends with an empty line
	end := bytes.Index(data, []byte("\n\n"))
	if end < 0 {
		return metadata.Image{}, fmt.Errorf("%w: no header terminator", ErrBadRadiance)
	}
	header := data[:end]
	if bytes.Contains(header, []byte("FORMAT=")) && !bytes.Contains(header, []byte("FORMAT=32-bit_rle_rgbe")) {
		return metadata.Image{}, fmt.Errorf("%w: only 32-bit_rle_rgbe is supported", ErrBadRadiance)
	}
	rest := data[end+2:]

	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return metadata.Image{}, fmt.Errorf("%w: missing resolution", ErrBadRadiance)
	}
	var width, height int
	if _, err := fmt.Sscanf(string(rest[:nl]), "-Y %d +X %d", &height, &width); err != nil {
		return metadata.Image{}, fmt.Errorf("%w: resolution %q", ErrBadRadiance, rest[:nl])
	}
	if width <= 0 || height <= 0 {
		return metadata.Image{}, fmt.Errorf("%w: %dx%d", ErrBadRadiance, width, height)
	}
	body := rest[nl+1:]

	const channels = 3
	pixels := make([]byte, width*height*channels*4)
	scanline := make([]byte, width*4)
	for y := 0; y < height; y++ {
		n, err := readScanline(body, scanline, width)
		if err != nil {
			return metadata.Image{}, fmt.Errorf("%w: scanline %d: %s", ErrBadRadiance, y, err)
		}
		body = body[n:]

		row := y
		if flipY {
			row = height - 1 - y
		}
		out := pixels[row*width*channels*4:]
		for x := 0; x < width; x++ {
			r, g, b := rgbeToFloat(scanline[x*4], scanline[x*4+1], scanline[x*4+2], scanline[x*4+3])
			binary.LittleEndian.PutUint32(out[(x*channels+0)*4:], gomath.Float32bits(r))
			binary.LittleEndian.PutUint32(out[(x*channels+1)*4:], gomath.Float32bits(g))
			binary.LittleEndian.PutUint32(out[(x*channels+2)*4:], gomath.Float32bits(b))
		}
	}

	return metadata.Image{
		Width:       uint32(width),
		Height:      uint32(height),
		PixelFormat: metadata.PixelFormatRGB16F,
		Pixels:      pixels,
	}, nil
}

// readScanline fills dst with width RGBE quads and returns the bytes consumed.
func readScanline(src, dst []byte, width int) (int, error) {
	if len(src) < 4 {
		return 0, errors.New("truncated")
	}
	rle := width >= 8 && width <= 0x7fff && src[0] == 2 && src[1] == 2 && src[2]&0x80 == 0
	if !rle {
		if len(src) < width*4 {
			return 0, errors.New("truncated")
		}
		copy(dst, src[:width*4])
		return width * 4, nil
	}
	if int(src[2])<<8|int(src[3]) != width {
		return 0, errors.New("scanline width mismatch")
	}

	pos := 4
	// channels are stored one after the other
	for c := 0; c < 4; c++ {
		for x := 0; x < width; {
			if pos >= len(src) {
				return 0, errors.New("truncated")
			}
			count := int(src[pos])
			pos++
			if count > 128 {
				count -= 128
				if x+count > width || pos >= len(src) {
					return 0, errors.New("run overflows scanline")
				}
				value := src[pos]
				pos++
				for i := 0; i < count; i++ {
					dst[(x+i)*4+c] = value
				}
			} else {
				if count == 0 || x+count > width || pos+count > len(src) {
					return 0, errors.New("bad literal run")
				}
				for i := 0; i < count; i++ {
					dst[(x+i)*4+c] = src[pos+i]
				}
				pos += count
			}
			x += count
		}
	}
	return pos, nil
}

func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	f := float32(gomath.Ldexp(1, int(e)-(128+8)))
	return float32(r) * f, float32(g) * f, float32(b) * f
}
