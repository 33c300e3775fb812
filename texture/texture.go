// Package texture produces the single-channel 8-bit textures sampled by the
// textured mesh technique.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// Size is the edge length of the textures the renderer uploads.
const Size = 256

// ErrDecode is returned when an image cannot be decoded.
var ErrDecode = errors.New("texture: decode failed")

// Texels holds a square R8 texture in row-major order.
type Texels struct {
	Size uint32
	Data []byte
}

// Mandelbrot renders the escape-time count of the Mandelbrot set over the
// region [-2, 1] x [-1, 1] into a size x size texture. Each texel is the
// number of iterations before escape, capped at 255.
func Mandelbrot(size uint32) Texels {
	if size < 2 {
		size = 2
	}
	data := make([]byte, size*size)
	scale := float32(size - 1)
	for id := range data {
		cx := 3*float32(uint32(id)%size)/scale - 2
		cy := 2*float32(uint32(id)/size)/scale - 1
		x, y := cx, cy
		count := 0
		for count < 0xFF && x*x+y*y < 4 {
			x, y = x*x-y*y+cx, 2*x*y+cy
			count++
		}
		data[id] = byte(count)
	}
	return Texels{Size: size, Data: data}
}

// Decode reads an image and converts it to Size x Size luminance texels.
// Any format registered with the image package is accepted.
func Decode(r io.Reader) (Texels, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return Texels{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return FromImage(src), nil
}

// Load decodes the image file at path. See Decode.
func Load(path string) (Texels, error) {
	f, err := os.Open(path)
	if err != nil {
		return Texels{}, fmt.Errorf("texture: %w", err)
	}
	defer f.Close()
	t, err := Decode(f)
	if err != nil {
		return Texels{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// FromImage rescales img to Size x Size and converts it to luminance.
func FromImage(img image.Image) Texels {
	dst := image.NewGray(image.Rect(0, 0, Size, Size))
	if img.Bounds().Dx() == Size && img.Bounds().Dy() == Size {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	data := make([]byte, Size*Size)
	for y := range Size {
		copy(data[y*Size:(y+1)*Size], dst.Pix[y*dst.Stride:y*dst.Stride+Size])
	}
	return Texels{Size: Size, Data: data}
}

// Image returns the texels as a grayscale image, for debugging dumps.
func (t Texels) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, int(t.Size), int(t.Size)))
	for i, v := range t.Data {
		img.SetGray(i%int(t.Size), i/int(t.Size), color.Gray{Y: v})
	}
	return img
}
