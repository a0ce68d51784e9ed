package topoprep

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	// Source image decoders. JPEG is registered through image/jpeg above.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// outputFileMode is the permission of written images.
const outputFileMode os.FileMode = 0644

// canonicalFilter is the bicubic resampling filter for the final resize.
var canonicalFilter = imaging.CatmullRom

// CenterCropRect returns the largest square centered in bounds. Odd remainders are rounded
// towards the top-left corner.
func CenterCropRect(bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	side := w
	if h < side {
		side = h
	}

	x0 := bounds.Min.X + (w-side)/2
	y0 := bounds.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// Canonicalize converts img to opaque RGB, crops the centered square and resizes it to
// size x size.
func Canonicalize(img image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid target size %d", size)
	}
	if img.Bounds().Empty() {
		return nil, errors.New("empty source image")
	}

	rgb := toRGB(img)
	square := imaging.Crop(rgb, CenterCropRect(rgb.Bounds()))
	return imaging.Resize(square, size, size, canonicalFilter), nil
}

// toRGB returns an NRGBA copy of img with all alpha values set to opaque. Colour values are kept
// as they are, the alpha channel is dropped rather than composited.
func toRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// loadImage reads and decodes the image at path. A missing file is reported as a
// MissingSourceError, any other failure as a DecodeError.
func loadImage(path string) (img image.Image, format string, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", newError(MissingSourceError, path, err)
		}
		return nil, "", newError(DecodeError, path, err)
	}
	defer closeWithErrCheck(f, &err)

	img, format, err = image.Decode(f)
	if err != nil {
		return nil, "", newError(DecodeError, path, err)
	}
	return img, format, nil
}

// saveJPEG encodes img as JPEG into a temporary file in the directory of path and renames it to
// path. No partially written file is left at path or in its directory on failure.
func saveJPEG(path string, img image.Image, jpegQuality int) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return newError(WriteError, path, err)
	}
	tmpPath := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	// CreateTemp opens the file as 0600.
	if err = f.Chmod(outputFileMode); err != nil {
		_ = f.Close()
		return newError(WriteError, path, err)
	}
	if err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = f.Close()
		return newError(WriteError, path, errors.Wrap(err, "failed to encode JPEG"))
	}
	if err = f.Close(); err != nil {
		return newError(WriteError, path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return newError(WriteError, path, err)
	}

	return nil
}
