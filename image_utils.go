package lbltile

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register the BMP decoder.
	_ "golang.org/x/image/tiff" // Register the TIFF decoder, common for satellite scenes.
	_ "golang.org/x/image/webp" // Register the WebP decoder.
)

// decodeImageConfig opens the file at path and returns the results of image.DecodeConfig.
func decodeImageConfig(path string) (config image.Config, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer file.Close()

	return image.DecodeConfig(file)
}

// loadImage reads and decodes the image at path.
func loadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %q: %v", path, err)
	}
	return img, nil
}

// saveImage saves the image to path, selecting the encoding from the file extension of path.
func saveImage(path string, img image.Image, jpegQuality int) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to save image %q: %v", path, err)
	}
	return nil
}

// outputImageExt returns the file extension (with the dot) for images derived from srcPath.
//
// A non-empty encoding ("jpg", "png", ...) takes precedence over the source extension. Sources
// that cannot be encoded (e.g. WebP) fall back to PNG.
func outputImageExt(srcPath, encoding string) (string, error) {
	if encoding != "" {
		ext := "." + strings.TrimPrefix(strings.ToLower(encoding), ".")
		if _, err := imaging.FormatFromExtension(ext); err != nil {
			return "", fmt.Errorf("unsupported output encoding %q", encoding)
		}
		return ext, nil
	}

	ext := filepath.Ext(srcPath)
	if _, err := imaging.FormatFromExtension(ext); err != nil {
		log.Printf("Cannot encode %q images, using PNG for tiles of %q", ext, srcPath)
		return ".png", nil
	}
	return ext, nil
}

// downsample shrinks img so that its longer side is at most longerSide pixels. Smaller images are
// returned unchanged.
func downsample(img image.Image, longerSide int) image.Image {
	b := img.Bounds()
	if longerSide <= 0 || (b.Dx() <= longerSide && b.Dy() <= longerSide) {
		return img
	}
	if b.Dx() >= b.Dy() {
		return imaging.Resize(img, longerSide, 0, imaging.Box)
	}
	return imaging.Resize(img, 0, longerSide, imaging.Box)
}
