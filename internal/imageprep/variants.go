// Package imageprep builds the preprocessed image variants fed to the OCR
// engine. Japanese print mixes horizontal and vertical layouts, low-contrast
// menus and light-on-dark signage; each variant targets one of these failure
// modes and carries a reliability weight used to scale engine confidence.
package imageprep

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// Variant reliability weights. Tuned against a fixed set of sample photos;
// changing them silently shifts the precision/recall balance.
const (
	weightOriginal  = 1.0
	weightContrast  = 0.92
	weightThreshold = 0.88
	weightRotateCCW = 0.85
	weightRotateCW  = 0.83
	weightInverted  = 0.80

	// darkBackgroundLuma is the mean-luminance cutoff (0–255) below which an
	// image is treated as light-on-dark and an inverted variant is added.
	darkBackgroundLuma = 128

	contrastBoost = 40
)

// Generator produces the variant list for one input image.
type Generator struct {
	log zerolog.Logger
}

// NewGenerator creates a variant generator.
func NewGenerator() *Generator {
	return &Generator{log: logger.WithComponent("imageprep")}
}

// Generate returns the ordered variant list for img. The unmodified original
// is always first with weight 1.0. Every other variant is derived
// independently from the original; a variant whose construction fails is
// skipped, and if everything fails the original alone is returned.
func (g *Generator) Generate(img image.Image) []models.ImageVariant {
	variants := []models.ImageVariant{
		{ID: "original", Image: img, Weight: weightOriginal},
	}

	mean := meanLuma(img)

	builders := []struct {
		id     string
		weight float64
		build  func() image.Image
	}{
		{"contrast", weightContrast, func() image.Image {
			return imaging.AdjustContrast(imaging.Grayscale(img), contrastBoost)
		}},
		{"threshold", weightThreshold, func() image.Image {
			return binarize(img, mean)
		}},
		{"rotate-ccw", weightRotateCCW, func() image.Image {
			return imaging.Rotate90(img)
		}},
		{"rotate-cw", weightRotateCW, func() image.Image {
			return imaging.Rotate270(img)
		}},
	}
	if mean < darkBackgroundLuma {
		builders = append(builders, struct {
			id     string
			weight float64
			build  func() image.Image
		}{"inverted", weightInverted, func() image.Image {
			return imaging.Invert(img)
		}})
	}

	for _, b := range builders {
		out := g.tryBuild(b.id, b.build)
		if out == nil {
			continue
		}
		variants = append(variants, models.ImageVariant{ID: b.id, Image: out, Weight: b.weight})
	}

	g.log.Debug().
		Int("variants", len(variants)).
		Float64("mean_luma", mean).
		Msg("image variants generated")

	return variants
}

// tryBuild runs one variant builder, converting raster panics into a skipped
// variant.
func (g *Generator) tryBuild(id string, build func() image.Image) (out image.Image) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Warn().Str("variant", id).Interface("panic", r).
				Msg("variant construction failed, skipping")
			out = nil
		}
	}()
	out = build()
	if out != nil && out.Bounds().Empty() {
		return nil
	}
	return out
}

// meanLuma computes the mean luminance of img on a 0–255 scale using the
// Rec. 601 weights 0.299R + 0.587G + 0.114B.
func meanLuma(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}
	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gr, b, _ := img.At(x, y).RGBA()
			sum += 0.299*float64(r>>8) + 0.587*float64(gr>>8) + 0.114*float64(b>>8)
		}
	}
	return sum / float64(bounds.Dx()*bounds.Dy())
}

// binarize thresholds every pixel against the image's own mean luma,
// producing a pure black/white copy.
func binarize(img image.Image, mean float64) image.Image {
	gray := imaging.Grayscale(img)
	threshold := uint8(mean)
	return imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		// Grayscale image, so the red channel is the brightness.
		if c.R > threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
}
