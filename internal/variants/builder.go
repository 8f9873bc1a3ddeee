// Package variants derives the ordered set of preprocessed image
// crops submitted to the OCR engine, per zone and mode.
package variants

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/pantrysnap/labelreader/constants"
)

// minCropEdge is the smallest usable crop dimension. Rectangles are
// clamped to image bounds and rejected below this.
const minCropEdge = 40

// Variant is one immutable preprocessed crop/transform. Variants are
// generated, consumed once, and discarded.
type Variant struct {
	Zone constants.RecognitionZone
	Desc string          // transform description, e.g. "band-top/threshold"
	Rect image.Rectangle // crop rectangle in source coordinates
	Img  image.Image
}

// Set is the per-request variant list, grouped by zone in priority
// order.
type Set struct {
	General []Variant
	Brand   []Variant
	Size    []Variant

	// Primary is the orientation-normalized, edge-bounded source
	// image; it backs the cloud fallback call.
	Primary image.Image
}

// Builder produces variant sets. It never fails a request on a
// transform error: any failed filter degrades to the untransformed
// crop.
type Builder struct {
	maxEdge int
	log     *slog.Logger
}

func NewBuilder(maxEdge int, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	if maxEdge <= 0 {
		maxEdge = 1600
	}
	return &Builder{maxEdge: maxEdge, log: log}
}

// Build decodes the payload and derives all zone variants for the
// mode. Orientation normalization is skipped entirely in fast mode and
// best effort in thorough mode.
func (b *Builder) Build(data []byte, mode constants.Mode) (*Set, error) {
	var opts []imaging.DecodeOption
	if mode == constants.ModeThorough {
		opts = append(opts, imaging.AutoOrientation(true))
	}
	img, err := imaging.Decode(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = b.boundEdge(img)

	set := &Set{Primary: img}
	set.General = b.generalVariants(img, mode)
	set.Brand = b.brandVariants(img, mode)
	set.Size = b.sizeVariants(img, mode)

	b.log.Debug("variants.built",
		"mode", string(mode),
		"general", len(set.General),
		"brand", len(set.Brand),
		"size", len(set.Size),
	)
	return set, nil
}

// boundEdge shrinks the image so its longest edge is at most maxEdge,
// bounding recognition latency.
func (b *Builder) boundEdge(img image.Image) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= b.maxEdge && h <= b.maxEdge {
		return img
	}
	if w >= h {
		return imaging.Resize(img, b.maxEdge, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, b.maxEdge, imaging.Lanczos)
}

func (b *Builder) generalVariants(img image.Image, mode constants.Mode) []Variant {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	full := image.Rect(0, 0, w, h)

	out := []Variant{{
		Zone: constants.ZoneGeneral,
		Desc: "full/sharpen",
		Rect: full,
		Img:  b.safeFilter(img, sharpen),
	}}
	if mode != constants.ModeThorough {
		return out
	}

	bands := []struct {
		desc string
		rect image.Rectangle
	}{
		{"band-top", image.Rect(0, 0, w, h/3)},
		{"band-middle", image.Rect(0, h/3, w, 2*h/3)},
		{"band-bottom", image.Rect(0, 2*h/3, w, h)},
		{"center", image.Rect(w/4, h/4, 3*w/4, 3*h/4)},
	}
	for _, band := range bands {
		crop, ok := b.crop(img, band.rect)
		if !ok {
			continue
		}
		out = append(out, Variant{
			Zone: constants.ZoneGeneral,
			Desc: band.desc + "/sharpen",
			Rect: band.rect,
			Img:  b.safeFilter(crop, sharpen),
		})
	}
	// Threshold variants recover text a plain pass misses on busy
	// backgrounds. Top and middle bands carry the name most often.
	for _, band := range bands[:2] {
		crop, ok := b.crop(img, band.rect)
		if !ok {
			continue
		}
		out = append(out, Variant{
			Zone: constants.ZoneGeneral,
			Desc: band.desc + "/threshold",
			Rect: band.rect,
			Img:  b.safeFilter(crop, threshold),
		})
	}
	return out
}

func (b *Builder) brandVariants(img image.Image, mode constants.Mode) []Variant {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	rect := image.Rect(w/6, 0, 5*w/6, h/4)
	crop, ok := b.crop(img, rect)
	if !ok {
		crop, rect = img, image.Rect(0, 0, w, h)
	}

	out := []Variant{{
		Zone: constants.ZoneBrand,
		Desc: "band-brand/plain",
		Rect: rect,
		Img:  crop,
	}}
	if mode == constants.ModeThorough {
		out = append(out,
			Variant{
				Zone: constants.ZoneBrand,
				Desc: "band-brand/threshold",
				Rect: rect,
				Img:  b.safeFilter(crop, threshold),
			},
			Variant{
				Zone: constants.ZoneBrand,
				Desc: "band-brand/threshold-invert",
				Rect: rect,
				Img:  b.safeFilter(crop, thresholdInvert),
			},
		)
	}
	return out
}

func (b *Builder) sizeVariants(img image.Image, mode constants.Mode) []Variant {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	rect := image.Rect(w/2, 2*h/3, w, h)
	crop, ok := b.crop(img, rect)
	if !ok {
		crop, rect = img, image.Rect(0, 0, w, h)
	}

	out := []Variant{{
		Zone: constants.ZoneSize,
		Desc: "band-size/plain",
		Rect: rect,
		Img:  crop,
	}}
	if mode == constants.ModeThorough {
		out = append(out, Variant{
			Zone: constants.ZoneSize,
			Desc: "band-size/threshold-invert",
			Rect: rect,
			Img:  b.safeFilter(crop, thresholdInvert),
		})
	}
	return out
}

// crop clamps the rectangle to image bounds and rejects crops smaller
// than minCropEdge on either side.
func (b *Builder) crop(img image.Image, rect image.Rectangle) (image.Image, bool) {
	clamped := rect.Intersect(img.Bounds())
	if clamped.Dx() < minCropEdge || clamped.Dy() < minCropEdge {
		return nil, false
	}
	return imaging.Crop(img, clamped), true
}

// safeFilter applies a filter, degrading to the input image if the
// filter panics. The builder never fails a request over a transform.
func (b *Builder) safeFilter(img image.Image, f func(image.Image) image.Image) (out image.Image) {
	out = img
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("variants.filter_failed", "panic", r)
		}
	}()
	if filtered := f(img); filtered != nil {
		out = filtered
	}
	return out
}

func sharpen(img image.Image) image.Image {
	return imaging.Sharpen(img, 0.6)
}

func threshold(img image.Image) image.Image {
	gray := imaging.AdjustContrast(imaging.Grayscale(img), 15)
	return segment.Threshold(gray, 200)
}

func thresholdInvert(img image.Image) image.Image {
	return imaging.Invert(threshold(img))
}
