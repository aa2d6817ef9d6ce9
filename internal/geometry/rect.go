// Package geometry converts annotation rectangles between source-image pixel
// space and resolution-independent ratio space.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimension is returned when an image width or height is not positive.
var ErrInvalidDimension = errors.New("image dimensions must be positive")

// ratioScale is 10^4: ratios are kept to 4 decimal places.
const ratioScale = 10000

// PixelRect is a rectangle in source image pixels.
type PixelRect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// String formats the rectangle as (x, y, WxH).
func (p PixelRect) String() string {
	return fmt.Sprintf("(%d, %d, %dx%d)", p.X, p.Y, p.Width, p.Height)
}

// RatioRect is a rectangle expressed as fractions of the image width and height.
type RatioRect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Valid reports whether the rectangle lies inside the unit square and has a
// non-zero area.
func (r RatioRect) Valid() bool {
	return inUnit(r.X) && inUnit(r.Y) && inUnit(r.Width) && inUnit(r.Height) &&
		r.X+r.Width <= 1 && r.Y+r.Height <= 1 &&
		r.Width > 0 && r.Height > 0
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// Round4 rounds v to 4 decimal places, half away from zero.
func Round4(v float64) float64 {
	return math.Round(v*ratioScale) / ratioScale
}

// ToRatio converts a pixel rectangle to ratio coordinates of an image of the
// given size. Each component is rounded to 4 decimals independently, so
// ToPixels(ToRatio(p)) is within one pixel of p only for images up to 10000
// pixels per side.
func ToRatio(p PixelRect, imageWidth, imageHeight int) (RatioRect, error) {
	if err := checkDimensions(imageWidth, imageHeight); err != nil {
		return RatioRect{}, err
	}
	w := float64(imageWidth)
	h := float64(imageHeight)
	return RatioRect{
		X:      Round4(float64(p.X) / w),
		Y:      Round4(float64(p.Y) / h),
		Width:  Round4(float64(p.Width) / w),
		Height: Round4(float64(p.Height) / h),
	}, nil
}

// ToPixels converts ratio coordinates back to pixels of an image of the given
// size, rounding to the nearest pixel. See ToRatio for the round-trip bound.
func ToPixels(r RatioRect, imageWidth, imageHeight int) (PixelRect, error) {
	if err := checkDimensions(imageWidth, imageHeight); err != nil {
		return PixelRect{}, err
	}
	w := float64(imageWidth)
	h := float64(imageHeight)
	return PixelRect{
		X:      int(math.Round(r.X * w)),
		Y:      int(math.Round(r.Y * h)),
		Width:  int(math.Round(r.Width * w)),
		Height: int(math.Round(r.Height * h)),
	}, nil
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimension, width, height)
	}
	return nil
}
