package geometry

import (
	"errors"
	"testing"
)

func TestToRatio(t *testing.T) {
	tests := []struct {
		name string
		rect PixelRect
		w, h int
		want RatioRect
	}{
		{
			name: "origin box",
			rect: PixelRect{X: 0, Y: 0, Width: 10, Height: 10},
			w:    100, h: 100,
			want: RatioRect{X: 0, Y: 0, Width: 0.1, Height: 0.1},
		},
		{
			name: "offset box",
			rect: PixelRect{X: 10, Y: 10, Width: 10, Height: 10},
			w:    100, h: 100,
			want: RatioRect{X: 0.1, Y: 0.1, Width: 0.1, Height: 0.1},
		},
		{
			name: "rounds to four decimals",
			rect: PixelRect{X: 1, Y: 2, Width: 1, Height: 1},
			w:    3, h: 3,
			want: RatioRect{X: 0.3333, Y: 0.6667, Width: 0.3333, Height: 0.3333},
		},
		{
			name: "non-square image",
			rect: PixelRect{X: 200, Y: 150, Width: 400, Height: 75},
			w:    800, h: 600,
			want: RatioRect{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.125},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToRatio(tt.rect, tt.w, tt.h)
			if err != nil {
				t.Fatalf("ToRatio() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ToRatio() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestToRatio_InvalidDimension(t *testing.T) {
	for _, dims := range [][2]int{{0, 100}, {100, 0}, {-1, 100}, {100, -5}} {
		_, err := ToRatio(PixelRect{Width: 1, Height: 1}, dims[0], dims[1])
		if !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("ToRatio(%dx%d) error = %v, want ErrInvalidDimension", dims[0], dims[1], err)
		}
		_, err = ToPixels(RatioRect{Width: 0.1, Height: 0.1}, dims[0], dims[1])
		if !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("ToPixels(%dx%d) error = %v, want ErrInvalidDimension", dims[0], dims[1], err)
		}
	}
}

func TestToPixels(t *testing.T) {
	got, err := ToPixels(RatioRect{X: 0.25, Y: 0.1, Width: 0.5, Height: 0.33335}, 800, 600)
	if err != nil {
		t.Fatalf("ToPixels() error = %v", err)
	}
	want := PixelRect{X: 200, Y: 60, Width: 400, Height: 200}
	if got != want {
		t.Errorf("ToPixels() = %+v, want %+v", got, want)
	}
}

func TestRoundTripWithinOnePixel(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 7}, {100, 100}, {1240, 1754}, {2480, 3508}, {9999, 10000}}
	for _, size := range sizes {
		w, h := size[0], size[1]
		for _, step := range []int{1, 3, 7, 13} {
			for x := 0; x < w; x += max(1, w/step) {
				for y := 0; y < h; y += max(1, h/step) {
					p := PixelRect{X: x, Y: y, Width: w - x, Height: h - y}
					r, err := ToRatio(p, w, h)
					if err != nil {
						t.Fatalf("ToRatio() error = %v", err)
					}
					back, err := ToPixels(r, w, h)
					if err != nil {
						t.Fatalf("ToPixels() error = %v", err)
					}
					if absDiff(back.X, p.X) > 1 || absDiff(back.Y, p.Y) > 1 ||
						absDiff(back.Width, p.Width) > 1 || absDiff(back.Height, p.Height) > 1 {
						t.Fatalf("round trip %v on %dx%d gave %v", p, w, h, back)
					}
				}
			}
		}
	}
}

func TestRatioRect_Valid(t *testing.T) {
	tests := []struct {
		name string
		rect RatioRect
		want bool
	}{
		{"inside", RatioRect{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4}, true},
		{"touches edges", RatioRect{X: 0, Y: 0, Width: 1, Height: 1}, true},
		{"negative x", RatioRect{X: -0.1, Y: 0.2, Width: 0.3, Height: 0.4}, false},
		{"overflows right", RatioRect{X: 0.8, Y: 0.2, Width: 0.3, Height: 0.4}, false},
		{"overflows bottom", RatioRect{X: 0.1, Y: 0.7, Width: 0.3, Height: 0.4}, false},
		{"zero width", RatioRect{X: 0.1, Y: 0.2, Width: 0, Height: 0.4}, false},
		{"zero height", RatioRect{X: 0.1, Y: 0.2, Width: 0.3, Height: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRound4(t *testing.T) {
	tests := map[float64]float64{
		0.070710678: 0.0707,
		0.05:        0.05,
		0.12346:     0.1235,
		-0.12346:    -0.1235,
		1:           1,
	}
	for in, want := range tests {
		if got := Round4(in); got != want {
			t.Errorf("Round4(%v) = %v, want %v", in, got, want)
		}
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
