package image1bit

import (
	"image"
	"image/color"
	"testing"
)

func TestBitRGBA(t *testing.T) {
	r, g, b, a := On.RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF || a != 0xFFFF {
		t.Errorf("On.RGBA() = (%x, %x, %x, %x), want all 0xFFFF", r, g, b, a)
	}
	r, g, b, a = Off.RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0xFFFF {
		t.Errorf("Off.RGBA() = (%x, %x, %x, %x), want (0, 0, 0, 0xFFFF)", r, g, b, a)
	}
}

func TestBitModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  Bit
	}{
		{"bit passthrough on", On, On},
		{"bit passthrough off", Off, Off},
		{"black", color.Black, Off},
		{"white", color.White, On},
		{"dark gray", color.Gray{Y: 0x40}, Off},
		{"light gray", color.Gray{Y: 0xC0}, On},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BitModel.Convert(tt.input).(Bit); got != tt.want {
				t.Errorf("BitModel.Convert(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewHorizontalMSB(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantPanic  bool
		wantStride int
		wantPixLen int
	}{
		{"800x480", image.Rect(0, 0, 800, 480), false, 100, 48000},
		{"8x2", image.Rect(0, 0, 8, 2), false, 1, 2},
		{"offset rect", image.Rect(10, 20, 18, 22), false, 1, 2},
		{"unaligned width panics", image.Rect(0, 0, 10, 2), true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if (r != nil) != tt.wantPanic {
					t.Errorf("panic = %v, want panic = %v", r != nil, tt.wantPanic)
				}
			}()

			img := NewHorizontalMSB(tt.rect)
			if !tt.wantPanic {
				if img.Stride != tt.wantStride {
					t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
				}
				if len(img.Pix) != tt.wantPixLen {
					t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
				}
			}
		})
	}
}

func TestHorizontalMSBBitPacking(t *testing.T) {
	img := NewHorizontalMSB(image.Rect(0, 0, 8, 1))

	// 1,0,1,1,0,0,0,1 -> 0b10110001
	for x, on := range []Bit{On, Off, On, On, Off, Off, Off, On} {
		img.SetBit(x, 0, on)
	}
	if img.Pix[0] != 0xB1 {
		t.Errorf("Pix[0] = 0x%02X, want 0xB1", img.Pix[0])
	}
}

func TestHorizontalMSBSetGet(t *testing.T) {
	img := NewHorizontalMSB(image.Rect(0, 0, 16, 2))

	img.SetBit(0, 0, On)
	img.SetBit(9, 1, On)
	img.SetBit(9, 1, Off)
	img.SetBit(15, 1, On)

	if got := img.BitAt(0, 0); got != On {
		t.Errorf("BitAt(0, 0) = %v, want On", got)
	}
	if got := img.BitAt(9, 1); got != Off {
		t.Errorf("BitAt(9, 1) = %v, want Off after clear", got)
	}
	if got := img.BitAt(15, 1); got != On {
		t.Errorf("BitAt(15, 1) = %v, want On", got)
	}
}

func TestHorizontalMSBOutOfBounds(t *testing.T) {
	img := NewHorizontalMSB(image.Rect(0, 0, 8, 2))

	img.SetBit(-1, 0, On)
	img.SetBit(8, 0, On)
	img.SetBit(0, 2, On)
	for i, b := range img.Pix {
		if b != 0 {
			t.Errorf("Pix[%d] = 0x%02X after out-of-bounds Set, want 0", i, b)
		}
	}

	if got := img.BitAt(-1, 0); got != Off {
		t.Errorf("BitAt(-1, 0) = %v, want Off", got)
	}
}

func TestHorizontalMSBSetColor(t *testing.T) {
	img := NewHorizontalMSB(image.Rect(0, 0, 8, 1))

	img.Set(0, 0, color.White)
	img.Set(1, 0, color.Black)
	if got := img.BitAt(0, 0); got != On {
		t.Errorf("after Set(white), BitAt(0, 0) = %v, want On", got)
	}
	if got := img.BitAt(1, 0); got != Off {
		t.Errorf("after Set(black), BitAt(1, 0) = %v, want Off", got)
	}

	c := img.At(0, 0)
	if b, ok := c.(Bit); !ok || b != On {
		t.Errorf("At(0, 0) = %v (%T), want On", c, c)
	}
}

func TestHorizontalMSBColorModelAndBounds(t *testing.T) {
	rect := image.Rect(0, 0, 8, 4)
	img := NewHorizontalMSB(rect)
	if img.ColorModel() != BitModel {
		t.Error("ColorModel() did not return BitModel")
	}
	if img.Bounds() != rect {
		t.Errorf("Bounds() = %v, want %v", img.Bounds(), rect)
	}
}
