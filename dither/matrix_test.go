package dither

import (
	"errors"
	"testing"
)

func TestNewMatrixValidation(t *testing.T) {
	tests := []struct {
		name       string
		thresholds [][]float64
		wantErr    bool
	}{
		{"valid 2x2", [][]float64{{0, 128}, {64, 192}}, false},
		{"valid 1x1", [][]float64{{127}}, false},
		{"empty", nil, true},
		{"non-square", [][]float64{{0, 128, 64}, {64, 192, 0}}, true},
		{"ragged", [][]float64{{0, 128}, {64}}, true},
		{"negative threshold", [][]float64{{0, -1}, {64, 192}}, true},
		{"threshold above 255", [][]float64{{0, 300}, {64, 192}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatrix("test", tt.thresholds)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMatrix error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidMatrix) {
				t.Errorf("error = %v, want ErrInvalidMatrix", err)
			}
		})
	}
}

func TestMatrixRegistry(t *testing.T) {
	for _, name := range MatrixNames() {
		m, ok := MatrixByName(name)
		if !ok {
			t.Fatalf("MatrixByName(%q) not found", name)
		}
		if m.Name != name {
			t.Errorf("matrix registered as %q has Name %q", name, m.Name)
		}
		if err := m.validate(); err != nil {
			t.Errorf("registered matrix %q invalid: %v", name, err)
		}
	}

	if _, ok := MatrixByName("no-such-matrix"); ok {
		t.Error("MatrixByName returned a matrix for an unknown name")
	}
}

func TestBayer8Scaling(t *testing.T) {
	// Index matrix entries scale by 256/64 = 4.
	tests := []struct {
		r, c int
		want float64
	}{
		{0, 0, 0},
		{0, 1, 128},
		{1, 0, 192},
		{7, 0, 252},
		{4, 4, 4},
	}

	for _, tt := range tests {
		if got := Bayer8.Thresholds[tt.r][tt.c]; got != tt.want {
			t.Errorf("Bayer8[%d][%d] = %v, want %v", tt.r, tt.c, got, tt.want)
		}
	}
}

func TestOrderedGolden(t *testing.T) {
	// 2x2 buffer against a 2x2 matrix; effective thresholds carry the
	// half-step bias of 128/4 = 32, so 10 stays black under threshold 0.
	m, err := NewMatrix("test2", [][]float64{{0, 128}, {64, 192}})
	if err != nil {
		t.Fatal(err)
	}
	b := &Buffer{Pix: []float64{10, 200, 50, 180}, W: 2, H: 2}
	if err := Ordered(b, m); err != nil {
		t.Fatal(err)
	}

	want := []float64{0, 255, 0, 0}
	for i, v := range b.Pix {
		if v != want[i] {
			t.Errorf("Pix[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestOrderedTiling(t *testing.T) {
	// Constant 100 against the same 2x2 matrix. Effective thresholds are
	// 32, 160, 96, 224; 100 exceeds 32 and 96, both in column 0.
	m, err := NewMatrix("test2", [][]float64{{0, 128}, {64, 192}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBuffer(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := range b.Pix {
		b.Pix[i] = 100
	}

	if err := Ordered(b, m); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			want := 0.0
			if x%2 == 0 {
				want = 255
			}
			if got := b.At(x, y); got != want {
				t.Errorf("At(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestOrderedIdempotentOnBilevel(t *testing.T) {
	for _, name := range MatrixNames() {
		t.Run(name, func(t *testing.T) {
			m, _ := MatrixByName(name)
			b, err := NewBuffer(16, 16)
			if err != nil {
				t.Fatal(err)
			}
			for i := range b.Pix {
				if (i*7)%3 == 0 {
					b.Pix[i] = 255
				}
			}
			want := b.Clone()

			if err := Ordered(b, m); err != nil {
				t.Fatal(err)
			}
			for i, v := range b.Pix {
				if v != want.Pix[i] {
					t.Fatalf("Pix[%d] = %v after dithering bilevel input, want %v", i, v, want.Pix[i])
				}
			}
		})
	}
}

func TestOrderedExtremes(t *testing.T) {
	b, err := NewBuffer(8, 8)
	if err != nil {
		t.Fatal(err)
	}

	if err := Ordered(b, Bayer8); err != nil {
		t.Fatal(err)
	}
	for i, v := range b.Pix {
		if v != 0 {
			t.Fatalf("all-black input: Pix[%d] = %v, want 0", i, v)
		}
	}

	for i := range b.Pix {
		b.Pix[i] = 255
	}
	if err := Ordered(b, Bayer8); err != nil {
		t.Fatal(err)
	}
	for i, v := range b.Pix {
		if v != 255 {
			t.Fatalf("all-white input: Pix[%d] = %v, want 255", i, v)
		}
	}
}

func TestOrderedInvalidInputs(t *testing.T) {
	b := &Buffer{Pix: make([]float64, 2), W: 2, H: 2}
	if err := Ordered(b, Bayer8); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("Ordered with mismatched buffer = %v, want ErrInvalidBounds", err)
	}

	good := &Buffer{Pix: make([]float64, 4), W: 2, H: 2}
	bad := Matrix{Name: "bad", Thresholds: [][]float64{{0, 1}}}
	if err := Ordered(good, bad); !errors.Is(err, ErrInvalidMatrix) {
		t.Errorf("Ordered with non-square matrix = %v, want ErrInvalidMatrix", err)
	}
}
