// Command epdconv converts a directory of rasterized page images into
// the packed binary pages an e-ink reader firmware consumes.
//
// Usage:
//
//	epdconv [flags] <pages-dir or image files...>
//
// Pages are processed in name order. Each image is converted to
// greyscale, rotated to landscape if needed, scaled to cover the target
// resolution, center-cropped, tone-reduced and packed. Output files are
// numbered 000000, 000001, ... with a HEAD index record, or PNG previews
// with -png.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/flavioheleno/epdpage"
	"github.com/flavioheleno/epdpage/dither"
)

var (
	outDir     = flag.String("out", "output", "Output directory")
	modeName   = flag.String("mode", "diffusion", "Tone reduction: diffusion, ordered or none")
	kernelName = flag.String("kernel", "floyd-steinberg", "Diffusion kernel (with -mode diffusion)")
	matrixName = flag.String("matrix", "bayer8", "Threshold matrix (with -mode ordered)")
	depth      = flag.Int("depth", 1, "Bits per pixel, 1 or 2")
	width      = flag.Int("w", 800, "Target width in pixels")
	height     = flag.Int("h", 480, "Target height in pixels")
	rotate     = flag.Bool("rotate", true, "Rotate portrait pages to landscape")
	pngOut     = flag.Bool("png", false, "Write PNG previews instead of packed pages")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: epdconv [flags] <pages-dir or image files...>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	pipeline, err := buildPipeline()
	if err != nil {
		log.Fatal(err)
	}

	paths, err := collectPages(flag.Args())
	if err != nil {
		log.Fatal(err)
	}
	if len(paths) == 0 {
		log.Fatal("no page images found")
	}

	if err := convert(pipeline, paths); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Converted %d pages into %s\n", len(paths), *outDir)
}

func buildPipeline() (*epdpage.Pipeline, error) {
	opts := &epdpage.Opts{Depth: *depth}

	switch *modeName {
	case "none":
		opts.Mode = epdpage.ModeNone
	case "diffusion":
		opts.Mode = epdpage.ModeDiffusion
		k, ok := dither.KernelByName(*kernelName)
		if !ok {
			return nil, fmt.Errorf("unknown kernel %q, have: %s",
				*kernelName, strings.Join(dither.KernelNames(), ", "))
		}
		opts.Kernel = k
	case "ordered":
		opts.Mode = epdpage.ModeOrdered
		m, ok := dither.MatrixByName(*matrixName)
		if !ok {
			return nil, fmt.Errorf("unknown matrix %q, have: %s",
				*matrixName, strings.Join(dither.MatrixNames(), ", "))
		}
		opts.Matrix = m
	default:
		return nil, fmt.Errorf("unknown mode %q, have: diffusion, ordered, none", *modeName)
	}

	return epdpage.New(opts)
}

// collectPages expands a single directory argument into its image files,
// sorted by name; explicit file arguments pass through in order.
func collectPages(args []string) ([]string, error) {
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return nil, err
			}
			var paths []string
			for _, e := range entries {
				if e.IsDir() || !isPageImage(e.Name()) {
					continue
				}
				paths = append(paths, filepath.Join(args[0], e.Name()))
			}
			sort.Strings(paths)
			return paths, nil
		}
	}
	return args, nil
}

func isPageImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
		return true
	}
	return false
}

func convert(pipeline *epdpage.Pipeline, paths []string) error {
	var writer *epdpage.PageWriter
	if *pngOut {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return err
		}
	} else {
		w, err := epdpage.NewPageWriter(*outDir)
		if err != nil {
			return err
		}
		writer = w
	}

	printProgress(0, len(paths))
	for i, path := range paths {
		img, err := loadPage(path)
		if err != nil {
			return fmt.Errorf("page %d (%s): %w", i, path, err)
		}

		q, err := pipeline.Quantize(img)
		if err != nil {
			return fmt.Errorf("page %d (%s): %w", i, path, err)
		}

		if *pngOut {
			if err := writePreview(i, q); err != nil {
				return err
			}
		} else {
			packed, err := epdpage.Pack(q, pipeline.Depth())
			if err != nil {
				return fmt.Errorf("page %d (%s): %w", i, path, err)
			}
			if err := writer.WritePage(packed); err != nil {
				return err
			}
		}
		printProgress(i+1, len(paths))
	}

	if writer != nil {
		return writer.WriteIndex()
	}
	return nil
}

// loadPage decodes one page image and normalizes it to a greyscale
// landscape raster of exactly the target size: rotate if portrait, scale
// to cover, center-crop.
func loadPage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	grey := imaging.Grayscale(img)
	if *rotate && grey.Bounds().Dy() > grey.Bounds().Dx() {
		grey = imaging.Rotate90(grey)
	}

	w := grey.Bounds().Dx()
	h := grey.Bounds().Dy()
	scale := math.Max(float64(*width)/float64(w), float64(*height)/float64(h))
	scaled := resize.Resize(
		uint(math.Ceil(float64(w)*scale)),
		uint(math.Ceil(float64(h)*scale)),
		grey, resize.Lanczos3)

	return imaging.CropAnchor(scaled, *width, *height, imaging.Center), nil
}

func writePreview(page int, q *dither.Quantized) error {
	name := filepath.Join(*outDir, fmt.Sprintf("%06d.png", page))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, q.Gray())
}

// printProgress renders a single-line terminal progress bar.
func printProgress(done, total int) {
	const barWidth = 50
	filled := barWidth * done / total
	bar := strings.Repeat("█", filled) + strings.Repeat("-", barWidth-filled)
	fmt.Printf("\rProgress: |%s| %d%%", bar, 100*done/total)
	if done == total {
		fmt.Println()
	}
}
