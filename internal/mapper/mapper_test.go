package mapper

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/engine"
	"github.com/ironsheep/image-template-mapper/internal/imaging"
	"github.com/ironsheep/image-template-mapper/internal/pixel"
)

// createInMemoryImage creates a uniformly colored image.
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createGradientImage creates an image whose color varies with position.
func createGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x*7 + y*13) % 256),
				A: 255,
			})
		}
	}
	return img
}

// createQuadrantTemplate creates a template with a different color in each quadrant.
func createQuadrantTemplate(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.NRGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.NRGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.NRGBA{0, 0, 255, 255}
			default:
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestMap_SizePreservation(t *testing.T) {
	template := createQuadrantTemplate(20, 10)

	for _, size := range []image.Point{{50, 30}, {20, 10}, {7, 3}} {
		source := createGradientImage(size.X, size.Y)
		res, err := Map(source, template, Options{Mode: colorspace.RGB})
		if err != nil {
			t.Fatalf("Map failed for %v source: %v", size, err)
		}
		if b := res.Image.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
			t.Errorf("source %v: output %dx%d, want 20x10", size, b.Dx(), b.Dy())
		}
		if len(res.Colors) != 4 {
			t.Errorf("source %v: got %d buckets, want 4", size, len(res.Colors))
		}
	}
}

func TestMap_Deterministic(t *testing.T) {
	source := createGradientImage(64, 48)
	template := createQuadrantTemplate(40, 30)

	for _, m := range colorspace.Modes {
		for _, s := range []engine.Strategy{engine.Serial{}, engine.Parallel{}} {
			opts := Options{Mode: m, Strategy: s}
			a, err := Map(source, template, opts)
			if err != nil {
				t.Fatalf("%v/%s: Map failed: %v", m, s.Name(), err)
			}
			b, err := Map(source, template, opts)
			if err != nil {
				t.Fatalf("%v/%s: Map failed: %v", m, s.Name(), err)
			}
			if string(a.Image.Pix) != string(b.Image.Pix) {
				t.Errorf("%v/%s: repeated mapping produced different images", m, s.Name())
			}
		}
	}
}

func TestMap_UniformTemplate(t *testing.T) {
	source := createGradientImage(16, 16)
	template := createInMemoryImage(16, 16, color.NRGBA{10, 10, 10, 255})

	res, err := Map(source, template, Options{Mode: colorspace.RGB})
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	var sum [3]int
	g := imaging.ToGrid(source)
	for _, p := range g.Pix {
		sum[0] += int(p.R)
		sum[1] += int(p.G)
		sum[2] += int(p.B)
	}
	n := float64(len(g.Pix))
	want := pixel.RGB{
		R: colorspace.ToByte(float64(sum[0]) / n),
		G: colorspace.ToByte(float64(sum[1]) / n),
		B: colorspace.ToByte(float64(sum[2]) / n),
	}

	out := imaging.ToGrid(res.Image)
	for i, p := range out.Pix {
		if p != want {
			t.Fatalf("pixel %d: got %v, want %v", i, p, want)
		}
	}
}

func TestMap_TemplateAlphaIgnored(t *testing.T) {
	source := createGradientImage(10, 10)
	template := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			// Same RGB everywhere, alpha varies by column.
			template.SetNRGBA(x, y, color.NRGBA{50, 60, 70, uint8(x * 25)})
		}
	}

	res, err := Map(source, template, Options{Mode: colorspace.RGB})
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(res.Colors) != 1 {
		t.Errorf("got %d buckets, want 1", len(res.Colors))
	}
	if _, ok := res.Colors[pixel.Pack(50, 60, 70)]; !ok {
		t.Error("bucket key should be the template RGB with alpha ignored")
	}
}

func TestMap_InvalidOptions(t *testing.T) {
	source := createGradientImage(4, 4)
	template := createQuadrantTemplate(4, 4)

	if _, err := Map(source, template, Options{Mode: colorspace.Mode(7)}); !errors.Is(err, colorspace.ErrUnsupportedMode) {
		t.Errorf("bad mode: got %v, want ErrUnsupportedMode", err)
	}
	if _, err := Map(source, template, Options{Filter: "sinc"}); !errors.Is(err, imaging.ErrUnknownFilter) {
		t.Errorf("bad filter: got %v, want ErrUnknownFilter", err)
	}
}

func TestMapGrids_ShapeMismatch(t *testing.T) {
	space, _ := colorspace.For(colorspace.RGB)
	_, err := MapGrids(pixel.NewGrid(3, 3), pixel.NewGrid(3, 4), space, nil)
	if !errors.Is(err, engine.ErrShapeMismatch) {
		t.Errorf("got %v, want ErrShapeMismatch", err)
	}
}

func TestMapGrids_DefaultsToSerial(t *testing.T) {
	space, _ := colorspace.For(colorspace.HSV)
	g := pixel.NewGrid(2, 2)
	res, err := MapGrids(g, g, space, nil)
	if err != nil {
		t.Fatalf("MapGrids failed: %v", err)
	}
	if res.Strategy != "serial" {
		t.Errorf("strategy: got %s, want serial", res.Strategy)
	}
}

func TestCompare(t *testing.T) {
	source := createGradientImage(60, 40)
	template := createQuadrantTemplate(30, 20)

	for _, m := range colorspace.Modes {
		t.Run(m.String(), func(t *testing.T) {
			cmp, err := Compare(source, template, Options{Mode: m, Strategy: engine.Parallel{Workers: 3}}, 2)
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			if cmp.Pixels != 600 || cmp.Width != 30 || cmp.Height != 20 {
				t.Errorf("geometry: got %d pixels %dx%d", cmp.Pixels, cmp.Width, cmp.Height)
			}
			if cmp.Buckets != 4 {
				t.Errorf("buckets: got %d, want 4", cmp.Buckets)
			}
			if len(cmp.Timings) != 2 || cmp.Timings[0].Strategy != "serial" || cmp.Timings[1].Strategy != "parallel" {
				t.Errorf("timings: got %+v", cmp.Timings)
			}
			if cmp.Timings[0].Runs != 2 {
				t.Errorf("runs: got %d, want 2", cmp.Timings[0].Runs)
			}
			if cmp.MaxDifference > cmp.Tolerance {
				t.Errorf("difference %g exceeds tolerance %g", cmp.MaxDifference, cmp.Tolerance)
			}
			if cmp.Serial == nil || cmp.Serial.Strategy != "serial" {
				t.Error("comparison should keep the serial reference result")
			}
		})
	}
}

func TestCompare_ClampsRuns(t *testing.T) {
	source := createGradientImage(8, 8)
	template := createQuadrantTemplate(8, 8)
	cmp, err := Compare(source, template, Options{}, 0)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if cmp.Timings[0].Runs != 1 {
		t.Errorf("runs: got %d, want 1", cmp.Timings[0].Runs)
	}
}
