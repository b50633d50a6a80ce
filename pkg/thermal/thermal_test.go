package thermal

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"climate/models"
)

func TestSnapshotURL(t *testing.T) {
	day := time.Date(2025, 5, 9, 17, 30, 0, 0, time.UTC)
	raw := SnapshotURL(DefaultEndpoint, DefaultLayer, day, DefaultWidth, DefaultHeight)

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	if got := u.Scheme + "://" + u.Host + u.Path; got != DefaultEndpoint {
		t.Errorf("endpoint = %q; want %q", got, DefaultEndpoint)
	}
	want := map[string]string{
		"SERVICE": "WMS",
		"VERSION": "1.3.0",
		"REQUEST": "GetMap",
		"LAYERS":  DefaultLayer,
		"TIME":    "2025-05-09",
		"CRS":     "EPSG:4326",
		"BBOX":    "-90,-180,90,180",
		"WIDTH":   "2048",
		"HEIGHT":  "1024",
		"FORMAT":  "image/png",
	}
	q := u.Query()
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("%s = %q; want %q", k, q.Get(k), v)
		}
	}
}

func encodePNG(t *testing.T, w, h int, fill color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	img.Set(1, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, 8, 4, color.RGBA{R: 200, A: 255})
	r, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Width != 8 || r.Height != 4 || r.Channels != 4 || len(r.Pix) != 8*4*4 {
		t.Fatalf("raster %dx%dx%d with %d bytes; want 8x4x4", r.Width, r.Height, r.Channels, len(r.Pix))
	}
	px := r.Pix[r.Offset(0, 1) : r.Offset(0, 1)+4]
	if !bytes.Equal(px, []byte{10, 20, 30, 255}) {
		t.Errorf("pixel (0,1) = %v; want [10 20 30 255]", px)
	}
	px = r.Pix[r.Offset(3, 7) : r.Offset(3, 7)+4]
	if !bytes.Equal(px, []byte{200, 0, 0, 255}) {
		t.Errorf("pixel (3,7) = %v; want [200 0 0 255]", px)
	}
}

func TestDecode_Failure(t *testing.T) {
	_, err := Decode(strings.NewReader("<html>rate limited</html>"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Decode error = %v; want ErrDecode", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, ErrNoThermalData) {
		t.Fatalf("Load(missing) error = %v; want ErrNoThermalData", err)
	}

	bad := filepath.Join(dir, "bad.png")
	os.WriteFile(bad, []byte("not a png"), 0o644)
	_, err := Load(bad)
	if !errors.Is(err, ErrNoThermalData) || !errors.Is(err, ErrDecode) {
		t.Fatalf("Load(bad) error = %v; want ErrNoThermalData and ErrDecode", err)
	}

	good := filepath.Join(dir, "thermal.png")
	os.WriteFile(good, encodePNG(t, 4, 2, color.White), 0o644)
	r, err := Load(good)
	if err != nil {
		t.Fatalf("Load(good): %v", err)
	}

	out := filepath.Join(dir, "marked.png")
	if err := r.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := Load(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !bytes.Equal(again.Pix, r.Pix) {
		t.Fatal("saved raster differs from original")
	}
}

func blankRaster(w, h, ch int) *Raster {
	return &Raster{Width: w, Height: h, Channels: ch, Pix: make([]byte, w*h*ch)}
}

func whitePixels(r *Raster) int {
	n := 0
	for i := 0; i < len(r.Pix); i += r.Channels {
		white := true
		for _, b := range r.Pix[i : i+r.Channels] {
			if b != 0xff {
				white = false
				break
			}
		}
		if white {
			n++
		}
	}
	return n
}

func TestCorrelate_Origin(t *testing.T) {
	r := blankRaster(DefaultWidth, DefaultHeight, 4)
	matched, err := Correlator{Radius: DefaultRadius}.Correlate(r, models.Coordinates{})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	// Integer points strictly inside a radius 5 disc.
	const inDisc = 69
	if len(matched) != inDisc {
		t.Fatalf("matched %d pixels; want %d", len(matched), inDisc)
	}
	if n := whitePixels(r); n != inDisc {
		t.Fatalf("%d pixels highlighted; want %d", n, inDisc)
	}

	latTol := 5 * 180.0 / float64(DefaultHeight)
	lonTol := 5 * 360.0 / float64(DefaultWidth)
	for _, c := range matched {
		if math.Abs(c.Lat) >= latTol || math.Abs(c.Lon) >= lonTol {
			t.Errorf("matched %v lies outside (%v, %v) of the target", c, latTol, lonTol)
		}
	}

	first := matched[0]
	if first.Lat != 0.703125 || first.Lon != -0.3515625 {
		t.Errorf("first match = %v; want row-major start 0.703125,-0.3515625", first)
	}
	for i := 1; i < len(matched); i++ {
		if matched[i].Lat > matched[i-1].Lat {
			t.Fatalf("matches not in row-major order at %d: %v after %v", i, matched[i], matched[i-1])
		}
	}

	center := r.Pix[r.Offset(512, 1024) : r.Offset(512, 1024)+4]
	if !bytes.Equal(center, []byte{255, 255, 255, 255}) {
		t.Errorf("target pixel = %v; want opaque white", center)
	}
	edge := r.Pix[r.Offset(512, 1029) : r.Offset(512, 1029)+4]
	if !bytes.Equal(edge, []byte{0, 0, 0, 0}) {
		t.Errorf("pixel at distance 5 = %v; want untouched", edge)
	}
}

func TestCorrelate_ClipsAtRasterEdge(t *testing.T) {
	r := blankRaster(DefaultWidth, DefaultHeight, 3)
	matched, err := Correlator{Radius: 5}.Correlate(r, models.Coordinates{Lat: 90, Lon: -180})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if len(matched) != 22 {
		t.Fatalf("matched %d pixels at the corner; want 22", len(matched))
	}
	if matched[0] != (models.Coordinates{Lat: 90, Lon: -180}) {
		t.Errorf("first match = %v; want 90,-180", matched[0])
	}
	if n := whitePixels(r); n != 22 {
		t.Fatalf("%d pixels highlighted; want 22", n)
	}
}

func TestCorrelate_NoData(t *testing.T) {
	if _, err := (Correlator{Radius: 5}).Correlate(nil, models.Coordinates{}); !errors.Is(err, ErrNoThermalData) {
		t.Fatalf("nil raster error = %v; want ErrNoThermalData", err)
	}
	short := &Raster{Width: 4, Height: 4, Channels: 4, Pix: make([]byte, 10)}
	if _, err := (Correlator{Radius: 5}).Correlate(short, models.Coordinates{}); !errors.Is(err, ErrNoThermalData) {
		t.Fatalf("truncated raster error = %v; want ErrNoThermalData", err)
	}
}

func TestCorrelate_ZeroRadius(t *testing.T) {
	r := blankRaster(16, 8, 4)
	matched, err := Correlator{}.Correlate(r, models.Coordinates{})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if len(matched) != 0 || whitePixels(r) != 0 {
		t.Fatalf("radius 0 matched %d pixels; want none", len(matched))
	}
}
