// Package raster is the built-in software render backend. It ray-casts
// the scene's mesh probes as shaded spheres over an optional checkered
// floor, which is enough to verify camera placement and produce dataset
// prototypes without an external engine.
package raster

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"math"

	"github.com/HugoSmits86/nativewebp"

	"camsphere/internal/mathutil"
	"camsphere/internal/scene"
	"camsphere/internal/session"
)

const (
	defaultFocalLength = 50.0 // mm
	defaultSensorWidth = 36.0 // mm
)

// Options tune the backend beyond per-frame render params.
type Options struct {
	// Plate is an optional background image shown where rays miss.
	Plate *image.NRGBA
	// Supersample renders at N× resolution and downsamples. Default 2.
	Supersample int
	// FloorZ draws a checkered ground plane at this world height.
	FloorZ *float64
}

// Backend renders frames for the session orchestrator.
type Backend struct {
	scene *scene.Scene
	opts  Options
	light LightConfig
}

func NewBackend(sc *scene.Scene, opts Options) *Backend {
	if opts.Supersample < 1 {
		opts.Supersample = 2
	}
	return &Backend{scene: sc, opts: opts, light: DefaultLightConfig()}
}

// RenderFrame renders the view of one camera entity and returns the frame
// encoded as WebP. Deterministic for a fixed scene and params.
func (b *Backend) RenderFrame(handle string, params session.RenderParams) ([]byte, error) {
	cam, ok := b.scene.Object(handle)
	if !ok || cam.Type != scene.Camera {
		return nil, fmt.Errorf("raster: no camera %q", handle)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ss := b.opts.Supersample
	w, h := params.Width*ss, params.Height*ss

	aspect := params.AspectRatio
	if aspect == 0 {
		aspect = float64(params.Width) / float64(params.Height)
	}

	focal := cam.Intrinsics.FocalLength
	if focal <= 0 {
		focal = defaultFocalLength
	}
	sensor := cam.Intrinsics.SensorWidth
	if sensor <= 0 {
		sensor = defaultSensorWidth
	}
	tanHalf := sensor / (2 * focal)

	right := cam.Orientation.Right()
	up := cam.Orientation.Up()
	fwd := cam.Orientation.Forward()
	meshes := b.scene.Meshes()

	// jittered sample grid, fixed offsets so frames are reproducible
	side := int(math.Ceil(math.Sqrt(float64(params.Samples))))
	inv := 1.0 / float64(side)

	fb := NewFrameBuffer(w, h)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			var cr, cg, cb float64
			for sy := 0; sy < side; sy++ {
				for sx := 0; sx < side; sx++ {
					u := (float64(px)+(float64(sx)+0.5)*inv)/float64(w)*2 - 1
					v := 1 - (float64(py)+(float64(sy)+0.5)*inv)/float64(h)*2

					dir := fwd.
						Add(right.Scale(u * tanHalf)).
						Add(up.Scale(v * tanHalf / aspect)).
						Normalize()

					r, g, bl := b.trace(meshes, cam.Position, dir, px/ss, py/ss, params)
					cr += r
					cg += g
					cb += bl
				}
			}
			n := float64(side * side)
			fb.Set(px, py,
				b.light.shadeTo8(cr/n),
				b.light.shadeTo8(cg/n),
				b.light.shadeTo8(cb/n))
		}
	}

	img := Downsample(fb.ToNRGBA(), params.Width, params.Height)

	var out bytes.Buffer
	if err := nativewebp.Encode(&out, img, nil); err != nil {
		return nil, fmt.Errorf("raster: webp encode: %w", err)
	}
	return out.Bytes(), nil
}

// trace returns the linear color seen along one ray.
func (b *Backend) trace(meshes []*scene.Object, origin, dir mathutil.Vec3, px, py int, params session.RenderParams) (float64, float64, float64) {
	nearest := math.Inf(1)
	var nr, ng, nb float64
	hit := false

	for _, m := range meshes {
		t, ok := raySphere(origin, dir, m.Position, m.Radius)
		if !ok || t >= nearest {
			continue
		}
		nearest = t
		point := origin.Add(dir.Scale(t))
		normal := point.Sub(m.Position).Normalize()
		shade := b.light.ComputeShade(normal)
		cr, cg, cb := objectColor(m.Name)
		nr, ng, nb = cr*shade, cg*shade, cb*shade
		hit = true
	}

	if b.opts.FloorZ != nil {
		if t, ok := rayFloor(origin, dir, *b.opts.FloorZ); ok && t < nearest {
			point := origin.Add(dir.Scale(t))
			shade := b.light.ComputeShade(mathutil.WorldUp)
			c := 0.55
			if (int(math.Floor(point[0]))+int(math.Floor(point[1])))%2 != 0 {
				c = 0.35
			}
			nr, ng, nb = c*shade, c*shade, c*shade
			hit = true
		}
	}

	if hit {
		return nr, ng, nb
	}
	return b.background(dir, px, py, params)
}

// background samples the plate, or a vertical sky gradient without one.
func (b *Backend) background(dir mathutil.Vec3, px, py int, params session.RenderParams) (float64, float64, float64) {
	if b.opts.Plate != nil {
		bounds := b.opts.Plate.Bounds()
		x := bounds.Min.X + px*bounds.Dx()/params.Width
		y := bounds.Min.Y + py*bounds.Dy()/params.Height
		i := b.opts.Plate.PixOffset(x, y)
		return float64(b.opts.Plate.Pix[i]) / 255,
			float64(b.opts.Plate.Pix[i+1]) / 255,
			float64(b.opts.Plate.Pix[i+2]) / 255
	}

	t := clamp01(dir[2]*0.5 + 0.5)
	return 0.18 + 0.25*t, 0.22 + 0.33*t, 0.30 + 0.45*t
}

// raySphere solves |o + t·d − c|² = r² for the nearest positive t.
func raySphere(origin, dir, center mathutil.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	half := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := half*half - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -half - sq; t > 1e-6 {
		return t, true
	}
	if t := -half + sq; t > 1e-6 {
		return t, true
	}
	return 0, false
}

// rayFloor intersects a horizontal plane at world height z.
func rayFloor(origin, dir mathutil.Vec3, z float64) (float64, bool) {
	if math.Abs(dir[2]) < 1e-12 {
		return 0, false
	}
	t := (z - origin[2]) / dir[2]
	return t, t > 1e-6
}

// objectColor derives a stable albedo from the object name.
func objectColor(name string) (float64, float64, float64) {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	r := 0.35 + 0.55*float64(v&0xff)/255
	g := 0.35 + 0.55*float64((v>>8)&0xff)/255
	b := 0.35 + 0.55*float64((v>>16)&0xff)/255
	return r, g, b
}
