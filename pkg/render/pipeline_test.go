package render

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/taigrr/raster3d/pkg/math3d"
	"github.com/taigrr/raster3d/pkg/transform"
)

// testCube returns an axis-aligned cube centred on the origin with outward
// facing, counter-clockwise triangles.
func testCube(size float64) math3d.Mesh {
	h := size / 2
	faces := [][4]math3d.Vec3{
		{{X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: -h, Z: -h}},
		{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}},
		{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}},
		{{X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}, {X: h, Y: -h, Z: h}},
		{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}},
		{{X: -h, Y: h, Z: -h}, {X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}},
	}
	uv := [4]math3d.Vec2{{X: 0, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}

	mesh := make(math3d.Mesh, 0, 12)
	for _, f := range faces {
		mesh = append(mesh,
			math3d.NewTriangle(f[0], f[1], f[2], uv[0], uv[1], uv[2]),
			math3d.NewTriangle(f[0], f[2], f[3], uv[0], uv[2], uv[3]),
		)
	}
	return mesh
}

func cubeAt(t *testing.T, p *Pipeline, z float64) {
	t.Helper()
	p.SetTransform(math3d.Translate(math3d.V3(0, 0, z)))
	p.Clear(ColorBlack)
	p.ClearDepthBuffer()
	p.RenderMesh(testCube(1))
}

// samplePoint returns a pixel just off the screen center. The center itself lies
// on the diagonal shared by the two triangles of a cube face.
func samplePoint(p *Pipeline) (int, int) {
	return p.Width()/2 + 2, p.Height()/2 - 2
}

func TestPipelineDefaults(t *testing.T) {
	p := NewPipeline(800, 600)

	if p.Projection() != ProjectionPerspective {
		t.Errorf("projection = %v, want perspective", p.Projection())
	}
	if p.RenderMode() != DefaultRenderMode {
		t.Errorf("render mode = %v, want %v", p.RenderMode(), DefaultRenderMode)
	}
	if diff := cmp.Diff(Lights{DefaultLight()}, p.Lights()); diff != "" {
		t.Errorf("lights (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(math3d.Identity(), p.View(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("view (-want +got):\n%s", diff)
	}
	want := math3d.Perspective(DefaultFOV, 0.75, DefaultNear, DefaultFar)
	if p.ProjectionMatrix() != want {
		t.Errorf("projection matrix = %v, want %v", p.ProjectionMatrix(), want)
	}
}

func TestPipelineOptions(t *testing.T) {
	cam := NewCamera(math3d.V3(0, 0, -3))
	p := NewPipeline(100, 100,
		WithRenderMode(ModeWire),
		WithCamera(cam),
		WithLights(nil),
		WithProjection(ProjectionOrthogonal),
		WithPerspective(60, 1, 50),
	)

	if p.RenderMode() != ModeWire {
		t.Errorf("render mode = %v", p.RenderMode())
	}
	if p.Camera() != cam {
		t.Error("camera option ignored")
	}
	if got := p.View().MulVec3(math3d.V3(0, 0, 0)); math.Abs(got.Z-3) > 1e-9 {
		t.Errorf("view not taken from camera: origin maps to %v", got)
	}
	if len(p.Lights()) != 0 {
		t.Errorf("lights = %v, want none", p.Lights())
	}
	if p.Projection() != ProjectionOrthogonal {
		t.Errorf("projection = %v", p.Projection())
	}
	if want := math3d.Orthographic(math3d.OrthoHalfExtent, 1, 1, 50); p.ProjectionMatrix() != want {
		t.Errorf("projection matrix = %v, want %v", p.ProjectionMatrix(), want)
	}
}

func TestPipelineProjectsToCenter(t *testing.T) {
	p := NewPipeline(800, 600)
	tri := math3d.NewTriangle(
		math3d.V3(0, 0, 5), math3d.V3(0, 1, 5), math3d.V3(1, 1, 5),
		math3d.V2(0.5, 0.25), math3d.V2(0, 0), math3d.V2(1, 1),
	)

	out := p.project(math3d.Mesh{tri}, nil)
	if len(out) != 1 {
		t.Fatalf("projected %d triangles, want 1", len(out))
	}
	got := out[0]

	if math.Abs(got.P[0].X-400) > 1e-9 || math.Abs(got.P[0].Y-300) > 1e-9 {
		t.Errorf("on-axis vertex at (%v, %v), want (400, 300)", got.P[0].X, got.P[0].Y)
	}
	if z := got.P[0].Z; z <= 0 || z >= 1 {
		t.Errorf("screen z = %v, want within (0, 1)", z)
	}
	if got.P[0].W != 1 {
		t.Errorf("w = %v, want 1 after the divide", got.P[0].W)
	}
	// Positive view Y is up on screen, positive X is left.
	if got.P[1].Y >= 300 || got.P[2].X >= 400 {
		t.Errorf("screen axes flipped: %v %v", got.P[1], got.P[2])
	}
	wantT := math3d.V3(0.5/5, 0.25/5, 1.0/5)
	if diff := cmp.Diff(wantT, got.T[0], cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("texture correction (-want +got):\n%s", diff)
	}
}

func TestPipelineDepthSortOrder(t *testing.T) {
	p := NewPipeline(200, 200, WithRenderMode(ModeSmoothFlat))
	var mesh math3d.Mesh
	for _, z := range []float64{3, 9, 5, 7, 4} {
		mesh = append(mesh, math3d.NewTriangle(
			math3d.V3(-0.5, -0.5, z), math3d.V3(-0.5, 0.5, z), math3d.V3(0.5, 0.5, z),
			math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
		))
	}
	p.RenderMesh(mesh)

	drawn := p.screen
	if len(drawn) != len(mesh) {
		t.Fatalf("drew %d triangles, want %d", len(drawn), len(mesh))
	}
	for i := 1; i < len(drawn); i++ {
		if drawn[i].AvgZ() > drawn[i-1].AvgZ() {
			t.Errorf("triangle %d (z %v) sorted after nearer triangle (z %v)", i, drawn[i].AvgZ(), drawn[i-1].AvgZ())
		}
	}
}

func TestPipelineCube(t *testing.T) {
	p := NewPipeline(800, 600, WithRenderMode(ModeSmoothFlat))
	cubeAt(t, p, 5)

	s := p.Stats()
	if s.TrianglesIn != 12 || s.BackFacesCulled != 10 || s.Drawn != 2 {
		t.Errorf("stats = %+v, want 12 in, 10 culled, 2 drawn", s)
	}
	if p.TrianglesDrawn() != 2 {
		t.Errorf("TrianglesDrawn = %d, want 2", p.TrianglesDrawn())
	}

	r := p.Rasterizer()
	for y := 280; y <= 320; y += 10 {
		for x := 385; x <= 425; x += 10 {
			if c := r.PixelAt(x, y); c != ColorWhite {
				t.Fatalf("pixel (%d, %d) = %v, want lit white", x, y, c)
			}
			if d := r.DepthAt(x, y); d <= 0 {
				t.Fatalf("depth (%d, %d) = %v, want > 0", x, y, d)
			}
		}
	}
	if c := r.PixelAt(10, 10); c != ColorBlack {
		t.Errorf("background = %v, want black", c)
	}
	if n := r.Stats().OutOfBounds; n != 0 {
		t.Errorf("%d out-of-bounds writes", n)
	}
}

func TestPipelineOrthogonalCube(t *testing.T) {
	p := NewPipeline(800, 600, WithRenderMode(ModeSmoothFlat), WithProjection(ProjectionOrthogonal))
	cubeAt(t, p, 5)

	if c := p.Rasterizer().PixelAt(samplePoint(p)); c != ColorWhite {
		t.Errorf("center pixel = %v, want white", c)
	}
	if p.TrianglesDrawn() != 2 {
		t.Errorf("TrianglesDrawn = %d, want 2", p.TrianglesDrawn())
	}
}

func TestPipelineNearerCubeWins(t *testing.T) {
	p := NewPipeline(200, 150, WithRenderMode(ModeSmoothFlat))
	p.Clear(ColorBlack)

	red, blue := ColorRed, ColorBlue
	near, far := testCube(1), testCube(1)

	// Far first, then near, then far again: the near one must stay.
	p.SetTransform(math3d.Translate(math3d.V3(0, 0, 8)))
	p.RenderMeshColor(far, blue)
	p.SetTransform(math3d.Translate(math3d.V3(0, 0, 4)))
	p.RenderMeshColor(near, red)
	p.SetTransform(math3d.Translate(math3d.V3(0, 0, 8)))
	p.RenderMeshColor(far, blue)

	if c := p.Rasterizer().PixelAt(samplePoint(p)); c != ColorRed {
		t.Errorf("center = %v, want the nearer red cube", c)
	}
}

func TestPipelineNearPlane(t *testing.T) {
	behind := math3d.NewTriangle(
		math3d.V3(-1, -1, -5), math3d.V3(1, 1, -5), math3d.V3(-1, 1, -5),
		math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
	)
	front := math3d.NewTriangle(
		math3d.V3(-1, -1, 5), math3d.V3(-1, 1, 5), math3d.V3(1, 1, 5),
		math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
	)
	straddling := math3d.NewTriangle(
		math3d.V3(-2, -1, -1), math3d.V3(0, 2, 4), math3d.V3(2, -1, -1),
		math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
	)

	t.Run("behind only", func(t *testing.T) {
		p := NewPipeline(100, 100)
		p.RenderMesh(math3d.Mesh{behind})
		if s := p.Stats(); s.MeshesCulled != 1 || s.Drawn != 0 {
			t.Errorf("stats = %+v, want whole mesh culled", s)
		}
	})

	t.Run("behind with visible", func(t *testing.T) {
		p := NewPipeline(100, 100)
		p.RenderMesh(math3d.Mesh{behind, front})
		if s := p.Stats(); s.NearClipped != 1 || s.Drawn != 1 {
			t.Errorf("stats = %+v, want 1 near-clipped and 1 drawn", s)
		}
	})

	t.Run("straddling", func(t *testing.T) {
		p := NewPipeline(100, 100, WithRenderMode(ModeSmoothFlat))
		p.RenderMesh(math3d.Mesh{straddling})
		s := p.Stats()
		if s.NearClipped != 0 || s.Drawn == 0 {
			t.Fatalf("stats = %+v, want the clipped part drawn", s)
		}
		for _, tri := range p.screen {
			for _, v := range tri.P {
				if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
					t.Fatalf("non-finite screen vertex %v", v)
				}
			}
		}
	})
}

func TestPipelineBorderClip(t *testing.T) {
	const w, h = 64, 48
	p := NewPipeline(w, h, WithRenderMode(ModeSmoothFlat))

	// Large enough to cross every border.
	big := math3d.NewTriangle(
		math3d.V3(-20, -20, 2), math3d.V3(0, 20, 2), math3d.V3(20, -20, 2),
		math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
	)
	p.RenderMesh(math3d.Mesh{big})

	if len(p.screen) == 0 {
		t.Fatal("nothing drawn")
	}
	if p.Stats().BorderClipped == 0 {
		t.Error("expected border clipping")
	}
	const eps = 1e-9
	for _, tri := range p.screen {
		for _, v := range tri.P {
			if v.X < -eps || v.X > w-1+eps || v.Y < -eps || v.Y > h-1+eps {
				t.Errorf("vertex %v outside the screen after clipping", v)
			}
		}
	}
	if n := p.Rasterizer().Stats().OutOfBounds; n != 0 {
		t.Errorf("%d out-of-bounds writes", n)
	}

	// Clipping an on-screen list changes nothing.
	onScreen := append([]math3d.Triangle(nil), p.screen...)
	again := p.clipToScreen(onScreen)
	if diff := cmp.Diff(onScreen, again); diff != "" {
		t.Errorf("second clip changed the list (-want +got):\n%s", diff)
	}
}

func TestClipToScreenInsideUnchanged(t *testing.T) {
	p := NewPipeline(64, 48)
	tris := []math3d.Triangle{
		screenTri(5, 5, 50, 8, 20, 40, 0.5, ColorRed),
		// Vertices on the right and bottom edges are still on screen.
		screenTri(0, 0, 64, 0, 64, 48, 0.3, ColorBlue),
	}
	want := append([]math3d.Triangle(nil), tris...)

	got := p.clipToScreen(tris)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clipToScreen changed on-screen triangles (-want +got):\n%s", diff)
	}
	if n := p.Stats().BorderClipped; n != 0 {
		t.Errorf("BorderClipped = %d, want 0", n)
	}
}

func TestClipToScreenKeepsOrder(t *testing.T) {
	p := NewPipeline(64, 48)
	far := screenTri(-20, 5, 30, 5, 10, 40, 0.9, ColorBlue)
	mid := screenTri(10, 10, 40, 10, 20, 30, 0.6, ColorGreen)
	near := screenTri(30, -10, 60, 20, 40, 60, 0.2, ColorRed)

	got := p.clipToScreen([]math3d.Triangle{far, mid, near})
	if len(got) < 3 {
		t.Fatalf("got %d triangles, want at least 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].AvgZ() > got[i-1].AvgZ() {
			t.Errorf("triangle %d (z %v) follows nearer triangle (z %v)", i, got[i].AvgZ(), got[i-1].AvgZ())
		}
	}
	var colors []Color
	for _, tri := range got {
		if len(colors) == 0 || colors[len(colors)-1] != tri.Color {
			colors = append(colors, tri.Color)
		}
	}
	if diff := cmp.Diff([]Color{ColorBlue, ColorGreen, ColorRed}, colors); diff != "" {
		t.Errorf("fragment order (-want +got):\n%s", diff)
	}
}

func TestPipelineClippedWireStaysBehind(t *testing.T) {
	const size = 100
	p := NewPipeline(size, size, WithRenderMode(ModeFlat))
	p.Clear(ColorBlack)
	p.ClearDepthBuffer()

	// Both face the camera. The near one covers the upper right half of the
	// screen; the far one runs off the left border behind it.
	mesh := math3d.Mesh{
		math3d.NewTriangle(
			math3d.V3(-1.5, -1.5, 2), math3d.V3(-1.5, 1.5, 2), math3d.V3(1.5, 1.5, 2),
			math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
		),
		math3d.NewTriangle(
			math3d.V3(-3, -3, 5), math3d.V3(-3, 3, 5), math3d.V3(8, 3, 5),
			math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
		),
	}
	p.RenderMeshColor(mesh, ColorRed)
	if p.Stats().BorderClipped == 0 {
		t.Fatal("far triangle was not border clipped")
	}

	// The near face spans x in (12.5, 87.5), y in (12.5, 87.5) with x > y.
	r := p.Rasterizer()
	wire := 0
	for y := 16; y < 84; y++ {
		for x := y + 4; x < 84; x++ {
			if r.PixelAt(x, y) == WireColor {
				wire++
			}
		}
	}
	if wire != 0 {
		t.Errorf("%d wire pixels inside the near face, want 0", wire)
	}
	if c := r.PixelAt(60, 40); c != ColorRed {
		t.Errorf("pixel(60,40) = %v, want the near fill %v", c, ColorRed)
	}
}

func TestPipelineCameraOrigin(t *testing.T) {
	p := NewPipeline(200, 150, WithRenderMode(ModeSmoothFlat))
	cubeAt(t, p, 5)
	before := p.Rasterizer().DepthAt(samplePoint(p))

	// Moving the camera without UpdateView leaves the view alone.
	p.Camera().SetOrigin(math3d.V3(0, 0, -5))
	if diff := cmp.Diff(math3d.Identity(), p.View(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("view changed before UpdateView:\n%s", diff)
	}

	p.SetCameraOrigin(math3d.V3(0, 0, -5))
	cubeAt(t, p, 5)
	after := p.Rasterizer().DepthAt(samplePoint(p))

	if after <= 0 || after >= before {
		t.Errorf("depth after backing away = %v, want in (0, %v)", after, before)
	}
}

func TestPipelineTransformChain(t *testing.T) {
	chain := transform.NewChain(
		transform.Rotation(0, math.Pi, 0),
		transform.Translation(0, 0, 5),
	)
	p := NewPipeline(200, 150, WithRenderMode(ModeSmoothFlat))
	p.SetTransformChain(chain)

	if diff := cmp.Diff(chain.Matrix(), p.World()); diff != "" {
		t.Errorf("world (-want +got):\n%s", diff)
	}
	p.RenderMesh(testCube(1))
	if p.TrianglesDrawn() != 2 {
		t.Errorf("TrianglesDrawn = %d, want 2", p.TrianglesDrawn())
	}
}

func TestPipelineLighting(t *testing.T) {
	side := math3d.V3(1, 0, 0)
	p := NewPipeline(200, 150, WithRenderMode(ModeSmoothFlat), WithLights(Lights{NewLight(math3d.Zero3(), side)}))
	cubeAt(t, p, 5)

	// The front face is perpendicular to the light: only the floor remains.
	if c := p.Rasterizer().PixelAt(samplePoint(p)); c != Grey(AmbientFloor) {
		t.Errorf("center = %v, want %v", c, Grey(AmbientFloor))
	}
}

func TestPipelineTextured(t *testing.T) {
	tex := NewTexture(2, 2)
	for y := range 2 {
		for x := range 2 {
			tex.SetPixel(x, y, ColorGreen)
		}
	}

	p := NewPipeline(200, 150, WithRenderMode(ModeFullTextured))
	p.SetTransform(math3d.Translate(math3d.V3(0, 0, 5)))
	p.RenderMeshTextured(testCube(1), tex)

	if c := p.Rasterizer().PixelAt(samplePoint(p)); c != ColorGreen {
		t.Errorf("center = %v, want texture green", c)
	}
}

func TestPipelineRenderModel(t *testing.T) {
	red := ColorRed
	model := NewModel(
		Object{Name: "left", Mesh: testCube(1), Color: &red},
		Object{Name: "plain", Mesh: testCube(1)},
	)
	if n := model.TriangleCount(); n != 24 {
		t.Errorf("TriangleCount = %d, want 24", n)
	}
	if _, ok := model.Object("plain"); !ok {
		t.Error("object lookup failed")
	}

	p := NewPipeline(200, 150, WithRenderMode(ModeSmoothFlat))
	p.SetTransform(math3d.Translate(math3d.V3(0, 0, 5)))
	p.RenderModel(model)

	// Both objects share the transform; the second never beats the first.
	if c := p.Rasterizer().PixelAt(samplePoint(p)); c != ColorRed {
		t.Errorf("center = %v, want red", c)
	}
	if p.TrianglesDrawn() != 4 {
		t.Errorf("TrianglesDrawn = %d, want 4", p.TrianglesDrawn())
	}

	p.ClearDepthBuffer()
	p.RenderModelColor(model, ColorBlue)
	if c := p.Rasterizer().PixelAt(samplePoint(p)); c != ColorBlue {
		t.Errorf("center after RenderModelColor = %v, want blue", c)
	}
}

func TestPipelineSetPerspectiveRejectsInvalid(t *testing.T) {
	p := NewPipeline(100, 100)
	before := p.ProjectionMatrix()

	p.SetPerspective(0, 0.1, 10)
	p.SetPerspective(60, 1, 1)
	if p.ProjectionMatrix() != before {
		t.Error("invalid perspective changed the projection")
	}

	p.SetPerspective(60, 0.5, 10)
	if p.ProjectionMatrix() == before {
		t.Error("valid perspective ignored")
	}
}

func TestPipelineZeroSize(t *testing.T) {
	p := NewPipeline(0, 0)
	p.RenderMesh(testCube(1))
	if p.TrianglesDrawn() != 0 {
		t.Errorf("TrianglesDrawn = %d on an empty screen", p.TrianglesDrawn())
	}
}

func BenchmarkRenderCube(b *testing.B) {
	p := NewPipeline(320, 240)
	cube := testCube(1)
	tex := NewCheckerTexture(64, 64, 8, ColorBlack, ColorWhite)
	p.SetTransformChain(transform.NewChain(
		transform.Rotation(0.4, 0.7, 0),
		transform.Translation(0, 0, 3),
	))

	for b.Loop() {
		p.ClearDepthBuffer()
		p.RenderMeshTextured(cube, tex)
	}
}
