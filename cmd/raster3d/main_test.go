package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/taigrr/raster3d/pkg/math3d"
)

func TestSnapshotCube(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cube.png")
	opts := &options{}
	opts.flags.Width = 64
	opts.flags.Height = 48
	opts.flags.Scale = 2

	if err := runSnapshot(opts, &snapshotOptions{output: out, stats: true}, "cube"); err != nil {
		t.Fatalf("runSnapshot: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got, want := img.Bounds().Dx(), 128; got != want {
		t.Errorf("width = %d, want %d", got, want)
	}
	if got, want := img.Bounds().Dy(), 96; got != want {
		t.Errorf("height = %d, want %d", got, want)
	}
}

func TestSnapshotViaCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cube.webp")
	root := newRootCmd()
	root.SetArgs([]string{"snapshot", "cube", "-o", out, "--width", "32", "--height", "24", "--mode", "flat"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() == 0 {
		t.Error("empty output file")
	}
}

func TestEncoderFor(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"a.png", false},
		{"a.PNG", false},
		{"a.webp", false},
		{"a.jpg", true},
		{"noext", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := encoderFor(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("encoderFor(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestScreenToLight(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want math3d.Vec3
	}{
		{"center", 50, 50, math3d.V3(0, 0, -1)},
		{"right edge", 100, 50, math3d.V3(-1, 0, 0)},
		{"top edge", 50, 0, math3d.V3(0, 1, 0)},
		{"outside clamps", 200, 50, math3d.V3(-1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := screenToLight(tt.x, tt.y, 100, 100)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("screenToLight mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpinDecays(t *testing.T) {
	s := newSpin(30)
	s.Impulse(0.2, -0.1, 0)
	for range 300 {
		s.Update()
	}
	if s.Moving() {
		t.Errorf("spin still moving after 10s: %+v", s)
	}
	pitch, yaw, _ := s.Angles()
	if pitch <= 0 || yaw >= 0 {
		t.Errorf("angles = (%v, %v), want positive pitch and negative yaw", pitch, yaw)
	}

	s.Reset()
	if p, y, r := s.Angles(); p != 0 || y != 0 || r != 0 {
		t.Errorf("after Reset angles = (%v, %v, %v)", p, y, r)
	}
}
