package emitter_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppglab/sdf/emitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func ledConfig() emitter.Config {
	return emitter.Config{
		Count:             4,
		TiltAngleDeg:      12.4,
		RingRadius:        8,
		PlaneHeight:       5,
		ConvergenceTarget: r3.Vec{Z: 36.5},
		PinSpacing:        2.54,
	}
}

func configs() map[string]emitter.Config {
	exact := ledConfig()
	exact.PinLayout = emitter.PinLayoutExact
	many := ledConfig()
	many.Count = 7
	many.TiltAngleDeg = -30
	many.ConvergenceTarget = r3.Vec{X: 1, Y: -2, Z: 20}
	manyExact := many
	manyExact.PinLayout = emitter.PinLayoutExact
	flat := ledConfig()
	flat.TiltAngleDeg = 0
	flat.Count = 1
	return map[string]emitter.Config{
		"led":         ledConfig(),
		"led exact":   exact,
		"seven":       many,
		"seven exact": manyExact,
		"flat":        flat,
	}
}

func TestConcreteScenario(t *testing.T) {
	p, err := ledConfig().Place(0)
	require.NoError(t, err)
	// 8·cos(12.4°) and 5+8·sin(12.4°). Often quoted rounded as
	// 7.8165 and 6.7139.
	assert.InDelta(t, 7.813378226673343, p.Position.X, tol)
	assert.InDelta(t, 0, p.Position.Y, tol)
	assert.InDelta(t, 6.717882617336506, p.Position.Z, tol)

	want := r3.Unit(r3.Sub(r3.Vec{Z: 36.5}, p.Position))
	assert.InDelta(t, want.X, p.BeamDirection.X, tol)
	assert.InDelta(t, want.Y, p.BeamDirection.Y, tol)
	assert.InDelta(t, want.Z, p.BeamDirection.Z, tol)
}

func TestBeamUnitLength(t *testing.T) {
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			placements, err := cfg.PlaceAll()
			require.NoError(t, err)
			require.Len(t, placements, cfg.Count)
			for i, p := range placements {
				assert.InDelta(t, 1, r3.Norm(p.BeamDirection), tol, "emitter %d", i)
				// Beam must point at the target.
				toTarget := r3.Unit(r3.Sub(cfg.ConvergenceTarget, p.Position))
				assert.InDelta(t, 1, r3.Dot(toTarget, p.BeamDirection), tol, "emitter %d", i)
			}
		})
	}
}

func TestAngleReconstruction(t *testing.T) {
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			tilt := cfg.TiltAngleDeg * math.Pi / 180
			placements, err := cfg.PlaceAll()
			require.NoError(t, err)
			for i, p := range placements {
				want := 2 * math.Pi * float64(i) / float64(cfg.Count)
				got := math.Atan2(p.Position.Y, p.Position.X)
				if got < 0 {
					got += 2 * math.Pi
				}
				// Tolerance on the wrap around 0/2π.
				diff := math.Abs(got - want)
				diff = math.Min(diff, 2*math.Pi-diff)
				assert.InDelta(t, 0, diff, 1e-9, "emitter %d angle", i)
				assert.InDelta(t, cfg.RingRadius*math.Cos(tilt), math.Hypot(p.Position.X, p.Position.Y), tol)
				assert.InDelta(t, cfg.PlaneHeight+cfg.RingRadius*math.Sin(tilt), p.Position.Z, tol)
			}
		})
	}
}

func TestPinSymmetry(t *testing.T) {
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			tilt := cfg.TiltAngleDeg * math.Pi / 180
			wantDist := cfg.PinSpacing / 2
			if cfg.PinLayout == emitter.PinLayoutPlanar {
				wantDist *= math.Cos(tilt)
			}
			placements, err := cfg.PlaceAll()
			require.NoError(t, err)
			for i, p := range placements {
				a := r3.Sub(p.PinA, p.Position)
				b := r3.Sub(p.PinB, p.Position)
				sum := r3.Add(a, b)
				assert.InDelta(t, 0, r3.Norm(sum), tol, "emitter %d pins not symmetric", i)
				assert.InDelta(t, wantDist, r3.Norm(a), tol, "emitter %d pin A", i)
				assert.InDelta(t, wantDist, r3.Norm(b), tol, "emitter %d pin B", i)
				if cfg.PinLayout == emitter.PinLayoutExact {
					assert.InDelta(t, 0, r3.Dot(a, p.BeamDirection), tol, "emitter %d pin axis not perpendicular to beam", i)
					assert.InDelta(t, cfg.PinSpacing, r3.Norm(r3.Sub(p.PinB, p.PinA)), tol)
				} else {
					assert.Equal(t, p.Position.Z, p.PinA.Z)
					assert.Equal(t, p.Position.Z, p.PinB.Z)
				}
			}
		})
	}
}

func TestPlanarPinOffset(t *testing.T) {
	cfg := ledConfig()
	ct := math.Cos(cfg.TiltAngleDeg * math.Pi / 180)
	p, err := cfg.Place(1) // 90°
	require.NoError(t, err)
	// At 90° the offset runs along x with pin A on the positive side.
	assert.InDelta(t, 1.2403737934843932, p.PinA.X, tol)
	assert.InDelta(t, 7.813378226673343, p.PinA.Y, tol)
	assert.InDelta(t, p.Position.X+1.27*ct, p.PinA.X, tol)
	assert.InDelta(t, p.Position.X-1.27*ct, p.PinB.X, tol)
	assert.InDelta(t, p.Position.Z, p.PinA.Z, tol)

	// Pin A = position + s/2·cos t·(sin a, cos a, 0) for every emitter.
	for i := 0; i < cfg.Count; i++ {
		p, err := cfg.Place(i)
		require.NoError(t, err)
		sa, ca := math.Sincos(2 * math.Pi * float64(i) / float64(cfg.Count))
		off := r3.Vec{X: 1.27 * ct * sa, Y: 1.27 * ct * ca}
		assert.True(t, r3.Norm(r3.Sub(r3.Add(p.Position, off), p.PinA)) < tol, "emitter %d pin A %v", i, p.PinA)
		assert.True(t, r3.Norm(r3.Sub(r3.Sub(p.Position, off), p.PinB)) < tol, "emitter %d pin B %v", i, p.PinB)
	}
}

func TestExactPinOffset(t *testing.T) {
	cfg := ledConfig()
	cfg.PinLayout = emitter.PinLayoutExact
	for i := 0; i < cfg.Count; i++ {
		p, err := cfg.Place(i)
		require.NoError(t, err)
		off := r3.Scale(1.27, r3.Unit(r3.Cross(r3.Vec{Z: 1}, p.BeamDirection)))
		assert.True(t, r3.Norm(r3.Sub(r3.Add(p.Position, off), p.PinA)) < tol, "emitter %d pin A %v", i, p.PinA)
		assert.True(t, r3.Norm(r3.Sub(r3.Sub(p.Position, off), p.PinB)) < tol, "emitter %d pin B %v", i, p.PinB)
	}
}

func TestDegenerate(t *testing.T) {
	t.Run("zero beam", func(t *testing.T) {
		cfg := ledConfig()
		p0, err := cfg.Place(0)
		require.NoError(t, err)
		cfg.ConvergenceTarget = p0.Position
		p, err := cfg.Place(0)
		require.ErrorIs(t, err, emitter.ErrZeroBeam)
		assert.Zero(t, p)
		assert.ErrorContains(t, err, "emitter 0")

		_, err = cfg.PlaceAll()
		require.ErrorIs(t, err, emitter.ErrZeroBeam)
	})
	t.Run("vertical beam", func(t *testing.T) {
		cfg := ledConfig()
		cfg.Count = 1
		p0, err := cfg.Place(0)
		require.NoError(t, err)
		cfg.ConvergenceTarget = r3.Add(p0.Position, r3.Vec{Z: 10})
		_, err = cfg.Place(0)
		require.ErrorIs(t, err, emitter.ErrUndefinedPinAxis)
	})
	t.Run("each skips", func(t *testing.T) {
		cfg := ledConfig()
		p2, err := cfg.Place(2)
		require.NoError(t, err)
		cfg.ConvergenceTarget = p2.Position
		var ok, bad []int
		cfg.Each(func(i int, p emitter.Placement, err error) bool {
			if err != nil {
				assert.ErrorIs(t, err, emitter.ErrZeroBeam)
				bad = append(bad, i)
				return true
			}
			for _, v := range []r3.Vec{p.Position, p.BeamDirection, p.PinA, p.PinB} {
				assert.False(t, math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z))
			}
			ok = append(ok, i)
			return true
		})
		assert.Equal(t, []int{0, 1, 3}, ok)
		assert.Equal(t, []int{2}, bad)
	})
}

func TestEachStops(t *testing.T) {
	var seen int
	ledConfig().Each(func(i int, p emitter.Placement, err error) bool {
		seen++
		return i < 1
	})
	assert.Equal(t, 2, seen)
}

func TestInvalidConfig(t *testing.T) {
	for name, mod := range map[string]func(*emitter.Config){
		"count":      func(c *emitter.Config) { c.Count = 0 },
		"tilt high":  func(c *emitter.Config) { c.TiltAngleDeg = 90 },
		"tilt low":   func(c *emitter.Config) { c.TiltAngleDeg = -90 },
		"tilt nan":   func(c *emitter.Config) { c.TiltAngleDeg = math.NaN() },
		"radius":     func(c *emitter.Config) { c.RingRadius = 0 },
		"spacing":    func(c *emitter.Config) { c.PinSpacing = -1 },
		"height inf": func(c *emitter.Config) { c.PlaneHeight = math.Inf(1) },
		"target nan": func(c *emitter.Config) { c.ConvergenceTarget.Y = math.NaN() },
		"pin layout": func(c *emitter.Config) { c.PinLayout = 7 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := ledConfig()
			mod(&cfg)
			assert.ErrorIs(t, cfg.Validate(), emitter.ErrInvalidConfig)
			_, err := cfg.PlaceAll()
			assert.ErrorIs(t, err, emitter.ErrInvalidConfig)
			_, err = cfg.Place(0)
			assert.ErrorIs(t, err, emitter.ErrInvalidConfig)
			var calls int
			cfg.Each(func(i int, _ emitter.Placement, err error) bool {
				calls++
				assert.Equal(t, -1, i)
				assert.ErrorIs(t, err, emitter.ErrInvalidConfig)
				return true
			})
			assert.Equal(t, 1, calls)
		})
	}
	_, err := ledConfig().Place(4)
	assert.ErrorIs(t, err, emitter.ErrInvalidConfig)
	_, err = ledConfig().Place(-1)
	assert.ErrorIs(t, err, emitter.ErrInvalidConfig)
}

func TestIdempotent(t *testing.T) {
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			first, err := cfg.PlaceAll()
			require.NoError(t, err)
			second, err := cfg.PlaceAll()
			require.NoError(t, err)
			// Exact comparison: no tolerance.
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("placements differ (-first +second):\n%s", diff)
			}
			var lazy []emitter.Placement
			cfg.Each(func(_ int, p emitter.Placement, err error) bool {
				require.NoError(t, err)
				lazy = append(lazy, p)
				return true
			})
			if diff := cmp.Diff(first, lazy); diff != "" {
				t.Errorf("Each differs from PlaceAll (-eager +lazy):\n%s", diff)
			}
		})
	}
}

func TestSaveLayout(t *testing.T) {
	cfg := ledConfig()
	placements, err := cfg.PlaceAll()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "layout.png")
	require.NoError(t, emitter.SaveLayout(path, cfg, placements))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	_, err = emitter.LayoutPlot(cfg, nil)
	assert.ErrorIs(t, err, emitter.ErrInvalidConfig)
}
