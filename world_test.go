package feather2d

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/akmonengine/feather2d/actor"
	"github.com/akmonengine/feather2d/hull"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pmezard/go-difflib/difflib"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec2AlmostEqual(a, b mgl64.Vec2, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) && almostEqual(a.Y(), b.Y(), epsilon)
}

func newTestWorld(t testing.TB, pixelsPerMeter float64, gravity mgl64.Vec2) *World {
	t.Helper()

	w, err := NewWorld(pixelsPerMeter, gravity)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	return w
}

// addBox adds a w×h box with its top-left corner at (x, y)
func addBox(t testing.TB, world *World, x, y, w, h float64, kind actor.BodyKind) *actor.RigidBody {
	t.Helper()

	shape := actor.Polygon{{0, 0}, {w, 0}, {w, h}, {0, h}}
	body, err := actor.NewRigidBody(mgl64.Vec2{x, y}, shape, kind, world.PixelsPerMeter)
	if err != nil {
		t.Fatalf("NewRigidBody() error = %v", err)
	}
	if err := world.AddBody(body); err != nil {
		t.Fatalf("AddBody() error = %v", err)
	}
	return body
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewWorld(t *testing.T) {
	w, err := NewWorld(10, mgl64.Vec2{0, 9.81})
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	if w.PixelsPerMeter != 10 || w.Gravity != (mgl64.Vec2{0, 9.81}) {
		t.Errorf("NewWorld() = %v ppm, %v gravity", w.PixelsPerMeter, w.Gravity)
	}
	if len(w.Bodies) != 0 {
		t.Errorf("NewWorld() should be empty, got %d bodies", len(w.Bodies))
	}
	if w.ExemptSensors {
		t.Error("Sensors should receive impulses by default")
	}
}

func TestNewWorld_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ppm     float64
		gravity mgl64.Vec2
	}{
		{"zero scale", 0, mgl64.Vec2{0, 0}},
		{"negative scale", -10, mgl64.Vec2{0, 0}},
		{"NaN scale", math.NaN(), mgl64.Vec2{0, 0}},
		{"infinite scale", math.Inf(1), mgl64.Vec2{0, 0}},
		{"NaN gravity", 10, mgl64.Vec2{math.NaN(), 0}},
		{"infinite gravity", 10, mgl64.Vec2{0, math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWorld(tt.ppm, tt.gravity)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewWorld() error = %v, want ErrInvalidConfig", err)
			}
			if w != nil {
				t.Error("NewWorld() should not return a world on error")
			}
		})
	}
}

func TestWorld_CreateBody(t *testing.T) {
	w := newTestWorld(t, 10, mgl64.Vec2{0, 0})
	mask := hull.MaskFromRows(
		"######",
		"######",
		"######",
		"######",
		"######",
		"######",
	)

	body, err := w.CreateBody(10, 20, 60, mask, actor.BodyKindSolid)
	if err != nil {
		t.Fatalf("CreateBody() error = %v", err)
	}

	if len(w.Bodies) != 1 || w.Bodies[0] != body {
		t.Fatal("CreateBody() should add the body to the world")
	}
	if body.ID != 1 {
		t.Errorf("ID = %d, want 1", body.ID)
	}
	if body.Transform.Position != (mgl64.Vec2{10, 20}) {
		t.Errorf("Position = %v, want [10 20]", body.Transform.Position)
	}

	// pixel centers 0..5 scaled by 60/6
	bounds := body.Bounds()
	if !vec2AlmostEqual(bounds.Min, mgl64.Vec2{10, 20}, 1e-9) || !vec2AlmostEqual(bounds.Max, mgl64.Vec2{60, 70}, 1e-9) {
		t.Errorf("Bounds() = %+v, want [10 20]..[60 70]", bounds)
	}
	if !almostEqual(body.GetMass(), 25, 1e-9) {
		t.Errorf("Mass = %v, want 25", body.GetMass())
	}
}

func TestWorld_CreateBody_Decorative(t *testing.T) {
	w := newTestWorld(t, 10, mgl64.Vec2{0, 0})

	body, err := w.CreateBody(0, 0, 60, hull.MaskFromRows("##", "##"), actor.BodyKindDecorative)
	if err != nil || body != nil {
		t.Errorf("CreateBody() = (%v, %v), want (nil, nil)", body, err)
	}
	if len(w.Bodies) != 0 {
		t.Errorf("Decorative objects should not be added, got %d bodies", len(w.Bodies))
	}
}

func TestWorld_CreateBody_Errors(t *testing.T) {
	tests := []struct {
		name         string
		mask         *hull.Mask
		targetHeight float64
		wantErr      error
	}{
		{"nil mask", nil, 10, hull.ErrEmptyMask},
		{"invalid height", hull.MaskFromRows("##", "##"), 0, hull.ErrInvalidScale},
		{"line", hull.MaskFromRows("######"), 10, hull.ErrDegenerateShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, 10, mgl64.Vec2{0, 0})

			body, err := w.CreateBody(0, 0, tt.targetHeight, tt.mask, actor.BodyKindSolid)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateBody() error = %v, want %v", err, tt.wantErr)
			}
			if body != nil || len(w.Bodies) != 0 {
				t.Error("A failed CreateBody() should add nothing")
			}
		})
	}
}

func TestWorld_AddBody(t *testing.T) {
	w := newTestWorld(t, 1, mgl64.Vec2{0, 0})
	a := addBox(t, w, 0, 0, 10, 10, actor.BodyKindSolid)
	b := addBox(t, w, 50, 0, 10, 10, actor.BodyKindSensor)

	if a.ID != 1 || b.ID != 2 {
		t.Errorf("IDs = %d, %d, want 1, 2", a.ID, b.ID)
	}
	if w.Body(2) != b || w.Body(3) != nil {
		t.Error("Body() should find bodies by ID")
	}

	if err := w.AddBody(a); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("AddBody() twice error = %v, want ErrInvalidBody", err)
	}
	if err := w.AddBody(nil); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("AddBody(nil) error = %v, want ErrInvalidBody", err)
	}

	foreign, err := actor.NewRigidBody(mgl64.Vec2{0, 0}, actor.Polygon{{0, 0}, {1, 0}, {0, 1}}, actor.BodyKindSolid, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddBody(foreign); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("AddBody() with another scale error = %v, want ErrInvalidBody", err)
	}
	if len(w.Bodies) != 2 {
		t.Errorf("Rejected bodies should not be added, got %d bodies", len(w.Bodies))
	}
}

func TestWorld_RemoveBody(t *testing.T) {
	w := newTestWorld(t, 1, mgl64.Vec2{0, 0})
	a := addBox(t, w, 0, 0, 10, 10, actor.BodyKindSolid)
	b := addBox(t, w, 5, 0, 10, 10, actor.BodyKindSolid)
	c := addBox(t, w, 100, 0, 10, 10, actor.BodyKindSolid)

	w.Step(0.01)
	if !w.IsColliding(a, b) {
		t.Fatal("a and b should be colliding")
	}

	w.RemoveBody(b)
	if len(w.Bodies) != 2 || w.Bodies[0] != a || w.Bodies[1] != c {
		t.Errorf("RemoveBody() should keep the order of the other bodies")
	}
	if w.IsColliding(a, b) {
		t.Error("The pairs of a removed body should be forgotten")
	}

	// removing twice is harmless
	w.RemoveBody(b)
	if len(w.Bodies) != 2 {
		t.Errorf("len(Bodies) = %d, want 2", len(w.Bodies))
	}
}

func TestWorld_AddBody_OwnedByAnotherWorld(t *testing.T) {
	first := newTestWorld(t, 1, mgl64.Vec2{0, 0})
	x := addBox(t, first, 0, 0, 10, 10, actor.BodyKindSolid)
	y := addBox(t, first, 5, 0, 10, 10, actor.BodyKindSolid)
	z := addBox(t, first, 500, 0, 10, 10, actor.BodyKindSolid)

	first.Step(0.01)
	if !first.IsColliding(x, y) {
		t.Fatal("x and y should be colliding")
	}

	second := newTestWorld(t, 1, mgl64.Vec2{0, 0})
	addBox(t, second, 0, 0, 10, 10, actor.BodyKindSolid)

	if err := second.AddBody(z); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("AddBody() of a body held by another world error = %v, want ErrInvalidBody", err)
	}
	if z.ID != 3 {
		t.Errorf("A rejected body should keep its ID, got %d", z.ID)
	}
	if len(second.Bodies) != 1 {
		t.Errorf("len(Bodies) = %d, want 1", len(second.Bodies))
	}
	if first.IsColliding(x, z) {
		t.Error("z is far from x and should not be reported colliding")
	}
	if !first.IsColliding(x, y) {
		t.Error("The first world should keep its colliding pairs")
	}
}

func TestWorld_AddBody_AfterRemove(t *testing.T) {
	first := newTestWorld(t, 1, mgl64.Vec2{0, 0})
	body := addBox(t, first, 0, 0, 10, 10, actor.BodyKindSolid)

	second := newTestWorld(t, 1, mgl64.Vec2{0, 0})
	addBox(t, second, 100, 0, 10, 10, actor.BodyKindSolid)

	first.RemoveBody(body)
	if body.Owner() != nil {
		t.Errorf("Owner() = %v after RemoveBody(), want nil", body.Owner())
	}

	if err := second.AddBody(body); err != nil {
		t.Fatalf("AddBody() error = %v", err)
	}
	if body.ID != 2 || second.Body(2) != body {
		t.Errorf("ID = %d, want 2", body.ID)
	}
	if body.Owner() != second {
		t.Error("The body should belong to the second world")
	}

	// removing from a world that does not hold the body leaves it alone
	first.RemoveBody(body)
	if body.Owner() != second || len(second.Bodies) != 2 {
		t.Error("RemoveBody() on another world should not free the body")
	}
}

// =============================================================================
// Step Tests
// =============================================================================

type bodyState struct {
	position        mgl64.Vec2
	velocity        mgl64.Vec2
	angle           float64
	angularVelocity float64
}

func stateOf(body *actor.RigidBody) bodyState {
	return bodyState{body.Transform.Position, body.Velocity, body.Transform.Angle, body.AngularVelocity}
}

func TestWorld_Step_NonPositiveDt(t *testing.T) {
	w := newTestWorld(t, 10, mgl64.Vec2{0, 9.81})
	a := addBox(t, w, 0, 0, 10, 10, actor.BodyKindSolid)
	b := addBox(t, w, 5, 5, 10, 10, actor.BodyKindSolid)
	a.Velocity = mgl64.Vec2{3, -2}
	a.AngularVelocity = 0.5
	b.Velocity = mgl64.Vec2{-1, 0}

	before := []bodyState{stateOf(a), stateOf(b)}

	for _, dt := range []float64{0, -0.016, math.NaN(), math.Inf(1)} {
		w.Step(dt)
	}

	for i, body := range w.Bodies {
		if got := stateOf(body); got != before[i] {
			t.Errorf("body %d changed: %+v, want %+v", body.ID, got, before[i])
		}
	}
	if w.IsColliding(a, b) {
		t.Error("A skipped tick should not record collisions")
	}
}

func TestWorld_Step_Gravity(t *testing.T) {
	w := newTestWorld(t, 10, mgl64.Vec2{0, 9.81})
	body := addBox(t, w, 0, 100, 10, 10, actor.BodyKindSolid)

	w.Step(0.1)

	if !vec2AlmostEqual(body.Velocity, mgl64.Vec2{0, 0.981}, 1e-9) {
		t.Errorf("Velocity = %v, want [0 0.981]", body.Velocity)
	}
	// v·dt·ppm = 0.981·0.1·10
	if !vec2AlmostEqual(body.Transform.Position, mgl64.Vec2{0, 100.981}, 1e-9) {
		t.Errorf("Position = %v, want [0 100.981]", body.Transform.Position)
	}
	if body.Torque() != 0 || body.AngularVelocity != 0 {
		t.Error("Gravity acts at the centroid and should not rotate the body")
	}
}

func TestWorld_Step_EdgeTriggeredResolution(t *testing.T) {
	w := newTestWorld(t, 1, mgl64.Vec2{0, 0})
	a := addBox(t, w, 0, 0, 10, 10, actor.BodyKindSolid)
	b := addBox(t, w, 5, 0, 10, 10, actor.BodyKindSolid)
	a.Velocity = mgl64.Vec2{1, 0}
	b.Velocity = mgl64.Vec2{-1, 0}

	// first contact: equal masses swap their velocities
	w.Step(1)
	if !vec2AlmostEqual(a.Velocity, mgl64.Vec2{-1, 0}, 1e-12) || !vec2AlmostEqual(b.Velocity, mgl64.Vec2{1, 0}, 1e-12) {
		t.Fatalf("After first contact: a = %v, b = %v, want [-1 0] and [1 0]", a.Velocity, b.Velocity)
	}
	if !w.IsColliding(a, b) {
		t.Fatal("The pair should be recorded as colliding")
	}
	if len(w.constraints) != 0 {
		t.Errorf("%d constraints kept after the tick, want 0", len(w.constraints))
	}

	// still overlapping, the impulse is not applied again
	w.Step(1)
	if !vec2AlmostEqual(a.Velocity, mgl64.Vec2{-1, 0}, 1e-12) || !vec2AlmostEqual(b.Velocity, mgl64.Vec2{1, 0}, 1e-12) {
		t.Errorf("A lasting overlap changed velocities: a = %v, b = %v", a.Velocity, b.Velocity)
	}

	w.Step(1)
	w.Step(1)
	if w.IsColliding(a, b) {
		t.Error("The bodies have separated, the pair should be cleared")
	}
}

func TestWorld_Step_ReentryResolvesAgain(t *testing.T) {
	w := newTestWorld(t, 1, mgl64.Vec2{0, 0})
	a := addBox(t, w, 0, 0, 10, 10, actor.BodyKindSolid)
	b := addBox(t, w, 5, 0, 10, 10, actor.BodyKindSolid)
	b.Velocity = mgl64.Vec2{-1, 0}

	w.Step(1)
	if !vec2AlmostEqual(a.Velocity, mgl64.Vec2{-1, 0}, 1e-12) {
		t.Fatalf("a.Velocity = %v, want [-1 0]", a.Velocity)
	}

	// separate the bodies for one tick
	b.Move(100, 0)
	w.Step(1)
	if w.IsColliding(a, b) {
		t.Fatal("The pair should be cleared once separated")
	}

	// back in contact, moving towards each other again
	b.Transform.Position = a.Transform.Position.Add(mgl64.Vec2{5, 0})
	a.Velocity = mgl64.Vec2{1, 0}
	b.Velocity = mgl64.Vec2{0, 0}
	w.Step(1)
	if !vec2AlmostEqual(b.Velocity, mgl64.Vec2{1, 0}, 1e-12) {
		t.Errorf("b.Velocity = %v, want [1 0] after a new contact", b.Velocity)
	}
}

func TestWorld_Step_InsertionOrderMatters(t *testing.T) {
	build := func(t *testing.T, reverse bool) (a, b, c *actor.RigidBody) {
		w := newTestWorld(t, 1, mgl64.Vec2{0, 0})
		if reverse {
			c = addBox(t, w, 18, 0, 10, 10, actor.BodyKindSolid)
			b = addBox(t, w, 9, 0, 10, 10, actor.BodyKindSolid)
			a = addBox(t, w, 0, 0, 10, 10, actor.BodyKindSolid)
		} else {
			a = addBox(t, w, 0, 0, 10, 10, actor.BodyKindSolid)
			b = addBox(t, w, 9, 0, 10, 10, actor.BodyKindSolid)
			c = addBox(t, w, 18, 0, 10, 10, actor.BodyKindSolid)
		}
		a.Velocity = mgl64.Vec2{1, 0}
		w.Step(1e-9)
		return a, b, c
	}

	tests := []struct {
		name    string
		reverse bool
		want    [3]float64
	}{
		// (a, b) passes the velocity to b, then (b, c) passes it to c
		{"a, b, c", false, [3]float64{0, 0, 1}},
		// (c, b) sees no relative motion, then (b, a) passes the velocity to b
		{"c, b, a", true, [3]float64{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, c := build(t, tt.reverse)
			got := [3]float64{a.Velocity.X(), b.Velocity.X(), c.Velocity.X()}
			for i := range got {
				if !almostEqual(got[i], tt.want[i], 1e-12) {
					t.Errorf("velocities = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestWorld_Step_SensorResponse(t *testing.T) {
	tests := []struct {
		name          string
		exemptSensors bool
		wantSolid     mgl64.Vec2
	}{
		{"sensors receive impulses", false, mgl64.Vec2{0, 0}},
		{"sensors exempt", true, mgl64.Vec2{2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, 1, mgl64.Vec2{0, 0})
			w.ExemptSensors = tt.exemptSensors
			solid := addBox(t, w, 0, 0, 10, 10, actor.BodyKindSolid)
			sensor := addBox(t, w, 5, 0, 10, 10, actor.BodyKindSensor)
			solid.Velocity = mgl64.Vec2{2, 0}

			w.Step(1e-9)

			if !vec2AlmostEqual(solid.Velocity, tt.wantSolid, 1e-12) {
				t.Errorf("solid.Velocity = %v, want %v", solid.Velocity, tt.wantSolid)
			}
			if !w.IsColliding(solid, sensor) {
				t.Error("Sensors are detected in both modes")
			}
		})
	}
}

func TestWorld_Step_MassPropertiesUnchanged(t *testing.T) {
	w := newTestWorld(t, 10, mgl64.Vec2{0, 9.81})
	body := addBox(t, w, 0, 0, 50, 60, actor.BodyKindSolid)
	body.AngularVelocity = 2
	before := body.MassData()

	for range 100 {
		w.Step(1.0 / 60.0)
	}

	if body.MassData() != before {
		t.Errorf("MassData() = %+v, want %+v", body.MassData(), before)
	}
	if !almostEqual(body.WorldVertices().Area(), before.Area, 1e-6) {
		t.Errorf("World hull area = %v, want %v", body.WorldVertices().Area(), before.Area)
	}
}

// =============================================================================
// Determinism & Clone Tests
// =============================================================================

func buildScene(t testing.TB) *World {
	t.Helper()

	w := newTestWorld(t, 10, mgl64.Vec2{0, 9.81})
	mask := hull.MaskFromRows(
		"..##..",
		".####.",
		"######",
		"######",
		".####.",
		"..##..",
	)

	for i := range 8 {
		x := float64(i%4) * 45
		y := float64(i/4) * 50
		kind := actor.BodyKindSolid
		if i == 5 {
			kind = actor.BodyKindSensor
		}
		body, err := w.CreateBody(x, y, 60, mask, kind)
		if err != nil {
			t.Fatalf("CreateBody() error = %v", err)
		}
		body.Velocity = mgl64.Vec2{float64(i%3) - 1, float64(i%2) * -2}
		body.AngularVelocity = float64(i) * 0.1
	}
	return w
}

// trace renders every body state with exact float formatting
func trace(w *World) string {
	var b strings.Builder
	for _, body := range w.Bodies {
		fmt.Fprintf(&b, "%d pos=%b,%b vel=%b,%b angle=%b omega=%b\n", body.ID,
			body.Transform.Position.X(), body.Transform.Position.Y(),
			body.Velocity.X(), body.Velocity.Y(),
			body.Transform.Angle, body.AngularVelocity)
	}
	return b.String()
}

func compareTraces(t *testing.T, expected, current string) {
	t.Helper()

	if expected == current {
		return
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(current),
		FromFile: "Expected",
		ToFile:   "Current",
		Context:  0,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	t.Errorf("Simulations diverged:\n%s", text)
}

func TestWorld_Determinism(t *testing.T) {
	dts := []float64{1.0 / 60.0, 1.0 / 30.0, 0.02, 0, 1.0 / 144.0}

	run := func(w *World) string {
		var b strings.Builder
		for i := range 120 {
			w.Step(dts[i%len(dts)])
			b.WriteString(trace(w))
		}
		return b.String()
	}

	compareTraces(t, run(buildScene(t)), run(buildScene(t)))
}

func TestWorld_Clone(t *testing.T) {
	w := buildScene(t)
	for range 30 {
		w.Step(1.0 / 60.0)
	}

	clone, err := w.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	if len(clone.Bodies) != len(w.Bodies) {
		t.Fatalf("Clone() has %d bodies, want %d", len(clone.Bodies), len(w.Bodies))
	}
	for i := range w.Bodies {
		if clone.Bodies[i] == w.Bodies[i] {
			t.Fatal("Clone() should not share bodies")
		}
		if clone.Bodies[i].ID != w.Bodies[i].ID {
			t.Errorf("Clone() body %d ID = %d, want %d", i, clone.Bodies[i].ID, w.Bodies[i].ID)
		}
		if clone.Bodies[i].Owner() != clone || w.Bodies[i].Owner() != w {
			t.Errorf("Clone() body %d should belong to the cloned world", i)
		}
	}
	for pair := range w.previousPairs {
		if !clone.IsColliding(clone.Body(pair.idA), clone.Body(pair.idB)) {
			t.Errorf("Clone() lost colliding pair %v", pair)
		}
	}

	// both copies evolve identically and independently
	compareTraces(t, trace(w), trace(clone))
	for range 60 {
		w.Step(1.0 / 60.0)
		clone.Step(1.0 / 60.0)
	}
	compareTraces(t, trace(w), trace(clone))

	before := trace(w)
	clone.Step(1.0 / 60.0)
	if trace(w) != before {
		t.Error("Stepping the clone changed the original world")
	}

	// new bodies keep unique IDs
	extra := addBox(t, clone, 500, 500, 10, 10, actor.BodyKindSolid)
	if extra.ID != uint64(len(w.Bodies)+1) {
		t.Errorf("ID = %d, want %d", extra.ID, len(w.Bodies)+1)
	}
}

func TestStepWorlds(t *testing.T) {
	sequential := buildScene(t)

	worlds := make([]*World, 5)
	for i := range worlds {
		clone, err := sequential.Clone()
		if err != nil {
			t.Fatal(err)
		}
		worlds[i] = clone
	}

	for range 90 {
		sequential.Step(1.0 / 60.0)
		StepWorlds(worlds, 1.0/60.0, 2)
	}

	for _, w := range worlds {
		compareTraces(t, trace(sequential), trace(w))
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWorld_Step(b *testing.B) {
	w := newTestWorld(b, 10, mgl64.Vec2{0, 9.81})
	for i := range 100 {
		addBox(b, w, float64(i%10)*12, float64(i/10)*12, 10, 10, actor.BodyKindSolid)
	}

	b.ResetTimer()
	for range b.N {
		w.Step(1.0 / 60.0)
	}
}
