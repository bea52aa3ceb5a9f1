package main

import (
	_ "embed"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/feather2d"
	"github.com/akmonengine/feather2d/actor"
	"github.com/akmonengine/feather2d/hull"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

//go:embed scene.yaml
var defaultScene []byte

// SceneDef is the YAML definition of a scene: a world and the sprites dropped in it.
type SceneDef struct {
	World  feather2d.Config `yaml:"world"`
	Bodies []BodyDef        `yaml:"bodies"`
}

// BodyDef describes one sprite. The mask comes from Sprite (an image file) or Rows ('#' is solid).
type BodyDef struct {
	Name     string     `yaml:"name"`
	Kind     string     `yaml:"kind"`
	X        float64    `yaml:"x"`
	Y        float64    `yaml:"y"`
	Height   float64    `yaml:"height"`
	Velocity [2]float64 `yaml:"velocity,omitempty"`
	Sprite   string     `yaml:"sprite,omitempty"`
	Rows     []string   `yaml:"rows,omitempty"`
}

func parseKind(kind string) (actor.BodyKind, error) {
	switch kind {
	case "", "solid":
		return actor.BodyKindSolid, nil
	case "sensor":
		return actor.BodyKindSensor, nil
	case "decorative":
		return actor.BodyKindDecorative, nil
	default:
		return 0, fmt.Errorf("unknown body kind %q", kind)
	}
}

func (def BodyDef) mask() (*hull.Mask, error) {
	if def.Sprite != "" {
		return hull.LoadMask(def.Sprite)
	}
	return hull.MaskFromRows(def.Rows...), nil
}

func loadScene(path string) (SceneDef, error) {
	data := defaultScene
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return SceneDef{}, err
		}
	}

	scene := SceneDef{World: feather2d.DefaultConfig()}
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return SceneDef{}, fmt.Errorf("parse scene: %w", err)
	}
	return scene, nil
}

// SetupScene creates the world and its bodies. Bodies that cannot be built are logged and skipped.
func SetupScene(scene SceneDef, logger *slog.Logger) (*feather2d.World, error) {
	world, err := feather2d.NewWorldFromConfig(scene.World)
	if err != nil {
		return nil, err
	}

	for _, def := range scene.Bodies {
		kind, err := parseKind(def.Kind)
		if err != nil {
			logger.Error("skipping body", "name", def.Name, "err", err)
			continue
		}
		mask, err := def.mask()
		if err != nil {
			logger.Error("skipping body", "name", def.Name, "err", err)
			continue
		}

		body, err := world.CreateBody(def.X, def.Y, def.Height, mask, kind)
		if err != nil {
			logger.Error("skipping body", "name", def.Name, "err", err)
			continue
		}
		if body == nil {
			logger.Debug("decorative object, no physics body", "name", def.Name)
			continue
		}

		body.Velocity = mgl64.Vec2(def.Velocity)
		body.UserData = def.Name

		data := body.MassData()
		logger.Info("body created", "name", def.Name, "id", body.ID, "kind", kind,
			"vertices", len(body.LocalHull()), "mass", data.Mass, "inertia", data.Inertia)
	}

	return world, nil
}

func subscribeEvents(world *feather2d.World, logger *slog.Logger) {
	log := func(event feather2d.Event) {
		switch e := event.(type) {
		case feather2d.CollisionEnterEvent:
			logger.Info("collision", "event", e.Type(), "a", e.BodyA.UserData, "b", e.BodyB.UserData,
				"overlap", e.Result.Overlap, "contact", e.Result.ContactPoint)
		case feather2d.CollisionExitEvent:
			logger.Info("collision", "event", e.Type(), "a", e.BodyA.UserData, "b", e.BodyB.UserData)
		case feather2d.SensorEnterEvent:
			logger.Info("sensor", "event", e.Type(), "a", e.BodyA.UserData, "b", e.BodyB.UserData)
		case feather2d.SensorExitEvent:
			logger.Info("sensor", "event", e.Type(), "a", e.BodyA.UserData, "b", e.BodyB.UserData)
		}
	}

	for _, eventType := range []feather2d.EventType{
		feather2d.COLLISION_ENTER, feather2d.COLLISION_EXIT, feather2d.SENSOR_ENTER, feather2d.SENSOR_EXIT,
	} {
		world.Events.Subscribe(eventType, log)
	}
}

func main() {
	scenePath := flag.String("scene", "", "scene file (defaults to the embedded scene)")
	steps := flag.Int("steps", 240, "number of ticks to simulate")
	dt := flag.Float64("dt", 1.0/60.0, "tick duration in seconds")
	every := flag.Int("every", 30, "log transforms every n ticks")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	scene, err := loadScene(*scenePath)
	if err != nil {
		logger.Error("loading scene", "err", err)
		os.Exit(1)
	}

	world, err := SetupScene(scene, logger)
	if err != nil {
		logger.Error("creating world", "err", err)
		os.Exit(1)
	}
	subscribeEvents(world, logger)

	for tick := 1; tick <= *steps; tick++ {
		world.Step(*dt)

		if tick%max(1, *every) != 0 {
			continue
		}
		for _, body := range world.Bodies {
			logger.Debug("transform", "tick", tick, "name", body.UserData,
				"position", body.Transform.Position, "angle", body.Transform.Angle,
				"centroid", body.WorldCentroid(), "velocity", body.Velocity)
			if !body.IsFinite() {
				logger.Warn("body state is not finite", "name", body.UserData)
			}
		}
	}

	logger.Info("simulation done", "ticks", *steps, "bodies", len(world.Bodies))
}
