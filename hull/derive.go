package hull

import (
	"fmt"
	"math"

	"github.com/akmonengine/feather2d/actor"
)

// Derive builds the convex collision polygon of a sprite mask.
// The polygon is scaled by targetHeight / mask.Height so it matches the sprite drawn targetHeight pixels high.
func Derive(mask *Mask, targetHeight float64) (actor.Polygon, error) {
	if err := mask.validate(); err != nil {
		return nil, err
	}
	if !(targetHeight > 0) || math.IsInf(targetHeight, 0) {
		return nil, fmt.Errorf("target height %v: %w", targetHeight, ErrInvalidScale)
	}

	scale := targetHeight / float64(mask.Height)

	edges := EdgePixels(mask)
	convexHull, err := ConvexHull(edges)
	if err != nil {
		return nil, fmt.Errorf("derive shape from %dx%d mask: %w", mask.Width, mask.Height, err)
	}

	return convexHull.Scale(scale), nil
}
