package hull

import "github.com/go-gl/mathgl/mgl64"

// EdgePixels returns the coordinates (x = column, y = row) of the solid pixels lying on a border.
//
// A solid pixel is an edge pixel when at least one of its 8 neighbours is solid and at least one
// is transparent or outside the mask. Isolated pixels are dropped. Points are listed row by row.
func EdgePixels(mask *Mask) []mgl64.Vec2 {
	if mask == nil {
		return nil
	}

	edges := make([]mgl64.Vec2, 0, 2*(mask.Width+mask.Height))
	for row := range mask.Solid {
		for col := range mask.Solid[row] {
			if !mask.Solid[row][col] {
				continue
			}

			solidFound := false
			transparentFound := false
			// checks area around the pixel
			for n := row - 1; n <= row+1; n++ {
				for m := col - 1; m <= col+1; m++ {
					if n == row && m == col {
						continue
					}
					if mask.At(m, n) {
						solidFound = true
					} else {
						transparentFound = true
					}
				}
			}

			if solidFound && transparentFound {
				edges = append(edges, mgl64.Vec2{float64(col), float64(row)})
			}
		}
	}

	return edges
}
