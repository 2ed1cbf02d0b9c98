// Package resource derives per-run resource requirements: the MPI tile
// factorization, wall-clock time per step and virtual memory.
package resource

// SerialSlot is the sentinel used for both tile axes when a run needs
// no MPI tiling at all. It is deliberately distinct from 1x1 because
// scheduler flag generation must tell the two apart.
const SerialSlot = -1

// SlotsPerAxis computes the number of MPI tasks along one domain axis
// with n grid points. Runs with few points stay serial; with evenSplit
// the smallest divisor of n with at least minPerProc points per task is
// chosen (the search terminates at d = n at the latest); otherwise the
// point count is simply divided down.
func SlotsPerAxis(n, minPerProc int, evenSplit bool) int {
	if n <= minPerProc {
		return 1
	}
	if evenSplit {
		for d := minPerProc; d <= n; d++ {
			if n%d == 0 {
				return n / d
			}
		}
	}
	return n / minPerProc
}

// TileCaps bounds the tile factorization.
type TileCaps struct {
	MinPerProc int
	EvenSplit  bool
	MaxX, MaxY int // 0 means unbounded
}

// Tile factors the horizontal domain into an MPI task grid. If both
// axes resolve to a single task the serial sentinel pair is returned.
func Tile(pointsX, pointsY int, caps TileCaps) (nx, ny int) {
	nx = SlotsPerAxis(pointsX, caps.MinPerProc, caps.EvenSplit)
	ny = SlotsPerAxis(pointsY, caps.MinPerProc, caps.EvenSplit)
	if caps.MaxX > 0 && nx > caps.MaxX {
		nx = caps.MaxX
	}
	if caps.MaxY > 0 && ny > caps.MaxY {
		ny = caps.MaxY
	}
	if nx == 1 && ny == 1 {
		return SerialSlot, SerialSlot
	}
	return nx, ny
}

// SlotCount returns the number of scheduler slots for a tile pair.
// The serial sentinel still occupies one slot.
func SlotCount(nx, ny int) int {
	if nx == SerialSlot && ny == SerialSlot {
		return 1
	}
	return nx * ny
}
