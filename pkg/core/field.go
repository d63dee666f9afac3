package core

// Point is a position in the plane of the topology.
type Point struct {
	X, Y float64
}

// Field is mutable per-node scalar state addressed by node index. It shares
// its index space with the Topology it is used with.
type Field interface {
	Len() int
	Value(i int) float64
	SetValue(i int, v float64)
}

// Topology answers the geometric queries the disturbance components need.
type Topology interface {
	// Coordinates returns the position of node i.
	Coordinates(i int) Point
	// DistancesTo returns the distance from every node to p, indexed by node.
	DistancesTo(p Point) []float64
}

// Values copies the contents of f into a new slice.
func Values(f Field) []float64 {
	out := make([]float64, f.Len())
	for i := range out {
		out[i] = f.Value(i)
	}
	return out
}
