package domain

import "math"

// Location — точка на плоскости в условных единицах расстояния.
type Location struct {
	X float64
	Y float64
}

// DistanceTo возвращает евклидово расстояние до другой точки.
func (l Location) DistanceTo(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}
