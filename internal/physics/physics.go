// Package physics provides 1-D collision detection and conservation helpers.
package physics

// IntervalsOverlap checks if [x1, x1+w1) and [x2, x2+w2) overlap on the x-axis.
// Touching edges do not count as overlap.
func IntervalsOverlap(x1, w1, x2, w2 float64) bool {
	return x1 < x2+w2 && x1+w1 > x2
}

// ElasticVelocities returns the post-collision velocities of two bodies in a
// perfectly elastic 1-D collision. Both results are computed from the
// pre-collision velocities.
func ElasticVelocities(m1, v1, m2, v2 float64) (float64, float64) {
	total := m1 + m2
	nv1 := ((m1-m2)*v1 + 2*m2*v2) / total
	nv2 := ((m2-m1)*v2 + 2*m1*v1) / total
	return nv1, nv2
}

// Momentum returns the total linear momentum of two bodies.
func Momentum(m1, v1, m2, v2 float64) float64 {
	return m1*v1 + m2*v2
}

// KineticEnergy returns the total kinetic energy of two bodies.
func KineticEnergy(m1, v1, m2, v2 float64) float64 {
	return 0.5*m1*v1*v1 + 0.5*m2*v2*v2
}

// Reflect returns v with its sign flipped when x lies outside [0, limit].
// Reports whether a reflection happened.
func Reflect(x, limit, v float64) (float64, bool) {
	if x > limit || x < 0 {
		return -v, true
	}
	return v, false
}
