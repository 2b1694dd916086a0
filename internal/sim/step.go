package sim

import "github.com/tomz197/collide/internal/physics"

// StepResult describes what happened during one Step.
type StepResult struct {
	Collided bool    // Elastic response applied this step
	WallHit  [2]bool // Per-body wall reflection, indexed by BodyID
}

// Step advances the state by dt nominal frames inside a world worldWidth
// pixels wide: integrate, resolve an A/B overlap, then reflect off the walls.
// Positions are never clamped, so a block may sit past a wall for one frame.
// Step is a no-op on a state that was never initialized.
func Step(s *State, dt, worldWidth float64) StepResult {
	var res StepResult
	if !s.ready {
		return res
	}

	a := &s.bodies[BodyA]
	b := &s.bodies[BodyB]

	a.Position += a.Velocity * dt
	b.Position += b.Velocity * dt

	if physics.IntervalsOverlap(a.Position, a.Side, b.Position, b.Side) {
		a.Velocity, b.Velocity = physics.ElasticVelocities(a.Mass, a.Velocity, b.Mass, b.Velocity)
		res.Collided = true
	}

	for i := range s.bodies {
		body := &s.bodies[i]
		body.Velocity, res.WallHit[i] = physics.Reflect(body.Position, worldWidth-body.Side, body.Velocity)
	}

	return res
}
