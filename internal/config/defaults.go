package config

import "time"

// World - logical pixels. The browser uses its canvas size; terminals map
// CellPixels logical pixels onto each column and each half-row.
const (
	WorldWidth  = 800 // Until a viewport reports its size
	WorldHeight = 400
	CellPixels  = 8
)

// Frame timing. Velocities are expressed in pixels per nominal frame, so the
// stepper receives elapsed time as a fraction of NominalFrame.
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS
	NominalFrame    = time.Second / 60
	MaxFrameElapsed = 100 * time.Millisecond // 10 FPS floor, slower frames are capped
)

// Control surface steps.
const (
	MassStep     = 1.0
	VelocityStep = 1.0
)

// Terminal render limits.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 60
)

// Inactivity (SSH sessions).
const (
	InactivityWarnUser       = 240 // Seconds
	InactivityDisconnectUser = 300 // Seconds
)

// Scenario reload debounce.
const WatchDebounce = 100 * time.Millisecond
