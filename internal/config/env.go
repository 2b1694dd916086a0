// Package config provides shared configuration utilities and tunables.
package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvFloat returns the variable parsed as a float64, or fallback if it is
// unset or not a number.
func GetEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

// GetEnvDuration returns the variable parsed with time.ParseDuration, or
// fallback if it is unset or malformed.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// FrameTimeFromEnv returns the frame time for COLLIDE_FPS, or TargetFrameTime
// when it is unset or not a positive rate.
func FrameTimeFromEnv() time.Duration {
	fps := GetEnvFloat("COLLIDE_FPS", TargetFPS)
	if fps <= 0 || fps > 1000 {
		return TargetFrameTime
	}
	return time.Duration(float64(time.Second) / fps)
}
