// Package config loads the process configuration from environment variables,
// with an optional .env file for local development, following the teacher's
// InitLocalEnvConfig/GetenvOrDefault convention.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coreflux/idorder/common/console"
	"github.com/joho/godotenv"
)

var (
	loadOnce sync.Once
	loaded   bool
)

// LoadDotEnv loads a .env file into the process environment exactly once,
// skipped outside ENV_NAME=local. Safe to call from every binary's main().
func LoadDotEnv() {
	envName := GetenvOrDefault("ENV_NAME", "local")

	fmt.Println(console.Title("ENVIRONMENT " + envName))

	if envName != "local" {
		return
	}

	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Skipping .env file:", err)
			return
		}

		loaded = true

		fmt.Println("Env vars loaded from .env file")
	})

	_ = loaded
}

// GetenvOrDefault mirrors os.Getenv but returns defaultValue when the
// variable is unset or blank.
func GetenvOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return defaultValue
}

// GetenvIntOrDefault parses key as an int64, returning defaultValue on
// absence or parse failure.
func GetenvIntOrDefault(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}

	return v
}

// GetenvBoolOrDefault parses key as a bool, returning defaultValue on
// absence or parse failure.
func GetenvBoolOrDefault(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}

	return v
}

// GetenvDurationMsOrDefault reads key as milliseconds and returns a
// time.Duration, falling back to defaultValue (already a Duration) when
// unset or unparsable.
func GetenvDurationMsOrDefault(key string, defaultValue time.Duration) time.Duration {
	ms := GetenvIntOrDefault(key, int64(defaultValue/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

// GetenvStringSlice splits a comma-separated environment variable into a
// slice, trimming whitespace and dropping empty elements.
func GetenvStringSlice(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
