// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "time"

// Clock supplies the current time used for the date prefix.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the process-local wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Generator assigns identifiers to new articles. It holds no mutable state
// and is safe for concurrent use.
type Generator struct {
	clock Clock
}

// New returns a Generator reading dates from clock. A nil clock means
// SystemClock.
func New(clock Clock) *Generator {
	if clock == nil {
		clock = SystemClock
	}
	return &Generator{clock: clock}
}

// Generate returns explicitID unchanged when it is non-empty, so ids
// supplied by callers stay stable across edits and imports. Otherwise it
// derives a slug from title dated at the generator's current time.
func (g *Generator) Generate(title, explicitID string) string {
	if explicitID != "" {
		return explicitID
	}
	return Make(title, g.clock.Now())
}
