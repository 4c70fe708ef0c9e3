package opengl

// FPSCounter keeps a rolling frames-per-second estimate sampled at most
// once per second of clock time.
type FPSCounter struct {
	previous float64
	frames   int
	fps      float64
}

// Reset starts a new sampling window at now.
func (c *FPSCounter) Reset(now float64) {
	c.previous = now
	c.frames = 0
	c.fps = 0
}

// Tick records one frame at time now (seconds). Once at least a second has
// elapsed since the previous sample it computes frames/elapsed, resets the
// frame count and reports true.
func (c *FPSCounter) Tick(now float64) (float64, bool) {
	c.frames++

	elapsed := now - c.previous
	if elapsed < 1.0 {
		return c.fps, false
	}

	c.fps = float64(c.frames) / elapsed
	c.frames = 0
	c.previous = now
	return c.fps, true
}

// FPS returns the last computed rate.
func (c *FPSCounter) FPS() float64 { return c.fps }

// Frames returns the frames recorded in the current window.
func (c *FPSCounter) Frames() int { return c.frames }
