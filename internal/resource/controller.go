package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the limit for managed memory (page buffers and
	// blob buffers that have not been released yet). Reservations fail once
	// usage would exceed it; tracked charges always succeed but count toward
	// usage. If 0, no limit is enforced (only tracking).
	MemoryLimitBytes int64

	// IOLimitBytesPerSec is the maximum throughput for blob delivery.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller tracks managed memory and throttles delivery IO.
type Controller struct {
	cfg Config

	memUsed atomic.Int64
	memPeak atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory reserves bytes of managed memory.
// It never blocks: ErrMemoryLimitExceeded is returned when the limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	limit := c.cfg.MemoryLimitBytes
	for {
		used := c.memUsed.Load()
		if limit > 0 && used+bytes > limit {
			return ErrMemoryLimitExceeded
		}
		if c.memUsed.CompareAndSwap(used, used+bytes) {
			c.updatePeak(used + bytes)
			return nil
		}
	}
}

// chargeMemory records bytes as used without checking the limit.
func (c *Controller) chargeMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.updatePeak(c.memUsed.Add(bytes))
}

func (c *Controller) updatePeak(used int64) {
	for {
		peak := c.memPeak.Load()
		if used <= peak || c.memPeak.CompareAndSwap(peak, used) {
			return
		}
	}
}

// Tracked returns a view of c whose AcquireMemory always succeeds. Bytes it
// holds count toward usage, so they shrink the headroom left for
// reservations made through c.
func (c *Controller) Tracked() *Tracked {
	return &Tracked{c: c}
}

// Tracked charges memory to a Controller without enforcing its limit.
type Tracked struct {
	c *Controller
}

// AcquireMemory charges bytes and never fails.
func (t *Tracked) AcquireMemory(bytes int64) error {
	t.c.chargeMemory(bytes)
	return nil
}

// ReleaseMemory returns charged bytes.
func (t *Tracked) ReleaseMemory(bytes int64) {
	t.c.ReleaseMemory(bytes)
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryPeak returns the highest memory usage observed.
func (c *Controller) MemoryPeak() int64 {
	if c == nil {
		return 0
	}
	return c.memPeak.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the burst are split so that they never fail outright.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
