package blynk

import (
	"context"
	"math"
	"time"
)

// reconnectDelay computes base * 1.5^(n-1) capped at max, the sequence
// spec.md invariant 7 names.
func reconnectDelay(base, max time.Duration, attempt int) time.Duration {
	d := time.Duration(float64(base) * math.Pow(1.5, float64(attempt-1)))
	if d > max {
		return max
	}
	return d
}

// runReconnect implements spec.md §4.7's reconnect sub-state-machine. It
// is launched as a goroutine whenever the transport's message stream
// ends while the session is Up, and exits either by re-establishing a
// session (transitioning back to Up) or by exhausting max_reconnect_attempts
// (transitioning to Disconnected). stop is closed by disconnect() to
// abandon the loop early.
func (c *Connector) runReconnect(stop *stopSignal) {
	attempt := 1
	for {
		c.mu.Lock()
		c.sess.transport = stateReconnecting
		c.sess.reconnectAttempt = attempt
		c.mu.Unlock()
		c.metrics.SetReconnectAttempt(attempt)
		c.emitState(stateReconnecting.String(), attempt)

		if attempt > c.cfg.MaxReconnectAttempts {
			c.mu.Lock()
			c.sess.reset()
			c.mu.Unlock()
			c.emitState(stateDisconnected.String(), attempt)
			return
		}

		delay := reconnectDelay(c.cfg.ReconnectBaseDelay, c.cfg.ReconnectMaxDelay, attempt)
		select {
		case <-stop.done():
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ResponseTimeout)
		err := c.reestablish(ctx)
		cancel()
		if err == nil {
			c.mu.Lock()
			c.sess.transport = stateUp
			c.sess.reconnectAttempt = 0
			c.mu.Unlock()
			c.metrics.SetReconnectAttempt(0)
			c.emitState("Reconnected", 0)
			return
		}
		c.logf("blynk: reconnect attempt %d failed: %v", attempt, err)
		attempt++
	}
}
