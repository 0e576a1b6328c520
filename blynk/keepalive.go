package blynk

import (
	"time"

	"github.com/blynkgo/client/action"
)

// startKeepAlive launches the PING ticker spec.md §4.7 describes: every
// pingInterval it sends a Ping action and swallows any error — the
// subsequent transport stream termination is what actually drives
// reconnection, per spec.md §7's propagation policy.
func (c *Connector) startKeepAlive(stop *stopSignal) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop.done():
			return
		case <-ticker.C:
			if _, err := c.sendInternal(action.Ping{}); err != nil {
				c.logf("blynk: keep-alive ping failed: %v", err)
			}
		}
	}
}
