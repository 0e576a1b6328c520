package blynk

import "sync"

// stopSignal is a close-once cancellation signal. Both the owning
// dispatch loop (on natural transport death) and Disconnect (on
// intentional shutdown) may try to stop the same signal; sync.Once makes
// that race harmless instead of a double-close panic.
type stopSignal struct {
	once sync.Once
	ch   chan struct{}
}

func newStopSignal() *stopSignal {
	return &stopSignal{ch: make(chan struct{})}
}

func (s *stopSignal) stop() {
	if s == nil {
		return
	}
	s.once.Do(func() { close(s.ch) })
}

func (s *stopSignal) done() <-chan struct{} {
	if s == nil {
		return closedDoneChan
	}
	return s.ch
}

// closedDoneChan lets done() return a ready-to-fire channel for a nil
// *stopSignal instead of blocking forever.
var closedDoneChan = func() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
