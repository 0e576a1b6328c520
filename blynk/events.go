package blynk

import (
	"fmt"
	"sync"

	"github.com/eapache/queue"

	"github.com/blynkgo/client/action"
)

// mailboxLimit bounds each subscriber's backlog, per design note §9
// ("per-subscriber queues"): a slow consumer drops its oldest
// undelivered event rather than stalling the publisher or growing
// without bound.
const mailboxLimit = 256

// Hooks is the optional set of callback conveniences spec.md §9 offers
// alongside the event stream: virtualPinUpdate, digitalPinUpdate,
// analogPinUpdate, widgetPropertyChanged, hardwareConnected/Disconnected,
// connectionStateChanged, hardwareMessage. Each is invoked after the
// corresponding event is pushed to every subscriber's mailbox. Event hooks
// run on the Connector's dispatch goroutine, so a hook that blocks delays
// delivery of later events to every subscription; ConnectionStateChanged
// runs on whichever goroutine drives the transition (the caller of
// Connect or Disconnect, or the reconnect loop).
type Hooks struct {
	VirtualPinUpdate       func(dashID, deviceID, pin int, values []string)
	DigitalPinUpdate       func(dashID, deviceID, pin int, values []string)
	AnalogPinUpdate        func(dashID, deviceID, pin int, values []string)
	WidgetPropertyChanged  func(dashID, deviceID int, pin, property, value string)
	HardwareConnected      func(dashID, deviceID int)
	HardwareDisconnected   func(dashID, deviceID int)
	ConnectionStateChanged func(state string)
	HardwareMessage        func(event action.DomainEvent)
}

func (h *Hooks) dispatch(ev action.DomainEvent) {
	if h == nil {
		return
	}
	switch e := ev.(type) {
	case action.PinUpdateEvent:
		switch e.Kind {
		case action.PinVirtual:
			if h.VirtualPinUpdate != nil {
				h.VirtualPinUpdate(e.DashID, e.DeviceID, e.Pin, e.Values)
			}
		case action.PinDigital:
			if h.DigitalPinUpdate != nil {
				h.DigitalPinUpdate(e.DashID, e.DeviceID, e.Pin, e.Values)
			}
		case action.PinAnalog:
			if h.AnalogPinUpdate != nil {
				h.AnalogPinUpdate(e.DashID, e.DeviceID, e.Pin, e.Values)
			}
		}
		if h.HardwareMessage != nil {
			h.HardwareMessage(ev)
		}
	case action.WidgetPropertyChangedEvent:
		if h.WidgetPropertyChanged != nil {
			h.WidgetPropertyChanged(e.DashID, e.DeviceID, e.Pin, e.Property, e.Value)
		}
	case action.HardwareConnectedEvent:
		if h.HardwareConnected != nil {
			h.HardwareConnected(e.DashID, e.DeviceID)
		}
	case action.DeviceOfflineEvent:
		if h.HardwareDisconnected != nil {
			h.HardwareDisconnected(e.DashID, e.DeviceID)
		}
	}
}

func (h *Hooks) dispatchState(state string) {
	if h == nil || h.ConnectionStateChanged == nil {
		return
	}
	h.ConnectionStateChanged(state)
}

// mailbox is one subscriber's bounded event queue, backed by
// eapache/queue's ring buffer (grounded on momentics-hioload-ws's use of
// the same package for bounded per-connection send buffers).
type mailbox struct {
	mu     sync.Mutex
	q      *queue.Queue
	notify chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{q: queue.New(), notify: make(chan struct{}, 1)}
}

func (m *mailbox) push(ev action.DomainEvent) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.q.Length() >= mailboxLimit {
		m.q.Remove()
	}
	m.q.Add(ev)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) pop() (action.DomainEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.q.Length() == 0 {
		return nil, false
	}
	ev := m.q.Peek()
	m.q.Remove()
	return ev.(action.DomainEvent), true
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.notify)
}

// Subscription is one consumer's view of the event bus, returned by
// Connector.Subscribe.
type Subscription struct {
	events chan action.DomainEvent
	box    *mailbox
	bus    *eventBus
	id     int
}

// Events returns the channel of domain events for this subscription. It
// is closed when the Subscription is closed or the bus itself is closed
// (on Connector.Disconnect, per spec.md invariant 6).
func (s *Subscription) Events() <-chan action.DomainEvent { return s.events }

// Close detaches this subscription from the bus. Safe to call more than
// once.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s.id)
}

// eventBus is the single-producer, multi-consumer broadcast spec.md §9
// calls for: independent consumer streams backed by per-subscriber
// bounded mailboxes, since this module targets a language without a
// native broadcast channel.
type eventBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
	hooks  *Hooks
}

func newEventBus(hooks *Hooks) *eventBus {
	return &eventBus{subs: make(map[int]*Subscription), hooks: hooks}
}

func (b *eventBus) subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	box := newMailbox()
	sub := &Subscription{events: make(chan action.DomainEvent), box: box, bus: b, id: id}
	b.subs[id] = sub

	go sub.pump()
	return sub
}

// pump drains the mailbox into the subscriber's channel one event at a
// time, so a slow receiver only ever blocks its own channel, never the
// publisher.
func (s *Subscription) pump() {
	defer close(s.events)
	for {
		ev, ok := s.box.pop()
		if ok {
			s.events <- ev
			continue
		}
		_, open := <-s.box.notify
		if !open {
			for ev, ok := s.box.pop(); ok; ev, ok = s.box.pop() {
				s.events <- ev
			}
			return
		}
	}
}

func (b *eventBus) unsubscribe(id int) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()
	if ok {
		sub.box.close()
	}
}

// publish fans ev out to every live subscriber's mailbox and invokes any
// configured Hooks.
func (b *eventBus) publish(ev action.DomainEvent) {
	if ev == nil {
		return
	}

	b.mu.Lock()
	for _, sub := range b.subs {
		sub.box.push(ev)
	}
	b.mu.Unlock()

	b.hooks.dispatch(ev)
}

// summarizeEvent renders a short human-readable line for
// store.EventRecord.Summary — good enough for offline inspection, not
// meant to round-trip.
func summarizeEvent(ev action.DomainEvent) string {
	switch e := ev.(type) {
	case action.HardwareConnectedEvent:
		return fmt.Sprintf("hardware connected dash=%d device=%d", e.DashID, e.DeviceID)
	case action.DeviceOfflineEvent:
		return fmt.Sprintf("hardware disconnected dash=%d device=%d", e.DashID, e.DeviceID)
	case action.PinUpdateEvent:
		return fmt.Sprintf("pin update dash=%d device=%d pin=%d", e.DashID, e.DeviceID, e.Pin)
	case action.WidgetPropertyChangedEvent:
		return fmt.Sprintf("widget property dash=%d device=%d pin=%s", e.DashID, e.DeviceID, e.Pin)
	case action.ConnectionStateEvent:
		return fmt.Sprintf("connection state=%s attempt=%d", e.State, e.Attempt)
	default:
		return fmt.Sprintf("%T", ev)
	}
}

// closeAll tears down every subscription, closing their event channels.
func (b *eventBus) closeAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[int]*Subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.box.close()
	}
}
