package device

import (
	"fmt"
	"sync"
)

// Option configures a device at construction time.
type Option func(*base)

// WithSource sets the value source used by simulated sensors.
func WithSource(src ValueSource) Option {
	return func(b *base) {
		if src != nil {
			b.source = src
		}
	}
}

// base carries identity, status and ownership for every concrete device.
// Concrete devices embed it and guard their own state with mu.
type base struct {
	mu       sync.RWMutex
	id       string
	name     string
	location string
	kind     Kind
	status   Status
	owner    Holder
	source   ValueSource
}

// init sets identity fields. New devices start inactive.
func (b *base) init(id, name, location string, kind Kind, opts []Option) {
	b.id = id
	b.name = name
	b.location = location
	b.kind = kind
	b.status = StatusInactive
	b.source = defaultSource{}
	for _, opt := range opts {
		opt(b)
	}
}

func (b *base) ID() string       { return b.id }
func (b *base) Name() string     { return b.name }
func (b *base) Location() string { return b.location }
func (b *base) Kind() Kind       { return b.kind }

func (b *base) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

func (b *base) SetStatus(s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

func (b *base) Activate()   { b.SetStatus(StatusActive) }
func (b *base) Deactivate() { b.SetStatus(StatusInactive) }

func (b *base) Owner() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.owner == nil {
		return ""
	}
	return b.owner.Name()
}

// Info renders a one-line summary, e.g. "[sensor] Main St counter (TS-001) - active @ Main St".
func (b *base) Info() string {
	return fmt.Sprintf("[%s] %s (%s) - %s @ %s", b.kind, b.name, b.id, b.Status(), b.location)
}

// Holder is a subsystem that can own devices. Holders are compared by
// identity, so two holders sharing a name are still different owners.
// Implementations must be pointer types.
type Holder interface {
	Name() string
}

// claim records owner unless the device is held by a different holder.
func (b *base) claim(owner Holder) error {
	if owner == nil {
		return ErrNoHolder
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owner != nil && b.owner != owner {
		return fmt.Errorf("%w: %s is held by %s", ErrAlreadyAttached, b.id, b.owner.Name())
	}
	b.owner = owner
	return nil
}

func (b *base) release() {
	b.mu.Lock()
	b.owner = nil
	b.mu.Unlock()
}

// ownable is satisfied by every device embedding base.
type ownable interface {
	claim(owner Holder) error
	release()
}

// Attach marks d as owned by owner. Attaching a device to the holder that
// already owns it is a no-op.
func Attach(d Device, owner Holder) error {
	o, ok := d.(ownable)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotAttachable, d)
	}
	return o.claim(owner)
}

// Detach clears the owner of d so it can join another subsystem.
func Detach(d Device) {
	if o, ok := d.(ownable); ok {
		o.release()
	}
}
