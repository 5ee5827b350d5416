package proxy

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/smartcity-core/internal/auth"
	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// AccessDeniedStatus is returned by Status when reading is not authorised.
const AccessDeniedStatus = "Access denied"

// anonymous is recorded when no session is active.
const anonymous = "anonymous"

// AccessLogEntry records one authorisation decision.
type AccessLogEntry struct {
	Timestamp time.Time   `json:"timestamp"`
	Username  string      `json:"username"`
	Action    auth.Action `json:"action"`
	Allowed   bool        `json:"allowed"`
}

// AccessRecorder receives a copy of every access decision, e.g. for an
// audit export.
type AccessRecorder interface {
	RecordAccess(subsystemName string, entry AccessLogEntry)
}

// accessLog is the append-only decision list shared by a Protection and
// every session derived from it.
type accessLog struct {
	mu      sync.Mutex
	entries []AccessLogEntry
}

func (l *accessLog) append(e AccessLogEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

func (l *accessLog) snapshot() []AccessLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Protection authorises every call against an AccessControl using a single
// login session.
//
// All public methods are thread-safe.
type Protection struct {
	inner    subsystem.Subsystem
	ac       auth.AccessControl
	logger   Logger
	now      func() time.Time
	recorder AccessRecorder
	log      *accessLog

	mu       sync.Mutex
	user     auth.User
	loggedIn bool
}

var _ subsystem.Subsystem = (*Protection)(nil)

// NewProtection wraps inner with access control.
func NewProtection(inner subsystem.Subsystem, ac auth.AccessControl, opts ...Option) *Protection {
	o := buildOptions(opts)
	return &Protection{
		inner:    inner,
		ac:       ac,
		logger:   o.logger,
		now:      o.now,
		recorder: o.recorder,
		log:      &accessLog{},
	}
}

// Session returns a Protection over the same subsystem whose session is
// fixed to u, for callers that authenticate outside Login (e.g. a bearer
// token). A zero u acts as anonymous. Decisions are appended to the shared
// access log, and the receiver's own session is left untouched.
func (p *Protection) Session(u auth.User) *Protection {
	return &Protection{
		inner:    p.inner,
		ac:       p.ac,
		logger:   p.logger,
		now:      p.now,
		recorder: p.recorder,
		log:      p.log,
		user:     u,
		loggedIn: !u.IsZero(),
	}
}

// ProtectionStage returns a Stage that wraps with NewProtection.
func ProtectionStage(ac auth.AccessControl, opts ...Option) Stage {
	return func(s subsystem.Subsystem) subsystem.Subsystem {
		return NewProtection(s, ac, opts...)
	}
}

// Login authenticates and replaces any current session. A failed login
// leaves no session.
func (p *Protection) Login(username, password string) bool {
	u, ok := p.ac.Authenticate(username, password)

	p.mu.Lock()
	p.user, p.loggedIn = u, ok
	p.mu.Unlock()

	if ok {
		p.logger.Info("session opened", "subsystem", p.inner.Name(), "username", username, "role", u.Role)
	} else {
		p.logger.Warn("login failed", "subsystem", p.inner.Name(), "username", username)
	}
	return ok
}

// Logout ends the current session, if any.
func (p *Protection) Logout() {
	p.mu.Lock()
	username, was := p.user.Username, p.loggedIn
	p.user, p.loggedIn = auth.User{}, false
	p.mu.Unlock()

	if was {
		p.logger.Info("session closed", "subsystem", p.inner.Name(), "username", username)
	}
}

// CurrentUser returns the logged-in user.
func (p *Protection) CurrentUser() (auth.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user, p.loggedIn
}

// AccessLog returns a snapshot of every decision so far, including those
// made through sessions.
func (p *Protection) AccessLog() []AccessLogEntry {
	return p.log.snapshot()
}

// Underlying returns the wrapped subsystem for admins only.
func (p *Protection) Underlying() (subsystem.Subsystem, bool) {
	u, ok := p.CurrentUser()
	if !ok || u.Role != auth.RoleAdmin {
		p.logger.Warn("underlying subsystem refused", "subsystem", p.inner.Name(), "username", u.Username)
		return nil, false
	}
	return p.inner, true
}

// check authorises action for the current session and appends exactly one
// access log entry.
func (p *Protection) check(action auth.Action) bool {
	p.mu.Lock()
	u, loggedIn := p.user, p.loggedIn
	p.mu.Unlock()

	allowed := loggedIn && p.ac.Authorize(u, action)

	username := anonymous
	if loggedIn {
		username = u.Username
	}
	entry := AccessLogEntry{
		Timestamp: p.now(),
		Username:  username,
		Action:    action,
		Allowed:   allowed,
	}

	p.log.append(entry)

	if p.recorder != nil {
		p.recorder.RecordAccess(p.inner.Name(), entry)
	}
	if !allowed {
		p.logger.Warn("access denied", "subsystem", p.inner.Name(), "username", username, "action", action)
	}
	return allowed
}

func (p *Protection) denied(what string) error {
	return fmt.Errorf("%w: cannot %s %s", ErrAccessDenied, what, p.inner.Name())
}

// Name returns "Protected[<inner name>]".
func (p *Protection) Name() string                 { return "Protected[" + p.inner.Name() + "]" }
func (p *Protection) Category() subsystem.Category { return p.inner.Category() }
func (p *Protection) IsActive() bool               { return p.inner.IsActive() }

func (p *Protection) Start() error {
	if !p.check(auth.ActionStart) {
		return p.denied("start")
	}
	return p.inner.Start()
}

func (p *Protection) Stop() error {
	if !p.check(auth.ActionStop) {
		return p.denied("stop")
	}
	return p.inner.Stop()
}

// Status returns AccessDeniedStatus instead of failing.
func (p *Protection) Status() string {
	if !p.check(auth.ActionRead) {
		return AccessDeniedStatus
	}
	return p.inner.Status()
}

// Devices returns an empty list instead of failing.
func (p *Protection) Devices() []device.Device {
	if !p.check(auth.ActionRead) {
		return []device.Device{}
	}
	return p.inner.Devices()
}

func (p *Protection) AddDevice(d device.Device) error {
	if !p.check(auth.ActionWrite) {
		return p.denied("add a device to")
	}
	return p.inner.AddDevice(d)
}

func (p *Protection) RemoveDevice(id string) (bool, error) {
	if !p.check(auth.ActionDelete) {
		return false, p.denied("remove a device from")
	}
	return p.inner.RemoveDevice(id)
}
