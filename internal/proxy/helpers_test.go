package proxy

import (
	"sync"
	"time"

	"github.com/nerrad567/smartcity-core/internal/auth"
	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// countingSubsystem counts calls reaching the real subsystem.
type countingSubsystem struct {
	*subsystem.Base

	mu    sync.Mutex
	calls map[string]int
}

func newCounting() *countingSubsystem {
	return &countingSubsystem{
		Base:  subsystem.NewBase("City Security", subsystem.CategorySecurity),
		calls: make(map[string]int),
	}
}

func (c *countingSubsystem) hit(method string) {
	c.mu.Lock()
	c.calls[method]++
	c.mu.Unlock()
}

func (c *countingSubsystem) count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *countingSubsystem) Start() error             { c.hit("start"); return c.Base.Start() }
func (c *countingSubsystem) Stop() error              { c.hit("stop"); return c.Base.Stop() }
func (c *countingSubsystem) Status() string           { c.hit("status"); return c.Base.Status() }
func (c *countingSubsystem) Devices() []device.Device { c.hit("devices"); return c.Base.Devices() }
func (c *countingSubsystem) AddDevice(d device.Device) error {
	c.hit("add")
	return c.Base.AddDevice(d)
}
func (c *countingSubsystem) RemoveDevice(id string) (bool, error) {
	c.hit("remove")
	return c.Base.RemoveDevice(id)
}

// fakeAccessControl authenticates plaintext credentials and authorises with
// the static role map. It avoids argon2 cost in proxy tests.
type fakeAccessControl struct {
	users map[string]struct {
		password string
		user     auth.User
	}
	authorizeCalls int
}

func newFakeAC() *fakeAccessControl {
	ac := &fakeAccessControl{users: map[string]struct {
		password string
		user     auth.User
	}{}}
	ac.add("admin", "admin123", auth.RoleAdmin)
	ac.add("operator", "oper123", auth.RoleOperator)
	ac.add("viewer", "view123", auth.RoleViewer)
	return ac
}

func (f *fakeAccessControl) add(username, password string, role auth.Role) {
	f.users[username] = struct {
		password string
		user     auth.User
	}{password, auth.User{ID: "id-" + username, Username: username, Role: role}}
}

func (f *fakeAccessControl) Authenticate(username, password string) (auth.User, bool) {
	u, ok := f.users[username]
	if !ok || u.password != password {
		return auth.User{}, false
	}
	return u.user, true
}

func (f *fakeAccessControl) Authorize(u auth.User, action auth.Action) bool {
	f.authorizeCalls++
	return auth.RoleAllows(u.Role, action)
}

func (f *fakeAccessControl) HasPermission(auth.User, string) bool { return true }

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordedAccess struct {
	subsystem string
	entry     AccessLogEntry
}

type recorder struct{ got []recordedAccess }

func (r *recorder) RecordAccess(name string, e AccessLogEntry) {
	r.got = append(r.got, recordedAccess{name, e})
}
