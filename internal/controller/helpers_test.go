package controller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/smartcity-core/internal/auth"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

var errBoom = errors.New("boom")

// flakySubsystem fails Start/Stop on demand and counts calls.
type flakySubsystem struct {
	*subsystem.Base
	failStart bool
	failStop  bool
	starts    int
	stops     int
}

func newFlaky(cat subsystem.Category) *flakySubsystem {
	return &flakySubsystem{Base: subsystem.NewBase(cat.DisplayName(), cat)}
}

func (f *flakySubsystem) Start() error {
	f.starts++
	if f.failStart {
		return errBoom
	}
	return f.Base.Start()
}

func (f *flakySubsystem) Stop() error {
	f.stops++
	if f.failStop {
		return errBoom
	}
	return f.Base.Stop()
}

type logRecord struct {
	level string
	msg   string
}

type recordingLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	l.records = append(l.records, logRecord{level, msg})
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.add("error", msg) }

func (l *recordingLogger) count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.records {
		if r.level == level && r.msg == msg {
			n++
		}
	}
	return n
}

type captureSink struct {
	alerts []Alert
	events []Event
}

func (s *captureSink) Alert(a Alert) { s.alerts = append(s.alerts, a) }
func (s *captureSink) Event(e Event) { s.events = append(s.events, e) }

// staticAC authorises with the role table and accepts "<user>/<user>-pw".
type staticAC struct{}

func (staticAC) Authenticate(username, password string) (auth.User, bool) {
	role, err := auth.ParseRole(username)
	if err != nil || password != fmt.Sprintf("%s-pw", username) {
		return auth.User{}, false
	}
	return auth.User{ID: "u-" + username, Username: username, Role: role}, true
}

func (staticAC) Authorize(u auth.User, a auth.Action) bool { return auth.RoleAllows(u.Role, a) }
func (staticAC) HasPermission(auth.User, string) bool      { return true }
