package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/smartcity-core/internal/auth"
	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/database"
	"github.com/nerrad567/smartcity-core/internal/proxy"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
	"github.com/nerrad567/smartcity-core/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *AuditLog) error { return errors.New("disk full") }
func (failingRepo) List(context.Context, Filter) (*ListResult, error) {
	return nil, errors.New("disk full")
}

type warnCounter struct{ n int }

func (w *warnCounter) Warn(string, ...any) { w.n++ }

func TestRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, l := range []AuditLog{
		{Kind: KindEvent, Action: controller.EventSystemStarted, Source: "Controller"},
		{Kind: KindAlert, Action: "high", Source: "Energy Module", Details: map[string]any{"message": "over"}},
		{Kind: KindAccess, Action: "write", Source: "City Security", Username: "anonymous", Outcome: OutcomeDenied},
	} {
		l.CreatedAt = base.Add(time.Duration(i) * 500 * time.Millisecond)
		if err := repo.Create(ctx, &l); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if !strings.HasPrefix(l.ID, "aud-") {
			t.Errorf("ID = %q, want aud- prefix", l.ID)
		}
	}

	res, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 3 || len(res.Logs) != 3 || res.Limit != defaultLimit {
		t.Fatalf("List() = %+v", res)
	}
	if res.Logs[0].Kind != KindAccess || res.Logs[2].Kind != KindEvent {
		t.Errorf("order = %s, %s, %s; want newest first", res.Logs[0].Kind, res.Logs[1].Kind, res.Logs[2].Kind)
	}
	if got := res.Logs[1].Details["message"]; got != "over" {
		t.Errorf("details round trip = %v", got)
	}
	if !res.Logs[0].CreatedAt.Equal(base.Add(time.Second)) {
		t.Errorf("CreatedAt = %v", res.Logs[0].CreatedAt)
	}
}

func TestRepository_ListFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for _, outcome := range []string{OutcomeDenied, OutcomeAllowed, OutcomeDenied} {
		if err := repo.Create(ctx, &AuditLog{Kind: KindAccess, Action: "read", Source: "City Security", Outcome: outcome}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if err := repo.Create(ctx, &AuditLog{Kind: KindEvent, Action: "CONFIG_SET", Source: "Controller"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name      string
		filter    Filter
		wantTotal int
		wantLen   int
	}{
		{"all", Filter{}, 4, 4},
		{"by kind", Filter{Kind: KindAccess}, 3, 3},
		{"denied", Filter{Kind: KindAccess, Outcome: OutcomeDenied}, 2, 2},
		{"by action", Filter{Action: "CONFIG_SET"}, 1, 1},
		{"paged", Filter{Limit: 1, Offset: 1}, 4, 1},
		{"past end", Filter{Offset: 10}, 4, 0},
		{"limit clamped", Filter{Limit: 1000}, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.wantTotal || len(res.Logs) != tt.wantLen {
				t.Errorf("total = %d len = %d, want %d/%d", res.Total, len(res.Logs), tt.wantTotal, tt.wantLen)
			}
			if res.Limit > maxLimit {
				t.Errorf("Limit = %d exceeds max", res.Limit)
			}
		})
	}
}

func TestSink(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sink := NewSink(repo, nil)

	ctrl := controller.New(controller.WithSink(sink))
	a := ctrl.CreateAlert("Weather Monitor", "Temperature 50.0°C outside range", controller.SeverityMedium)
	ctrl.AcknowledgeAlert(a.ID)

	alerts, err := repo.List(ctx, Filter{Kind: KindAlert})
	if err != nil || alerts.Total != 1 {
		t.Fatalf("alerts = %+v, err = %v", alerts, err)
	}
	if got := alerts.Logs[0]; got.Action != "medium" || got.Details["alertId"] != a.ID {
		t.Errorf("alert row = %+v", got)
	}

	events, err := repo.List(ctx, Filter{Kind: KindEvent, Action: controller.EventAlertAcknowledged})
	if err != nil || events.Total != 1 {
		t.Fatalf("events = %+v, err = %v", events, err)
	}
	if events.Logs[0].Details["alertId"] != a.ID {
		t.Errorf("event details = %v", events.Logs[0].Details)
	}
}

func TestAccessRecorder_ProtectedSubsystem(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	sec, err := proxy.Compose(subsystem.NewSecurity(), auth.NewStore(),
		proxy.Layers{Protect: true, Log: true, Cache: true},
		proxy.WithAccessRecorder(NewAccessRecorder(repo, nil)))
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if err := sec.AddDevice(device.NewCamera("cam-1", "Camera", "Gate")); !errors.Is(err, proxy.ErrAccessDenied) {
		t.Fatalf("AddDevice() error = %v, want ErrAccessDenied", err)
	}
	sec.Status()

	res, err := repo.List(ctx, Filter{Kind: KindAccess})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 2 || len(sec.Protection.AccessLog()) != 2 {
		t.Fatalf("exported %d, access log %d; want 2 each", res.Total, len(sec.Protection.AccessLog()))
	}
	write := res.Logs[1]
	if write.Action != string(auth.ActionWrite) || write.Username != "anonymous" || write.Outcome != OutcomeDenied {
		t.Errorf("write row = %+v", write)
	}
	if !strings.Contains(write.Source, "City Security") {
		t.Errorf("Source = %q", write.Source)
	}
}

func TestExport_WriteFailureLogged(t *testing.T) {
	warns := &warnCounter{}
	NewSink(failingRepo{}, warns).Alert(controller.Alert{Severity: controller.SeverityLow})
	NewAccessRecorder(failingRepo{}, warns).RecordAccess("x", proxy.AccessLogEntry{Action: auth.ActionRead})

	if warns.n != 2 {
		t.Errorf("warnings = %d, want 2", warns.n)
	}
}
