package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/influxdb"
)

// fakeInflux answers pings and forwards every write body to writes.
func fakeInflux(t *testing.T) (*httptest.Server, <-chan string) {
	t.Helper()
	writes := make(chan string, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping":
			w.WriteHeader(http.StatusNoContent)
		case "/api/v2/write":
			body, _ := io.ReadAll(r.Body)
			writes <- string(body)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, writes
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "smartcity-test-token",
		Org:           "smartcity",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func waitForWrite(t *testing.T, writes <-chan string) string {
	t.Helper()
	select {
	case body := <-writes:
		return body
	case <-time.After(5 * time.Second):
		t.Fatal("no write reached the server")
		return ""
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := influxdb.Connect(context.Background(), testConfig(url))
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestWriteSensorReading(t *testing.T) {
	srv, writes := fakeInflux(t)
	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	client.WriteSensorReading("energy", "meter-main", "consumption_kwh", 412)
	client.Flush()

	body := waitForWrite(t, writes)
	for _, want := range []string{"sensor_readings,", "device_id=meter-main", "measurement=consumption_kwh", "subsystem=energy", "value=412"} {
		if !strings.Contains(body, want) {
			t.Errorf("line protocol %q missing %q", body, want)
		}
	}
}

func TestWriteAlert(t *testing.T) {
	srv, writes := fakeInflux(t)
	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	client.WriteAlert("Energy Module", "high")
	client.Flush()

	body := waitForWrite(t, writes)
	if !strings.HasPrefix(body, "alerts,") || !strings.Contains(body, "severity=high") {
		t.Errorf("line protocol = %q", body)
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _ := fakeInflux(t)
	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	client.Close()
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close = %v, want ErrNotConnected", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	srv, _ := fakeInflux(t)
	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}

	// Writes after Close are dropped without panicking.
	client.WriteSensorReading("energy", "meter-main", "consumption_kwh", 1)
	client.Flush()
}
