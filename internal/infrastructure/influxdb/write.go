package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementSensor = "sensor_readings"
	measurementAlert  = "alerts"
)

// WriteSensorReading records one sensor sample taken by a city module.
//
// Example:
//
//	client.WriteSensorReading("energy", "meter-main", "consumption_kwh", 412)
func (c *Client) WriteSensorReading(subsystem, deviceID, measurement string, value float64) {
	c.WritePoint(measurementSensor,
		map[string]string{
			"subsystem":   subsystem,
			"device_id":   deviceID,
			"measurement": measurement,
		},
		map[string]any{"value": value},
	)
}

// WriteAlert counts one alert raised by the control center.
func (c *Client) WriteAlert(source, severity string) {
	c.WritePoint(measurementAlert,
		map[string]string{
			"source":   source,
			"severity": severity,
		},
		map[string]any{"count": 1},
	)
}

// WritePoint writes a custom point stamped with the current time.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
