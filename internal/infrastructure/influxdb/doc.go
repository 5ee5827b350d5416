// Package influxdb records smart city telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Monitoring operations
// of the city modules push one point per sensor sample through
// WriteSensorReading; alerts are counted through WriteAlert so dashboards
// can chart alert rates per severity.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	energy := modules.NewEnergy(modules.WithRecorder(client))
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched according to batch_size and flush_interval; write failures are
// delivered to the SetOnError callback.
package influxdb
