// Package sysconfig builds the immutable SystemConfig the controller holds.
//
// A Builder accumulates settings through chained calls and validates them
// once in Build:
//
//	cfg, err := sysconfig.NewBuilder().
//	    CityName("Tashkent").
//	    Timezone("Asia/Tashkent").
//	    EnableAll().
//	    TemperatureRange(-10, 40).
//	    Build()
//
// A Director produces the standard presets (minimal, full, eco, security)
// and translates the YAML city section into a SystemConfig.
//
// SystemConfig values are copied in and out of the controller with Clone,
// so settings maps are never shared.
package sysconfig
