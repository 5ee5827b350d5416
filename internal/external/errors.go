package external

import "errors"

var (
	// ErrServiceUnavailable is returned for calls on a disconnected adapter.
	ErrServiceUnavailable = errors.New("external: service unavailable")

	// ErrUnknownWeatherKind is returned by NewWeather for unsupported vendors.
	ErrUnknownWeatherKind = errors.New("external: unknown weather kind")
)
