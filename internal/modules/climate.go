package modules

import (
	"context"
	"fmt"

	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/external"
)

const climateSource = "Weather Monitor"

// Climate watches the weather feed against the temperature range.
type Climate struct {
	weather external.Weather
	opts    options
}

// NewClimate returns a monitor reading from w.
func NewClimate(w external.Weather, opts ...Option) *Climate {
	return &Climate{weather: w, opts: buildOptions(opts)}
}

// CheckTemperature reads the current temperature and raises a medium alert
// when it is outside the configured range. Feed errors, including
// external.ErrServiceUnavailable, are returned and never raised as alerts.
func (c *Climate) CheckTemperature(ctx context.Context) (float64, error) {
	temp, err := c.weather.Temperature(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading temperature: %w", err)
	}
	c.opts.recorder.WriteSensorReading("weather", "weather-feed", "temperature_c", temp)

	rng := c.opts.thresholds.Temperature
	if !rng.Contains(temp) {
		c.opts.alerts.CreateAlert(climateSource,
			fmt.Sprintf("Temperature %.1f°C outside %.1f..%.1f°C", temp, rng.Min, rng.Max),
			controller.SeverityMedium)
	}
	return temp, nil
}
