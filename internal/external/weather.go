package external

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
)

// Forecast is the next-day outlook.
type Forecast struct {
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Condition   string    `json:"condition"`
}

// Weather is a connected weather feed. Temperatures are in Celsius and
// humidity in percent.
type Weather interface {
	Service
	Temperature(ctx context.Context) (float64, error)
	Humidity(ctx context.Context) (float64, error)
	Forecast(ctx context.Context) (Forecast, error)
}

// Weather vendor kinds accepted by NewWeather.
const (
	WeatherLegacy = "legacy"
	WeatherModern = "modern"
)

// NewWeather returns the adapter selected by cfg.Kind.
func NewWeather(cfg config.WeatherConfig, opts ...Option) (Weather, error) {
	switch cfg.Kind {
	case WeatherLegacy, "":
		return NewLegacyWeather(cfg.APIKey, opts...), nil
	case WeatherModern:
		return NewModernWeather(cfg.Endpoint, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWeatherKind, cfg.Kind)
	}
}

// simTemperature yields -5..29 °C and simHumidity 30..89 %.
func simTemperature(o options) float64 { return float64(o.source.IntN(35) - 5) }
func simHumidity(o options) float64    { return float64(o.source.IntN(60) + 30) }

// legacyWeatherAPI is the old key-authenticated vendor with flat readings.
type legacyWeatherAPI struct {
	apiKey string
	online bool
	opts   options
}

func (a *legacyWeatherAPI) connectToServer() bool {
	a.opts.logger.Info("legacy weather api connecting", "key", maskKey(a.apiKey))
	a.online = true
	return true
}

func (a *legacyWeatherAPI) disconnectFromServer() { a.online = false }

type legacyForecast struct {
	date string
	temp int
	hum  int
	cond string
}

var legacyConditions = []string{"sunny", "cloudy", "rainy", "snowy", "windy"}

func (a *legacyWeatherAPI) fetchForecastData() legacyForecast {
	src := a.opts.source
	return legacyForecast{
		date: a.opts.now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		temp: src.IntN(35) - 5,
		hum:  src.IntN(60) + 30,
		cond: legacyConditions[src.IntN(len(legacyConditions))],
	}
}

// maskKey keeps the first four characters of an API key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}

// LegacyWeather adapts the legacy vendor API.
type LegacyWeather struct {
	link
	api *legacyWeatherAPI
}

// NewLegacyWeather returns a disconnected adapter using apiKey.
func NewLegacyWeather(apiKey string, opts ...Option) *LegacyWeather {
	return &LegacyWeather{api: &legacyWeatherAPI{apiKey: apiKey, opts: buildOptions(opts)}}
}

func (w *LegacyWeather) Connect(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	ok := w.api.connectToServer()
	w.set(ok)
	return ok
}

func (w *LegacyWeather) Disconnect(context.Context) {
	w.api.disconnectFromServer()
	w.set(false)
}

func (w *LegacyWeather) Temperature(ctx context.Context) (float64, error) {
	if err := w.ready(ctx); err != nil {
		return 0, err
	}
	return simTemperature(w.api.opts), nil
}

func (w *LegacyWeather) Humidity(ctx context.Context) (float64, error) {
	if err := w.ready(ctx); err != nil {
		return 0, err
	}
	return simHumidity(w.api.opts), nil
}

func (w *LegacyWeather) Forecast(ctx context.Context) (Forecast, error) {
	if err := w.ready(ctx); err != nil {
		return Forecast{}, err
	}
	raw := w.api.fetchForecastData()
	date, err := time.Parse(time.RFC3339, raw.date)
	if err != nil {
		return Forecast{}, fmt.Errorf("parsing legacy forecast date: %w", err)
	}
	return Forecast{
		Date:        date,
		Temperature: float64(raw.temp),
		Humidity:    float64(raw.hum),
		Condition:   raw.cond,
	}, nil
}

// modernWeatherAPI is the REST-style vendor returning nested readings.
type modernWeatherAPI struct {
	endpoint string
	online   bool
	opts     options
}

type modernReading struct {
	Value float64
	Unit  string
}

type modernWeatherData struct {
	Temperature modernReading
	Humidity    modernReading
	Forecast    struct {
		TimestampMillis int64
		Temp            float64
		Humidity        float64
		Weather         string
	}
}

var modernConditions = []string{"Clear", "Partly Cloudy", "Rain", "Snow", "Fog"}

func (a *modernWeatherAPI) initialize() (bool, string) {
	a.opts.logger.Info("modern weather api initialising", "endpoint", a.endpoint)
	a.online = true
	return true, "Connected"
}

func (a *modernWeatherAPI) shutdown() { a.online = false }

func (a *modernWeatherAPI) weatherData() modernWeatherData {
	src := a.opts.source
	var d modernWeatherData
	d.Temperature = modernReading{Value: simTemperature(a.opts), Unit: "C"}
	d.Humidity = modernReading{Value: simHumidity(a.opts), Unit: "%"}
	d.Forecast.TimestampMillis = a.opts.now().Add(24 * time.Hour).UnixMilli()
	d.Forecast.Temp = simTemperature(a.opts)
	d.Forecast.Humidity = simHumidity(a.opts)
	d.Forecast.Weather = modernConditions[src.IntN(len(modernConditions))]
	return d
}

// ModernWeather adapts the REST vendor API.
type ModernWeather struct {
	link
	api *modernWeatherAPI
}

// NewModernWeather returns a disconnected adapter for endpoint.
func NewModernWeather(endpoint string, opts ...Option) *ModernWeather {
	return &ModernWeather{api: &modernWeatherAPI{endpoint: endpoint, opts: buildOptions(opts)}}
}

func (w *ModernWeather) Connect(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	ok, msg := w.api.initialize()
	w.api.opts.logger.Debug("modern weather connect", "ok", ok, "message", msg)
	w.set(ok)
	return ok
}

func (w *ModernWeather) Disconnect(context.Context) {
	w.api.shutdown()
	w.set(false)
}

func (w *ModernWeather) Temperature(ctx context.Context) (float64, error) {
	if err := w.ready(ctx); err != nil {
		return 0, err
	}
	return w.api.weatherData().Temperature.Value, nil
}

func (w *ModernWeather) Humidity(ctx context.Context) (float64, error) {
	if err := w.ready(ctx); err != nil {
		return 0, err
	}
	return w.api.weatherData().Humidity.Value, nil
}

func (w *ModernWeather) Forecast(ctx context.Context) (Forecast, error) {
	if err := w.ready(ctx); err != nil {
		return Forecast{}, err
	}
	f := w.api.weatherData().Forecast
	return Forecast{
		Date:        time.UnixMilli(f.TimestampMillis).UTC(),
		Temperature: f.Temp,
		Humidity:    f.Humidity,
		Condition:   f.Weather,
	}, nil
}
