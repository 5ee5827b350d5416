package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/nerrad567/smartcity-core/internal/api"
	"github.com/nerrad567/smartcity-core/internal/audit"
	"github.com/nerrad567/smartcity-core/internal/auth"
	"github.com/nerrad567/smartcity-core/internal/console"
	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/external"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/config"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/database"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/logging"
	"github.com/nerrad567/smartcity-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/smartcity-core/internal/modules"
	"github.com/nerrad567/smartcity-core/internal/proxy"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
	"github.com/nerrad567/smartcity-core/internal/sysconfig"
	"github.com/nerrad567/smartcity-core/migrations"
)

// app owns every running component. close releases them in reverse order
// of creation.
type app struct {
	log     *logging.Logger
	ctrl    *controller.Controller
	closers []func()

	db     *database.DB
	broker *mqtt.Broker
	mqtt   *mqtt.Client
	influx *influxdb.Client
	api    *api.Server

	auditRepo audit.Repository
	chains    map[subsystem.Category]*proxy.Secured

	transport *modules.Transport
	lighting  *modules.Lighting
	security  *modules.Security
	energy    *modules.Energy
	climate   *modules.Climate
	traffic   *external.TrafficFeed
	emergency *external.EmergencyDispatch
}

func (a *app) onClose(name string, fn func() error) {
	a.closers = append(a.closers, func() {
		a.log.Info("closing " + name)
		if err := fn(); err != nil {
			a.log.Error("error closing "+name, "error", err)
		}
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	controller.ResetInstance()
}

// newApp starts infrastructure, then the controller with its sinks, then
// the city itself. On error everything started so far is closed.
func newApp(ctx context.Context, cfg *config.Config, log *logging.Logger, stdout io.Writer, interactive bool) (_ *app, err error) {
	a := &app{log: log, chains: make(map[subsystem.Category]*proxy.Secured)}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if err := a.startInfrastructure(ctx, cfg); err != nil {
		return nil, err
	}

	sinks := controller.MultiSink{}
	if interactive {
		sinks = append(sinks, controller.NewWriterSink(stdout))
	}
	if a.mqtt != nil {
		pub := mqtt.NewAlertPublisher(a.mqtt, a.mqtt.Topics(), byte(cfg.MQTT.QoS))
		pub.SetLogger(log)
		sinks = append(sinks, pub)
	}
	if a.auditRepo != nil {
		sinks = append(sinks, audit.NewSink(a.auditRepo, log))
	}
	if a.influx != nil {
		sinks = append(sinks, alertMetrics{a.influx})
	}
	a.ctrl = controller.Instance(controller.WithLogger(log), controller.WithSink(sinks))

	if a.mqtt != nil {
		topic := a.mqtt.Topics().AckCommand()
		if err := a.mqtt.Subscribe(topic, byte(cfg.MQTT.QoS), mqtt.AckHandler(a.ctrl)); err != nil {
			return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}

	sysCfg, err := sysconfig.NewDirector().FromConfig(cfg.City)
	if err != nil {
		return nil, fmt.Errorf("building system config: %w", err)
	}
	a.ctrl.SetConfig(sysCfg)

	store := auth.NewStore()
	store.SetLogger(log)
	if err := auth.SeedUsers(store, cfg.Access.Users); err != nil {
		return nil, fmt.Errorf("seeding users: %w", err)
	}

	if err := a.buildCity(ctx, cfg, sysCfg, store); err != nil {
		return nil, err
	}

	if cfg.API.Enabled {
		a.api, err = api.New(api.Deps{
			Config:     cfg.API,
			Logger:     log,
			Controller: a.ctrl,
			Access:     store,
			Audit:      a.auditRepo,
			Version:    version,
		})
		if err != nil {
			return nil, fmt.Errorf("creating API server: %w", err)
		}
		if err := a.api.Start(ctx); err != nil {
			return nil, fmt.Errorf("starting API server: %w", err)
		}
		a.onClose("API server", a.api.Close)
	} else {
		log.Info("API disabled")
	}

	return a, nil
}

func (a *app) startInfrastructure(ctx context.Context, cfg *config.Config) error {
	log := a.log

	if cfg.Database.Enabled {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		a.db = db
		a.onClose("database", db.Close)
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		a.auditRepo = audit.NewSQLiteRepository(db.DB)
		log.Info("audit export enabled", "path", db.Path())
	} else {
		log.Info("audit export disabled")
	}

	if cfg.MQTT.Enabled {
		mcfg := cfg.MQTT
		if mcfg.Embedded.Enabled {
			broker, err := mqtt.StartBroker(mcfg.Embedded, log.Logger)
			if err != nil {
				return fmt.Errorf("starting embedded broker: %w", err)
			}
			a.broker = broker
			a.onClose("embedded MQTT broker", broker.Close)

			host, port, err := splitHostPort(broker.Addr())
			if err != nil {
				return fmt.Errorf("embedded broker address: %w", err)
			}
			mcfg.Broker.Host, mcfg.Broker.Port = host, port
			log.Info("embedded MQTT broker started", "address", broker.Addr())
		}

		client, err := mqtt.Connect(mcfg)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		a.mqtt = client
		a.onClose("MQTT", client.Close)
		client.SetLogger(log)
		client.SetOnConnect(func() { log.Info("MQTT reconnected") })
		client.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		log.Info("MQTT connected",
			"broker", net.JoinHostPort(mcfg.Broker.Host, strconv.Itoa(mcfg.Broker.Port)),
			"client_id", mcfg.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		a.influx = client
		a.onClose("InfluxDB", client.Close)
		client.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}
	return nil
}

// buildCity creates a module for every enabled subsystem, wraps it in the
// configured proxies and registers the outermost layer.
func (a *app) buildCity(ctx context.Context, cfg *config.Config, sysCfg sysconfig.SystemConfig, ac auth.AccessControl) error {
	opts := []modules.Option{
		modules.WithAlerts(a.ctrl),
		modules.WithThresholds(sysCfg.Thresholds),
		modules.WithLogger(a.log),
	}
	if a.influx != nil {
		opts = append(opts, modules.WithRecorder(a.influx))
	}

	for _, cat := range sysCfg.EnabledSubsystems() {
		var (
			base subsystem.Subsystem
			init func() error
		)
		switch cat {
		case subsystem.CategoryTransport:
			a.transport = modules.NewTransport(opts...)
			base, init = a.transport, a.transport.Initialize
		case subsystem.CategoryLighting:
			a.lighting = modules.NewLighting(opts...)
			base, init = a.lighting, a.lighting.Initialize
		case subsystem.CategorySecurity:
			a.security = modules.NewSecurity(opts...)
			base, init = a.security, a.security.Initialize
		case subsystem.CategoryEnergy:
			a.energy = modules.NewEnergy(opts...)
			base, init = a.energy, a.energy.Initialize
		default:
			return fmt.Errorf("%w: %q", subsystem.ErrUnknownCategory, cat)
		}
		if err := init(); err != nil {
			return fmt.Errorf("initialising %s: %w", cat, err)
		}

		registered, err := a.wrap(base, cfg.Proxies[string(cat)], ac)
		if err != nil {
			return fmt.Errorf("composing %s proxies: %w", cat, err)
		}
		a.ctrl.RegisterSubsystem(registered)
	}

	return a.connectExternal(ctx, cfg, opts)
}

// wrap composes the proxies selected by pc around base. A subsystem with
// no layers is registered bare.
func (a *app) wrap(base subsystem.Subsystem, pc config.ProxyConfig, ac auth.AccessControl) (subsystem.Subsystem, error) {
	if !pc.Protect && !pc.Log && !pc.Cache {
		return base, nil
	}

	opts := []proxy.Option{
		proxy.WithLogger(a.log),
		proxy.WithTTLs(proxy.TTLs{Default: pc.DefaultTTL, Status: pc.StatusTTL, Devices: pc.DevicesTTL}),
	}
	if a.auditRepo != nil {
		opts = append(opts, proxy.WithAccessRecorder(audit.NewAccessRecorder(a.auditRepo, a.log)))
	}

	sec, err := proxy.Compose(base, ac, proxy.Layers{Protect: pc.Protect, Log: pc.Log, Cache: pc.Cache}, opts...)
	if err != nil {
		return nil, err
	}
	a.chains[base.Category()] = sec
	a.log.Info("proxy chain composed", "subsystem", base.Name(), "name", sec.Name())
	return sec, nil
}

func (a *app) connectExternal(ctx context.Context, cfg *config.Config, moduleOpts []modules.Option) error {
	extOpts := []external.Option{external.WithLogger(a.log)}

	weather, err := external.NewWeather(cfg.External.Weather, extOpts...)
	if err != nil {
		return fmt.Errorf("creating weather feed: %w", err)
	}
	if weather.Connect(ctx) {
		a.onClose("weather feed", func() error { weather.Disconnect(context.Background()); return nil })
	} else {
		a.log.Warn("weather feed unavailable; temperature checks will fail")
	}
	a.climate = modules.NewClimate(weather, moduleOpts...)

	a.traffic = external.NewTrafficFeed(cfg.External.Traffic.URL, extOpts...)
	if a.traffic.Connect(ctx) {
		a.onClose("traffic feed", func() error { a.traffic.Disconnect(context.Background()); return nil })
	}

	a.emergency = external.NewEmergencyDispatch(cfg.External.Emergency.SystemID, extOpts...)
	if a.emergency.Connect(ctx) {
		a.onClose("emergency dispatch", func() error { a.emergency.Disconnect(context.Background()); return nil })
	}
	return nil
}

func (a *app) healthCheck(ctx context.Context) error {
	if a.db != nil {
		if err := a.db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if a.mqtt != nil {
		if err := a.mqtt.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if a.influx != nil {
		if err := a.influx.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	if a.api != nil {
		if err := a.api.HealthCheck(ctx); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}
	return nil
}

func (a *app) runConsole(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	con, err := console.New(console.Deps{
		Controller: a.ctrl,
		Chains:     a.chains,
		Transport:  a.transport,
		Lighting:   a.lighting,
		Security:   a.security,
		Energy:     a.energy,
		Climate:    a.climate,
		Traffic:    a.traffic,
		Emergency:  a.emergency,
		Logger:     a.log,
	}, stdin, stdout)
	if err != nil {
		return fmt.Errorf("creating console: %w", err)
	}
	return con.Run(ctx)
}

// monitorLoop runs a monitoring pass every interval until ctx is done.
func (a *app) monitorLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.monitorPass(ctx)
		}
	}
}

func (a *app) monitorPass(ctx context.Context) {
	before := len(a.ctrl.Alerts())
	if a.transport != nil {
		snap := a.transport.MonitorTraffic()
		a.log.Debug("traffic monitored", "congestion", snap.Congestion)
	}
	if a.lighting != nil {
		if lux, target, ok := a.lighting.AutoAdjust(); ok {
			a.log.Debug("lighting adjusted", "lux", lux, "target", target)
		}
	}
	if a.security != nil {
		incidents := a.security.ScanForMotion()
		triggered := a.security.CheckAlarms()
		a.log.Debug("security scanned", "incidents", len(incidents), "alarms_triggered", triggered)
	}
	if a.energy != nil {
		_, total := a.energy.MonitorConsumption()
		a.log.Debug("energy monitored", "total_kwh", total)
	}
	if a.climate != nil {
		if _, err := a.climate.CheckTemperature(ctx); err != nil {
			a.log.Warn("temperature check failed", "error", err)
		}
	}
	a.log.Info("monitoring pass complete", "new_alerts", len(a.ctrl.Alerts())-before)
}

// alertMetrics counts alerts in InfluxDB. Events are not recorded.
type alertMetrics struct {
	client *influxdb.Client
}

func (m alertMetrics) Alert(a controller.Alert) {
	m.client.WriteAlert(a.Source, string(a.Severity))
}

func (alertMetrics) Event(controller.Event) {}

func splitHostPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", p, err)
	}
	return host, port, nil
}
