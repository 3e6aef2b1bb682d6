// Package daemon assembles the dispatch monitor service: tag database, event
// store, monitor loop, reader driver, notification delivery, and the HTTP
// surfaces.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/dispatchmon/internal/config"
	"git.home.luguber.info/inful/dispatchmon/internal/events"
	"git.home.luguber.info/inful/dispatchmon/internal/eventstore"
	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
	"git.home.luguber.info/inful/dispatchmon/internal/metrics"
	"git.home.luguber.info/inful/dispatchmon/internal/monitor"
	"git.home.luguber.info/inful/dispatchmon/internal/notify"
	"git.home.luguber.info/inful/dispatchmon/internal/reader"
	"git.home.luguber.info/inful/dispatchmon/internal/server/httpserver"
	"git.home.luguber.info/inful/dispatchmon/internal/tagdb"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Status represents the current state of the daemon.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// Daemon is the main dispatch monitor service.
type Daemon struct {
	config         *config.Config
	configFilePath string
	status         atomic.Value // Status
	startTime      time.Time
	mu             sync.RWMutex

	// Core components
	tagDB         *tagdb.Store
	bus           *events.Bus
	recorder      *metrics.PrometheusRecorder
	registry      *prom.Registry
	mon           *monitor.Monitor
	readerDriver  *reader.SimDriver
	notifier      notify.Notifier
	notifyService *notify.Service
	httpServer    *httpserver.Server
	scheduler     *Scheduler
	configWatcher *ConfigWatcher

	// Event sourcing components
	eventStore eventstore.Store
	projection *eventstore.CycleHistoryProjection
	emitter    *eventstore.Emitter

	// Background loop lifecycle
	loopCancel context.CancelFunc
	loopWG     sync.WaitGroup
}

// New creates a daemon instance without config file watching.
func New(cfg *config.Config) (*Daemon, error) {
	return NewWithConfigFile(cfg, "")
}

// NewWithConfigFile creates a daemon instance. When configFilePath is
// non-empty the file is watched and safe settings are reloaded on change.
func NewWithConfigFile(cfg *config.Config, configFilePath string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	d := &Daemon{
		config:         cfg,
		configFilePath: configFilePath,
		bus:            events.NewBus(),
	}
	d.status.Store(StatusStopped)

	// Metrics registry and recorder
	d.registry = prom.NewRegistry()
	d.recorder = metrics.NewPrometheusRecorder(d.registry)

	// Tag database
	store, err := tagdb.Open(cfg.TagDB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tag database: %w", err)
	}
	d.tagDB = store

	// Event store and cycle history projection
	es, err := eventstore.NewSQLiteStore(cfg.EventStore.Path)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}
	d.eventStore = es
	d.projection = eventstore.NewCycleHistoryProjection(es, cfg.EventStore.HistorySize)
	d.emitter = eventstore.NewEmitter(es, d.projection, d.bus)

	if err := d.projection.Rebuild(context.Background()); err != nil {
		slog.Warn("Failed to rebuild cycle history projection", logfields.Error(err))
		// Non-fatal: projection will start empty
	}

	// Reader driver (simulated; scripted reads come from configuration)
	script := make([]reader.ScriptedRead, 0, len(cfg.Reader.Script))
	for _, sr := range cfg.Reader.Script {
		script = append(script, reader.ScriptedRead{After: sr.After, TagIDs: sr.TagIDs})
	}

	// Monitor core
	d.mon = monitor.New(monitor.Config{
		LeadTime:       cfg.Monitor.LeadTime,
		TimerPeriod:    cfg.Monitor.TimerPeriod,
		DecisionPeriod: cfg.Monitor.DecisionPeriod,
		QueueSize:      cfg.Monitor.QueueSize,
	}, store, nil, d.bus, d.recorder)

	d.readerDriver = reader.NewSimDriver(d.mon, script)
	d.mon.SetReader(d.readerDriver)

	// Notification channel
	if cfg.Notifications.Enabled {
		notifier, err := notify.NewNATSNotifier(notify.NATSConfig{
			URL:           cfg.Notifications.NATSURL,
			SubjectPrefix: cfg.Notifications.SubjectPrefix,
			StreamName:    cfg.Notifications.Stream,
		})
		if err != nil {
			_ = es.Close()
			_ = store.Close()
			return nil, fmt.Errorf("failed to create NATS notifier: %w", err)
		}
		d.notifier = notifier
	} else {
		d.notifier = notify.LogNotifier{}
	}
	d.notifyService = notify.NewService(d.notifier, d.bus)

	// HTTP servers
	d.httpServer = httpserver.New(cfg, httpserver.Options{
		Monitor:           d.mon,
		History:           d.projection,
		Daemon:            d,
		PrometheusHandler: metrics.HTTPHandler(d.registry),
	})

	// Scheduler for the periodic audit and event store retention
	d.scheduler, err = NewScheduler(d)
	if err != nil {
		_ = es.Close()
		_ = store.Close()
		return nil, err
	}

	// Config watcher if a config file path is provided
	if configFilePath != "" {
		d.configWatcher, err = NewConfigWatcher(configFilePath, d)
		if err != nil {
			return nil, fmt.Errorf("failed to create config watcher: %w", err)
		}
	}

	return d, nil
}

// Start starts the daemon and all its components. It returns once everything
// is running; Stop shuts it down.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if Status(d.GetStatus()) != StatusStopped {
		return fmt.Errorf("daemon is not in stopped state: %s", d.GetStatus())
	}

	d.status.Store(StatusStarting)
	d.startTime = time.Now()

	slog.Info("Starting dispatch monitor daemon")

	loopCtx, cancel := context.WithCancel(context.Background())
	d.loopCancel = cancel

	// Event emitter and notification delivery consume the bus; subscribe
	// them before the monitor can publish.
	d.loopWG.Add(1)
	go func() {
		defer d.loopWG.Done()
		_ = d.emitter.Run(loopCtx)
	}()
	d.loopWG.Add(1)
	go func() {
		defer d.loopWG.Done()
		_ = d.notifyService.Run(loopCtx)
	}()

	// Monitor decision loop
	d.loopWG.Add(1)
	go func() {
		defer d.loopWG.Done()
		_ = d.mon.Run(loopCtx)
	}()

	// Reader driver
	if err := d.readerDriver.Start(loopCtx); err != nil {
		d.status.Store(StatusError)
		cancel()
		return fmt.Errorf("failed to start reader driver: %w", err)
	}

	// HTTP servers
	if err := d.httpServer.Start(ctx); err != nil {
		d.status.Store(StatusError)
		_ = d.readerDriver.Stop()
		cancel()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// Scheduler
	if err := d.scheduler.Start(ctx); err != nil {
		d.status.Store(StatusError)
		_ = d.readerDriver.Stop()
		cancel()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Config watcher if available
	if d.configWatcher != nil {
		if err := d.configWatcher.Start(ctx); err != nil {
			slog.Error("Failed to start config watcher", logfields.Error(err))
		} else {
			slog.Info("Config watcher started")
		}
	}

	d.status.Store(StatusRunning)

	slog.Info("Dispatch monitor daemon started",
		slog.Int("api_port", d.config.HTTP.APIPort),
		slog.Int("admin_port", d.config.HTTP.AdminPort),
		slog.Duration("lead_time", d.config.Monitor.LeadTime),
		slog.Bool("notifications", d.config.Notifications.Enabled))

	return nil
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	currentStatus := Status(d.GetStatus())
	if currentStatus == StatusStopped || currentStatus == StatusStopping {
		return nil
	}

	d.status.Store(StatusStopping)
	slog.Info("Stopping dispatch monitor daemon")

	// Stop components in reverse order
	if d.configWatcher != nil {
		if err := d.configWatcher.Stop(ctx); err != nil {
			slog.Error("Failed to stop config watcher", logfields.Error(err))
		}
	}

	if d.scheduler != nil {
		if err := d.scheduler.Stop(ctx); err != nil {
			slog.Error("Failed to stop scheduler", logfields.Error(err))
		}
	}

	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			slog.Error("Failed to stop HTTP server", logfields.Error(err))
		}
	}

	if d.readerDriver != nil {
		if err := d.readerDriver.Stop(); err != nil {
			slog.Error("Failed to stop reader driver", logfields.Error(err))
		}
	}

	// Cancel the monitor, emitter, and notification loops and wait for them
	// to drain.
	if d.loopCancel != nil {
		d.loopCancel()
	}
	d.loopWG.Wait()

	d.bus.Close()

	if d.notifier != nil {
		d.notifier.Close()
	}

	if d.eventStore != nil {
		if err := d.eventStore.Close(); err != nil {
			slog.Error("Failed to close event store", logfields.Error(err))
		}
	}

	if d.tagDB != nil {
		if err := d.tagDB.Close(); err != nil {
			slog.Error("Failed to close tag database", logfields.Error(err))
		}
	}

	d.status.Store(StatusStopped)

	uptime := time.Since(d.startTime)
	slog.Info("Dispatch monitor daemon stopped", slog.Duration("uptime", uptime))

	return nil
}

// GetStatus returns the current daemon status string.
func (d *Daemon) GetStatus() string {
	status, ok := d.status.Load().(Status)
	if !ok {
		return string(StatusError)
	}
	return string(status)
}

// GetStartTime returns the daemon start time.
func (d *Daemon) GetStartTime() time.Time {
	return d.startTime
}

// ReaderActive reports whether the reader driver is running.
func (d *Daemon) ReaderActive() bool {
	if d.readerDriver == nil {
		return false
	}
	return d.readerDriver.IsActive()
}

// Monitor exposes the monitor for CLI status queries.
func (d *Daemon) Monitor() *monitor.Monitor { return d.mon }

// Projection exposes the cycle history projection.
func (d *Daemon) Projection() *eventstore.CycleHistoryProjection { return d.projection }

// GetConfig returns the current configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// ReloadConfig applies a changed configuration. Only settings that can take
// effect without re-binding ports or re-opening stores are applied: logging
// and event store retention. Everything else requires a restart and is logged.
func (d *Daemon) ReloadConfig(newConfig *config.Config) error {
	if newConfig == nil {
		return fmt.Errorf("new configuration is nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	old := d.config

	if old.HTTP != newConfig.HTTP {
		slog.Warn("HTTP port changes require a restart",
			slog.Int("api_port", newConfig.HTTP.APIPort),
			slog.Int("admin_port", newConfig.HTTP.AdminPort))
	}
	if old.TagDB.Path != newConfig.TagDB.Path || old.EventStore.Path != newConfig.EventStore.Path {
		slog.Warn("Database path changes require a restart")
	}
	if old.Monitor != newConfig.Monitor {
		slog.Warn("Monitor timing changes require a restart")
	}

	if old.Logging != newConfig.Logging {
		config.SetupLogging(newConfig.Logging)
		slog.Info("Logging reconfigured",
			slog.String("level", newConfig.Logging.Level),
			slog.String("format", newConfig.Logging.Format))
	}
	if old.EventStore.Retention != newConfig.EventStore.Retention {
		slog.Info("Event store retention updated",
			slog.Duration("retention", newConfig.EventStore.Retention))
	}

	// Keep the immutable sections from the running configuration so later
	// reads reflect reality, not the file.
	applied := *newConfig
	applied.HTTP = old.HTTP
	applied.TagDB = old.TagDB
	applied.EventStore.Path = old.EventStore.Path
	applied.Monitor = old.Monitor
	applied.Notifications = old.Notifications
	applied.Reader = old.Reader
	d.config = &applied

	return nil
}

// auditStatus logs a one-line operational summary, run periodically by the
// scheduler.
func (d *Daemon) auditStatus(ctx context.Context) {
	snap, err := d.mon.Snapshot(ctx)
	if err != nil {
		slog.Warn("Status audit failed", logfields.Error(err))
		return
	}
	slog.Info("Status audit",
		logfields.State(string(snap.State)),
		logfields.CycleID(snap.CycleID),
		logfields.ShipmentID(snap.ShipmentID()),
		logfields.TagCount(snap.TagIDs.Len()),
		slog.Int("expected_count", snap.Expected.Len()),
		logfields.Remaining(snap.Timer.Current))
}

// pruneEventStore removes cycle events older than the configured retention.
func (d *Daemon) pruneEventStore(ctx context.Context) {
	cutoff := time.Now().Add(-d.config.EventStore.Retention)
	removed, err := d.eventStore.Prune(ctx, cutoff)
	if err != nil {
		slog.Warn("Event store prune failed", logfields.Error(err))
		return
	}
	if removed > 0 {
		slog.Info("Event store pruned",
			slog.Int64("events_removed", removed),
			slog.Time("cutoff", cutoff))
	}
}
