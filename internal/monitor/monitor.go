package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/events"
	"git.home.luguber.info/inful/dispatchmon/internal/logfields"
	"git.home.luguber.info/inful/dispatchmon/internal/manifest"
	"git.home.luguber.info/inful/dispatchmon/internal/metrics"
	"git.home.luguber.info/inful/dispatchmon/internal/util/sets"
)

// Cycle outcomes reported on CycleClosed events and metrics.
const (
	OutcomeComplete    = "complete"
	OutcomeMissingTags = "missing_tags"
	OutcomeHardReset   = "hard_reset"
)

// ExpectedTagResolver resolves a manifest's product codes into the exact set
// of tag identifiers expected at the dispatch bay. Implemented by the tag
// database collaborator.
type ExpectedTagResolver interface {
	ExpectedTags(ctx context.Context, m *manifest.Shipment) (sets.Set[string], error)
}

// ReaderControl is the slice of the reader driver the monitor needs: the
// capability check consumed by manifest intake, and the re-synchronization
// signal sent on hard reset.
type ReaderControl interface {
	IsActive() bool
	Resync()
}

// Config holds monitor timing parameters.
type Config struct {
	// LeadTime is the countdown armed at manifest installation.
	LeadTime time.Duration
	// TimerPeriod is the interval between countdown decrements.
	TimerPeriod time.Duration
	// DecisionPeriod is the interval between enforcer evaluations.
	DecisionPeriod time.Duration
	// QueueSize bounds the command queue shared by intake, ingestion, and
	// status queries.
	QueueSize int
}

func (c Config) withDefaults() Config {
	if c.LeadTime <= 0 {
		c.LeadTime = 120 * time.Second
	}
	if c.TimerPeriod <= 0 {
		c.TimerPeriod = time.Second
	}
	if c.DecisionPeriod <= 0 {
		c.DecisionPeriod = time.Second
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	return c
}

// startingTicks converts the lead time into countdown decrements.
func (c Config) startingTicks() int64 {
	n := int64(c.LeadTime / c.TimerPeriod)
	if n < 1 {
		n = 1
	}
	return n
}

// record is the shared monitor state. Only the run goroutine touches it, so
// every multi-field read and write is atomic by construction.
type record struct {
	state      State
	cycleID    string
	manifest   *manifest.Shipment
	expected   sets.Set[string]
	tags       sets.Set[string]
	timer      Countdown
	cycleStart time.Time
}

type cmdInstall struct {
	shipment *manifest.Shipment
	expected sets.Set[string]
	reply    chan error
}

type cmdMerge struct {
	tagIDs []string
}

type cmdSnapshot struct {
	reply chan Snapshot
}

// Monitor owns the shared record and drives the periodic decision loop.
type Monitor struct {
	cfg      Config
	resolver ExpectedTagResolver
	reader   ReaderControl
	bus      *events.Bus
	recorder metrics.Recorder

	cmds chan any
	quit chan struct{}

	st record
}

// New constructs a Monitor. resolver is required; reader and bus may be nil
// (capability check skipped, events dropped), recorder may be nil (noop).
func New(cfg Config, resolver ExpectedTagResolver, reader ReaderControl, bus *events.Bus, recorder metrics.Recorder) *Monitor {
	cfg = cfg.withDefaults()
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Monitor{
		cfg:      cfg,
		resolver: resolver,
		reader:   reader,
		bus:      bus,
		recorder: recorder,
		cmds:     make(chan any, cfg.QueueSize),
		quit:     make(chan struct{}),
		st: record{
			state: StateIdle,
			tags:  sets.New[string](),
		},
	}
}

// SetReader installs the reader control after construction, breaking the
// construction cycle with drivers that need the monitor as their sink. Must
// be called before Run.
func (m *Monitor) SetReader(r ReaderControl) { m.reader = r }

// Run processes commands, timer ticks, and decision ticks until ctx is
// canceled. Commands already enqueued when cancellation arrives are still
// applied before Run returns (drain, not drop).
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.quit)

	timerTick := time.NewTicker(m.cfg.TimerPeriod)
	defer timerTick.Stop()
	decideTick := time.NewTicker(m.cfg.DecisionPeriod)
	defer decideTick.Stop()

	slog.Info("Dispatch monitor started",
		slog.Duration("lead_time", m.cfg.LeadTime),
		slog.Duration("decision_period", m.cfg.DecisionPeriod))

	for {
		select {
		case <-ctx.Done():
			m.drain()
			slog.Info("Dispatch monitor stopped", logfields.State(string(m.st.state)))
			return nil
		case c := <-m.cmds:
			m.handle(c)
		case <-timerTick.C:
			m.st.timer.Tick()
		case <-decideTick.C:
			m.decide()
		}
	}
}

// drain applies every command already enqueued, then stops.
func (m *Monitor) drain() {
	for {
		select {
		case c := <-m.cmds:
			m.handle(c)
		default:
			return
		}
	}
}

func (m *Monitor) handle(c any) {
	switch cmd := c.(type) {
	case cmdInstall:
		cmd.reply <- m.handleInstall(cmd.shipment, cmd.expected)
	case cmdMerge:
		m.handleMerge(cmd.tagIDs)
	case cmdSnapshot:
		cmd.reply <- m.snapshot()
	default:
		slog.Error("Unknown monitor command", slog.String("type", fmt.Sprintf("%T", c)))
	}
}

// Install validates the manifest, resolves its expected tag set through the
// tag database, and hands the result to the owning goroutine for atomic
// installation. Preconditions: the reader driver must be active and the
// monitor must be idle; violations return a precondition error with nothing
// mutated.
func (m *Monitor) Install(ctx context.Context, sh *manifest.Shipment) error {
	if sh == nil {
		return derrors.ValidationFailed("manifest", "must not be nil")
	}
	if err := sh.Validate(); err != nil {
		return err
	}
	if m.reader != nil && !m.reader.IsActive() {
		return derrors.PreconditionViolation("reader driver is not active")
	}

	expected, err := m.resolver.ExpectedTags(ctx, sh)
	if err != nil {
		return err
	}

	reply := make(chan error, 1)
	select {
	case m.cmds <- cmdInstall{shipment: sh, expected: expected, reply: reply}:
	case <-m.quit:
		return derrors.NewError(derrors.CategoryDaemon, "monitor is stopped").Build()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MergeTags is the tag ingestion sink invoked by the reader driver whenever a
// batch of tag identifiers is decoded. The union is applied by the owning
// goroutine; duplicates are ignored. Safe to call concurrently from any
// goroutine.
func (m *Monitor) MergeTags(tagIDs []string) {
	if len(tagIDs) == 0 {
		return
	}
	select {
	case m.cmds <- cmdMerge{tagIDs: tagIDs}:
	case <-m.quit:
		slog.Warn("Dropping tag reads, monitor is stopped", logfields.TagCount(len(tagIDs)))
	}
}

// Snapshot returns a consistent copy of the shared record, using the same
// serialization as the evaluator.
func (m *Monitor) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case m.cmds <- cmdSnapshot{reply: reply}:
	case <-m.quit:
		return Snapshot{}, derrors.NewError(derrors.CategoryDaemon, "monitor is stopped").Build()
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (m *Monitor) handleInstall(sh *manifest.Shipment, expected sets.Set[string]) error {
	if m.st.manifest != nil {
		return derrors.PreconditionViolation("a manifest is already installed").
			WithContext("active_shipment_id", m.st.manifest.ShipmentID)
	}
	if m.st.state != StateIdle {
		return derrors.PreconditionViolation("monitor is not idle").
			WithContext("state", string(m.st.state))
	}

	m.st.cycleID = uuid.NewString()
	m.st.manifest = sh
	m.st.expected = expected.Clone()
	m.st.tags = sets.New[string]()
	m.st.timer.Arm(m.cfg.startingTicks())
	m.st.cycleStart = time.Now()

	slog.Info("Manifest installed, dispatch cycle started",
		logfields.CycleID(m.st.cycleID),
		logfields.ShipmentID(sh.ShipmentID),
		logfields.TagCount(expected.Len()),
		slog.Duration("lead_time", m.cfg.LeadTime))

	m.publish(events.CycleStarted{
		CycleID:      m.st.cycleID,
		ShipmentID:   sh.ShipmentID,
		Manifest:     sh,
		ExpectedTags: expected.Values(),
		LeadTime:     m.cfg.LeadTime,
		StartedAt:    m.st.cycleStart,
	})
	return nil
}

func (m *Monitor) handleMerge(tagIDs []string) {
	added := m.st.tags.UnionSlice(tagIDs)
	m.recorder.AddTagReads(added, len(tagIDs)-added)
	if added > 0 {
		slog.Debug("Tag reads merged",
			logfields.CycleID(m.st.cycleID),
			logfields.TagCount(m.st.tags.Len()))
	}
}

// snapshot copies the whole record. Sets are cloned so callers can never
// alias the live state.
func (m *Monitor) snapshot() Snapshot {
	return Snapshot{
		State:      m.st.state,
		CycleID:    m.st.cycleID,
		Manifest:   m.st.manifest,
		Expected:   m.st.expected.Clone(),
		TagIDs:     m.st.tags.Clone(),
		Timer:      m.st.timer,
		CycleStart: m.st.cycleStart,
		TakenAt:    time.Now(),
	}
}

func (m *Monitor) publish(evt any) {
	if m.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.bus.Publish(ctx, evt); err != nil {
		slog.Warn("Event publish failed", logfields.Error(err))
	}
}
