package lifecycle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rohmanhakim/shell-cache/internal/fetcher"
	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/internal/partition"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

/*
Responsibilities

- Drive the install/activate state machine
- Precache the static asset manifest as one atomic batch
- Sweep partitions left behind by previous version tags
- Claim open clients the moment activation completes

Transition Semantics

- Install is all-or-nothing: every manifest asset must fetch with a success
  status before anything is written; one failure aborts the whole install
  and the static partition is never created
- A failed install is terminal for this instance; Activate refuses to run
- Sweep failures are per-partition and non-fatal; an orphan that survives
  one activation is collected by the next
*/

type Manager struct {
	mu    sync.Mutex
	state State

	store       partition.Store
	fetch       fetcher.Fetcher
	origin      url.URL
	staticName  string
	dynamicName string
	manifest    []string
	clients     ClientRegistry

	metadataSink metadata.EventSink
	logger       *zap.Logger
}

func NewManager(
	store partition.Store,
	fetch fetcher.Fetcher,
	origin url.URL,
	staticName string,
	dynamicName string,
	manifest []string,
	clients ClientRegistry,
	metadataSink metadata.EventSink,
	logger *zap.Logger,
) *Manager {
	if clients == nil {
		clients = NoopClients{}
	}
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		state:        StateUninstalled,
		store:        store,
		fetch:        fetch,
		origin:       origin,
		staticName:   staticName,
		dynamicName:  dynamicName,
		manifest:     manifest,
		clients:      clients,
		metadataSink: metadataSink,
		logger:       logger,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Install precaches the asset manifest into the static partition. The batch
// is atomic: every asset is fetched first, and only a fully successful batch
// is stored.
func (m *Manager) Install(ctx context.Context) failure.ClassifiedError {
	if err := m.transition(StateUninstalled, StateInstalling); err != nil {
		return err
	}

	type pending struct {
		key   string
		entry partition.Entry
	}
	batch := make([]pending, 0, len(m.manifest))

	for _, assetPath := range m.manifest {
		target := m.assetURL(assetPath)
		param := fetcher.NewFetchParam(http.MethodGet, target, nil, nil)

		result, err := m.fetch.Fetch(ctx, param)
		if err != nil {
			return m.abortInstall(assetPath, err.Error())
		}
		if !result.Ok() {
			return m.abortInstall(assetPath, fmt.Sprintf("status %d", result.Code()))
		}

		batch = append(batch, pending{
			key:   partition.Key(http.MethodGet, target),
			entry: partition.NewEntry(result.Code(), result.Header(), result.Body(), time.Now()),
		})
	}

	static, err := m.store.Open(m.staticName)
	if err != nil {
		return m.abortInstall(m.staticName, err.Error())
	}
	for _, item := range batch {
		if err := static.Put(item.key, item.entry); err != nil {
			return m.abortInstall(m.staticName, err.Error())
		}
		m.metadataSink.RecordCacheWrite(m.staticName, "")
	}

	return m.transition(StateInstalling, StateInstalled)
}

// Activate sweeps every partition that belongs to neither the current static
// nor the current dynamic name, then claims all open clients. Sweep failures
// are logged and skipped.
func (m *Manager) Activate(ctx context.Context) failure.ClassifiedError {
	m.mu.Lock()
	if m.state == StateFailed {
		m.mu.Unlock()
		return &LifecycleError{
			Message:   "install failed; this instance never takes over",
			Retryable: false,
			Cause:     ErrCauseNotInstalled,
		}
	}
	if m.state != StateInstalled {
		from := m.state
		m.mu.Unlock()
		return &LifecycleError{
			Message:   fmt.Sprintf("cannot activate from %s", from),
			Retryable: false,
			Cause:     ErrCauseInvalidTransition,
		}
	}
	m.setStateLocked(StateActivating)
	m.mu.Unlock()

	m.sweepOrphans()

	if err := m.clients.Claim(ctx); err != nil {
		// losing a claim does not stop the activation; intercepts still apply
		// to every new request
		m.logger.Warn("client claim failed", zap.Error(err))
	}

	return m.transition(StateActivating, StateActive)
}

func (m *Manager) sweepOrphans() {
	names, err := m.store.Names()
	if err != nil {
		m.recordSweepError("Manager.sweepOrphans", "", err)
		return
	}

	for _, name := range names {
		if name == m.staticName || name == m.dynamicName {
			continue
		}
		if err := m.store.Delete(name); err != nil {
			m.recordSweepError("Manager.sweepOrphans", name, err)
			continue
		}
		m.logger.Info("deleted orphaned partition", zap.String("partition", name))
	}
}

func (m *Manager) abortInstall(subject string, detail string) failure.ClassifiedError {
	m.mu.Lock()
	m.setStateLocked(StateFailed)
	m.mu.Unlock()

	err := &LifecycleError{
		Message:   fmt.Sprintf("%s: %s", subject, detail),
		Retryable: true,
		Cause:     ErrCauseInstallAborted,
	}
	m.metadataSink.RecordError(
		time.Now(),
		"lifecycle",
		"Manager.Install",
		metadata.CauseInstallAborted,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, subject),
		},
	)
	return err
}

func (m *Manager) recordSweepError(action string, name string, err failure.ClassifiedError) {
	m.metadataSink.RecordError(
		time.Now(),
		"lifecycle",
		action,
		metadata.CauseSweepFailure,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrPartition, name),
		},
	)
}

func (m *Manager) transition(from State, to State) failure.ClassifiedError {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != from {
		return &LifecycleError{
			Message:   fmt.Sprintf("expected %s, in %s", from, m.state),
			Retryable: false,
			Cause:     ErrCauseInvalidTransition,
		}
	}
	m.setStateLocked(to)
	return nil
}

func (m *Manager) setStateLocked(to State) {
	previous := m.state
	m.state = to
	m.metadataSink.RecordTransition(previous.String(), to.String())
}

func (m *Manager) assetURL(assetPath string) url.URL {
	target := m.origin
	target.Path = assetPath
	return target
}
