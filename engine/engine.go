package engine

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/tracecolumn/store/bitvec"
	"github.com/dolthub/tracecolumn/store/stringpool"
	"github.com/dolthub/tracecolumn/table"
	"github.com/dolthub/tracecolumn/view"
)

// Engine is one trace-processing instance: a single stringpool.Pool shared
// by every registered table, plus a registry of named tables and views built
// on top of it. An Engine is not safe for concurrent use by more than one
// goroutine at a time -- like the column/table/view layers it sits on, it
// assumes single-threaded, cooperative ownership of its data for the
// lifetime of one trace.
type Engine struct {
	cfg Config
	log *logrus.Entry
	id  uuid.UUID

	pool *stringpool.Pool

	mu     sync.Mutex // guards tables/views during registration only
	tables map[string]*table.Table
	views  map[string]*view.View
}

// New returns a fresh Engine with its own string pool and empty table/view
// registries.
func New(cfg Config) *Engine {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	id := uuid.New()
	e := &Engine{
		cfg:    cfg,
		id:     id,
		pool:   stringpool.New(),
		tables: make(map[string]*table.Table),
		views:  make(map[string]*view.View),
	}
	e.log = logger.WithFields(logrus.Fields{"instance": e.id.String(), "engine": cfg.Name})
	e.log.Debug("engine: instance created")
	return e
}

// Pool returns the string pool shared by every table registered on this
// engine.
func (e *Engine) Pool() *stringpool.Pool { return e.pool }

// InstanceID returns this engine's unique, randomly-generated instance id,
// useful for correlating logs across a process hosting more than one Engine.
func (e *Engine) InstanceID() uuid.UUID { return e.id }

// RegisterTable adds t to the registry under name. Returns an error if a
// table is already registered under that name.
func (e *Engine) RegisterTable(name string, t *table.Table) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.tables[name]; exists {
		return errors.Errorf("engine %q: table %q already registered", e.cfg.Name, name)
	}
	e.tables[name] = t
	e.log.WithFields(logrus.Fields{"table": name, "rows": t.RowCount()}).Debug("engine: table registered")
	return nil
}

// Table returns the table registered under name, if any.
func (e *Engine) Table(name string) (*table.Table, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[name]
	return t, ok
}

// RegisterView validates and builds a View over this engine's registered
// tables and adds it to the registry under name.
func (e *Engine) RegisterView(name string, nodes []view.TableNode, outputs []view.OutputColumn) (*view.View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.views[name]; exists {
		return nil, errors.Errorf("engine %q: view %q already registered", e.cfg.Name, name)
	}
	v, err := view.CreateWithCacheSize(name, nodes, outputs, e.cfg.ViewCacheSize)
	if err != nil {
		return nil, errors.Wrapf(err, "engine %q: registering view %q", e.cfg.Name, name)
	}
	e.views[name] = v
	e.log.WithField("view", name).Debug("engine: view registered")
	return v, nil
}

// View returns the view registered under name, if any.
func (e *Engine) View(name string) (*view.View, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.views[name]
	return v, ok
}

// Query runs constraints/orders against the named view, logging the
// resulting row count at debug level. It exists so callers get engine-level
// logging and error context for free instead of calling View.Query directly.
// colsUsed may be nil to request every output column.
func (e *Engine) Query(viewName string, constraints []view.Constraint, orders []view.Order, colsUsed *bitvec.BitVector) (*table.Table, error) {
	v, ok := e.View(viewName)
	if !ok {
		return nil, errors.Errorf("engine %q: no such view %q", e.cfg.Name, viewName)
	}
	result, err := v.Query(constraints, orders, colsUsed)
	if err != nil {
		return nil, errors.Wrapf(err, "engine %q: querying view %q", e.cfg.Name, viewName)
	}
	e.log.WithFields(logrus.Fields{"view": viewName, "rows": result.RowCount()}).Debug("engine: query complete")
	return result, nil
}

// Stats is a cheap point-in-time snapshot of instance size, useful for
// logging or an admin/status endpoint built on top of Engine.
type Stats struct {
	TableCount  int
	ViewCount   int
	StringCount uint32
}

// Stats returns a snapshot of this engine's current size.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		TableCount:  len(e.tables),
		ViewCount:   len(e.views),
		StringCount: e.pool.Size(),
	}
}
