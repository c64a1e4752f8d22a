package env

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/megs-sim/megs"
	"github.com/megs-sim/megs/contract"
	"github.com/megs-sim/megs/engine"
)

// Default connection ranges for definitions.
var (
	DefaultInputs  = megs.Arity{Min: 2, Max: 2}
	DefaultOutputs = megs.Arity{Min: 1, Max: 1}
)

// Environment owns the module catalog and the live instances created from
// it. Every module added is verified against one contract, and every
// instance is created by one engine whose host imports are already defined.
//
// All methods are safe for concurrent use; mutations are serialized.
type Environment struct {
	engine   engine.Engine
	contract *contract.Contract
	logger   *zap.Logger
	newID    func() uuid.UUID

	categories map[string]*category
	instances  map[uuid.UUID]*instance
	order      []uuid.UUID
	retired    []engine.Module

	inputs  megs.Arity
	outputs megs.Arity

	nextCategoryID uint64
	nextModuleID   uint64

	mu sync.Mutex
}

// Option configures an Environment.
type Option func(*Environment)

// WithLogger sets the logger. The default is engine.Logger().
func WithLogger(l *zap.Logger) Option {
	return func(e *Environment) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithArity sets the input and output ranges given to new definitions.
func WithArity(inputs, outputs megs.Arity) Option {
	return func(e *Environment) {
		e.inputs = inputs
		e.outputs = outputs
	}
}

// WithIDGenerator replaces uuid.New for instance ids.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(e *Environment) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// New creates an empty Environment that compiles and instantiates through
// eng and verifies modules against c. A nil contract accepts any module
// that imports nothing.
func New(eng engine.Engine, c *contract.Contract, opts ...Option) *Environment {
	if c == nil {
		c = contract.New(nil, nil)
	}
	e := &Environment{
		engine:     eng,
		contract:   c,
		logger:     engine.Logger(),
		newID:      uuid.New,
		categories: make(map[string]*category),
		instances:  make(map[uuid.UUID]*instance),
		inputs:     DefaultInputs,
		outputs:    DefaultOutputs,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Contract returns the contract modules are verified against.
func (e *Environment) Contract() *contract.Contract {
	return e.contract
}

// Close closes every instance and every compiled module, including modules
// whose definitions were replaced. The engine itself is left open.
func (e *Environment) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	for _, id := range e.order {
		err = multierr.Append(err, e.instances[id].handle.Close(ctx))
	}
	e.instances = make(map[uuid.UUID]*instance)
	e.order = nil

	for _, cat := range e.categories {
		for _, def := range cat.modules {
			err = multierr.Append(err, def.compiled.Close(ctx))
		}
	}
	e.categories = make(map[string]*category)

	for _, m := range e.retired {
		err = multierr.Append(err, m.Close(ctx))
	}
	e.retired = nil

	return err
}
