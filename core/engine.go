package core

import (
	"context"

	"github.com/sirupsen/logrus"
)

// EngineState tracks the pipeline engine's lifecycle: a fresh engine must
// be configured before it can execute, and it can only ever execute once.
type EngineState string

const (
	StateFresh      EngineState = "fresh"
	StateConfigured EngineState = "configured"
	StateExecuting  EngineState = "executing"
	StateTerminal   EngineState = "terminal"
)

// Engine drives a single pipeline run: it owns the output index, the
// hierarchical resolver built over a registered Config, and the
// dependency-ordered action list that RegisterConfig computes once.
type Engine struct {
	state    EngineState
	provider Provider
	source   DataSource
	log      *logrus.Logger

	config   *Config
	index    *OutputIndex
	resolver *Resolver
	order    []Action
}

// NewEngine returns a fresh, unconfigured engine over provider and
// source. log may be nil, in which case logrus's standard logger is
// used.
func NewEngine(provider Provider, source DataSource, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{state: StateFresh, provider: provider, source: source, log: log}
}

// RegisterConfig validates cfg, seeds the output index with its declared
// variables, and topologically sorts its actions. It may only be called
// once, on a fresh engine.
func (e *Engine) RegisterConfig(cfg *Config) error {
	if e.state != StateFresh {
		return ErrConfig("engine already configured")
	}

	index := NewOutputIndex()
	for name, decl := range cfg.Variables {
		typ, err := ParseSolType(decl.Ty)
		if err != nil {
			return wrap(KindConfig, err, "declared variable "+name)
		}
		value, err := Coerce(typ, decl.Value)
		if err != nil {
			return wrap(KindConfig, err, "declared variable "+name)
		}
		index.SaveVariable(name, typ, value)
	}

	order, err := TopologicalSort(cfg.Actions)
	if err != nil {
		return err
	}

	e.config = cfg
	e.index = index
	e.resolver = NewResolver(index, cfg.Data, e.source)
	e.order = order
	e.state = StateConfigured
	e.log.WithFields(logrus.Fields{"actions": len(order)}).Info("pipeline config registered")
	return nil
}

// Execute runs every action in dependency order against the engine's
// Provider, recording deploy addresses and read outputs into the output
// index as it goes. It transitions the engine to StateTerminal whether it
// succeeds or fails; a terminal engine cannot be executed again.
func (e *Engine) Execute(ctx context.Context) error {
	if e.state != StateConfigured {
		return ErrConfig("engine must be configured before execution")
	}
	e.state = StateExecuting
	defer func() { e.state = StateTerminal }()

	for _, action := range e.order {
		log := e.log.WithField("action", action.ID)
		switch action.Data.Type {
		case ActionDeploy:
			addr, err := executeDeploy(ctx, e.provider, e.resolver, action.ID, action.Data.Deploy)
			if err != nil {
				log.WithError(err).Error("deploy failed")
				return err
			}
			addrParam := []Param{{Type: SolType{Kind: KindAddress}}}
			addrValue := []TypedValue{{Type: SolType{Kind: KindAddress}, Value: addr}}
			if err := e.index.RecordOutput(action.ID, addrParam, addrValue); err != nil {
				return err
			}
			log.WithField("address", addr.Hex()).Info("deployed")
		case ActionWrite:
			if err := executeWrite(ctx, e.provider, e.resolver, action.ID, action.Data.Write); err != nil {
				log.WithError(err).Error("write failed")
				return err
			}
			log.Info("write executed")
		case ActionRead:
			params, values, err := executeRead(ctx, e.provider, e.resolver, action.ID, action.Data.Read)
			if err != nil {
				log.WithError(err).Error("read failed")
				return err
			}
			if len(params) > 0 {
				if err := e.index.RecordOutput(action.ID, params, values); err != nil {
					return err
				}
			}
			log.Info("read executed")
		default:
			return ErrConfig("action %s has no recognized action_data", action.ID)
		}
	}
	return nil
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() EngineState { return e.state }

// Index exposes the run's output index, e.g. for a CLI to print recorded
// deployment addresses after a successful Execute.
func (e *Engine) Index() *OutputIndex { return e.index }
