package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/cmdops/cache"
	"github.com/jonwraymond/cmdops/command"
	"github.com/jonwraymond/cmdops/identity"
	"github.com/jonwraymond/cmdops/observe"
	"github.com/jonwraymond/cmdops/permission"
	"github.com/jonwraymond/cmdops/resilience"
)

// Config holds the dispatcher's collaborators. Registry is required; every
// other collaborator is optional and defaults to a no-op or sensible zero.
type Config struct {
	// Parser parses raw input. Default: command.NewParser(command.Config{}).
	Parser *command.Parser

	// Registry resolves command names to handlers. Required.
	Registry *Registry

	// Permissions checks command execution. Nil skips permission checks.
	Permissions *permission.Manager

	// Cache stores successful results. Nil disables caching.
	Cache *cache.Manager

	// CachePolicy controls TTLs and side-effect handling.
	// Default: cache.DefaultPolicy() when Cache is set.
	CachePolicy cache.Policy

	// WorkDir is the working directory commands run against. It is part of
	// the cache key.
	WorkDir string

	// Logger receives structured dispatch logs. Default: observe.NopLogger().
	Logger observe.Logger
}

// Dispatcher runs the command pipeline: parse, validate, check permission,
// consult cache, execute, record.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Dispatch always returns a structured Result; handler errors and
//   panics never escape.
// - Cache failures are logged and treated as misses; they never fail a
//   dispatch.
type Dispatcher struct {
	parser      *command.Parser
	registry    *Registry
	validator   *Validator
	permissions *permission.Manager
	cache       *cache.Manager
	policy      cache.Policy
	keyer       cache.Keyer
	skipRule    cache.SkipRule
	workDir     string
	history     *History
	observers   observerSet
	logger      observe.Logger
	metrics     observe.Metrics
	tracer      observe.Tracer
	bulkhead    *resilience.Bulkhead
	timeout     time.Duration
	flight      *resilience.Group
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithKeyer overrides the cache key generator.
func WithKeyer(k cache.Keyer) Option {
	return func(d *Dispatcher) { d.keyer = k }
}

// WithSkipRule overrides the cache skip rule.
func WithSkipRule(rule cache.SkipRule) Option {
	return func(d *Dispatcher) { d.skipRule = rule }
}

// WithHistoryCapacity bounds per-session history.
func WithHistoryCapacity(capacity int) Option {
	return func(d *Dispatcher) { d.history = NewHistory(capacity) }
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observers.observers = append(d.observers.observers, o)
	}
}

// WithMetrics records dispatch metrics.
func WithMetrics(m observe.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer wraps handler execution in a span.
func WithTracer(t observe.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithBulkhead bounds concurrent handler executions.
func WithBulkhead(b *resilience.Bulkhead) Option {
	return func(d *Dispatcher) { d.bulkhead = b }
}

// WithTimeout bounds each handler execution's wall-clock time.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithSingleFlight coalesces concurrent executions that share a cache key.
// Without it, concurrent identical dispatches each execute.
func WithSingleFlight() Option {
	return func(d *Dispatcher) { d.flight = resilience.NewGroup() }
}

// NewDispatcher creates a dispatcher from the configuration.
func NewDispatcher(config Config, opts ...Option) (*Dispatcher, error) {
	if config.Registry == nil {
		return nil, errors.New("dispatch: registry is required")
	}
	if config.Parser == nil {
		config.Parser = command.NewParser(command.Config{})
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Cache != nil && !config.CachePolicy.ShouldCache() {
		config.CachePolicy = cache.DefaultPolicy()
	}

	d := &Dispatcher{
		parser:      config.Parser,
		registry:    config.Registry,
		validator:   NewValidator(config.Registry),
		permissions: config.Permissions,
		cache:       config.Cache,
		policy:      config.CachePolicy,
		keyer:       cache.NewDefaultKeyer(),
		skipRule:    cache.DefaultSkipRule,
		workDir:     config.WorkDir,
		history:     NewHistory(DefaultHistoryCapacity),
		logger:      config.Logger,
		metrics:     observe.NopMetrics(),
		tracer:      observe.NewNoopTracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Register adds a handler to the registry and notifies observers.
func (d *Dispatcher) Register(h Handler) error {
	if err := d.registry.Register(h); err != nil {
		return err
	}
	d.observers.registered(h.Name())
	return nil
}

// History exposes the dispatch history.
func (d *Dispatcher) History() *History {
	return d.history
}

// Registry exposes the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs the pipeline for one raw input line. It always returns a
// structured result; it never panics and never returns a raw error.
func (d *Dispatcher) Dispatch(ctx context.Context, session, raw string) *Result {
	if err := ctx.Err(); err != nil {
		return Failure(CodeCancelled, "dispatch cancelled", err.Error())
	}

	cmd, err := d.parser.Parse(raw)
	if err != nil {
		d.logger.Debug(ctx, "parse failed", observe.Field{Key: "error", Value: err.Error()})
		return Failure(CodeParseError, "failed to parse command", err.Error())
	}

	meta := observe.CommandMeta{
		Name:       cmd.Name,
		Subcommand: cmd.Subcommand,
		Session:    session,
		Principal:  identity.PrincipalFromContext(ctx),
	}
	log := d.logger.WithCommand(meta)

	vr := d.validator.Validate(cmd)
	if !vr.Valid {
		result := &Result{Success: false, Errors: vr.Errors, Warnings: vr.Warnings}
		d.record(ctx, session, cmd, result, 0)
		return result
	}

	if denied := d.checkPermission(ctx, cmd); denied != nil {
		log.Warn(ctx, "permission denied", observe.Field{Key: "reason", Value: denied.Errors[0].Detail})
		d.record(ctx, session, cmd, denied, 0)
		return denied
	}

	h, ok := d.registry.Resolve(cmd.Name)
	if !ok {
		// The handler can be unregistered between validation and here.
		result := Failure(CodeUnknownCommand, fmt.Sprintf("unknown command %q", cmd.Name), "")
		d.record(ctx, session, cmd, result, 0)
		return result
	}

	key, cacheable := d.cacheKey(ctx, cmd, h)
	if cacheable {
		if cached, ok := d.cacheGet(ctx, key); ok {
			// The cached result already carries the validation warnings
			// recorded when it was stored.
			log.Debug(ctx, "served from cache", observe.Field{Key: "key", Value: key})
			d.observers.cacheHit(ctx, cmd.Name, key)
			d.metrics.RecordDispatch(ctx, meta, 0, true, nil)
			d.record(ctx, session, cmd, cached, 0)
			return cached
		}
	}

	start := time.Now()
	result, err := d.execute(ctx, meta, h, &Invocation{
		Command:  cmd,
		Session:  session,
		Identity: identity.FromContext(ctx),
		WorkDir:  d.workDir,
	}, key)
	duration := time.Since(start)

	if err == nil && result == nil {
		err = errors.New("handler returned no result")
	}
	if err != nil {
		result = failureFromExecution(err)
		log.Error(ctx, "execution failed", observe.Field{Key: "error", Value: err.Error()})
		d.observers.failed(ctx, cmd.Name, err)
	}
	result.Metadata.ExecutionTime = duration
	result.Warnings = append(result.Warnings, vr.Warnings...)

	if cacheable && err == nil && result.Success {
		d.cacheSet(ctx, key, result)
	}

	d.metrics.RecordDispatch(ctx, meta, duration, false, err)
	d.observers.executed(ctx, cmd.Name, result)
	d.record(ctx, session, cmd, result, duration)
	return result
}

// execute runs the handler with the configured guards: bulkhead, timeout,
// single-flight, tracing. Handler panics surface as execution errors.
func (d *Dispatcher) execute(ctx context.Context, meta observe.CommandMeta, h Handler, inv *Invocation, key string) (*Result, error) {
	run := func(ctx context.Context) (*Result, error) {
		ctx, span := d.tracer.StartSpan(ctx, meta)
		result, err := d.invoke(ctx, h, inv)
		d.tracer.EndSpan(span, err)
		return result, err
	}

	guarded := func(ctx context.Context) (*Result, error) {
		if d.bulkhead == nil {
			return d.runWithTimeout(ctx, run)
		}
		var result *Result
		err := d.bulkhead.Execute(ctx, func(ctx context.Context) error {
			var innerErr error
			result, innerErr = d.runWithTimeout(ctx, run)
			return innerErr
		})
		return result, err
	}

	if d.flight == nil || key == "" {
		return guarded(ctx)
	}

	v, _, err := d.flight.Do(ctx, key, func(ctx context.Context) (any, error) {
		return guarded(ctx)
	})
	if err != nil {
		return nil, err
	}
	result, ok := v.(*Result)
	if !ok || result == nil {
		return nil, nil
	}
	// Coalesced callers all receive the same value; hand each its own copy
	// so the per-dispatch annotations do not race on shared state.
	return result.clone(), nil
}

func (d *Dispatcher) runWithTimeout(ctx context.Context, run func(context.Context) (*Result, error)) (*Result, error) {
	if d.timeout <= 0 {
		return run(ctx)
	}
	// On timeout the handler goroutine outlives this call and still stores
	// its result, so the variable is shared across goroutines.
	var mu sync.Mutex
	var result *Result
	err := resilience.ExecuteWithTimeout(ctx, d.timeout, func(ctx context.Context) error {
		r, innerErr := run(ctx)
		mu.Lock()
		result = r
		mu.Unlock()
		return innerErr
	})
	mu.Lock()
	defer mu.Unlock()
	return result, err
}

// invoke calls the handler, converting panics to errors.
func (d *Dispatcher) invoke(ctx context.Context, h Handler, inv *Invocation) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Execute(ctx, inv)
}

func (d *Dispatcher) checkPermission(ctx context.Context, cmd *command.Command) *Result {
	if d.permissions == nil {
		return nil
	}

	decision := d.permissions.Check(&permission.Request{
		Identity: identity.FromContext(ctx),
		Action:   "execute",
		Scope:    permission.ScopeCommand,
		Resource: cmd.Name,
		Metadata: map[string]string{"command_type": cmd.Subcommand},
	})
	if decision.Allowed {
		return nil
	}
	return Failure(CodePermissionDenied,
		fmt.Sprintf("not permitted to execute %q", cmd.Name), decision.Reason)
}

// cacheKey builds the invocation's cache key. A command is cacheable when a
// cache is configured, the policy enables caching, and no skip rule matches
// the handler's tags.
func (d *Dispatcher) cacheKey(ctx context.Context, cmd *command.Command, h Handler) (string, bool) {
	if d.cache == nil || !d.policy.ShouldCache() {
		return "", false
	}
	if d.skipRule != nil && d.skipRule(cmd.Name, h.Tags()) {
		return "", false
	}

	options := make(map[string]any, len(cmd.Options))
	for k, v := range cmd.Options {
		options[k] = v.Interface()
	}

	key, err := d.keyer.Key(cache.KeyInput{
		Name:       cmd.Name,
		Subcommand: cmd.Subcommand,
		Arguments:  cmd.Arguments,
		Options:    options,
		WorkDir:    d.workDir,
		Principal:  identity.PrincipalFromContext(ctx),
	})
	if err != nil {
		d.logger.Warn(ctx, "cache key generation failed", observe.Field{Key: "error", Value: err.Error()})
		return "", false
	}
	return key, true
}

func (d *Dispatcher) cacheGet(ctx context.Context, key string) (*Result, bool) {
	data, ok := d.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		d.logger.Warn(ctx, "corrupt cache entry", observe.Field{Key: "key", Value: key})
		d.cache.Delete(ctx, key)
		return nil, false
	}
	result.Metadata.CacheHit = true
	result.Metadata.ExecutionTime = 0
	return &result, true
}

func (d *Dispatcher) cacheSet(ctx context.Context, key string, result *Result) {
	data, err := json.Marshal(result)
	if err != nil {
		d.logger.Warn(ctx, "cache serialization failed", observe.Field{Key: "error", Value: err.Error()})
		return
	}
	if err := d.cache.Set(ctx, key, data, d.policy.EffectiveTTL(0)); err != nil {
		d.logger.Warn(ctx, "cache write failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
	}
}

func (d *Dispatcher) record(ctx context.Context, session string, cmd *command.Command, result *Result, duration time.Duration) {
	entry := HistoryEntry{
		Command:  cmd.Name,
		Raw:      cmd.Raw,
		Duration: duration,
		Success:  result.Success,
		CacheHit: result.Metadata.CacheHit,
	}
	if desc, ok := result.FirstError(); ok {
		entry.Error = desc.Code + ": " + desc.Message
	}
	d.history.Append(session, entry)
}

// failureFromExecution maps an execution error to a failure result,
// distinguishing cancellation and timeout from handler faults.
func failureFromExecution(err error) *Result {
	switch {
	case errors.Is(err, context.Canceled):
		return Failure(CodeCancelled, "dispatch cancelled", err.Error())
	case errors.Is(err, resilience.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return Failure(CodeCancelled, "dispatch timed out", err.Error())
	case errors.Is(err, resilience.ErrBulkheadFull):
		return Failure(CodeExecutionError, "too many concurrent commands", err.Error())
	default:
		return Failure(CodeExecutionError, "command execution failed", err.Error())
	}
}
