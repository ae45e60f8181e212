package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigPriority is the priority of config-declared callbacks that omit one.
const ConfigPriority = 0

// Config declares hook subscriptions by callback name.
//
//	actions:
//	  request.before_handle:
//	    - callback: audit.request
//	      priority: 20
//	filters:
//	  controller.result:
//	    - callback: envelope
type Config struct {
	Actions map[string][]Entry `yaml:"actions" json:"actions"`
	Filters map[string][]Entry `yaml:"filters" json:"filters"`
}

// Entry is one configured subscription.
type Entry struct {
	Priority *int   `yaml:"priority,omitempty" json:"priority,omitempty"`
	Callback string `yaml:"callback" json:"callback"`
}

// UnmarshalYAML accepts either a mapping or a bare callback name.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Callback = node.Value
		return nil
	}
	type plain Entry
	return node.Decode((*plain)(e))
}

func (e Entry) priority() int {
	if e.Priority == nil {
		return ConfigPriority
	}
	return *e.Priority
}

// Empty reports whether the config declares no subscriptions.
func (c Config) Empty() bool {
	return len(c.Actions) == 0 && len(c.Filters) == 0
}

// ParseConfig decodes YAML hook config.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes a YAML hook config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return ParseConfig(data)
}

// Registry maps callback names used in config to functions.
type Registry struct {
	actions map[string]ActionFunc
	filters map[string]FilterFunc
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]ActionFunc),
		filters: make(map[string]FilterFunc),
	}
}

// Action names an action callback. It returns the registry for chaining.
func (r *Registry) Action(name string, fn ActionFunc) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
	return r
}

// Filter names a filter callback. It returns the registry for chaining.
func (r *Registry) Filter(name string, fn FilterFunc) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = fn
	return r
}

func (r *Registry) action(name string) (ActionFunc, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.actions[name]
	return fn, ok
}

func (r *Registry) filter(name string) (FilterFunc, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.filters[name]
	return fn, ok
}

// LoadFromConfig registers every subscription in cfg, resolving callbacks
// through reg. It runs once per Bus; later calls are no-ops until Reset.
// The callback name becomes the registration identity.
//
// A name missing from reg fails with ErrUnknownCallback; subscriptions
// registered before the failure stay registered.
func (b *Bus) LoadFromConfig(cfg Config, reg *Registry) error {
	b.mu.Lock()
	if b.loaded {
		b.mu.Unlock()
		b.logger.Debug("hook config already loaded")
		return nil
	}
	b.loaded = true
	b.mu.Unlock()

	for name, entries := range cfg.Actions {
		for _, e := range entries {
			fn, ok := reg.action(e.Callback)
			if !ok {
				return fmt.Errorf("%w: action %q on %q", ErrUnknownCallback, e.Callback, name)
			}
			if err := b.AddAction(name, fn, WithID(e.Callback), WithPriority(e.priority())); err != nil {
				return err
			}
		}
	}

	for name, entries := range cfg.Filters {
		for _, e := range entries {
			fn, ok := reg.filter(e.Callback)
			if !ok {
				return fmt.Errorf("%w: filter %q on %q", ErrUnknownCallback, e.Callback, name)
			}
			if err := b.AddFilter(name, fn, WithID(e.Callback), WithPriority(e.priority())); err != nil {
				return err
			}
		}
	}

	b.logger.Info("hook config loaded",
		slog.Int("actions", len(cfg.Actions)),
		slog.Int("filters", len(cfg.Filters)),
	)
	return nil
}

// Loaded reports whether LoadFromConfig has run since creation or Reset.
func (b *Bus) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}
