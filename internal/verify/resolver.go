package verify

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/vercheck/internal/config"
)

// Kind tags the comparator variant a tool resolved to.
type Kind int

// Resolution kinds, in precedence order.
const (
	// KindClass is a registered tool-specific comparator.
	KindClass Kind = iota
	// KindConfig is the config-based comparator driven by the tool's
	// comparison config file.
	KindConfig
	// KindDefault is the built-in exact-match comparator.
	KindDefault
)

// String returns the kind's name for logging.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindConfig:
		return "config"
	case KindDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Resolution is the terminal state of comparator selection for one tool: a
// tagged variant carrying the comparator to use.
type Resolution struct {
	Kind       Kind
	Comparator Comparator

	// Config is the parsed comparison config, present only for KindConfig.
	Config *config.ComparisonConfig
}

// ToolConfigLoader supplies parsed comparison configs to the resolver. It is
// satisfied by config.ToolConfigLoader.
type ToolConfigLoader interface {
	LoadToolConfig(tool string) (*config.ComparisonConfig, error)
}

// Resolver chooses, per tool, between a class-based comparator, the
// config-based comparator, and the built-in default, with defined precedence
// and fallback on load error:
//
//  1. A registered tool-specific comparator whose factory succeeds.
//  2. A comparison config file that exists and parses.
//  3. The default comparator.
//
// Any load or parse failure at one tier is logged and resolution falls
// through to the next tier; resolution itself never fails. Results are
// memoized per lowercase tool name for the lifetime of the process.
type Resolver struct {
	registry *Registry
	loader   ToolConfigLoader
	logger   zerolog.Logger

	mu    sync.Mutex
	cache map[string]Resolution
}

// NewResolver creates a resolver over the given registry and config loader.
// A nil registry uses the default init-time registry.
func NewResolver(registry *Registry, loader ToolConfigLoader, logger zerolog.Logger) *Resolver {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Resolver{
		registry: registry,
		loader:   loader,
		logger:   logger.With().Str("component", "resolver").Logger(),
		cache:    make(map[string]Resolution),
	}
}

// Resolve returns the comparator resolution for tool, computing it on first
// use and serving the memoized result afterwards.
func (r *Resolver) Resolve(tool string) Resolution {
	key := strings.ToLower(tool)

	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.cache[key]; ok {
		return res
	}

	res := r.resolve(key)
	r.cache[key] = res
	return res
}

func (r *Resolver) resolve(tool string) Resolution {
	log := r.logger.With().Str("tool", tool).Logger()

	if factory, ok := r.registry.Lookup(tool); ok {
		cmp, err := factory(log)
		if err == nil {
			log.Debug().Str("kind", KindClass.String()).Msg("comparator resolved")
			return Resolution{Kind: KindClass, Comparator: cmp}
		}
		log.Warn().Err(err).Msg("tool-specific comparator failed to load, falling back")
	}

	if r.loader != nil {
		cfg, err := r.loader.LoadToolConfig(tool)
		if err == nil {
			log.Debug().Str("kind", KindConfig.String()).Msg("comparator resolved")
			return Resolution{
				Kind:       KindConfig,
				Comparator: NewConfigComparator(cfg, log),
				Config:     cfg,
			}
		}
		log.Debug().Err(err).Msg("no usable comparison config, falling back")
	}

	log.Debug().Str("kind", KindDefault.String()).Msg("comparator resolved")
	return Resolution{Kind: KindDefault, Comparator: NewDefaultComparator(log)}
}
