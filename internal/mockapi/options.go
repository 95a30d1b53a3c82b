package mockapi

import (
	"time"

	"go.uber.org/zap"

	"github.com/m-kr/cms-nano/pkg/schema"
)

// Default list bounds. A request without a limit gets DefaultLimit items;
// larger requests are clamped to MaxLimit.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Options configures a Server.
type Options struct {
	BasePath     string
	DefaultLimit int
	MaxLimit     int
	Seed         bool

	Logger   *zap.Logger
	Registry *schema.Registry
	Now      func() time.Time
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		BasePath:     "/api",
		DefaultLimit: DefaultLimit,
		MaxLimit:     MaxLimit,
		Seed:         true,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = schema.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// WithBasePath mounts the API under path, e.g. "/api".
func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxLimit = limit
	}
}

// WithSeed controls whether the store starts with fixture data.
func WithSeed(seed bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Seed = seed
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithRegistry sets the model registry request bodies are validated against.
func WithRegistry(registry *schema.Registry) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Registry = registry
	}
}

// WithClock replaces time.Now for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Now = now
	}
}
