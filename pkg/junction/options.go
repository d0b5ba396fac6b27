package junction

import "log/slog"

// ValueTransform normalizes a value before it is stored under key.
type ValueTransform func(key string, value any) any

// Config is the per-store configuration.
type Config struct {
	// SignalFactory creates signals for Provide. Provide fails with
	// ErrSignalUnavailable while it is nil.
	SignalFactory SignalFactory

	// Transform normalizes every stored value. Nil means identity.
	Transform ValueTransform

	// Logger receives debug output. Default: slog.Default().
	Logger *slog.Logger

	// Observer is notified after every operation. May be nil.
	Observer Observer

	// InitHooks run in order at the end of New, after the store's
	// mappings have been initialized.
	InitHooks []func(*Store)
}

// Option configures a Store.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		hooks := append([]func(*Store){}, cfg.InitHooks...)
		*c = cfg
		c.InitHooks = hooks
	}
}

// WithSignalFactory sets the factory used by Provide.
func WithSignalFactory(f SignalFactory) Option {
	return func(c *Config) {
		c.SignalFactory = f
	}
}

// WithTransform replaces the value transform.
func WithTransform(t ValueTransform) Option {
	return func(c *Config) {
		c.Transform = t
	}
}

// WrapTransform decorates the current transform. wrap receives the
// transform configured so far (identity if none) and returns its replacement.
//
//	junction.WrapTransform(func(next junction.ValueTransform) junction.ValueTransform {
//	    return func(key string, v any) any {
//	        if key == "count" && v == nil {
//	            return 0
//	        }
//	        return next(key, v)
//	    }
//	})
func WrapTransform(wrap func(next ValueTransform) ValueTransform) Option {
	return func(c *Config) {
		next := c.Transform
		if next == nil {
			next = identity
		}
		c.Transform = wrap(next)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithObserver adds an observer. Observers added later run later.
func WithObserver(o Observer) Option {
	return func(c *Config) {
		c.Observer = combineObservers(c.Observer, o)
	}
}

// OnInit adds a hook that runs at the end of New.
func OnInit(hook func(*Store)) Option {
	return func(c *Config) {
		if hook != nil {
			c.InitHooks = append(c.InitHooks, hook)
		}
	}
}

func identity(_ string, value any) any {
	return value
}
