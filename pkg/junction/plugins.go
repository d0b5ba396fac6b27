package junction

import (
	"maps"
	"strings"
)

// Reactive installs ReactiveSignals as the signal factory.
var Reactive = &Plugin{
	Name: "reactive",
	Apply: func(k *Kind, _ any) {
		k.With(WithSignalFactory(ReactiveSignals()))
	},
}

// TrimStrings trims surrounding whitespace from string values.
// Other values pass through to the previous transform unchanged.
var TrimStrings = &Plugin{
	Name: "trim-strings",
	Apply: func(k *Kind, _ any) {
		k.With(WrapTransform(func(next ValueTransform) ValueTransform {
			return func(key string, value any) any {
				if str, ok := value.(string); ok {
					value = strings.TrimSpace(str)
				}
				return next(key, value)
			}
		}))
	},
}

// Defaults seeds every new store with the map[string]any passed as cfg.
// The map is copied when the plugin is applied.
var Defaults = &Plugin{
	Name: "defaults",
	Apply: func(k *Kind, cfg any) {
		seed, _ := cfg.(map[string]any)
		if len(seed) == 0 {
			return
		}
		seed = maps.Clone(seed)
		k.With(OnInit(func(s *Store) {
			// SetMany only fails on a disposed store.
			_ = s.SetMany(seed)
		}))
	},
}
