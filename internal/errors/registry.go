package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Store Errors (J001-J099)
	// ============================================

	"J001": {
		Category:   CategoryConfig,
		Message:    "Signal implementation required",
		Suggestion: "Configure a signal factory, e.g. junction.WithSignalFactory(junction.ReactiveSignals())",
	},
	"J002": {
		Category:   CategoryState,
		Message:    "Store disposed",
		Suggestion: "Create a new store; a disposed store cannot be reused",
	},
	"J003": {
		Category: CategoryPlugin,
		Message:  "Invalid plugin",
	},

	// ============================================
	// Configuration Errors (J100-J199)
	// ============================================

	"J101": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Run 'junction config init' to write a default configuration",
	},
	"J102": {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
	},
	"J103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// ============================================
	// CLI Errors (J200-J299)
	// ============================================

	"J201": {
		Category:   CategoryCLI,
		Message:    "Invalid script line",
		Suggestion: "Use one of: set, write, remove, reset, provide, get, dispose",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
