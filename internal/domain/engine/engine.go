// Package engine defines the contract of the rendering engine that hosts the
// embedded player document.
package engine

import (
	"fmt"
	"net/url"
)

// Script error codes reported by engines.
const (
	CodeScriptException   = 4 // The script threw
	CodeUnsupportedResult = 5 // The script returned nothing that can be handed back (e.g. undefined)
)

// ScriptError is a script execution failure reported by an engine.
type ScriptError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("script error %d: %s", e.Code, e.Message)
}

// ScriptRunner executes script source inside the engine.
// The callback is invoked once with the raw result or an error.
type ScriptRunner interface {
	RunScript(source string, callback func(result any, err error))
}

// NavigationPolicy is the decision taken for an intercepted navigation.
type NavigationPolicy int

const (
	NavigationAllow  NavigationPolicy = iota // Let the navigation proceed
	NavigationCancel                         // Drop the navigation
)

// String returns the string representation of the policy.
func (p NavigationPolicy) String() string {
	switch p {
	case NavigationAllow:
		return "allow"
	case NavigationCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// NavigationHandler decides on a navigation requested by the rendered content.
// decide must be called exactly once.
type NavigationHandler func(target *url.URL, decide func(NavigationPolicy))

// Engine hosts the player document.
type Engine interface {
	ScriptRunner

	// LoadDocument renders html with baseURL as its base.
	LoadDocument(html, baseURL string) error
	// SetNavigationHandler registers the handler for outbound navigations.
	SetNavigationHandler(handler NavigationHandler)
}
