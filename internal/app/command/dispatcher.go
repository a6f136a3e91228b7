// Package command dispatches script commands to the embedded player.
package command

import (
	"encoding/json"
	"math"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytplayer/internal/domain/engine"
)

// VoidResultFunc reports whether a script error only means the called
// function returned no value.
type VoidResultFunc func(err error) bool

// VoidResultCodes returns a VoidResultFunc matching engine.ScriptErrors with any of the codes.
func VoidResultCodes(codes ...int) VoidResultFunc {
	return func(err error) bool {
		var scriptErr *engine.ScriptError
		if !errors.As(err, &scriptErr) {
			return false
		}
		for _, code := range codes {
			if scriptErr.Code == code {
				return true
			}
		}
		return false
	}
}

// Dispatcher sends commands to the player object of the embedded document.
type Dispatcher struct {
	runner engine.ScriptRunner
	isVoid VoidResultFunc
}

// NewDispatcher creates a new dispatcher. A nil isVoid matches engine.CodeUnsupportedResult.
func NewDispatcher(runner engine.ScriptRunner, isVoid VoidResultFunc) *Dispatcher {
	if isVoid == nil {
		isVoid = VoidResultCodes(engine.CodeUnsupportedResult)
	}
	return &Dispatcher{
		runner: runner,
		isVoid: isVoid,
	}
}

// Script returns the statement executed for command.
func Script(command string) string {
	return "player." + command + ";"
}

// Send runs the command and passes the raw result to onResult.
// Failures are logged and reported as a nil result; onResult may be nil.
func (d *Dispatcher) Send(command string, onResult func(result any)) {
	d.runner.RunScript(Script(command), func(result any, err error) {
		if err != nil && !d.isVoid(err) {
			zlog.Error().Err(err).Str("command", command).Msg("command: error executing script")
			result = nil
		}
		if onResult != nil {
			onResult(result)
		}
	})
}

// SendFloat runs the command and coerces its result to a float.
func (d *Dispatcher) SendFloat(command string, onResult func(value *float64)) {
	d.Send(command, func(result any) {
		if onResult == nil {
			return
		}
		if v, ok := ToFloat(result); ok {
			onResult(&v)
			return
		}
		onResult(nil)
	})
}

// SendInt runs the command and coerces its result to an integer.
func (d *Dispatcher) SendInt(command string, onResult func(value *int)) {
	d.Send(command, func(result any) {
		if onResult == nil {
			return
		}
		if v, ok := ToInt(result); ok {
			onResult(&v)
			return
		}
		onResult(nil)
	})
}

// SendBool runs the command and coerces its result to a bool.
func (d *Dispatcher) SendBool(command string, onResult func(value *bool)) {
	d.Send(command, func(result any) {
		if onResult == nil {
			return
		}
		if v, ok := result.(bool); ok {
			onResult(&v)
			return
		}
		onResult(nil)
	})
}

// SendString runs the command and coerces its result to a string.
func (d *Dispatcher) SendString(command string, onResult func(value *string)) {
	d.Send(command, func(result any) {
		if onResult == nil {
			return
		}
		if v, ok := result.(string); ok {
			onResult(&v)
			return
		}
		onResult(nil)
	})
}

// ToFloat converts a raw script result to float64.
func ToFloat(result any) (float64, bool) {
	switch v := result.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// ToInt converts a raw script result to int. Fractional values do not convert.
func ToInt(result any) (int, bool) {
	f, ok := ToFloat(result)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
