package command

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ytplayer/internal/domain/engine"
)

// fakeRunner answers every script with a fixed result and error.
type fakeRunner struct {
	scripts []string
	result  any
	err     error
}

func (r *fakeRunner) RunScript(source string, callback func(result any, err error)) {
	r.scripts = append(r.scripts, source)
	callback(r.result, r.err)
}

func TestScript(t *testing.T) {
	assert.Equal(t, "player.playVideo();", Script("playVideo()"))
	assert.Equal(t, "player.seekTo(12.5, true);", Script("seekTo(12.5, true)"))
}

func TestDispatcher_Send(t *testing.T) {
	tests := []struct {
		name       string
		result     any
		err        error
		wantResult any
	}{
		{
			name:       "success passes result through",
			result:     float64(42),
			wantResult: float64(42),
		},
		{
			name:       "void result error is treated as success",
			result:     nil,
			err:        &engine.ScriptError{Code: engine.CodeUnsupportedResult, Message: "unsupported type"},
			wantResult: nil,
		},
		{
			name:       "wrapped void result error is treated as success",
			result:     "kept",
			err:        errors.Wrap(&engine.ScriptError{Code: engine.CodeUnsupportedResult}, "eval"),
			wantResult: "kept",
		},
		{
			name:       "other script error yields nil",
			result:     float64(1),
			err:        &engine.ScriptError{Code: 4, Message: "TypeError: player.foo is not a function"},
			wantResult: nil,
		},
		{
			name:       "non script error yields nil",
			result:     float64(1),
			err:        errors.New("connection lost"),
			wantResult: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: tt.result, err: tt.err}
			d := NewDispatcher(runner, nil)

			called := 0
			var got any
			d.Send("mute()", func(result any) {
				called++
				got = result
			})

			require.Equal(t, 1, called, "callback must fire exactly once")
			assert.Equal(t, tt.wantResult, got)
			assert.Equal(t, []string{"player.mute();"}, runner.scripts)
		})
	}
}

func TestDispatcher_SendWithoutCallback(t *testing.T) {
	runner := &fakeRunner{err: &engine.ScriptError{Code: 1}}
	d := NewDispatcher(runner, nil)

	assert.NotPanics(t, func() {
		d.Send("stopVideo()", nil)
		d.SendFloat("getDuration()", nil)
	})
	assert.Len(t, runner.scripts, 2)
}

func TestDispatcher_CustomVoidPredicate(t *testing.T) {
	runner := &fakeRunner{err: &engine.ScriptError{Code: 7}}

	d := NewDispatcher(runner, VoidResultCodes(7))
	var got any = "unset"
	d.Send("playVideo()", func(result any) { got = result })
	assert.Nil(t, got)

	// Code 5 is no longer special once the predicate is replaced.
	runner.err = &engine.ScriptError{Code: engine.CodeUnsupportedResult}
	runner.result = "value"
	d.Send("playVideo()", func(result any) { got = result })
	assert.Nil(t, got)

	runner.err = &engine.ScriptError{Code: 7}
	d.Send("playVideo()", func(result any) { got = result })
	assert.Equal(t, "value", got)
}

func TestDispatcher_SendFloat(t *testing.T) {
	tests := []struct {
		name   string
		result any
		err    error
		want   *float64
	}{
		{name: "float", result: 212.5, want: ptr(212.5)},
		{name: "integer", result: 3, want: ptr(3.0)},
		{name: "json number", result: json.Number("1.25"), want: ptr(1.25)},
		{name: "string is not coerced", result: "12"},
		{name: "nil result", result: nil},
		{name: "failure", result: 1.0, err: &engine.ScriptError{Code: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(&fakeRunner{result: tt.result, err: tt.err}, nil)

			called := false
			d.SendFloat("getDuration()", func(value *float64) {
				called = true
				assert.Equal(t, tt.want, value)
			})
			assert.True(t, called)
		})
	}
}

func TestDispatcher_TypedQueries(t *testing.T) {
	d := NewDispatcher(&fakeRunner{result: float64(80)}, nil)
	d.SendInt("getVolume()", func(value *int) {
		require.NotNil(t, value)
		assert.Equal(t, 80, *value)
	})

	d = NewDispatcher(&fakeRunner{result: 1.5}, nil)
	d.SendInt("getVolume()", func(value *int) {
		assert.Nil(t, value)
	})

	d = NewDispatcher(&fakeRunner{result: true}, nil)
	d.SendBool("isMuted()", func(value *bool) {
		require.NotNil(t, value)
		assert.True(t, *value)
	})

	d = NewDispatcher(&fakeRunner{result: "https://www.youtube.com/watch?v=abc"}, nil)
	d.SendString("getVideoUrl()", func(value *string) {
		require.NotNil(t, value)
		assert.Equal(t, "https://www.youtube.com/watch?v=abc", *value)
	})

	d = NewDispatcher(&fakeRunner{result: 12.0}, nil)
	d.SendString("getVideoUrl()", func(value *string) {
		assert.Nil(t, value)
	})
}

func ptr[T any](v T) *T {
	return &v
}
