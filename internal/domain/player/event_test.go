package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      *string
		expected  Event
	}{
		{
			name:      "frame ready ignores data",
			eventName: "iFrameReady",
			data:      Ptr("whatever"),
			expected:  FrameReady{},
		},
		{
			name:      "ready",
			eventName: "ready",
			expected:  Ready{},
		},
		{
			name:      "state changed to playing",
			eventName: "stateChanged",
			data:      Ptr("1"),
			expected:  StateChanged{State: StatePlaying},
		},
		{
			name:      "state changed to unstarted",
			eventName: "stateChanged",
			data:      Ptr("-1"),
			expected:  StateChanged{State: StateUnstarted},
		},
		{
			name:      "state changed with unknown code",
			eventName: "stateChanged",
			data:      Ptr("99"),
			expected:  Unknown{EventName: "stateChanged", Data: Ptr("99")},
		},
		{
			name:      "state changed without data",
			eventName: "stateChanged",
			expected:  Unknown{EventName: "stateChanged"},
		},
		{
			name:      "quality changed",
			eventName: "playbackQualityChanged",
			data:      Ptr("highres"),
			expected:  QualityChanged{Quality: QualityHighResolution},
		},
		{
			name:      "quality changed with unknown quality",
			eventName: "playbackQualityChanged",
			data:      Ptr("hd2160"),
			expected:  Unknown{EventName: "playbackQualityChanged", Data: Ptr("hd2160")},
		},
		{
			name:      "rate changed",
			eventName: "playbackRateChanged",
			data:      Ptr("2"),
			expected:  RateChanged{Rate: 2},
		},
		{
			name:      "rate changed with non integer",
			eventName: "playbackRateChanged",
			data:      Ptr("1.5"),
			expected:  Unknown{EventName: "playbackRateChanged", Data: Ptr("1.5")},
		},
		{
			name:      "error occurred",
			eventName: "errorOccurred",
			data:      Ptr("100"),
			expected:  ErrorOccurred{Err: ErrorVideoNotFound},
		},
		{
			name:      "error occurred with unknown code",
			eventName: "errorOccurred",
			data:      Ptr("150"),
			expected:  Unknown{EventName: "errorOccurred", Data: Ptr("150")},
		},
		{
			name:      "api changed carries data",
			eventName: "apiChanged",
			data:      Ptr("captions"),
			expected:  APIChanged{Data: Ptr("captions")},
		},
		{
			name:      "api changed without data",
			eventName: "apiChanged",
			expected:  APIChanged{},
		},
		{
			name:      "unrecognized name",
			eventName: "onAutoplayBlocked",
			data:      Ptr("x"),
			expected:  Unknown{EventName: "onAutoplayBlocked", Data: Ptr("x")},
		},
		{
			name:      "names are case sensitive",
			eventName: "Ready",
			expected:  Unknown{EventName: "Ready"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := ParseEvent(tt.eventName, tt.data)
			assert.Equal(t, tt.expected, event)
			assert.Equal(t, tt.eventName, event.Name())
		})
	}
}

func TestParseEvent_OwnerBlockedCodesAreDistinct(t *testing.T) {
	blocked := ParseEvent("errorOccurred", Ptr("101"))
	disguised := ParseEvent("errorOccurred", Ptr("105"))

	assert.Equal(t, ErrorOccurred{Err: ErrorOwnerBlocked}, blocked)
	assert.Equal(t, ErrorOccurred{Err: ErrorOwnerBlockedDisguised}, disguised)
	assert.NotEqual(t, blocked, disguised)
}

func TestEnumerations_RoundTrip(t *testing.T) {
	for _, code := range []string{"-1", "0", "1", "2", "3", "5"} {
		state, ok := ParseState(code)
		assert.True(t, ok, "state %s", code)
		assert.Equal(t, code, state.String())
	}
	for _, code := range []string{"small", "medium", "large", "hd720", "hd1080", "highres"} {
		quality, ok := ParseQuality(code)
		assert.True(t, ok, "quality %s", code)
		assert.Equal(t, code, quality.String())
	}
	for _, code := range []string{"2", "5", "100", "101", "105"} {
		playerErr, ok := ParsePlayerError(code)
		assert.True(t, ok, "error %s", code)
		assert.Equal(t, code, playerErr.String())
	}

	_, ok := ParseState("4")
	assert.False(t, ok)
	_, ok = ParseQuality("highResolution")
	assert.False(t, ok)
	_, ok = ParsePlayerError("150")
	assert.False(t, ok)
}

func TestState_Label(t *testing.T) {
	assert.Equal(t, "cued", StateCued.Label())
	assert.Equal(t, "unknown", State("7").Label())
	assert.Equal(t, "owner_blocked_disguised", ErrorOwnerBlockedDisguised.Label())
}

func TestQuality_Label(t *testing.T) {
	tests := []struct {
		quality Quality
		want    string
	}{
		{QualitySmall, "small"},
		{QualityMedium, "medium"},
		{QualityLarge, "large"},
		{QualityHD720, "hd720"},
		{QualityHD1080, "hd1080"},
		{QualityHighResolution, "high_resolution"},
		{Quality("hd2160"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.quality.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.quality.Label())
		})
	}
}

func TestSummarize(t *testing.T) {
	data := "captions"
	tests := []struct {
		event Event
		want  Summary
	}{
		{FrameReady{}, Summary{Name: "iFrameReady"}},
		{Ready{}, Summary{Name: "ready"}},
		{StateChanged{State: StatePaused}, Summary{Name: "stateChanged", Value: "paused"}},
		{QualityChanged{Quality: QualityHighResolution}, Summary{Name: "playbackQualityChanged", Value: "high_resolution"}},
		{RateChanged{Rate: 2}, Summary{Name: "playbackRateChanged", Value: 2}},
		{ErrorOccurred{Err: ErrorOwnerBlocked}, Summary{Name: "errorOccurred", Value: "owner_blocked"}},
		{APIChanged{Data: &data}, Summary{Name: "apiChanged", Value: "captions"}},
		{APIChanged{}, Summary{Name: "apiChanged"}},
		{Unknown{EventName: "onSomething", Data: &data}, Summary{Name: "onSomething", Value: "captions"}},
	}

	for _, tt := range tests {
		t.Run(tt.want.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.event))
		})
	}
}
