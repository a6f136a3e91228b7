// Package player provides the embedded player domain: options, enumerations,
// events and video URL handling.
package player

// State represents the state reported by the embedded player.
// The value is the numeric code used by the IFrame API.
type State string

const (
	StateUnstarted State = "-1" // Player loaded, video not started
	StateEnded     State = "0"  // Video finished
	StatePlaying   State = "1"  // Video is playing
	StatePaused    State = "2"  // Video is paused
	StateBuffering State = "3"  // Video is buffering
	StateCued      State = "5"  // Video is cued and ready to play
)

var states = []State{StateUnstarted, StateEnded, StatePlaying, StatePaused, StateBuffering, StateCued}

// ParseState returns the State for the given code.
func ParseState(code string) (State, bool) {
	for _, s := range states {
		if string(s) == code {
			return s, true
		}
	}
	return "", false
}

// String returns the wire code of the state.
func (s State) String() string {
	return string(s)
}

// Label returns a human readable name for the state.
func (s State) Label() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateEnded:
		return "ended"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateCued:
		return "cued"
	default:
		return "unknown"
	}
}

// Quality represents the playback quality of the current video.
type Quality string

const (
	QualitySmall          Quality = "small"
	QualityMedium         Quality = "medium"
	QualityLarge          Quality = "large"
	QualityHD720          Quality = "hd720"
	QualityHD1080         Quality = "hd1080"
	QualityHighResolution Quality = "highres"
)

var qualities = []Quality{QualitySmall, QualityMedium, QualityLarge, QualityHD720, QualityHD1080, QualityHighResolution}

// ParseQuality returns the Quality for the given code.
func ParseQuality(code string) (Quality, bool) {
	for _, q := range qualities {
		if string(q) == code {
			return q, true
		}
	}
	return "", false
}

// String returns the wire code of the quality.
func (q Quality) String() string {
	return string(q)
}

// Label returns a human readable name for the quality.
func (q Quality) Label() string {
	switch q {
	case QualitySmall:
		return "small"
	case QualityMedium:
		return "medium"
	case QualityLarge:
		return "large"
	case QualityHD720:
		return "hd720"
	case QualityHD1080:
		return "hd1080"
	case QualityHighResolution:
		return "high_resolution"
	default:
		return "unknown"
	}
}

// PlayerError represents an error code reported by the embedded player.
type PlayerError string

const (
	// ErrorInvalidParameter: the request contains an invalid parameter value,
	// e.g. a video ID that does not have 11 characters.
	ErrorInvalidParameter PlayerError = "2"
	// ErrorHTML5: the content cannot be played in an HTML5 player.
	ErrorHTML5 PlayerError = "5"
	// ErrorVideoNotFound: the video was removed or marked as private.
	ErrorVideoNotFound PlayerError = "100"
	// ErrorOwnerBlocked: the owner does not allow embedded playback.
	ErrorOwnerBlocked PlayerError = "101"
	// ErrorOwnerBlockedDisguised carries the same meaning as ErrorOwnerBlocked
	// under a different code. The two are distinct values.
	ErrorOwnerBlockedDisguised PlayerError = "105"
)

var playerErrors = []PlayerError{
	ErrorInvalidParameter,
	ErrorHTML5,
	ErrorVideoNotFound,
	ErrorOwnerBlocked,
	ErrorOwnerBlockedDisguised,
}

// ParsePlayerError returns the PlayerError for the given code.
func ParsePlayerError(code string) (PlayerError, bool) {
	for _, e := range playerErrors {
		if string(e) == code {
			return e, true
		}
	}
	return "", false
}

// String returns the wire code of the error.
func (e PlayerError) String() string {
	return string(e)
}

// Label returns a human readable name for the error.
func (e PlayerError) Label() string {
	switch e {
	case ErrorInvalidParameter:
		return "invalid_parameter"
	case ErrorHTML5:
		return "html5_error"
	case ErrorVideoNotFound:
		return "video_not_found"
	case ErrorOwnerBlocked:
		return "owner_blocked"
	case ErrorOwnerBlockedDisguised:
		return "owner_blocked_disguised"
	default:
		return "unknown"
	}
}
