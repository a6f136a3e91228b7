package player

import "strconv"

// Event names emitted by the embedded document.
const (
	EventNameFrameReady     = "iFrameReady"
	EventNameReady          = "ready"
	EventNameStateChanged   = "stateChanged"
	EventNameQualityChanged = "playbackQualityChanged"
	EventNameRateChanged    = "playbackRateChanged"
	EventNameErrorOccurred  = "errorOccurred"
	EventNameAPIChanged     = "apiChanged"
)

// Event is a player lifecycle event. The set of implementations is closed;
// anything that cannot be mapped becomes Unknown.
type Event interface {
	// Name returns the wire name of the event.
	Name() string
	isEvent()
}

// FrameReady fires when the IFrame API has loaded and the player frame exists.
type FrameReady struct{}

// Ready fires when the player is ready to receive API calls.
type Ready struct{}

// StateChanged fires whenever the player's state changes.
type StateChanged struct {
	State State
}

// QualityChanged fires whenever the playback quality changes.
type QualityChanged struct {
	Quality Quality
}

// RateChanged fires whenever the playback rate changes.
type RateChanged struct {
	Rate int
}

// ErrorOccurred fires when the player reports an error.
type ErrorOccurred struct {
	Err PlayerError
}

// APIChanged fires when the player loads or unloads a module with exposed API methods.
type APIChanged struct {
	Data *string
}

// Unknown carries any event that could not be fully parsed.
type Unknown struct {
	EventName string
	Data      *string
}

func (FrameReady) Name() string     { return EventNameFrameReady }
func (Ready) Name() string          { return EventNameReady }
func (StateChanged) Name() string   { return EventNameStateChanged }
func (QualityChanged) Name() string { return EventNameQualityChanged }
func (RateChanged) Name() string    { return EventNameRateChanged }
func (ErrorOccurred) Name() string  { return EventNameErrorOccurred }
func (APIChanged) Name() string     { return EventNameAPIChanged }
func (u Unknown) Name() string      { return u.EventName }

func (FrameReady) isEvent()     {}
func (Ready) isEvent()          {}
func (StateChanged) isEvent()   {}
func (QualityChanged) isEvent() {}
func (RateChanged) isEvent()    {}
func (ErrorOccurred) isEvent()  {}
func (APIChanged) isEvent()     {}
func (Unknown) isEvent()        {}

// ParseEvent builds an Event from an event name and its optional data.
// A known name whose data does not decode yields Unknown, never a partial event.
func ParseEvent(name string, data *string) Event {
	unknown := Unknown{EventName: name, Data: data}

	switch name {
	case EventNameFrameReady:
		return FrameReady{}
	case EventNameReady:
		return Ready{}
	case EventNameStateChanged:
		if data == nil {
			return unknown
		}
		if state, ok := ParseState(*data); ok {
			return StateChanged{State: state}
		}
	case EventNameQualityChanged:
		if data == nil {
			return unknown
		}
		if quality, ok := ParseQuality(*data); ok {
			return QualityChanged{Quality: quality}
		}
	case EventNameRateChanged:
		if data == nil {
			return unknown
		}
		if rate, err := strconv.Atoi(*data); err == nil {
			return RateChanged{Rate: rate}
		}
	case EventNameErrorOccurred:
		if data == nil {
			return unknown
		}
		if playerErr, ok := ParsePlayerError(*data); ok {
			return ErrorOccurred{Err: playerErr}
		}
	case EventNameAPIChanged:
		return APIChanged{Data: data}
	}

	return unknown
}

// Summary is a flat, serializable description of an event.
type Summary struct {
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
}

// Summarize describes e. States, qualities and errors are reported by label.
func Summarize(e Event) Summary {
	s := Summary{Name: e.Name()}
	switch ev := e.(type) {
	case StateChanged:
		s.Value = ev.State.Label()
	case QualityChanged:
		s.Value = ev.Quality.Label()
	case RateChanged:
		s.Value = ev.Rate
	case ErrorOccurred:
		s.Value = ev.Err.Label()
	case APIChanged:
		if ev.Data != nil {
			s.Value = *ev.Data
		}
	case Unknown:
		if ev.Data != nil {
			s.Value = *ev.Data
		}
	}
	return s
}
