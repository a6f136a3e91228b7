package player

import (
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// playerSize is the fixed width and height of the embedded player.
// The document template sizes the container, so the player always fills it.
const playerSize = "100%"

// ErrMissingVideoID is returned when options carry neither a video ID nor a playlist.
var ErrMissingVideoID = errors.New("video id is required unless list and listType are set")

// Bool is a flag encoded as "1" or "0", as the IFrame API expects.
type Bool string

const (
	BoolTrue  Bool = "1"
	BoolFalse Bool = "0"
)

// BoolOf converts a Go bool.
func BoolOf(b bool) Bool {
	if b {
		return BoolTrue
	}
	return BoolFalse
}

// ListType identifies what the list parameter refers to.
type ListType string

const (
	ListTypePlaylist    ListType = "playlist"
	ListTypeUserUploads ListType = "user_uploads"
)

// Parameters represents the player parameters (playerVars) of the IFrame API.
// A nil field is left out of the serialized form, so the API default applies.
// https://developers.google.com/youtube/player_parameters
type Parameters struct {
	Autoplay        *Bool     `json:"autoplay,omitempty" mapstructure:"autoplay"`
	CCLangPref      *string   `json:"cc_lang_pref,omitempty" mapstructure:"cc_lang_pref"`
	CCLoadPolicy    *Bool     `json:"cc_load_policy,omitempty" mapstructure:"cc_load_policy"`
	Color           *string   `json:"color,omitempty" mapstructure:"color"`
	Controls        *Bool     `json:"controls,omitempty" mapstructure:"controls"`
	DisableKeyboard *Bool     `json:"disablekb,omitempty" mapstructure:"disablekb"`
	End             *int      `json:"end,omitempty" mapstructure:"end"`
	Start           *int      `json:"start,omitempty" mapstructure:"start"`
	FullScreen      *Bool     `json:"fs,omitempty" mapstructure:"fs"`
	IVLoadPolicy    *string   `json:"iv_load_policy,omitempty" mapstructure:"iv_load_policy"`
	List            *string   `json:"list,omitempty" mapstructure:"list"`
	ListType        *ListType `json:"listType,omitempty" mapstructure:"listType"`
	Loop            *Bool     `json:"loop,omitempty" mapstructure:"loop"`
	ModestBranding  *Bool     `json:"modestbranding,omitempty" mapstructure:"modestbranding"`
	Origin          *string   `json:"origin,omitempty" mapstructure:"origin"`
	Playlist        *string   `json:"playlist,omitempty" mapstructure:"playlist"`
	PlaysInline     *Bool     `json:"playsinline,omitempty" mapstructure:"playsinline"`
}

// DefaultParameters returns the baseline parameter set used when the caller
// does not provide one. Each call returns a fresh value.
func DefaultParameters() Parameters {
	return Parameters{
		Autoplay:       Ptr(BoolFalse),
		ModestBranding: Ptr(BoolTrue),
		PlaysInline:    Ptr(BoolFalse),
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// DecodeParameters decodes parameters from a loosely typed settings map
// keyed by the external parameter names. Flags accept Go bools, 0/1 or "1"/"0".
func DecodeParameters(settings map[string]any) (Parameters, error) {
	var params Parameters
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       parameterHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &params,
	})
	if err != nil {
		return Parameters{}, errors.Wrap(err, "failed to create parameters decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return Parameters{}, errors.Wrap(err, "failed to decode player parameters")
	}
	return params, nil
}

var (
	boolType     = reflect.TypeOf(BoolTrue)
	listTypeType = reflect.TypeOf(ListTypePlaylist)
)

func parameterHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch to {
	case boolType:
		switch v := data.(type) {
		case Bool:
			if v == BoolTrue || v == BoolFalse {
				return v, nil
			}
		case bool:
			return BoolOf(v), nil
		case int:
			if v == 0 || v == 1 {
				return BoolOf(v == 1), nil
			}
		case float64:
			if v == 0 || v == 1 {
				return BoolOf(v == 1), nil
			}
		case string:
			switch v {
			case "1", "true":
				return BoolTrue, nil
			case "0", "false":
				return BoolFalse, nil
			}
		}
		return nil, errors.Newf("invalid flag value: %v", data)
	case listTypeType:
		var v string
		switch d := data.(type) {
		case string:
			v = d
		case ListType:
			v = string(d)
		}
		if ListType(v) == ListTypePlaylist || ListType(v) == ListTypeUserUploads {
			return ListType(v), nil
		}
		return nil, errors.Newf("invalid listType value: %v", data)
	}
	return data, nil
}

// Options represents the configuration handed to the IFrame API player constructor.
type Options struct {
	// VideoID identifies the video to load. It may be nil when PlayerVars
	// specify a list and listType.
	VideoID *string
	// PlayerVars customize the player.
	PlayerVars Parameters
}

// NewOptions creates options for a single video.
func NewOptions(videoID string, vars Parameters) Options {
	return Options{VideoID: &videoID, PlayerVars: vars}
}

// NewPlaylistOptions creates options that load a list without a video ID.
func NewPlaylistOptions(list string, listType ListType, vars Parameters) Options {
	vars.List = &list
	vars.ListType = &listType
	return Options{PlayerVars: vars}
}

// Validate checks that the options identify something to play.
// The video ID format itself is left to the embedded player.
func (o Options) Validate() error {
	if o.VideoID != nil {
		return nil
	}
	if o.PlayerVars.List != nil && o.PlayerVars.ListType != nil {
		return nil
	}
	return ErrMissingVideoID
}

// MarshalJSON encodes the options with the fixed player size.
func (o Options) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		VideoID    *string    `json:"videoId,omitempty"`
		Width      string     `json:"width"`
		Height     string     `json:"height"`
		PlayerVars Parameters `json:"playerVars"`
	}{
		VideoID:    o.VideoID,
		Width:      playerSize,
		Height:     playerSize,
		PlayerVars: o.PlayerVars,
	})
}
