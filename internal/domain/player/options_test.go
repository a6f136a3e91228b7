package player

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameters_MarshalOnlySetFields(t *testing.T) {
	params := Parameters{Autoplay: Ptr(BoolTrue)}

	data, err := json.Marshal(params)
	require.NoError(t, err)
	assert.Equal(t, `{"autoplay":"1"}`, string(data))
}

func TestParameters_EmptyMarshalsToEmptyObject(t *testing.T) {
	data, err := json.Marshal(Parameters{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestParameters_ExternalKeyNames(t *testing.T) {
	params := Parameters{
		Autoplay:        Ptr(BoolTrue),
		CCLangPref:      Ptr("ja"),
		CCLoadPolicy:    Ptr(BoolTrue),
		Color:           Ptr("white"),
		Controls:        Ptr(BoolFalse),
		DisableKeyboard: Ptr(BoolTrue),
		End:             Ptr(120),
		Start:           Ptr(0),
		FullScreen:      Ptr(BoolFalse),
		IVLoadPolicy:    Ptr("3"),
		List:            Ptr("PLC77007E23FF423C6"),
		ListType:        Ptr(ListTypeUserUploads),
		Loop:            Ptr(BoolTrue),
		ModestBranding:  Ptr(BoolTrue),
		Origin:          Ptr("https://example.com"),
		Playlist:        Ptr("a,b,c"),
		PlaysInline:     Ptr(BoolTrue),
	}

	data, err := json.Marshal(params)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	expected := map[string]any{
		"autoplay":       "1",
		"cc_lang_pref":   "ja",
		"cc_load_policy": "1",
		"color":          "white",
		"controls":       "0",
		"disablekb":      "1",
		"end":            float64(120),
		"start":          float64(0),
		"fs":             "0",
		"iv_load_policy": "3",
		"list":           "PLC77007E23FF423C6",
		"listType":       "user_uploads",
		"loop":           "1",
		"modestbranding": "1",
		"origin":         "https://example.com",
		"playlist":       "a,b,c",
		"playsinline":    "1",
	}
	assert.Equal(t, expected, decoded)
}

func TestOptions_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		options  Options
		expected string
	}{
		{
			name:     "video with default parameters",
			options:  NewOptions("JLVXQn3fqgg", DefaultParameters()),
			expected: `{"videoId":"JLVXQn3fqgg","width":"100%","height":"100%","playerVars":{"autoplay":"0","modestbranding":"1","playsinline":"0"}}`,
		},
		{
			name:     "playlist omits video id",
			options:  NewPlaylistOptions("RDe-ORhEE9VVg", ListTypePlaylist, Parameters{}),
			expected: `{"width":"100%","height":"100%","playerVars":{"list":"RDe-ORhEE9VVg","listType":"playlist"}}`,
		},
		{
			name:     "zero value options",
			options:  Options{},
			expected: `{"width":"100%","height":"100%","playerVars":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.options)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, NewOptions("abc", Parameters{}).Validate())
	assert.NoError(t, NewPlaylistOptions("PL1", ListTypePlaylist, Parameters{}).Validate())
	assert.ErrorIs(t, Options{}.Validate(), ErrMissingVideoID)
	assert.ErrorIs(t, Options{PlayerVars: Parameters{List: Ptr("PL1")}}.Validate(), ErrMissingVideoID)
}

func TestDefaultParameters_ReturnsFreshValue(t *testing.T) {
	first := DefaultParameters()
	*first.Autoplay = BoolTrue

	second := DefaultParameters()
	assert.Equal(t, BoolFalse, *second.Autoplay)
}

func TestDecodeParameters(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		expected Parameters
		wantErr  bool
	}{
		{
			name:     "go bools",
			settings: map[string]any{"autoplay": true, "playsinline": false},
			expected: Parameters{Autoplay: Ptr(BoolTrue), PlaysInline: Ptr(BoolFalse)},
		},
		{
			name:     "string and int flags",
			settings: map[string]any{"controls": "0", "fs": 1},
			expected: Parameters{Controls: Ptr(BoolFalse), FullScreen: Ptr(BoolTrue)},
		},
		{
			name:     "ints strings and list type",
			settings: map[string]any{"start": 10, "iv_load_policy": 3, "list": "PL1", "listType": "playlist"},
			expected: Parameters{
				Start:        Ptr(10),
				IVLoadPolicy: Ptr("3"),
				List:         Ptr("PL1"),
				ListType:     Ptr(ListTypePlaylist),
			},
		},
		{
			name:     "json numbers",
			settings: map[string]any{"loop": float64(1), "disablekb": float64(0), "end": float64(90)},
			expected: Parameters{Loop: Ptr(BoolTrue), DisableKeyboard: Ptr(BoolFalse), End: Ptr(90)},
		},
		{
			name:     "invalid flag",
			settings: map[string]any{"autoplay": "yes"},
			wantErr:  true,
		},
		{
			name:     "fractional flag",
			settings: map[string]any{"loop": 0.5},
			wantErr:  true,
		},
		{
			name:     "invalid list type",
			settings: map[string]any{"listType": "search"},
			wantErr:  true,
		},
		{
			name:     "unknown key",
			settings: map[string]any{"auto_play": true},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := DecodeParameters(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, params)
		})
	}
}
