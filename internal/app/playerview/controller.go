// Package playerview drives an embedded YouTube player hosted by a rendering engine.
package playerview

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytplayer/internal/app/command"
	"github.com/osa030/ytplayer/internal/domain/engine"
	"github.com/osa030/ytplayer/internal/domain/player"
	"github.com/osa030/ytplayer/internal/infra/assets"
)

// EventScheme is the URL scheme the embedded document uses to report events.
const EventScheme = "ytplayer"

// DefaultBaseURL is the base URL documents are loaded with unless configured.
const DefaultBaseURL = "about:blank"

// subscriberBuffer is the channel size of each event subscriber.
const subscriberBuffer = 16

// Lifecycle represents the document lifecycle of the controller.
type Lifecycle int

const (
	LifecycleUnloaded Lifecycle = iota // No document submitted yet
	LifecycleLoading                   // Document is being handed to the engine
	LifecycleLoaded                    // Engine accepted the document, player not ready
	LifecycleReady                     // Player frame reported ready
)

// String returns the string representation of the lifecycle.
func (l Lifecycle) String() string {
	switch l {
	case LifecycleUnloaded:
		return "unloaded"
	case LifecycleLoading:
		return "loading"
	case LifecycleLoaded:
		return "loaded"
	case LifecycleReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Delegate receives every event parsed from the embedded document,
// including Unknown ones.
type Delegate interface {
	OnEvent(c *Controller, event player.Event)
}

// DelegateFunc adapts a function to Delegate.
type DelegateFunc func(c *Controller, event player.Event)

// OnEvent calls f.
func (f DelegateFunc) OnEvent(c *Controller, event player.Event) {
	f(c, event)
}

// TemplateLoader provides the document template containing assets.Placeholder.
type TemplateLoader interface {
	Load() (string, error)
}

// Config holds controller configuration.
type Config struct {
	BaseURL      string                 // Base URL of loaded documents
	IsVoidResult command.VoidResultFunc // Script errors that only mean "no return value"
}

// Status is a snapshot of the controller state.
type Status struct {
	Lifecycle string `json:"lifecycle"`
	Ready     bool   `json:"ready"`
	State     string `json:"state"`
	Quality   string `json:"quality"`
}

// Controller loads the player document into an engine, tracks the player
// state reported back through navigation events, and issues player commands.
//
// The controller only holds the delegate it was given; it never extends the
// delegate's lifetime beyond what the caller arranges, and SetDelegate(nil)
// detaches it.
type Controller struct {
	engine     engine.Engine
	template   TemplateLoader
	dispatcher *command.Dispatcher
	baseURL    string

	mu        sync.RWMutex
	lifecycle Lifecycle
	ready     bool
	state     player.State
	quality   player.Quality
	delegate  Delegate

	subMu       sync.Mutex
	subscribers map[string]chan player.Event
}

// NewController creates a controller and registers it as the engine's
// navigation handler.
func NewController(eng engine.Engine, template TemplateLoader, cfg Config) *Controller {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Controller{
		engine:      eng,
		template:    template,
		dispatcher:  command.NewDispatcher(eng, cfg.IsVoidResult),
		baseURL:     baseURL,
		lifecycle:   LifecycleUnloaded,
		state:       player.StateUnstarted,
		quality:     player.QualitySmall,
		subscribers: make(map[string]chan player.Event),
	}
	eng.SetNavigationHandler(c.HandleNavigation)
	return c
}

// SetDelegate registers the delegate. Pass nil to detach.
func (c *Controller) SetDelegate(d Delegate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delegate = d
}

// Ready reports whether the player frame is ready.
func (c *Controller) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// State returns the last reported player state.
func (c *Controller) State() player.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Quality returns the last reported playback quality.
func (c *Controller) Quality() player.Quality {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quality
}

// Lifecycle returns the document lifecycle.
func (c *Controller) Lifecycle() Lifecycle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lifecycleLocked()
}

func (c *Controller) lifecycleLocked() Lifecycle {
	if c.lifecycle == LifecycleLoaded && c.ready {
		return LifecycleReady
	}
	return c.lifecycle
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Lifecycle: c.lifecycleLocked().String(),
		Ready:     c.ready,
		State:     c.state.Label(),
		Quality:   c.quality.Label(),
	}
}

// Load builds the player document from opts and hands it to the engine.
// A missing template fails the load without changing any state.
func (c *Controller) Load(opts player.Options) error {
	tmpl, err := c.template.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load player template")
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	doc, err := BuildDocument(tmpl, opts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.resetLocked()
	c.lifecycle = LifecycleLoading
	c.mu.Unlock()

	zlog.Debug().Msgf("playerview: loading document: base_url=%s", c.baseURL)
	if err := c.engine.LoadDocument(doc, c.baseURL); err != nil {
		c.mu.Lock()
		c.lifecycle = LifecycleUnloaded
		c.mu.Unlock()
		return errors.Wrap(err, "engine failed to load player document")
	}

	c.mu.Lock()
	if c.lifecycle == LifecycleLoading {
		c.lifecycle = LifecycleLoaded
	}
	c.mu.Unlock()
	return nil
}

// resetLocked restores the per-document state.
// Must be called with lock held.
func (c *Controller) resetLocked() {
	c.ready = false
	c.state = player.StateUnstarted
	c.quality = player.QualitySmall
}

// LoadVideoByID loads a single video.
func (c *Controller) LoadVideoByID(videoID string, vars player.Parameters) error {
	return c.Load(player.NewOptions(videoID, vars))
}

// LoadVideoByURL extracts the video ID from videoURL and loads it.
// Nothing is loaded when no ID can be extracted.
func (c *Controller) LoadVideoByURL(videoURL *url.URL, vars player.Parameters) error {
	videoID, ok := player.VideoID(videoURL)
	if !ok {
		return errors.Wrapf(player.ErrNoVideoID, "url %s", videoURL)
	}
	return c.LoadVideoByID(videoID, vars)
}

// LoadPlaylist loads a playlist with the default parameters. No video ID is sent.
func (c *Controller) LoadPlaylist(playlistID string) error {
	return c.Load(player.NewPlaylistOptions(playlistID, player.ListTypePlaylist, player.DefaultParameters()))
}

// BuildDocument substitutes the serialized options into the template placeholder.
func BuildDocument(tmpl string, opts player.Options) (string, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize player options")
	}
	return strings.ReplaceAll(tmpl, assets.Placeholder, string(data)), nil
}

// HandleNavigation routes ytplayer:// navigations to the event model and
// cancels them. Every other navigation is allowed unchanged.
func (c *Controller) HandleNavigation(target *url.URL, decide func(engine.NavigationPolicy)) {
	policy := engine.NavigationAllow
	defer func() { decide(policy) }()

	if target == nil || target.Scheme != EventScheme {
		return
	}
	policy = engine.NavigationCancel

	if target.Host == "" {
		zlog.Warn().Msgf("playerview: dropping event without name: url=%s", target)
		return
	}

	var data *string
	if v, ok := player.QueryValues(target.RawQuery)["data"]; ok {
		data = &v
	}
	c.handleEvent(player.ParseEvent(target.Host, data))
}

func (c *Controller) handleEvent(event player.Event) {
	c.mu.Lock()
	switch e := event.(type) {
	case player.FrameReady:
		c.ready = true
	case player.StateChanged:
		c.state = e.State
	case player.QualityChanged:
		c.quality = e.Quality
	case player.Unknown:
		zlog.Debug().Msgf("playerview: unknown event: name=%s", e.EventName)
	}
	delegate := c.delegate
	c.mu.Unlock()

	zlog.Debug().Msgf("playerview: event: name=%s", event.Name())

	if delegate != nil {
		delegate.OnEvent(c, event)
	}
	c.publish(event)
}

// Subscribe returns a channel receiving every event and a function that
// ends the subscription. Events are dropped while the channel is full.
func (c *Controller) Subscribe() (<-chan player.Event, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := uuid.NewString()
	ch := make(chan player.Event, subscriberBuffer)
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			delete(c.subscribers, id)
			close(ch)
		})
	}
}

func (c *Controller) publish(event player.Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for id, ch := range c.subscribers {
		select {
		case ch <- event:
		default:
			zlog.Warn().Msgf("playerview: subscriber full, dropping event: subscriber=%s event=%s", id, event.Name())
		}
	}
}

// Mute mutes the player.
func (c *Controller) Mute() {
	c.dispatcher.Send("mute()", nil)
}

// UnMute unmutes the player.
func (c *Controller) UnMute() {
	c.dispatcher.Send("unMute()", nil)
}

// Play plays the loaded video.
func (c *Controller) Play() {
	c.dispatcher.Send("playVideo()", nil)
}

// Pause pauses the loaded video.
func (c *Controller) Pause() {
	c.dispatcher.Send("pauseVideo()", nil)
}

// Stop stops and cancels loading of the current video.
func (c *Controller) Stop() {
	c.dispatcher.Send("stopVideo()", nil)
}

// Clear clears the video display.
func (c *Controller) Clear() {
	c.dispatcher.Send("clearVideo()", nil)
}

// SeekTo seeks to seconds. seekAhead allows requests to the server for
// unbuffered positions.
func (c *Controller) SeekTo(seconds float32, seekAhead bool) {
	c.dispatcher.Send(SeekCommand(seconds, seekAhead), nil)
}

// SeekCommand returns the seekTo command fragment.
func SeekCommand(seconds float32, seekAhead bool) string {
	return fmt.Sprintf("seekTo(%s, %t)", strconv.FormatFloat(float64(seconds), 'f', -1, 32), seekAhead)
}

// Duration reports the duration of the current video in seconds, or nil.
func (c *Controller) Duration(completion func(seconds *float64)) {
	c.dispatcher.SendFloat("getDuration()", completion)
}

// CurrentTime reports the elapsed time of the current video in seconds, or nil.
func (c *Controller) CurrentTime(completion func(seconds *float64)) {
	c.dispatcher.SendFloat("getCurrentTime()", completion)
}

// PreviousVideo plays the previous video of the playlist.
func (c *Controller) PreviousVideo() {
	c.dispatcher.Send("previousVideo()", nil)
}

// NextVideo plays the next video of the playlist.
func (c *Controller) NextVideo() {
	c.dispatcher.Send("nextVideo()", nil)
}

// PlayVideoAt plays the video at index of the playlist.
func (c *Controller) PlayVideoAt(index int) {
	c.dispatcher.Send(fmt.Sprintf("playVideoAt(%d)", index), nil)
}

// SetVolume sets the volume, 0 to 100.
func (c *Controller) SetVolume(volume int) {
	c.dispatcher.Send(fmt.Sprintf("setVolume(%d)", volume), nil)
}

// Volume reports the volume, or nil.
func (c *Controller) Volume(completion func(volume *int)) {
	c.dispatcher.SendInt("getVolume()", completion)
}

// IsMuted reports whether the player is muted, or nil.
func (c *Controller) IsMuted(completion func(muted *bool)) {
	c.dispatcher.SendBool("isMuted()", completion)
}

// SetPlaybackRate suggests a playback rate. The rate actually applied is
// reported by a RateChanged event.
func (c *Controller) SetPlaybackRate(rate float64) {
	c.dispatcher.Send(fmt.Sprintf("setPlaybackRate(%s)", strconv.FormatFloat(rate, 'f', -1, 64)), nil)
}

// PlaybackRate reports the playback rate, or nil.
func (c *Controller) PlaybackRate(completion func(rate *float64)) {
	c.dispatcher.SendFloat("getPlaybackRate()", completion)
}

// SetLoop sets whether the playlist loops.
func (c *Controller) SetLoop(loop bool) {
	c.dispatcher.Send(fmt.Sprintf("setLoop(%t)", loop), nil)
}

// SetShuffle sets whether the playlist is shuffled.
func (c *Controller) SetShuffle(shuffle bool) {
	c.dispatcher.Send(fmt.Sprintf("setShuffle(%t)", shuffle), nil)
}

// VideoURL reports the YouTube URL of the current video, or nil.
func (c *Controller) VideoURL(completion func(videoURL *string)) {
	c.dispatcher.SendString("getVideoUrl()", completion)
}
