// Package rest provides the HTTP control API of the player.
package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytplayer/internal/app/playerview"
	"github.com/osa030/ytplayer/internal/domain/player"
	"github.com/osa030/ytplayer/internal/infra/oembed"
)

// DefaultQueryTimeout bounds how long a query waits for the player to answer.
const DefaultQueryTimeout = 5 * time.Second

// Player is the player controller surface used by the API.
type Player interface {
	LoadVideoByID(videoID string, vars player.Parameters) error
	LoadVideoByURL(videoURL *url.URL, vars player.Parameters) error
	LoadPlaylist(playlistID string) error
	Status() playerview.Status
	Subscribe() (<-chan player.Event, func())

	Play()
	Pause()
	Stop()
	Clear()
	Mute()
	UnMute()
	NextVideo()
	PreviousVideo()
	PlayVideoAt(index int)
	SeekTo(seconds float32, seekAhead bool)
	SetVolume(volume int)
	SetPlaybackRate(rate float64)
	SetLoop(loop bool)
	SetShuffle(shuffle bool)

	Duration(completion func(seconds *float64))
	CurrentTime(completion func(seconds *float64))
	Volume(completion func(volume *int))
	IsMuted(completion func(muted *bool))
	PlaybackRate(completion func(rate *float64))
	VideoURL(completion func(videoURL *string))
}

// VideoInfo looks up video metadata.
type VideoInfo interface {
	Lookup(ctx context.Context, videoID string) (*oembed.VideoData, error)
}

// Config holds API configuration.
type Config struct {
	QueryTimeout time.Duration
}

// Handler serves the control API.
type Handler struct {
	player       Player
	info         VideoInfo
	validate     *requestValidator
	queryTimeout time.Duration
}

// NewHandler creates a new handler. info may be nil, which disables
// the video info endpoint.
func NewHandler(p Player, info VideoInfo, cfg Config) *Handler {
	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Handler{
		player:       p,
		info:         info,
		validate:     newRequestValidator(),
		queryTimeout: timeout,
	}
}

// Mount registers the API routes under /api on r.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(requestLogger)
		r.Use(middleware.Recoverer)

		r.Post("/load", h.load)
		r.Post("/play", h.command(h.player.Play))
		r.Post("/pause", h.command(h.player.Pause))
		r.Post("/stop", h.command(h.player.Stop))
		r.Post("/clear", h.command(h.player.Clear))
		r.Post("/mute", h.command(h.player.Mute))
		r.Post("/unmute", h.command(h.player.UnMute))
		r.Post("/next", h.command(h.player.NextVideo))
		r.Post("/previous", h.command(h.player.PreviousVideo))
		r.Post("/seek", h.seek)
		r.Post("/play-at", h.playAt)
		r.Post("/volume", h.setVolume)
		r.Post("/rate", h.setRate)
		r.Post("/loop", h.toggle(h.player.SetLoop))
		r.Post("/shuffle", h.toggle(h.player.SetShuffle))

		r.Get("/status", h.status)
		r.Get("/duration", queryHandler(h, h.player.Duration))
		r.Get("/current-time", queryHandler(h, h.player.CurrentTime))
		r.Get("/volume", queryHandler(h, h.player.Volume))
		r.Get("/muted", queryHandler(h, h.player.IsMuted))
		r.Get("/rate", queryHandler(h, h.player.PlaybackRate))
		r.Get("/video-url", queryHandler(h, h.player.VideoURL))
		r.Get("/video/info", h.videoInfo)
		r.Get("/events", h.events)
	})
}

// Routes returns a router serving only the API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zlog.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Msg("rest: request")
		next.ServeHTTP(w, r)
	})
}

type loadRequest struct {
	VideoID    string         `json:"video_id" validate:"excluded_with=URL PlaylistID"`
	URL        string         `json:"url" validate:"omitempty,url,excluded_with=PlaylistID"`
	PlaylistID string         `json:"playlist_id" validate:"required_without_all=VideoID URL"`
	Parameters map[string]any `json:"parameters"`
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if !h.decode(w, r, &req) {
		return
	}

	vars := player.DefaultParameters()
	if req.Parameters != nil {
		decoded, err := player.DecodeParameters(req.Parameters)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		vars = decoded
	}

	var err error
	switch {
	case req.VideoID != "":
		err = h.player.LoadVideoByID(req.VideoID, vars)
	case req.URL != "":
		var u *url.URL
		u, err = url.Parse(req.URL)
		if err == nil {
			err = h.player.LoadVideoByURL(u, vars)
		}
	default:
		err = h.player.LoadPlaylist(req.PlaylistID)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, player.ErrNoVideoID) || errors.Is(err, player.ErrMissingVideoID) {
			status = http.StatusBadRequest
		}
		zlog.Warn().Msgf("rest: load failed: %v", err)
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"data": h.player.Status()})
}

// command returns a handler issuing a command that takes no arguments.
func (h *Handler) command(run func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run()
		w.WriteHeader(http.StatusAccepted)
	}
}

type seekRequest struct {
	Seconds   *float32 `json:"seconds" validate:"required,gte=0"`
	SeekAhead bool     `json:"seek_ahead"`
}

func (h *Handler) seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.player.SeekTo(*req.Seconds, req.SeekAhead)
	w.WriteHeader(http.StatusAccepted)
}

type playAtRequest struct {
	Index *int `json:"index" validate:"required,gte=0"`
}

func (h *Handler) playAt(w http.ResponseWriter, r *http.Request) {
	var req playAtRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.player.PlayVideoAt(*req.Index)
	w.WriteHeader(http.StatusAccepted)
}

type volumeRequest struct {
	Volume *int `json:"volume" validate:"required,gte=0,lte=100"`
}

func (h *Handler) setVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.player.SetVolume(*req.Volume)
	w.WriteHeader(http.StatusAccepted)
}

type rateRequest struct {
	Rate float64 `json:"rate" validate:"gt=0,lte=16"`
}

func (h *Handler) setRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.player.SetPlaybackRate(req.Rate)
	w.WriteHeader(http.StatusAccepted)
}

type toggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *Handler) toggle(set func(bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		if !h.decode(w, r, &req) {
			return
		}
		set(*req.Enabled)
		w.WriteHeader(http.StatusAccepted)
	}
}

// decode reads and validates the body into req, writing the error response
// and returning false when it is rejected.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := readJSON(r, req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return false
	}
	if verrs := h.validate.check(req); verrs != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": verrs})
		return false
	}
	return true
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"data": h.player.Status()})
}

// queryHandler returns a handler that waits for query to answer and
// reports the value, which is null when the player could not answer.
func queryHandler[T any](h *Handler, query func(completion func(*T))) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
		defer cancel()

		value, err := await(ctx, query)
		if err != nil {
			writeError(w, http.StatusGatewayTimeout, errors.Wrap(err, "player did not answer"))
			return
		}
		writeJSON(w, http.StatusOK, envelope{"data": envelope{"value": value}})
	}
}

// await runs query and waits for its completion or for ctx to end.
func await[T any](ctx context.Context, query func(completion func(*T))) (*T, error) {
	ch := make(chan *T, 1)
	query(func(v *T) {
		select {
		case ch <- v:
		default:
		}
	})

	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Handler) videoInfo(w http.ResponseWriter, r *http.Request) {
	if h.info == nil {
		writeError(w, http.StatusNotImplemented, errors.New("video info lookup is disabled"))
		return
	}

	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": []ValidationError{{
			Field: "url", Code: "REQUIRED", Message: "url is required",
		}}})
		return
	}

	videoID, err := player.VideoIDFromString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data, err := h.info.Lookup(r.Context(), videoID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, envelope{"data": data})
	case errors.Is(err, oembed.ErrVideoNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		zlog.Warn().Msgf("rest: video info lookup failed: video_id=%s err=%v", videoID, err)
		writeError(w, http.StatusBadGateway, errors.Newf("lookup failed for %s", videoID))
	}
}
