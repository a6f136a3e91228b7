package bridge

import (
	"context"
	"encoding/json"

	zlog "github.com/rs/zerolog/log"
)

// Message types exchanged with the page.
const (
	typeEval     = "eval"     // server -> page
	typeReload   = "reload"   // server -> page
	typeDecision = "decision" // server -> page
	typeResult   = "result"   // page -> server
	typeNavigate = "navigate" // page -> server
)

type ctxKey string

const messageTypeKey ctxKey = "message_type"

// messageType returns the type of the message being handled.
func messageType(ctx context.Context) string {
	v, _ := ctx.Value(messageTypeKey).(string)
	return v
}

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type handlerFunc func(ctx context.Context, p *page, payload json.RawMessage)

// router dispatches page messages by type.
type router struct {
	routes map[string]handlerFunc
}

func newRouter() *router {
	return &router{routes: make(map[string]handlerFunc)}
}

func (r *router) handle(messageType string, handler handlerFunc) {
	r.routes[messageType] = handler
}

// serve reads messages from the page until the connection fails.
func (r *router) serve(ctx context.Context, p *page) error {
	for {
		var msg message
		if err := p.conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, ok := r.routes[msg.Type]
		if !ok {
			zlog.Warn().Msgf("bridge: unknown message type: page=%s type=%s", p.id, msg.Type)
			continue
		}
		handler(context.WithValue(ctx, messageTypeKey, msg.Type), p, msg.Payload)
	}
}
