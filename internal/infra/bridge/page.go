package bridge

import (
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
)

// page is a connected browser page.
type page struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (p *page) send(messageType string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s message", messageType)
		}
		raw = data
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.WriteJSON(message{Type: messageType, Payload: raw}); err != nil {
		return errors.Wrapf(err, "failed to send %s message", messageType)
	}
	return nil
}

func (p *page) close() {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = p.conn.Close()
}

type evalPayload struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

type resultPayload struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value,omitempty"`
	Error *scriptFailure  `json:"error,omitempty"`
}

type scriptFailure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type navigatePayload struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type decisionPayload struct {
	ID    string `json:"id"`
	Allow bool   `json:"allow"`
}
