package webui

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/popup"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "ask"
	Content string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type string     `json:"type"` // "response" or "error"
	Kind popup.Kind `json:"kind,omitempty"`
	HTML string     `json:"html,omitempty"`
	// Content carries protocol errors that have no rendered form.
	Content string `json:"content,omitempty"`
}

func (u *UI) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := u.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		u.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				u.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			u.send(conn, chatResponse{Type: "error", Content: "invalid message format"})
			continue
		}
		if req.Type != "ask" {
			u.send(conn, chatResponse{Type: "error", Content: "unknown message type: " + req.Type})
			continue
		}

		out := u.ctrl.Ask(r.Context(), sess, req.Content)
		resp := chatResponse{Type: "response", Kind: out.Kind, HTML: out.HTML()}
		if out.Kind.Failed() {
			resp.Type = "error"
		}
		u.send(conn, resp)
	}
}

func (u *UI) send(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		u.logger.Warn("websocket write", zap.Error(err))
	}
}
