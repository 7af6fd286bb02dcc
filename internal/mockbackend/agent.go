// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockbackend

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/jeranaias/astra-tui/internal/stream"
)

// =============================================================================
// FAKE AGENT SOCKET
// =============================================================================

// agentEvent is the frame layout the agent writes.
type agentEvent struct {
	AgentName string           `json:"agent_name"`
	SessionID string           `json:"session_id"`
	Type      stream.EventType `json:"type"`
	Payload   any              `json:"payload"`
	Timestamp string           `json:"timestamp"`
}

// agentConn serves one socket. Only the handler goroutine writes to it.
type agentConn struct {
	s      *Server
	conn   *websocket.Conn
	userID int
	token  string
}

func (s *Server) agentSocket(c *websocket.Conn) {
	a := &agentConn{s: s, conn: c}
	a.userID, _ = c.Locals(localUserID).(int)
	a.token, _ = c.Locals(localToken).(string)
	log := s.log.With("user_id", a.userID)
	log.Info("agent socket opened")
	defer log.Info("agent socket closed")

	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			a.fail(stream.Outbound{}, "unsupported data")
			continue
		}
		req, err := stream.DecodeOutbound(data)
		if err != nil {
			a.fail(stream.Outbound{}, "invalid json")
			continue
		}
		if req.UserID != a.userID {
			a.fail(req, "invalid user_id")
			continue
		}
		if req.SessionID == "" {
			req.SessionID = s.store.newSessionID(a.userID)
		}

		if req.IsInit() {
			if req.Token != a.token {
				a.fail(req, "invalid token")
				return
			}
			a.emit(req, stream.EventSessionCreated, map[string]string{"session_id": req.SessionID})
			continue
		}
		if err := a.answer(req); err != nil {
			log.Warn("agent reply aborted", "session_id", req.SessionID, "error", err)
			return
		}
	}
}

// answer streams one reply and records the exchange.
func (a *agentConn) answer(req stream.Outbound) error {
	store := a.s.store
	if err := store.Append(req.SessionID, a.userID, roleUserQuery, req.Query); err != nil {
		a.fail(req, err.Error())
		return nil
	}

	if err := a.emit(req, stream.EventIntermediate, map[string]string{"message": "Plan created successfully"}); err != nil {
		return err
	}
	plan := map[string]any{"goal": req.Query, "steps": []string{"reply"}}
	_ = store.Append(req.SessionID, a.userID, roleFullPlan, plan)

	reply := a.s.opts.Reply(req.Query)
	for i, chunk := range splitRunes(reply, a.s.opts.ChunkSize) {
		if i > 0 && a.s.opts.ChunkDelay > 0 {
			time.Sleep(a.s.opts.ChunkDelay)
		}
		if err := a.emit(req, stream.EventResponseChunk, map[string]string{"chunk": chunk}); err != nil {
			return err
		}
	}
	_ = store.Append(req.SessionID, a.userID, roleResponse, reply)

	return a.emit(req, stream.EventCompleted, map[string]any{
		"message": "Process completed successfully",
		"steps":   1,
	})
}

func (a *agentConn) fail(req stream.Outbound, message string) {
	_ = a.emit(req, stream.EventError, map[string]string{"message": message})
}

func (a *agentConn) emit(req stream.Outbound, t stream.EventType, payload any) error {
	name := req.AgentName
	if name == "" {
		name = DefaultAgentName
	}
	data, err := json.Marshal(agentEvent{
		AgentName: name,
		SessionID: req.SessionID,
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return a.conn.WriteMessage(websocket.TextMessage, data)
}

// splitRunes cuts s into pieces of at most n runes.
func splitRunes(s string, n int) []string {
	r := []rune(s)
	if len(r) == 0 {
		return []string{""}
	}
	var out []string
	for len(r) > n {
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	return append(out, string(r))
}
