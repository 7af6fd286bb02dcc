// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the wire side of the agent socket: the
// outbound query envelope, the inbound {type, payload} event codec and a
// websocket transport.
//
// # Key Types
//
//   - Outbound: the JSON envelope written for init and for every query
//   - Inbound: a decoded event with its raw payload kept for rendering
//   - EventType: the known server event tags
//   - Conn, Dialer: the transport seam; WSDialer is the real one
//
// # Usage
//
//	conn, err := stream.WSDialer{}.Dial(ctx, url, header)
//	data, _ := stream.Encode(stream.InitEnvelope(tok, "astra", sid, uid))
//	conn.WriteMessage(stream.TextMessage, data)
//
//	ev, err := stream.Decode(frame)
//	if errors.Is(err, stream.ErrMalformed) { ... }
package stream
