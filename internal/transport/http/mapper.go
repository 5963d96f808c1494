package http

import (
	"encoding/json"

	"github.com/roomcast/roomcast-server/internal/core"
	"github.com/roomcast/roomcast-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Username == "" || join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "username and room are required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			User: join.Username,
			Room: join.Room,
		}, nil, nil
	case proto.InboundTypeChatMessage:
		var msg proto.ChatMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Text == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "text is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Text: msg.Text,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

// eventToOutbounds renders a core event as wire envelopes. Everything
// user-visible is a "message" event; history expands to one envelope
// per replayed message, in stored order.
func eventToOutbounds(event *core.Event) []proto.Outbound {
	switch event.Kind {
	case core.EventMessage, core.EventUserJoined, core.EventUserLeft:
		return []proto.Outbound{messageOutbound(event.Message)}
	case core.EventHistory:
		outbounds := make([]proto.Outbound, 0, len(event.Messages))
		for _, msg := range event.Messages {
			outbounds = append(outbounds, messageOutbound(msg))
		}
		return outbounds
	case core.EventError:
		if event.Error == nil {
			return []proto.Outbound{{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}}
		}
		return []proto.Outbound{{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}}
	default:
		return nil
	}
}

func messageOutbound(msg core.Message) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: proto.EventNameMessage,
		Data: proto.MessageData{
			Username: msg.From,
			Text:     msg.Text,
			Time:     msg.Time,
		},
	}
}
