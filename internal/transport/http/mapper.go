package http

import (
	"encoding/json"

	"github.com/vovakirdan/classhub-server/internal/core"
	"github.com/vovakirdan/classhub-server/internal/proto"
)

// inboundToCommand maps a wire event to a coordinator command. A nil command
// with a nil protocol error means the event name is unknown and should be
// ignored. A join naming no room falls back to defaultRoom.
func inboundToCommand(inbound proto.Inbound, defaultRoom string) (*core.Command, *proto.Error, error) {
	switch inbound.Event {
	case proto.InboundJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Room == "" {
			join.Room = defaultRoom
		}
		if join.Room == "" || join.Nickname == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room and nickname are required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandJoin,
			Room:     join.Room,
			Nickname: join.Nickname,
		}, nil, nil
	case proto.InboundLeave:
		var leave proto.JoinData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:     core.CommandLeave,
			Room:     leave.Room,
			Nickname: leave.Nickname,
		}, nil, nil
	case proto.InboundSendMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandSendMessage,
			Room:     msg.Room,
			Nickname: msg.Nickname,
			Text:     msg.Text,
			Style:    msg.Style,
		}, nil, nil
	case proto.InboundReaction:
		var reaction proto.ReactionData
		if err := json.Unmarshal(inbound.Data, &reaction); err != nil {
			return nil, nil, err
		}
		if reaction.Nickname == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "nickname is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandReaction,
			Nickname: reaction.Nickname,
			Emoji:    reaction.Emoji,
		}, nil, nil
	case proto.InboundRandomTeams:
		var teams proto.RandomTeamsData
		if err := json.Unmarshal(inbound.Data, &teams); err != nil {
			return nil, nil, err
		}
		if len(teams.Members) == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "members are required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandRandomTeams,
			Members: teams.Members,
			Size:    teams.Size,
		}, nil, nil
	default:
		return nil, nil, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventStatus:
		return proto.Outbound{
			Event: proto.OutboundStatus,
			Data:  proto.StatusData{Msg: event.Status},
		}
	case core.EventNewMessage:
		return proto.Outbound{
			Event: proto.OutboundNewMsg,
			Data: proto.NewMsgData{
				Nickname: event.Message.Nickname,
				Text:     event.Message.Text,
				Style:    event.Message.Style,
				TS:       event.Message.CreatedAt.Format(proto.TimeLayout),
			},
		}
	case core.EventReaction:
		return proto.Outbound{
			Event: proto.OutboundReaction,
			Data: proto.ReactionData{
				Nickname: event.Reaction.Nickname,
				Emoji:    event.Reaction.Emoji,
			},
		}
	case core.EventTeamsResult:
		return proto.Outbound{
			Event: proto.OutboundTeamsResult,
			Data:  proto.TeamsResultData{Teams: event.Teams},
		}
	case core.EventAttendanceMarked:
		data := proto.AttendanceMarkedData{Session: event.Session}
		if event.Attendance != nil {
			data.Nickname = event.Attendance.Nickname
			data.TS = event.Attendance.MarkedAt.Format(proto.TimeLayout)
		}
		return proto.Outbound{
			Event: proto.OutboundAttendanceMarked,
			Data:  data,
		}
	case core.EventNewUpload:
		data := proto.NewUploadData{}
		if event.Upload != nil {
			data.Uploader = event.Upload.Uploader
			data.Filename = event.Upload.Filename
			data.TS = event.Upload.At.Format(proto.TimeLayout)
		}
		return proto.Outbound{
			Event: proto.OutboundNewUpload,
			Data:  data,
		}
	case core.EventPollCreated, core.EventPollUpdated:
		name := proto.OutboundPollCreated
		if event.Kind == core.EventPollUpdated {
			name = proto.OutboundPollUpdated
		}
		data := proto.PollData{}
		if event.Poll != nil {
			data.ID = event.Poll.ID
			data.Question = event.Poll.Question
			data.Options = event.Poll.Options
			data.Votes = event.Poll.Votes
		}
		return proto.Outbound{Event: name, Data: data}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Event: proto.OutboundError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Event: proto.OutboundError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Event: proto.OutboundStatus}
	}
}
