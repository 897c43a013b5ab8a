package bot

import (
	"context"

	"marafon/internal/flow"
	"marafon/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// request is one inbound update as seen by an action handler. Handlers write
// collected values into data; they are persisted when the rule advances.
type request struct {
	userID   int64
	chatID   int64
	message  *tgbotapi.Message
	callback *tgbotapi.CallbackQuery
	event    flow.Event
	step     flow.Step
	rule     flow.Rule
	data     models.FlowData
	answered bool
}

type handlerFunc func(ctx context.Context, r *request) flow.Outcome

func newRequest(update tgbotapi.Update) *request {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.From == nil {
			return nil
		}
		r := &request{
			userID:   cb.From.ID,
			chatID:   cb.From.ID,
			callback: cb,
			event:    flow.Event{Input: flow.InputCallback, Data: cb.Data},
		}
		if cb.Message != nil {
			r.chatID = cb.Message.Chat.ID
		}
		return r
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return nil
		}
		return &request{
			userID:  msg.From.ID,
			chatID:  msg.Chat.ID,
			message: msg,
			event:   messageEvent(msg),
		}
	}
	return nil
}

func messageEvent(msg *tgbotapi.Message) flow.Event {
	switch {
	case msg.IsCommand():
		return flow.Event{Input: flow.InputCommand, Command: msg.Command()}
	case msg.Contact != nil:
		return flow.Event{Input: flow.InputContact}
	case len(msg.Photo) > 0:
		return flow.Event{Input: flow.InputPhoto}
	case msg.Document != nil:
		return flow.Event{Input: flow.InputDocument}
	case msg.Video != nil:
		return flow.Event{Input: flow.InputVideo}
	case msg.Text != "":
		return flow.Event{Input: flow.InputText, Data: msg.Text}
	}
	// стикеры, голосовые и прочее не совпадут ни с одним правилом
	return flow.Event{}
}

// payload returns the callback data after the matched prefix.
func (r *request) payload() string {
	return r.rule.Payload(r.event.Data)
}

// messageID is the id of the message the callback button belongs to.
func (r *request) messageID() int {
	if r.callback == nil || r.callback.Message == nil {
		return 0
	}
	return r.callback.Message.MessageID
}

// caption is the caption of the message the callback button belongs to.
func (r *request) caption() string {
	if r.callback == nil || r.callback.Message == nil {
		return ""
	}
	return r.callback.Message.Caption
}

// outbound converts admin-authored content into a deliverable message.
// Photos use the largest size.
func outbound(msg *tgbotapi.Message) models.OutboundMessage {
	out := models.OutboundMessage{Text: msg.Text}
	switch {
	case len(msg.Photo) > 0:
		out.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
		out.Text = msg.Caption
	case msg.Video != nil:
		out.VideoFileID = msg.Video.FileID
		out.Text = msg.Caption
	}
	return out
}
