package bot

import (
	"context"

	"marafon/internal/flow"
	"marafon/internal/models"
	"marafon/internal/validation"

	"github.com/rs/zerolog"
)

func (b *Bot) handleStart(ctx context.Context, r *request) flow.Outcome {
	b.clearState(ctx, r.userID)
	b.enterFunnel(ctx, r)
	return flow.Done
}

func (b *Bot) handleRestart(ctx context.Context, r *request) flow.Outcome {
	b.clearState(ctx, r.userID)
	b.answer(ctx, r, "")
	b.deletePrompt(ctx, r)
	b.enterFunnel(ctx, r)
	return flow.Done
}

func (b *Bot) handleCheckSubscription(ctx context.Context, r *request) flow.Outcome {
	if !b.isSubscribed(ctx, r.userID) {
		b.alert(ctx, r, msgNotSubscribed)
		return flow.Rejected
	}
	b.answer(ctx, r, "")
	b.deletePrompt(ctx, r)
	b.continueFunnel(ctx, r)
	return flow.Done
}

// enterFunnel проверяет подписку на обязательный канал и ведёт пользователя
// дальше по сценарию.
func (b *Bot) enterFunnel(ctx context.Context, r *request) {
	if !b.isSubscribed(ctx, r.userID) {
		b.sendInline(ctx, r.chatID, msgSubscriptionRequired, subscriptionKeyboard(b.config.Funnel.MandatoryChannel))
		b.saveState(ctx, r.userID, flow.StepAwaitingSubscription, models.FlowData{})
		return
	}
	b.continueFunnel(ctx, r)
}

// continueFunnel sends registered users to the course list and everyone else
// to phone collection.
func (b *Bot) continueFunnel(ctx context.Context, r *request) {
	user, err := b.userService.GetUser(ctx, r.userID)
	if err != nil {
		b.send(ctx, r.chatID, msgSomethingWrong)
		return
	}

	if user != nil {
		b.sendInline(ctx, r.chatID, msgRegistrationComplete, coursesKeyboard(b.courses))
		b.saveState(ctx, r.userID, flow.StepCourseSelection, models.FlowData{})
		return
	}

	if _, err := b.tgService.SendWithKeyboard(r.chatID, msgWelcome, phoneKeyboard()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to send welcome")
	}
	b.saveState(ctx, r.userID, flow.StepAwaitingPhone, models.FlowData{})
}

func (b *Bot) isSubscribed(ctx context.Context, userID int64) bool {
	ok, err := b.tgService.IsChannelMember(b.config.Funnel.MandatoryChannel, userID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("channel", b.config.Funnel.MandatoryChannel).Msg("Membership check failed")
		return false
	}
	return ok
}

func (b *Bot) handlePhone(ctx context.Context, r *request) flow.Outcome {
	raw := r.message.Text
	if c := r.message.Contact; c != nil {
		if c.UserID != 0 && c.UserID != r.userID {
			b.send(ctx, r.chatID, msgForeignPhone)
			return flow.Rejected
		}
		raw = c.PhoneNumber
	}

	phone, ok := validation.ValidatePhone(raw)
	if !ok {
		b.send(ctx, r.chatID, msgInvalidPhone)
		return flow.Rejected
	}

	r.data.Phone = phone
	if _, err := b.tgService.SendRemoveKeyboard(r.chatID, msgRequestName); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to request name")
	}
	return flow.Done
}

func (b *Bot) handleName(ctx context.Context, r *request) flow.Outcome {
	name, ok := validation.ValidateName(r.message.Text)
	if !ok {
		b.send(ctx, r.chatID, msgInvalidName)
		return flow.Rejected
	}
	r.data.FullName = name
	b.send(ctx, r.chatID, msgRequestAge)
	return flow.Done
}

func (b *Bot) handleAge(ctx context.Context, r *request) flow.Outcome {
	age, ok := validation.ValidateAge(r.message.Text)
	if !ok {
		b.send(ctx, r.chatID, msgInvalidAge)
		return flow.Rejected
	}
	r.data.Age = age
	b.sendInline(ctx, r.chatID, msgRequestRegion, regionsKeyboard())
	return flow.Done
}

func (b *Bot) handleRegion(ctx context.Context, r *request) flow.Outcome {
	region := r.payload()
	if !validation.ValidRegion(region) {
		b.alert(ctx, r, msgInvalidRegion)
		return flow.Rejected
	}
	r.data.Region = region
	b.answer(ctx, r, "")
	b.edit(ctx, r, msgRequestHeight, nil)
	return flow.Done
}

func (b *Bot) handleHeight(ctx context.Context, r *request) flow.Outcome {
	height, ok := validation.ValidateHeight(r.message.Text)
	if !ok {
		b.send(ctx, r.chatID, msgInvalidHeight)
		return flow.Rejected
	}
	r.data.Height = height
	b.send(ctx, r.chatID, msgRequestWeight)
	return flow.Done
}

// handleWeight завершает регистрацию: сохраняет профиль и показывает тарифы.
func (b *Bot) handleWeight(ctx context.Context, r *request) flow.Outcome {
	weight, ok := validation.ValidateWeight(r.message.Text)
	if !ok {
		b.send(ctx, r.chatID, msgInvalidWeight)
		return flow.Rejected
	}
	r.data.Weight = weight

	if err := b.userService.Register(ctx, r.data.Profile(r.userID, b.now())); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to save profile")
		b.send(ctx, r.chatID, msgSomethingWrong)
		return flow.Abort
	}
	if b.metrics != nil {
		b.metrics.Registrations.Inc()
	}

	r.data = models.FlowData{}
	b.sendInline(ctx, r.chatID, msgRegistrationComplete, coursesKeyboard(b.courses))
	return flow.Done
}

func (b *Bot) saveState(ctx context.Context, userID int64, step flow.Step, data models.FlowData) {
	if err := b.stateService.SetUserState(ctx, userID, string(step), data); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("step", string(step)).Msg("Failed to save user state")
	}
}

func (b *Bot) clearState(ctx context.Context, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to clear user state")
	}
}

// deletePrompt убирает сообщение, на кнопку которого нажали.
func (b *Bot) deletePrompt(ctx context.Context, r *request) {
	id := r.messageID()
	if id == 0 {
		return
	}
	if err := b.tgService.DeleteMessage(r.chatID, id); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to delete prompt")
	}
}
