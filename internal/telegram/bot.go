package telegram

import (
	"context"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"overwatch-telegram-bot/internal/chart"
	"overwatch-telegram-bot/internal/commands"
	"overwatch-telegram-bot/internal/roster"
	"overwatch-telegram-bot/lib/helpers"
	"overwatch-telegram-bot/lib/translation"
)

var (
	textTrigger = regexp.MustCompile(`(?i)^ow(?:\.|\s+)(\S+)\s*(.*)$`)
	bareTrigger = regexp.MustCompile(`(?i)^ow$`)
)

// NewBot creates new telegram bot
func NewBot(c BotConfig, cmds Commands) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:      bot,
		Config:   c,
		Commands: cmds,
	}, nil
}

// GetUpdatesChannel gets new updates updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig), nil
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message: %v", m)
}

// SendPhoto sends a PNG chart
func (b *Bot) SendPhoto(p Photo) error {
	photo := tgbotapi.NewPhoto(p.ChatID, tgbotapi.FileBytes{
		Name:  "chart.png",
		Bytes: p.Image,
	})
	photo.Caption = p.Caption
	photo.ParseMode = "MarkdownV2"
	photo.ReplyToMessageID = p.MessageID
	_, err := b.Bot.Send(photo)
	return errors.Wrapf(err, "could not send photo to chat %d", p.ChatID)
}

// ParseCommand maps a slash command and its arguments to a request.
func ParseCommand(command, args string) Request {
	args = strings.TrimSpace(args)
	switch strings.ToLower(command) {
	case "pickrate", "userate":
		return Request{Action: ActionPickRate, Argument: args}
	case "hero":
		return Request{Action: ActionHero, Argument: args}
	case "status":
		return Request{Action: ActionStatus}
	case "source":
		return Request{Action: ActionSource}
	}
	return Request{Action: ActionHelp}
}

// ParseText recognises the "ow" text triggers, e.g. "ow 选取率 黄金" or
// "ow.英雄 安娜". It reports false for any other message.
func ParseText(text string) (Request, bool) {
	text = strings.TrimSpace(text)
	if bareTrigger.MatchString(text) {
		return Request{Action: ActionHelp}, true
	}

	matches := textTrigger.FindStringSubmatch(text)
	if len(matches) < 3 {
		return Request{}, false
	}

	args := strings.TrimSpace(matches[2])
	switch strings.ToLower(matches[1]) {
	case "选取率", "使用率", "pickrate":
		return Request{Action: ActionPickRate, Argument: args}, true
	case "英雄", "hero":
		return Request{Action: ActionHero, Argument: args}, true
	case "状态", "status":
		return Request{Action: ActionStatus}, true
	case "来源", "source":
		return Request{Action: ActionSource}, true
	}
	return Request{Action: ActionHelp}, true
}

// RequestFromMessage parses a message into a request. It reports false for
// messages the bot should ignore.
func RequestFromMessage(m *tgbotapi.Message) (Request, bool) {
	if m == nil {
		return Request{}, false
	}
	if m.IsCommand() {
		return ParseCommand(m.Command(), m.CommandArguments()), true
	}
	return ParseText(m.Text)
}

// Handle runs a request and builds the reply.
func (b *Bot) Handle(ctx context.Context, req Request) Reply {
	var (
		res commands.Result
		err error
	)

	switch req.Action {
	case ActionSource:
		return Reply{Text: translation.Translate("Data source: %s", helpers.EscapeMarkdownV2(b.Config.SourceURL))}
	case ActionPickRate:
		res, err = b.Commands.PickRate(ctx, req.Argument)
	case ActionHero:
		if req.Argument == "" {
			return Reply{Text: translation.TranslatePlain("Usage: /hero <name>")}
		}
		res, err = b.Commands.HeroStatistics(ctx, req.Argument)
	case ActionStatus:
		res, err = b.Commands.Status()
	default:
		return Reply{Text: translation.Translate("Command help message")}
	}

	if err != nil {
		return Reply{Text: errorText(err)}
	}
	return Reply{Text: res.Caption, Image: res.Image}
}

// HandleUpdate processes Telegram updates
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) error {
	req, ok := RequestFromMessage(u.Message)
	if !ok {
		return nil
	}
	log.Debugf("received request: %+v", req)

	reply := b.Handle(ctx, req)
	if reply.Image != nil {
		return b.SendPhoto(Photo{
			ChatID:    u.Message.Chat.ID,
			MessageID: u.Message.MessageID,
			Image:     reply.Image,
			Caption:   reply.Text,
		})
	}
	return b.SendMessage(Message{
		ChatID:    u.Message.Chat.ID,
		MessageID: u.Message.MessageID,
		Text:      reply.Text,
	})
}

// errorText turns a command error into a MarkdownV2 reply.
func errorText(err error) string {
	var notFound *commands.NotFoundError

	switch {
	case errors.Is(err, roster.ErrNotReady):
		log.Debug(err)
		return translation.TranslatePlain("Data is still loading, please try again shortly.")
	case errors.As(err, &notFound):
		log.Debug(err)
		if notFound.Kind == commands.KindRank {
			return translation.TranslatePlain(
				"Rank %s not found. Valid ranks: %s", notFound.Input, strings.Join(notFound.Valid, " "),
			)
		}
		return translation.TranslatePlain("Hero %s not found", notFound.Input)
	case errors.Is(err, chart.ErrNoData):
		log.Debug(err)
		return translation.TranslatePlain("No statistics available yet.")
	}

	log.Error(err)
	return translation.TranslatePlain("Failed to fetch data from the armory, please try again later.")
}
