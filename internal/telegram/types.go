package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"overwatch-telegram-bot/internal/commands"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
	// SourceURL is shown by /source as the origin of the statistics.
	SourceURL string
}

// Commands is the command layer the bot dispatches to.
type Commands interface {
	PickRate(ctx context.Context, rankArg string) (commands.Result, error)
	HeroStatistics(ctx context.Context, heroArg string) (commands.Result, error)
	Status() (commands.Result, error)
}

// Bot telegram interaction client
type Bot struct {
	Bot      *tgbotapi.BotAPI
	Config   BotConfig
	Commands Commands
}

// Message a telegram message struct
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
}

// Photo a telegram photo with a MarkdownV2 caption
type Photo struct {
	ChatID    int64
	MessageID int
	Image     []byte
	Caption   string
}

type Action int

const (
	ActionHelp Action = iota
	ActionSource
	ActionPickRate
	ActionHero
	ActionStatus
)

// Request is a parsed user command.
type Request struct {
	Action   Action
	Argument string
}

// Reply is what the bot answers. Image is nil for text replies.
type Reply struct {
	Text  string
	Image []byte
}
