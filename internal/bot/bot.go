package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
)

// Bot hosts Commands on Telegram via long polling.
type Bot struct {
	bot  *telego.Bot
	cmds *Commands
}

func New(token string, debug bool, cmds *Commands) (*Bot, error) {
	var opts []telego.BotOption
	if debug {
		opts = append(opts, telego.WithDefaultDebugLogger())
	}
	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Bot{bot: bot, cmds: cmds}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("long polling: %w", err)
	}
	bh, err := th.NewBotHandler(b.bot, updates)
	if err != nil {
		return fmt.Errorf("bot handler: %w", err)
	}
	bh.Handle(b.handleCommand, th.AnyCommand())

	go func() {
		<-ctx.Done()
		if err := bh.Stop(); err != nil {
			log.Warn().Err(err).Msg("stop bot handler")
		}
	}()

	log.Info().Msg("telegram bot polling")
	return bh.Start()
}

func (b *Bot) handleCommand(ctx *th.Context, update telego.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	reply := b.cmds.Dispatch(ctx, game.UserID(msg.From.ID), msg.Text)
	if reply == "" {
		return nil
	}
	_, err := ctx.Bot().SendMessage(ctx, tu.Message(tu.ID(msg.Chat.ID), reply))
	return err
}
