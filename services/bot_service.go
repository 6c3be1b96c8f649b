package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"fireDragonAPI/internal/telegram"
	"fireDragonAPI/utils"
)

// BotService turns inbound Telegram updates into pairing, binding and
// activity-recording calls, and replies through the bot client.
type BotService struct {
	users   *UserService
	streaks *StreakService
	client  *telegram.Client

	botUsername string
	webAppURL   string
}

func NewBotService(users *UserService, streaks *StreakService, client *telegram.Client, botUsername, webAppURL string) *BotService {
	return &BotService{
		users:       users,
		streaks:     streaks,
		client:      client,
		botUsername: botUsername,
		webAppURL:   webAppURL,
	}
}

// HandleUpdate processes one update end to end. Failures are logged with the
// update id and never escape: a bad update must not stop the poller or fail
// the webhook delivery.
func (b *BotService) HandleUpdate(ctx context.Context, upd *telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic while handling update %d: %v", upd.UpdateID, r)
		}
	}()

	if upd.Message == nil || upd.Message.From == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := upd.Message
	text := strings.TrimSpace(msg.Text)

	var err error
	switch {
	case text == "/start" || strings.HasPrefix(text, "/start "):
		err = b.handleStart(ctx, msg, strings.TrimSpace(strings.TrimPrefix(text, "/start")))
	case text == "/bind" || strings.HasPrefix(text, "/bind "):
		err = b.handleBind(ctx, msg)
	default:
		err = b.handleMessage(ctx, msg)
	}

	if err != nil {
		log.Printf("Error handling update %d: %v", upd.UpdateID, err)
	}
}

func (b *BotService) handleStart(ctx context.Context, msg *telegram.Message, payload string) error {
	from := msg.From

	if _, err := b.users.UpsertUser(ctx, from.ID, from.Username, from.FirstName); err != nil {
		return err
	}

	if payload != "" {
		inviterID, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			log.Printf("Ignoring malformed start payload %q from user %d", payload, from.ID)
		} else if inviterID != from.ID {
			if _, err := b.users.LinkPair(ctx, from.ID, inviterID); err != nil {
				log.Printf("Failed to link pair for user %d: %v", from.ID, err)
			} else if err := b.client.SendMessage(ctx, msg.Chat.ID,
				"🔥 You and your friend are linked. Your shared fire dragon is born!"); err != nil {
				log.Printf("Failed to send pairing reply: %v", err)
			}
		}
	}

	inviteLink := utils.InviteLink(b.botUsername, from.ID)

	keyboard := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "🐾 My pet", WebApp: &telegram.WebAppInfo{URL: b.webAppURL}}},
			{{Text: "➕ Invite a friend", URL: utils.ShareLink(inviteLink)}},
		},
	}

	greeting := fmt.Sprintf(
		"Hi, %s!\n\nYour personal invite link:\n%s",
		from.FirstName, inviteLink)

	return b.client.SendMessageWithKeyboard(ctx, msg.Chat.ID, greeting, keyboard)
}

func (b *BotService) handleBind(ctx context.Context, msg *telegram.Message) error {
	if msg.Chat.Type == "private" {
		return b.client.SendMessage(ctx, msg.Chat.ID,
			"Run this command in the GROUP you share with your friend.")
	}

	err := b.streaks.BindGroup(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		if errors.Is(err, ErrStreakNotFound) {
			return b.client.SendMessage(ctx, msg.Chat.ID,
				"Create your dragon in a private chat with the bot first!")
		}
		return err
	}

	return b.client.SendMessage(ctx, msg.Chat.ID,
		"✅ Group bound! Chatting here now feeds your dragon's fire.")
}

func (b *BotService) handleMessage(ctx context.Context, msg *telegram.Message) error {
	return b.streaks.RecordMessage(ctx, msg.From.ID, msg.Chat.ID, msg.From.FirstName)
}
