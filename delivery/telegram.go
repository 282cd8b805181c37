// Package delivery sends the finished report to a Telegram chat.
package delivery

import (
	"fmt"
	"log"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/pivolan/sales_analyzer/plot"
)

// MaxPhotoSize is the largest image sent as a photo; bigger images go out as documents
// so Telegram does not recompress them.
const MaxPhotoSize = 150000

// MaxMessageLength is the Telegram limit for one text message.
const MaxMessageLength = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Printf("delivery: authorized on account %s", bot.Self.UserName)
	return &Telegram{api: bot, chatID: chatID}, nil
}

// Publish sends the report text followed by every chart image.
func (t *Telegram) Publish(text string, charts []plot.RenderedChart) error {
	for _, part := range splitMessage(text, MaxMessageLength) {
		if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, part)); err != nil {
			return fmt.Errorf("sending report text: %w", err)
		}
	}
	for _, c := range charts {
		if err := t.sendChart(c); err != nil {
			return err
		}
	}
	log.Printf("delivery: report and %d charts sent to chat %d", len(charts), t.chatID)
	return nil
}

func (t *Telegram) sendChart(c plot.RenderedChart) error {
	pngFile := tgbotapi.FileBytes{
		Name:  plot.FileName(string(c.Kind), c.Label) + ".png",
		Bytes: c.PNG,
	}

	var msg tgbotapi.Chattable
	if len(c.PNG) < MaxPhotoSize {
		photo := tgbotapi.NewPhotoUpload(t.chatID, pngFile)
		photo.Caption = c.Label
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(t.chatID, pngFile)
		doc.Caption = c.Label
		msg = doc
	}
	if _, err := t.api.Send(msg); err != nil {
		log.Printf("delivery: sending %s chart %q failed: %v", c.Kind, c.Label, err)
		return fmt.Errorf("sending chart %q: %w", c.Label, err)
	}
	return nil
}

// splitMessage cuts text into parts of at most limit bytes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	var parts []string
	for len(text) > limit {
		cut := limit
		for i := limit; i > 0; i-- {
			if text[i-1] == '\n' {
				cut = i
				break
			}
		}
		if cut == limit {
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
