package models

import (
	"strings"
	"time"

	"jokebot/internal/jokeapi"
)

type User struct {
	ID              int64     `json:"id"`
	TelegramID      int64     `json:"telegram_id"`
	Username        string    `json:"username"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	CreatedAt       time.Time `json:"created_at"`
	LastInteraction time.Time `json:"last_interaction"`
}

// ChatPreferences is the saved joke filter for one chat. It maps 1:1
// onto jokeapi.Options; fetched jokes themselves are never stored.
type ChatPreferences struct {
	ChatID     int64              `json:"chat_id"`
	Categories []jokeapi.Category `json:"categories"`
	Language   jokeapi.Language   `json:"language"`
	Blacklist  jokeapi.Flags      `json:"blacklist"`
	SafeMode   bool               `json:"safe_mode"`
	Subscribed bool               `json:"subscribed"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// DefaultPreferences is what a chat gets on /start: any category,
// English, safe mode on.
func DefaultPreferences(chatID int64) *ChatPreferences {
	return &ChatPreferences{
		ChatID:   chatID,
		SafeMode: true,
	}
}

// Options converts the stored preferences into request options.
func (p *ChatPreferences) Options() jokeapi.Options {
	return jokeapi.Options{
		Categories: p.Categories,
		Language:   p.Language,
		Blacklist:  p.Blacklist,
		Safe:       p.SafeMode,
	}
}

// CategoriesString renders the category set for storage, comma-joined.
func (p *ChatPreferences) CategoriesString() string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.String())
	}
	return strings.Join(names, ",")
}

// SetCategoriesString restores the category set from its storage form,
// dropping names that no longer parse.
func (p *ChatPreferences) SetCategoriesString(s string) {
	p.Categories = nil
	for _, name := range strings.Split(s, ",") {
		if c, ok := jokeapi.ParseCategory(strings.TrimSpace(name)); ok {
			p.Categories = append(p.Categories, c)
		}
	}
}
