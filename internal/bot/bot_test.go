package bot

import (
	"strings"
	"testing"

	"jokebot/internal/config"
	"jokebot/internal/jokeapi"
)

func TestNewBot(t *testing.T) {
	cfg := config.BotConfig{
		Token:     "test-token",
		ParseMode: "Markdown",
	}

	_, err := New(cfg, jokeapi.New(), nil, nil, nil)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestNewBotNoToken(t *testing.T) {
	cfg := config.BotConfig{
		Token:     "",
		ParseMode: "Markdown",
	}

	_, err := New(cfg, jokeapi.New(), nil, nil, nil)
	if err == nil {
		t.Error("Expected error when token is empty")
	}
}

func TestParseCategoryArg(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		expected jokeapi.Category
		ok       bool
	}{
		{"exact", "Programming", jokeapi.CategoryProgramming, true},
		{"lowercase", "programming", jokeapi.CategoryProgramming, true},
		{"uppercase", "DARK", jokeapi.CategoryDark, true},
		{"unknown", "limerick", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCategoryArg(tt.arg)
			if ok != tt.ok {
				t.Fatalf("parseCategoryArg(%q) ok = %v, want %v", tt.arg, ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("parseCategoryArg(%q) = %v, want %v", tt.arg, got, tt.expected)
			}
		})
	}
}

func TestFormatJoke(t *testing.T) {
	tests := []struct {
		name     string
		joke     *jokeapi.Joke
		expected string
	}{
		{
			name: "single",
			joke: &jokeapi.Joke{
				Category: jokeapi.CategoryProgramming,
				Content:  jokeapi.Single{Text: "It works on my machine."},
			},
			expected: "*Programming*\n\nIt works on my machine.",
		},
		{
			name: "twopart",
			joke: &jokeapi.Joke{
				Category: jokeapi.CategoryPun,
				Content:  jokeapi.TwoPart{Setup: "Knock knock.", Delivery: "Who's there?"},
			},
			expected: "*Pun*\n\nKnock knock.\n\nWho's there?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatJoke(tt.joke); got != tt.expected {
				t.Errorf("formatJoke() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFetchFailureText(t *testing.T) {
	apiErr := &jokeapi.APIError{Message: "No matching joke found"}
	if got := fetchFailureText(apiErr); !strings.Contains(got, "filters") {
		t.Errorf("fetchFailureText(APIError) = %q, want a filter hint", got)
	}

	statusErr := &jokeapi.StatusError{Code: 500}
	if got := fetchFailureText(statusErr); !strings.Contains(got, "Try again later") {
		t.Errorf("fetchFailureText(StatusError) = %q", got)
	}
}
