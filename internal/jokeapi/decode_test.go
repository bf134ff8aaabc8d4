package jokeapi

import (
	"errors"
	"testing"
)

const singleJokeJSON = `{
	"error": false,
	"category": "Programming",
	"type": "single",
	"joke": "There are only 10 kinds of people in this world.",
	"flags": {
		"nsfw": false,
		"religious": false,
		"political": false,
		"racist": false,
		"sexist": false,
		"explicit": false
	},
	"id": 1,
	"safe": true,
	"lang": "en"
}`

const twoPartJokeJSON = `{
	"error": false,
	"category": "Pun",
	"type": "twopart",
	"setup": "Why did the chicken cross the road?",
	"delivery": "To get to the other side.",
	"flags": {
		"nsfw": true,
		"religious": false,
		"political": true,
		"racist": false,
		"sexist": false,
		"explicit": false
	},
	"id": 42,
	"safe": false,
	"lang": "de"
}`

func TestDecodeSingleJoke(t *testing.T) {
	joke, err := decodeJoke([]byte(singleJokeJSON))
	if err != nil {
		t.Fatalf("decodeJoke() error = %v", err)
	}

	if joke.Category != CategoryProgramming {
		t.Errorf("Category = %v, want Programming", joke.Category)
	}
	single, ok := joke.Content.(Single)
	if !ok {
		t.Fatalf("Content = %T, want Single", joke.Content)
	}
	if single.Text != "There are only 10 kinds of people in this world." {
		t.Errorf("Text = %q", single.Text)
	}
	if joke.Flags != 0 {
		t.Errorf("Flags = %v, want empty", joke.Flags)
	}
	if !joke.Safe {
		t.Error("Safe = false, want true")
	}
	if joke.ID != 1 {
		t.Errorf("ID = %d, want 1", joke.ID)
	}
	if joke.Lang != LanguageEnglish {
		t.Errorf("Lang = %v, want English", joke.Lang)
	}
}

func TestDecodeTwoPartJoke(t *testing.T) {
	joke, err := decodeJoke([]byte(twoPartJokeJSON))
	if err != nil {
		t.Fatalf("decodeJoke() error = %v", err)
	}

	twoPart, ok := joke.Content.(TwoPart)
	if !ok {
		t.Fatalf("Content = %T, want TwoPart", joke.Content)
	}
	if twoPart.Setup != "Why did the chicken cross the road?" {
		t.Errorf("Setup = %q", twoPart.Setup)
	}
	if twoPart.Delivery != "To get to the other side." {
		t.Errorf("Delivery = %q", twoPart.Delivery)
	}
	if !joke.Flags.Has(FlagNsfw | FlagPolitical) {
		t.Errorf("Flags = %v, want nsfw and political", joke.Flags)
	}
	if joke.Flags.Has(FlagRacist) {
		t.Error("racist flag should not be set")
	}
	if joke.Lang != LanguageGerman {
		t.Errorf("Lang = %v, want German", joke.Lang)
	}
}

func TestDecodeMissingFields(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantField string
	}{
		{
			name:      "single without joke",
			json:      `{"category":"Misc","type":"single","flags":{},"id":1,"lang":"en"}`,
			wantField: "joke",
		},
		{
			name:      "twopart without setup",
			json:      `{"category":"Misc","type":"twopart","delivery":"d","flags":{},"id":1,"lang":"en"}`,
			wantField: "setup",
		},
		{
			name:      "twopart without delivery",
			json:      `{"category":"Misc","type":"twopart","setup":"s","flags":{},"id":1,"lang":"en"}`,
			wantField: "delivery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeJoke([]byte(tt.json))
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("error = %v, want MissingFieldError", err)
			}
			if missing.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", missing.Field, tt.wantField)
			}
		})
	}
}

func TestDecodeUnrecognizedTypeFallsBackToTwoPart(t *testing.T) {
	data := `{"category":"Misc","type":"riddle","setup":"s","delivery":"d","flags":{},"id":1,"lang":"en"}`
	joke, err := decodeJoke([]byte(data))
	if err != nil {
		t.Fatalf("decodeJoke() error = %v", err)
	}
	if _, ok := joke.Content.(TwoPart); !ok {
		t.Errorf("Content = %T, want TwoPart", joke.Content)
	}
}

func TestDecodeUnknownCategoryDefaultsToMisc(t *testing.T) {
	data := `{"category":"Limerick","type":"single","joke":"x","flags":{},"id":1,"lang":"en"}`
	joke, err := decodeJoke([]byte(data))
	if err != nil {
		t.Fatalf("decodeJoke() error = %v", err)
	}
	if joke.Category != CategoryMisc {
		t.Errorf("Category = %v, want Misc", joke.Category)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := decodeJoke([]byte("{not json"))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want DecodeError", err)
	}
}

func TestDecodeAPIError(t *testing.T) {
	data := `{"error":true,"message":"No matching joke found"}`
	_, err := decodeJoke([]byte(data))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Message != "No matching joke found" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestDecodeBatch(t *testing.T) {
	data := `{
		"error": false,
		"amount": 3,
		"jokes": [
			{"category":"Programming","type":"single","joke":"a","flags":{"nsfw":true},"id":10,"safe":false,"lang":"en"},
			{"category":"Dark","type":"twopart","setup":"b","delivery":"c","flags":{},"id":20,"safe":true,"lang":"cs"},
			{"category":"Pun","type":"single","joke":"d","flags":{"sexist":true},"id":30,"safe":false,"lang":"fr"}
		]
	}`

	jokes, err := decodeJokes([]byte(data))
	if err != nil {
		t.Fatalf("decodeJokes() error = %v", err)
	}
	if len(jokes) != 3 {
		t.Fatalf("len(jokes) = %d, want 3", len(jokes))
	}

	if jokes[0].Category != CategoryProgramming || !jokes[0].Flags.Has(FlagNsfw) {
		t.Errorf("joke 0 mapped incorrectly: %+v", jokes[0])
	}
	if jokes[1].Category != CategoryDark || jokes[1].Lang != LanguageCzech {
		t.Errorf("joke 1 mapped incorrectly: %+v", jokes[1])
	}
	if jokes[2].Category != CategoryPun || !jokes[2].Flags.Has(FlagSexist) {
		t.Errorf("joke 2 mapped incorrectly: %+v", jokes[2])
	}
	if jokes[2].Lang != LanguageFrench {
		t.Errorf("joke 2 lang = %v, want French", jokes[2].Lang)
	}
}

func TestDecodeBatchElementError(t *testing.T) {
	data := `{
		"amount": 2,
		"jokes": [
			{"category":"Misc","type":"single","joke":"a","flags":{},"id":1,"lang":"en"},
			{"category":"Misc","type":"single","flags":{},"id":2,"lang":"en"}
		]
	}`

	_, err := decodeJokes([]byte(data))
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingFieldError", err)
	}
}

func TestContentString(t *testing.T) {
	if got := (Single{Text: "ha"}).String(); got != "ha" {
		t.Errorf("Single.String() = %q", got)
	}
	twoPart := TwoPart{Setup: "setup", Delivery: "delivery"}
	if got := twoPart.String(); got != "setup\n\ndelivery" {
		t.Errorf("TwoPart.String() = %q", got)
	}
}
