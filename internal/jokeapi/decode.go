package jokeapi

import (
	"encoding/json"
	"fmt"
)

type flagsPayload struct {
	Nsfw      bool `json:"nsfw"`
	Religious bool `json:"religious"`
	Political bool `json:"political"`
	Racist    bool `json:"racist"`
	Sexist    bool `json:"sexist"`
	Explicit  bool `json:"explicit"`
}

func (p flagsPayload) toFlags() Flags {
	var f Flags
	if p.Nsfw {
		f |= FlagNsfw
	}
	if p.Religious {
		f |= FlagReligious
	}
	if p.Political {
		f |= FlagPolitical
	}
	if p.Racist {
		f |= FlagRacist
	}
	if p.Sexist {
		f |= FlagSexist
	}
	if p.Explicit {
		f |= FlagExplicit
	}
	return f
}

// jokePayload is the wire shape of one joke. Joke, setup and delivery
// are pointers so an absent field can be told apart from an empty one.
type jokePayload struct {
	Error    bool         `json:"error"`
	Message  string       `json:"message"`
	Category string       `json:"category"`
	Type     string       `json:"type"`
	Joke     *string      `json:"joke"`
	Setup    *string      `json:"setup"`
	Delivery *string      `json:"delivery"`
	Flags    flagsPayload `json:"flags"`
	ID       int          `json:"id"`
	Safe     bool         `json:"safe"`
	Lang     string       `json:"lang"`
}

type batchPayload struct {
	Error   bool          `json:"error"`
	Message string        `json:"message"`
	Amount  int           `json:"amount"`
	Jokes   []jokePayload `json:"jokes"`
}

func (p *jokePayload) toJoke() (*Joke, error) {
	j := &Joke{
		ID:       p.ID,
		Category: parseCategoryOrMisc(p.Category),
		Flags:    p.Flags.toFlags(),
		Safe:     p.Safe,
		Lang:     ParseLanguage(p.Lang),
	}

	if p.Type == "single" {
		if p.Joke == nil {
			return nil, &MissingFieldError{Field: "joke"}
		}
		j.Content = Single{Text: *p.Joke}
		return j, nil
	}

	// The API only ever sends "single" or "twopart"; anything else is
	// decoded as twopart and caught below if the fields are absent.
	if p.Setup == nil {
		return nil, &MissingFieldError{Field: "setup"}
	}
	if p.Delivery == nil {
		return nil, &MissingFieldError{Field: "delivery"}
	}
	j.Content = TwoPart{Setup: *p.Setup, Delivery: *p.Delivery}
	return j, nil
}

func decodeJoke(data []byte) (*Joke, error) {
	var p jokePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if p.Error {
		return nil, &APIError{Message: p.Message}
	}
	return p.toJoke()
}

func decodeJokes(data []byte) ([]*Joke, error) {
	var p batchPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if p.Error {
		return nil, &APIError{Message: p.Message}
	}

	jokes := make([]*Joke, 0, len(p.Jokes))
	for i := range p.Jokes {
		j, err := p.Jokes[i].toJoke()
		if err != nil {
			return nil, fmt.Errorf("joke %d: %w", i, err)
		}
		jokes = append(jokes, j)
	}
	return jokes, nil
}
