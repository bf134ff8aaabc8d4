// jokefetch is a manual smoke test for the API client: it fetches a
// few jokes with the given filters and prints them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"jokebot/internal/jokeapi"
)

var (
	amount     = flag.Int("n", 1, "number of jokes to fetch (1-10)")
	categories = flag.String("categories", "", "comma-separated categories (Misc, Programming, Dark, Pun, Spooky, Christmas)")
	lang       = flag.String("lang", "", "two-letter language code (en, cs, de, es, fr, pt)")
	blacklist  = flag.String("blacklist", "", "comma-separated flags to exclude (nsfw, religious, political, racist, sexist, explicit)")
	jokeType   = flag.String("type", "", "joke type: single or twopart")
	contains   = flag.String("contains", "", "substring the joke must contain")
	safe       = flag.Bool("safe", false, "enable safe mode")
)

func main() {
	flag.Parse()

	opts := jokeapi.Options{
		Language:  jokeapi.ParseLanguage(*lang),
		Blacklist: jokeapi.ParseFlags(*blacklist),
		Contains:  *contains,
		Safe:      *safe,
	}

	for _, name := range strings.Split(*categories, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c, ok := jokeapi.ParseCategory(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown category: %s\n", name)
			os.Exit(1)
		}
		opts.Categories = append(opts.Categories, c)
	}

	switch *jokeType {
	case "":
	case "single":
		opts.Type = jokeapi.TypeSingle
	case "twopart":
		opts.Type = jokeapi.TypeTwoPart
	default:
		fmt.Fprintf(os.Stderr, "Unknown type: %s\n", *jokeType)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := jokeapi.New()
	jokes, err := client.FetchMany(ctx, *amount, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}

	for i, joke := range jokes {
		if i > 0 {
			fmt.Println(strings.Repeat("-", 40))
		}
		fmt.Printf("[%s #%d, %s, safe=%v]\n%s\n",
			joke.Category, joke.ID, joke.Lang.Code(), joke.Safe, joke.Content)
	}
}
