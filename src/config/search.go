package config

import (
	"fmt"
	"strings"
	"time"
)

// Search provider names.
const (
	SearchAuto       = "auto"
	SearchGoogle     = "google"
	SearchDuckDuckGo = "duckduckgo"
	SearchNone       = "none"
)

// Search holds the web-search settings.
type Search struct {
	Provider    string
	GoogleKey   string
	GoogleCSEID string
	MaxResults  int
	Timeout     time.Duration
}

func loadSearch(env reader) (Search, error) {
	out := Search{
		GoogleKey:   env.str("GOOGLE_API_KEY", ""),
		GoogleCSEID: env.str("GOOGLE_CSE_ID", ""),
	}
	hasGoogle := out.GoogleKey != "" && out.GoogleCSEID != ""

	provider := strings.ToLower(env.str("SEARCH_PROVIDER", SearchAuto))
	switch provider {
	case SearchAuto:
		provider = SearchDuckDuckGo
		if hasGoogle {
			provider = SearchGoogle
		}
	case SearchGoogle:
		if !hasGoogle {
			key := "GOOGLE_API_KEY"
			if out.GoogleKey != "" {
				key = "GOOGLE_CSE_ID"
			}
			return Search{}, &Error{Key: key, Err: ErrMissingCredential}
		}
	case SearchDuckDuckGo, SearchNone:
	default:
		return Search{}, &Error{Key: "SEARCH_PROVIDER", Err: fmt.Errorf("%w: unknown provider %q", ErrInvalidValue, provider)}
	}
	out.Provider = provider

	var err error
	if out.MaxResults, err = env.integer("MAX_SEARCH_RESULTS", 5, 1); err != nil {
		return Search{}, err
	}
	if out.Timeout, err = env.seconds("SEARCH_TIMEOUT", 10*time.Second); err != nil {
		return Search{}, err
	}
	return out, nil
}
