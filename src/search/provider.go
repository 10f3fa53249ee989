package search

import (
	"github.com/stake-plus/claimcheck/src/config"
	"github.com/stake-plus/claimcheck/src/webclient"
)

// FromConfig picks the provider resolved by config.Load.
func FromConfig(cfg config.Search) Provider {
	hc := webclient.NewDefault(cfg.Timeout)
	switch cfg.Provider {
	case config.SearchGoogle:
		return NewGoogle(cfg.GoogleKey, cfg.GoogleCSEID, "", hc)
	case config.SearchNone:
		return Disabled{}
	default:
		return NewDuckDuckGo("", hc)
	}
}
