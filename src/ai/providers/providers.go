// Package providers registers every LLM provider with the core factory.
package providers

import (
	_ "github.com/stake-plus/claimcheck/src/ai/gemini"
	_ "github.com/stake-plus/claimcheck/src/ai/openai"
)
