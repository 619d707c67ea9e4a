package config

import (
	"github.com/spf13/pflag"

	"commitGuard/internal/commit"
)

// CommitConfig holds configuration for the commit command. In and Out select
// batch mode: In is a JSONL file of intents, Out receives commit records.
type CommitConfig struct {
	Intent   commit.IntentInput
	In       string
	Errors   string
	Sinks    Sinks
	LogLevel string
}

// LoadCommit merges config sources into CommitConfig.
func LoadCommit(cfgFile string, flags *pflag.FlagSet) (CommitConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"errors": "./data/commit_errors.jsonl",
	})
	if err != nil {
		return CommitConfig{}, err
	}

	return CommitConfig{
		Intent: commit.IntentInput{
			Sender:       v.GetString("sender"),
			AmountIn:     v.GetString("amount-in"),
			MinAmountOut: v.GetString("min-amount-out"),
			TokenIn:      v.GetString("token-in"),
			TokenOut:     v.GetString("token-out"),
			Nonce:        v.GetString("nonce"),
		},
		In:       v.GetString("in"),
		Errors:   v.GetString("errors"),
		Sinks:    loadSinks(v),
		LogLevel: v.GetString("log-level"),
	}, nil
}
