package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and a one-line storage summary
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("CreatorLogic", GetVersion())

	remote := "disabled"
	if config.HasRemoteStore() {
		remote = "postgres"
	}
	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("local_store", config.Storage.Badger.Path).
		Bool("local_in_memory", config.Storage.Badger.InMemory).
		Str("remote_store", remote).
		Bool("apify_token_set", config.Apify.Token != "").
		Msg("CreatorLogic starting")
}
