// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"fmt"

	"github.com/jeranaias/gpterm/internal/config"
)

// New builds the Client selected by cfg.Provider, wrapped in a rate limiter
// when cfg.RequestsPerMinute is set.
func New(cfg *config.Config) (Client, error) {
	var (
		client Client
		err    error
	)

	switch cfg.Provider.Name {
	case config.ProviderOpenAI, "":
		client, err = NewOpenAI(cfg.Provider.BaseURL, cfg.Credentials.APIKey, cfg.Credentials.Organization)
	case config.ProviderAnthropic:
		client, err = NewAnthropic(cfg.Provider.BaseURL, cfg.Credentials.APIKey)
	case config.ProviderOllama:
		client, err = NewOllama(cfg.Provider.BaseURL)
	case config.ProviderOpenRouter:
		client, err = NewOpenRouter(cfg.Provider.BaseURL, cfg.Credentials.APIKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider.Name)
	}
	if err != nil {
		return nil, err
	}

	config.DebugLog.Printf("[completion] provider=%s base_url=%q rpm=%d",
		cfg.Provider.Name, cfg.Provider.BaseURL, cfg.RequestsPerMinute)

	return RateLimited(client, cfg.RequestsPerMinute), nil
}
