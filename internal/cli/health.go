package cli

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/aliasgame/internal/storage/remote"
)

// HealthResult is printed by the health command
type HealthResult struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend API is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			result, err := checkHealth(ctx, cfg.BackendURL, cfg.BackendKey)
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func checkHealth(ctx context.Context, backendURL, key string) (HealthResult, error) {
	u, err := url.Parse(backendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return HealthResult{}, errors.New("health needs an http(s) --backend-url")
	}

	store := remote.New(backendURL, key)
	defer func() { _ = store.Close() }()

	if err := store.Health(ctx); err != nil {
		return HealthResult{}, err
	}
	return HealthResult{Status: "ok", Backend: backendURL}, nil
}
