package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobhunt-app/jobhunt/internal/config"
	"github.com/jobhunt-app/jobhunt/internal/resource"
	"github.com/jobhunt-app/jobhunt/internal/store"
)

var (
	keygenName   string
	keygenScopes []string
)

func init() {
	keygenCmd.Flags().StringVar(&keygenName, "name", "", "Name identifying the key's owner")
	keygenCmd.Flags().StringSliceVar(&keygenScopes, "scopes", []string{"read"}, "Scopes to grant (read, write, *)")
	keygenCmd.MarkFlagRequired("name")
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Issue a new API key",
	Long:  "Issue a new API key. The token is printed once and never stored in clear.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, scope := range keygenScopes {
			if scope != "read" && scope != "write" && scope != "*" {
				return fmt.Errorf("unknown scope %q (valid: read, write, *)", scope)
			}
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		st, err := store.Open(cfg.Database.URL, resource.Catalog(), logger)
		if err != nil {
			return err
		}
		defer st.Close()

		token, key, err := st.CreateAPIKey(context.Background(), keygenName, keygenScopes)
		if err != nil {
			return err
		}

		fmt.Printf("API key created for %q (scopes: %s)\n", key.Name, strings.Join(key.Scopes, ", "))
		fmt.Printf("Token (shown once): %s\n", token)
		return nil
	},
}
