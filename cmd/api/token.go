package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taiwoajasa245/confession-api/pkg/util"
)

var (
	subject  string
	tokenTTL time.Duration
)

// tokenCmd mints admin tokens for the mutating endpoints.
var tokenCmd = &cobra.Command{
	Use:     "token",
	Short:   "Mint an admin JWT signed with JWT_SECRET",
	Example: `  confession-api token --subject ops@example.com --ttl 24h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := util.GenerateJWT(cfg.JWTSecret, subject, util.RoleAdmin, tokenTTL)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	tokenCmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "How long the token stays valid")
	rootCmd.AddCommand(tokenCmd)
}
