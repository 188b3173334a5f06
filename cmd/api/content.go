package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taiwoajasa245/confession-api/internal/content"
)

var (
	topic string
	count int
	days  int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("migrations applied", zap.String("driver", db.Driver()))
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Print today's content, generating it if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.content.EnsureTodaysContent(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), c)
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Replace today's content with newly generated content",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.content.ForceRegenerate(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), c)
	},
}

var versesCmd = &cobra.Command{
	Use:     "verses",
	Short:   "Generate and store verses on a topic",
	Example: `  confession-api verses --topic "hope" --count 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		verses, err := a.content.GenerateVerses(cmd.Context(), content.GenerateVersesRequest{Topic: topic, Count: count})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), verses)
	},
}

var confessionsCmd = &cobra.Command{
	Use:     "confessions",
	Short:   "Generate and store confessions on a topic",
	Example: `  confession-api confessions --topic "healing" --count 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		confessions, err := a.content.GenerateConfessions(cmd.Context(), content.GenerateConfessionsRequest{Topic: topic, Count: count})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), confessions)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create a reading plan for a book or a theme",
	Example: `  confession-api plan --topic Romans --days 16
  confession-api plan --topic forgiveness --days 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.content.CreateReadingPlan(cmd.Context(), content.CreatePlanRequest{Topic: topic, DurationDays: days})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), plan)
	},
}

func init() {
	for _, c := range []*cobra.Command{versesCmd, confessionsCmd} {
		c.Flags().StringVar(&topic, "topic", "", "Topic to generate for")
		c.Flags().IntVar(&count, "count", 5, "How many items to request")
		_ = c.MarkFlagRequired("topic")
	}

	planCmd.Flags().StringVar(&topic, "topic", "", "Book name or theme")
	planCmd.Flags().IntVar(&days, "days", 7, "Plan length in days")
	_ = planCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(migrateCmd, todayCmd, regenerateCmd, versesCmd, confessionsCmd, planCmd)
}
