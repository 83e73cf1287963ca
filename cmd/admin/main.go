package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Marcella2706/task2-GeekHaven/internal/config"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
)

var (
	mongoURI string
	mongoDB  string
	timeout  time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "resellhub-admin",
	Short: "Maintenance commands for the ReSellHub account store",
	Long: `resellhub-admin works directly on the MongoDB account store.

Connection settings default to MONGO_URI and MONGO_DB (or .env), the same
variables the API server reads.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if mongoURI == "" {
			mongoURI = cfg.MongoURI
		}
		if mongoDB == "" {
			mongoDB = cfg.MongoDB
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string (default $MONGO_URI)")
	rootCmd.PersistentFlags().StringVar(&mongoDB, "db", "", "database name (default $MONGO_DB)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "overall command timeout")

	rootCmd.AddCommand(indexesCmd, activateCmd, deactivateCmd, showCmd)
}

// withStore connects, runs fn and disconnects.
func withStore(fn func(ctx context.Context, s *repo.Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := repo.NewStore(ctx, mongoURI, mongoDB)
	if err != nil {
		return err
	}
	defer s.Close(context.Background())
	return fn(ctx, s)
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the users and reset_tokens indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *repo.Store) error {
			if err := s.EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ok")
			return nil
		})
	},
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			return withStore(func(ctx context.Context, s *repo.Store) error {
				u, err := s.SetActive(ctx, email, active)
				if errors.Is(err, repo.ErrNotFound) {
					return fmt.Errorf("no account with email %s", email)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) isActive=%t\n", u.Email, u.ID.Hex(), u.IsActive)
				return nil
			})
		},
	}
}

var (
	activateCmd   = setActiveCmd("activate", "Allow an account to sign in again", true)
	deactivateCmd = setActiveCmd("deactivate", "Block an account from signing in", false)
)

var showCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Print an account as JSON (password hash omitted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(args[0])
		return withStore(func(ctx context.Context, s *repo.Store) error {
			u, err := s.FindUserByEmail(ctx, email)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("no account with email %s", email)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(u)
		})
	},
}
