package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jdenly/basiq-api/client"
	"github.com/jdenly/basiq-api/client/await"
	"github.com/jdenly/basiq-api/internal/config"
)

var (
	baseURL     string
	accessToken string
	envFile     string
	debug       bool
)

const (
	requestTimeout = 15 * time.Second
	purgeParallel  = 4
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "basiqctl",
		Short:         "basiqctl drives the Basiq API: tokens, users, connections and accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.InitLogger()

			// Values already in the environment win over the file.
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}

			if debug {
				config.SetLogLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				config.SetLogLevel(zerolog.InfoLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Basiq API base URL (overrides BASIQ_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&accessToken, "token", "", "Bearer token to reuse instead of authenticating (default $BASIQ_ACCESS_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newListUsersCmd())
	rootCmd.AddCommand(newCreateUserCmd())
	rootCmd.AddCommand(newDeleteUserCmd())
	rootCmd.AddCommand(newPurgeUsersCmd())
	rootCmd.AddCommand(newCreateConnectionCmd())
	rootCmd.AddCommand(newGetJobCmd())
	rootCmd.AddCommand(newAwaitJobCmd())
	rootCmd.AddCommand(newGetAccountsCmd())
	rootCmd.AddCommand(newAwaitAccountsCmd())

	return rootCmd
}

// loadConfig reads BASIQ_* settings and applies persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// reusableToken returns --token, falling back to BASIQ_ACCESS_TOKEN. It is
// read at run time so a value from the dotenv file is seen.
func reusableToken() string {
	if accessToken != "" {
		return accessToken
	}
	return os.Getenv("BASIQ_ACCESS_TOKEN")
}

// newClient returns a client holding a bearer token: the one passed with
// --token or BASIQ_ACCESS_TOKEN, or a fresh one from the token endpoint.
func newClient(ctx context.Context) (*client.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	c := cfg.NewClient()
	if tok := reusableToken(); tok != "" {
		c.SetToken(&client.AccessToken{AccessToken: tok, TokenType: "Bearer"})
		return c, cfg, nil
	}
	if _, err := c.Authenticate(ctx); err != nil {
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	return c, cfg, nil
}

// printJSON writes v as indented JSON. Records keep the body the API sent.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Obtain a server access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			tok, err := cfg.NewClient().GetAccessToken(ctx, cfg.APIKey)
			if err != nil {
				log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("get access token failed")
				return err
			}
			log.Debug().
				Str("token_type", tok.TokenType).
				Int("expires_in", tok.ExpiresIn).
				Dur("elapsed", time.Since(start)).
				Msg("get access token completed")
			return printJSON(cmd.OutOrStdout(), tok)
		},
	}
}

func newListUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			c, _, err := newClient(ctx)
			if err != nil {
				return err
			}

			users, err := c.ListUsers(ctx)
			if err != nil {
				log.Error().Err(err).Msg("list users failed")
				return err
			}
			log.Debug().Int("count", len(users.Data)).Msg("list users completed")
			return printJSON(cmd.OutOrStdout(), users)
		},
	}
}

func newCreateUserCmd() *cobra.Command {
	var req client.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Debug().
				Str("email", req.Email).
				Str("mobile", req.Mobile).
				Msg("creating user")

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			c, _, err := newClient(ctx)
			if err != nil {
				return err
			}

			user, err := c.CreateUser(ctx, req)
			if err != nil {
				log.Error().Err(err).Str("email", req.Email).Msg("create user failed")
				return err
			}
			log.Debug().Str("user_id", user.ID).Msg("create user completed")
			return printJSON(cmd.OutOrStdout(), user)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name (optional)")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name (optional)")

	return cmd
}

func newDeleteUserCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "delete-user",
		Short: "Delete a user and everything linked to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			c, _, err := newClient(ctx)
			if err != nil {
				return err
			}

			if err := c.DeleteUser(ctx, userID); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("delete user failed")
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User deleted: %s\n", userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (required)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func newPurgeUsersCmd() *cobra.Command {
	var prefix string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "purge-users",
		Short: "Delete every user whose email starts with a prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prefix == "" {
				return errors.New("--email-prefix must not be empty")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 4*requestTimeout)
			defer cancel()
			c, _, err := newClient(ctx)
			if err != nil {
				return err
			}

			users, err := c.ListUsers(ctx)
			if err != nil {
				return err
			}

			var matched []client.User
			for _, u := range users.Data {
				if strings.HasPrefix(u.Email, prefix) {
					matched = append(matched, u)
				}
			}
			log.Debug().Int("listed", len(users.Data)).Int("matched", len(matched)).Str("prefix", prefix).Msg("purge candidates")
			if dryRun {
				for _, u := range matched {
					fmt.Fprintf(cmd.OutOrStdout(), "Would delete: %s %s\n", u.ID, u.Email)
				}
				return nil
			}

			var deleted atomic.Int32
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(purgeParallel)
			for _, u := range matched {
				g.Go(func() error {
					if err := c.DeleteUser(gctx, u.ID); err != nil {
						// Already gone is as good as deleted.
						if client.IsNotFound(err) {
							return nil
						}
						return fmt.Errorf("delete %s: %w", u.ID, err)
					}
					deleted.Add(1)
					log.Debug().Str("user_id", u.ID).Str("email", u.Email).Msg("user deleted")
					return nil
				})
			}
			err = g.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d of %d users\n", deleted.Load(), len(matched))
			return err
		},
	}

	cmd.Flags().StringVar(&prefix, "email-prefix", "test.", "Email prefix selecting users to delete")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List matching users without deleting them")

	return cmd
}

func newCreateConnectionCmd() *cobra.Command {
	var userID, institutionID, loginID, password string
	var wait bool

	cmd := &cobra.Command{
		Use:   "create-connection",
		Short: "Link a user to an institution; prints the connection job",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Debug().
				Str("user_id", userID).
				Str("institution_id", institutionID).
				Str("login_id", loginID).
				Msg("creating connection")

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			c, cfg, err := newClient(ctx)
			if err != nil {
				return err
			}

			job, err := c.CreateConnection(ctx, userID, client.CreateConnectionRequest{
				LoginID:     loginID,
				Password:    password,
				Institution: client.InstitutionRef{ID: institutionID},
			})
			if err != nil {
				log.Error().Err(err).Str("user_id", userID).Str("institution_id", institutionID).Msg("create connection failed")
				return err
			}
			log.Debug().Str("job_id", job.ID).Msg("create connection completed")

			if wait {
				awaitCtx, awaitCancel := context.WithTimeout(cmd.Context(), cfg.AwaitTimeout+requestTimeout)
				defer awaitCancel()
				job, err = await.Job(awaitCtx, c, job.ID, await.WithMaxElapsed(cfg.AwaitTimeout))
				if err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (required)")
	cmd.Flags().StringVar(&institutionID, "institution", "", "Institution ID, e.g. AU00000 (required)")
	cmd.Flags().StringVar(&loginID, "login-id", "", "Internet banking login")
	cmd.Flags().StringVar(&password, "password", "", "Internet banking password")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the connection job to finish")

	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("institution")

	return cmd
}

func newGetJobCmd() *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "get-job",
		Short: "Show a connection job and its steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			c, _, err := newClient(ctx)
			if err != nil {
				return err
			}

			job, err := c.GetJob(ctx, jobID)
			if err != nil {
				log.Error().Err(err).Str("job_id", jobID).Msg("get job failed")
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job ID (required)")
	_ = cmd.MarkFlagRequired("job-id")

	return cmd
}

func newAwaitJobCmd() *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "await-job",
		Short: "Block until every step of a job has succeeded",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := authedForAwait(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AwaitTimeout+requestTimeout)
			defer cancel()

			start := time.Now()
			job, err := await.Job(ctx, c, jobID, await.WithMaxElapsed(cfg.AwaitTimeout))
			if err != nil {
				log.Error().Err(err).Str("job_id", jobID).Dur("elapsed", time.Since(start)).Msg("await job failed")
				return err
			}
			log.Debug().Str("job_id", jobID).Dur("elapsed", time.Since(start)).Msg("await job completed")
			return printJSON(cmd.OutOrStdout(), job)
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job ID (required)")
	_ = cmd.MarkFlagRequired("job-id")

	return cmd
}

func newGetAccountsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "get-accounts",
		Short: "List a user's accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			c, _, err := newClient(ctx)
			if err != nil {
				return err
			}

			accounts, err := c.GetAccounts(ctx, userID)
			if err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("get accounts failed")
				return err
			}
			log.Debug().Str("user_id", userID).Strs("account_numbers", accounts.AccountNumbers()).Msg("get accounts completed")
			return printJSON(cmd.OutOrStdout(), accounts)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (required)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func newAwaitAccountsCmd() *cobra.Command {
	var userID string
	var accountNos []string

	cmd := &cobra.Command{
		Use:   "await-accounts",
		Short: "Block until the user's accounts are visible",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := authedForAwait(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AwaitTimeout+requestTimeout)
			defer cancel()

			ready := await.NonEmpty
			if len(accountNos) > 0 {
				ready = await.ContainsAccountNumbers(accountNos...)
			}

			start := time.Now()
			accounts, err := await.Accounts(ctx, c, userID, ready, await.WithMaxElapsed(cfg.AwaitTimeout))
			if err != nil {
				log.Error().Err(err).Str("user_id", userID).Dur("elapsed", time.Since(start)).Msg("await accounts failed")
				return err
			}
			log.Debug().Str("user_id", userID).Dur("elapsed", time.Since(start)).Msg("await accounts completed")
			return printJSON(cmd.OutOrStdout(), accounts)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (required)")
	cmd.Flags().StringSliceVar(&accountNos, "account-no", nil, "Account number that must be present (repeatable)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

// authedForAwait authenticates under its own short deadline so the token
// call does not eat into the polling budget.
func authedForAwait(cmd *cobra.Command) (*client.Client, *config.Config, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()
	return newClient(ctx)
}
