package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/bankledger/internal/infrastructure/auth"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
)

func accountCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var initial string
	createCmd := &cobra.Command{
		Use:   "create <conta>",
		Short: "Open an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			body := map[string]any{"conta": number}
			if initial != "" {
				amount, err := parseAmount(initial)
				if err != nil {
					return err
				}
				body["saldoInicial"] = amount
			}
			return call(cmd, opts, http.MethodPost, "/api/v1/accounts", body, nil)
		},
	}
	createCmd.Flags().StringVar(&initial, "initial", "", "Initial balance, e.g. 100.50")

	var limit, offset int
	historyCmd := &cobra.Command{
		Use:   "history <conta>",
		Short: "List an account's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/api/v1/accounts/%d/transactions?limit=%d&offset=%d", number, limit, offset)
			return call(cmd, opts, http.MethodGet, path, nil, nil)
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	historyCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(
		createCmd,
		moveFundsCmd(opts, "deposit", "Deposit funds into an account"),
		moveFundsCmd(opts, "withdraw", "Withdraw funds from an account"),
		&cobra.Command{
			Use:   "balance <conta>",
			Short: "Show an account's balance",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				number, err := parseNumber(args[0])
				if err != nil {
					return err
				}
				return call(cmd, opts, http.MethodGet, fmt.Sprintf("/api/v1/accounts/%d/balance", number), nil, nil)
			},
		},
		historyCmd,
	)

	return cmd
}

func moveFundsCmd(opts *clientOptions, action, short string) *cobra.Command {
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   action + " <conta> <valor>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/api/v1/accounts/%d/%s", number, action)
			headers := map[string]string{"Idempotency-Key": idempotencyKey}
			return call(cmd, opts, http.MethodPost, path, map[string]any{"valor": amount}, headers)
		},
	}
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header value")

	return cmd
}

func ledgerCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "consistency",
			Short: "Check ledger consistency",
			RunE: func(cmd *cobra.Command, args []string) error {
				raw, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, nil)
				var apiErr *apiError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
					fmt.Fprintln(cmd.OutOrStdout(), "Consistency check FAILED")
					_ = printJSON(cmd.OutOrStdout(), raw)
					return errors.New("ledger is inconsistent")
				}
				if err != nil {
					return err
				}

				var result struct {
					Consistent bool   `json:"consistent"`
					Status     string `json:"status"`
				}
				if err := json.Unmarshal(raw, &result); err != nil {
					return fmt.Errorf("failed to parse response: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), "Consistency check PASSED")
				fmt.Fprintf(cmd.OutOrStdout(), "Consistent: %v\n", result.Consistent)
				fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", result.Status)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reconcile",
			Short: "Reconcile every account against its transaction log",
			RunE: func(cmd *cobra.Command, args []string) error {
				raw, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconciliation", nil, nil)
				var apiErr *apiError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
					_ = printJSON(cmd.OutOrStdout(), raw)
					return errors.New("reconciliation found discrepancies")
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), raw)
			},
		},
	)

	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back PostgreSQL migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")

	run := func(name string, fn func(string) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: "Run migrations " + name,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if databaseURL == "" {
					return errors.New("database url is required (--database-url or DATABASE_URL)")
				}
				if err := fn(databaseURL); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: ok\n", name)
				return nil
			},
		}
	}

	cmd.AddCommand(
		run("up", postgres.RunMigrations),
		run("down", postgres.RunMigrationsDown),
	)

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret     string
		expiration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a signed JWT for the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("secret is required (--secret or JWT_SECRET)")
			}
			token, err := auth.NewJWTManager(secret, expiration).Generate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	cmd.Flags().DurationVar(&expiration, "expiration", 24*time.Hour, "Token lifetime")

	return cmd
}

func call(cmd *cobra.Command, opts *clientOptions, method, path string, body any, headers map[string]string) error {
	raw, err := newAPIClient(opts).do(cmd.Context(), method, path, body, headers)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), raw)
}

func parseNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid account number %q", s)
	}
	return n, nil
}

// parseAmount keeps the user's decimal text exact on the wire.
func parseAmount(s string) (json.Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q", s)
	}
	return json.Number(d.String()), nil
}
