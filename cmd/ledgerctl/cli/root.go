// Package cli implements the ledgerctl commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/ledgerview/internal/disclosure"
	"github.com/odyssey-erp/ledgerview/internal/fetch"
	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/ledger"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
	"github.com/odyssey-erp/ledgerview/internal/table"
)

var version = "0.1.0"

// ErrFetchFailed is returned after a fetch failure has been reported in the output.
var ErrFetchFailed = errors.New("backend read failed")

type options struct {
	backend string
	timeout time.Duration
	locale  string
	output  string
	verbose bool
}

// NewRootCommand builds the ledgerctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect ledgers and outstanding balances from the command line",
		Long:          "ledgerctl reads the same backend collections as the web pages and prints them as text or CSV tables.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", envOr("BACKEND_URL", "http://127.0.0.1:8080/api"), "backend base URL")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "backend request timeout")
	flags.StringVar(&opts.locale, "locale", os.Getenv("LOCALE"), "number locale, defaults to the process locale")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text or csv")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log backend requests to stderr")

	root.AddCommand(newLedgerCommand(opts), newOutstandingCommand(opts))
	return root
}

func newLedgerCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "ledger <character|corporation> <id>",
		Short:   "Print a running-balance ledger",
		Example: "  ledgerctl ledger character 90000001\n  ledgerctl ledger corporation 98000001 -o csv",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, ok := ledger.ParseOwner(args[0])
			if !ok {
				return fmt.Errorf("unknown ledger owner %q", args[0])
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[1], err)
			}
			f, client, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cols := ledger.Columns(f, disclosure.Policy{}, ledger.ColumnOptions{
				ShowCharacter: owner == ledger.OwnerCorporation,
			})
			tbl := table.New(cols, table.Options{})
			entries, err := fetch.Records[ledger.Entry](cmd.Context(), client, ledger.Endpoint(owner, id))
			return emit(cmd.OutOrStdout(), opts.output, tbl, ledger.Lines(entries), err)
		},
	}
}

func newOutstandingCommand(opts *options) *cobra.Command {
	var corporate, individual string
	var overdueDays int
	cmd := &cobra.Command{
		Use:   "outstanding",
		Short: "Print accounts with an outstanding balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if overdueDays < 0 {
				return fmt.Errorf("invalid --overdue-days %d", overdueDays)
			}
			links, err := outstanding.NewLinkTemplates(corporate, individual)
			if err != nil {
				return err
			}
			f, client, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cols := append(outstanding.Columns(f, links), table.Column[outstanding.Summary]{
				Title: "Link",
				Display: func(s outstanding.Summary) (string, error) {
					return links.Link(s)
				},
			})
			tbl := table.New(cols, table.Options{})
			rows, err := fetch.Records[outstanding.Summary](cmd.Context(), client, outstanding.Endpoint)
			rows = outstanding.Overdue(rows, overdueDays)
			if err := emit(cmd.OutOrStdout(), opts.output, tbl, rows, err); err != nil {
				return err
			}
			if strings.EqualFold(opts.output, "text") {
				total := outstanding.Total(rows)
				fmt.Fprintf(cmd.OutOrStdout(), "\nTotal outstanding: %s (accounts: %d)\n", f.Decimal(total.Amount), total.Accounts)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&overdueDays, "overdue-days", 0, "only list accounts outstanding for at least this many days")
	cmd.Flags().StringVar(&corporate, "corporation-link", envOr("CORPORATION_LINK_TEMPLATE", "/ledger/corporation/{id}"), "corporation detail link template")
	cmd.Flags().StringVar(&individual, "character-link", envOr("CHARACTER_LINK_TEMPLATE", "/ledger/character/{id}"), "character detail link template")
	return cmd
}

func (o *options) setup(stderr io.Writer) (*format.Formatter, *fetch.Client, error) {
	tag := format.EnvironmentLocale()
	if o.locale != "" {
		parsed, err := format.ParseLocale(o.locale)
		if err != nil {
			return nil, nil, err
		}
		tag = parsed
	}
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	client, err := fetch.NewClient(o.backend, fetch.WithTimeout(o.timeout), fetch.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return format.New(tag), client, nil
}

func emit[R any](w io.Writer, output string, tbl *table.Table[R], rows []R, fetchErr error) error {
	if fetchErr != nil {
		tbl.Fail(fetchErr)
	} else {
		tbl.Bind(rows)
	}
	switch strings.ToLower(output) {
	case "text":
		if err := tbl.WriteText(w); err != nil {
			return err
		}
	case "csv":
		if fetchErr != nil {
			break
		}
		if err := tbl.WriteCSV(w); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	if fetchErr != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, fetchErr)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
