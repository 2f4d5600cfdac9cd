package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/auditlog"
	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/importer"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
)

func newTxCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Post and check transactions",
	}
	cmd.AddCommand(
		newTxPostCommand(global),
		newTxCheckCommand(global),
		newTxImportCommand(global),
	)
	return cmd
}

func newTxPostCommand(global *globalOptions) *cobra.Command {
	var (
		txType      string
		description string
		legs        []string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Validate and record a transaction",
		Example: `  ledger tx post --type income --desc "Consulting" \
    --leg 10:USD:150.00 --leg 30:USD:-150.00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			params := journal.PostParams{Description: description}
			params.Type, err = model.ParseTransactionType(txType)
			if err != nil {
				return err
			}
			for _, raw := range legs {
				leg, err := parseLeg(raw)
				if err != nil {
					return err
				}
				params.Legs = append(params.Legs, leg)
			}

			r, err := openRepo(cmd, global)
			if err != nil {
				return err
			}
			defer closeRepo(r, &err)

			tx, err := r.backend.Post(params)
			if err != nil {
				return err
			}

			txID := id.FormatTransactionID(tx.ID)
			details := fmt.Sprintf("Post %s %s", txID, tx.Description)
			if err := r.record(auditlog.ActionPostTransaction, strings.TrimSpace(details), txID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted transaction %s (%d legs)\n", txID, len(tx.Entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&txType, "type", "", "transaction type: invoice, income, expense or bill (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&description, "desc", "", "description")
	cmd.Flags().StringArrayVar(&legs, "leg", nil, "leg as ACCOUNT:CURRENCY:AMOUNT, repeatable")

	return cmd
}

// parseLeg parses "ACCOUNT:CURRENCY:AMOUNT", e.g. "10:USD:-42.50".
func parseLeg(raw string) (journal.Leg, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return journal.Leg{}, fmt.Errorf("invalid leg %q: want ACCOUNT:CURRENCY:AMOUNT", raw)
	}
	accountID, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return journal.Leg{}, fmt.Errorf("invalid leg %q: account: %w", raw, err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return journal.Leg{}, fmt.Errorf("invalid leg %q: amount: %w", raw, err)
	}
	return journal.Leg{
		AccountID: accountID,
		Currency:  model.Currency(strings.ToUpper(strings.TrimSpace(parts[1]))),
		Amount:    amount,
	}, nil
}

func newTxCheckCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Re-validate every transaction in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			r, err := openRepo(cmd, global)
			if err != nil {
				return err
			}
			defer closeRepo(r, &err)

			l, err := r.ledger()
			if err != nil {
				return err
			}
			txs, err := r.backend.Transactions()
			if err != nil {
				return err
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, tx := range txs {
				if verr := l.Validate(tx); verr != nil {
					failed++
					fmt.Fprintf(out, "%s:\n", id.FormatTransactionID(tx.ID))
					for _, line := range strings.Split(verr.Error(), "\n") {
						fmt.Fprintf(out, "  %s\n", line)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d transactions: %w", failed, len(txs), errInvalidJournal)
			}
			fmt.Fprintf(out, "All %d transactions balance\n", len(txs))
			return nil
		},
	}
}

func newTxImportCommand(global *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Post every transaction in the CSV files under import/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q (have %s)", format,
					strings.Join(importer.DefaultRegistry().Formats(), ", "))
			}

			r, err := openRepo(cmd, global)
			if err != nil {
				return err
			}
			defer closeRepo(r, &err)

			files, err := importer.Scan(r.root)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import")
				return nil
			}

			l, err := r.ledger()
			if err != nil {
				return err
			}
			for _, file := range files {
				n, err := importFile(r, l.Validate, parser, file)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions from %s\n", n, file.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "legs", "file format")
	return cmd
}

// importFile checks every transaction in file before posting any of them, so
// one bad transaction leaves the journal untouched.
func importFile(r *repo, validate func(model.Transaction) error, parser importer.Parser, file importer.FileInfo) (int, error) {
	batch, err := importer.ParseFile(parser, file.Path)
	if err != nil {
		return 0, err
	}

	for i, params := range batch {
		tx := model.Transaction{Type: params.Type, Description: params.Description}
		for _, leg := range params.Legs {
			tx.Entries = append(tx.Entries, model.JournalEntry{AccountID: leg.AccountID, Currency: leg.Currency, Amount: leg.Amount})
		}
		if err := validate(tx); err != nil {
			return 0, fmt.Errorf("%s: transaction %d: %w", file.Name, i+1, err)
		}
	}

	first, last := "", ""
	for _, params := range batch {
		tx, err := r.backend.Post(params)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", file.Name, err)
		}
		if first == "" {
			first = id.FormatTransactionID(tx.ID)
		}
		last = id.FormatTransactionID(tx.ID)
	}

	if err := importer.MarkProcessed(r.root, file.Name); err != nil {
		return 0, err
	}
	details := fmt.Sprintf("Import %s (%d transactions)", file.Name, len(batch))
	if len(batch) > 0 {
		details += fmt.Sprintf(" %s..%s", first, last)
	}
	if err := r.record(auditlog.ActionImport, details, first); err != nil {
		return 0, err
	}
	return len(batch), nil
}
