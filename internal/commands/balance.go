package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/balance"
	"github.com/cleared-dev/ledger/internal/money"
)

func newBalanceCommand(global *globalOptions) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "balance [account-id]",
		Short: "Show the roll-up balance of an account, or of every top-level account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var rootIDs []int
			if len(args) == 1 {
				accountID, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid account ID %q", args[0])
				}
				rootIDs = append(rootIDs, accountID)
			}

			r, err := openRepo(cmd, global)
			if err != nil {
				return err
			}
			defer closeRepo(r, &err)

			l, err := r.ledger()
			if err != nil {
				return err
			}

			if len(rootIDs) == 1 && !tree {
				acct, ok := l.Hierarchy().Get(rootIDs[0])
				if !ok {
					return fmt.Errorf("account %d: %w", rootIDs[0], accounts.ErrAccountNotFound)
				}
				bal, err := l.BalanceOf(acct.ID)
				if err != nil {
					return err
				}
				writeBalance(cmd.OutOrStdout(), acct.String(), bal)
				return nil
			}

			lines, err := l.Report(rootIDs...)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), l.Hierarchy(), lines)
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "show every sub-account's balance")
	return cmd
}

func writeBalance(w io.Writer, title string, bal money.Balance) {
	fmt.Fprintln(w, title)
	for _, m := range bal.Moneys() {
		fmt.Fprintf(w, "  %s  %s\n", m.Currency(), m)
	}
}

func writeReport(w io.Writer, h *accounts.Hierarchy, lines []balance.Line) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(lines) == 0 {
		return nil
	}

	currencies := lines[0].Balance.Currencies()
	header := []string{"ACCOUNT"}
	for _, c := range currencies {
		header = append(header, string(c))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, line := range lines {
		acct, _ := h.Get(line.AccountID)
		cols := []string{strings.Repeat("  ", line.Depth) + acct.String()}
		for _, c := range currencies {
			cols = append(cols, line.Balance.Get(c).StringFixed(2))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t")+"\t")
	}
	return tw.Flush()
}
