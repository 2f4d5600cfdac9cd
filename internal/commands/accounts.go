package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/auditlog"
	"github.com/cleared-dev/ledger/internal/model"
)

func newAccountsCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect and extend the chart of accounts",
	}
	cmd.AddCommand(
		newAccountsListCommand(global),
		newAccountsTreeCommand(global),
		newAccountsAddCommand(global),
	)
	return cmd
}

func newAccountsListCommand(global *globalOptions) *cobra.Command {
	var accountType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			r, err := openRepo(cmd, global)
			if err != nil {
				return err
			}
			defer closeRepo(r, &err)

			accts, err := r.backend.ListAccounts()
			if err != nil {
				return err
			}
			h, err := accounts.New(accts)
			if err != nil {
				return err
			}

			list := h.All()
			if accountType != "" {
				t, err := model.ParseAccountType(accountType)
				if err != nil {
					return err
				}
				list = h.ByType(t)
			}
			return writeAccountList(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&accountType, "type", "", "only list accounts of this type")
	return cmd
}

func writeAccountList(w io.Writer, list []model.Account) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tTYPE\tNAME\tPARENT")
	for _, a := range list {
		parent := "-"
		if a.HasParent() {
			parent = strconv.Itoa(a.ParentID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.FullCode, a.Type, a.Name, parent)
	}
	return tw.Flush()
}

func newAccountsTreeCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the account hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			r, err := openRepo(cmd, global)
			if err != nil {
				return err
			}
			defer closeRepo(r, &err)

			accts, err := r.backend.ListAccounts()
			if err != nil {
				return err
			}
			h, err := accounts.New(accts)
			if err != nil {
				return err
			}
			for _, root := range h.Roots() {
				writeTree(cmd.OutOrStdout(), h, root, 0)
			}
			return nil
		},
	}
}

func writeTree(w io.Writer, h *accounts.Hierarchy, a model.Account, depth int) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), a)
	for _, child := range h.ChildrenOf(a.ID) {
		writeTree(w, h, child, depth+1)
	}
}

func newAccountsAddCommand(global *globalOptions) *cobra.Command {
	var (
		name        string
		accountType string
		parentID    int
		accountID   int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			t, err := model.ParseAccountType(accountType)
			if err != nil {
				return err
			}

			r, err := openRepo(cmd, global)
			if err != nil {
				return err
			}
			defer closeRepo(r, &err)

			created, err := r.backend.AddAccount(model.Account{
				ID:       accountID,
				Name:     name,
				Type:     t,
				ParentID: parentID,
			})
			if err != nil {
				return fmt.Errorf("adding account: %w", err)
			}

			if err := r.record(auditlog.ActionAddAccount, "Add account "+created.String(), ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %d (%s)\n", created.ID, created)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&accountType, "type", "", "account type: ASSETS, LIABILITIES, INCOME or EXPENSES (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().IntVar(&parentID, "parent", 0, "parent account ID")
	cmd.Flags().IntVar(&accountID, "id", 0, "account ID (default: next free ID)")

	return cmd
}
