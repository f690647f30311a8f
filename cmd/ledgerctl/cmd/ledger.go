package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/client"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/report"
)

var (
	txQuery     client.TransactionQuery
	kindFilter  string
	summaryAll  bool
	summaryFrom string
	summaryTo   string
)

const requestTimeout = 10 * time.Second

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in member",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		c, err := apiClient(ctx)
		if err != nil {
			return err
		}
		me, _ := c.Identity()
		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("ID: %s\n", me.ID)
		pterm.Info.Printf("Email: %s\n", me.Email)
		pterm.Info.Printf("Role: %s\n", me.Role)
		return nil
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Revoke the current session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		c, err := apiClient(ctx)
		if err != nil {
			return err
		}
		if err := c.SignOut(ctx); err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
		pterm.Success.Println("Signed out")
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List household members",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		c, err := apiClient(ctx)
		if err != nil {
			return err
		}
		members, err := c.Members(ctx)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		table := pterm.TableData{{"ID", "NAME", "EMAIL"}}
		for _, m := range members {
			name := ""
			if m.Name != nil {
				name = *m.Name
			}
			table = append(table, []string{m.ID, name, m.Email})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "List transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		c, err := apiClient(ctx)
		if err != nil {
			return err
		}
		res, err := c.Transactions(ctx, txQuery)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		if len(res.Data) == 0 {
			pterm.Info.Println("No transactions.")
			return nil
		}
		table := pterm.TableData{{"DATE", "TYPE", "AMOUNT", "VENDOR", "DESCRIPTION", "ID"}}
		for _, t := range res.Data {
			table = append(table, []string{
				t.TransactionDate.Format(time.DateOnly),
				string(t.Type),
				t.Amount.StringFixed(2),
				deref(t.Vendor),
				deref(t.Description),
				t.ID,
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
			return err
		}
		if p := res.Pagination; p != nil {
			pterm.Info.Printf("Page %d of %d (%d total)\n", p.Page, p.TotalPages, p.Total)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		c, err := apiClient(ctx)
		if err != nil {
			return err
		}
		res, err := c.Categories(ctx, kindFilter)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		table := pterm.TableData{{"NAME", "TYPE", "COLOR", "ORDER", "ID"}}
		for _, cat := range res.Data {
			table = append(table, []string{cat.Name, string(cat.Type), cat.Color, strconv.Itoa(cat.SortOrder), cat.ID})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List vendors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		c, err := apiClient(ctx)
		if err != nil {
			return err
		}
		res, err := c.Vendors(ctx, kindFilter)
		if err != nil {
			return fmt.Errorf("failed to list vendors: %w", err)
		}
		table := pterm.TableData{{"NAME", "TYPE", "ID"}}
		for _, v := range res.Data {
			table = append(table, []string{v.Name, string(v.Type), v.ID})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show income, expense and balance per member",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		c, err := apiClient(ctx)
		if err != nil {
			return err
		}
		var s report.Summary
		if summaryAll {
			s, err = c.AllMembersSummary(ctx, summaryFrom, summaryTo)
		} else {
			var res client.Result[report.Summary]
			res, err = c.Summary(ctx, summaryFrom, summaryTo)
			s = res.Data
		}
		if err != nil {
			return fmt.Errorf("failed to load summary: %w", err)
		}
		table := pterm.TableData{{"MEMBER", "INCOME", "EXPENSE", "BALANCE", "COUNT"}}
		for _, o := range s.Owners {
			table = append(table, []string{o.UserID, o.Income.StringFixed(2), o.Expense.StringFixed(2), o.Balance.StringFixed(2), strconv.Itoa(o.Count)})
		}
		table = append(table, []string{"TOTAL", s.Income.StringFixed(2), s.Expense.StringFixed(2), s.Balance.StringFixed(2), ""})
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func init() {
	transactionsCmd.Flags().StringVar(&txQuery.StartDate, "start", "", "Start date (YYYY-MM-DD or RFC3339)")
	transactionsCmd.Flags().StringVar(&txQuery.EndDate, "end", "", "End date, inclusive (YYYY-MM-DD or RFC3339)")
	transactionsCmd.Flags().StringVar(&txQuery.Type, "type", "", "INCOME or EXPENSE")
	transactionsCmd.Flags().StringVar(&txQuery.CategoryID, "category", "", "Category id")
	transactionsCmd.Flags().IntVar(&txQuery.Page, "page", 1, "Page number")
	transactionsCmd.Flags().IntVar(&txQuery.Limit, "limit", 20, "Page size (max 100)")

	categoriesCmd.Flags().StringVar(&kindFilter, "type", "", "INCOME or EXPENSE")
	vendorsCmd.Flags().StringVar(&kindFilter, "type", "", "Vendor type")

	summaryCmd.Flags().BoolVar(&summaryAll, "all", false, "All members (ADMIN)")
	summaryCmd.Flags().StringVar(&summaryFrom, "start", "", "Start date")
	summaryCmd.Flags().StringVar(&summaryTo, "end", "", "End date, inclusive")
}
