package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"budget/internal/core"
	"budget/internal/services"

	"github.com/spf13/cobra"
)

// periodFlag resolves --month against the service clock; empty means the
// current month.
func periodFlag(svc *services.BudgetService, month string) (core.Period, error) {
	current := svc.CurrentPeriod()
	if month == "" {
		return current, nil
	}
	p, err := core.ParseMonth(month, current.Year)
	if err != nil {
		return core.Period{}, fmt.Errorf("invalid --month %q: %w", month, err)
	}
	return p, nil
}

func overviewCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print the budget overview for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := newService(store)
			p, err := periodFlag(svc, month)
			if err != nil {
				return err
			}
			ov, err := svc.Overview(ctx, p)
			if err != nil {
				return fmt.Errorf("failed to load overview: %w", err)
			}
			writeOverview(cmd.OutOrStdout(), ov)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM, a number or a name (default: current month)")
	return cmd
}

func writeOverview(out io.Writer, ov core.Overview) {
	fmt.Fprintf(out, "Budget for %s\n\n", ov.Period)
	writeProgress(out, ov.Categories)

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total budget\t%s\n", ov.TotalCap)
	fmt.Fprintf(w, "Spent\t%s\n", ov.TotalSpent)
	fmt.Fprintf(w, "Remaining\t%s\n", ov.Remaining)
	fmt.Fprintf(w, "Year to date\t%s\n", ov.YearToDate)
	w.Flush()

	if len(ov.Recent) == 0 {
		return
	}
	fmt.Fprintln(out, "\nRecent expenses")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range ov.Recent {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Date, e.Description, e.Amount, e.Category)
	}
	w.Flush()
}

func writeProgress(out io.Writer, cats []core.CategoryProgress) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", "ID", "Category", "Budget", "Spent", "Remaining")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 4), strings.Repeat("-", 16),
		strings.Repeat("-", 8), strings.Repeat("-", 8), strings.Repeat("-", 9))
	for _, c := range cats {
		remaining := c.Remaining.String()
		if c.Over() {
			remaining += " (over)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.MaxAmount, c.Spent, remaining)
	}
}

func categoriesCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with their spending for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := newService(store)
			p, err := periodFlag(svc, month)
			if err != nil {
				return err
			}
			progress, err := svc.CategoryProgress(ctx, p)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			if len(progress) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories found. Use 'budgetctl seed' to load sample data.")
				return nil
			}
			writeProgress(cmd.OutOrStdout(), progress)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM, a number or a name (default: current month)")
	return cmd
}
