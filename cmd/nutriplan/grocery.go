package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nutriplan/internal/importer"
	"nutriplan/internal/ingredient"
	"nutriplan/pkg/domain"
)

func newGroceryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "grocery", Short: "Manage the grocery list"}
	cmd.AddCommand(
		newGroceryAddCmd(c),
		newGroceryRemoveCmd(c),
		newGroceryToggleCmd(c),
		newGroceryClearCmd(c),
		newGroceryClearCheckedCmd(c),
		newGroceryListCmd(c),
		newGroceryImportCmd(c),
	)
	return cmd
}

func newGroceryAddCmd(c *cli) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Append an item to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if category == "" {
				category = ingredient.Categorize(name)
			}
			item := c.app.Grocery.AddItem(cmd.Context(), domain.GroceryItem{Name: name, Category: category})
			fmt.Fprintf(cmd.OutOrStdout(), "added %s [%s] %s\n", item.Name, item.Category, item.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category (default derived from the name)")
	return cmd
}

func newGroceryRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.app.Grocery.RemoveItem(cmd.Context(), args[0]) {
				return fmt.Errorf("item %s: %w", args[0], domain.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func newGroceryToggleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip the checked flag of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.app.Grocery.ToggleChecked(cmd.Context(), args[0]) {
				return fmt.Errorf("item %s: %w", args[0], domain.ErrNotFound)
			}
			item, _ := c.app.Grocery.Get(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s checked=%t\n", item.Name, item.Checked)
			return nil
		},
	}
}

func newGroceryClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.Grocery.ClearGroceryList(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "grocery list cleared")
			return nil
		},
	}
}

func newGroceryClearCheckedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-checked",
		Short: "Drop checked items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n := c.app.Grocery.ClearCheckedItems(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d checked items\n", n)
			return nil
		},
	}
}

func newGroceryListCmd(c *cli) *cobra.Command {
	var byCategory bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := c.app.Grocery.Items()
			if byCategory {
				items = c.app.Grocery.SortByCategory()
			}
			return printItems(cmd, items)
		},
	}
	cmd.Flags().BoolVar(&byCategory, "by-category", false, "order by category")
	return cmd
}

func newGroceryImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Add the ingredients of recipe files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				items, err := importer.ImportFile(cmd.Context(), c.app.Grocery, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items\n", path, len(items))
			}
			return nil
		},
	}
}

func printItems(cmd *cobra.Command, items []domain.GroceryItem) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, it := range items {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		qty := ""
		if it.Quantity != nil {
			qty = strings.TrimSpace(formatNumber(*it.Quantity) + " " + it.Unit)
		}
		fmt.Fprintf(w, "[%s]\t%s\t%s\t%s\t%s\n", mark, it.Category, it.Name, qty, it.ID)
	}
	return w.Flush()
}

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
