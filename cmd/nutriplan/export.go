package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"nutriplan/internal/export"
)

type exportFlags struct {
	format  string
	out     string
	publish bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", string(export.FormatCSV), "csv or json")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "store in the configured blob store")
	cmd.MarkFlagsMutuallyExclusive("out", "publish")
}

// writer returns the destination for a local export and a func closing it.
func (f *exportFlags) writer(cmd *cobra.Command) (io.Writer, func() error, error) {
	if f.out == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(f.out)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

func newExportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "export", Short: "Export the food log or grocery list"}
	cmd.AddCommand(newExportLogsCmd(c), newExportGroceryCmd(c))
	return cmd
}

func newExportLogsCmd(c *cli) *cobra.Command {
	var f exportFlags
	var from, to string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Export daily logs in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(f.format)
			if err != nil {
				return err
			}
			if to == "" {
				to = c.today()
			}
			if from == "" {
				from = to
			}
			logs, err := c.app.FoodLog.DailyLogsInRange(from, to)
			if err != nil {
				return err
			}
			if f.publish {
				pub, err := c.app.Publisher(cmd.Context())
				if err != nil {
					return err
				}
				res, err := pub.PublishLogs(cmd.Context(), format, from, to, logs)
				if err != nil {
					return err
				}
				printPublished(cmd, res)
				return nil
			}
			w, closeFn, err := f.writer(cmd)
			if err != nil {
				return err
			}
			if err := export.WriteLogs(w, format, logs, c.now().UTC()); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "first date (default --to)")
	cmd.Flags().StringVar(&to, "to", "", "last date (default today)")
	return cmd
}

func newExportGroceryCmd(c *cli) *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "grocery",
		Short: "Export the grocery list ordered by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(f.format)
			if err != nil {
				return err
			}
			items := c.app.Grocery.SortByCategory()
			if f.publish {
				pub, err := c.app.Publisher(cmd.Context())
				if err != nil {
					return err
				}
				res, err := pub.PublishGrocery(cmd.Context(), format, items)
				if err != nil {
					return err
				}
				printPublished(cmd, res)
				return nil
			}
			w, closeFn, err := f.writer(cmd)
			if err != nil {
				return err
			}
			if err := export.WriteGrocery(w, format, items, c.now().UTC()); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	f.register(cmd)
	return cmd
}

func printPublished(cmd *cobra.Command, res export.Published) {
	fmt.Fprintf(cmd.OutOrStdout(), "published %s (%d bytes)\n", res.Info.Key, res.Info.Size)
	if res.URL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.URL)
	}
}
