package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nutriplan/pkg/domain"
)

type entryFlags struct {
	name     string
	meal     string
	time     string
	calories float64
	protein  float64
	carbs    float64
	fat      float64
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "food name")
	cmd.Flags().StringVar(&f.meal, "meal", string(domain.MealSnack), "meal type: breakfast, lunch, dinner or snack")
	cmd.Flags().StringVar(&f.time, "time", "", "time of day, HH:MM (default now)")
	cmd.Flags().Float64Var(&f.calories, "calories", 0, "calories")
	cmd.Flags().Float64Var(&f.protein, "protein", 0, "protein in grams")
	cmd.Flags().Float64Var(&f.carbs, "carbs", 0, "carbohydrates in grams")
	cmd.Flags().Float64Var(&f.fat, "fat", 0, "fat in grams")
}

// entry builds a FoodEntry; macros are set only when their flag was given.
func (f *entryFlags) entry(cmd *cobra.Command, c *cli) domain.FoodEntry {
	e := domain.FoodEntry{Name: f.name, Calories: f.calories, Time: f.time, MealType: domain.MealType(f.meal)}
	if e.Time == "" {
		e.Time = c.now().Format("15:04")
	}
	if cmd.Flags().Changed("protein") {
		e.Protein = domain.Float(f.protein)
	}
	if cmd.Flags().Changed("carbs") {
		e.Carbs = domain.Float(f.carbs)
	}
	if cmd.Flags().Changed("fat") {
		e.Fat = domain.Float(f.fat)
	}
	return e
}

type target struct {
	date  string
	index int
	id    string
}

func (t *target) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.date, "date", "", "date, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&t.index, "index", -1, "entry position within the day")
	cmd.Flags().StringVar(&t.id, "id", "", "entry id")
}

func (t *target) validate() error {
	if (t.index >= 0) == (t.id != "") {
		return errors.New("exactly one of --index or --id is required")
	}
	return nil
}

func newLogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "log", Short: "Record and review food entries"}
	cmd.AddCommand(newLogAddCmd(c), newLogRemoveCmd(c), newLogUpdateCmd(c), newLogShowCmd(c), newLogRangeCmd(c), newLogClearCmd(c))
	return cmd
}

func newLogAddCmd(c *cli) *cobra.Command {
	var f entryFlags
	var date string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a food entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date == "" {
				date = c.today()
			}
			stored, err := c.app.FoodLog.AddFoodEntry(cmd.Context(), date, f.entry(cmd, c))
			if err != nil {
				return err
			}
			log, _ := c.app.FoodLog.GetDailyLog(date)
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) to %s, day total %s kcal\n", stored.Name, stored.ID, date, formatNumber(log.TotalCalories))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogRemoveCmd(c *cli) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Remove a food entry by index or id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := t.validate(); err != nil {
				return err
			}
			if t.date == "" {
				t.date = c.today()
			}
			var ok bool
			var err error
			if t.id != "" {
				ok, err = c.app.FoodLog.RemoveFoodEntryByID(cmd.Context(), t.date, t.id)
			} else {
				ok, err = c.app.FoodLog.RemoveFoodEntry(cmd.Context(), t.date, t.index)
			}
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no matching entry on %s: %w", t.date, domain.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed entry from %s\n", t.date)
			return nil
		},
	}
	t.register(cmd)
	return cmd
}

func newLogUpdateCmd(c *cli) *cobra.Command {
	var t target
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace a food entry by index or id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := t.validate(); err != nil {
				return err
			}
			if t.date == "" {
				t.date = c.today()
			}
			var ok bool
			var err error
			if t.id != "" {
				ok, err = c.app.FoodLog.UpdateFoodEntryByID(cmd.Context(), t.date, t.id, f.entry(cmd, c))
			} else {
				ok, err = c.app.FoodLog.UpdateFoodEntry(cmd.Context(), t.date, t.index, f.entry(cmd, c))
			}
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no matching entry on %s: %w", t.date, domain.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated entry on %s\n", t.date)
			return nil
		},
	}
	t.register(cmd)
	f.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogShowCmd(c *cli) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one day grouped by meal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date == "" {
				date = c.today()
			}
			log, ok := c.app.FoodLog.GetDailyLog(date)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing logged on %s\n", date)
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\n", date)
			for _, g := range c.app.FoodLog.EntriesByMealType(date) {
				fmt.Fprintf(w, "%s\n", g.MealType)
				for _, ie := range g.Entries {
					e := ie.Entry
					fmt.Fprintf(w, "  [%d]\t%s\t%s\t%s kcal\t%s\n", ie.Index, e.Time, e.Name, formatNumber(e.Calories), e.ID)
				}
			}
			fmt.Fprintf(w, "total\t%s kcal\tP %sg\tC %sg\tF %sg\n",
				formatNumber(log.TotalCalories), formatNumber(log.TotalProtein), formatNumber(log.TotalCarbs), formatNumber(log.TotalFat))
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default today)")
	return cmd
}

func newLogRangeCmd(c *cli) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Show daily totals for a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := c.app.FoodLog.DailyLogsInRange(from, to)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "date\tentries\tkcal\tprotein\tcarbs\tfat")
			for _, d := range logs {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", d.Date, len(d.Log.Meals),
					formatNumber(d.Log.TotalCalories), formatNumber(d.Log.TotalProtein), formatNumber(d.Log.TotalCarbs), formatNumber(d.Log.TotalFat))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newLogClearCmd(c *cli) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "clear-day",
		Short: "Delete everything logged on a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date == "" {
				date = c.today()
			}
			if !c.app.FoodLog.ClearDay(cmd.Context(), date) {
				return fmt.Errorf("nothing logged on %s: %w", date, domain.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default today)")
	return cmd
}
