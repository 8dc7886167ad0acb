package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(
		listCategoriesCmd(a),
		addCategoryCmd(a),
		hideCategoryCmd(a, true),
		hideCategoryCmd(a, false),
	)
	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			categories, err := s.ListCategories(all)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(categories) == 0 {
				fmt.Fprintln(out, "No categories. Use 'dayslice categories add' to create one.")
				return nil
			}

			color := false
			if f, ok := out.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
				color = isTerminal(f)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"ID", "", "Label", "Color", "Order", "Hidden"})
			for _, c := range categories {
				swatch := c.Color
				if color && c.Color != "" {
					swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("██ " + c.Color)
				}
				hidden := ""
				if c.Hidden {
					hidden = "yes"
				}
				tw.AppendRow(table.Row{c.ID, c.Icon, c.Label, swatch, c.Order, hidden})
			}
			_ = tw.Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include hidden categories")
	return cmd
}

func addCategoryCmd(a *app) *cobra.Command {
	var label, icon, color string

	cmd := &cobra.Command{
		Use:   "add VALUE",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.CreateCategory(args[0], label, icon, color)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", c.Icon, c.Label, c.ID)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&label, "label", "l", "", "display label (default: the value)")
	flags.StringVarP(&icon, "icon", "i", "", "icon (default: 📋)")
	flags.StringVarP(&color, "color", "c", "", "hex colour such as #3b82f6 (default: from the palette)")
	return cmd
}

func hideCategoryCmd(a *app, hide bool) *cobra.Command {
	use, short, verb := "hide ID", "Hide a category from pickers", "Hid"
	if !hide {
		use, short, verb = "unhide ID", "Show a hidden category again", "Restored"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SetCategoryHidden(args[0], hide); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, args[0])
			return nil
		},
	}
}
