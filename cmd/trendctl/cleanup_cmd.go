package main

import (
	"strings"

	"trendscope-backend/dtos"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type cleanupFlags struct {
	allCategories bool
	categories    []string
	orphanedCats  bool

	allTrends      bool
	trends         []string
	orphanedTrends bool
	olderThan      string

	allColors    bool
	colors       []string
	unusedColors bool
}

// options builds the request body equivalent of the flags. Groups with
// nothing selected are left out.
func (f *cleanupFlags) options() dtos.CleanupOptions {
	var opts dtos.CleanupOptions
	if f.allCategories || f.orphanedCats || len(f.categories) > 0 {
		opts.Categories = &dtos.CategoryCleanup{All: f.allCategories, Slugs: trimAll(f.categories), Orphaned: f.orphanedCats}
	}
	if f.allTrends || f.orphanedTrends || len(f.trends) > 0 || f.olderThan != "" {
		opts.Trends = &dtos.TrendCleanup{All: f.allTrends, Titles: trimAll(f.trends), Orphaned: f.orphanedTrends, OlderThan: f.olderThan}
	}
	if f.allColors || f.unusedColors || len(f.colors) > 0 {
		opts.Colors = &dtos.ColorCleanup{All: f.allColors, Names: trimAll(f.colors), Unused: f.unusedColors}
	}
	return opts
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func newCleanupCmd(root *rootOptions) *cobra.Command {
	f := &cleanupFlags{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete categories, trends and colors in one transaction",
		Example: `  trendctl cleanup --orphaned-categories --unused-colors
  trendctl cleanup --trend "Y2K revival" --older-than 2023-01-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := f.options()
			if opts.Empty() {
				return errors.New("nothing selected for cleanup")
			}

			e, err := root.connect()
			if err != nil {
				return err
			}
			defer e.close()

			stats, err := e.bulk.Cleanup(cmd.Context(), opts)
			if err != nil {
				return describe(err)
			}
			e.tree.Invalidate(cmd.Context())
			printStats(cmd.OutOrStdout(), "deleted", stats)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.allCategories, "all-categories", false, "Delete every category (trends become orphans)")
	fl.StringSliceVar(&f.categories, "category", nil, "Delete the category with this slug (repeatable)")
	fl.BoolVar(&f.orphanedCats, "orphaned-categories", false, "Delete root categories with no children and no trends")
	fl.BoolVar(&f.allTrends, "all-trends", false, "Delete every trend")
	fl.StringSliceVar(&f.trends, "trend", nil, "Delete the trend with this title (repeatable)")
	fl.BoolVar(&f.orphanedTrends, "orphaned-trends", false, "Delete trends without a category")
	fl.StringVar(&f.olderThan, "older-than", "", "Delete trends created before this date (YYYY-MM-DD or RFC 3339)")
	fl.BoolVar(&f.allColors, "all-colors", false, "Delete every color")
	fl.StringSliceVar(&f.colors, "color", nil, "Delete the color with this name (repeatable)")
	fl.BoolVar(&f.unusedColors, "unused-colors", false, "Delete colors without analytics")
	return cmd
}
