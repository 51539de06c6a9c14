package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/promo-search-engine/internal/linebot"
	"github.com/gcbaptista/promo-search-engine/internal/session"
	"github.com/gcbaptista/promo-search-engine/internal/source"
	"github.com/gcbaptista/promo-search-engine/services"
)

const cliUserID = "cli"

func searchCMD(cfgPath *string) *cobra.Command {
	var page int
	var search = &cobra.Command{
		Use:   "search <query>",
		Short: "Run one query against the data file and print the ranked results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer closer.Close()

			eng, err := newEngine(cfg, session.NewMemoryStore(cfg.Session.Timeout), nil)
			if err != nil {
				return err
			}
			records, err := source.NewFileSource(cfg.Data.File).Fetch(cmd.Context())
			if err != nil {
				return err
			}
			if err := eng.Load(records); err != nil {
				return err
			}

			ctx := cmd.Context()
			result, err := eng.Search(ctx, cliUserID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if page > 1 {
				result, err = eng.Search(ctx, cliUserID, fmt.Sprintf("page %d", page))
				if err != nil {
					return err
				}
			}

			printPage(cmd.OutOrStdout(), result)
			return nil
		},
	}
	search.Flags().IntVarP(&page, "page", "p", 1, "result page to print")
	return search
}

func printPage(w io.Writer, page services.SearchPage) {
	if len(page.Results) == 0 {
		fmt.Fprintf(w, "No promotions found (%s)\n", page.Outcome)
		return
	}

	fuzzy := ""
	if page.Fuzzy {
		fuzzy = ", fuzzy"
	}
	fmt.Fprintf(w, "%d results for %q%s, page %d/%d\n\n", page.Total, page.Query, fuzzy, page.Page, page.TotalPages)
	for i, hit := range page.Results {
		fmt.Fprintf(w, "%3d. [%4d] %s (id %d)\n", page.PageStart()+i, hit.Score, linebot.ShortTitle(hit.Title), hit.ID)
		if hit.DurationLabel != "" {
			fmt.Fprintf(w, "            %s\n", hit.DurationLabel)
		}
	}
}
