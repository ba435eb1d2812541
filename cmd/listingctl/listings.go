package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/interfaces/http/dto"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	prices = message.NewPrinter(language.Russian)
)

func newListCmd(a *app) *cobra.Command {
	var (
		q      dto.BrowseQuery
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List listings, newest first, narrowed by filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.listings(cmd.Context())
			if err != nil {
				return err
			}
			res := svc.Browse(cmd.Context(), q.Criteria())
			if res.Stale {
				return errors.New("listing store is unavailable")
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			writeTable(cmd.OutOrStdout(), res.Items)
			printf(cmd.OutOrStdout(), "%d of %d listings\n", res.Matched, res.Total)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&q.Query, "query", "q", "", "Case-insensitive name substring")
	f.StringVar(&q.District, "district", "", "District")
	f.StringVar(&q.Construction, "construction", "", "Construction type")
	f.StringVar(&q.Class, "class", "", "Housing class")
	f.StringVar(&q.FinishState, "state", "", "Finish state")
	f.StringVar(&q.MinPrice, "min-price", "", "Lowest price")
	f.StringVar(&q.MaxPrice, "max-price", "", "Highest price")
	f.BoolVar(&q.Ready, "ready", false, "Only ready listings")
	f.BoolVar(&q.Commerce, "commerce", false, "Only listings with commercial premises")
	f.BoolVar(&q.Parking, "parking", false, "Only listings with parking")
	f.StringSliceVar(&q.Payments, "payment", nil, "Required payment methods (repeatable)")
	f.BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one listing as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.listings(cmd.Context())
			if err != nil {
				return err
			}
			l, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), l)
		},
	}
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Replace the comment of a listing; empty text clears it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.listings(cmd.Context())
			if err != nil {
				return err
			}
			l, err := svc.UpdateComment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Updated comment of %s\n", l.ID)
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated test listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.listings(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Seed(cmd.Context(), count)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Seeded %d of %d listings (%d failed)\n", res.Succeeded, res.Requested, res.Failed)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of listings (default 20)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.listings(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newPurgeCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every listing in the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all listings without --yes")
			}
			svc, err := a.listings(cmd.Context())
			if err != nil {
				return err
			}
			res := svc.DeleteAll(cmd.Context())
			printf(cmd.OutOrStdout(), "Deleted %d of %d listings (%d failed)\n", res.Succeeded, res.Requested, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d deletions failed", res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting everything")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, items []listing.Listing) {
	rows := make([][]string, 0, len(items))
	for _, l := range items {
		rows = append(rows, []string{
			l.ID,
			l.Name,
			string(l.District),
			string(l.Class),
			prices.Sprintf("%d", l.Price.IntPart()),
			strconv.Itoa(l.Discount) + "%",
			yesNo(l.Ready),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "DISTRICT", "CLASS", "PRICE", "DISCOUNT", "READY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	printf(w, "%s\n", t.Render())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
