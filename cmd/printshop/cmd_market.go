package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"printshop/cmd/printshop/ui"
	"printshop/internal/collection"
	"printshop/internal/market"
	"printshop/internal/model"

	"github.com/spf13/cobra"
)

func newMarketCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "market",
		Aliases: []string{"marketplace"},
		Short:   "Buy and sell calculators and books",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List items for sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := market.NewBoard(e.client, e.sess)
			defer b.Close()
			if err := b.Load(cmd.Context()); err != nil {
				return failure(err, b.Message())
			}
			renderBoard(cmd.OutOrStdout(), e.styles, b)
			return nil
		},
	})

	var title, price, description string
	add := &cobra.Command{
		Use:   "add",
		Short: "List a calculator or book for sale",
		Long: `Lists an item on the marketplace.

Example:
  printshop market add --title "Casio fx-991EX" --price 450 --description "Barely used"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := market.ParseNewItem(title, price, description)
			if err != nil {
				return failure(err, "")
			}
			b := market.NewBoard(e.client, e.sess)
			defer b.Close()
			if err := b.AddItem(cmd.Context(), item); err != nil {
				return failure(err, b.AddMessage())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s at %s\n", e.styles.Success.Render("Listed"), item.Title, model.Money(item.Price))
			return nil
		},
	}
	add.Flags().StringVar(&title, "title", "", "Item title (required)")
	add.Flags().StringVar(&price, "price", "", "Price in rupees (required)")
	add.Flags().StringVar(&description, "description", "", "Description")
	cmd.AddCommand(add)

	var contact, bid string
	interest := &cobra.Command{
		Use:   "interest <item-id>",
		Short: "Bid on an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			b := market.NewBoard(e.client, e.sess)
			defer b.Close()
			if err := b.Load(cmd.Context()); err != nil {
				return failure(err, b.Message())
			}
			if _, ok := findItem(b.Items(), id); !ok {
				return fmt.Errorf("item %s not found", id)
			}
			b.SetContact(id, contact)
			b.SetBid(id, bid)
			if err := b.SubmitInterest(cmd.Context(), id); err != nil {
				return failure(err, b.RecordMessage(id))
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.styles.Success.Render("Interest submitted successfully!"))
			return nil
		},
	}
	interest.Flags().StringVar(&contact, "contact", "", "Your contact details")
	interest.Flags().StringVar(&bid, "bid", "", "Bid amount in rupees")
	cmd.AddCommand(interest)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete one of your items from the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := market.NewBoard(e.client, e.sess)
			defer b.Close()
			if err := b.Load(cmd.Context()); err != nil {
				return failure(err, b.Message())
			}
			return reportDelete(cmd, e, b.Delete(cmd.Context(), args[0], e.confirmer(cmd)), b.RecordMessage(args[0]))
		},
	})
	return cmd
}

func newListingsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Your marketplace listings and the bids they received",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show your listings with interested buyers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := market.NewListings(e.client)
			defer l.Close()
			if err := l.Load(cmd.Context()); err != nil {
				return failure(err, l.Message())
			}
			renderListings(cmd.OutOrStdout(), e.styles, l.Items())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete one of your listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := market.NewListings(e.client)
			defer l.Close()
			if err := l.Load(cmd.Context()); err != nil {
				return failure(err, l.Message())
			}
			if _, ok := findItem(l.Items(), args[0]); !ok {
				return fmt.Errorf("listing %s not found", args[0])
			}
			return reportDelete(cmd, e, l.Delete(cmd.Context(), args[0], e.confirmer(cmd)), l.RecordMessage(args[0]))
		},
	})
	return cmd
}

func reportDelete(cmd *cobra.Command, e *env, err error, msg string) error {
	if errors.Is(err, collection.ErrCancelled) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	if err != nil {
		return failure(err, msg)
	}
	fmt.Fprintln(cmd.OutOrStdout(), e.styles.Success.Render("Item deleted successfully!"))
	return nil
}

func findItem(list []model.Item, id string) (model.Item, bool) {
	for _, it := range list {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}

func renderBoard(w io.Writer, styles ui.Styles, b *market.Board) {
	t := ui.NewSimpleTable("Available Items", "ID", "Title", "Price", "Listed by", "Description")
	t.Empty = "No items listed yet."
	for _, it := range b.Items() {
		seller := it.User.DisplayName()
		if b.IsOwner(it) {
			seller += " (you)"
		}
		t.AddRow(it.ID, it.Title, styles.Price.Render(model.Money(it.Price)), seller, it.Description)
	}
	fmt.Fprint(w, t.View(styles))
}

func renderListings(w io.Writer, styles ui.Styles, items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, styles.Subtitle.Render("You have not listed any items yet."))
		return
	}
	fmt.Fprintln(w, styles.Title.Render("My Listings"))
	for _, it := range items {
		fmt.Fprintf(w, "%s  %s  %s\n", styles.Bold.Render(it.Title), styles.Price.Render(model.Money(it.Price)), styles.Muted.Render(it.ID))
		if d := strings.TrimSpace(it.Description); d != "" {
			fmt.Fprintln(w, "  "+d)
		}
		t := ui.NewSimpleTable("", "Buyer", "Contact", "Bid")
		t.Empty = "  No interest yet."
		for _, in := range it.Interests {
			t.AddRow(in.User.DisplayName(), in.Contact, model.Money(in.BidAmount))
		}
		fmt.Fprint(w, t.View(styles))
		fmt.Fprintln(w)
	}
}
