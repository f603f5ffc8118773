package main

import (
	"fmt"

	"printshop/internal/market"
	"printshop/internal/model"
	"printshop/internal/orders"
	"printshop/internal/session"
	"printshop/internal/upload"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newOverviewCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Summarize orders, the marketplace and your listings",
		Long: `Loads your orders (every order for administrators), the marketplace board
and your own listings concurrently and prints a short summary of each.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := e.sess.Current()

			var (
				orderList []model.Order
				ordersMsg string
				items     []model.Item
				itemsMsg  string
				mine      []model.Item
				mineMsg   string
			)

			// Each view keeps its own error; one failing section does not hide the others.
			var g errgroup.Group
			g.Go(func() error {
				if id.Role == session.RoleAdmin {
					b := orders.NewAdminBoard(e.client, e.sess)
					defer b.Close()
					if err := b.Load(ctx); err != nil {
						ordersMsg = b.Message()
						return nil
					}
					orderList = b.Orders()
					return nil
				}
				d := orders.NewDashboard(e.client, e.sess, upload.VariantAnalyze)
				defer d.Close()
				if err := d.Load(ctx); err != nil {
					ordersMsg = d.Message()
					return nil
				}
				orderList = d.Orders()
				return nil
			})
			g.Go(func() error {
				b := market.NewBoard(e.client, e.sess)
				defer b.Close()
				if err := b.Load(ctx); err != nil {
					itemsMsg = b.Message()
					return nil
				}
				items = b.Items()
				return nil
			})
			g.Go(func() error {
				l := market.NewListings(e.client)
				defer l.Close()
				if err := l.Load(ctx); err != nil {
					mineMsg = l.Message()
					return nil
				}
				mine = l.Items()
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := e.styles
			if id.IsZero() {
				fmt.Fprintln(w, s.Muted.Render("Not logged in."))
			} else {
				fmt.Fprintf(w, "%s %s\n", s.Title.Render("Welcome, "+id.Name), s.Muted.Render("("+string(id.Role)+")"))
			}

			fmt.Fprintln(w, s.Bold.Render("Orders"))
			if ordersMsg != "" {
				fmt.Fprintln(w, "  "+s.Error.Render(ordersMsg))
			} else {
				counts := map[model.OrderStatus]int{}
				for _, o := range orderList {
					counts[o.Status]++
				}
				fmt.Fprintf(w, "  %d total", len(orderList))
				for _, st := range model.OrderStatuses {
					fmt.Fprintf(w, ", %s", s.StatusBadge(fmt.Sprintf("%s %d", st, counts[st]), orders.Badge(st)))
				}
				fmt.Fprintln(w)
			}

			fmt.Fprintln(w, s.Bold.Render("Marketplace"))
			if itemsMsg != "" {
				fmt.Fprintln(w, "  "+s.Error.Render(itemsMsg))
			} else {
				fmt.Fprintf(w, "  %d items for sale\n", len(items))
			}

			fmt.Fprintln(w, s.Bold.Render("My Listings"))
			if mineMsg != "" {
				fmt.Fprintln(w, "  "+s.Error.Render(mineMsg))
			} else {
				bids := 0
				for _, it := range mine {
					bids += len(it.Interests)
				}
				fmt.Fprintf(w, "  %d listings, %d bids received\n", len(mine), bids)
			}
			return nil
		},
	}
}
