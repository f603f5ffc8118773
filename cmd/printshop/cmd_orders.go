package main

import (
	"errors"
	"fmt"
	"io"

	"printshop/cmd/printshop/ui"
	"printshop/internal/collection"
	"printshop/internal/model"
	"printshop/internal/orders"
	"printshop/internal/session"
	"printshop/internal/upload"

	"github.com/spf13/cobra"
)

func newOrdersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Your print orders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your print orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := orders.NewDashboard(e.client, e.sess, upload.VariantAnalyze)
			defer d.Close()
			if err := d.Load(cmd.Context()); err != nil {
				return failure(err, d.Message())
			}
			renderOrders(cmd.OutOrStdout(), e.styles, "Your Print Orders", d.Orders(), false)
			return nil
		},
	})
	cmd.AddCommand(newUploadCmd(e))
	return cmd
}

func newUploadCmd(e *env) *cobra.Command {
	var analyze bool
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document and place a print order",
		Long: `Uploads a document and creates a print order for it.

With --analyze the PDF is also reviewed by the AI assistant and its feedback
is printed. Without it PDF, JPEG and PNG files are accepted.

If the file is stored but the order cannot be created, you are offered a
retry that re-sends only the order creation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variant := upload.VariantUploadThenCreate
			if analyze {
				variant = upload.VariantAnalyze
			}
			d := orders.NewDashboard(e.client, e.sess, variant)
			defer d.Close()
			flow := d.Upload()

			artifact, err := model.ArtifactFromFile(args[0])
			if err != nil {
				return err
			}
			if err := flow.Select(artifact); err != nil {
				return failure(err, flow.Message())
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Uploading %s...\n", artifact.Name)
			res, err := flow.Submit(cmd.Context())
			for err != nil {
				var orphan *upload.OrphanError
				if !errors.As(err, &orphan) {
					return failure(err, flow.Message())
				}
				fmt.Fprintln(cmd.ErrOrStderr(), e.styles.Warning.Render(flow.Message()))
				ok, cerr := e.confirmer(cmd).Confirm(cmd.Context(), "Retry creating the order?")
				if cerr != nil || !ok {
					return failure(err, flow.Message())
				}
				res, err = flow.RetryCreate(cmd.Context())
			}

			fmt.Fprintln(cmd.OutOrStdout(), e.styles.Success.Render("Order placed."))
			if res.Reference != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "File: "+res.Reference)
			}
			if res.Analysis != nil {
				fmt.Fprint(cmd.OutOrStdout(), ui.RenderAnalysis(res.Analysis, e.styles.Theme, 80))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Request AI feedback (PDF only)")
	return cmd
}

func newAdminCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}
	cmd.AddCommand(loginCmd(e, session.RoleAdmin, "login", "Log in as an administrator"))
	cmd.AddCommand(&cobra.Command{
		Use:   "orders",
		Short: "List every print order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := orders.NewAdminBoard(e.client, e.sess)
			defer b.Close()
			if err := b.Load(cmd.Context()); err != nil {
				return failure(err, b.Message())
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.styles.Bold.Render(fmt.Sprintf("Hello, %s (Admin)", b.Name())))
			renderOrders(cmd.OutOrStdout(), e.styles, "All Print Orders", b.Orders(), true)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Change an order's status (Pending, In-Progress, Completed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			status, err := model.ParseOrderStatus(args[1])
			if err != nil {
				return err
			}

			b := orders.NewAdminBoard(e.client, e.sess)
			defer b.Close()
			if err := b.Load(cmd.Context()); err != nil {
				return failure(err, b.Message())
			}
			order, ok := findOrder(b.Orders(), id)
			if !ok {
				return fmt.Errorf("order %s not found", id)
			}
			if err := b.SelectStatus(id, status); err != nil {
				return failure(err, "")
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", order.DisplayName(), order.Status, status)
			err = b.UpdateStatus(cmd.Context(), id, e.confirmer(cmd))
			if errors.Is(err, collection.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			if err != nil {
				return failure(err, b.RecordMessage(id))
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.styles.Success.Render("Status updated"))
			if updated, ok := findOrder(b.Orders(), id); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.DisplayName(),
					e.styles.StatusBadge(string(updated.Status), orders.Badge(updated.Status)))
			}
			return nil
		},
	})
	return cmd
}

func findOrder(list []model.Order, id string) (model.Order, bool) {
	for _, o := range list {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}

func renderOrders(w io.Writer, styles ui.Styles, title string, list []model.Order, withUser bool) {
	headers := []string{"ID", "File", "Status", "Placed"}
	if withUser {
		headers = append(headers, "User", "Email")
	}
	headers = append(headers, "Link")
	t := ui.NewSimpleTable(title, headers...)
	t.Empty = "No print orders yet."
	if withUser {
		t.Empty = "No print orders available."
	}
	for _, o := range list {
		placed := "-"
		if !o.CreatedAt.IsZero() {
			placed = o.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		row := []string{o.ID, o.DisplayName(), styles.StatusBadge(string(o.Status), orders.Badge(o.Status)), placed}
		if withUser {
			row = append(row, o.User.DisplayName(), o.User.DisplayEmail())
		}
		row = append(row, o.FileURL)
		t.AddRow(row...)
	}
	fmt.Fprint(w, t.View(styles))
}
