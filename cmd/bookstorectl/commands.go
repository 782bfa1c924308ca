package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"bookstore/internal/app"
	"bookstore/internal/client"
	"bookstore/internal/dto"
	"bookstore/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app.App) error {
				if err := client.Migrate(a.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
				return nil
			})
		},
	}
}

var sampleBooks = []dto.BookRequest{
	{Title: "The Go Programming Language", Author: "Alan Donovan", Price: decimal.RequireFromString("39.99"), Stock: 20},
	{Title: "Dune", Author: "Frank Herbert", Price: decimal.RequireFromString("400.00"), Stock: 5},
	{Title: "Pride and Prejudice", Author: "Jane Austen", Price: decimal.RequireFromString("100.00"), Stock: 5},
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample books into an empty catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app.App) error {
				existing, err := a.Books.List(cmd.Context(), 1, 0)
				if err != nil {
					return err
				}
				if len(existing) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog already has books, nothing to seed")
					return nil
				}

				for i := range sampleBooks {
					book, err := a.Services.Books.Create(cmd.Context(), &sampleBooks[i])
					if err != nil {
						return fmt.Errorf("seed %q: %w", sampleBooks[i].Title, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Seeded book %d: %s\n", book.ID, book.Title)
				}
				return nil
			})
		},
	}
}

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one order status reconciliation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app.App) error {
				res, err := a.Reconciler.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				rows := [][]string{
					{"delivered", strconv.FormatInt(res.Delivered, 10)},
					{"rentals completed", strconv.FormatInt(res.Completed, 10)},
					{"cod settled", strconv.FormatInt(res.SettledCOD, 10)},
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Transition", "Orders"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func newBooksCommand(ctx *commandContext) *cobra.Command {
	booksCmd := &cobra.Command{
		Use:   "books",
		Short: "Inspect the catalog",
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app.App) error {
				books, err := a.Services.Books.List(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				if len(books) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No books")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Author", "Price", "Stock", "Content"},
					bookRows(books),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of books")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Number of books to skip")

	booksCmd.AddCommand(listCmd)
	return booksCmd
}

func bookRows(books []*model.Book) [][]string {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		content := "-"
		if b.HasContent() {
			content = b.MediaKind
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(b.ID), 10),
			b.Title,
			b.Author,
			b.Price.StringFixed(2),
			strconv.Itoa(b.Stock),
			content,
		})
	}
	return rows
}

func newOrdersCommand(ctx *commandContext) *cobra.Command {
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect orders",
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent orders with their derived status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app.App) error {
				orders, err := a.Orders.List(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				if len(orders) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No orders")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "User", "Mode", "Items", "Total", "Status", "Effective", "Payment"},
					orderRows(orders, time.Now().UTC()),
					[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of orders")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Number of orders to skip")

	ordersCmd.AddCommand(listCmd)
	return ordersCmd
}

func orderRows(orders []*model.Order, now time.Time) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		items := 0
		for _, it := range o.Items {
			items += it.Quantity
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(o.ID), 10),
			strconv.FormatUint(uint64(o.UserID), 10),
			string(o.Mode),
			strconv.Itoa(items),
			o.Total.StringFixed(2),
			string(o.Status),
			string(model.EffectiveStatus(o, now)),
			fmt.Sprintf("%s/%s", o.PaymentMethod, o.PaymentStatus),
		})
	}
	return rows
}

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app.App) error {
				err := a.Users.SetRole(cmd.Context(), args[0], model.RoleAdmin)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("no account with email %s", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
				return nil
			})
		},
	})

	return usersCmd
}
