package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/config"
	"github.com/shashiranjanraj/meatshop/internal/server"
)

var (
	groupFlag    string
	categoryFlag string
	queryFlag    string
	jsonFlag     bool
)

// meatshop catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List catalog products and their prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		products := services.NewCatalog().Products(services.ProductFilter{
			Group:    groupFlag,
			Category: categoryFlag,
			Query:    queryFlag,
		})
		if jsonFlag {
			return printJSON(products)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tGROUP\tCATEGORY\tVARIANTS")
		for _, p := range products {
			variants := make([]string, 0, len(p.Variants))
			for _, v := range p.Variants {
				variants = append(variants, fmt.Sprintf("%s ₹%d", v.Weight, v.Price))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Group, p.Category, strings.Join(variants, ", "))
		}
		return w.Flush()
	},
}

// meatshop orders:track <id>
var ordersTrackCmd = &cobra.Command{
	Use:   "orders:track <id>",
	Short: "Show the tracking timeline of an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
			res, err := app.Store.Track(args[0]).Await(ctx)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(res)
			}

			fmt.Printf("%s: %s\n", args[0], res.Status)
			for _, u := range res.Updates {
				fmt.Printf("  %-11s %s  %s\n", u.Status, u.Date.Format("2006-01-02 15:04"), u.Description)
			}
			return nil
		})
	},
}

// meatshop orders:advance <id> <status>
var ordersAdvanceCmd = &cobra.Command{
	Use:   "orders:advance <id> <status>",
	Short: "Move an order to its next status (processing, shipped, delivered)",
	Long: `Move an order one step along pending → processing → shipped → delivered.

Requires REPO_DRIVER=database: the command opens its own repository, and
the in-memory one would only ever hold the seeded demo order, never the
orders of a running server.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"processing", "shipped", "delivered"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSharedOrders(); err != nil {
			return err
		}
		next := models.OrderStatus(strings.ToLower(args[1]))
		return withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
			order, err := app.Store.Advance(args[0], next).Await(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", order.ID, order.Status)
			return nil
		})
	},
}

var errMemoryOrders = errors.New("orders:advance needs REPO_DRIVER=database; in-memory orders belong to the serving process")

// requireSharedOrders refuses commands that would write to a private
// in-memory order repository.
func requireSharedOrders() error {
	if config.RepoDriver() != "database" {
		return errMemoryOrders
	}
	return nil
}

func withApp(ctx context.Context, fn func(context.Context, *server.App) error) error {
	app, err := server.Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	catalogCmd.Flags().StringVarP(&groupFlag, "group", "g", "", "Main category (chicken, country-chicken, goat, ...)")
	catalogCmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Cut within the group")
	catalogCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Search product names")
	for _, c := range []*cobra.Command{catalogCmd, ordersTrackCmd} {
		c.Flags().BoolVar(&jsonFlag, "json", false, "Print JSON")
	}
}
