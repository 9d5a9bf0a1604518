package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tropicaldog17/folio/internal/app"
	"github.com/tropicaldog17/folio/internal/config"
	"github.com/tropicaldog17/folio/internal/legacy"
	"github.com/tropicaldog17/folio/internal/logger"
	"github.com/tropicaldog17/folio/internal/models"
	"github.com/tropicaldog17/folio/internal/report"
)

var (
	configPath string
	plain      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "folioctl",
		Short: "Track portfolio positions and their prices",
		Long: `folioctl manages the positions of a personal portfolio, records price
snapshots by hand or from the equity and crypto feeds, and shows the
current valuation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to $FOLIO_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "Print raw markdown instead of styled output")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(overviewCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(priceCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(importLegacyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp loads the configuration, opens the store and runs fn.
func withApp(fn func(a *app.App) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// the CLI keeps its own output clean; only warnings go to stderr
	level := cfg.Log.Level
	if level == "" {
		level = "warn"
	}
	zl, err := logger.New(cfg.Log.Env, level)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, zl)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printMarkdown(md string) {
	if plain {
		fmt.Print(md)
		return
	}
	fmt.Print(report.Render(md))
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid position id %q", s)
	}
	return uint(id), nil
}

func addCmd() *cobra.Command {
	var (
		in                models.PositionInput
		quantity, avgCost string
		ter               string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a position",
		Example: `  folioctl add --name "ACME Corp" --ticker ACME --type Equity --quantity 10 --avg-cost 50
  folioctl add --name Bitcoin --ticker BTC --type Crypto --quantity 0.5 --avg-cost 30000 --source crypto-feed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := decimal.NewFromString(quantity)
			if err != nil {
				return fmt.Errorf("invalid --quantity %q", quantity)
			}
			c, err := decimal.NewFromString(avgCost)
			if err != nil {
				return fmt.Errorf("invalid --avg-cost %q", avgCost)
			}
			in.Quantity, in.AvgCost = &q, &c
			if ter != "" {
				t, err := decimal.NewFromString(ter)
				if err != nil {
					return fmt.Errorf("invalid --ter %q", ter)
				}
				in.ExpenseRatio = &t
			}
			return withApp(func(a *app.App) error {
				p, err := a.Portfolio.AddPosition(cmd.Context(), &in)
				if err != nil {
					return err
				}
				fmt.Printf("Added position %d: %s\n", p.ID, p.Name)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Position name (required)")
	f.StringVar(&in.Ticker, "ticker", "", "Ticker; prices are stored under it, or under the name when empty")
	f.StringVar(&in.Type, "type", "", "Equity, ETF, Fund, Crypto, Bond or Cash")
	f.StringVar(&in.Platform, "platform", "", "Broker, bank or wallet")
	f.StringVar(&quantity, "quantity", "", "Quantity held (required)")
	f.StringVar(&avgCost, "avg-cost", "", "Average cost per unit (required)")
	f.StringVar(&in.Currency, "currency", models.DefaultCurrency, "Currency")
	f.StringVar(&in.ISIN, "isin", "", "ISIN")
	f.StringVar(&ter, "ter", "", "Expense ratio")
	f.StringVar(&in.PurchaseDate, "purchase-date", "", "Purchase date (YYYY-MM-DD)")
	f.StringVar(&in.PriceSource, "source", "manual", "Price source: manual, equity-feed or crypto-feed")
	f.StringVar(&in.PriceSymbol, "symbol", "", "Symbol sent to the price feed")
	f.StringVar(&in.Notes, "notes", "", "Notes")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("quantity")
	cmd.MarkFlagRequired("avg-cost")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				positions, err := a.Portfolio.ListPositions(cmd.Context())
				if err != nil {
					return err
				}
				printMarkdown(report.Positions(positions))
				return nil
			})
		},
	}
}

func overviewCmd() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show the valuation of every position at its latest price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				ov, err := a.Portfolio.Overview(cmd.Context())
				if err != nil {
					return err
				}
				printMarkdown(report.Overview(ov, currency))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&currency, "currency", models.DefaultCurrency, "Currency label for the totals (amounts are not converted)")
	return cmd
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [ids...]",
		Short: "Fetch current prices from the feeds",
		Long:  "Fetch prices for the given positions, or for all positions when no ids are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uint, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return withApp(func(a *app.App) error {
				rep, err := a.Updates.FetchAll(cmd.Context(), ids)
				if rep != nil {
					printMarkdown(report.FetchReport(rep))
				}
				return err
			})
		},
	}
}

func settingsCmd() *cobra.Command {
	var settings models.PriceSettings
	cmd := &cobra.Command{
		Use:   "settings <id>",
		Short: "Change how a position is priced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(a *app.App) error {
				p, err := a.Portfolio.UpdatePriceSettings(cmd.Context(), id, settings)
				if err != nil {
					return err
				}
				fmt.Printf("%s: source %s, feed symbol %s\n", p.Name, p.PriceSource, p.FeedSymbol())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&settings.Source, "source", "manual", "manual, equity-feed or crypto-feed")
	cmd.Flags().StringVar(&settings.Symbol, "symbol", "", "Symbol sent to the feed")
	return cmd
}

func priceCmd() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "price <id> <price>",
		Short: "Record a manual price for today",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			px, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid price %q", args[1])
			}
			return withApp(func(a *app.App) error {
				snap, err := a.Portfolio.SaveManualPrice(cmd.Context(), id, models.ManualPriceInput{Price: px, Currency: currency})
				if err != nil {
					return err
				}
				fmt.Printf("Saved %s for %s on %s\n", report.Money(snap.Price, snap.Currency), snap.Symbol, snap.AsOf.Format("2006-01-02"))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "Currency (defaults to the position's)")
	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id|symbol>",
		Short: "Show the stored prices of a position or symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				symbol := args[0]
				if id, perr := parseID(symbol); perr == nil {
					p, err := a.Portfolio.GetPosition(cmd.Context(), id)
					if err != nil {
						return err
					}
					symbol = p.SnapshotSymbol()
				}
				snaps, err := a.Portfolio.PriceHistory(cmd.Context(), symbol)
				if err != nil {
					return err
				}
				printMarkdown(report.History(symbol, snaps))
				return nil
			})
		},
	}
}

func importLegacyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-legacy <portfolio.db>",
		Short: "Copy positions and prices from an old portfolio.db",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				res, err := legacy.NewImporter(a.DB, a.Logger).Import(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Imported %d positions and %d prices\n", res.Positions, res.Snapshots)
				for _, s := range res.Skipped {
					fmt.Printf("  skipped %s\n", s)
				}
				return nil
			})
		},
	}
}
