package nutri

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/config"
	"github.com/Snape93/nutrition-sub008/internal/provider/openfoodfacts"
	"github.com/Snape93/nutrition-sub008/internal/provider/usda"
	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	lookupBarcode    string
	lookupProvider   string
	lookupLimit      int
	lookupAPIKey     string
	lookupClearCache bool
)

var foodLookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Look up calories by barcode or name (Open Food Facts, USDA)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = strings.TrimSpace(args[0])
		}
		barcode := strings.TrimSpace(lookupBarcode)
		if !lookupClearCache && query == "" && barcode == "" {
			return fmt.Errorf("provide a search query or --barcode")
		}
		if query != "" && barcode != "" {
			return fmt.Errorf("use either a search query or --barcode, not both")
		}
		if lookupLimit <= 0 || lookupLimit > 50 {
			return fmt.Errorf("--limit must be between 1 and 50")
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			out := cmd.OutOrStdout()
			if lookupClearCache {
				n, err := service.PurgeFoodFactsCache(env.DB)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d cached lookup(s)\n", n)
				if query == "" && barcode == "" {
					return nil
				}
			}
			sources, err := foodFactsSources(env, lookupProvider, lookupAPIKey)
			if err != nil {
				return err
			}
			if barcode != "" {
				f, err := service.LookupFoodBarcode(commandContext(cmd), env.DB, barcode, sources, time.Now())
				if err != nil {
					return err
				}
				printFoodFacts(out, f)
				return nil
			}
			items, err := service.SearchFoodFacts(commandContext(cmd), query, lookupLimit, sources)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintf(out, "No matches for %q\n", query)
				return nil
			}
			fmt.Fprintln(out, "PROVIDER\tBARCODE\tNAME\tBRAND\tKCAL\tSERVING")
			for _, f := range items {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%.0f\t%s\n", f.Provider, f.Barcode, f.Name, f.Brand, f.Calories, f.Serving)
			}
			return nil
		})
	},
}

// foodFactsSources builds the provider chain. USDA is skipped when no key is
// configured unless it was asked for explicitly.
func foodFactsSources(env *appEnv, providerFlag, apiKeyFlag string) ([]service.FoodFactsSource, error) {
	order := env.Config.LookupProviders
	explicit := strings.TrimSpace(providerFlag) != ""
	if explicit {
		order = providerFlag
	}
	names, err := service.ParseProviderOrder(order)
	if err != nil {
		return nil, err
	}
	key := resolveUSDAAPIKey(env.Config, apiKeyFlag)

	sources := make([]service.FoodFactsSource, 0, len(names))
	for _, name := range names {
		switch name {
		case service.FoodProviderOpenFoodFacts:
			sources = append(sources, service.OpenFoodFactsSource{Client: &openfoodfacts.Client{
				BaseURL:   env.Config.OpenFoodFactsURL,
				UserAgent: "nutri/" + version,
			}})
		case service.FoodProviderUSDA:
			if key == "" {
				if explicit {
					return nil, fmt.Errorf("missing USDA API key; set --api-key or %s", config.EnvUSDAAPIKey)
				}
				env.Log.Debug("skip usda lookup provider", zap.String("reason", "no api key"))
				continue
			}
			sources = append(sources, service.USDASource{Client: &usda.Client{APIKey: key, BaseURL: env.Config.USDAURL}})
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no usable lookup providers (configured: %s)", order)
	}
	return sources, nil
}

func resolveUSDAAPIKey(cfg config.Config, flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return cfg.USDAAPIKey
}

func printFoodFacts(out io.Writer, f service.FoodFacts) {
	fmt.Fprintf(out, "%s\n", f.Name)
	if f.Brand != "" {
		fmt.Fprintf(out, "Brand: %s\n", f.Brand)
	}
	fmt.Fprintf(out, "Barcode: %s\n", f.Barcode)
	if f.Per100g {
		fmt.Fprintf(out, "Calories: %.0f kcal per 100 g\n", f.Calories)
	} else {
		fmt.Fprintf(out, "Calories: %.0f kcal per %s\n", f.Calories, servingOrDefault(f.Serving))
	}
	source := f.Provider
	if f.FromCache {
		source += " (cached)"
	}
	fmt.Fprintf(out, "Source: %s\n", source)
}

func servingOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return "serving"
	}
	return s
}

func init() {
	foodCmd.AddCommand(foodLookupCmd)
	foodLookupCmd.Flags().StringVar(&lookupBarcode, "barcode", "", "Barcode (EAN/UPC, 8-14 digits)")
	foodLookupCmd.Flags().StringVar(&lookupProvider, "provider", "", "Providers in order, overrides config (openfoodfacts,usda)")
	foodLookupCmd.Flags().IntVar(&lookupLimit, "limit", 10, "Max search results")
	foodLookupCmd.Flags().StringVar(&lookupAPIKey, "api-key", "", "USDA API key (overrides "+config.EnvUSDAAPIKey+")")
	foodLookupCmd.Flags().BoolVar(&lookupClearCache, "clear-cache", false, "Remove cached barcode lookups first")
}
