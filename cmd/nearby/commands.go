package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/nearby/internal/categories"
	"github.com/pders01/nearby/internal/config"
	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/events"
	"github.com/pders01/nearby/internal/importer"
	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/plugins"
	"github.com/pders01/nearby/internal/plugins/user"
	"github.com/pders01/nearby/internal/search"
	"github.com/pders01/nearby/internal/storage"
	"github.com/pders01/nearby/internal/tui"
)

const (
	searchTimeout = 45 * time.Second
	importTimeout = 2 * time.Minute
)

var (
	searchLimit int
	jsonOutput  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nearby %s\n", Version)
		fmt.Println("places around you")
		fmt.Println("github.com/pders01/nearby")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/nearby/config.toml",
	Run: func(cmd *cobra.Command, args []string) {
		configFile := filepath.Join(userConfigDir(), "config.toml")
		if err := config.GenerateDefaultConfig(configFile); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <feed-url>",
	Short: "Import places from an RSS, Atom or JSON feed, or an OpenStreetMap map link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := importer.Options{
			UserAgent:    cfg.Provider.UserAgent,
			Timeout:      cfg.Provider.HTTPTimeout,
			AllowPrivate: cfg.Provider.AllowPrivate,
			Resolver:     newPluginRegistry(cfg),
		}
		if rt.index != nil {
			opts.Index = rt.index
		}

		ctx, cancel := context.WithTimeout(commandContext(cmd), importTimeout)
		defer cancel()

		res, err := importer.New(rt.store, opts).Import(ctx, args[0])
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		title := res.Title
		if title == "" {
			title = res.Source
		}
		fmt.Fprintf(out, "Imported %s from %s", tui.MsgPlacesCount(len(res.Places)), title)
		if res.Skipped > 0 {
			fmt.Fprintf(out, " (%d skipped)", res.Skipped)
		}
		fmt.Fprintln(out)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <phrase>",
	Short: "Run one search around the configured point of interest and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		if searchLimit > 0 {
			cfg.Places.FetchLimit = searchLimit
		}
		phrase := strings.Join(strings.Fields(strings.Join(args, " ")), " ")
		if phrase == "" {
			return fmt.Errorf("search phrase is empty")
		}

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, cancel := context.WithTimeout(commandContext(cmd), searchTimeout)
		defer cancel()

		found, err := runSearch(ctx, rt, phrase)
		if err != nil {
			tui.PrintError(cmd.ErrOrStderr(), err)
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(found)
		}

		catalog := places.DefaultCatalog()
		tui.PrintPlaces(cmd.OutOrStdout(), catalog.Title(rt.poi()), found, loadCategories(), catalog.NoResults)
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List favorite places",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		store, err := storage.Open(cfg.Database.Driver, cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		favs, err := store.GetFavorites()
		if err != nil {
			return fmt.Errorf("loading favorites: %w", err)
		}
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(favs)
		}
		tui.PrintPlaces(cmd.OutOrStdout(), "Favorites", favs, loadCategories(), places.DefaultCatalog().NoFavorites)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (overrides places.fetch_limit)")
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	favoritesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print favorites as JSON")
}

// runSearch submits phrase through the service and waits for its result on the bus.
func runSearch(ctx context.Context, rt *runtime, phrase string) ([]*storage.Place, error) {
	results := make(chan events.SearchResult, 1)
	unsubscribe := rt.bus.Subscribe(events.KindSearchResult, func(ev events.Event) {
		res, ok := ev.(events.SearchResult)
		if !ok || res.Query != phrase {
			return
		}
		select {
		case results <- res:
		default:
		}
	})
	defer unsubscribe()

	if err := rt.service.Search(ctx, phrase, rt.searchOptions()); err != nil {
		return nil, err
	}

	select {
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		found := res.Places
		if poi := rt.poi(); poi.HasCoords {
			for _, p := range found {
				if p.Distance <= 0 && (p.Lat != 0 || p.Lon != 0) {
					p.Distance = search.DistanceMeters(poi.Lat, poi.Lon, p.Lat, p.Lon)
				}
			}
		}
		return found, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("search %q: %w", phrase, ctx.Err())
	}
}

func newPluginRegistry(cfg *config.Config) *plugins.Registry {
	registry := plugins.NewRegistry(cfg.Provider.HTTPTimeout)
	registry.Register(user.NewOSMNotesPlugin())
	return registry
}

func loadCategories() *categories.Table {
	table := categories.Default()
	if err := table.LoadFile(filepath.Join(userConfigDir(), "categories.toml")); err != nil {
		debuglog.Warnf("categories override ignored: %v", err)
	}
	return table
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
