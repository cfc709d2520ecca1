package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"backend/internal/api"
	"backend/internal/config"
	"backend/internal/country"
	"backend/internal/engine"
)

var (
	cfgFile    string
	flagListen string
)

var rootCmd = &cobra.Command{
	Use:   "ciadash",
	Short: "Country indicator analytics backend",
	Long:  "Serves the coordinated-views country dashboard: choropleth, scatter, rank, correlation, parallel coordinates and PCA payloads over a JSON API with linked selection state.",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}

	// 1. Initialize Echo (starts instantly)
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = api.JSONSerializer{}
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// 2. Initialize handler with nil data: the API is live but
	// returns 503 until the load below finishes.
	h := api.NewHandler(nil, cfg.ProjectionSeed)
	h.RegisterRoutes(e)

	// 3. Load datasets in the background
	go func() {
		log.Println("BACKGROUND: loading datasets...")
		t0 := time.Now()

		res := country.NewResolver()
		if cfg.OverridesPath != "" {
			if err := res.LoadOverrides(cfg.OverridesPath); err != nil {
				log.Printf("[WARN] overrides not loaded: %v", err)
			}
		}
		sources := make([]engine.Source, 0, len(cfg.Datasets))
		for _, ds := range cfg.Datasets {
			sources = append(sources, engine.Source{
				Name:           ds.Name,
				Path:           ds.Path,
				GeographyPath:  cfg.GeographyPath,
				GovernmentPath: cfg.GovernmentPath,
			})
		}
		h.SetStore(engine.LoadAll(sources, res))

		log.Printf("BACKGROUND: load complete in %v. API is fully ready.", time.Since(t0))
	}()

	// 4. Start server
	log.Printf("Server ready on %s (data loading in background...)", cfg.Listen)
	return e.Start(cfg.Listen)
}
