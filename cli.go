package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fertilizer-guide/internal/config"
	"fertilizer-guide/internal/logging"
	"fertilizer-guide/internal/nutrient"
	"fertilizer-guide/internal/reference"
)

const shutdownTimeout = 10 * time.Second

// cli carries state set up by the root command's PersistentPreRunE.
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "fertilizer-guide",
		Short: "Soil nutrient diagnostics and fertilizer recommendations",
		Long: `fertilizer-guide compares soil N/P/K readings against a crop's reference
requirements and recommends how to correct each deficiency or excess.

Run "fertilizer-guide serve" to start the HTTP API and web form.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if c.verbose {
				cfg.Log.Level = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			logger, err := logging.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "config.yaml", "path to YAML config")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.serveCmd(), c.evaluateCmd(), c.cropsCmd(), c.seedCmd())
	return root
}

// ──────────────────────────────────────────────
// serve
// ──────────────────────────────────────────────

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			gin.SetMode(c.cfg.Server.Mode)

			srv := &http.Server{
				Addr:              "0.0.0.0:" + c.cfg.Server.Port,
				Handler:           newRouter(a),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				c.logger.Info("🌱 Fertilizer API listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				c.logger.Info("Shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

// ──────────────────────────────────────────────
// evaluate
// ──────────────────────────────────────────────

func (c *cli) evaluateCmd() *cobra.Command {
	var (
		crop      string
		n, p, k   float64
		chartPath string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one soil reading against a crop's requirements",
		Example: `  fertilizer-guide evaluate --crop Rice --n 50 --p 40 --k 40
  fertilizer-guide evaluate --crop Maize --n 90 --p 30 --k 60 --chart maize.png --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}

			reading := nutrient.Reading{N: n, P: p, K: k}
			if err := reading.Validate(); err != nil {
				return err
			}
			ev, err := a.evaluate(crop, reading)
			if errors.Is(err, reference.ErrCropNotFound) {
				return fmt.Errorf("%w (see `fertilizer-guide crops`)", err)
			}
			if err != nil {
				return err
			}

			if chartPath != "" {
				png, err := base64.StdEncoding.DecodeString(ev.Graph)
				if err != nil {
					return fmt.Errorf("decode chart: %w", err)
				}
				if err := os.WriteFile(chartPath, png, 0o644); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Result   any    `json:"result"`
					Messages any    `json:"status"`
					Text     string `json:"recommendations,omitempty"`
				}{ev.Result, ev.Messages, ev.Recommendations})
			}

			fmt.Fprintf(out, "Crop: %s\n", ev.Result.Crop)
			for _, as := range ev.Result.Nutrients {
				fmt.Fprintf(out, "  %-12s required %6.1f  current %6.1f  gap %+6.1f  %s\n",
					as.Nutrient, as.Required, as.Current, as.Gap, as.Status)
			}
			if ev.Result.Optimal() {
				fmt.Fprintln(out, a.catalog.OptimalOverall)
				return nil
			}
			fmt.Fprintln(out, "Advisories:")
			for _, cat := range ev.Result.Advisories {
				fmt.Fprintf(out, "  [%s] %s\n", cat, a.catalog.Headline(cat))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&crop, "crop", "", "crop name, exactly as listed by `crops`")
	cmd.Flags().Float64Var(&n, "n", 0, "current nitrogen level (0-100)")
	cmd.Flags().Float64Var(&p, "p", 0, "current phosphorous level (0-100)")
	cmd.Flags().Float64Var(&k, "k", 0, "current potassium level (0-100)")
	cmd.Flags().StringVar(&chartPath, "chart", "", "write the bar chart PNG to this path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("crop")
	return cmd
}

// ──────────────────────────────────────────────
// crops
// ──────────────────────────────────────────────

func (c *cli) cropsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crops",
		Short: "List crops in the reference table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range a.table.Rows() {
				fmt.Fprintf(out, "%-12s N=%-4g P=%-4g K=%g\n", r.Crop, r.N, r.P, r.K)
			}
			return nil
		},
	}
}

// ──────────────────────────────────────────────
// seed
// ──────────────────────────────────────────────

func (c *cli) seedCmd() *cobra.Command {
	var from, path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy a reference file into the configured database",
		Long: `seed loads a reference table from the bundled dataset, a CSV or an XLSX
file and upserts it into crop_requirements. reference.source must be
postgres or sqlite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, dsn, err := sqlTarget(c.cfg)
			if err != nil {
				return err
			}
			tbl, err := reference.Load(from, path)
			if err != nil {
				return err
			}
			db, err := InitDB(driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			written, err := seedRequirements(db, tbl, c.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d crops into %s\n", written, driver)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "embedded", "source kind: embedded, csv or xlsx")
	cmd.Flags().StringVar(&path, "file", "", "CSV or XLSX file for --from csv|xlsx")
	return cmd
}
