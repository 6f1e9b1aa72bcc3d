package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geocontext/internal/model"
	"github.com/sells-group/geocontext/internal/neighborhood"
	"github.com/sells-group/geocontext/internal/store"
	"github.com/sells-group/geocontext/internal/table"
)

var (
	computePoints      string
	computeLocations   string
	computeOutput      string
	computeGroups      []string
	computePops        []string
	computeProportions []bool
	computeKs          []int
	computePointsNorth string
	computePointsEast  string
	computeLocsNorth   string
	computeLocsEast    string
	computeConcurrency int
	computeDryRun      bool
	computeNoHistory   bool
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute population context columns for a points table",
	Long: `Reads a query-points table and a populated-locations table, solves the
minimal radius per point and per k threshold, aggregates each group column
over the locations inside that radius, and writes the points table
augmented with the context columns.

Input format is chosen by file extension: .csv, .xlsx, or .shp (point
shapefile).

Examples:
  # One shared population column, proportion aggregation
  geocontext compute --points points.csv --locations census.csv \
    --group foreign_born --pop population --k 100,1000 --output out.csv

  # Weighted mean/std of a per-capita attribute
  geocontext compute --points points.csv --locations census.csv \
    --group income --pop population --proportion=false --k 500

  # Validate inputs and configuration only
  geocontext compute --points points.csv --locations census.csv \
    --group young --pop population --k 100 --dry-run`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		start := time.Now()
		applyComputeDefaults()

		pointsTbl, err := loadTable(computePoints)
		if err != nil {
			return eris.Wrap(err, "compute: load points table")
		}
		locsTbl, err := loadTable(computeLocations)
		if err != nil {
			return eris.Wrap(err, "compute: load locations table")
		}
		zap.L().Info("compute: tables loaded",
			zap.Int("points", pointsTbl.NumRows()),
			zap.Int("locations", locsTbl.NumRows()),
		)

		spec := &neighborhood.Spec{
			Groups:      computeGroups,
			Populations: computePops,
			Proportions: broadcastProportions(computeProportions, len(computeGroups)),
			KValues:     computeKs,
		}

		ref, err := neighborhood.ReferenceFromTable(locsTbl, computeLocsNorth, computeLocsEast, spec.ValueColumns())
		if err != nil {
			return err
		}
		points, err := neighborhood.PointsFromTable(pointsTbl, computePointsNorth, computePointsEast)
		if err != nil {
			return err
		}

		eng, err := neighborhood.NewEngine(ref, spec, computeConcurrency)
		if err != nil {
			return err
		}

		if computeDryRun {
			return printPlan(spec, eng, len(points), ref.Len())
		}

		specJSON, err := json.Marshal(spec)
		if err != nil {
			return eris.Wrap(err, "compute: marshal spec")
		}

		st, run := openRun(ctx, &model.Run{
			PointsPath:    computePoints,
			LocationsPath: computeLocations,
			OutputPath:    computeOutput,
			Spec:          string(specJSON),
			Points:        len(points),
			Locations:     ref.Len(),
		})
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		builder, err := eng.Run(ctx, points)
		if err != nil {
			recordFailure(ctx, st, run, err)
			return err
		}

		if err := builder.AppendTo(pointsTbl); err != nil {
			recordFailure(ctx, st, run, err)
			return err
		}
		if err := table.WriteCSV(pointsTbl, computeOutput); err != nil {
			recordFailure(ctx, st, run, err)
			return err
		}

		elapsed := time.Since(start)
		if st != nil {
			if err := st.CompleteRun(ctx, run.ID, elapsed.Milliseconds()); err != nil {
				zap.L().Warn("compute: record completion", zap.Error(err))
			}
		}

		zap.L().Info("compute: done",
			zap.String("output", computeOutput),
			zap.Int("points", len(points)),
			zap.Int("context_columns", len(builder.Columns())),
			zap.Duration("elapsed", elapsed),
		)
		return nil
	},
}

func init() {
	computeCmd.Flags().StringVar(&computePoints, "points", "", "path to query points table (required)")
	computeCmd.Flags().StringVar(&computeLocations, "locations", "", "path to populated locations table (required)")
	computeCmd.Flags().StringVar(&computeOutput, "output", "context.csv", "path for the augmented CSV output")
	computeCmd.Flags().StringSliceVar(&computeGroups, "group", nil, "group column(s) to aggregate (required)")
	computeCmd.Flags().StringSliceVar(&computePops, "pop", nil, "population column, or one per group (required)")
	computeCmd.Flags().BoolSliceVar(&computeProportions, "proportion", nil, "per-group: true = sum/total proportion, false = weighted mean/std (default all true; a single value applies to all groups)")
	computeCmd.Flags().IntSliceVar(&computeKs, "k", nil, "population thresholds (required)")
	computeCmd.Flags().StringVar(&computePointsNorth, "points-north", "", "north coordinate column in the points table")
	computeCmd.Flags().StringVar(&computePointsEast, "points-east", "", "east coordinate column in the points table")
	computeCmd.Flags().StringVar(&computeLocsNorth, "locations-north", "", "north coordinate column in the locations table")
	computeCmd.Flags().StringVar(&computeLocsEast, "locations-east", "", "east coordinate column in the locations table")
	computeCmd.Flags().IntVar(&computeConcurrency, "concurrency", 0, "points processed concurrently (default from config)")
	computeCmd.Flags().BoolVar(&computeDryRun, "dry-run", false, "validate inputs and configuration, compute nothing")
	computeCmd.Flags().BoolVar(&computeNoHistory, "no-history", false, "skip recording this run in the history store")
	_ = computeCmd.MarkFlagRequired("points")
	_ = computeCmd.MarkFlagRequired("locations")
	_ = computeCmd.MarkFlagRequired("group")
	_ = computeCmd.MarkFlagRequired("pop")
	_ = computeCmd.MarkFlagRequired("k")
	rootCmd.AddCommand(computeCmd)
}

// applyComputeDefaults fills unset flags from config. Runs after config
// load, so it cannot live in init().
func applyComputeDefaults() {
	if computePointsNorth == "" {
		computePointsNorth = cfg.Compute.PointsNorthColumn
	}
	if computePointsEast == "" {
		computePointsEast = cfg.Compute.PointsEastColumn
	}
	if computeLocsNorth == "" {
		computeLocsNorth = cfg.Compute.LocationsNorthColumn
	}
	if computeLocsEast == "" {
		computeLocsEast = cfg.Compute.LocationsEastColumn
	}
	if computeConcurrency <= 0 {
		computeConcurrency = cfg.Compute.Concurrency
	}
}

// loadTable reads a table by file extension.
func loadTable(path string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return table.ReadCSV(path)
	case ".xlsx":
		return table.ReadXLSX(path, table.XLSXOptions{})
	case ".shp":
		return table.ReadShapefile(path)
	default:
		return nil, eris.Errorf("unsupported table format %q (want .csv, .xlsx, or .shp)", filepath.Ext(path))
	}
}

// broadcastProportions defaults an empty flag list to all-proportion and
// expands a single value to every group. Anything else passes through
// for spec validation.
func broadcastProportions(flags []bool, groups int) []bool {
	switch len(flags) {
	case 0:
		out := make([]bool, groups)
		for i := range out {
			out[i] = true
		}
		return out
	case 1:
		out := make([]bool, groups)
		for i := range out {
			out[i] = flags[0]
		}
		return out
	default:
		return flags
	}
}

// openRun opens the history store and records the run start. A store
// failure degrades to a warning; the computation still runs.
func openRun(ctx context.Context, run *model.Run) (store.Store, *model.Run) {
	if computeNoHistory {
		return nil, run
	}
	st, err := store.New(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		zap.L().Warn("compute: open history store", zap.Error(err))
		return nil, run
	}
	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("compute: migrate history store", zap.Error(err))
		_ = st.Close()
		return nil, run
	}
	if err := st.CreateRun(ctx, run); err != nil {
		zap.L().Warn("compute: record run start", zap.Error(err))
		_ = st.Close()
		return nil, run
	}
	return st, run
}

func recordFailure(ctx context.Context, st store.Store, run *model.Run, cause error) {
	if st == nil {
		return
	}
	if err := st.FailRun(ctx, run.ID, cause.Error()); err != nil {
		zap.L().Warn("compute: record failure", zap.Error(err))
	}
}

// printPlan writes the resolved computation plan as indented JSON.
func printPlan(spec *neighborhood.Spec, eng *neighborhood.Engine, points, locations int) error {
	plan := map[string]any{
		"groups":      spec.Groups,
		"populations": spec.Populations,
		"proportions": spec.Proportions,
		"k_values":    eng.KValues(),
		"points":      points,
		"locations":   locations,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
