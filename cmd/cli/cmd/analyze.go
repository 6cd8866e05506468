package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctree-analysis/internal/ctree"
	"github.com/ctree-analysis/internal/morph"
	"github.com/ctree-analysis/internal/repository"
	"github.com/ctree-analysis/internal/storage"
	"github.com/ctree-analysis/pkg/config"
	"github.com/ctree-analysis/pkg/image"
	"github.com/ctree-analysis/pkg/neighborhood"
	"github.com/ctree-analysis/pkg/utils"
	"github.com/ctree-analysis/pkg/writer"
)

var (
	analyzeInput      string
	analyzeOutputDir  string
	analyzeBits       int
	analyzeDelta      int
	analyzeRadius     int
	analyzeAttributes string
	analyzeConn       int
	analyzeMinTree    bool
	analyzeGzip       bool
	analyzeSaveDB     bool
	analyzeUpload     bool
)

// analyzeCmd builds the tree of an input image and exports the node
// attribute table.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the component tree and export node attributes",
	Long: `Read a binary PGM image, build its component tree, compute the
selected attribute bundles, and export the per-node attribute table as JSON.
Optionally persist the run to the database and upload the artifacts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeInput == "" {
			return fmt.Errorf("input image is required (-i)")
		}

		cfg, err := loadAnalysisConfig()
		if err != nil {
			return err
		}
		if err := cfg.EnsureOutputDir(); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		switch analyzeBits {
		case 8:
			im, err := image.LoadPGM8(analyzeInput)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, im)
		case 16:
			im, err := image.LoadPGM16(analyzeInput)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, im)
		default:
			return fmt.Errorf("unsupported sample width %d, want 8 or 16", analyzeBits)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "Input PGM image")
	analyzeCmd.Flags().StringVarP(&analyzeOutputDir, "output", "o", "", "Output directory (overrides config)")
	analyzeCmd.Flags().IntVar(&analyzeBits, "bits", 8, "Sample width of the input: 8 or 16")
	analyzeCmd.Flags().IntVar(&analyzeDelta, "delta", 0, "MSER stability step (overrides config)")
	analyzeCmd.Flags().IntVar(&analyzeRadius, "radius", 0, "Neighborhood-ring radius (defaults to delta)")
	analyzeCmd.Flags().StringVar(&analyzeAttributes, "attributes", "", "Comma-separated attribute bundles (overrides config)")
	analyzeCmd.Flags().IntVar(&analyzeConn, "connectivity", 0, "Pixel connectivity: 4 or 8 (overrides config)")
	analyzeCmd.Flags().BoolVar(&analyzeMinTree, "min-tree", false, "Build the min-tree (invert intensities)")
	analyzeCmd.Flags().BoolVar(&analyzeGzip, "gzip", false, "Gzip the exported attribute table")
	analyzeCmd.Flags().BoolVar(&analyzeSaveDB, "save-db", false, "Persist the run and node table to the database")
	analyzeCmd.Flags().BoolVar(&analyzeUpload, "upload", false, "Upload artifacts to the configured storage")
}

// loadAnalysisConfig loads the config file and applies flag overrides.
func loadAnalysisConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if analyzeOutputDir != "" {
		cfg.Analysis.OutputDir = analyzeOutputDir
	}
	if analyzeDelta > 0 {
		cfg.Analysis.Delta = analyzeDelta
	}
	if analyzeRadius > 0 {
		cfg.Analysis.RingRadius = analyzeRadius
	}
	if analyzeConn != 0 {
		cfg.Analysis.Connectivity = analyzeConn
	}
	if analyzeAttributes != "" {
		cfg.Analysis.Attributes = strings.Split(analyzeAttributes, ",")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connectivityFor resolves the configured connectivity preset.
func connectivityFor(cfg *config.Config) *neighborhood.Neighborhood {
	if cfg.Analysis.Connectivity == 4 {
		return neighborhood.Make2DN4()
	}
	return neighborhood.Make2DN8()
}

// runAnalyze is the pixel-type generic analysis pipeline.
func runAnalyze[T image.Pixel](ctx context.Context, cfg *config.Config, im *image.Image[T]) error {
	log := GetLogger()
	timer := utils.NewStageTimer()

	if analyzeMinTree {
		im = im.Invert()
	}

	attrs, err := ctree.ParseAttributes(cfg.Analysis.Attributes)
	if err != nil {
		return err
	}

	opts := []ctree.Option[T]{
		ctree.WithNeighborhood[T](connectivityFor(cfg)),
		ctree.WithAttributes[T](attrs),
		ctree.WithLogger[T](log),
	}
	if attrs.Has(ctree.AttrMSER) {
		opts = append(opts, ctree.WithDelta[T](cfg.Analysis.Delta))
	}
	// The ring radius follows the MSER delta unless set separately.
	ringRadius := cfg.Analysis.RingRadius
	if ringRadius == 0 {
		ringRadius = cfg.Analysis.Delta
	}
	opts = append(opts, ctree.WithRingRadius[T](ringRadius))
	if attrs.Has(ctree.AttrBorderGradient) {
		timer.Start("gradient")
		grad := morph.Gradient(im, connectivityFor(cfg))
		timer.Stop("gradient")
		opts = append(opts, ctree.WithGradient[T](grad))
	}

	timer.Start("build")
	tree, err := ctree.Build(im, opts...)
	timer.Stop("build")
	if err != nil {
		return err
	}

	log.Info("built tree: %d nodes, levels [%d, %d]", tree.NodeCount(), tree.HMin(), tree.HMax())

	timer.Start("export")
	records := tree.Records()
	tableName := "nodes.json"
	if analyzeGzip {
		tableName = "nodes.json.gz"
	}
	tablePath := cfg.OutputPath(tableName)
	if analyzeGzip {
		err = writer.NewGzipJSONWriter[[]ctree.NodeRecord]().WriteToFile(records, tablePath)
	} else {
		err = writer.NewPrettyJSONWriter[[]ctree.NodeRecord]().WriteToFile(records, tablePath)
	}
	timer.Stop("export")
	if err != nil {
		return err
	}
	log.Info("wrote attribute table: %s", tablePath)

	if analyzeSaveDB {
		if err := persistRun(ctx, cfg, tree.NodeCount(), tree.HMin(), tree.HMax(),
			im.Width(), im.Height(), im.Depth(), records, timer); err != nil {
			return err
		}
	}

	if analyzeUpload {
		store, err := storage.New(&cfg.Storage)
		if err != nil {
			return err
		}
		key := filepath.Join("runs", filepath.Base(analyzeInput), tableName)
		if err := store.UploadFile(ctx, key, tablePath); err != nil {
			return err
		}
		log.Info("uploaded attribute table: %s", store.GetURL(key))
	}

	log.Info("analysis finished: %s", timer.Summary())
	return nil
}

// persistRun stores the run header and its node table.
func persistRun(ctx context.Context, cfg *config.Config, nodeCount, hMin, hMax, w, h, d int,
	records []ctree.NodeRecord, timer *utils.StageTimer) error {

	if !cfg.Database.Enabled {
		return fmt.Errorf("database persistence requested but database.enabled is false")
	}

	db, err := repository.NewGormDB(&cfg.Database)
	if err != nil {
		return err
	}
	repo := repository.NewRunRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	run := &repository.AnalysisRun{
		Source:       filepath.Base(analyzeInput),
		Width:        w,
		Height:       h,
		Depth:        d,
		LevelMin:     hMin,
		LevelMax:     hMax,
		NodeCount:    nodeCount,
		Connectivity: cfg.Analysis.Connectivity,
		Delta:        cfg.Analysis.Delta,
		Attributes:   strings.Join(cfg.Analysis.Attributes, ","),
		BuildMillis:  timer.Elapsed("build").Milliseconds(),
	}
	if err := repo.CreateRun(ctx, run); err != nil {
		return err
	}

	rows := make([]repository.TreeNodeRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, repository.NewTreeNodeRow(run.ID, r))
	}
	if err := repo.SaveNodes(ctx, rows); err != nil {
		return err
	}

	GetLogger().Info("persisted run %d with %d nodes", run.ID, len(rows))
	return nil
}
