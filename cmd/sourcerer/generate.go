package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DanielFGray/pg-sourcerer-sub001/config"
	"github.com/DanielFGray/pg-sourcerer-sub001/emit"
	"github.com/DanielFGray/pg-sourcerer-sub001/introspect"
	"github.com/DanielFGray/pg-sourcerer-sub001/naming"
	"github.com/DanielFGray/pg-sourcerer-sub001/pipeline"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugins"
	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
	"github.com/DanielFGray/pg-sourcerer-sub001/watch"
	"github.com/DanielFGray/pg-sourcerer-sub001/writer"
)

func generateCmd() *cobra.Command {
	var (
		dryRun      bool
		databaseURL string
		outputRoot  string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "run the generation pipeline and write the output tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			cfg, err := config.Load(configPath(),
				config.WithDatabaseURL(databaseURL),
				config.WithOutputRoot(outputRoot),
			)
			if err != nil {
				return err
			}
			return generate(cmd.Context(), cfg, logger, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be written without touching disk")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "override the configured connection string")
	cmd.Flags().StringVar(&outputRoot, "output", "", "override the configured output root")
	return cmd
}

func introspectCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "introspect the database and save a schema snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			cfg, err := config.Load(configPath())
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("sourcerer: introspect needs a database url")
			}
			s, err := introspect.Load(cmd.Context(), cfg.Database.Dialect, cfg.Database.URL, cfg.Database.Schemas)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = cfg.Snapshot
			}
			if path == "" {
				path = ".sourcerer.snapshot"
			}
			if err := schema.SaveSnapshot(path, s); err != nil {
				return err
			}
			logger.Info("snapshot written",
				zap.String("path", path),
				zap.Int("tables", len(s.Tables)),
				zap.Int("enums", len(s.Enums)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "snapshot path (default: the configured snapshot, then .sourcerer.snapshot)")
	return cmd
}

func watchCmd() *cobra.Command {
	var paths []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "re-run generation whenever the configuration or watched paths change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			watched := append([]string{configPath()}, paths...)
			return watch.New(watched).WithLogger(logger).Run(cmd.Context(), func(ctx context.Context) error {
				// Reload per run so config edits take effect.
				cfg, err := config.Load(configPath())
				if err != nil {
					return err
				}
				return generate(ctx, cfg, logger, false)
			})
		},
	}
	cmd.Flags().StringSliceVar(&paths, "path", nil, "additional files or directories to watch")
	return cmd
}

// generate loads the model, runs the pipeline, emits, and writes. A failure
// in any stage leaves the output tree untouched.
func generate(ctx context.Context, cfg *config.Config, logger *zap.Logger, dryRun bool) error {
	s, err := loadSchema(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithRules(cfg.LayoutRules()...),
		pipeline.WithHints(cfg.Hints),
		pipeline.WithLogger(logger),
	}
	if def := cfg.DefaultRule(); def != nil {
		opts = append(opts, pipeline.WithDefaultRule(*def))
	}
	for _, pc := range cfg.Plugins {
		p, err := plugins.New(pc.Name)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithPlugins(p))
		if pc.Options != nil {
			opts = append(opts, pipeline.WithPluginOptions(pc.Name, pc.Options))
		}
	}

	pipe, err := pipeline.New(s, naming.New(), opts...)
	if err != nil {
		return err
	}
	res, err := pipe.Run(ctx)
	if err != nil {
		return err
	}

	var emitOpts []emit.Option
	if cfg.Output.ImportExtension != nil {
		emitOpts = append(emitOpts, emit.WithImportExtension(*cfg.Output.ImportExtension))
	}
	if cfg.Output.Header != nil {
		emitOpts = append(emitOpts, emit.WithHeader(*cfg.Output.Header))
	}
	files, err := emit.NewEmitter(emitOpts...).Emit(res)
	if err != nil {
		return err
	}

	if err := writer.New(cfg.Output.Root).WithDryRun(dryRun).WithLogger(logger).Write(ctx, files); err != nil {
		return err
	}
	logger.Info("generation complete",
		zap.Int("symbols", len(res.Declarations)),
		zap.Int("files", len(files)),
		zap.Bool("dryRun", dryRun))
	return nil
}

// loadSchema prefers a live connection and falls back to the snapshot,
// which is what lets CI regenerate without database access.
func loadSchema(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*schema.Schema, error) {
	if cfg.Database.URL != "" {
		logger.Debug("introspecting database", zap.String("dialect", cfg.Database.Dialect))
		return introspect.Load(ctx, cfg.Database.Dialect, cfg.Database.URL, cfg.Database.Schemas)
	}
	logger.Debug("loading schema snapshot", zap.String("path", cfg.Snapshot))
	return schema.LoadSnapshot(cfg.Snapshot)
}
