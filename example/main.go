package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ivanvanderbyl/pdflayout"
	"github.com/ivanvanderbyl/pdflayout/server"
)

func main() {
	cmd := &cli.Command{
		Name:  "pdflayout",
		Usage: "Annotate PDF page layout regions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "console or json",
				Value: "console",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "annotate",
				Usage: "Annotate a PDF file or every PDF in a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input PDF file or directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: JSON to stdout for a single file)",
					},
					&cli.IntFlag{
						Name:  "start-page",
						Usage: "Start page number (0-indexed)",
						Value: -1,
					},
					&cli.IntFlag{
						Name:  "end-page",
						Usage: "End page number (0-indexed)",
						Value: -1,
					},
					&cli.BoolFlag{
						Name:  "render-pages",
						Usage: "Also write rasterized pages",
					},
					&cli.BoolFlag{
						Name:  "overlays",
						Usage: "Also write pages with the regions drawn on top",
					},
				},
				Action: annotate,
			},
			{
				Name:  "render",
				Usage: "Rasterize every page of a PDF to PNG",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input PDF file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   ".",
					},
					&cli.IntFlag{
						Name:  "dpi",
						Usage: "Render resolution (default: from config)",
					},
				},
				Action: render,
			},
			{
				Name:  "serve",
				Usage: "Serve the annotation HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
				},
				Action: serve,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration as YAML",
				Action: printConfig,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads the configuration and builds the logger from the global flags.
func setup(cmd *cli.Command) (pdflayout.Config, *zap.Logger, error) {
	logger, err := newLogger(cmd.String("log-level"), cmd.String("log-format"))
	if err != nil {
		return pdflayout.Config{}, nil, err
	}

	config, err := pdflayout.LoadConfig(cmd.String("config"))
	if err != nil {
		return pdflayout.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, logger, nil
}

// initPool starts a pdfium pool with size instances.
func initPool(size int) (pdfium.Pool, error) {
	if size < 1 {
		size = 1
	}
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  size,
		MaxTotal: size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	return pool, nil
}

func annotate(ctx context.Context, cmd *cli.Command) error {
	config, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	input := cmd.String("input")
	output := cmd.String("output")
	opts := pdflayout.BatchOptions{
		RenderPages:    cmd.Bool("render-pages"),
		RenderOverlays: cmd.Bool("overlays"),
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if info.IsDir() {
		if output == "" {
			return fmt.Errorf("--output is required when the input is a directory")
		}
		pool, err := initPool(config.Workers)
		if err != nil {
			return err
		}
		defer pool.Close()

		results, err := pdflayout.AnnotateDirectory(ctx, pool, input, output, config, opts, logger)
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		logger.Info("batch finished", zap.Int("documents", len(results)), zap.Int("failed", failed))
		return nil
	}

	pool, err := initPool(1)
	if err != nil {
		return err
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}
	defer instance.Close()

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	config.ImagePathFormat = pdflayout.ImagePathFormatFor(stem)
	annotator := pdflayout.NewAnnotatorWithConfig(instance, config).WithLogger(logger)

	docInfo, err := annotator.GetDocumentInfo(input)
	if err != nil {
		return fmt.Errorf("failed to get document info: %w", err)
	}
	logger.Info("annotating document", zap.String("document", input), zap.Int("pages", docInfo.PageCount))

	var pages []pdflayout.PageAnnotation
	startPage, endPage := cmd.Int("start-page"), cmd.Int("end-page")
	if startPage >= 0 || endPage >= 0 {
		pages, err = annotator.AnnotatePageRange(input, startPage, endPage)
	} else {
		pages, err = annotator.AnnotateFileContext(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("failed to annotate PDF: %w", err)
	}

	if output == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	}

	files, err := pdflayout.WriteAnnotations(output, stem, pages)
	if err != nil {
		return err
	}
	if opts.RenderPages {
		rendered, err := annotator.RenderFile(input, output, stem)
		if err != nil {
			return err
		}
		files = append(files, rendered...)
	}
	if opts.RenderOverlays {
		rendered, err := annotator.RenderOverlays(input, output, stem, pages)
		if err != nil {
			return err
		}
		files = append(files, rendered...)
	}
	logger.Info("annotations written", zap.String("output", output), zap.Int("files", len(files)))
	return nil
}

func render(_ context.Context, cmd *cli.Command) error {
	config, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if dpi := cmd.Int("dpi"); dpi > 0 {
		config.Render.DPI = dpi
	}

	pool, err := initPool(1)
	if err != nil {
		return err
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}
	defer instance.Close()

	input := cmd.String("input")
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	files, err := pdflayout.NewAnnotatorWithConfig(instance, config).
		WithLogger(logger).
		RenderFile(input, cmd.String("output"), stem)
	if err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	logger.Info("pages rendered", zap.Int("pages", len(files)), zap.Int("dpi", config.Render.DPI))
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	config, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pool, err := initPool(config.Workers)
	if err != nil {
		return err
	}
	defer pool.Close()

	handler := server.New(&pdflayout.PoolAnnotator{
		Pool:   pool,
		Config: config,
		Logger: logger,
	}, logger)

	srv := &http.Server{
		Addr:              cmd.String("addr"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func printConfig(_ context.Context, cmd *cli.Command) error {
	config, err := pdflayout.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(config)
}
