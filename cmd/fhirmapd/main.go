// Command fhirmapd is the CLI and HTTP server entry point for the
// transformation engine: validate a mapping directory, run a one-shot
// transform, or serve the HTTP facade.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pradeepkk321/fhir-mapper/facade"
	"github.com/pradeepkk321/fhir-mapper/fhirbridge"
	"github.com/pradeepkk321/fhir-mapper/internal/bootstrap"
	"github.com/pradeepkk321/fhir-mapper/internal/config"
	"github.com/pradeepkk321/fhir-mapper/internal/httpapi"
	"github.com/pradeepkk321/fhir-mapper/mapping"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fhirmapd",
		Short: "JSON <-> FHIR declarative transformation engine",
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(transformCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("FHIRMAP_ENV") != "production" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func validateCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a mapping base directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			loader := mapping.NewLoader(logger)

			_, result, err := bootstrap.LoadRegistry(loader, base, "4.0.1", 1, false)
			if result != nil {
				for _, w := range result.Warnings {
					fmt.Fprintf(os.Stderr, "warning: %s\n", w.String())
				}
				for _, e := range result.Errors {
					fmt.Fprintf(os.Stderr, "error: %s\n", e.String())
				}
			}
			if err != nil {
				return err
			}
			if result != nil && !result.OK() {
				return fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
			}
			fmt.Println("ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "./mappings", "mapping base directory")
	return cmd
}

func transformCmd() *cobra.Command {
	var base, source, direction, input, mappingID string
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Run a single transformation and print the result to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			loader := mapping.NewLoader(logger)

			reg, _, err := bootstrap.LoadRegistry(loader, base, "4.0.1", 1, true)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}

			f := facade.New(reg, fhirbridge.NewJSONBridge())
			ref := facade.MappingRef{ID: mappingID, SourceType: source}
			out, err := f.TransformJSON(ref, mapping.Direction(direction), data, mapping.NewContext())
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&base, "base", "./mappings", "mapping base directory")
	cmd.Flags().StringVar(&mappingID, "mapping", "", "resource mapping id (alternative to --source)")
	cmd.Flags().StringVar(&source, "source", "", "source type to resolve a mapping by (with --direction)")
	cmd.Flags().StringVar(&direction, "direction", "", "JSON_TO_FHIR or FHIR_TO_JSON")
	cmd.Flags().StringVar(&input, "input", "", "input document file")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP facade",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loader := mapping.NewLoader(logger)
	reg, result, err := bootstrap.LoadRegistry(loader, cfg.BasePath, cfg.FHIRVersion, 1, cfg.Strict)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load mapping registry")
	}
	if result != nil {
		for _, w := range result.Warnings {
			logger.Warn().Msg(w.String())
		}
	}
	logger.Info().Int("resourceMappings", len(reg.ResourceMappings())).Int("lookupTables", len(reg.LookupTables())).Msg("registry loaded")

	f := facade.New(reg, fhirbridge.NewJSONBridge())
	srv := httpapi.NewServer(cfg, logger, f, loader)
	e := srv.Echo()

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
