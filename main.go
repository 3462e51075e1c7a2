package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ingest/internal/api"
	"github.com/insightdelivered/statement-ingest/internal/extractor"
	"github.com/insightdelivered/statement-ingest/internal/models"
	"github.com/insightdelivered/statement-ingest/internal/pipeline"
	"github.com/insightdelivered/statement-ingest/internal/writer"
)

var (
	outputFlag  string
	bankFlag    string
	jsonFlag    bool
	strictFlag  bool
	timeoutFlag time.Duration
	verboseFlag bool
)

func main() {
	root := &cobra.Command{
		Use:   "statement-ingest",
		Short: "Ingest bank statement PDFs and CSVs into canonical transactions",
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest <statement.pdf|statement.csv> [more files...]",
		Short: "Convert statements to normalized transaction CSV/JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := processFile(path); err != nil {
					return fmt.Errorf("processing %s: %w", path, err)
				}
			}
			return nil
		},
	}
	ingestCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file path (defaults to input name with .csv/.json extension)")
	ingestCmd.Flags().StringVar(&bankFlag, "bank", "", "skip detection and force a bank (capitec|fnb|standard|generic)")
	ingestCmd.Flags().BoolVar(&jsonFlag, "json", false, "write JSON instead of CSV")
	ingestCmd.Flags().BoolVar(&strictFlag, "strict-balance", false, "allow the balance validator to flip amount signs that repair mismatches (offline use only)")
	ingestCmd.Flags().DurationVar(&timeoutFlag, "timeout", 2*time.Minute, "extraction/OCR time budget per document")
	ingestCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the statement upload HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	root.AddCommand(ingestCmd, serveCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verboseFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func processFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	p := pipeline.New(&extractor.TesseractOCR{})
	p.StrictBalance = strictFlag
	p.ForceBank = models.BankID(bankFlag)
	p.Logger = newLogger()

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	result, err := p.Ingest(ctx, data, filepath.Base(path))
	if err != nil {
		return err
	}

	fmt.Printf("%s: bank=%s transactions=%d skipped=%d\n",
		path, result.Bank, len(result.Transactions), len(result.Skipped))
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	outPath := outputFlag
	if outPath == "" {
		base := strings.TrimSuffix(path, filepath.Ext(path))
		if jsonFlag {
			outPath = base + ".json"
		} else {
			outPath = base + ".transactions.csv"
		}
	}

	if jsonFlag {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		w := &writer.CSVWriter{IncludeSkipped: true}
		if err := w.WriteToFile(outPath, result); err != nil {
			return err
		}
	}

	fmt.Printf("  output: %s\n", outPath)
	return nil
}

func serve() error {
	logger := newLogger()
	p := pipeline.New(&extractor.TesseractOCR{})
	p.Logger = logger

	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20, // statement uploads
	})
	h := &api.Handler{Pipeline: p}
	h.Register(app)

	addr := ":" + envOr("PORT", "8080")
	logger.Info("listening", "addr", addr)
	return app.Listen(addr)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
