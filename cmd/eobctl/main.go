// eobctl analyzes EOB documents from the command line, keeping results in a
// local SQLite history so exports and appeal letters work offline after the
// initial extraction.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/detect"
	"github.com/clearclaim/eob-analyzer/internal/export"
	"github.com/clearclaim/eob-analyzer/internal/extract"
	"github.com/clearclaim/eob-analyzer/internal/ingest"
	"github.com/clearclaim/eob-analyzer/internal/llm/openai"
	"github.com/clearclaim/eob-analyzer/internal/pipeline"
	"github.com/clearclaim/eob-analyzer/internal/repository"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "eobctl",
		Short:         "Analyze Explanation of Benefits documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newDetectCmd(),
		newAnalyzeCmd(),
		newExportCmd(),
		newLetterCmd(),
		newHistoryCmd(),
		newWatchCmd(),
	)
	return root
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Classify a text file as EOB / not-EOB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res := detect.Detect(string(b))
			fmt.Printf("isEOB: %v\nconfidence: %d\nreason: %s\n", res.IsEOB, res.Confidence, res.Reason)
			return nil
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var force bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Extract and analyze an EOB, storing the result in history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			processor, err := newProcessor(store)
			if err != nil {
				return err
			}

			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			stored, err := processor.ProcessText(cmd.Context(), filepath.Base(args[0]), string(b), force)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stored)
			}

			rec := stored.Record
			fmt.Printf("record %s stored (claim %s, %d line items)\n\n", stored.ID, rec.ClaimNumber, len(rec.LineItems))
			fmt.Println(rec.PlainLanguageSummary)
			if len(rec.Issues) > 0 {
				fmt.Printf("\n%d issue(s) found:\n", len(rec.Issues))
				for _, is := range rec.Issues {
					fmt.Printf("  [%s/%s] %s\n      %s\n", is.Type, is.Severity, is.Title, is.Description)
					if is.PotentialSavings > 0 {
						fmt.Printf("      potential savings: $%.2f\n", is.PotentialSavings)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "analyze even if the document does not look like an EOB")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full record as JSON")
	return cmd
}

func newExportCmd() *cobra.Command {
	var format string
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <record-id>",
		Short: "Export a stored record as CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, store, err := loadStored(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			var f *export.File
			switch format {
			case "csv":
				f = export.CSV(stored.Record)
			case "xlsx":
				f, err = export.XLSX(stored.Record)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unsupported format %q", common.ErrInvalidInput, format)
			}
			return writeFile(outDir, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or xlsx")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}

func newLetterCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "letter <record-id>",
		Short: "Generate an appeal letter for a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, store, err := loadStored(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			writer := export.NewLetterWriter(newCompletionClient(), slog.Default())
			f, err := writer.AppealLetter(cmd.Context(), stored.Record)
			if err != nil {
				if errors.Is(err, common.ErrNoAppealableIssues) {
					return fmt.Errorf("record %s has no appealable issues", stored.ID)
				}
				return err
			}
			return writeFile(outDir, f)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously analyzed records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.ListRecords(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("no records yet")
				return nil
			}
			for _, r := range recs {
				fmt.Printf("%s  %s  claim=%s  confidence=%d  %s\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.ClaimNumber, r.DetectConfidence, r.DocumentName)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum records to list")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir> [dir...]",
		Short: "Watch directories and analyze dropped .txt documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			processor, err := newProcessor(store)
			if err != nil {
				return err
			}
			runner := ingest.NewRunner(processor, slog.Default())
			return runner.Run(cmd.Context(), ingest.WatchConfig{
				Roots:       args,
				InitialScan: false,
				Debounce:    debounce,
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "event debounce window")
	return cmd
}

func newCompletionClient() *openai.Client {
	cfg := common.LoadConfig().LLM
	return openai.NewClient(openai.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}, slog.Default())
}

func newProcessor(store *repository.LocalStore) (*pipeline.Processor, error) {
	cfg := common.LoadConfig().LLM
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for analysis")
	}
	extractor := extract.NewClaimExtractor(newCompletionClient(), cfg.MaxDocumentChars, slog.Default())
	return pipeline.NewProcessor(slog.Default(), extractor, store), nil
}

func openHistory() (*repository.LocalStore, error) {
	dir := os.Getenv("EOB_HISTORY_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".eob-analyzer")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return repository.OpenLocal(filepath.Join(dir, "history.db"))
}

func loadStored(ctx context.Context, rawID string) (*repository.StoredRecord, *repository.LocalStore, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: record id must be a UUID", common.ErrInvalidInput)
	}
	store, err := openHistory()
	if err != nil {
		return nil, nil, err
	}
	stored, err := store.GetRecord(ctx, id)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return stored, store, nil
}

func writeFile(dir string, f *export.File) error {
	path := filepath.Join(dir, f.Filename)
	if err := os.WriteFile(path, f.Content, 0o644); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}
