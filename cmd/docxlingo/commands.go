package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ownlingo/docxlingo/config"
	"github.com/ownlingo/docxlingo/document"
	"github.com/ownlingo/docxlingo/document/docx"
	"github.com/ownlingo/docxlingo/logging"
	"github.com/ownlingo/docxlingo/orchestrator"
	"github.com/ownlingo/docxlingo/progress"
	"github.com/ownlingo/docxlingo/translator"
	"github.com/ownlingo/docxlingo/translator/langdetect"
)

const previewSections = 5

func newTranslateCmd() *cobra.Command {
	var (
		lang         string
		output       string
		progressMode string
	)

	cmd := &cobra.Command{
		Use:   "translate <file.docx>",
		Short: "Translate a document and save the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !translator.IsSupportedLanguage(lang) {
				return fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(translator.Languages(), ", "))
			}
			if progressMode != "log" && progressMode != "bar" {
				return fmt.Errorf("--progress must be log or bar, got %q", progressMode)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return err
			}
			if err := docx.SetLicenseKey(cfg.UnidocLicenseKey); err != nil {
				return err
			}

			input := args[0]
			f, err := docx.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			summary := document.Summarize(f)
			logger.Info().
				Int("paragraphs", summary.Paragraphs).
				Int("tables", summary.Tables).
				Int("non_empty_paragraphs", summary.NonEmptyParagraphs).
				Msg("document validated")
			if summary.IsEmpty() {
				return fmt.Errorf("%s has no tables or paragraphs", input)
			}
			if code := langdetect.Dominant(document.Sections(f)); code != "" && code != "ko" {
				logger.Warn().Str("detected_language", code).Msg("document does not look Korean, most text may be skipped")
			}

			policy, closeProviders, err := buildPolicy(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeProviders()

			var sink progress.Sink = progress.NewLogSink(logger)
			if progressMode == "bar" {
				bar := progress.NewTerminalSink(cmd.ErrOrStderr())
				defer bar.Stop()
				sink = bar
			}

			o := orchestrator.New(policy,
				orchestrator.WithBatchSize(cfg.BatchSize),
				orchestrator.WithSink(sink),
				orchestrator.WithLogger(logger),
			)

			stats, err := o.Run(cmd.Context(), f, lang)
			if err != nil {
				return fmt.Errorf("translation interrupted: %w", err)
			}

			if output == "" {
				output = filepath.Join(cfg.OutputDir, "translated_"+filepath.Base(input))
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			if err := f.SaveToFile(output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d/%d cells, %d/%d paragraphs translated)\n",
				output, stats.TranslatedCells, stats.Cells, stats.TranslatedParagraphs, stats.Paragraphs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", translator.English, "target language")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default OUTPUT_DIR/translated_<name>)")
	cmd.Flags().StringVar(&progressMode, "progress", "log", "progress display: log or bar")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.docx>",
		Short: "Show document statistics and a preview of its first sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.LoadLicenseKey()
			if err != nil {
				return err
			}
			if err := docx.SetLicenseKey(key); err != nil {
				return err
			}

			f, err := docx.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			writeInspection(cmd.OutOrStdout(), f)
			return nil
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported target languages",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, l := range translator.Languages() {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
		},
	}
}
