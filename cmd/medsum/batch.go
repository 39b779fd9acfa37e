package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/medreport-summarizer/internal/async"
	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
	"github.com/joseph-ayodele/medreport-summarizer/internal/export"
	"github.com/joseph-ayodele/medreport-summarizer/internal/ingest"
)

func batchCmd() *cobra.Command {
	var (
		workers       int
		exts          []string
		outDir        string
		xlsxPath      string
		includeHidden bool
		maxSize       int64
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Summarize every report file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			paths, stats, err := ingest.ScanDirectory(root, exts, !includeHidden)
			if err != nil {
				return err
			}
			paths = withoutSummaries(paths)

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			a.logger.Info("batch.scan", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)

			start := time.Now()
			results := async.RunBatch(cmd.Context(), a.processor, paths, a.logger,
				async.WithWorkers(workers),
				async.WithMaxFileBytes(maxSize),
				async.WithProcessTimeout(a.cfg.Pipeline.RequestTimeout+5*time.Second),
			)

			var (
				rows   = make([]export.BatchRow, 0, len(results))
				failed int
			)
			for _, r := range results {
				name := relName(root, r.Job.Path)
				if r.Err != nil {
					failed++
					rows = append(rows, export.BatchRow{Source: name, Err: failureText(r.Err)})
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %s\n", name, failureText(r.Err))
					continue
				}
				if err := writeOutputs(r.Job.Path, root, outDir, r.Result.Record); err != nil {
					return err
				}
				rows = append(rows, export.BatchRow{Source: name, Record: r.Result.Record})
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d flags)\n", name, len(r.Result.Record.CriticalFlags))
			}

			if xlsxPath != "" {
				data, err := export.NewService(a.logger).BatchXLSX(rows)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
					return err
				}
			}
			a.logger.Info("batch.done",
				"reports", len(results),
				"failed", failed,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			if failed > 0 && failed == len(results) {
				return fmt.Errorf("all %d reports failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent reports")
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "file extensions to include (default txt,md,text)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "directory for summaries (default: next to each report)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write one workbook with a row per report")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "include hidden files and directories")
	cmd.Flags().Int64Var(&maxSize, "max-bytes", 1<<20, "largest report accepted")
	return cmd
}

// writeOutputs writes <name>.summary.json and <name>.summary.txt.
func writeOutputs(path, root, outDir string, rec *entity.SummaryRecord) error {
	dir := filepath.Dir(path)
	if outDir != "" {
		dir = filepath.Join(outDir, filepath.Dir(relName(root, path)))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	data, err := json.MarshalIndent(entity.Normalize(rec), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, base+".summary.json"), append(data, '\n'), 0o644); err != nil {
		return err
	}
	text := export.FormatText(rec, time.Now()) + "\n"
	return os.WriteFile(filepath.Join(dir, base+".summary.txt"), []byte(text), 0o644)
}

// withoutSummaries drops outputs of earlier runs.
func withoutSummaries(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if !strings.Contains(filepath.Base(p), ".summary.") {
			out = append(out, p)
		}
	}
	return out
}

func relName(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

func failureText(err error) string {
	switch common.ErrorCode(err) {
	case common.CodeEmptyInput:
		return "empty medical report"
	case common.CodeTimeout:
		return "timed out"
	}
	return err.Error()
}
