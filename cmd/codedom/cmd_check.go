package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dhamidi/codedom/csharp/codebase"
)

func newCheckCmd() *cobra.Command {
	var (
		jobs      int
		useCache  bool
		cacheDir  string
		progress  bool
		snippets  bool
		colorMode string
	)

	cmd := &cobra.Command{
		Use:   "check [dir|file...]",
		Short: "Parse and resolve a codebase and report diagnostics",
		Long: `Parse every .cs file below the given directories (default: the current
directory), resolve names across all of them and print the diagnostics.

Files matched by .gitignore or by [check].exclude in codedom.toml are
skipped. The command exits with status 1 when any error is reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setColor(colorMode); err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}
			cfg, err := codebase.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("jobs") {
				cfg.Check.Jobs = jobs
			}
			if cmd.Flags().Changed("cache") {
				cfg.Check.Cache = useCache
			}

			paths, err := collectPaths(args, cfg)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no %s files found", codebase.SourceExt)
			}

			root, err := filepath.Abs(cfg.Root(args[0]))
			if err != nil {
				return err
			}
			opts := codebase.CheckOptions{}
			if cfg.Check.Cache {
				if opts.Cache, err = codebase.OpenDiskCache(cacheDir); err != nil {
					return fmt.Errorf("open cache: %w", err)
				}
			}
			if progress {
				bar := newProgressBar(len(paths), "checking")
				defer bar.Finish()
				opts.Progress = func(string) { _ = bar.Add(1) }
			}

			cb := codebase.New(root, codebase.WithConfig(cfg))
			reports, err := cb.Check(cmd.Context(), paths, opts)
			if err != nil {
				return err
			}
			if progress {
				fmt.Fprintln(os.Stderr)
			}

			errors, findings := 0, 0
			out := cmd.OutOrStdout()
			for _, r := range reports {
				var src []byte
				if snippets && len(r.Findings) > 0 {
					src, _ = os.ReadFile(r.Path)
				}
				printReport(out, root, r, src)
				errors += r.Errors()
				findings += len(r.Findings)
			}
			if errors > 0 {
				return fmt.Errorf("%d errors in %d findings", errors, findings)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files parsed in parallel (default: number of CPUs)")
	cmd.Flags().BoolVar(&useCache, "cache", false, "reuse diagnostics of unchanged codebases")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "cache directory (default: user cache dir)")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	cmd.Flags().BoolVar(&snippets, "snippets", true, "show the source line of each finding")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colored output (auto, always, never)")

	return cmd
}

// collectPaths expands directories into their source files.
func collectPaths(args []string, cfg codebase.Config) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		found := []string{abs}
		if info.IsDir() {
			if found, err = codebase.Discover(abs, cfg.Check.Exclude); err != nil {
				return nil, fmt.Errorf("scan %s: %w", arg, err)
			}
		}
		for _, p := range found {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths, nil
}

func newProgressBar(n int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
