package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"ritobin-go/internal/convert"
	"ritobin-go/internal/diff"
	"ritobin-go/internal/download"
	"ritobin-go/internal/logging"
	"ritobin-go/internal/manifest"
	"ritobin-go/internal/normalize"
)

func (a *app) convertCmd() *cobra.Command {
	var (
		output       string
		recursive    bool
		manifestPath string
	)
	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert a file or directory between .bin and .py/.ritobin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			summary, convErr := convert.New(a.cfg, a.logger).Convert(input, output, recursive)
			if manifestPath == "" {
				return convErr
			}

			root := input
			if info, err := os.Stat(input); err == nil && !info.IsDir() {
				root = filepath.Dir(input)
			}
			m, err := manifest.Build(root, summary.Converted)
			if err != nil {
				return errors.Join(convErr, err)
			}
			if err := manifest.Save(m, manifestPath); err != nil {
				return errors.Join(convErr, err)
			}
			a.logger.Info(fmt.Sprintf("Wrote manifest %s (%d files, root %s)", logging.Hyperlink(manifestPath), len(m.Entries), m.RootDigest))
			return convErr
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (single file only)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "write a YAML manifest of converted files")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	var (
		contextLines int
		noColor      bool
	)
	cmd := &cobra.Command{
		Use:   "diff <file1> <file2>",
		Short: "Show differences between two property files in any format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if contextLines < 0 {
				return fmt.Errorf("invalid context %d: must not be negative", contextLines)
			}
			for _, path := range args {
				if err := normalize.Check(path); err != nil {
					return fmt.Errorf("cannot diff %s: %w", path, err)
				}
			}

			n := normalize.New(convert.New(a.cfg, a.logger))
			left, err := n.Text(args[0])
			if err != nil {
				return err
			}
			right, err := n.Text(args[1])
			if err != nil {
				return err
			}

			result := diff.Compute(left, right, contextLines)
			return diff.Render(a.stdout, result, diff.RenderOptions{
				OldName: args[0],
				NewName: args[1],
				Color:   colorEnabled(a.stdout, noColor),
			})
		},
	}
	cmd.Flags().IntVarP(&contextLines, "context", "c", 3, "number of context lines around changes")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the config file location and values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := termenv.NewOutput(a.stdout, termenv.WithProfile(termenv.ANSI))
			color := colorEnabled(a.stdout, false)
			paint := func(s, c string) string {
				if !color {
					return s
				}
				return out.String(s).Foreground(out.Color(c)).String()
			}

			fmt.Fprintf(out, "Config file: %s\n", a.cfgAt)
			dir := a.cfg.HashtableDir
			if dir == "" {
				fmt.Fprintf(out, "hashtable_dir: %s\n", paint("(not set)", "8"))
				return nil
			}
			status := paint("(exists)", "2")
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				status = paint("(missing)", "3")
			}
			fmt.Fprintf(out, "hashtable_dir: %s %s\n", dir, status)
			return nil
		},
	}

	reset := &cobra.Command{
		Use:         "reset",
		Short:       "Restore the default configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.store.Reset()
			if err != nil {
				return err
			}
			a.logger.Info(fmt.Sprintf("Configuration reset to defaults (hashtable_dir = %q)", cfg.HashtableDir))
			return nil
		},
	}

	set := &cobra.Command{
		Use:         "set <key> <value>",
		Short:       "Set a configuration value",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Set(args[0], args[1]); err != nil {
				return err
			}
			a.logger.Info(fmt.Sprintf("Set %s = %s", args[0], args[1]))
			return nil
		},
	}

	cmd.AddCommand(show, reset, set)
	return cmd
}

func (a *app) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download-hashes",
		Short: "Download the hash tables from CommunityDragon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := download.New(a.logger)
			if isTerminal(a.stderr) {
				d.Progress = a.stderr
			}
			return d.DownloadAll(cmd.Context(), a.cfg.HashtableDir)
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <manifest>",
		Short: "Check converted files against a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			changed, err := m.Verify()
			if err != nil {
				return err
			}
			if len(changed) > 0 {
				for _, path := range changed {
					a.logger.Warn(fmt.Sprintf("Changed: %s", path))
				}
				return fmt.Errorf("%d of %d file(s) changed: %s", len(changed), len(m.Entries), strings.Join(changed, ", "))
			}
			a.logger.Info(fmt.Sprintf("All %d file(s) match the manifest", len(m.Entries)))
			return nil
		},
	}
}
