package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	_ "time/tzdata"

	"github.com/kikiluvv/clipmerge/internal/config"
	"github.com/kikiluvv/clipmerge/internal/ffmpeg"
	"github.com/kikiluvv/clipmerge/internal/gui"
	"github.com/kikiluvv/clipmerge/internal/logging"
	"github.com/kikiluvv/clipmerge/internal/pipeline"
	"github.com/kikiluvv/clipmerge/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool
	logFile io.Closer
)

var mergeFlags struct {
	outputDir string
	name      string
	fade      float64
	font      string
	fontSize  int
	sourceTZ  string
	targetTZ  string
	dryRun    bool
}

func main() {
	ctx := context.Background()

	err := rootCmd.ExecuteContext(ctx)
	closeLog()

	if err != nil {
		var execErr *ffmpeg.EngineExecutionError
		if errors.As(err, &execErr) && execErr.ExitCode > 0 {
			os.Exit(execErr.ExitCode)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipmerge",
	Short: "clipmerge - date-labelled cross-fade merge of camera clips",
	Long: "Orders video clips by capture time, stamps each with its date and joins them\n" +
		"into one file with video and audio cross-fades in a single ffmpeg pass.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Console logging first so config errors are visible
		if _, err := logging.Init(verbose, ""); err != nil {
			return err
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		closer, err := logging.Init(verbose, cfg.Log.File)
		if err != nil {
			log.Warn().Err(err).Msg("file logging disabled")
		}
		logFile = closer

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

// closeLog releases the log file opened by PersistentPreRunE. It runs from
// main so failed commands close it too.
func closeLog() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	f := mergeCmd.Flags()
	f.StringVarP(&mergeFlags.outputDir, "output-dir", "o", "", "folder for the merged file")
	f.StringVarP(&mergeFlags.name, "name", "n", "", "merged file name")
	f.Float64Var(&mergeFlags.fade, "fade", -1, "cross-fade length in seconds")
	f.StringVar(&mergeFlags.font, "font", "", "label font file")
	f.IntVar(&mergeFlags.fontSize, "font-size", 0, "label font size")
	f.StringVar(&mergeFlags.sourceTZ, "source-tz", "", "timezone the camera clock was set to")
	f.StringVar(&mergeFlags.targetTZ, "target-tz", "", "timezone labels are shown in")
	f.BoolVar(&mergeFlags.dryRun, "dry-run", false, "print the ffmpeg command instead of running it")

	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(guiCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge [folder | files...]",
	Short: "Merge clips into one labelled video",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		applyInputArgs(cfg, args)
		applyMergeFlags(cmd, cfg)

		engine, err := newExecutor(cfg)
		if err != nil {
			return err
		}

		pipe, err := pipeline.New(log.Logger, engine, cfg)
		if err != nil {
			return err
		}

		if mergeFlags.dryRun {
			plan, err := pipe.Plan(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(shellJoin(engine.CommandLine(plan.Args())))
			return nil
		}

		bar := progressbar.NewOptions(100,
			progressbar.OptionSetDescription("Merging"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		)

		res, err := pipe.Run(cmd.Context(), pipeline.RunOptions{
			Progress: func(p *ffmpeg.Progress) {
				bar.Describe("Merging " + p.Time)
				bar.Set(int(p.Percentage))
			},
		})
		bar.Finish()

		if err != nil {
			var execErr *ffmpeg.EngineExecutionError
			if errors.As(err, &execErr) && execErr.Stderr != "" {
				log.Error().Int("exit_code", execErr.ExitCode).Msg("ffmpeg output:\n" + execErr.Stderr)
			}
			return err
		}

		log.Info().
			Str("output", res.OutputPath).
			Int("clips", len(res.Clips)).
			Str("length", util.FormatDuration(res.Length)).
			Dur("elapsed", res.Elapsed).
			Msg("done")

		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [folder | files...]",
	Short: "Show clips in merge order with their labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		applyInputArgs(cfg, args)

		engine, err := newExecutor(cfg)
		if err != nil {
			return err
		}

		pipe, err := pipeline.New(log.Logger, engine, cfg)
		if err != nil {
			return err
		}

		ordered, labels, err := pipe.Order(cmd.Context())
		if err != nil {
			return err
		}

		for i, c := range ordered {
			info, err := engine.ProbeVideo(cmd.Context(), c.Path)
			if err != nil {
				log.Warn().Err(err).Str("clip", c.Path).Msg("could not probe clip")
				fmt.Printf("%3d  %-18s  %s\n", c.Index+1, labels[i], filepath.Base(c.Path))
				continue
			}
			fmt.Printf("%3d  %-18s  %s  %s  %dx%d  %.2ffps  audio:%v\n",
				c.Index+1, labels[i], filepath.Base(c.Path),
				util.FormatDuration(info.Duration), info.Width, info.Height, info.FPS, info.HasAudio)
		}

		return nil
	},
}

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the merge window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		engine, err := newExecutor(cfg)
		if err != nil {
			return err
		}

		gui.Run(log.Logger, cfg, engine)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if util.FileExists(path) && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.Default().Save(path); err != nil {
			return err
		}

		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		_, err = os.Stdout.Write(data)
		return err
	},
}

func newExecutor(cfg *config.Config) (*ffmpeg.Executor, error) {
	return ffmpeg.New(log.Logger, ffmpeg.Options{
		FFmpegPath:  cfg.FFmpeg.BinaryPath,
		FFprobePath: cfg.FFmpeg.ProbePath,
		Threads:     cfg.FFmpeg.Threads,
	})
}

// applyInputArgs takes a single folder argument as the input folder and
// anything else as an explicit file list
func applyInputArgs(cfg *config.Config, args []string) {
	if len(args) == 0 {
		return
	}
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			cfg.Input = config.InputConfig{Folder: args[0]}
			return
		}
	}
	cfg.Input = config.InputConfig{Files: args}
}

func applyMergeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("output-dir") {
		cfg.Output.Folder = mergeFlags.outputDir
	}
	if flags.Changed("name") {
		cfg.Output.FileName = mergeFlags.name
	}
	if flags.Changed("fade") {
		cfg.Fade.Duration = mergeFlags.fade
	}
	if flags.Changed("font") {
		cfg.Label.FontFile = mergeFlags.font
	}
	if flags.Changed("font-size") {
		cfg.Label.FontSize = mergeFlags.fontSize
	}
	if flags.Changed("source-tz") {
		cfg.Timezone.Source = mergeFlags.sourceTZ
	}
	if flags.Changed("target-tz") {
		cfg.Timezone.Target = mergeFlags.targetTZ
	}
}

// shellJoin quotes arguments for copy-pasting into a POSIX shell
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\n'\"\\$`;&|<>()[]*?!#~=") {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
