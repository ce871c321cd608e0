package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keagan/reelcore/internal/config"
	"github.com/keagan/reelcore/internal/engine"
	"github.com/keagan/reelcore/internal/export"
	"github.com/keagan/reelcore/internal/ffmpeg"
	"github.com/keagan/reelcore/internal/gui"
	"github.com/keagan/reelcore/internal/logging"
	"github.com/keagan/reelcore/internal/media"
	"github.com/keagan/reelcore/internal/timeline"
	"github.com/keagan/reelcore/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reelcore",
	Short: "reelcore - synchronized multi-track video editing engine",
	Long:  "A timeline engine that keeps video, audio and text tracks locked to one clock for live preview and single-artifact export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./reelcore.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview [videos...]",
	Short: "Open the interactive preview window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger)
		if err != nil {
			return err
		}

		p := timeline.NewProject(log.Logger)
		p.SetMinClipLength(cfg.MinClipLength())
		reg := media.NewRegistry(log.Logger)
		loader := media.NewLoader(log.Logger, exec, reg)

		for _, path := range args {
			if err := attachVideo(cmd.Context(), exec, reg, p, path); err != nil {
				return err
			}
		}

		eng := engine.New(log.Logger, cfg, p, reg, nil)
		gui.NewPreview(log.Logger, cfg, eng, loader, exec).Run()
		return nil
	},
}

var (
	exportOutput string
	exportAudio  []string
	exportTexts  []string
)

var exportCmd = &cobra.Command{
	Use:   "export [videos...]",
	Short: "Render a timeline headlessly into one mp4",
	Long: `Builds a timeline from the given video files in order and captures it.

Audio beds are given as --audio path or --audio path@offset.
Text overlays are given as --text "content@start-end", e.g. --text "Hi@0-2.5".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger)
		if err != nil {
			return err
		}

		p := timeline.NewProject(log.Logger)
		p.SetMinClipLength(cfg.MinClipLength())
		reg := media.NewRegistry(log.Logger)

		for _, path := range args {
			if err := attachVideo(cmd.Context(), exec, reg, p, path); err != nil {
				return err
			}
		}

		for _, spec := range exportAudio {
			if err := attachAudio(cmd.Context(), exec, reg, p, spec); err != nil {
				return err
			}
		}

		for _, spec := range exportTexts {
			if err := attachText(cfg, p, spec); err != nil {
				return err
			}
		}

		if dir := filepath.Dir(exportOutput); dir != "." {
			if err := util.EnsureDir(dir); err != nil {
				return err
			}
		}

		log.Debug().Strs("sources", reg.Sources()).Msg("media registered")

		eng := engine.New(log.Logger, cfg, p, reg, nil)
		exp := export.New(log.Logger, cfg, eng)
		sink := export.NewFFmpegSink(log.Logger, exec, cfg, exportOutput)

		res, err := exp.Export(cmd.Context(), sink, exportOutput)
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s: %d video clips, %d audio tracks, %d text overlays in %s\n",
			res.Output,
			res.Summary.VideoClips,
			res.Summary.AudioTracks,
			res.Summary.TextOverlays,
			res.RenderTime.Round(time.Millisecond))
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Print decode metadata for a media file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !util.FileExists(path) {
			return fmt.Errorf("no such file: %s", path)
		}

		exec, err := ffmpeg.New(log.Logger)
		if err != nil {
			return err
		}

		info, err := exec.Probe(cmd.Context(), path)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", path)
		fmt.Printf("  duration: %s\n", util.FormatDuration(info.Duration))
		if info.HasVideo {
			fmt.Printf("  video:    %dx%d @ %.2f fps (%s)\n", info.Width, info.Height, info.FPS, info.VideoCodec)
		}
		if info.HasAudio {
			fmt.Printf("  audio:    %s\n", info.AudioCodec)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to ./reelcore.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		if util.FileExists("reelcore.yaml") {
			return fmt.Errorf("reelcore.yaml already exists")
		}
		if err := config.Default().Save("reelcore.yaml"); err != nil {
			return err
		}
		log.Info().Str("path", "reelcore.yaml").Msg("default config written")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "reelcore.mp4", "output file")
	exportCmd.Flags().StringArrayVar(&exportAudio, "audio", nil, "audio bed: path or path@offset (repeatable)")
	exportCmd.Flags().StringArrayVar(&exportTexts, "text", nil, "text overlay: content@start-end (repeatable)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// attachVideo probes the file and appends it to the video track, keeping
// the first clip as the primary.
func attachVideo(ctx context.Context, exec *ffmpeg.Executor, reg *media.Registry, p *timeline.Project, path string) error {
	if !util.FileExists(path) {
		return fmt.Errorf("no such file: %s", path)
	}

	info, err := exec.Probe(ctx, path)
	if err != nil {
		return err
	}

	h := media.NewSimHandle(path, nil)
	h.SetMeta(info.Duration, info.Width, info.Height)
	reg.Register(path, h)

	if len(p.VideoTrack.Clips) == 0 {
		p.AttachPrimaryVideo(path, info.Duration)
	} else {
		p.AppendVideo(path, info.Duration)
	}
	return nil
}

// attachAudio parses "path" or "path@offset" and lays the bed from the
// offset to the end of the timeline.
func attachAudio(ctx context.Context, exec *ffmpeg.Executor, reg *media.Registry, p *timeline.Project, spec string) error {
	path := spec
	var offset time.Duration

	if i := strings.LastIndex(spec, "@"); i > 0 {
		parsed, err := util.ParseTimestamp(spec[i+1:])
		if err != nil {
			return fmt.Errorf("invalid audio offset in %q: %w", spec, err)
		}
		path, offset = spec[:i], parsed
	}

	if !util.FileExists(path) {
		return fmt.Errorf("no such file: %s", path)
	}

	info, err := exec.Probe(ctx, path)
	if err != nil {
		return err
	}

	h := media.NewSimHandle(path, nil)
	h.SetMeta(info.Duration, info.Width, info.Height)
	reg.Register(path, h)

	p.AddAudio(path, offset, p.Duration(), 1.0)
	return nil
}

// attachText parses "content@start-end" into a centered overlay
func attachText(cfg *config.Config, p *timeline.Project, spec string) error {
	i := strings.LastIndex(spec, "@")
	if i <= 0 {
		return fmt.Errorf("invalid text overlay %q, want content@start-end", spec)
	}

	content := spec[:i]
	bounds := strings.SplitN(spec[i+1:], "-", 2)
	if len(bounds) != 2 {
		return fmt.Errorf("invalid text overlay %q, want content@start-end", spec)
	}

	start, err := util.ParseTimestamp(bounds[0])
	if err != nil {
		return fmt.Errorf("invalid text overlay %q: %w", spec, err)
	}
	end, err := util.ParseTimestamp(bounds[1])
	if err != nil {
		return fmt.Errorf("invalid text overlay %q: %w", spec, err)
	}

	p.AddText(timeline.TextAttrs{
		Content: content,
		X:       float64(cfg.Design.Width) / 2,
		Y:       float64(cfg.Design.Height) * 0.8,
		Size:    64,
		Color:   "#ffffff",
		Style:   timeline.StyleOutline,
	}, start, end)
	return nil
}
