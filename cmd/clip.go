package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sfx/internal/audio"
	"sfx/internal/clips"
	"sfx/internal/log"
)

var (
	clipTexts  string
	clipOut    string
	clipGap    float64
	clipDetect clips.DetectOptions
)

var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Cut recorded phrase sheets into clips",
	Long: `A phrase sheet is one recording of many spoken phrases separated by
pauses. 'clip analyze' finds the phrases and writes a manifest of labelled
time ranges; 'clip play' plays phrases by id.`,
}

var clipAnalyzeCmd = &cobra.Command{
	Use:   "analyze <audio>",
	Short: "Detect phrases and write a clip manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runClipAnalyze,
}

var clipPlayCmd = &cobra.Command{
	Use:   "play <audio> <manifest> <id>...",
	Short: "Play clips by id",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runClipPlay,
}

var clipListCmd = &cobra.Command{
	Use:   "list <manifest>",
	Short: "List the clips of a manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runClipList,
}

func init() {
	clipAnalyzeCmd.Flags().StringVar(&clipTexts, "texts", "", "file with one phrase per line, in recording order (required)")
	clipAnalyzeCmd.Flags().StringVarP(&clipOut, "output", "o", "lyd_data.json", "manifest file (.json, .yaml or .yml)")
	clipAnalyzeCmd.Flags().Float64Var(&clipDetect.ThresholdDB, "threshold-db", 0, "silence level in dBFS (default from config)")
	clipAnalyzeCmd.Flags().DurationVar(&clipDetect.MinSilence, "min-silence", 0, "shortest pause between phrases (default from config)")
	_ = clipAnalyzeCmd.MarkFlagRequired("texts")

	clipPlayCmd.Flags().Float64Var(&clipGap, "gap", 0.2, "pause between clips, in seconds")

	clipCmd.AddCommand(clipAnalyzeCmd, clipPlayCmd, clipListCmd)
	rootCmd.AddCommand(clipCmd)
}

func runClipAnalyze(cmd *cobra.Command, args []string) error {
	texts, err := readTexts(clipTexts)
	if err != nil {
		return err
	}

	opts := clips.DetectOptions{ThresholdDB: cfg.Clips.ThresholdDB, MinSilence: cfg.Clips.MinSilence}
	if cmd.Flags().Changed("threshold-db") {
		opts.ThresholdDB = clipDetect.ThresholdDB
	}
	if cmd.Flags().Changed("min-silence") {
		opts.MinSilence = clipDetect.MinSilence
	}

	// Analysis never needs the speakers.
	e := audio.New(append(loaderOptions(), audio.WithContextFactory(audio.OfflineFactory(cfg.Audio.SampleRate)))...)
	defer func() { _ = e.Close() }()
	buf := e.LoadAudioBuffer(cmd.Context(), args[0])
	if buf == nil {
		return fmt.Errorf("could not load %s", args[0])
	}

	segments := clips.Detect(buf, opts)
	log.Info(log.CatClips, "Silence detection done", "segments", len(segments), "threshold_db", opts.ThresholdDB, "min_silence", opts.MinSilence)

	manifest, missing := clips.Label(segments, texts)
	if err := manifest.WriteFile(clipOut); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d segments for %d texts.\n", len(segments), len(texts))
	if missing > 0 {
		fmt.Fprintf(out, "Warning: %d texts have no segment; try a higher --threshold-db or a shorter --min-silence.\n", missing)
	}
	fmt.Fprintf(out, "Wrote %s\n", clipOut)
	return nil
}

func runClipPlay(cmd *cobra.Command, args []string) error {
	manifest, err := clips.ReadManifest(args[1])
	if err != nil {
		return err
	}
	ids := args[2:]
	for _, id := range ids {
		c, ok := manifest.Lookup(id)
		if !ok {
			return fmt.Errorf("%w: %q", clips.ErrUnknownClip, id)
		}
		if c.Empty() {
			return fmt.Errorf("%w: %q", clips.ErrEmptyClip, id)
		}
	}

	e := newEngine(cmd)
	defer func() { _ = e.Close() }()
	buf := e.LoadAudioBuffer(cmd.Context(), args[0])
	if buf == nil {
		return fmt.Errorf("could not load %s", args[0])
	}
	if !startAudio(cmd, e) {
		return nil
	}

	p := clips.NewPlayer(e, buf, manifest)
	for _, id := range ids {
		if err := p.Play(id); err != nil {
			return err
		}
		c, _ := manifest.Lookup(id)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %q\n", c.ID, c.Text)
		waitPlayback(e, c.End-c.Start, clipGap)
	}
	return nil
}

func runClipList(cmd *cobra.Command, args []string) error {
	manifest, err := clips.ReadManifest(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, c := range manifest {
		fmt.Fprintf(out, "%-32s %7.3f %7.3f  %s\n", c.ID, c.Start, c.End, c.Text)
	}
	return nil
}

// readTexts returns the non-blank lines of path.
func readTexts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texts: %w", err)
	}
	defer func() { _ = f.Close() }()

	var texts []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading texts: %w", err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%s has no texts", path)
	}
	return texts, nil
}
