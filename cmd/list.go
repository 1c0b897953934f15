package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sfx/internal/audio"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in effects",
	Args:  cobra.NoArgs,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Built-in effects:")
	fmt.Fprintln(out)
	for _, d := range audio.Catalog() {
		if d.Sweep != nil {
			s := d.Sweep
			fmt.Fprintf(out, "  %-8s %.2fs  %s sweep %g Hz -> %g Hz\n", d.Name, d.Length(), s.Waveform, s.From, s.To)
			continue
		}
		fmt.Fprintf(out, "  %-8s %.2fs ", d.Name, d.Length())
		for _, t := range d.Tones {
			fmt.Fprintf(out, " %s %g Hz @%gs", t.Waveform, t.Frequency, t.Offset)
		}
		fmt.Fprintln(out)
	}
}
