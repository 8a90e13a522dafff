package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Conceptual-Machines/orchestra-api/internal/services"
	"github.com/spf13/cobra"
)

var harmonizeFlags struct {
	in    string
	form  string
	key   string
	seed  int64
	title string
	out   string
}

func init() {
	f := harmonizeCmd.Flags()
	f.StringVarP(&harmonizeFlags.in, "in", "i", "", "melody file (.musicxml, .xml, .mid or .midi)")
	f.StringVar(&harmonizeFlags.form, "form", "aba", "aba for strings, edm for synths and drums")
	f.StringVar(&harmonizeFlags.key, "key", "", "key of the melody (default C, Cm for edm)")
	f.Int64Var(&harmonizeFlags.seed, "seed", 0, "random seed (0 picks one)")
	f.StringVar(&harmonizeFlags.title, "title", "", "score title (default from the file)")
	f.StringVarP(&harmonizeFlags.out, "out", "o", "harmonized.musicxml", "output file (.musicxml, .xml, .mid or .midi)")
	_ = harmonizeCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(harmonizeCmd)
}

var harmonizeCmd = &cobra.Command{
	Use:   "harmonize",
	Short: "Harmonizes a melody file for the ensemble",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(harmonizeFlags.in)
		if err != nil {
			return fmt.Errorf("reading melody: %w", err)
		}
		return runOffline(cmd.Context(), services.CompositionRequest{
			Form:       harmonizeFlags.form,
			Key:        harmonizeFlags.key,
			Seed:       harmonizeFlags.seed,
			Title:      harmonizeFlags.title,
			SourceName: filepath.Base(harmonizeFlags.in),
			Source:     data,
		}, harmonizeFlags.out)
	},
}
