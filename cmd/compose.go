package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Conceptual-Machines/orchestra-api/internal/database"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/notation"
	"github.com/Conceptual-Machines/orchestra-api/internal/services"
	"github.com/spf13/cobra"
)

var composeFlags struct {
	form          string
	key           string
	timeSignature string
	tempo         int
	temperature   float64
	measures      int
	seed          int64
	title         string
	out           string
}

func init() {
	f := composeCmd.Flags()
	f.StringVar(&composeFlags.form, "form", "aba", "song form: aba or edm")
	f.StringVar(&composeFlags.key, "key", "", "key such as C, F#m or Bb (default C, Cm for edm)")
	f.StringVar(&composeFlags.timeSignature, "time-signature", "4/4", "time signature")
	f.IntVar(&composeFlags.tempo, "tempo", 0, "quarter-note bpm (default 120, 128 for edm)")
	f.Float64Var(&composeFlags.temperature, "temperature", services.DefaultTemperature, "continuation temperature, 0 to 1.5")
	f.IntVar(&composeFlags.measures, "measures", services.DefaultMeasures, "measures per section")
	f.Int64Var(&composeFlags.seed, "seed", 0, "random seed (0 picks one)")
	f.StringVar(&composeFlags.title, "title", "", "score title")
	f.StringVarP(&composeFlags.out, "out", "o", "generated_music.musicxml", "output file (.musicxml, .xml, .mid or .midi)")
	rootCmd.AddCommand(composeCmd)
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Composes a score and writes it to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		temperature := composeFlags.temperature
		return runOffline(cmd.Context(), services.CompositionRequest{
			Form:          composeFlags.form,
			Key:           composeFlags.key,
			TimeSignature: composeFlags.timeSignature,
			Tempo:         composeFlags.tempo,
			Temperature:   &temperature,
			Measures:      composeFlags.measures,
			Seed:          composeFlags.seed,
			Title:         composeFlags.title,
		}, composeFlags.out)
	},
}

// runOffline composes with an in-memory store and exports the score to out
func runOffline(ctx context.Context, req services.CompositionRequest, out string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	exporter, err := exporterFor(out)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	tmp, err := os.MkdirTemp("", "orchestra-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	cfg.ArtifactDir = tmp

	composer, err := newComposer(ctx, cfg, database.NewMemoryStore(), nil, nil)
	if err != nil {
		return err
	}
	comp, s, err := composer.Compose(ctx, req)
	if err != nil {
		return err
	}
	if err := exporter.Export(s, out); err != nil {
		return err
	}
	printSummary(comp, s, out)
	return nil
}

func exporterFor(path string) (*notation.Exporter, error) {
	format, err := notation.FormatForName(path)
	if err != nil {
		return nil, err
	}
	if format == notation.FormatMIDI {
		return notation.NewMIDIExporter(), nil
	}
	return notation.NewMusicXMLExporter(), nil
}

func printSummary(comp *models.Composition, s *models.Score, out string) {
	fmt.Printf("%s (%s, %s, %d bpm)\n", comp.Title, comp.Key, comp.TimeSignature, comp.Tempo)
	fmt.Printf("  form: %s  measures: %d  seed: %d\n", comp.Form, comp.Measures, comp.Seed)
	for _, p := range s.Parts {
		fmt.Printf("  %-12s %d events\n", p.Name, len(p.Events))
	}
	if comp.ContinuationUsed {
		fmt.Printf("  continuation: %s\n", comp.ContinuationBackend)
	}
	fmt.Printf("wrote %s\n", out)
}
