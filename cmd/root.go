package cmd

import (
	"github.com/spf13/cobra"
)

// version is set from main, which receives it via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "orchestra",
	Short: "Procedural orchestral score generator",
	Long: `Orchestra composes multi-part scores from a seed or an uploaded melody
and writes them as MusicXML and MIDI. Run "orchestra serve" for the HTTP API.`,
	SilenceUsage: true,
}

func Execute(releaseVersion string) {
	version = releaseVersion
	rootCmd.Version = releaseVersion
	cobra.CheckErr(rootCmd.Execute())
}
