package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ailbums",
	Short: "AI-assisted photo culling for event photographers",
	Long: `Ailbums drives the photo culling workflow: photos are uploaded into a
workspace, scored and tagged by the Ailbums AI backend, reviewed through
derived views (filters, duplicate groups, person groups) and finally saved
as an album.

The serve command runs the browser workspace; cull runs a one-shot batch
over a local directory.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
