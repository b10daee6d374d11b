package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aaelony/dx-fintools-fs/pkg/bundle"
	"github.com/aaelony/dx-fintools-fs/pkg/web"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Build a release bundle of the calculator's web assets",
	Long: `Copies the embedded web assets into the output directory, precompresses
them, writes a checksum manifest and packs everything into a versioned
.tar.xz archive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := cmd.Flags().GetString("version")
		if err != nil {
			return err
		}

		outDir, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}

		logger := zerolog.New(NewConsoleWriter())

		archive, err := bundle.Build(cmd.Context(), web.Assets(), bundle.Options{
			Version: version,
			OutDir:  outDir,
		})
		if err != nil {
			return err
		}

		logger.Info().Msgf("Wrote %s", archive)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundleCmd)

	bundleCmd.Flags().String("version", "", "version to stamp on the bundle (semantic version)")
	bundleCmd.Flags().String("out", "dist", "output directory")

	//nolint:errcheck
	bundleCmd.MarkFlagRequired("version")
}
