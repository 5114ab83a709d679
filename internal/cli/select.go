package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trackmatch/internal/model"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select <uri>",
	Short: "Add a track chosen from a disambiguation list to the playlist",
	Long: `Select completes a disambiguation: the user picked one of the candidates
and the track is added to the configured playlist.

Example:
  trackmatch select spotify:track:4uLU6hMCjMI75M1A2tKUQC --playlist 37i9dQZF1DX4JAvHpjipBk`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVar(&playlistID, "playlist", "", "playlist to add the track to")
	selectCmd.Flags().StringVar(&catalogName, "catalog", model.CatalogSpotify, "catalog provider (spotify, local)")
	selectCmd.Flags().StringVar(&localPath, "local-path", "", "JSON track list for the local catalog")
}

func runSelect(cmd *cobra.Command, args []string) error {
	uri := strings.TrimSpace(args[0])
	if uri == "" {
		return fmt.Errorf("track URI is empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fs := cmd.Flags()
	if fs.Changed("playlist") {
		cfg.Catalog.PlaylistID = playlistID
	}
	if fs.Changed("catalog") {
		cfg.Catalog.Provider = catalogName
	}
	if fs.Changed("local-path") {
		cfg.Catalog.LocalPath = localPath
		if !fs.Changed("catalog") {
			cfg.Catalog.Provider = model.CatalogLocal
		}
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	res, err := s.pipeline.Select(ctx, model.SearchCandidate{URI: uri})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Added %s to playlist %s\n", res.URI, res.PlaylistID)
	return nil
}
