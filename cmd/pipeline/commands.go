package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bonocatalog/backend/pkg/client"
	"github.com/bonocatalog/backend/pkg/imageutil"
	"github.com/bonocatalog/backend/pkg/stage"
)

func newRootCommand() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:           "pipeline",
		Short:         "Bono catalog pipeline CLI",
		Long:          "Submit garment images, track generation jobs and fetch finished catalogs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&apiURL, "api", envOr("BONO_API_URL", "http://localhost:8080"), "Backend API base URL")

	cmd.AddCommand(newBatchCommand(&apiURL))
	cmd.AddCommand(newStatusCommand(&apiURL))
	cmd.AddCommand(newValidateCommand())
	return cmd
}

func newBatchCommand(apiURL *string) *cobra.Command {
	var (
		brand    string
		category string
		tagline  string
		title    string
		notes    string
		logo     string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "batch <image-dir>",
		Short: "Submit a directory of garment images and poll to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := listImageCandidates(args[0])
			if err != nil {
				return err
			}

			set := client.NewWorkingSet(10).WithPreviewFunc(nil)
			staged := set.Add(paths)
			if len(staged) == 0 {
				return fmt.Errorf("no supported images found in %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Staged %d images from %s\n", len(staged), args[0])

			api := client.NewAPIClient(*apiURL)
			poller := client.NewPoller(client.DefaultPollerConfig(), api, api, api)
			poller.OnUpdate = func(p client.Progress) {
				if p.TotalItems > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s (%d/%d) %s\n", p.Overall, p.Stage, p.CurrentItem, p.TotalItems, p.Message)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s %s\n", p.Overall, p.Stage, p.Message)
			}

			final := poller.Run(cmd.Context(), set.Submission(category, brand, tagline, title, notes, logo))
			if final.Stage == stage.Error {
				return fmt.Errorf("job failed: %s", final.Error)
			}

			dest := out
			if dest == "" {
				dest = fmt.Sprintf("catalog_%s.pdf", final.JobID)
			}
			if err := api.DownloadCatalog(cmd.Context(), final.JobID, dest); err != nil {
				return fmt.Errorf("download failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog saved to %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "BONO", "Brand name printed on the catalog")
	cmd.Flags().StringVar(&category, "category", "teen_boy", "Garment category tag")
	cmd.Flags().StringVar(&tagline, "tagline", "", "Brand tagline for the cover page")
	cmd.Flags().StringVar(&title, "title", "", "Collection title for the cover page")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes for the generation service")
	cmd.Flags().StringVar(&logo, "logo", "", "Path to a logo image")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output PDF path")
	return cmd
}

func newStatusCommand(apiURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <jobId>",
		Short: "Print the current status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := client.NewAPIClient(*apiURL)
			rec, err := api.JobStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <image-dir>",
		Short: "Check which files in a directory would be accepted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := listImageCandidates(args[0])
			if err != nil {
				return err
			}
			ok := 0
			for _, path := range paths {
				if imageutil.IsImageFile(path) {
					ok++
					fmt.Fprintf(cmd.OutOrStdout(), "ok    %s\n", filepath.Base(path))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "skip  %s\n", filepath.Base(path))
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d files accepted\n", ok, len(paths))
			if ok == 0 {
				return fmt.Errorf("no supported images in %s", args[0])
			}
			return nil
		},
	}
}

// listImageCandidates returns the regular files in dir, sorted by name so
// submission order is stable across runs.
func listImageCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
