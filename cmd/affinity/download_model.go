package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
	"github.com/spf13/cobra"

	"github.com/helixml/affinity/internal/config"
)

// defaultModel is a small sentence-transformer suited to short bios.
const defaultModel = "sentence-transformers/all-MiniLM-L6-v2"

func downloadModelCmd() *cobra.Command {
	var (
		model string
		dest  string
	)

	cmd := &cobra.Command{
		Use:   "download-model",
		Short: "Download a local embedding model from Hugging Face",
		Long: `Download an ONNX sentence-transformer model for offline embedding.

The model is saved under --dest (default: {data_dir}/models), which is where
the server looks for it when no EMBEDDING_ENDPOINT_API_KEY is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dest == "" {
				dest = filepath.Join(config.DefaultDataDir(), "models")
			}
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Downloading %s to %s...\n", model, dest)

			opts := hugot.NewDownloadOptions()
			opts.OnnxFilePath = "onnx/model.onnx"
			modelPath, err := hugot.DownloadModel(model, dest, opts)
			if err != nil {
				return fmt.Errorf("download model: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Model downloaded to %s\n", modelPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", defaultModel, "Hugging Face model name")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination directory")

	return cmd
}
