package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/facturaIA/docqa-service/internal/auth"
	"github.com/facturaIA/docqa-service/internal/config"
	"github.com/facturaIA/docqa-service/internal/extractor"
	"github.com/facturaIA/docqa-service/internal/models"
	"github.com/facturaIA/docqa-service/internal/pdftext"
	"github.com/facturaIA/docqa-service/internal/storage"
	"github.com/facturaIA/docqa-service/internal/submission"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	envPath    string
	configPath string
	provider   string
	model      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "docqa",
		Short:         "Ask questions about images and extract invoice fields from PDFs",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(opts.envPath)
		},
	}
	root.PersistentFlags().StringVar(&opts.envPath, "env-file", ".env", "dotenv file loaded before config")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&opts.provider, "provider", "", "AI provider (gemini, openai, ollama)")
	root.PersistentFlags().StringVar(&opts.model, "model", "", "model name override")

	root.AddCommand(
		newExtractCmd(),
		newAskCmd(opts),
		newSubmitCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Extract invoice fields from a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := extractor.New().Extract(func() (extractor.Document, error) {
				doc, err := pdftext.OpenFile(args[0])
				if err != nil {
					return nil, err
				}
				return doc, nil
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newAskCmd(opts *options) *cobra.Command {
	var imagePath, prompt string

	cmd := &cobra.Command{
		Use:   "ask --image <path> [--prompt text]",
		Short: "Ask the model about an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			image, err := submission.DecodeImage(data)
			if err != nil {
				return err
			}

			dispatcher, err := newDispatcher(opts)
			if err != nil {
				return err
			}
			resp, err := dispatcher.Ask(cmd.Context(), models.QAQuery{Prompt: prompt, Image: image})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "image file (jpg or png)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "question about the image")
	cmd.MarkFlagRequired("image")
	return cmd
}

func newSubmitCmd(opts *options) *cobra.Command {
	var filePath, object, prompt string

	cmd := &cobra.Command{
		Use:   "submit [--file path | --object key] [--prompt text]",
		Short: "Route a PDF to extraction or an image to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, err := loadUpload(cmd.Context(), opts, filePath, object)
			if err != nil {
				return err
			}

			dispatcher, err := newDispatcher(opts)
			if err != nil {
				return err
			}
			outcome, err := dispatcher.Submit(cmd.Context(), submission.Submission{Prompt: prompt, File: upload})
			if err != nil {
				return err
			}

			for _, notice := range outcome.Notices {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", notice)
			}
			switch outcome.Kind {
			case submission.KindExtraction:
				return writeJSON(cmd.OutOrStdout(), outcome.Extraction)
			case submission.KindAnswer:
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Answer)
			case submission.KindWarning:
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", outcome.Warning)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "PDF or image file")
	cmd.Flags().StringVar(&object, "object", "", "object key in the configured MinIO bucket")
	cmd.Flags().StringVar(&prompt, "prompt", "", "question (images only)")
	return cmd
}

func newTokenCmd(opts *options) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token --subject <name>",
		Short: "Issue a bearer token for the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			ttl, err := time.ParseDuration(cfg.Auth.TokenTTL)
			if err != nil {
				return fmt.Errorf("invalid token_ttl: %w", err)
			}
			authenticator, err := auth.New(cfg.Auth.Secret, ttl)
			if err != nil {
				return err
			}
			token, err := authenticator.GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.MarkFlagRequired("subject")
	return cmd
}

func newDispatcher(opts *options) (*submission.Dispatcher, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	return submission.NewFromConfig(cfg.AI, opts.provider, opts.model)
}

// loadUpload reads the artifact from disk or storage. Neither is (nil, nil).
func loadUpload(ctx context.Context, opts *options, filePath, object string) (*models.Upload, error) {
	switch {
	case filePath != "" && object != "":
		return nil, errors.New("use either --file or --object, not both")

	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return &models.Upload{
			Name:        filepath.Base(filePath),
			ContentType: storage.ContentTypeFromName(filePath),
			Data:        data,
		}, nil

	case object != "":
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		if !cfg.Storage.Enabled() {
			return nil, errors.New("storage not configured")
		}
		store, err := storage.New(cfg.Storage, cfg.MaxUploadSize)
		if err != nil {
			return nil, err
		}
		return store.Fetch(ctx, object)
	}
	return nil, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
