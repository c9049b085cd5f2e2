package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/agencyops/seo-intel/internal/config"
	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/fetch"
	"github.com/agencyops/seo-intel/internal/models"
	"github.com/agencyops/seo-intel/internal/validation"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// NewSourcesCmd creates the sources command group
func NewSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage content sources",
	}

	cmd.AddCommand(newSourcesListCmd())
	cmd.AddCommand(newSourcesImportCmd())
	cmd.AddCommand(newSourcesTestCmd())

	return cmd
}

func newSourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB()

			sourceRepo := database.NewSourceRepository(db)
			sources, err := sourceRepo.List(context.Background(), false)
			if err != nil {
				return fmt.Errorf("failed to list sources: %w", err)
			}

			if len(sources) == 0 {
				fmt.Println("No sources configured")
				return nil
			}

			fmt.Println("Configured sources:")
			for _, source := range sources {
				state := "active"
				if !source.Active {
					state = "inactive"
				}
				fmt.Printf("  - %s (%s)\n", source.Name, source.ID)
				fmt.Printf("    URL: %s\n", source.URL)
				fmt.Printf("    Tier: %s  Category: %s  Method: %s  [%s]\n",
					source.Tier, source.Category, source.Method, state)
				fmt.Println()
			}

			return nil
		},
	}
}

// sourcePreset is one entry in a YAML source import file
type sourcePreset struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Tier     string `yaml:"tier"`
	Category string `yaml:"category"`
	Method   string `yaml:"method"`
}

type sourceImportFile struct {
	Sources []sourcePreset `yaml:"sources"`
}

func newSourcesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import sources from a YAML preset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read preset file: %w", err)
			}

			var presets sourceImportFile
			if err := yaml.Unmarshal(data, &presets); err != nil {
				return fmt.Errorf("failed to parse preset file: %w", err)
			}
			if len(presets.Sources) == 0 {
				return fmt.Errorf("preset file contains no sources")
			}

			for i, preset := range presets.Sources {
				if preset.Name == "" || preset.URL == "" {
					return fmt.Errorf("source %d: name and url are required", i+1)
				}
				if err := validation.ValidateSourceTier(preset.Tier); err != nil {
					return fmt.Errorf("source %q: %w", preset.Name, err)
				}
				if err := validation.ValidateFetchMethod(preset.Method); err != nil {
					return fmt.Errorf("source %q: %w", preset.Name, err)
				}
			}

			db, closeDB, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB()

			sourceRepo := database.NewSourceRepository(db)
			ctx := context.Background()

			for _, preset := range presets.Sources {
				source := &models.Source{
					ID:       uuid.New(),
					Name:     preset.Name,
					URL:      preset.URL,
					Tier:     models.SourceTier(preset.Tier),
					Category: preset.Category,
					Method:   models.FetchMethod(preset.Method),
					Active:   true,
				}
				if err := sourceRepo.Create(ctx, source); err != nil {
					return fmt.Errorf("failed to create source %q: %w", preset.Name, err)
				}
				fmt.Printf("Created source %q (%s)\n", source.Name, source.ID)
			}

			fmt.Printf("Imported %d sources\n", len(presets.Sources))
			return nil
		},
	}
}

func newSourcesTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <source-id>",
		Short: "Fetch one source and print what comes back, persisting nothing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid source ID: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, closeDB, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB()

			sourceRepo := database.NewSourceRepository(db)
			ctx := context.Background()

			source, err := sourceRepo.GetByID(ctx, sourceID)
			if err != nil {
				return fmt.Errorf("failed to load source: %w", err)
			}

			fetcher := fetch.NewFetcher(zap.NewNop(), fetch.Options{
				Timeout:  cfg.FetchTimeout,
				MaxItems: cfg.MaxItemsPerFeed,
			})

			fmt.Printf("Fetching %q via %s...\n", source.Name, source.Method)
			articles, err := fetcher.FetchSource(ctx, source)
			if err != nil {
				return fmt.Errorf("fetch failed: %w", err)
			}

			fmt.Printf("Fetched %d articles:\n", len(articles))
			for _, article := range articles {
				fmt.Printf("  - %s\n    %s (%d chars)\n", article.Title, article.URL, len(article.Content))
			}

			return nil
		},
	}
}

// connectDB loads config and opens the database, returning a close func
func connectDB() (*database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return db, closeDB, nil
}
