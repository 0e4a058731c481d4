// Command coachctl generates fitness plans from a profile file without
// running the API server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lifecoach/coach-api/internal/config"
	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/llm"
	"lifecoach/coach-api/internal/logging"
	"lifecoach/coach-api/internal/planner"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "coachctl",
		Short:        "Generate and inspect fitness plans from the command line",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newPlanCmd(), newSchemaCmd())
	return rootCmd
}

func newPlanCmd() *cobra.Command {
	var (
		profilePath string
		useLLM      bool
		configDir   string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a fitness plan for a YAML or JSON intake form",
		Long: `Reads an intake form and prints the plan as JSON.

Without --llm the local rule-based generator is used. With --llm the LLM
tiers from config.yaml / LLM_* environment variables are tried first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, skipped, err := readProfile(profilePath)
			if err != nil {
				return err
			}
			if len(skipped) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "ignoring unreadable fields: %s\n", strings.Join(skipped, ", "))
			}

			var result planner.Result
			if useLLM {
				cfg, err := config.LoadConfig(configDir)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				logger := logging.New(cfg.Server.LogLevel, true, cmd.ErrOrStderr())
				client := llm.NewClient(llm.Config{
					BaseURL:     cfg.LLM.BaseURL,
					APIKey:      cfg.LLM.APIKey,
					Model:       cfg.LLM.Model,
					MaxTokens:   cfg.LLM.MaxTokens,
					Temperature: cfg.LLM.Temperature,
					SiteURL:     cfg.LLM.SiteURL,
					AppName:     cfg.LLM.AppName,
				}, nil, logger)
				orchestrator := planner.NewDefaultOrchestrator(logger, client, cfg.LLM.Timeout, cfg.LLM.DirectTemperature)
				result = orchestrator.ObtainPlan(cmd.Context(), profile)
			} else {
				result = planner.Result{
					Plan:   planner.NewGenerator().Generate(profile),
					Source: planner.SourceLocal,
				}
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "path to the intake form (YAML or JSON)")
	cmd.Flags().BoolVar(&useLLM, "llm", false, "try the LLM tiers before the local generator")
	cmd.Flags().StringVar(&configDir, "config-dir", ".", "directory containing config.yaml")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema LLM plans must follow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), planner.PlanSchema())
		},
	}
}

// readProfile parses an intake form file. JSON is valid YAML, so one decoder
// covers both. Fields that cannot be read as text are skipped and returned.
func readProfile(path string) (domain.FitnessProfile, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.FitnessProfile{}, nil, fmt.Errorf("read profile: %w", err)
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return domain.FitnessProfile{}, nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	profile, skipped, err := domain.FitnessProfileFromData(data)
	if err != nil {
		return domain.FitnessProfile{}, nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return profile, skipped, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
