package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	"github.com/davidgrant/aimerge/internal/config"
	"github.com/davidgrant/aimerge/internal/gitrepo"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage aimerge configuration",
	Long:  `Show and modify aimerge configuration values.`,
}

var configJSONFlag bool

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output raw JSON without formatting")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Outside a repository only the user and env layers apply.
		repoRoot := ""
		if repo, err := gitrepo.Open(repoPath); err == nil {
			repoRoot = repo.Root()
		}

		cfg, err := config.Load(repoRoot)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// Redact the key before display.
		redacted := *cfg
		if redacted.APIKey != "" {
			redacted.APIKey = "***"
		}

		var data []byte
		if configJSONFlag {
			data, err = json.Marshal(&redacted)
		} else {
			data, err = json.MarshalIndent(&redacted, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value using a dotted key path.

The value is written to .aimerge/aimerge.jsonc in the repository root.
The file is created if it does not exist.

Note: JSONC comments are not preserved on write.

Examples:
  aimerge config set model "gpt-4"
  aimerge config set max_retries 5
  aimerge config set timeout_seconds 60`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		rawValue := args[1]

		// Determine value type: try bool, then number, then string
		var value any
		if b, err := strconv.ParseBool(rawValue); err == nil {
			value = b
		} else if i, err := strconv.ParseInt(rawValue, 10, 64); err == nil {
			value = i
		} else if f, err := strconv.ParseFloat(rawValue, 64); err == nil {
			value = f
		} else {
			value = rawValue
		}

		repo, err := gitrepo.Open(repoPath)
		if err != nil {
			return err
		}

		configDir := filepath.Join(repo.Root(), ".aimerge")
		repoConfigPath := filepath.Join(configDir, "aimerge.jsonc")

		// Read existing file or start with empty JSON object
		var existing []byte
		if data, err := os.ReadFile(repoConfigPath); err == nil {
			// Strip JSONC comments before passing to sjson (which requires valid JSON).
			// Note: comments are not preserved on write.
			existing = jsonc.ToJSON(data)
		} else {
			existing = []byte("{}")
		}

		// Use sjson for in-place modification
		updated, err := sjson.SetBytes(existing, key, value)
		if err != nil {
			return fmt.Errorf("setting key %q: %w", key, err)
		}

		// Ensure directory exists
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(repoConfigPath, updated, 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create the user-level config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("OpenAI API key").
					EchoMode(huh.EchoModePassword).
					Value(&cfg.APIKey),
				huh.NewInput().
					Title("Model").
					Value(&cfg.Model),
			),
		)

		if err := form.Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}

		if err := cfg.Save(); err != nil {
			return err
		}

		path, err := config.UserConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}
