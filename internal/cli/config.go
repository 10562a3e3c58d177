package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/logicguard/internal/model"
)

const precedence = `Precedence, highest first:
  1. command-line flags
  2. LOGICGUARD_* environment variables, e.g. LOGICGUARD_ORACLE_PROVIDER
     (OPENAI_API_KEY, ANTHROPIC_API_KEY and GEMINI_API_KEY fill oracle.api_key)
  3. the config file (~/.logicguard/config.yaml or --config)
  4. built-in defaults
`

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the LogicGuard configuration",
	Long:  "Inspect or create the LogicGuard configuration.\n\n" + precedence,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(os.Stderr, "# from %s\n", used)
		} else {
			fmt.Fprintln(os.Stderr, "# no config file, defaults and environment only")
		}
		return showConfig(cmd.OutOrStdout(), cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long:  "Write ~/.logicguard/config.yaml (or the --config path) with every option at its default.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := writeDefaultConfig(path, configForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n  review it with: logicguard config show\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where the config file is read from",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// configPath is --config when given, else ~/.logicguard/config.yaml
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".logicguard", "config.yaml"), nil
}

// showConfig prints cfg with secrets masked
func showConfig(w io.Writer, cfg *model.Config) error {
	masked := *cfg
	if masked.Oracle.APIKey != "" {
		masked.Oracle.APIKey = "********"
	}
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// writeDefaultConfig writes the commented defaults to path. An existing
// file is only replaced when force is set.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	defaults, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# LogicGuard configuration\n#\n")
	for _, line := range bytes.Split(bytes.TrimSpace([]byte(precedence)), []byte("\n")) {
		buf.WriteString("# ")
		buf.Write(line)
		buf.WriteString("\n")
	}
	buf.WriteString("#\n")
	buf.WriteString("# oracle.provider: heuristic (offline), openai, anthropic, ollama or gemini\n")
	buf.WriteString("# oracle.mode: per_task (one call per detector) or unified (one call)\n")
	buf.WriteString("# Keep API keys in the environment rather than here.\n\n")
	buf.Write(defaults)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
