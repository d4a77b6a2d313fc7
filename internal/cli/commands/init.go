package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openradius/radops/internal/cli/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter configuration file",
		Long: `Write a starter radops.yaml with the default settings spelled out.

Credential fields reference environment variables (${RADOPS_TOKEN} style)
so the file can be committed without secrets in it.`,
		Example: `  # Write ./radops.yaml
  radops init

  # Write into a directory
  radops init ~/ops

  # Overwrite an existing file
  radops init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

// starterConfig mirrors the config schema with yaml tags, so the written
// file round-trips through the loader.
type starterConfig struct {
	API struct {
		URL     string `yaml:"url"`
		Token   string `yaml:"token"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Radacct struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Database string `yaml:"database"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"radacct"`
	UI struct {
		PageSize int    `yaml:"page_size"`
		Theme    string `yaml:"theme"`
		Mouse    bool   `yaml:"mouse"`
	} `yaml:"ui"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	r := newRenderer(cmd)

	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var starter starterConfig
	starter.API.URL = config.DefaultAPIURL
	starter.API.Token = "${RADOPS_TOKEN}"
	starter.API.Timeout = "15s"
	starter.Radacct.Port = 5432
	starter.Radacct.SSLMode = "disable"
	starter.UI.PageSize = config.DefaultPageSize
	starter.UI.Theme = config.DefaultTheme
	starter.UI.Mouse = true
	starter.Log.Level = config.DefaultLogLevel

	body, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("render configuration: %w", err)
	}
	content := "# radops configuration\n# Values can also come from RADOPS_* environment variables and flags.\n" + string(body)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	r.Success("created " + path)
	r.Println()
	r.Println("Next steps:")
	r.Println("  1. Set api.url to your backend (or leave it for `radops devserver`)")
	r.Println("  2. Export RADOPS_TOKEN with your API token")
	r.Println("  3. Run `radops doctor` to verify the connections")
	return nil
}
