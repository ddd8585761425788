package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ait-tooling/ait/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration and history storage",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	dir := cfg.StoragePath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	fmt.Printf("✓ History at %s\n", dir)

	spec, err := cfg.Spec()
	if err != nil {
		return err
	}

	fmt.Printf("\n%s ait is ready!\n\n", logo)
	fmt.Println("Next steps:")
	if spec.RequiresKey() {
		fmt.Printf("  1. Set provider.apiKey in %s or export %s\n", cfgPath, spec.EnvKey)
	} else {
		fmt.Printf("  1. Make sure %s is running at %s\n", spec.Label(), cfg.APIBase())
	}
	fmt.Printf("  2. Chat: ait chat -m \"Add milk to my shopping list\"\n")
	fmt.Printf("  3. Or start the UI backend: ait serve\n")
	return nil
}
