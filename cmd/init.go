package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/df5602/srt-igt-splits/internal/splits"
)

// routeFile is the YAML document accepted by `srt-splits init`.
type routeFile struct {
	Splits []routeSplit `yaml:"splits"`
}

type routeSplit struct {
	Name    string `yaml:"name"`
	Percent uint32 `yaml:"percent"`
}

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init <route.yaml>",
	Short: "Create a new splits file from a route definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return initRun(args[0], splitsPath())
	},
}

func initRun(routePath, path string) error {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("splits file %s already exists (use --force to overwrite)", path)
		}
	}

	data, err := os.ReadFile(routePath)
	if err != nil {
		return fmt.Errorf("read route file: %w", err)
	}

	var route routeFile
	if err := yaml.Unmarshal(data, &route); err != nil {
		return fmt.Errorf("parse route file: %w", err)
	}
	if len(route.Splits) == 0 {
		return fmt.Errorf("route file %s defines no splits", routePath)
	}

	list := make([]splits.Split, 0, len(route.Splits))
	for _, rs := range route.Splits {
		list = append(list, splits.Split{Name: rs.Name, Percent: rs.Percent})
	}

	t, err := splits.Create(path, list)
	if err != nil {
		return fmt.Errorf("create splits: %w", err)
	}
	if err := t.Save(); err != nil {
		return fmt.Errorf("save splits file: %w", err)
	}

	ui.Success("Created %s with %d splits", path, len(list))
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing splits file")
	rootCmd.AddCommand(initCmd)
}
