// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/artifact"
	"github.com/pdiddy/research-assistant/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display a research bundle",
	Long: `Show prints a research bundle written by run. Sections that are absent
print a placeholder with the reason recorded in the bundle's agent_status.`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("bundle")
	if path == "" {
		dir := viper.GetString("output.dir")
		if dir == "" {
			dir = artifact.DefaultDir
		}
		path = filepath.Join(dir, artifact.BundleFile)
	}

	b, err := artifact.ReadBundle(path)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		data, err := artifact.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshaling bundle: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	return render.Bundle(os.Stdout, b)
}

func init() {
	showCmd.Flags().String("bundle", "", "bundle file (default: <output dir>/research_bundle.json)")
	showCmd.Flags().Bool("json", false, "print the bundle as JSON")

	rootCmd.AddCommand(showCmd)
}
