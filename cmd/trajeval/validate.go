package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/replay"
	"github.com/danielpatrickdp/trajeval/internal/scenario"
)

func newValidateCmd() *cobra.Command {
	var asConfig bool
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check recordings (.json), scenarios (.yaml) or config files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				if err := validateFile(path, asConfig); err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "OK   %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asConfig, "as-config", false, "treat every file as a trajeval config file")
	return cmd
}

func validateFile(path string, asConfig bool) error {
	if asConfig {
		_, err := config.Load(path)
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return replay.ValidateRecording(raw)
	case ".yaml", ".yml":
		_, err := scenario.Load(path)
		return err
	default:
		return fmt.Errorf("unknown file type %q", filepath.Ext(path))
	}
}
