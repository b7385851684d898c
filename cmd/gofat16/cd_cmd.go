package main

import (
	"fmt"
	"strings"

	"github.com/aligator/gofat16"
	"github.com/aligator/gofat16/internal/logger"
	"github.com/spf13/cobra"
)

var cdFormat = "text"

// createCdCommand creates the cd subcommand
func createCdCommand() *cobra.Command {
	cdCmd := &cobra.Command{
		Use:   "cd [flags] IMAGE_FILE DIR...",
		Short: "changes directories and lists the result",
		Long: `Cd starts in the root directory and changes into each DIR in
order, then lists the directory it ended in. DIR may be "..", which
returns to the previous directory, "/" or a slash separated path.
".." in the root directory is reported as warning and ignored.`,
		Args: cobra.MinimumNArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFormat(cdFormat)
		},
		RunE: executeCd,
	}

	cdCmd.Flags().StringVar(&cdFormat, "format", "text",
		"Output format: text, json or yaml")

	return cdCmd
}

// executeCd handles the cd command execution logic
func executeCd(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	ctx := cmd.Context()

	vol, image, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer image.Close()

	session := gofat16.NewSession(vol)
	for _, dir := range args[1:] {
		for _, name := range splitDir(dir) {
			err := session.Cd(ctx, name)
			if gofat16.IsWarning(err) {
				warn(cmd, err)
				continue
			}
			if err != nil {
				return err
			}
			log.Debugf("Changed to %s, cluster %d", session.Cwd(), session.Current())
		}
	}

	entries, err := session.List(ctx)
	if err != nil {
		return err
	}

	if cdFormat == "text" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Directory %s\n", session.Cwd())
	}
	return writeListing(cmd.OutOrStdout(), entries, cdFormat)
}

// splitDir splits a path into the steps for Session.Cd.
// A leading slash becomes a step back to the root directory.
func splitDir(dir string) []string {
	var steps []string
	if strings.HasPrefix(dir, "/") {
		steps = append(steps, "/")
	}
	for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
		if part != "" {
			steps = append(steps, part)
		}
	}
	return steps
}
