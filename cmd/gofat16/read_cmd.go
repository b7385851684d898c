package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/aligator/gofat16"
	"github.com/aligator/gofat16/checkpoint"
	"github.com/aligator/gofat16/internal/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// Read command flags
var (
	outDir       string
	showProgress bool
)

// createReadCommand creates the read subcommand
func createReadCommand() *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read [flags] IMAGE_FILE NAME.EXT",
		Short: "extracts a file from the image",
		Long: `Read looks up NAME.EXT in the root directory of the FAT16 volume
and writes its content to a file of the same name. NAME.EXT may also be
a path like DOCS/NOTES.TXT. A cluster chain which ends before the size
recorded in the directory entry is reported as warning, the bytes read
until then are kept.`,
		Args: cobra.ExactArgs(2),
		RunE: executeRead,
	}

	readCmd.Flags().StringVarP(&outDir, "out", "o", ".",
		"Directory the extracted file is written to")
	readCmd.Flags().BoolVar(&showProgress, "progress", false,
		"Show a progress bar while copying")

	return readCmd
}

// executeRead handles the read command execution logic
func executeRead(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	ctx := cmd.Context()

	vol, image, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer image.Close()

	log.Infof("Opened %s, looking for [%s]", args[0], args[1])
	entry, err := vol.Resolve(ctx, args[1])
	if err != nil {
		return err
	}
	if entry.IsDir() {
		return checkpoint.Wrap(fmt.Errorf("read %s", args[1]), gofat16.ErrIsDirectory)
	}

	target := filepath.Join(outDir, entry.Name())
	out, err := imageFs.Create(target)
	if err != nil {
		return checkpoint.From(err)
	}

	var w io.Writer = out
	if showProgress {
		bar := progressbar.NewOptions64(int64(entry.FileSize),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription(entry.Name()),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		w = io.MultiWriter(out, bar)
	}

	n, err := vol.ReadFile(ctx, entry, w)
	closeErr := out.Close()
	if gofat16.IsWarning(err) {
		warn(cmd, err)
		err = nil
	}
	if err != nil {
		// No partial files after a fatal error.
		if rmErr := imageFs.Remove(target); rmErr != nil {
			log.Warnf("Could not remove partial %s: %v", target, rmErr)
		}
		return err
	}
	if closeErr != nil {
		return checkpoint.From(closeErr)
	}

	log.Infof("Wrote %d bytes to %s", n, target)
	return nil
}
