// Command gofat16 reads files and directories from FAT16 disk images.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/aligator/gofat16"
	"github.com/aligator/gofat16/checkpoint"
	"github.com/aligator/gofat16/internal/logger"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// imageFs holds the images and receives extracted files.
// Tests replace it by an afero.MemMapFs.
var imageFs = afero.NewOsFs()

// Global command flags
var (
	superfloppy bool
	autoDetect  bool
	strictEOC   bool
	verbose     bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	setColor(os.Stderr)

	if err := createRootCommand().ExecuteContext(ctx); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", checkpoint.Message(err))
		logger.Logger().Debugf("%v", err)
		stop()
		os.Exit(1)
	}
}

// createRootCommand creates the gofat16 command with all subcommands.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gofat16",
		Short: "reads FAT16 disk images",
		Long: `gofat16 reads files and directories from raw disk images holding a
FAT16 filesystem, either inside an MBR partition or as a bare
superfloppy image. The image is never modified.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setColor(cmd.ErrOrStderr())
			logger.SetLogger(logger.New(cmd.ErrOrStderr(), verbose))
			if superfloppy && autoDetect {
				return errors.New("--superfloppy and --auto cannot be used together")
			}
			return nil
		},
	}

	addVolumeFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(createReadCommand())
	rootCmd.AddCommand(createListCommand())
	rootCmd.AddCommand(createCdCommand())
	rootCmd.AddCommand(createTreeCommand())
	rootCmd.AddCommand(createPartitionsCommand())
	rootCmd.AddCommand(createInfoCommand())
	return rootCmd
}

func addVolumeFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&superfloppy, "superfloppy", false,
		"The image has no partition table, the filesystem starts at offset 0")
	flags.BoolVar(&autoDetect, "auto", false,
		"Detect whether the image has a partition table")
	flags.BoolVar(&strictEOC, "strict-eoc", false,
		"Only accept 0xFFFF as end of a cluster chain")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Log every copied chunk and cluster")
}

// volumeOptions translates the global flags.
func volumeOptions() []gofat16.Option {
	opts := []gofat16.Option{gofat16.WithLogger(logger.Logger())}
	switch {
	case superfloppy:
		opts = append(opts, gofat16.WithoutPartitionTable())
	case autoDetect:
		opts = append(opts, gofat16.WithAutoDetect())
	}
	if strictEOC {
		opts = append(opts, gofat16.WithStrictEndOfChain())
	}
	return opts
}

// openImage opens the image file for reading.
func openImage(path string) (afero.File, error) {
	f, err := imageFs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, checkpoint.Wrap(err, fmt.Errorf("%w: %s", gofat16.ErrImageNotFound, path))
		}
		return nil, checkpoint.From(err)
	}
	logger.Logger().Debugf("Opened %s", path)
	return f, nil
}

// openVolume opens the image file and the FAT16 volume in it.
// The returned file has to be closed by the caller.
func openVolume(path string) (*gofat16.Volume, afero.File, error) {
	f, err := openImage(path)
	if err != nil {
		return nil, nil, err
	}

	vol, err := gofat16.Open(f, volumeOptions()...)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return vol, f, nil
}

// setColor enables colored messages only if w is a terminal.
// color decides by stdout on its own, but all messages go to stderr.
func setColor(w io.Writer) {
	f, ok := w.(*os.File)
	color.NoColor = os.Getenv("NO_COLOR") != "" || !ok ||
		!(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// warn reports a non-fatal condition.
func warn(cmd *cobra.Command, err error) {
	_, _ = color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", checkpoint.Message(err))
}
