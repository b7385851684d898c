package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aligator/gofat16"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// createTreeCommand creates the tree subcommand
func createTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [flags] IMAGE_FILE",
		Short: "prints all files and directories of the image",
		Long: `Tree walks the whole volume and prints every directory and file
with its size and modification time. Deleted records, the volume
label and the "." and ".." records are left out.`,
		Args: cobra.ExactArgs(1),
		RunE: executeTree,
	}
}

// executeTree handles the tree command execution logic
func executeTree(cmd *cobra.Command, args []string) error {
	vol, image, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer image.Close()

	fat := gofat16.NewFs(vol)
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Volume [%s] with type %s\n", vol.Label(), vol.BootSector().FSType())

	return afero.Walk(fat, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == "/" {
			return nil
		}

		depth := strings.Count(path, "/") - 1
		name := info.Name()
		if info.IsDir() {
			name += "/"
		}
		modified := "-"
		if !info.ModTime().IsZero() {
			modified = info.ModTime().Format("2006-01-02 15:04:05")
		}
		_, _ = fmt.Fprintf(out, "%s%-14s %10d  %s\n", strings.Repeat("  ", depth), name, info.Size(), modified)
		return nil
	})
}
