package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aligator/gofat16"
	"github.com/aligator/gofat16/checkpoint"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// List command flags
var outputFormat = "text"

// listEntry is the structured form of a directory record.
type listEntry struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Modified string `json:"modified" yaml:"modified"`
	Cluster  uint16 `json:"cluster" yaml:"cluster"`
	Size     uint32 `json:"size" yaml:"size"`
}

func newListEntry(e gofat16.DirectoryEntry) listEntry {
	kind := "file"
	switch {
	case e.Marker() == gofat16.MarkerDeleted:
		kind = "deleted"
	case e.IsVolumeLabel():
		kind = "label"
	case e.IsDir():
		kind = "directory"
	}
	return listEntry{
		Name:     e.DisplayName(),
		Kind:     kind,
		Modified: e.Stamp().String(),
		Cluster:  e.StartingCluster,
		Size:     e.FileSize,
	}
}

// createListCommand creates the list subcommand
func createListCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list [flags] IMAGE_FILE [DIR]",
		Short: "lists a directory of the image",
		Long: `List prints every record of the root directory, or of DIR, up to
the end marker. Deleted records are included, their lost first
character is shown as '?'.`,
		Args: cobra.RangeArgs(1, 2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFormat(outputFormat)
		},
		RunE: executeList,
	}

	listCmd.Flags().StringVar(&outputFormat, "format", "text",
		"Output format: text, json or yaml")

	return listCmd
}

func checkFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported --format %q (supported: text, json, yaml)", format)
	}
}

// executeList handles the list command execution logic
func executeList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	vol, image, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer image.Close()

	cluster := uint16(gofat16.RootCluster)
	if len(args) > 1 {
		dir, err := vol.Resolve(ctx, args[1])
		if err != nil {
			return err
		}
		if !dir.IsDir() {
			return checkpoint.Wrap(fmt.Errorf("list %s", args[1]), gofat16.ErrNotDirectory)
		}
		cluster = dir.StartingCluster
	}

	entries, err := vol.ReadDir(ctx, cluster)
	if err != nil {
		return err
	}
	return writeListing(cmd.OutOrStdout(), entries, outputFormat)
}

func writeListing(out io.Writer, entries []gofat16.DirectoryEntry, format string) error {
	switch format {
	case "text":
		for _, e := range entries {
			printEntry(out, e)
		}
		return nil

	case "json":
		list := make([]listEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, newListEntry(e))
		}
		b, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil

	case "yaml":
		list := make([]listEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, newListEntry(e))
		}
		b, err := yaml.Marshal(list)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, _ = fmt.Fprint(out, string(b))
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// printEntry writes the two line description of a record. The name is
// shown with its padding, deleted records only get the name line.
func printEntry(out io.Writer, e gofat16.DirectoryEntry) {
	switch e.Marker() {
	case gofat16.MarkerDeleted:
		_, _ = fmt.Fprintf(out, "Deleted file: [?%s.%s]\n", e.Base[1:], e.Ext[:])
		return
	case gofat16.MarkerEscapedE5:
		_, _ = fmt.Fprintf(out, "File starting with 0xE5: [%c%s.%s]\n", 0xE5, e.Base[1:], e.Ext[:])
	case gofat16.MarkerDot:
		_, _ = fmt.Fprintf(out, "Directory: [%s.%s]\n", e.Base[:], e.Ext[:])
	default:
		_, _ = fmt.Fprintf(out, "File: [%s.%s]\n", e.Base[:], e.Ext[:])
	}

	_, _ = fmt.Fprintf(out, "  Modified: %s    Start: [%04X]    Size: %d\n",
		e.Stamp(), e.StartingCluster, e.FileSize)
}
