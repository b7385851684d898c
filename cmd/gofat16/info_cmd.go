package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aligator/gofat16"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// createPartitionsCommand creates the partitions subcommand
func createPartitionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "partitions [flags] IMAGE_FILE",
		Short: "prints the MBR partition table",
		Args:  cobra.ExactArgs(1),
		RunE:  executePartitions,
	}
}

// executePartitions handles the partitions command execution logic
func executePartitions(cmd *cobra.Command, args []string) error {
	image, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer image.Close()

	entries, err := gofat16.ReadPartitionTable(image)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, e := range entries {
		_, _ = fmt.Fprintf(out, "Partition %d, type %02X\n", i, e.Type)
		_, _ = fmt.Fprintf(out, "  Start sector %08X, %d sectors long\n", e.StartSector, e.LengthSectors)
	}

	if idx, _, err := gofat16.FindFAT16Partition(entries); err == nil {
		_, _ = fmt.Fprintf(out, "FAT16 filesystem found from partition %d\n", idx)
	} else {
		_, _ = fmt.Fprintln(out, "No FAT16 filesystem found")
	}
	if !gofat16.HasMBRSignature(image) {
		warn(cmd, fmt.Errorf("no 0x55AA boot signature at offset 510"))
	}
	return nil
}

var infoFormat = "text"

// volumeInfo is the structured form of the boot sector and layout.
type volumeInfo struct {
	Partition         int    `json:"partition" yaml:"partition"`
	OEM               string `json:"oem" yaml:"oem"`
	Label             string `json:"label" yaml:"label"`
	FSType            string `json:"fs_type" yaml:"fs_type"`
	VolumeID          uint32 `json:"volume_id" yaml:"volume_id"`
	SectorSize        uint16 `json:"sector_size" yaml:"sector_size"`
	SectorsPerCluster uint8  `json:"sectors_per_cluster" yaml:"sectors_per_cluster"`
	ReservedSectors   uint16 `json:"reserved_sectors" yaml:"reserved_sectors"`
	NumberOfFATs      uint8  `json:"number_of_fats" yaml:"number_of_fats"`
	RootDirEntries    uint16 `json:"root_dir_entries" yaml:"root_dir_entries"`
	FATSizeSectors    uint16 `json:"fat_size_sectors" yaml:"fat_size_sectors"`
	TotalSectors      uint32 `json:"total_sectors" yaml:"total_sectors"`
	FATStart          int64  `json:"fat_start" yaml:"fat_start"`
	RootDirStart      int64  `json:"root_dir_start" yaml:"root_dir_start"`
	DataStart         int64  `json:"data_start" yaml:"data_start"`
	ClusterSize       int64  `json:"cluster_size" yaml:"cluster_size"`
}

// createInfoCommand creates the info subcommand
func createInfoCommand() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info [flags] IMAGE_FILE",
		Short: "prints the boot sector and the layout of the volume",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFormat(infoFormat)
		},
		RunE: executeInfo,
	}

	infoCmd.Flags().StringVar(&infoFormat, "format", "text",
		"Output format: text, json or yaml")

	return infoCmd
}

// executeInfo handles the info command execution logic
func executeInfo(cmd *cobra.Command, args []string) error {
	vol, image, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer image.Close()

	out := cmd.OutOrStdout()
	switch infoFormat {
	case "json", "yaml":
		return writeVolumeInfo(out, vol, infoFormat)
	}

	bs := vol.BootSector()
	if idx, _ := vol.Partition(); idx >= 0 {
		_, _ = fmt.Fprintf(out, "FAT16 filesystem found from partition %d\n", idx)
	}
	_, _ = fmt.Fprintf(out, "  Jump code: %02X:%02X:%02X\n", bs.JumpCode[0], bs.JumpCode[1], bs.JumpCode[2])
	_, _ = fmt.Fprintf(out, "  OEM code: [%s]\n", bs.OEMName[:])
	_, _ = fmt.Fprintf(out, "  sector_size: %d\n", bs.SectorSize)
	_, _ = fmt.Fprintf(out, "  sectors_per_cluster: %d\n", bs.SectorsPerCluster)
	_, _ = fmt.Fprintf(out, "  reserved_sectors: %d\n", bs.ReservedSectors)
	_, _ = fmt.Fprintf(out, "  number_of_fats: %d\n", bs.NumberOfFATs)
	_, _ = fmt.Fprintf(out, "  root_dir_entries: %d\n", bs.RootDirEntries)
	_, _ = fmt.Fprintf(out, "  total_sectors_short: %d\n", bs.TotalSectorsShort)
	_, _ = fmt.Fprintf(out, "  media_descriptor: 0x%02X\n", bs.MediaDescriptor)
	_, _ = fmt.Fprintf(out, "  fat_size_sectors: %d\n", bs.FATSizeSectors)
	_, _ = fmt.Fprintf(out, "  sectors_per_track: %d\n", bs.SectorsPerTrack)
	_, _ = fmt.Fprintf(out, "  number_of_heads: %d\n", bs.NumberOfHeads)
	_, _ = fmt.Fprintf(out, "  hidden_sectors: %d\n", bs.HiddenSectors)
	_, _ = fmt.Fprintf(out, "  total_sectors_long: %d\n", bs.TotalSectorsLong)
	_, _ = fmt.Fprintf(out, "  drive_number: 0x%02X\n", bs.DriveNumber)
	_, _ = fmt.Fprintf(out, "  current_head: 0x%02X\n", bs.CurrentHead)
	_, _ = fmt.Fprintf(out, "  boot_signature: 0x%02X\n", bs.BootSignature)
	_, _ = fmt.Fprintf(out, "  volume_id: 0x%08X\n", bs.VolumeID)
	_, _ = fmt.Fprintf(out, "  Volume label: [%s]\n", bs.VolumeLabel[:])
	_, _ = fmt.Fprintf(out, "  Filesystem type: [%s]\n", bs.FSTypeTag[:])
	_, _ = fmt.Fprintf(out, "  Boot sector signature: 0x%04X\n", bs.BootSectorSignature)

	l := vol.Layout()
	_, _ = fmt.Fprintf(out, "FAT at 0x%X, root directory at 0x%X, data at 0x%X, %d byte clusters\n",
		l.FATStart, l.RootDirStart, l.DataStart, l.ClusterSize)
	return nil
}

func writeVolumeInfo(out io.Writer, vol *gofat16.Volume, format string) error {
	bs := vol.BootSector()
	l := vol.Layout()
	idx, _ := vol.Partition()
	info := volumeInfo{
		Partition:         idx,
		OEM:               bs.OEM(),
		Label:             bs.Label(),
		FSType:            bs.FSType(),
		VolumeID:          bs.VolumeID,
		SectorSize:        bs.SectorSize,
		SectorsPerCluster: bs.SectorsPerCluster,
		ReservedSectors:   bs.ReservedSectors,
		NumberOfFATs:      bs.NumberOfFATs,
		RootDirEntries:    bs.RootDirEntries,
		FATSizeSectors:    bs.FATSizeSectors,
		TotalSectors:      bs.TotalSectors(),
		FATStart:          l.FATStart,
		RootDirStart:      l.RootDirStart,
		DataStart:         l.DataStart,
		ClusterSize:       l.ClusterSize,
	}

	var (
		b   []byte
		err error
	)
	if format == "json" {
		b, err = json.MarshalIndent(info, "", "  ")
		b = append(b, '\n')
	} else {
		b, err = yaml.Marshal(info)
	}
	if err != nil {
		return fmt.Errorf("marshal %s: %w", format, err)
	}
	_, _ = out.Write(b)
	return nil
}
