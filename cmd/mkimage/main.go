// Command mkimage writes sample FAT16 images to play with gofat16.
//
//	go run ./cmd/mkimage -o testdata
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aligator/gofat16"
	"github.com/aligator/gofat16/internal/fat16test"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const readme = `gofat16 sample image

This file spans three clusters of 2048 bytes.
`

// writeImages creates disk.img, with an MBR and a FAT16 partition at sector
// 2048, and floppy.img, a superfloppy, in dir.
func writeImages(fs afero.Fs, dir string) ([]string, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	images := map[string]*fat16test.Image{
		"disk.img":   sampleImage(2048, gofat16.PartitionTypeFAT16),
		"floppy.img": sampleImage(0, 0),
	}

	var written []string
	for _, name := range []string{"disk.img", "floppy.img"} {
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(fs, path, images[name].Bytes(), 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// sampleImage holds a label, README.TXT, a deleted file and DOCS/NOTES.TXT.
func sampleImage(partitionStart uint32, partitionType byte) *fat16test.Image {
	img := fat16test.New(fat16test.DefaultGeometry(), partitionStart, partitionType)
	img.SetRootEntry(0, fat16test.Entry{Name: "TESTVOL", Attr: fat16test.AttrVolumeLabel})

	content := []byte(readme + strings.Repeat("0123456789abcdef", 310))
	img.AddRootFile(1, "README.TXT", content[:5000])

	img.AddRootFile(2, "OLD.TXT", []byte("removed"))
	img.RawRootEntry(2)[0] = 0xE5

	docs := img.AddDir(gofat16.RootCluster)
	img.SetRootEntry(3, fat16test.Entry{Name: "DOCS", Attr: fat16test.AttrDirectory, Time: 0x5401, Date: 0x2B14, Cluster: docs})
	img.AddSubFile(docs, 2, "NOTES.TXT", []byte("Some notes.\n"))
	return img
}

func main() {
	out := pflag.StringP("out", "o", "testdata", "Directory the images are written to")
	pflag.Parse()

	written, err := writeImages(afero.NewOsFs(), *out)
	for _, path := range written {
		fmt.Println(path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
