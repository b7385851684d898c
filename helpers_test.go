package gofat16

import (
	"io"
	"sync"
	"testing"

	"github.com/aligator/gofat16/internal/fat16test"
)

// testData returns size bytes of a pattern which differs per cluster and per byte.
func testData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i%251) ^ byte(i/2048)
	}
	return data
}

// scenarioImage is an MBR image with one FAT16 partition of type 6 at sector
// 2048 holding README.TXT with 5000 bytes in clusters 2, 3 and 4.
func scenarioImage() (*fat16test.Image, []byte) {
	img := fat16test.New(fat16test.DefaultGeometry(), 2048, PartitionTypeFAT16)
	data := testData(5000)
	img.AddRootFile(0, "README.TXT", data)
	return img, data
}

func testingOpen(t *testing.T, r io.ReaderAt, opts ...Option) *Volume {
	t.Helper()
	vol, err := Open(r, opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return vol
}

// recordingReader remembers every read, to check which regions were touched.
type recordingReader struct {
	r io.ReaderAt

	mu    sync.Mutex
	reads [][2]int64
}

func (rr *recordingReader) ReadAt(p []byte, off int64) (int, error) {
	rr.mu.Lock()
	rr.reads = append(rr.reads, [2]int64{off, off + int64(len(p))})
	rr.mu.Unlock()
	return rr.r.ReadAt(p, off)
}

// touched reports whether any read overlapped [from, to).
func (rr *recordingReader) touched(from, to int64) bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	for _, r := range rr.reads {
		if r[0] < to && from < r[1] {
			return true
		}
	}
	return false
}

func (rr *recordingReader) reset() {
	rr.mu.Lock()
	rr.reads = nil
	rr.mu.Unlock()
}
