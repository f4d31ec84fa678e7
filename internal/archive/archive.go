// Package archive writes zstd-compressed snapshots of the history file and
// restores them.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"bmitrack/internal/types"
)

// Extension is the conventional suffix for snapshots.
const Extension = ".csv.zst"

// Snapshot compresses the file at src into dst and returns the number of
// uncompressed bytes archived. dst is replaced atomically; src is only
// read.
func Snapshot(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, types.StoreReadError(src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".snapshot-*")
	if err != nil {
		return 0, types.StoreWriteError(dst, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := compress(tmp, in)
	if err != nil {
		tmp.Close()
		return 0, types.StoreWriteError(dst, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, types.StoreWriteError(dst, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return 0, types.StoreWriteError(dst, err)
	}
	return n, nil
}

func compress(w io.Writer, r io.Reader) (int64, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return 0, fmt.Errorf("creating zstd encoder: %w", err)
	}
	n, err := io.Copy(enc, r)
	if err != nil {
		enc.Close()
		return 0, fmt.Errorf("compressing: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("flushing zstd stream: %w", err)
	}
	return n, nil
}

// Restore decompresses a snapshot from r into w.
func Restore(r io.Reader, w io.Writer) (int64, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return 0, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	n, err := io.Copy(w, dec)
	if err != nil {
		return n, fmt.Errorf("decompressing snapshot: %w", err)
	}
	return n, nil
}

// RestoreFile decompresses the snapshot at src into dst and returns the
// number of bytes restored. dst is replaced atomically, so a corrupt
// snapshot leaves the current history in place.
func RestoreFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, types.StoreReadError(src, err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, types.StoreWriteError(dst, err)
	}
	tmp, err := os.CreateTemp(dir, ".restore-*")
	if err != nil {
		return 0, types.StoreWriteError(dst, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := Restore(in, tmp)
	if err != nil {
		tmp.Close()
		return 0, types.StoreReadError(src, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, types.StoreWriteError(dst, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return 0, types.StoreWriteError(dst, err)
	}
	return n, nil
}
