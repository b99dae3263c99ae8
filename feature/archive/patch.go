package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

// PatchResult describes the outcome of one patch operation.
type PatchResult struct {
	// OriginalSize is the on-disk size of the rebuilt base archive.
	OriginalSize int64
	// PatchSize is the on-disk size of the emitted patch archive.
	PatchSize int64
	// Added counts entries present only in the altered archive.
	Added int
	// Changed counts entries whose checksum differed.
	Changed int
	// Unchanged counts entries carried over from the base archive as-is.
	Unchanged int
}

// Patch reconciles the base archive at originalPath against the full altered
// archive at alteredPath.
//
// On return the base archive holds the union of both entry sets, with every
// entry whose CRC32 differs replaced by the altered version, and alteredPath
// has been replaced by a patch archive containing only the added and changed
// entries. Both replacements are built in temp files and moved into place,
// so a failure partway leaves the inputs untouched.
func Patch(originalPath, alteredPath string) (*PatchResult, error) {
	orig, err := zip.OpenReader(originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open base archive: %w", err)
	}
	defer orig.Close()

	altered, err := zip.OpenReader(alteredPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open altered archive: %w", err)
	}
	defer altered.Close()

	// Index the base archive's checksums by entry path.
	baseCRC := make(map[string]uint32, len(orig.File))
	for _, f := range orig.File {
		baseCRC[f.Name] = f.CRC32
	}

	res := &PatchResult{}

	rebuiltPath, patchPath := originalPath+".rebuild", alteredPath+".patch"
	err = func() error {
		rebuilt, err := os.Create(rebuiltPath)
		if err != nil {
			return err
		}
		defer rebuilt.Close()
		patch, err := os.Create(patchPath)
		if err != nil {
			return err
		}
		defer patch.Close()

		rw := zip.NewWriter(rebuilt)
		pw := zip.NewWriter(patch)

		// Altered entries win: every one lands in the rebuilt base, and
		// the added/changed ones also land in the patch.
		inAltered := make(map[string]bool, len(altered.File))
		for _, f := range altered.File {
			inAltered[f.Name] = true
			if err := copyRaw(rw, f); err != nil {
				return err
			}
			crc, existed := baseCRC[f.Name]
			if existed && crc == f.CRC32 {
				res.Unchanged++
				continue
			}
			if existed {
				res.Changed++
			} else {
				res.Added++
			}
			// Added directory entries ride along in the patch so the
			// import side can recreate them before extracting files.
			if err := copyRaw(pw, f); err != nil {
				return err
			}
		}

		// Base entries the altered archive does not mention are kept.
		for _, f := range orig.File {
			if inAltered[f.Name] {
				continue
			}
			if err := copyRaw(rw, f); err != nil {
				return err
			}
			res.Unchanged++
		}

		if err := rw.Close(); err != nil {
			return err
		}
		return pw.Close()
	}()
	if err != nil {
		os.Remove(rebuiltPath)
		os.Remove(patchPath)
		return nil, fmt.Errorf("failed to build patch: %w", err)
	}

	orig.Close()
	altered.Close()

	if err := replaceFile(rebuiltPath, originalPath); err != nil {
		os.Remove(patchPath)
		return nil, err
	}
	if err := replaceFile(patchPath, alteredPath); err != nil {
		return nil, err
	}

	if res.OriginalSize, err = fileSize(originalPath); err != nil {
		return nil, err
	}
	if res.PatchSize, err = fileSize(alteredPath); err != nil {
		return nil, err
	}
	return res, nil
}

// copyRaw moves one entry between archives without recompressing it.
func copyRaw(w *zip.Writer, f *zip.File) error {
	if isDir(f) {
		hdr := f.FileHeader
		_, err := w.CreateRaw(&hdr)
		return err
	}
	src, err := f.OpenRaw()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	hdr := f.FileHeader
	dst, err := w.CreateRaw(&hdr)
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", f.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy entry %s: %w", f.Name, err)
	}
	return nil
}

func isDir(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/")
}

func replaceFile(src, dst string) error {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", src, err)
	}
	return nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
