package sync

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"catalog-manager/core/manifest"
)

// Package is an opened sync package: a zip archive holding one manifest plus
// the entity's payload entries (Scripts/, Media/, Archives/, Files/).
type Package struct {
	rc *zip.ReadCloser
}

func OpenPackage(path string) (*Package, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open package: %w", err)
	}
	return &Package{rc: rc}, nil
}

func (p *Package) Close() error {
	return p.rc.Close()
}

// Manifest opens the package's manifest entry.
func (p *Package) Manifest() (io.ReadCloser, error) {
	f := p.entry(manifest.Filename)
	if f == nil {
		return nil, invalidError("package has no manifest")
	}
	return f.Open()
}

// Entry opens the payload entry with the exact given name.
func (p *Package) Entry(name string) (io.ReadCloser, error) {
	f := p.entry(name)
	if f == nil {
		return nil, notFoundError("package entry " + name + " is missing")
	}
	return f.Open()
}

// HasEntry reports whether the package contains the exact given entry.
func (p *Package) HasEntry(name string) bool {
	return p.entry(name) != nil
}

func (p *Package) entry(name string) *zip.File {
	for _, f := range p.rc.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ExtractDir writes every entry under prefix into destDir, recreating
// directory entries. Entries outside the prefix are ignored; entries whose
// path would escape destDir abort the extraction.
func (p *Package) ExtractDir(prefix, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}
	for _, f := range p.rc.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		rel, err := safeRelPath(strings.TrimPrefix(f.Name, prefix))
		if err != nil {
			return err
		}
		if rel == "" {
			continue
		}
		target := filepath.Join(destDir, rel)
		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open package entry %s: %w", f.Name, err)
	}
	defer src.Close()
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}

// safeRelPath validates an archive entry path for extraction. Absolute
// paths, backslashes, and paths escaping the extraction root are rejected.
func safeRelPath(name string) (string, error) {
	name = strings.TrimSuffix(name, "/")
	if name == "" {
		return "", nil
	}
	if strings.Contains(name, `\`) || strings.HasPrefix(name, "/") {
		return "", invalidError("package entry path " + name + " is not allowed")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", invalidError("package entry path " + name + " escapes the extraction root")
	}
	return clean, nil
}
