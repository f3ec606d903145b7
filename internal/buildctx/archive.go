package buildctx

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Archive streams a tar archive holding the given files from the context
// directory. Files are paths relative to contextDir (absolute paths must lie
// inside it). Directories are added recursively and symlinks are skipped.
//
// The archive is written from a background goroutine as it is read. The
// caller must close the returned reader. Errors found while writing surface
// from Read.
func Archive(contextDir string, files []string) (io.ReadCloser, error) {
	root, err := filepath.Abs(contextDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve build context %q: %w", contextDir, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read build context %q: %w\nCheck the task's context path", contextDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("build context %q is not a directory", contextDir)
	}

	entries := make([]string, 0, len(files))
	for _, file := range files {
		rel, err := relativeTo(root, file)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rel)
	}

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)

		err := writeEntries(tw, root, entries)
		if closeErr := tw.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			pw.CloseWithError(fmt.Errorf("failed to create build context archive: %w", err))
		} else {
			pw.Close()
		}
	}()

	return pr, nil
}

func relativeTo(root, file string) (string, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file %q is outside the build context %q", file, root)
	}

	return rel, nil
}

func writeEntries(tw *tar.Writer, root string, entries []string) error {
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		err := filepath.Walk(filepath.Join(root, entry), func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return fmt.Errorf("failed to get relative path: %w", err)
			}
			name := filepath.ToSlash(rel)

			if seen[name] || info.Mode()&os.ModeSymlink != 0 {
				return nil
			}
			seen[name] = true

			if info.IsDir() {
				if name == "." {
					return nil
				}
				return tw.WriteHeader(&tar.Header{
					Name:     name + "/",
					Mode:     int64(info.Mode().Perm()),
					ModTime:  info.ModTime(),
					Typeflag: tar.TypeDir,
				})
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			return addFile(tw, path, name, info)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func addFile(tw *tar.Writer, path, name string, info os.FileInfo) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	header := &tar.Header{
		Name:     name,
		Mode:     int64(info.Mode().Perm()),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}

	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}
