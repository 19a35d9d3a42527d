package s3

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// hashDirectory computes a deterministic digest over a directory tree: for
// every regular file, in lexical walk order, the relative path, a NUL byte,
// and the file contents are fed to SHA-256. File modification times do not
// participate, so re-cloning an unchanged repository yields the same digest.
func hashDirectory(root string) (string, error) {
	digest := sha256.New()

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		digest.Write([]byte(filepath.ToSlash(rel)))
		digest.Write([]byte{0})

		file, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		_, copyErr := io.Copy(digest, file)
		file.Close()
		return copyErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to hash directory %q: %w", root, err)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// writeDirectoryTarGz streams the directory as a gzip-compressed tar archive.
// Entries use paths relative to root, so extracting reproduces the directory
// contents without a wrapping base directory.
func writeDirectoryTarGz(writer io.Writer, root string) error {
	gzipWriter := gzip.NewWriter(writer)
	tarWriter := tar.NewWriter(gzipWriter)

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			return infoErr
		}

		link := ""
		if info.Mode()&fs.ModeSymlink != 0 {
			target, linkErr := os.Readlink(path)
			if linkErr != nil {
				return linkErr
			}
			link = target
		}

		header, headerErr := tar.FileInfoHeader(info, link)
		if headerErr != nil {
			return headerErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}

		if writeErr := tarWriter.WriteHeader(header); writeErr != nil {
			return writeErr
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		file, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		_, copyErr := io.Copy(tarWriter, file)
		file.Close()
		return copyErr
	})
	if err != nil {
		return fmt.Errorf("failed to archive directory %q: %w", root, err)
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}
