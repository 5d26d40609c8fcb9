package util

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// CreateArchive zips files flat into output, sorted by name so page
// order follows file names. Used for both .cbz and .zip chapters.
func CreateArchive(files []string, output string) (err error) {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("archive: close %s: %w", output, cerr)
		}
	}()

	z := zip.NewWriter(out)
	defer func() {
		if cerr := z.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("archive: finish %s: %w", output, cerr)
		}
	}()

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	for _, file := range sorted {
		if err := addFileToZip(z, file); err != nil {
			return fmt.Errorf("archive: add %s: %w", file, err)
		}
	}

	return nil
}

func addFileToZip(z *zip.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(file)
	header.Method = zip.Deflate

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)
	return err
}
