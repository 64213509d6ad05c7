package firmware

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultInputFile is the conventional name
// of the firmware image to be patched.
const DefaultInputFile = "Firmware.MSE"

var ErrOutputIsSource = errors.New("output path refers to the source image")

// ReadImageFile loads the whole of the file at
// path into memory as an Image.
func ReadImageFile(path string) (*Image, error) {
	src, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open image file: %w", err)
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image file: %w", err)
	} else if stat.IsDir() {
		return nil, fmt.Errorf("image path %q is a directory", path)
	}

	data := make([]byte, stat.Size())
	if _, err = src.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("read image file: %w", err)
	}

	return NewImage(data), nil
}

// WriteImageFile writes the image to path, refusing to
// do so if path is the same file as source.
//
// The image is written to a temporary file within the
// destination directory which is then renamed over path,
// a failure part way through never leaves a truncated
// image at path.
func WriteImageFile(path, source string, img *Image) error {
	if err := checkDistinct(path, source); err != nil {
		return err
	}

	dst, err := os.CreateTemp(filepath.Dir(path), fmt.Sprintf(".%s-*", filepath.Base(path)))
	if err != nil {
		return fmt.Errorf("create temporary output file: %w", err)
	}

	tmpName := dst.Name()
	defer os.Remove(tmpName)

	if _, err = dst.Write(img.Bytes()); err != nil {
		dst.Close()
		return fmt.Errorf("write image to temporary file: %w", err)
	} else if err = dst.Sync(); err != nil {
		dst.Close()
		return fmt.Errorf("sync temporary file: %w", err)
	} else if err = dst.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}

	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("set output file mode: %w", err)
	} else if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move temporary file to output path: %w", err)
	}

	return nil
}

// DeriveOutputPath returns the path the patched copy of
// the image at input is written to by default, for
// example Firmware.MSE becomes Firmware_modified.MSE.
func DeriveOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_modified" + ext
}

func checkDistinct(path, source string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	absSource, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("resolve source path: %w", err)
	}

	if absPath == absSource {
		return fmt.Errorf("%s: %w", path, ErrOutputIsSource)
	}

	dstStat, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil

	case err != nil:
		return fmt.Errorf("stat output path: %w", err)
	}

	srcStat, err := os.Stat(source)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil

	case err != nil:
		return fmt.Errorf("stat source path: %w", err)

	case os.SameFile(dstStat, srcStat):
		return fmt.Errorf("%s: %w", path, ErrOutputIsSource)
	}

	return nil
}
