package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"cdm-mapper/internal/metadata"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteMetadata writes rec as indented JSON followed by a newline.
func WriteMetadata(w io.Writer, rec metadata.Record) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	return nil
}

// WriteFile creates path, including missing parent directories, and fills it
// with fn. The file is closed even when fn fails.
func WriteFile(path string, fn func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	return nil
}
