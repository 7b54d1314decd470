// internal/manifest/manifest.go
package manifest

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Load reads a genome list file: one path per line, blank lines and
// '#' comment lines skipped. The file order is preserved; it decides
// matrix row order downstream.
func Load(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genome list")
	}
	defer func() { _ = fh.Close() }()

	var paths []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read genome list")
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("%s: no genome paths listed", path)
	}
	return paths, nil
}
