package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var requestFileName = regexp.MustCompile(`^batch_file_(\d+)_part(\d+)\.jsonl$`)

// RequestFile is one physical, independently submittable request file.
type RequestFile struct {
	Path string
	Year int
	Part int
}

func RequestFileName(year, part int) string {
	return fmt.Sprintf("batch_file_%d_part%d.jsonl", year, part)
}

func (f RequestFile) Stem() string {
	return strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
}

// Key groups files as {year}_{part}.
func (f RequestFile) Key() string {
	return fmt.Sprintf("%d_%d", f.Year, f.Part)
}

// ListRequestFiles returns the request files in dir, newest year first and,
// within a year, highest part first. Other files are ignored.
func ListRequestFiles(dir string) ([]RequestFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read batch dir %s: %w", dir, err)
	}
	var files []RequestFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := requestFileName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		part, _ := strconv.Atoi(m[2])
		files = append(files, RequestFile{Path: filepath.Join(dir, e.Name()), Year: year, Part: part})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Year != files[j].Year {
			return files[i].Year > files[j].Year
		}
		return files[i].Part > files[j].Part
	})
	return files, nil
}

// OutputPath is where the completed output of f is stored.
func OutputPath(resultsDir string, f RequestFile) string {
	return filepath.Join(resultsDir, "completed-batches", f.Stem()+".jsonl")
}

func removeParts(dir string, year int) error {
	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("batch_file_%d_part*.jsonl", year)))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale %s: %w", m, err)
		}
	}
	return nil
}
