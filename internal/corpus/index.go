package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// IndexFilename is the titles index file written into the data directory.
const IndexFilename = "conversation_titles.txt"

// TrainingFilename is the training data file excluded from indexing.
const TrainingFilename = "training_data.jsonl"

// indexHeader is Obsidian frontmatter the original tool emits; the parser
// skips it because it never matches the record pattern.
const indexHeader = `---
tags:
  - help
  - management
  - memory
  - support
---


`

// transcriptTimestampPattern extracts the embedded timestamp from a
// transcript basename for sorting.
var transcriptTimestampPattern = regexp.MustCompile(`_(\d{2})_(\d{2})_(\d{4})_(\d{2})_(\d{2})_(\d{2})\.txt$`)

// TranscriptFilename returns the transcript filename for a sanitized title
// and timestamp: <title>_<dd>_<mm>_<yyyy>_<hh>_<mm>_<ss>.txt.
func TranscriptFilename(sanitizedTitle string, ts time.Time) string {
	return fmt.Sprintf("%s_%s.txt", sanitizedTitle, ts.Format("02_01_2006_15_04_05"))
}

// BuildIndex walks dataDir for transcript files, orders them by their
// embedded timestamp, and writes the numbered titles index into dataDir.
// Returns the index path and the number of entries written.
func BuildIndex(dataDir string) (string, int, error) {
	var files []string
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if filepath.Ext(name) != ".txt" || name == IndexFilename {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to walk data dir: %w", err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		ti, iOK := transcriptTimestamp(filepath.Base(files[i]))
		tj, jOK := transcriptTimestamp(filepath.Base(files[j]))
		if iOK && jOK && !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})

	indexPath := filepath.Join(dataDir, IndexFilename)
	f, err := os.Create(indexPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create index: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(indexHeader); err != nil {
		return "", 0, fmt.Errorf("failed to write index header: %w", err)
	}
	for i, path := range files {
		if _, err := fmt.Fprintf(f, "%d. %s\n", i+1, filepath.Base(path)); err != nil {
			return "", 0, fmt.Errorf("failed to write index entry: %w", err)
		}
	}
	return indexPath, len(files), nil
}

// transcriptTimestamp parses the timestamp embedded in a transcript basename.
func transcriptTimestamp(name string) (time.Time, bool) {
	m := transcriptTimestampPattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
}
