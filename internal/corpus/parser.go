// Package corpus builds and parses the numbered titles index that drives
// concept analysis.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
)

// indexLinePattern matches one index entry:
//
//	<ordinal>. <title_with_underscores>_<dd>_<mm>_<yyyy>_<hh>_<mm>_<ss>.<ext>
//
// Anything else (the frontmatter header, blank lines, stray text) is skipped.
var indexLinePattern = regexp.MustCompile(`^(\d+)\.\s+(.+)_(\d{2})_(\d{2})_(\d{4})_(\d{2})_(\d{2})_(\d{2})\.([A-Za-z0-9]+)$`)

// ParseIndex reads index lines from r and returns the records in file order.
// Non-matching lines are not an error; they simply produce no record.
func ParseIndex(r io.Reader) ([]*models.ConversationRecord, error) {
	var records []*models.ConversationRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if rec := parseLine(strings.TrimSpace(scanner.Text())); rec != nil {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return records, nil
}

// ParseIndexFile parses the titles index at path. A missing or unreadable
// index is fatal for the analysis run and is returned to the caller.
func ParseIndexFile(path string) ([]*models.ConversationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus index unavailable: %w", err)
	}
	defer f.Close()
	return ParseIndex(f)
}

// parseLine parses one index line, or returns nil when the line does not
// match the expected layout.
func parseLine(line string) *models.ConversationRecord {
	m := indexLinePattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	ordinal, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	day, _ := strconv.Atoi(m[3])
	month, _ := strconv.Atoi(m[4])
	year, _ := strconv.Atoi(m[5])
	hour, _ := strconv.Atoi(m[6])
	minute, _ := strconv.Atoi(m[7])
	second, _ := strconv.Atoi(m[8])

	filename := strings.TrimSpace(line[strings.Index(line, " ")+1:])
	return &models.ConversationRecord{
		ID:        ordinal,
		Title:     strings.ReplaceAll(m[2], "_", " "),
		Filename:  filename,
		NoteName:  strings.TrimSuffix(filename, "."+m[9]),
		Timestamp: time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC),
	}
}
