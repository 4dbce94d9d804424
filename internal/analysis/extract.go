// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"
)

// FindLines returns up to max lines from r containing substr, in order.
func FindLines(r io.Reader, substr string, max int) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() && len(lines) < max {
		if strings.Contains(scanner.Text(), substr) {
			lines = append(lines, scanner.Text())
		}
	}
	return lines
}

// FindLinesInFile is FindLines against the log at path. A missing file
// yields no lines.
func FindLinesInFile(path, substr string, max int) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return FindLines(f, substr, max)
}

// FailureContext returns up to maxLines lines of context (before/after lines
// around each marker line, marker line included) for the first occurrences of
// marker in r. Context windows of adjacent occurrences may overlap; each line
// is emitted at most once.
func FailureContext(r io.Reader, marker string, before, after, maxLines, maxOccurrences int) []string {
	var all []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		all = append(all, scanner.Text())
	}

	emitted := make(map[int]bool)
	var out []string
	occurrences := 0
	for i, line := range all {
		if !strings.Contains(line, marker) {
			continue
		}
		occurrences++
		if occurrences > maxOccurrences {
			break
		}
		start := i - before
		if start < 0 {
			start = 0
		}
		end := i + after
		if end >= len(all) {
			end = len(all) - 1
		}
		for j := start; j <= end; j++ {
			if emitted[j] || len(out) >= maxLines {
				continue
			}
			emitted[j] = true
			out = append(out, all[j])
		}
		if len(out) >= maxLines {
			break
		}
	}
	return out
}

// FailureContextInFile is FailureContext against the log at path.
func FailureContextInFile(path, marker string, before, after, maxLines, maxOccurrences int) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return FailureContext(f, marker, before, after, maxLines, maxOccurrences)
}

// PrefixCount is a warning-message prefix and the number of warnings
// starting with it.
type PrefixCount struct {
	Prefix string
	Count  int
}

// WarningPrefixes returns the top most frequent 3-word warning message
// prefixes. The message is everything after the "warning:" marker. Ties are
// broken by lexicographic order, matching the sort-then-count order the
// counts are assembled in.
func WarningPrefixes(r io.Reader, top int) []PrefixCount {
	counts := make(map[string]int)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, WarningMarker)
		if idx < 0 {
			continue
		}
		msg := strings.TrimSpace(line[idx+len(WarningMarker):])
		words := strings.Fields(msg)
		if len(words) > 3 {
			words = words[:3]
		}
		if len(words) == 0 {
			continue
		}
		counts[strings.Join(words, " ")]++
	}

	prefixes := make([]PrefixCount, 0, len(counts))
	for prefix, n := range counts {
		prefixes = append(prefixes, PrefixCount{Prefix: prefix, Count: n})
	}
	sort.Slice(prefixes, func(i, j int) bool {
		return prefixes[i].Prefix < prefixes[j].Prefix
	})
	sort.SliceStable(prefixes, func(i, j int) bool {
		return prefixes[i].Count > prefixes[j].Count
	})
	if len(prefixes) > top {
		prefixes = prefixes[:top]
	}
	return prefixes
}

// WarningPrefixesInFile is WarningPrefixes against the log at path.
func WarningPrefixesInFile(path string, top int) []PrefixCount {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return WarningPrefixes(f, top)
}
