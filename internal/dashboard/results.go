// SPDX-License-Identifier: MPL-2.0

package dashboard

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// LoadBaseline parses a baseline summary file into size → GFLOPS pairs.
// Lines look like:
//
//	small: 2.59 GFLOPS (0.104s)
//
// Lines without a colon and a GFLOPS figure are ignored, as are lines whose
// figure does not parse. A missing file yields an empty map.
func LoadBaseline(path string) map[string]float64 {
	baseline := make(map[string]float64)

	f, err := os.Open(path)
	if err != nil {
		return baseline
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, ":") || !strings.Contains(line, "GFLOPS") {
			continue
		}
		size, rest, _ := strings.Cut(line, ":")
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		gflops, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		baseline[strings.TrimSpace(size)] = gflops
	}
	return baseline
}
