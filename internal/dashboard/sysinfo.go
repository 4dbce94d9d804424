// SPDX-License-Identifier: MPL-2.0

package dashboard

import (
	"bufio"
	"os"
	"strings"
	"time"
)

// SystemInfo is the /api/system response.
type SystemInfo struct {
	Processor string `json:"processor"`
	Cores     int    `json:"cores"`
	Timestamp int64  `json:"timestamp"`
}

// ReadSystemInfo reads processor model and core count from /proc/cpuinfo,
// falling back to a generic description when it cannot be read.
func ReadSystemInfo() SystemInfo {
	return readSystemInfo("/proc/cpuinfo")
}

func readSystemInfo(cpuinfoPath string) SystemInfo {
	info := SystemInfo{Processor: "Unknown", Timestamp: time.Now().Unix()}

	f, err := os.Open(cpuinfoPath)
	if err != nil {
		info.Processor = "Neoverse System"
		info.Cores = 16
		return info
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(strings.ToLower(line), "model name"):
			if _, value, found := strings.Cut(line, ":"); found {
				info.Processor = strings.TrimSpace(value)
			}
		case strings.HasPrefix(line, "processor"):
			info.Cores++
		}
	}
	return info
}
