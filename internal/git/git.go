// Package git extracts changed files and lines from git diff output for
// impact analysis. It shells out to git rather than linking a VCS
// library; the diff format is stable and this stays a dev-time helper.
package git

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ChangedFile is one file touched since the base ref, with the line
// numbers of its added or modified lines in the new version.
type ChangedFile struct {
	Path         string
	ChangedLines []int
}

// ChangedFiles runs git diff against baseRef in dir and parses the
// result. dir may be empty for the current directory.
func ChangedFiles(dir, baseRef string) ([]ChangedFile, error) {
	cmd := exec.Command("git", "diff", "-U0", baseRef)
	if dir != "" {
		cmd.Dir = dir
	}
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff %s: %w", baseRef, err)
	}
	return parseDiff(output), nil
}

// hunkHeader matches @@ -old +newStart[,newLen] @@; only the new side
// matters here.
var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

func parseDiff(output []byte) []ChangedFile {
	var (
		changes []ChangedFile
		current *ChangedFile
	)

	sc := bufio.NewScanner(bytes.NewReader(output))
	for sc.Scan() {
		line := sc.Text()

		if strings.HasPrefix(line, "diff --git") {
			if current != nil {
				changes = append(changes, *current)
			}
			current = nil
			fields := strings.Fields(line)
			if len(fields) >= 4 {
				current = &ChangedFile{Path: strings.TrimPrefix(fields[3], "b/")}
			}
			continue
		}
		if current == nil || !strings.HasPrefix(line, "@@") {
			continue
		}

		m := hunkHeader.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start, _ := strconv.Atoi(m[1])
		count := 1
		if m[2] != "" {
			count, _ = strconv.Atoi(m[2])
		}
		// count 0 is a pure deletion: no lines exist at this position
		// in the new file.
		for i := 0; i < count; i++ {
			current.ChangedLines = append(current.ChangedLines, start+i)
		}
	}
	if current != nil {
		changes = append(changes, *current)
	}
	return changes
}
