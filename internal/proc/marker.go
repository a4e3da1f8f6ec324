package proc

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// marker identifies one command's completion line in pane output. The id is
// unique per process so stale markers from earlier commands in the same pane
// never match.
type marker struct {
	id string
	re *regexp.Regexp
}

func newMarker() marker {
	var buf [6]byte
	rand.Read(buf[:])
	id := hex.EncodeToString(buf[:])
	return marker{
		id: id,
		re: regexp.MustCompile(`___SPOOL_DONE_` + id + `_(-?\d+)___`),
	}
}

func (m marker) prefix() string {
	return "___SPOOL_DONE_" + m.id + "_"
}

// wrap appends a printf that emits the completion marker carrying the
// command's exit status. The typed command echoes back with a literal %d, so
// the echo can never match the marker pattern.
func (m marker) wrap(command string) string {
	return fmt.Sprintf("%s; printf '\\n%s%%d___\\n' $?", command, m.prefix())
}

// findExit scans text for the completion marker and returns the exit code.
func (m marker) findExit(text string) (int, bool) {
	match := m.re.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	code, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return code, true
}

// clean strips marker machinery from captured output: the echoed wrapped
// command, the marker line itself, and everything after it.
func (m marker) clean(text string) string {
	if idx := m.re.FindStringIndex(text); idx != nil {
		text = text[:idx[0]]
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, m.prefix()) {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")
	return strings.TrimRight(out, "\n")
}
