package models

import (
	"bufio"
	"fmt"
	"strings"
)

// FormatDialogue renders one "Role: content" line per turn, the form users
// edit by hand.
func FormatDialogue(d Dialogue) string {
	var sb strings.Builder
	for i, t := range d.Turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(t.Role))
		sb.WriteString(": ")
		sb.WriteString(t.Content)
	}
	return sb.String()
}

// ParseDialogue reads edited "Role: content" lines back into a Dialogue.
// Each line is split on its first colon. Lines without a colon are skipped.
func ParseDialogue(text string) (Dialogue, error) {
	var d Dialogue
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		label, content, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		role, err := ParseRole(label)
		if err != nil {
			return Dialogue{}, fmt.Errorf("line %d: %w", n, err)
		}
		d.Turns = append(d.Turns, Turn{Role: role, Content: strings.TrimSpace(content)})
	}
	if err := sc.Err(); err != nil {
		return Dialogue{}, err
	}
	return d, nil
}
