package announce

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"inditools/indico"
)

// Rooms returns the unique rooms in use across all sessions, sorted.
func Rooms(sessions []indico.Session) []string {
	seen := make(map[string]struct{})
	for _, sess := range sessions {
		if sess.Room == "" {
			continue
		}
		seen[sess.Room] = struct{}{}
	}
	rooms := make([]string, 0, len(seen))
	for room := range seen {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

// ChooseRoom prompts the user to select one room from a numbered list of all
// rooms that appear in use for conference sessions. An empty answer picks 0.
func ChooseRoom(in io.Reader, out io.Writer, sessions []indico.Session) (string, error) {
	rooms := Rooms(sessions)
	if len(rooms) == 0 {
		return "", fmt.Errorf("ChooseRoom: no rooms in use")
	}

	fmt.Fprintln(out, "Select a room to monitor")
	for i, room := range rooms {
		fmt.Fprintf(out, "%d: %s\n", i, room)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "[0]: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("ChooseRoom: %w", err)
			}
			return "", fmt.Errorf("ChooseRoom: input closed")
		}
		answer := strings.TrimSpace(scanner.Text())
		choice := 0
		if answer != "" {
			var err error
			choice, err = strconv.Atoi(answer)
			if err != nil {
				fmt.Fprintln(out, "Type a valid integer")
				continue
			}
		}
		if choice < 0 || choice >= len(rooms) {
			fmt.Fprintln(out, "Type a valid integer")
			continue
		}
		return rooms[choice], nil
	}
}
