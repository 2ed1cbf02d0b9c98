package utils

import (
	"bufio"
	"os"
	"strings"
)

// Directory and file permissions used throughout the tool.
const (
	PermDir  = 0o755
	PermFile = 0o644
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReadLines returns all lines of a file.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// TailLines returns the last n lines of a file joined with newlines.
// Returns an empty string if the file does not exist.
func TailLines(path string, n int) string {
	lines, err := ReadLines(path)
	if err != nil {
		return ""
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
