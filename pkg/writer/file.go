package writer

import (
	"bytes"
	"sort"
)

// GeneratedHeader marks every file the generator owns. Files carrying it in
// their first lines are pruned when no longer produced.
const GeneratedHeader = "Code generated by stripe-gen. DO NOT EDIT."

// File is one output file, Path relative to the output root in slash form.
type File struct {
	Path string
	Data []byte
}

// SortFiles orders files by path.
func SortFiles(files []File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}

// IsGenerated reports whether data starts with the generated-code header
// within its first few lines.
func IsGenerated(data []byte) bool {
	head := data
	for i := 0; i < 5; i++ {
		line, rest, _ := bytes.Cut(head, []byte("\n"))
		if bytes.Contains(line, []byte(GeneratedHeader)) {
			return true
		}
		if len(rest) == 0 {
			break
		}
		head = rest
	}
	return false
}
