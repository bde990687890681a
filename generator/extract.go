package generator

import (
	"regexp"
	"strings"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(.*?)```")
	fenceMarker = regexp.MustCompile("```[A-Za-z0-9_+-]*")
)

// blockRank orders fenced blocks by how likely they hold the program
type blockRank int

const (
	rankOther blockRank = iota
	rankBare
	rankPython
)

// ExtractCode pulls the program out of a free-text model response.
//
// The first non-empty python or py block wins, then the first non-empty block
// without an info string. Blocks tagged with another language (a bash install
// step, say) are never picked. Failing all that it returns the whole response
// with fence markers stripped, trimmed.
func ExtractCode(raw string) string {
	if code, ok := fencedCode(raw); ok {
		return code
	}
	return stripFences(raw)
}

func fencedCode(raw string) (string, bool) {
	var bare string
	for _, m := range fencedBlock.FindAllStringSubmatch(raw, -1) {
		rank, body := splitBlock(m[1])
		if body == "" {
			continue
		}
		switch rank {
		case rankPython:
			return body, true
		case rankBare:
			if bare == "" {
				bare = body
			}
		}
	}
	return bare, bare != ""
}

// splitBlock separates the info string from the body. A block on a single
// line, like ```print(1)```, has no info string.
func splitBlock(inner string) (blockRank, string) {
	info, body, multiline := strings.Cut(inner, "\n")
	if !multiline {
		return rankBare, strings.TrimSpace(inner)
	}

	body = strings.TrimSpace(body)
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return rankBare, body
	}
	switch strings.ToLower(fields[0]) {
	case "python", "python3", "py":
		return rankPython, body
	default:
		return rankOther, body
	}
}

func stripFences(raw string) string {
	return strings.TrimSpace(fenceMarker.ReplaceAllString(raw, ""))
}
