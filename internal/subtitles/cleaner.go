package subtitles

import (
	"html"
	"regexp"
	"strings"
)

var (
	cueTimingPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3}\s+-->\s+\d{2}:\d{2}:\d{2}\.\d{3}`)
	inlineTagPattern = regexp.MustCompile(`<[^>]+>`)
)

var (
	metadataPrefixes   = []string{"Kind:", "Language:"}
	blockStartPrefixes = []string{"NOTE", "STYLE", "REGION"}
)

type cleanState uint8

const (
	stateNormal cleanState = iota
	stateSkipBlock
)

type lineKind uint8

const (
	lineBlank lineKind = iota
	lineHeader
	lineBlockStart
	lineTiming
	lineIndex
	lineText
	lineKindCount
)

type cleanAction uint8

const (
	actionDrop cleanAction = iota
	actionSeparate
	actionEmit
)

type transition struct {
	next   cleanState
	action cleanAction
}

// Skippable blocks swallow everything up to and including the blank line
// that terminates them.
var cleanTransitions = [2][lineKindCount]transition{
	stateNormal: {
		lineBlank:      {stateNormal, actionSeparate},
		lineHeader:     {stateNormal, actionDrop},
		lineBlockStart: {stateSkipBlock, actionDrop},
		lineTiming:     {stateNormal, actionDrop},
		lineIndex:      {stateNormal, actionDrop},
		lineText:       {stateNormal, actionEmit},
	},
	stateSkipBlock: {
		lineBlank:      {stateNormal, actionDrop},
		lineHeader:     {stateSkipBlock, actionDrop},
		lineBlockStart: {stateSkipBlock, actionDrop},
		lineTiming:     {stateSkipBlock, actionDrop},
		lineIndex:      {stateSkipBlock, actionDrop},
		lineText:       {stateSkipBlock, actionDrop},
	},
}

// Clean converts WebVTT caption markup into plain prose. Headers, metadata,
// NOTE/STYLE/REGION blocks, cue timings and cue indexes are dropped, inline
// tags are stripped, entities decoded, and a cue that repeats the previous
// emitted line is skipped. Paragraphs are separated by a single blank line.
// Clean never fails; input without usable text yields "".
func Clean(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var (
		out   []string
		state = stateNormal
		last  string
	)
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		step := cleanTransitions[state][classifyLine(trimmed)]
		state = step.next

		switch step.action {
		case actionSeparate:
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
		case actionEmit:
			text := stripMarkup(trimmed)
			if text == "" {
				continue
			}
			normalized := strings.Join(strings.Fields(text), " ")
			if normalized == last {
				continue
			}
			out = append(out, text)
			last = normalized
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func classifyLine(trimmed string) lineKind {
	switch {
	case trimmed == "":
		return lineBlank
	case strings.HasPrefix(strings.ToUpper(trimmed), "WEBVTT"):
		return lineHeader
	case hasAnyPrefix(trimmed, metadataPrefixes):
		return lineHeader
	case hasAnyPrefix(trimmed, blockStartPrefixes):
		return lineBlockStart
	case cueTimingPattern.MatchString(trimmed):
		return lineTiming
	case isDigits(trimmed):
		return lineIndex
	default:
		return lineText
	}
}

func stripMarkup(line string) string {
	line = inlineTagPattern.ReplaceAllString(line, "")
	return strings.TrimSpace(html.UnescapeString(line))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
