package subtitles

import (
	"regexp"
	"strings"
	"testing"
)

const sampleVTT = "WEBVTT\nKind: captions\nLanguage: en\n\n" +
	"00:00:00.000 --> 00:00:01.000\n<c>Let's welcome our first</c>\n\n" +
	"00:00:01.000 --> 00:00:02.000\nLet's welcome our first\n\n" +
	"NOTE This is a note block\nshould be skipped\n\n" +
	"00:00:02.000 --> 00:00:03.000\n[applause]\n\n[applause]\n"

func TestCleanStripsMetadataAndDuplicates(t *testing.T) {
	got := Clean(sampleVTT)
	want := "Let's welcome our first\n\n[applause]"
	if got != want {
		t.Fatalf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanCases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "header only",
			in:   "WEBVTT\nKind: captions\nLanguage: en\n\n",
			want: "",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "every cue duplicates the previous",
			in: "WEBVTT\n\n1\n00:00:00.000 --> 00:00:01.000\nsame line\n\n" +
				"2\n00:00:01.000 --> 00:00:02.000\nsame   line\n\n" +
				"3\n00:00:02.000 --> 00:00:03.000\n<i>same line</i>\n",
			want: "same line",
		},
		{
			name: "style and region blocks are skipped",
			in: "WEBVTT\n\nSTYLE\n::cue { color: red }\n\n" +
				"REGION\nid:fred width:40%\n\n" +
				"00:00:00.000 --> 00:00:01.000 align:start position:0%\nhello\n",
			want: "hello",
		},
		{
			name: "entities decoded and tags stripped",
			in: "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n" +
				"<00:00:00.500><c> Tom &amp; Jerry</c> &gt; cats\n",
			want: "Tom & Jerry > cats",
		},
		{
			name: "tag-only line does not open a paragraph",
			in:   "WEBVTT\n\nfirst\n<c></c>\nsecond\n",
			want: "first\nsecond",
		},
		{
			name: "blank runs collapse",
			in:   "one\n\n\n\n\ntwo\n",
			want: "one\n\ntwo",
		},
		{
			name: "crlf line endings",
			in:   "WEBVTT\r\n\r\n00:00:00.000 --> 00:00:01.000\r\nhi there\r\n\r\n2\r\nbye\r\n",
			want: "hi there\n\nbye",
		},
		{
			name: "duplicate comparison is case sensitive",
			in:   "Hello\nhello\n",
			want: "Hello\nhello",
		},
		{
			name: "inner spacing is preserved on emission",
			in:   "a  b\n",
			want: "a  b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Fatalf("Clean() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanOutputNeverContainsMarkupLines(t *testing.T) {
	timing := regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.\d{3}\s+-->`)
	inputs := []string{
		sampleVTT,
		"WEBVTT\n\n12\n00:01:00.000 --> 00:01:02.000\nline\n\nNOTE\nsecret\n\n99\n",
		"webvtt - lowercase header\nLanguage: ru\nKind: captions\n\nпривет\n",
	}
	for _, in := range inputs {
		out := Clean(in)
		for _, line := range strings.Split(out, "\n") {
			if timing.MatchString(line) {
				t.Errorf("timing line leaked: %q", line)
			}
			if line != "" && isDigits(line) {
				t.Errorf("cue index leaked: %q", line)
			}
			for _, prefix := range []string{"WEBVTT", "webvtt", "Kind:", "Language:", "NOTE", "secret"} {
				if strings.HasPrefix(line, prefix) {
					t.Errorf("header or block content leaked: %q", line)
				}
			}
		}
		if Clean(in) != out {
			t.Errorf("Clean is not deterministic for %q", in)
		}
	}
}

func TestClassifyLine(t *testing.T) {
	tests := map[string]lineKind{
		"":                              lineBlank,
		"WEBVTT":                        lineHeader,
		"Kind: captions":                lineHeader,
		"NOTE hi":                       lineBlockStart,
		"00:00:01.000 --> 00:00:02.000": lineTiming,
		"42":                            lineIndex,
		"hello":                         lineText,
	}
	for in, want := range tests {
		if got := classifyLine(in); got != want {
			t.Errorf("classifyLine(%q) = %d, want %d", in, got, want)
		}
	}
}
