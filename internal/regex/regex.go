package regex

import "regexp"

var (
	// AI and JSON parsing
	MarkdownJSONBlock = regexp.MustCompile("(?s)```(?:json)?\n?(.*?)```")
	JSONString        = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)

	// List markers models put in front of resolution steps ("1.", "2)", "-").
	ListMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*+•])\s+`)
)
