package generation

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are writing a status note about one of your own ClickUp tasks.

Task: %s

Here are the available fields (values may be "(not provided)" when absent):

%s

Write a concise 1-2 sentence summary in the first person focusing on the task's current status and next steps. Ignore any fields marked "(not provided)".`

// fieldBlock renders labelled fields as "label: value" lines. Fields without
// a label are dropped.
func fieldBlock(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Label == "" {
			continue
		}
		lines = append(lines, f.Label+": "+f.Value)
	}
	return strings.Join(lines, "\n")
}

func buildPrompt(subject, block string) string {
	return fmt.Sprintf(promptTemplate, subject, block)
}

// normalize trims generated text, folds it onto one line and ends it with a
// period.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	return text
}
