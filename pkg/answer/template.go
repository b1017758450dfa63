package answer

import (
	"fmt"
	"strings"
)

var solvingSteps = [5]string{
	"Restate the problem in your own words.",
	"List what is given and what is being asked.",
	"Pick the rule, formula or idea that connects them.",
	"Work through it one step at a time, writing each step down.",
	"Check that the result makes sense and answers the question.",
}

var studyChecklist = [3]string{
	"Reread the key points and cover them from memory.",
	"Try one practice problem without notes.",
	"Explain the topic out loud in under two minutes.",
}

// TemplateAnswer renders the offline explanation. It depends only on its
// arguments: the same input always yields the same text.
func TemplateAnswer(question string, detail int, tone Tone) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here is a %s explanation of: %s\n\n", tone, strings.TrimSpace(question))

	b.WriteString("Key points:\n")
	for i := 1; i <= detail; i++ {
		fmt.Fprintf(&b, "- Key point %d: an essential idea to understand about this topic.\n", i)
	}

	b.WriteString("\nHow to work through it:\n")
	for i, step := range solvingSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	b.WriteString("\nStudy plan:\n")
	for _, item := range studyChecklist {
		fmt.Fprintf(&b, "[ ] %s\n", item)
	}

	return b.String()
}
