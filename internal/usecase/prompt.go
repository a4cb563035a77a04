package usecase

import (
	"strings"

	"adventure-agent/internal/domain"
)

// transcriptOf renders turns as the plain-text exchange fed to the completion
// service, one line per turn.
func transcriptOf(turns []domain.Turn, botID string) string {
	var b strings.Builder
	for _, turn := range turns {
		if domain.RoleOf(turn, botID) == domain.RoleAssistant {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// summaryLine renders the assistant turn that carries the running summary.
// An absent summary is spelled out rather than leaking any storage sentinel.
func summaryLine(text string, ok bool) string {
	if !ok {
		return "Summary so far: the story has just begun, nothing has happened yet."
	}
	return "Summary so far: " + text
}

// compactionPrompt builds the instruction for folding a transcript into the
// running summary.
func compactionPrompt(prior string, hasPrior bool, transcript string) string {
	if !hasPrior {
		return "Summarize the following story transcript. Keep every important detail: " +
			"character names, places, achievements, quests, goals and milestones. " +
			"Respond with only the summary text, nothing else.\n\n" + transcript
	}
	return "Here is the story summary so far:\n\n" + prior +
		"\n\nHere are new pieces of the story:\n\n" + transcript +
		"\n\nMerge them into one updated summary. Keep every important detail: " +
		"character names, places, achievements, quests, goals and milestones. " +
		"Respond with only the updated summary text, nothing else."
}

// helpText is the static reply to the help meta-command.
const helpText = "I am a storyteller. Start a new adventure with the command prefix, " +
	"reply inside your own adventure thread to continue the story, " +
	"send !summary to read the tale so far, or !help to see this message again."
