package core

import (
	"path"
	"strings"
)

// CommitType constants for semantic commits
const (
	CommitTypeFeat  = "feat"
	CommitTypeFix   = "fix"
	CommitTypeDocs  = "docs"
	CommitTypeChore = "chore"
)

// Footer is appended to every commit message written by a rollover.
const Footer = "Powered-by: todoroll"

// FormatChangeReason builds a Conventional Commit message.
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Powered-by: todoroll
func FormatChangeReason(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)

	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}

	sb.WriteString(": ")
	sb.WriteString(subject)

	if body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(body))
	}

	sb.WriteString("\n\n")
	sb.WriteString(Footer)

	return sb.String()
}

// rolloverMessage describes a mutating result as a commit message.
func rolloverMessage(r Result) string {
	target := strings.TrimSuffix(path.Base(r.Target), NoteExt)
	switch r.Outcome {
	case OutcomeRolled, OutcomeMerged:
		prev := strings.TrimSuffix(path.Base(r.Previous), NoteExt)
		return FormatChangeReason(CommitTypeChore, "todo", "roll over "+prev+" into "+target, "")
	case OutcomeRepaired:
		return FormatChangeReason(CommitTypeFix, "todo", "complete interrupted rollover into "+target, "")
	default:
		return FormatChangeReason(CommitTypeChore, "todo", "start "+target, "")
	}
}
