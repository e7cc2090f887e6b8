package openai

import (
	"fmt"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

func buildAnalysisPrompt(letterText string) string {
	const maxSnippet = 12000
	snippet := letterText
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `You are an insurance-denial letter analyst.
Return strict JSON object with keys:
insurer (string), claim_number (string), denial_reason (string), deadlines (array of strings), policy_references (array of strings), summary (string).
The summary must capture everything needed to draft an appeal. Use empty strings or empty arrays for facts the letter does not state.
No markdown, no extra keys.

Letter:
` + snippet
}

var toneInstructions = map[string]string{
	domain.ToneProfessional:   "Write in a measured, professional voice.",
	domain.ToneConversational: "Write in a plain, conversational voice an ordinary policyholder would use.",
	domain.ToneAssertive:      "Write in a firm, assertive voice that presses the insurer to act.",
	domain.ToneDiplomatic:     "Write in a tactful, diplomatic voice that keeps the relationship constructive.",
}

var approachInstructions = map[string]string{
	domain.ApproachDefensive:   "Frame the appeal as a defense of the claim as originally submitted.",
	domain.ApproachCooperative: "Frame the appeal as a cooperative request to re-examine the decision.",
	domain.ApproachChallenging: "Frame the appeal as a direct challenge to the denial's reasoning.",
	domain.ApproachExplanatory: "Frame the appeal as an explanation of facts the reviewer may have missed.",
}

var styleInstructions = map[string]string{
	domain.StyleDetailed:  "Cite every deadline and policy reference from the summary and address each denial ground in its own paragraph.",
	domain.StyleConcise:   "Keep the letter to the essential points, no more than four short paragraphs.",
	domain.StyleTechnical: "Lean on policy language, claim codes and regulatory terms from the summary.",
	domain.StylePersonal:  "Ground the letter in the patient's personal circumstances described in the summary.",
}

func buildAppealPrompt(summary string, opts domain.StyleOptions) string {
	opts = opts.Normalize()

	return fmt.Sprintf(`Draft a complete appeal letter for an insurance claim denial using only the case summary below.
%s
%s
%s
Produce the letter body only, ready to send. Do not invent facts that are not in the summary.

Case summary:
%s
`,
		toneInstructions[opts.Tone],
		approachInstructions[opts.Approach],
		styleInstructions[opts.Style],
		summary,
	)
}
