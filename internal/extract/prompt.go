package extract

import (
	"fmt"
	"strings"
)

// maxPromptText caps how much page text goes into the prompt. Local
// models have small context windows.
const maxPromptText = 6000

// BuildPrompt renders the extraction prompt for a conference page.
// The prompt leans hard on anti-hallucination: the model may only
// report facts that appear verbatim in the supplied text, must quote
// the source line for the deadline, and falls back to "TBD" whenever
// the page is silent or shows a different edition.
func BuildPrompt(page Page) string {
	text := page.Text
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Analyze this conference website and extract deadline information.

Conference: %s
Website: %s
Expected Year: %d

Website Content:
%s

Extract the following information and respond with ONLY valid JSON (no other text):
{
  "paper_deadline": "exact deadline date if found (e.g., 'March 15, %d') or 'TBD'",
  "abstract_deadline": "abstract deadline or 'TBD'",
  "conference_date": "conference dates or 'TBD'",
  "location": "city/country or 'TBD'",
  "submission_type": "Regular Paper, Abstract, Late Breaking Results, Poster, Short Paper, or Workshop",
  "source_text": "the EXACT text where you found the deadline"
}

CRITICAL VALIDATION RULES:
1. You are searching for %s (year %d)
2. NORMAL: paper deadlines are usually 6-12 months BEFORE the conference,
   so a deadline in %d or early %d is CORRECT
3. WRONG YEAR: a deadline in %d or earlier means you are looking at a past
   edition's website - return "TBD"
4. CHECK WEBSITE YEAR: if the website clearly shows "%s %d" instead of
   "%s", return "TBD"

DEADLINE EXTRACTION RULES:
- Extract the PAPER SUBMISSION deadline, NOT notification/acceptance/camera-ready dates
- Look for keywords: "paper deadline", "submission deadline", "abstract deadline", "call for papers"
- IGNORE keywords: "notification", "acceptance", "camera ready", "final version", "author notification"
- If multiple submission deadlines exist, choose the EARLIEST one

ANTI-HALLUCINATION RULES:
1. ONLY use information that EXPLICITLY appears in the website content above
2. DO NOT use your training data or prior knowledge about this conference - EVER
3. If information is NOT in the website content, you MUST use "TBD"
4. The "source_text" field must quote the exact text where the deadline appears
5. NEVER make up, guess, or infer information
6. If you see dates or locations from a DIFFERENT conference or year, ignore them
7. When in doubt, use "TBD" - a missing value is better than a wrong one

Return ONLY the JSON object.`,
		page.Title(), page.URL, page.Year,
		text,
		page.Year,
		page.Title(), page.Year,
		page.Year-1, page.Year,
		page.Year-2,
		page.Conference, page.Year-1,
		page.Title())
	return b.String()
}
