package openai

import "fmt"

const keywordPromptTemplate = `You extract search keywords from user questions.

Extract the most important keywords from the question and output them as a list.

Rules:
- Output the keywords as a list literal, e.g. ["staff", "training", "period"].
- Wrap every keyword in double quotes.
- Output nothing but the list: no preamble, explanation or code fences.
- Extract at most %d keywords.
- Split compound terms into meaningful standalone words. For example,
  "employee training period" becomes "employee", "training", "period".`

// buildKeywordPrompt returns the system prompt for keyword extraction.
func buildKeywordPrompt(maxKeywords int) string {
	return fmt.Sprintf(keywordPromptTemplate, maxKeywords)
}
