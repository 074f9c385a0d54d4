package sentiment

import (
	"fmt"
	"strings"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// ── Few-shot classification prompt ──

// BuildPrompt embeds text into the classification prompt. The caller is
// responsible for truncating text.
func BuildPrompt(text string) string {
	var cats strings.Builder
	for _, c := range models.Categories {
		cats.WriteString("    - ")
		cats.WriteString(string(c))
		cats.WriteString("\n")
	}

	return fmt.Sprintf(`Analyze the sentiment of the following text snippet about a company.

1. **Classify the sentiment**: as 'positive', 'negative', or 'neutral'.
2. **Identify the category**: Choose ONE category from the following list that best describes the main topic:
%s3. **Provide a brief reason**: Give a 2-4 word reason for your classification.

---
**Example 1:**
Text: "Amazon's quarterly earnings surpassed all analyst expectations, showing massive growth."
Output:
Label: positive
Category: Company News & Financials
Reason: surpassed expectations

**Example 2:**
Text: "My package from Amazon arrived two days late and the box was damaged."
Output:
Label: negative
Category: Delivery & Shipping
Reason: late and damaged

**Example 3:**
Text: "The new update to their mobile app is so confusing, I can't find anything anymore."
Output:
Label: negative
Category: Website & App Experience
Reason: confusing update

---
Now, analyze this text:
Text: "%s"
Output:
`, cats.String(), text)
}
