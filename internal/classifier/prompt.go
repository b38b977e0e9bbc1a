package classifier

import (
	"fmt"
	"strings"

	"github.com/visiona/review-classifier/internal/domain"
)

// redFlags are the categories the remote model is asked to look for.
var redFlags = []string{
	"Spam or promotional content, including links, discount codes or calls to buy",
	"Inappropriate, abusive or offensive language",
	"Vague or generic text that says nothing specific about the architect or the project",
	"An extreme rating (1 or 5) backed by very little text",
	"SEO or keyword stuffing",
	"A rating that does not match the tone of the comment",
	"Formatting abuse such as excessive capitals, punctuation or emoji",
}

// BuildPrompt renders the instruction sent to the remote model for in.
func BuildPrompt(in domain.ReviewInput) string {
	var b strings.Builder

	b.WriteString("You review client feedback left for architects on a marketplace. ")
	b.WriteString("Decide whether the review below is authentic or suspicious.\n\n")

	fmt.Fprintf(&b, "Rating: %d out of 5\n", in.Rating)
	fmt.Fprintf(&b, "Comment: %q\n\n", in.Comment)

	b.WriteString("Treat the review as suspicious if it shows any of these red flags:\n")
	for i, flag := range redFlags {
		fmt.Fprintf(&b, "%d. %s\n", i+1, flag)
	}

	b.WriteString("\nAnswer with exactly one line and nothing else. The line must start with ")
	fmt.Fprintf(&b, "%q or %q followed by a short reason.\n", domain.AuthenticPrefix, domain.SuspiciousPrefix)
	b.WriteString("Example: suspicious: generic praise with no detail about the project")

	return b.String()
}
