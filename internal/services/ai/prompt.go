package ai

import (
	"fmt"
	"strings"

	"github.com/agencyops/seo-intel/internal/models"
)

var tierLabels = map[models.SourceTier]string{
	models.SourceTierOfficial:  "official",
	models.SourceTierExpert:    "expert",
	models.SourceTierCommunity: "community",
}

// systemPrompt frames the analysis role. Source tiers are explained so the
// model can weigh official announcements over community chatter.
const systemPrompt = `You are a senior SEO strategist for a digital marketing agency. You analyze recent industry content and extract actionable recommendations for the agency's delivery teams.

Sources are ranked by authority tier: "official" is first-party search-engine documentation and announcements, "expert" is recognized industry practitioners, "community" is forums and discussion threads. Weigh official sources heaviest and treat single community reports as provisional.

Respond with valid JSON only, in this format:
{
  "recommendations": [
    {
      "category": "algorithm-update" | "content-strategy" | "technical-seo" | "tooling" | "documentation",
      "title": "short actionable headline",
      "summary": "one-paragraph summary of the finding",
      "details": "what changed, why it matters, and what the agency should do",
      "impact": "high" | "medium" | "low",
      "citations": [
        { "article": 1, "excerpt": "short quote from that article supporting the finding" }
      ]
    }
  ]
}

"article" is the number of the article block the citation comes from. Cite only articles that actually support the finding; every recommendation needs at least one citation. Return an empty recommendations array if nothing is actionable.`

// BuildUserPrompt renders one block per article: title, source, tier,
// category, then the (already truncated) content. Rendering is
// deterministic so identical batches produce identical prompts.
func BuildUserPrompt(articles []BatchArticle) string {
	var b strings.Builder

	b.WriteString("Analyze the following ")
	fmt.Fprintf(&b, "%d article(s) and extract SEO recommendations.\n", len(articles))

	for i, a := range articles {
		tier := tierLabels[a.Source.Tier]
		if tier == "" {
			tier = string(a.Source.Tier)
		}

		fmt.Fprintf(&b, "\n--- Article %d ---\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", a.Result.Title)
		fmt.Fprintf(&b, "Source: %s (%s tier, category: %s)\n", a.Source.Name, tier, a.Source.Category)
		fmt.Fprintf(&b, "URL: %s\n", a.Result.URL)
		b.WriteString("Content:\n")
		b.WriteString(a.Result.Content)
		b.WriteString("\n")
	}

	return b.String()
}
