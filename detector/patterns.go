package detector

import (
	"fmt"

	"sentinel-bot/model"
)

// checkPatterns matches the content against every regex catalog. The
// first match within a catalog flags that catalog; catalogs contribute
// independently.
func checkPatterns(cat *Compiled, content string) []model.Finding {
	var findings []model.Finding
	for _, pc := range cat.Catalogs {
		for _, re := range pc.Patterns {
			if m := re.FindString(content); m != "" {
				findings = append(findings, model.Finding{
					Type:     pc.Name,
					Severity: pc.Severity,
					Weight:   pc.Weight,
					Detail:   fmt.Sprintf("matched %q", truncate(m, 80)),
				})
				break
			}
		}
	}
	return findings
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
