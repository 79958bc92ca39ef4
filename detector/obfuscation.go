package detector

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"sentinel-bot/model"
)

var (
	base64Run = regexp.MustCompile(`[A-Za-z0-9+/]{20,}={0,2}`)
	hexEscape = regexp.MustCompile(`\\x[0-9a-fA-F]{2}`)
)

var zeroWidthChars = []rune{'\u200b', '\u200c', '\u200d', '\u2060', '\ufeff'}

// Cyrillic letters that render like their Latin counterparts.
var homographs = []rune{'а', 'е', 'о', 'р', 'с', 'х'}

// checkObfuscation runs the bounded counting heuristics for hidden or
// disguised content. Each check is O(len(content)).
func checkObfuscation(content string) []model.Finding {
	var findings []model.Finding

	add := func(sev model.Severity, weight float64, detail string) {
		findings = append(findings, model.Finding{
			Type:     model.FindingObfuscation,
			Severity: sev,
			Weight:   weight,
			Detail:   detail,
		})
	}

	zw := 0
	for _, c := range zeroWidthChars {
		zw += strings.Count(content, string(c))
	}
	if zw > 5 {
		add(model.SeverityHigh, 0.7, fmt.Sprintf("%d zero-width characters", zw))
	}

	if strings.ContainsRune(content, '‭') || strings.ContainsRune(content, '‮') {
		add(model.SeverityHigh, 0.8, "right-to-left override")
	}

	homoCount := 0
	for _, r := range content {
		for _, h := range homographs {
			if r == h {
				homoCount++
				break
			}
		}
	}
	// A couple of Cyrillic letters is normal text; a scatter of them
	// inside Latin words is homograph substitution.
	if homoCount > 0 && homoCount < len([]rune(content))/4 && containsLatin(content) {
		add(model.SeverityMedium, 0.6, fmt.Sprintf("%d homograph characters", homoCount))
	}

	if n := len(base64Run.FindAllString(content, -1)); n > 3 {
		add(model.SeverityMedium, 0.6, fmt.Sprintf("%d base64-like runs", n))
	}

	if n := len(hexEscape.FindAllString(content, -1)); n > 10 {
		add(model.SeverityMedium, 0.6, fmt.Sprintf("%d hex escapes", n))
	}

	ctrl := 0
	for _, r := range content {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			ctrl++
		}
	}
	if ctrl > 5 {
		add(model.SeverityMedium, 0.6, fmt.Sprintf("%d control characters", ctrl))
	}

	if run := longestRun(content); run >= 100 {
		add(model.SeverityMedium, 0.6, fmt.Sprintf("character repeated %d times", run))
	}

	return findings
}

func containsLatin(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

func longestRun(s string) int {
	best, cur := 0, 0
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			cur++
		} else {
			cur = 1
			prev = r
		}
		if cur > best {
			best = cur
		}
	}
	return best
}
