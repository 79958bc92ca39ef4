package detector

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"sentinel-bot/model"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

var hyphenDigitHost = regexp.MustCompile(`[a-z0-9]+(?:-[a-z0-9]+){2,}\d`)

// checkURLs extracts every URL from the content and scores its host
// against the domain blocklist and the typosquat heuristics.
func checkURLs(cat *Compiled, content string) []model.Finding {
	var findings []model.Finding
	for _, raw := range urlPattern.FindAllString(content, -1) {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Hostname())

		if blocked := matchBlockedDomain(cat, host); blocked != "" {
			findings = append(findings, model.Finding{
				Type:     model.FindingBlockedDomain,
				Severity: model.SeverityCritical,
				Weight:   0.7,
				Detail:   fmt.Sprintf("blocklisted domain %s", blocked),
			})
			continue
		}

		if net.ParseIP(host) != nil {
			findings = append(findings, model.Finding{
				Type:     model.FindingIPLiteralURL,
				Severity: model.SeverityMedium,
				Weight:   0.3,
				Detail:   fmt.Sprintf("bare IP host %s", host),
			})
			continue
		}

		if suspiciousHost(cat, host) {
			findings = append(findings, model.Finding{
				Type:     model.FindingSuspiciousDomain,
				Severity: model.SeverityHigh,
				Weight:   0.5,
				Detail:   fmt.Sprintf("suspicious domain %s", host),
			})
		}
	}
	return findings
}

// matchBlockedDomain returns the blocklist entry the host matches, either
// exactly or as a parent domain.
func matchBlockedDomain(cat *Compiled, host string) string {
	for _, d := range cat.BlockedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return d
		}
	}
	return ""
}

func suspiciousHost(cat *Compiled, host string) bool {
	for _, tld := range cat.SuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	// Typosquats tend to pile up hyphens and trailing digits.
	return hyphenDigitHost.MatchString(host)
}
