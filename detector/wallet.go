package detector

import (
	"fmt"
	"regexp"

	"sentinel-bot/model"
)

var (
	btcAddress = regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`)
	ethAddress = regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`)
)

// checkWallets flags cryptocurrency addresses dropped into chat. A wallet
// address on its own is only a weak signal; the crypto-scam catalog and
// the aggregator decide how much it matters in context.
func checkWallets(content string) []model.Finding {
	var findings []model.Finding
	if addr := btcAddress.FindString(content); addr != "" {
		findings = append(findings, model.Finding{
			Type:     model.FindingWalletAddress,
			Severity: model.SeverityMedium,
			Weight:   0.6,
			Detail:   fmt.Sprintf("BTC address %s", addr),
		})
	}
	if addr := ethAddress.FindString(content); addr != "" {
		findings = append(findings, model.Finding{
			Type:     model.FindingWalletAddress,
			Severity: model.SeverityMedium,
			Weight:   0.6,
			Detail:   fmt.Sprintf("ETH address %s", addr),
		})
	}
	return findings
}
