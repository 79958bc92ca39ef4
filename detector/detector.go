package detector

import (
	"log"

	"sentinel-bot/model"
)

// run executes one detector with panic isolation. A failing detector is
// logged and contributes no findings; the others still run.
func run(name string, fn func() []model.Finding) (out []model.Finding) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Detector %s failed: %v", name, r)
			out = nil
		}
	}()
	return fn()
}

// ScanMessage runs all text detectors against the message content and
// returns the combined findings. Pure, safe for concurrent use.
func ScanMessage(cat *Compiled, content string) []model.Finding {
	if content == "" {
		return nil
	}
	var findings []model.Finding
	findings = append(findings, run("urls", func() []model.Finding {
		return checkURLs(cat, content)
	})...)
	findings = append(findings, run("patterns", func() []model.Finding {
		return checkPatterns(cat, content)
	})...)
	findings = append(findings, run("obfuscation", func() []model.Finding {
		return checkObfuscation(content)
	})...)
	findings = append(findings, run("wallets", func() []model.Finding {
		return checkWallets(content)
	})...)
	return findings
}

// ScanAttachment checks one attachment by filename and leading bytes.
func ScanAttachment(cat *Compiled, att model.Attachment) []model.Finding {
	return run("files", func() []model.Finding {
		return checkFile(cat, att)
	})
}

// ScanUsername matches a member name against the throwaway-account
// patterns. Used on the join path, before the user has sent anything.
func ScanUsername(cat *Compiled, username string) []model.Finding {
	if username == "" {
		return nil
	}
	return run("username", func() []model.Finding {
		for _, re := range cat.SuspiciousUsernames {
			if re.MatchString(username) {
				return []model.Finding{{
					Type:     model.FindingSuspiciousUsername,
					Severity: model.SeverityMedium,
					Weight:   0.4,
					Detail:   "username matches " + re.String(),
				}}
			}
		}
		return nil
	})
}
