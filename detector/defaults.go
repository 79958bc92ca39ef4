package detector

// defaultCatalog returns the built-in detector configuration. The file at
// data/catalogs.yaml may replace any section wholesale.
func defaultCatalog() *Catalog {
	return &Catalog{
		BlockedDomains: []string{
			"grabify.link",
			"iplogger.org",
			"iplogger.com",
			"2no.co",
			"yip.su",
			"blasze.com",
			"discord-nitro.ru",
			"discordgift.ru",
			"steamcommunityx.com",
			"free-nitro.com",
			"dlscord.gift",
			"discorcl.com",
		},
		SuspiciousTLDs: []string{
			".tk", ".ml", ".ga", ".cf", ".gq", ".top", ".xyz", ".click", ".link",
		},
		DangerousExtensions: []string{
			".exe", ".scr", ".bat", ".cmd", ".com", ".pif", ".vbs", ".js",
			".jar", ".msi", ".dll", ".ps1", ".sh", ".apk", ".hta",
		},
		TriggerKeywords: []string{
			"free nitro", "airdrop", "giveaway", "verify your account",
			"click here", "limited time", "seed phrase", "private key",
			"password", "token",
		},
		SuspiciousUsernames: []string{
			`^[a-z]+\d{4,}$`,
			`^user_?\d+$`,
			`^[a-z]{3}\d{3}[a-z]{3}$`,
			`^bot|bot$`,
			`^test\d+$`,
			`^discord\d+$`,
		},
		PatternCatalogs: []PatternCatalog{
			{
				Name:     "hacking_attempt",
				Severity: "critical",
				Weight:   0.9,
				Patterns: []string{
					`(?:token|account)\s+(?:grabber|stealer|logger)`,
					`(?:ddos|dos)\s+(?:tool|attack|script)`,
					`(?:nuke|raid)\s+(?:bot|tool|script)`,
					`selfbot(?:ting)?`,
					`webhook\s+spam`,
					`mass\s+(?:dm|mention|ping)\s+(?:tool|bot)`,
				},
			},
			{
				Name:     "prompt_injection",
				Severity: "critical",
				Weight:   0.95,
				Patterns: []string{
					`ignore\s+(?:all\s+)?(?:previous|prior|above)\s+instructions`,
					`disregard\s+(?:your|the)\s+(?:rules|instructions|guidelines)`,
					`you\s+are\s+now\s+(?:dan|jailbroken|unfiltered)`,
					`system\s*prompt`,
					`pretend\s+(?:you\s+have|to\s+have)\s+no\s+(?:rules|restrictions)`,
				},
			},
			{
				Name:     "scam",
				Severity: "medium",
				Weight:   0.6,
				Patterns: []string{
					`free\s+(?:nitro|robux|vbucks|gift\s*card)`,
					`(?:claim|get)\s+your\s+(?:free|gift)`,
					`limited\s+time\s+offer`,
					`you\s+(?:have\s+)?won`,
					`double\s+your\s+(?:money|crypto|coins)`,
				},
			},
			{
				Name:     "personal_info_request",
				Severity: "high",
				Weight:   0.75,
				Patterns: []string{
					`(?:send|give|tell)\s+me\s+your\s+(?:password|token|address|phone)`,
					`what(?:'s|\s+is)\s+your\s+(?:password|home\s+address|credit\s+card)`,
					`share\s+your\s+(?:login|credentials|2fa)`,
				},
			},
			{
				Name:     "social_engineering",
				Severity: "high",
				Weight:   0.85,
				Patterns: []string{
					`(?:i\s+am|this\s+is)\s+(?:a\s+)?(?:discord|steam)\s+(?:staff|admin|support)`,
					`your\s+account\s+(?:will\s+be|has\s+been)\s+(?:banned|suspended|deleted)`,
					`verify\s+(?:your\s+)?(?:account|identity)\s+(?:now|immediately|here)`,
					`urgent(?:\s+action)?\s+required`,
				},
			},
			{
				Name:     "crypto_scam",
				Severity: "high",
				Weight:   0.8,
				Patterns: []string{
					`(?:guaranteed|passive)\s+(?:profit|income|returns)`,
					`invest\s+(?:now|today)\s+(?:and|to)\s+(?:earn|get)`,
					`(?:elon|musk)\s+(?:crypto|btc|bitcoin)\s+giveaway`,
					`send\s+(?:btc|eth|crypto)\s+(?:and|to)\s+(?:receive|get)\s+(?:double|back)`,
					`pump\s+(?:and|n)\s+dump`,
				},
			},
			{
				Name:     "fake_dapp",
				Severity: "critical",
				Weight:   0.9,
				Patterns: []string{
					`(?:connect|link|sync)\s+(?:your\s+)?wallet\s+(?:here|now|to\s+claim)`,
					`(?:validate|migrate|restore)\s+(?:your\s+)?wallet`,
					`(?:enter|confirm)\s+(?:your\s+)?(?:seed|recovery)\s+phrase`,
					`wallet\s*connect\s+(?:support|helpdesk)`,
				},
			},
		},
	}
}
