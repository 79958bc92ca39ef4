package detector

import (
	"bytes"
	"fmt"
	"strings"

	"sentinel-bot/model"
)

type magicSignature struct {
	prefix []byte
	name   string
}

var magicSignatures = []magicSignature{
	{[]byte{0x4D, 0x5A}, "PE executable"},
	{[]byte{0x7F, 0x45, 0x4C, 0x46}, "ELF executable"},
	{[]byte{0xCA, 0xFE, 0xBA, 0xBE}, "Java class / Mach-O"},
	{[]byte{0x50, 0x4B, 0x03, 0x04}, "ZIP archive"},
	{[]byte("#!"), "script with shebang"},
	{[]byte{0xD0, 0xCF, 0x11, 0xE0}, "OLE compound document"},
}

// checkFile scores one attachment by extension and by the magic bytes of
// its leading content. An attachment whose content could not be fetched
// at all yields an unanalyzable finding rather than an error.
func checkFile(cat *Compiled, att model.Attachment) []model.Finding {
	var findings []model.Finding

	name := strings.ToLower(att.Filename)
	for _, ext := range cat.DangerousExtensions {
		if strings.HasSuffix(name, ext) {
			findings = append(findings, model.Finding{
				Type:     model.FindingDangerousFile,
				Severity: model.SeverityCritical,
				Weight:   0.8,
				Detail:   fmt.Sprintf("dangerous extension %s on %s", ext, att.Filename),
			})
			break
		}
	}

	if len(att.Head) == 0 {
		if att.Size > 0 {
			findings = append(findings, model.Finding{
				Type:     model.FindingUnanalyzable,
				Severity: model.SeverityLow,
				Weight:   0.1,
				Detail:   fmt.Sprintf("could not read content of %s", att.Filename),
			})
		}
		return findings
	}

	for _, sig := range magicSignatures {
		if bytes.HasPrefix(att.Head, sig.prefix) {
			findings = append(findings, model.Finding{
				Type:     model.FindingDangerousFile,
				Severity: model.SeverityCritical,
				Weight:   0.8,
				Detail:   fmt.Sprintf("%s signature in %s", sig.name, att.Filename),
			})
			break
		}
	}

	return findings
}
