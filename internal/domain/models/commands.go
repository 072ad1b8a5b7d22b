package models

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
)

// VoiceAction enumerates the pantry actions a spoken command can map to.
type VoiceAction string

const (
	VoiceAdd     VoiceAction = "add"
	VoiceRemove  VoiceAction = "remove"
	VoiceUnknown VoiceAction = "unknown"
)

// VoiceCommand is a transcript reduced to a pantry action.
type VoiceCommand struct {
	Action     VoiceAction
	Items      []string
	Expiration *civil.Date
	Raw        string
}

var (
	addKeywords    = []string{"เพิ่ม", "ซื้อ", "เอา", "add", "bought", "buy", "put"}
	removeKeywords = []string{"เอาออก", "ลบ", "ทิ้ง", "remove", "delete", "throw", "used up"}

	fillerPattern    = regexp.MustCompile(`(ช่วย|หน่อย|ให้ฉัน|ให้ผม|please)`)
	separatorPattern = regexp.MustCompile(`\s*(?:,|และ|กับ|\band\b)\s*`)
)

// ParseVoiceCommand derives a VoiceCommand from free-form transcript text using
// keyword matching. Expiration phrases are resolved separately by the caller.
func ParseVoiceCommand(text string) VoiceCommand {
	normalized := strings.TrimSpace(strings.ToLower(text))
	cmd := VoiceCommand{Action: VoiceUnknown, Raw: text}
	if normalized == "" {
		return cmd
	}

	// Remove keywords are checked first: "เอาออก" contains the add keyword "เอา".
	var keyword string
	if k, ok := firstKeyword(normalized, removeKeywords); ok {
		cmd.Action, keyword = VoiceRemove, k
	} else if k, ok := firstKeyword(normalized, addKeywords); ok {
		cmd.Action, keyword = VoiceAdd, k
	} else {
		return cmd
	}

	body := normalized[strings.Index(normalized, keyword)+len(keyword):]
	body = fillerPattern.ReplaceAllString(body, " ")
	for _, part := range separatorPattern.Split(body, -1) {
		item := stripDatePhrase(strings.TrimSpace(part))
		if item != "" {
			cmd.Items = append(cmd.Items, item)
		}
	}

	return cmd
}

func firstKeyword(text string, keywords []string) (string, bool) {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return k, true
		}
	}
	return "", false
}

var datePhrasePattern = regexp.MustCompile(`(?:หมดอายุ|expires?|expiring|best before)\s*.*$|` +
	`พรุ่งนี้|มะรืน(?:นี้)?|อาทิตย์หน้า|สัปดาห์หน้า|สิ้นเดือน|อีก\s*\d+\s*(?:วัน|อาทิตย์|สัปดาห์|เดือน|ปี)|` +
	`\btomorrow\b|\bnext week\b|\bend of (?:the )?month\b|\bin \d+ (?:days?|weeks?|months?|years?)\b|\d{4}-\d{2}-\d{2}`)

func stripDatePhrase(item string) string {
	return strings.TrimSpace(datePhrasePattern.ReplaceAllString(item, ""))
}
