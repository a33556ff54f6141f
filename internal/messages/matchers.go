package messages

import (
	"regexp"
	"strings"

	"recruitdesk/internal/models"
)

// header is what a matcher extracts from one message line.
// Empty sender or channel means the line did not say.
type header struct {
	sender   models.Sender
	channel  models.Channel
	followUp bool
	content  string
}

// matcher returns ok=false when it does not recognize the line
type matcher func(line string) (header, bool)

// matchers run in order; the first that recognizes a line wins
var matchers = []matcher{matchExact, matchPrefix, matchPlain}

var (
	exactPattern    = regexp.MustCompile(`(?is)^\s*(recruiter|candidate)\s*-\s*(linkedin|mail|whatsapp)\s*(-\s*follow\s*-?\s*up\s*)?:\s*(.*)$`)
	followUpPattern = regexp.MustCompile(`(?i)follow\s*-?\s*up`)
)

func parseLine(line string) header {
	for _, m := range matchers {
		if h, ok := m(line); ok {
			return h
		}
	}
	return header{content: line}
}

// matchExact recognizes "<Sender> - <Channel>[ - Follow Up] : <text>"
func matchExact(line string) (header, bool) {
	m := exactPattern.FindStringSubmatch(line)
	if m == nil {
		return header{}, false
	}
	sender, _ := models.ParseSender(m[1])
	channel, _ := models.ParseChannel(m[2])
	return header{
		sender:   sender,
		channel:  channel,
		followUp: m[3] != "",
		content:  m[4],
	}, true
}

// matchPrefix reads sender and channel tokens independently from the text
// before the first colon. A prefix without any recognized token is not a header.
func matchPrefix(line string) (header, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return header{}, false
	}
	prefix := line[:idx]

	h := header{
		sender:   senderToken(prefix),
		channel:  channelToken(prefix),
		followUp: followUpPattern.MatchString(prefix),
		content:  line[idx+1:],
	}
	if h.sender == "" && h.channel == "" && !h.followUp {
		return header{}, false
	}
	return h, true
}

// matchPlain treats the whole line as content
func matchPlain(line string) (header, bool) {
	return header{content: line}, true
}

// senderToken picks whichever sender word appears first
func senderToken(s string) models.Sender {
	lower := strings.ToLower(s)
	c := strings.Index(lower, "candidate")
	r := strings.Index(lower, "recruiter")
	switch {
	case c >= 0 && (r < 0 || c < r):
		return models.SenderCandidate
	case r >= 0:
		return models.SenderRecruiter
	}
	return ""
}

// channelToken checks mail, then whatsapp, then linkedin
func channelToken(s string) models.Channel {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "mail"):
		return models.ChannelMail
	case strings.Contains(lower, "whatsapp"), strings.Contains(lower, "wa"):
		return models.ChannelWhatsApp
	case strings.Contains(lower, "linkedin"):
		return models.ChannelLinkedIn
	}
	return ""
}

// inferChannel is the fallback when nothing named a channel
func inferChannel(content string) models.Channel {
	if ch := channelToken(content); ch != "" {
		return ch
	}
	return models.ChannelLinkedIn
}
