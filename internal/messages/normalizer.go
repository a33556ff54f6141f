// Package messages turns the raw messages value of a candidate into an ordered
// list of canonical messages.
package messages

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"recruitdesk/internal/models"
	"recruitdesk/internal/normalize"
)

// maxDepth bounds recursion through nested and JSON-encoded values
const maxDepth = 8

var breakTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// Source describes the candidate whose messages are being normalized
type Source struct {
	CandidateID   string
	LastContacted time.Time
	Now           func() time.Time
}

// hint carries a sender or channel imposed by the structure around a value
type hint struct {
	sender  models.Sender
	channel models.Channel
}

type normalizer struct {
	src Source
	out []models.Message
}

// Normalize converts any supported raw messages value into messages in input
// order. Unsupported or empty values yield an empty slice. It never fails.
func Normalize(raw any, src Source) []models.Message {
	if src.Now == nil {
		src.Now = time.Now
	}
	n := &normalizer{src: src, out: []models.Message{}}
	n.walk(raw, hint{}, 0)
	return n.out
}

// ForCandidate normalizes the raw messages carried by a canonical candidate
func ForCandidate(c *models.CanonicalCandidate, now func() time.Time) []models.Message {
	return Normalize(c.RawMessages, Source{
		CandidateID:   c.ID,
		LastContacted: c.LastContacted,
		Now:           now,
	})
}

func (n *normalizer) walk(v any, h hint, depth int) {
	if depth > maxDepth {
		return
	}

	kind, val := classify(v)
	switch kind {
	case shapeText:
		n.text(val.(string), h)
	case shapeList:
		for _, item := range val.([]any) {
			n.walk(item, h, depth+1)
		}
	case shapeSingle:
		n.object(val.(map[string]any), h)
	case shapeBySender:
		n.bySender(val.(map[string]any), depth)
	}
}

func (n *normalizer) text(s string, h hint) {
	n.emit(parseLine(cleanContent(s)), h, nil, nil)
}

// object handles a {content, timestamp?, sender?, channel?, read?} message.
// Explicit fields beat both the structural hint and any header in the content.
func (n *normalizer) object(obj map[string]any, h hint) {
	content, _ := field(obj, contentKeys)
	text, ok := content.(string)
	if !ok {
		return
	}
	parsed := parseLine(cleanContent(text))

	if v, ok := field(obj, senderKeys); ok {
		if s, ok := models.ParseSender(fmt.Sprint(v)); ok {
			h.sender = s
			parsed.sender = ""
		}
	}
	if v, ok := field(obj, channelKeys); ok {
		if ch, ok := models.ParseChannel(fmt.Sprint(v)); ok {
			h.channel = ch
			parsed.channel = ""
		}
	}
	if v, ok := field(obj, followUpKeys); ok {
		if b, isBool := v.(bool); isBool && b {
			parsed.followUp = true
		}
	}

	var ts any
	if v, ok := field(obj, timestampKeys); ok {
		ts = v
	}
	var read *bool
	if v, ok := field(obj, readKeys); ok {
		if b, isBool := v.(bool); isBool {
			read = &b
		}
	}

	n.emit(parsed, h, ts, read)
}

// bySender handles {Recruiter: Branch, Candidate: Branch}. A branch exposing
// channel sub-keys is split per channel; any other branch keeps only the sender.
func (n *normalizer) bySender(obj map[string]any, depth int) {
	for _, sender := range []models.Sender{models.SenderRecruiter, models.SenderCandidate} {
		branch, ok := field(obj, []string{string(sender)})
		if !ok {
			continue
		}

		channels, split := channelBranches(branch)
		if !split {
			n.walk(branch, hint{sender: sender}, depth+1)
			continue
		}
		for _, ch := range models.Channels {
			if sub, ok := channels[ch]; ok {
				n.walk(sub, hint{sender: sender, channel: ch}, depth+1)
			}
		}
	}
}

// channelBranches returns the channel sub-branches of a by-sender branch
func channelBranches(branch any) (map[models.Channel]any, bool) {
	obj, ok := branch.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, isMessage := field(obj, contentKeys); isMessage {
		return nil, false
	}

	out := make(map[models.Channel]any)
	for k, v := range obj {
		if ch, ok := models.ParseChannel(k); ok && v != nil {
			out[ch] = v
		}
	}
	return out, len(out) > 0
}

// emit resolves sender, channel, timestamp and read state and appends the message.
// Structural hints win over headers parsed from the content.
func (n *normalizer) emit(parsed header, h hint, ts any, read *bool) {
	content := normalize.Tidy(parsed.content)
	if content == "" {
		return
	}

	sender := models.SenderRecruiter
	switch {
	case h.sender != "":
		sender = h.sender
	case parsed.sender != "":
		sender = parsed.sender
	}

	var channel models.Channel
	switch {
	case h.channel != "":
		channel = h.channel
	case parsed.channel != "":
		channel = parsed.channel
	default:
		channel = inferChannel(content)
	}

	msg := models.Message{
		ID:        fmt.Sprintf("%s-%d", n.src.CandidateID, len(n.out)),
		Content:   content,
		Timestamp: n.timestamp(ts),
		Sender:    sender,
		Channel:   channel,
		FollowUp:  parsed.followUp,
		Read:      sender == models.SenderRecruiter,
	}
	if read != nil {
		msg.Read = *read
	}
	if msg.FollowUp {
		msg.FollowUpLabel = FollowUpLabel(channel)
	}

	n.out = append(n.out, msg)
}

// timestamp prefers the message's own date, then the candidate's last contact, then now
func (n *normalizer) timestamp(ts any) time.Time {
	if ts != nil {
		if t, ok := normalize.ParseDate(ts, n.src.Now); ok {
			return t
		}
	}
	if !n.src.LastContacted.IsZero() {
		return n.src.LastContacted
	}
	return n.src.Now()
}

// FollowUpLabel is the display annotation for follow-up messages
func FollowUpLabel(ch models.Channel) string {
	return string(ch) + " follow up"
}

// cleanContent turns escaped and markup line breaks into real ones and decodes entities
func cleanContent(s string) string {
	s = strings.NewReplacer(`\r\n`, "\n", `\n`, "\n", `\t`, "\t").Replace(s)
	s = breakTag.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(html.UnescapeString(s), "\u00a0", " ")
	return normalize.Tidy(s)
}
