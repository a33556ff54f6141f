package models

import (
	"strings"
	"time"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderRecruiter Sender = "Recruiter"
	SenderCandidate Sender = "Candidate"
)

// Channel is the medium a message was exchanged on
type Channel string

const (
	ChannelLinkedIn Channel = "linkedin"
	ChannelMail     Channel = "mail"
	ChannelWhatsApp Channel = "whatsapp"
)

// Channels lists every supported channel in prompt display order
var Channels = []Channel{ChannelMail, ChannelLinkedIn, ChannelWhatsApp}

// ParseChannel maps free-form channel names ("Email", "LinkedIn", "wa") onto a Channel.
// The second return value is false for empty or unknown input.
func ParseChannel(s string) (Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mail", "email", "e-mail":
		return ChannelMail, true
	case "linkedin":
		return ChannelLinkedIn, true
	case "whatsapp", "wa":
		return ChannelWhatsApp, true
	}
	return "", false
}

// ParseSender maps "recruiter"/"candidate" in any case onto a Sender
func ParseSender(s string) (Sender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recruiter":
		return SenderRecruiter, true
	case "candidate":
		return SenderCandidate, true
	}
	return "", false
}

// Message is one normalized communication in a candidate thread
type Message struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	Sender        Sender    `json:"sender"`
	Channel       Channel   `json:"channel"`
	FollowUp      bool      `json:"followUp"`
	FollowUpLabel string    `json:"followUpLabel,omitempty"`
	Read          bool      `json:"read"`
}
