// Package normalize resolves alias-heavy upstream records into canonical shapes.
package normalize

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"recruitdesk/internal/models"
)

// Candidate field aliases in probe order
var (
	idAliases            = []string{"id", "Id", "ID", "_id", "candidate_id", "candidateId", "CandidateId", "record_id", "recordId"}
	nameAliases          = []string{"name", "Name", "full_name", "fullName", "FullName", "candidate_name", "candidateName", "CandidateName"}
	firstNameAliases     = []string{"first_name", "firstName", "FirstName"}
	lastNameAliases      = []string{"last_name", "lastName", "LastName"}
	emailAliases         = []string{"email", "Email", "email_address", "emailAddress", "EmailAddress"}
	phoneAliases         = []string{"phone", "Phone", "phone_number", "phoneNumber", "PhoneNumber", "mobile", "Mobile"}
	identityKeyAliases   = []string{"linkedin_url", "linkedinUrl", "LinkedinUrl", "LinkedInUrl", "linkedin_profile", "linkedinProfile", "linkedin", "LinkedIn", "profile_url", "profileUrl"}
	titleAliases         = []string{"current_title", "currentTitle", "CurrentTitle", "title", "Title", "job_title", "jobTitle", "headline", "Headline"}
	employerAliases      = []string{"current_employer", "currentEmployer", "CurrentEmployer", "current_company", "currentCompany", "CurrentCompany", "company", "Company", "employer"}
	locationAliases      = []string{"location", "Location", "city", "City"}
	jobIDAliases         = []string{"job_id", "jobId", "JobId", "JobID", "job"}
	statusAliases        = []string{"status", "Status", "stage", "Stage"}
	scoreAliases         = []string{"score", "Score", "match_score", "matchScore", "MatchScore", "fit_score", "fitScore"}
	breakdownAliases     = []string{"score_breakdown", "scoreBreakdown", "ScoreBreakdown", "score_details", "scoreDetails"}
	summaryAliases       = []string{"summary", "Summary", "ai_summary", "aiSummary", "AISummary", "profile_summary", "profileSummary"}
	notesAliases         = []string{"notes", "Notes", "recruiter_notes", "recruiterNotes", "comments", "Comments"}
	shortlistedAliases   = []string{"shortlisted", "Shortlisted", "is_shortlisted", "isShortlisted"}
	lastContactedAliases = []string{"last_contacted", "lastContacted", "LastContacted", "last_contacted_date", "lastContactedDate", "LastContactedDate", "last_contact", "lastContact"}
	createdAliases       = []string{"created_at", "createdAt", "CreatedAt", "created", "Created", "created_time", "createdTime", "CreatedTime"}
	preferredAliases     = []string{"preferred_channel", "preferredChannel", "PreferredChannel", "channel_preference", "channelPreference", "contact_channel"}
	messagesAliases      = []string{"messages", "Messages", "conversation", "Conversation", "communications", "Communications", "message_history", "messageHistory"}

	draftAliases = map[models.Channel][]string{
		models.ChannelMail:     {"crafted_email", "craftedEmail", "CraftedEmail", "crafted_mail", "craftedMail", "email_draft", "emailDraft"},
		models.ChannelLinkedIn: {"crafted_linkedin", "craftedLinkedin", "CraftedLinkedin", "CraftedLinkedIn", "linkedin_draft", "linkedinDraft"},
		models.ChannelWhatsApp: {"crafted_whatsapp", "craftedWhatsapp", "CraftedWhatsapp", "CraftedWhatsApp", "whatsapp_draft", "whatsappDraft"},
	}
)

// Job field aliases in probe order
var (
	jobTitleAliases       = []string{"title", "Title", "job_title", "jobTitle", "JobTitle", "position", "Position", "role"}
	jobCompanyAliases     = []string{"company", "Company", "company_name", "companyName", "CompanyName", "client", "Client"}
	jobDescriptionAliases = []string{"description", "Description", "job_description", "jobDescription", "JobDescription", "details"}
)

// Normalizer converts raw records into canonical records. The clock supplies the
// substitute for unparseable dates, so a fixed clock makes output reproducible.
type Normalizer struct {
	now func() time.Time
}

func New(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Now exposes the normalizer's clock to the later pipeline stages
func (n *Normalizer) Now() time.Time {
	return n.now()
}

// Candidate resolves every candidate field, defaulting absent ones.
// It never mutates r.
func (n *Normalizer) Candidate(r models.RawRecord) models.CanonicalCandidate {
	c := models.CanonicalCandidate{
		ID:              stringField(r, idAliases),
		Name:            stringField(r, nameAliases),
		Email:           stringField(r, emailAliases),
		Phone:           stringField(r, phoneAliases),
		IdentityKey:     stringField(r, identityKeyAliases),
		CurrentTitle:    stringField(r, titleAliases),
		CurrentEmployer: stringField(r, employerAliases),
		Location:        stringField(r, locationAliases),
		JobID:           stringField(r, jobIDAliases),
		Status:          stringField(r, statusAliases),
		Summary:         HTMLToText(stringField(r, summaryAliases)),
		Notes:           HTMLToText(stringField(r, notesAliases)),
	}

	if c.Name == "" {
		c.Name = strings.TrimSpace(stringField(r, firstNameAliases) + " " + stringField(r, lastNameAliases))
	}
	if v, ok := lookup(r, scoreAliases); ok {
		c.Score = asFloat(v)
	}
	if v, ok := lookup(r, shortlistedAliases); ok {
		c.Shortlisted = asBool(v)
	}
	if v, ok := lookup(r, breakdownAliases); ok {
		c.ScoreBreakdown = ScoreBreakdown(v)
	} else {
		c.ScoreBreakdown = []string{}
	}
	if v, ok := lookup(r, lastContactedAliases); ok {
		c.LastContacted, _ = ParseDate(v, n.now)
	}
	if v, ok := lookup(r, createdAliases); ok {
		c.CreatedAt, _ = ParseDate(v, n.now)
	}
	if ch, ok := models.ParseChannel(stringField(r, preferredAliases)); ok {
		c.PreferredChannel = ch
	}
	if v, ok := lookup(r, messagesAliases); ok {
		c.RawMessages = v
	}

	for _, ch := range models.Channels {
		text := HTMLToText(stringField(r, draftAliases[ch]))
		if text == "" {
			continue
		}
		if c.Drafts == nil {
			c.Drafts = make(map[models.Channel]string, len(models.Channels))
		}
		c.Drafts[ch] = text
	}

	return c
}

// Job resolves a job record
func (n *Normalizer) Job(r models.RawRecord) models.Job {
	j := models.Job{
		ID:          stringField(r, idAliases),
		Title:       stringField(r, jobTitleAliases),
		Company:     stringField(r, jobCompanyAliases),
		Location:    stringField(r, locationAliases),
		Status:      stringField(r, statusAliases),
		Description: HTMLToText(stringField(r, jobDescriptionAliases)),
	}
	if v, ok := lookup(r, createdAliases); ok {
		j.CreatedAt, _ = ParseDate(v, n.now)
	}
	return j
}

// lookup returns the first present alias. nil values and blank strings count as
// absent. When no alias matches exactly, keys are compared with case, '_' and
// '-' ignored against the first alias.
func lookup(r models.RawRecord, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := r[key]; ok && present(v) {
			return v, true
		}
	}

	want := foldKey(aliases[0])
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if foldKey(k) == want && present(r[k]) {
			return r[k], true
		}
	}
	return nil, false
}

func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	}
	return true
}

func foldKey(k string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(k))
}

func stringField(r models.RawRecord, aliases []string) string {
	v, ok := lookup(r, aliases)
	if !ok {
		return ""
	}
	return asString(v)
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any:
		// linked records arrive as {"id": ..., "value"/"name": ...}
		for _, k := range []string{"value", "name", "title", "id"} {
			if inner, ok := val[k]; ok {
				return asString(inner)
			}
		}
	}
	return ""
}

func asFloat(v any) float64 {
	switch val := v.(type) {
	case json.Number:
		f, _ := val.Float64()
		return f
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64)
		return f
	}
	return 0
}

func asBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1", "x":
			return true
		}
	case json.Number, float64, int, int64:
		return asFloat(val) != 0
	}
	return false
}
