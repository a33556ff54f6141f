package privacy

import (
	"net/url"
	"strings"
)

// MaskPhoneNumber masks a phone number showing only the last 4 digits
// Example: "+1234567890" -> "+******7890"
func MaskPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		if len(phone) <= 5 {
			return "+" + strings.Repeat("*", len(phone)-1)
		}
		return "+" + maskString(phone[1:], 4)
	}
	return maskString(phone, 4)
}

// MaskEmail keeps the first character of the local part and the domain
// Example: "ada.lovelace@example.com" -> "a***********@example.com"
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return maskString(email, 0)
	}
	local, domain := email[:at], email[at:]
	return local[:1] + strings.Repeat("*", len(local)-1) + domain
}

// MaskURL keeps scheme and host and masks the path, which usually carries the profile handle
// Example: "https://www.linkedin.com/in/ada-lovelace" -> "https://www.linkedin.com/**/*********ace"
func MaskURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return maskString(raw, 3)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if i == len(segments)-1 {
			segments[i] = maskString(seg, 3)
		} else {
			segments[i] = strings.Repeat("*", len(seg))
		}
	}

	masked := u.Scheme + "://" + u.Host
	if path := strings.Join(segments, "/"); path != "" {
		masked += "/" + path
	}
	return masked
}

// MaskSessionID shows the last 4 characters of a session identifier
func MaskSessionID(id string) string {
	return maskString(id, 4)
}

// maskString masks a string showing only the last n characters
func maskString(s string, keepLast int) string {
	if s == "" {
		return ""
	}
	if len(s) <= keepLast {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-keepLast) + s[len(s)-keepLast:]
}

// MaskSensitiveFields applies appropriate masking to common logging fields
func MaskSensitiveFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	masked := make(map[string]any, len(fields))
	for k, v := range fields {
		s, isString := v.(string)
		if !isString {
			masked[k] = v
			continue
		}

		switch k {
		case "phone", "phone_number":
			masked[k] = MaskPhoneNumber(s)
		case "email", "email_address":
			masked[k] = MaskEmail(s)
		case "identity_key", "linkedin_url", "profile_url":
			masked[k] = MaskURL(s)
		case "session_id", "session":
			masked[k] = MaskSessionID(s)
		default:
			masked[k] = v
		}
	}
	return masked
}
