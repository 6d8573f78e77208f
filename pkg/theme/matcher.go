// Package theme maps free text to a small vocabulary of canonical issue themes.
// The keyword ruleset here is the only one, the aggregator, bucket fallback and
// oracle label canonicalizer all go through Classify.
package theme

import (
	"regexp"
	"strings"
)

// Unclassified is the sentinel for text no rule matches
const Unclassified = "unclassified"

// canonical themes
const (
	PasswordReset    = "Password Reset Problems"
	Authentication   = "Authentication / Login Issues"
	SupportDelay     = "Support Response Delays"
	EmailDelivery    = "Email Delivery Issues"
	APITimeout       = "API Timeouts / Performance"
	LinkValidation   = "Broken Links / Validation Errors"
	TicketStatus     = "Ticket Status Visibility"
	WorkflowFriction = "Workflow Friction"
	Documentation    = "Documentation Gaps"
	Notifications    = "Notifications / Alerts"
)

type rule struct {
	theme string
	re    *regexp.Regexp
}

// rules are checked in order, first hit wins. Password reset sits ahead of the
// generic auth and link rules so "reset link" and "reset my login" stay specific.
var rules = []rule{
	newRule(PasswordReset, "password reset", "reset password", "reset my password", "forgot password",
		"forgot my password", "reset link", "reset email"),
	newRule(Authentication, "login", "log in", "logging in", "logged out", "sign in", "signin", "sign-in",
		"authentication", "authenticate", "2fa", "mfa", "sso", "locked out", "session expired", "auth"),
	newRule(SupportDelay, "support", "no reply", "no response", "response time", "slow to respond",
		"waiting for a response", "still waiting", "took days", "nobody answered"),
	newRule(EmailDelivery, "email", "emails", "e-mail", "inbox", "spam folder", "verification mail",
		"never received"),
	newRule(APITimeout, "api", "timeout", "timeouts", "timed out", "time out", "latency", "slow", "504",
		"gateway", "rate limit"),
	newRule(LinkValidation, "link", "links", "broken link", "url", "validation", "invalid", "404",
		"dead link"),
	newRule(TicketStatus, "ticket status", "status of my ticket", "ticket", "tickets", "status update"),
	newRule(WorkflowFriction, "workflow", "too many steps", "too many clicks", "confusing", "clunky",
		"cumbersome", "hard to use", "hard to find", "navigation", "ux"),
	newRule(Documentation, "docs", "doc", "documentation", "guide", "guides", "tutorial", "examples",
		"outdated", "readme"),
	newRule(Notifications, "notification", "notifications", "alert", "alerts", "reminder", "reminders"),
}

func newRule(theme string, keywords ...string) rule {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	return rule{theme: theme, re: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

// Classify returns the canonical theme of a comment, or Unclassified
func Classify(comment string) string {
	text := strings.ToLower(comment)
	if strings.TrimSpace(text) == "" {
		return Unclassified
	}
	for _, r := range rules {
		if r.re.MatchString(text) {
			return r.theme
		}
	}
	return Unclassified
}

// Vocabulary lists canonical themes in rule order
func Vocabulary() []string {
	res := make([]string, 0, len(rules))
	for _, r := range rules {
		res = append(res, r.theme)
	}
	return res
}

// IsCanonical reports whether label is one of the canonical themes
func IsCanonical(label string) bool {
	for _, r := range rules {
		if r.theme == label {
			return true
		}
	}
	return false
}
