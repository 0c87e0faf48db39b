// pkg/provider/lti/launch.go
package lti

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/edubridge/lti-provider/pkg/provider/consumer"
)

// LaunchRequest wraps the parameter mapping of a verified LTI launch and
// exposes typed accessors over it. Instances are only produced by
// Verifier.Verify; an instance in hand is a verified request.
type LaunchRequest struct {
	params   url.Values
	passport consumer.Passport
	consumer consumer.Consumer
	referer  string
}

var edxContextRe = regexp.MustCompile(`^course-v[0-9]:`)

// Param returns the value of a launch parameter, or "" when absent.
func (l *LaunchRequest) Param(name string) string {
	return l.params.Get(name)
}

// ParamOr returns the value of a launch parameter, or def when absent/empty.
func (l *LaunchRequest) ParamOr(name, def string) string {
	if v := l.params.Get(name); v != "" {
		return v
	}
	return def
}

// CustomParam returns the value of a custom_<name> parameter.
func (l *LaunchRequest) CustomParam(name string) string {
	return l.params.Get("custom_" + name)
}

// ListParam returns a list-valued parameter split into its entries. For
// parameters that are not comma-separated lists per the LTI spec, the raw
// value is returned as a single entry.
func (l *LaunchRequest) ListParam(name string) []string {
	raw := l.params.Get(name)
	if _, ok := listParams[name]; ok {
		return splitList(raw)
	}
	if raw == "" {
		return nil
	}
	return []string{raw}
}

// Params returns a copy of the raw parameter mapping.
func (l *LaunchRequest) Params() url.Values {
	out := make(url.Values, len(l.params))
	for k, vs := range l.params {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Consumer returns the registered consumer that initiated the launch.
func (l *LaunchRequest) Consumer() consumer.Consumer { return l.consumer }

// Passport returns the passport whose credentials signed the launch.
// Its shared secret is stripped.
func (l *LaunchRequest) Passport() consumer.Passport {
	p := l.passport
	p.SharedSecret = ""
	return p
}

// MessageType returns the lti_message_type. Unknown values come through
// unchanged; check MessageType.Known when it matters.
func (l *LaunchRequest) MessageType() MessageType {
	return MessageType(l.params.Get("lti_message_type"))
}

/* -------------------------------- Roles ----------------------------------- */

// Roles returns the deduplicated set of recognized roles in the launch.
func (l *LaunchRequest) Roles() RoleSet {
	return ParseRoles(l.params.Get("roles"))
}

// IsInstructor reports whether the launching user has an instructor-like role.
func (l *LaunchRequest) IsInstructor() bool {
	return l.Roles().HasAny(RoleInstructor, RoleTeacher, RoleStaff)
}

// IsLearner reports whether the launching user is a learner/student.
func (l *LaunchRequest) IsLearner() bool {
	return l.Roles().HasAny(RoleLearner, RoleStudent)
}

// IsAdministrator reports whether the launching user is an administrator.
func (l *LaunchRequest) IsAdministrator() bool {
	return l.Roles().Has(RoleAdministrator)
}

// CanEditContent reports whether the launching user may author content on
// the provider side (instructors, admins and content developers).
func (l *LaunchRequest) CanEditContent() bool {
	return l.Roles().HasAny(RoleInstructor, RoleTeacher, RoleStaff,
		RoleAdministrator, RoleContentDeveloper)
}

/* --------------------------- Consumer families ----------------------------- */

// IsMoodleFormat reports whether the launch comes from Moodle, which deviates
// from the spec in a few encodings and defaults.
func (l *LaunchRequest) IsMoodleFormat() bool {
	return strings.EqualFold(l.params.Get("tool_consumer_info_product_family_code"), "moodle")
}

// IsEdxFormat reports whether the launch comes from Open edX, recognized by
// its context_id shape.
func (l *LaunchRequest) IsEdxFormat() bool {
	return edxContextRe.MatchString(l.params.Get("context_id"))
}

// OriginURL rebuilds, best effort, the URL of the page the launch came from.
// For Moodle and Open edX the course page is derived from the registered
// consumer URL and the context id; otherwise the Referer header is used.
// Returns "" when nothing can be derived.
func (l *LaunchRequest) OriginURL() string {
	contextID := l.params.Get("context_id")
	base := strings.TrimSuffix(l.consumer.URL, "/")
	switch {
	case l.IsMoodleFormat() && base != "" && contextID != "":
		return base + "/course/view.php?id=" + url.QueryEscape(contextID)
	case l.IsEdxFormat() && base != "":
		return base + "/course/" + contextID
	}
	return l.referer
}

// CourseInfo is the course description carried by a launch, normalized
// across consumer families.
type CourseInfo struct {
	SchoolName string
	CourseName string
	CourseRun  string
}

// CourseInfo extracts course information from the launch. Open edX encodes
// school, course and run in the context id; other consumers are read from
// the standard instance/context parameters.
func (l *LaunchRequest) CourseInfo() CourseInfo {
	if l.IsEdxFormat() {
		// context_id looks like "course-v1:school+course+run"
		id := l.params.Get("context_id")
		if i := strings.IndexByte(id, ':'); i >= 0 {
			parts := strings.Split(id[i+1:], "+")
			info := CourseInfo{SchoolName: parts[0]}
			if len(parts) >= 2 {
				info.CourseName = parts[1]
			}
			if len(parts) >= 3 {
				info.CourseRun = parts[2]
			}
			return info
		}
	}
	return CourseInfo{
		SchoolName: l.params.Get("tool_consumer_instance_name"),
		CourseName: l.params.Get("context_title"),
	}
}

// ResourceLinkTitle returns resource_link_title, defaulting to the
// resource_link_id.
func (l *LaunchRequest) ResourceLinkTitle() string {
	return l.ParamOr("resource_link_title", l.params.Get("resource_link_id"))
}

// ContextTitle returns context_title, defaulting to the context_id.
func (l *LaunchRequest) ContextTitle() string {
	return l.ParamOr("context_title", l.params.Get("context_id"))
}

/* ----------------------- Content-Item selection ---------------------------- */

// ContentItemRequest carries the deep-linking fields of a
// ContentItemSelectionRequest message.
type ContentItemRequest struct {
	AcceptMediaTypes          []string
	AcceptPresentationTargets []string
	AcceptMultiple            bool
	AutoCreate                bool
	ReturnURL                 string
	Data                      string
	Title                     string
}

// ContentItem returns the Content-Item selection fields of the launch, or
// ok == false when the message is not a Content-Item variant.
func (l *LaunchRequest) ContentItem() (ContentItemRequest, bool) {
	if !l.MessageType().IsContentItem() {
		return ContentItemRequest{}, false
	}
	return ContentItemRequest{
		AcceptMediaTypes:          l.ListParam("accept_media_types"),
		AcceptPresentationTargets: l.ListParam("accept_presentation_document_targets"),
		AcceptMultiple:            boolParam(l.params.Get("accept_multiple")),
		AutoCreate:                boolParam(l.params.Get("auto_create")),
		ReturnURL:                 l.params.Get("content_item_return_url"),
		Data:                      l.params.Get("data"),
		Title:                     l.params.Get("title"),
	}, true
}

func boolParam(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}
