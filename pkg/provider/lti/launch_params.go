// pkg/provider/lti/launch_params.go
package lti

import (
	"fmt"
	"net/url"
	"strings"
)

/*
Launch parameter whitelists and per-message-type validation.

LTI 1.0/1.1 defines a closed set of parameter names; consumers may add
custom_* and ext_* parameters freely. A parameter outside these sets is
rejected as malformed, as is a request missing the required set for its
declared message type.
*/

type paramSet map[string]struct{}

func newParamSet(names ...string) paramSet {
	s := make(paramSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s paramSet) union(others ...paramSet) paramSet {
	out := make(paramSet, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	for _, o := range others {
		for n := range o {
			out[n] = struct{}{}
		}
	}
	return out
}

func (s paramSet) minus(other paramSet) paramSet {
	out := make(paramSet, len(s))
	for n := range s {
		if _, drop := other[n]; !drop {
			out[n] = struct{}{}
		}
	}
	return out
}

var launchParamsRequired = newParamSet(
	"lti_message_type", "lti_version", "resource_link_id",
)

var launchParamsRecommended = newParamSet(
	"context_id", "context_label", "context_title", "context_type",
	"launch_presentation_css_url", "launch_presentation_document_target",
	"launch_presentation_height", "launch_presentation_locale",
	"launch_presentation_return_url", "launch_presentation_width",
	"lis_person_contact_email_primary", "lis_person_name_family",
	"lis_person_name_full", "lis_person_name_given",
	"resource_link_description", "resource_link_title",
	"roles", "role_scope_mentor",
	"tool_consumer_info_product_family_code", "tool_consumer_info_version",
	"tool_consumer_instance_contact_email", "tool_consumer_instance_description",
	"tool_consumer_instance_guid", "tool_consumer_instance_name",
	"tool_consumer_instance_url",
	"user_id", "user_image",
)

var launchParamsLIS = newParamSet(
	"lis_course_offering_sourcedid", "lis_course_section_sourcedid",
	"lis_outcome_service_url", "lis_person_sourcedid", "lis_result_sourcedid",
)

var launchParamsReturnURL = newParamSet(
	"lti_errorlog", "lti_errormsg", "lti_log", "lti_msg",
)

var launchParamsOAuth = newParamSet(
	"oauth_callback", "oauth_consumer_key", "oauth_nonce", "oauth_signature",
	"oauth_signature_method", "oauth_timestamp", "oauth_token", "oauth_version",
)

var launchParamsCanvas = newParamSet("selection_directive", "text")

var contentParamsRequest = newParamSet(
	"accept_copy_advice", "accept_media_types", "accept_multiple",
	"accept_presentation_document_targets", "accept_unsigned", "auto_create",
	"can_confirm", "content_item_return_url", "data", "title",
)

var contentParamsResponse = newParamSet(
	"content_items", "lti_errorlog", "lti_errormsg", "lti_log", "lti_msg",
)

var registrationParams = newParamSet("reg_key", "reg_password", "tc_profile_url")

// listParams are comma-separated multi-valued parameters.
var listParams = newParamSet(
	"accept_media_types", "accept_presentation_document_targets",
	"context_type", "role_scope_mentor", "roles",
)

var launchParams = launchParamsRequired.union(
	launchParamsRecommended, launchParamsLIS, launchParamsReturnURL,
	launchParamsOAuth, launchParamsCanvas, contentParamsRequest,
	contentParamsResponse, registrationParams,
)

var selectionParamsRequired = newParamSet(
	"lti_message_type", "lti_version",
	"accept_media_types", "accept_presentation_document_targets",
	"content_item_return_url",
)

// Parameters a ContentItemSelectionRequest must not carry.
var selectionParamsForbidden = newParamSet(
	"resource_link_id", "resource_link_title", "resource_link_description",
	"launch_presentation_return_url", "lis_result_sourcedid",
)

var selectionParams = launchParams.minus(selectionParamsForbidden)

// validParamName reports whether name is an acceptable parameter for the
// given whitelist. custom_* and ext_* names always pass.
func validParamName(allowed paramSet, name string) bool {
	if strings.HasPrefix(name, "custom_") || strings.HasPrefix(name, "ext_") {
		return true
	}
	_, ok := allowed[name]
	return ok
}

// ValidateLaunchParams checks the parameter mapping against the whitelist
// and required set for its declared lti_message_type. Every violation is
// reported wrapped in ErrMalformedParameters.
func ValidateLaunchParams(params url.Values) error {
	allowed, required := launchParams, launchParamsRequired
	if MessageType(params.Get("lti_message_type")) == MessageTypeContentItemSelectionRequest {
		allowed, required = selectionParams, selectionParamsRequired
	}
	for name := range params {
		if !validParamName(allowed, name) {
			return fmt.Errorf("%w: %q is not a valid launch param", ErrMalformedParameters, name)
		}
	}
	for name := range required {
		if params.Get(name) == "" {
			return fmt.Errorf("%w: missing param %q", ErrMalformedParameters, name)
		}
	}
	return nil
}

// splitList splits a comma-separated parameter value, trimming whitespace
// and dropping empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
