// pkg/provider/lti/message.go
package lti

// MessageType is the lti_message_type of a launch. Consumers are not required
// to restrict this field, so unknown values are carried through as opaque
// strings instead of failing verification.
type MessageType string

const (
	MessageTypeBasicLaunch                 MessageType = "basic-lti-launch-request"
	MessageTypeContentItemSelectionRequest MessageType = "ContentItemSelectionRequest"
	MessageTypeContentItemSelection        MessageType = "ContentItemSelection"
)

// Known reports whether the message type is one of the enumerated LTI 1.x
// message types.
func (m MessageType) Known() bool {
	switch m {
	case MessageTypeBasicLaunch, MessageTypeContentItemSelectionRequest, MessageTypeContentItemSelection:
		return true
	}
	return false
}

// IsContentItem reports whether the message belongs to the Content-Item
// (deep linking) flow.
func (m MessageType) IsContentItem() bool {
	return m == MessageTypeContentItemSelectionRequest || m == MessageTypeContentItemSelection
}
