package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"talents/internal/models"
)

const (
	maxPurposeLength        = 500
	maxContactMessageLength = 2000
	maxDeclineReasonLength  = 500
)

// ContactRequestInput is the requester-supplied part of a contact request.
type ContactRequestInput struct {
	ProjectType string
	Purpose     string
	Message     *string
}

// ContactRequestPayload is the normalized, validated form of the input.
type ContactRequestPayload struct {
	ProjectType models.ProjectType
	Purpose     string
	Message     *string
}

// ValidateContactRequest checks that purpose and project type are present and
// normalizes the optional message.
func ValidateContactRequest(in ContactRequestInput) (ContactRequestPayload, error) {
	projectType := models.ProjectType(strings.ToLower(strings.TrimSpace(in.ProjectType)))
	if projectType == "" {
		return ContactRequestPayload{}, fmt.Errorf("project type is required")
	}
	if !projectType.Valid() {
		return ContactRequestPayload{}, fmt.Errorf("unknown project type %q", in.ProjectType)
	}

	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		return ContactRequestPayload{}, fmt.Errorf("purpose is required")
	}
	if utf8.RuneCountInString(purpose) > maxPurposeLength {
		return ContactRequestPayload{}, fmt.Errorf("purpose must not exceed %d characters", maxPurposeLength)
	}

	message, err := optionalText(in.Message, maxContactMessageLength, "message")
	if err != nil {
		return ContactRequestPayload{}, err
	}

	return ContactRequestPayload{
		ProjectType: projectType,
		Purpose:     purpose,
		Message:     message,
	}, nil
}

// ValidateDeclineReason normalizes an optional decline reason. Blank input
// becomes nil.
func ValidateDeclineReason(reason *string) (*string, error) {
	return optionalText(reason, maxDeclineReasonLength, "decline reason")
}

func optionalText(raw *string, maxLen int, field string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(v) > maxLen {
		return nil, fmt.Errorf("%s must not exceed %d characters", field, maxLen)
	}
	return &v, nil
}
