package validation

import (
	"strings"
	"testing"

	"talents/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMessageContent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
		wantErr bool
	}{
		{"Plain", "hello", 0, "hello", false},
		{"Trimmed", "  hi there \n", 0, "hi there", false},
		{"Empty", "", 0, "", true},
		{"Whitespace Only", " \t\n ", 0, "", true},
		{"Exactly Default Max", strings.Repeat("a", DefaultMaxMessageLength), 0, strings.Repeat("a", DefaultMaxMessageLength), false},
		{"Over Default Max", strings.Repeat("a", DefaultMaxMessageLength+1), 0, "", true},
		{"Custom Max", "abcdef", 5, "", true},
		{"Multibyte Counted As Characters", strings.Repeat("é", 5), 5, strings.Repeat("é", 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateMessageContent(tt.content, tt.maxLen)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", Preview("short"))

	long := strings.Repeat("x", PreviewLength+10)
	p := Preview(long)
	assert.True(t, strings.HasSuffix(p, "…"))
	assert.Equal(t, PreviewLength+1, len([]rune(p)))
}

func TestValidateContactRequest(t *testing.T) {
	t.Parallel()
	blank := "   "
	note := "  see attached reel  "
	long := strings.Repeat("m", maxContactMessageLength+1)

	tests := []struct {
		name    string
		in      ContactRequestInput
		wantErr bool
	}{
		{"Valid", ContactRequestInput{ProjectType: "feature_film", Purpose: "Lead role audition"}, false},
		{"Case Folded Type", ContactRequestInput{ProjectType: " Commercial ", Purpose: "Spot"}, false},
		{"Missing Type", ContactRequestInput{Purpose: "Audition"}, true},
		{"Unknown Type", ContactRequestInput{ProjectType: "podcast", Purpose: "Audition"}, true},
		{"Missing Purpose", ContactRequestInput{ProjectType: "series", Purpose: "  "}, true},
		{"Too Long Purpose", ContactRequestInput{ProjectType: "series", Purpose: strings.Repeat("p", maxPurposeLength+1)}, true},
		{"Blank Message", ContactRequestInput{ProjectType: "series", Purpose: "Role", Message: &blank}, false},
		{"Trimmed Message", ContactRequestInput{ProjectType: "series", Purpose: "Role", Message: &note}, false},
		{"Too Long Message", ContactRequestInput{ProjectType: "series", Purpose: "Role", Message: &long}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateContactRequest(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateContactRequest_Normalizes(t *testing.T) {
	t.Parallel()
	blank := " "
	note := "  see attached reel  "

	p, err := ValidateContactRequest(ContactRequestInput{ProjectType: " Theater", Purpose: " Chorus ", Message: &note})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectTheater, p.ProjectType)
	assert.Equal(t, "Chorus", p.Purpose)
	require.NotNil(t, p.Message)
	assert.Equal(t, "see attached reel", *p.Message)

	p, err = ValidateContactRequest(ContactRequestInput{ProjectType: "other", Purpose: "x", Message: &blank})
	require.NoError(t, err)
	assert.Nil(t, p.Message)
}

func TestValidateDeclineReason(t *testing.T) {
	t.Parallel()
	reason := " schedule conflict "
	got, err := ValidateDeclineReason(&reason)
	require.NoError(t, err)
	assert.Equal(t, "schedule conflict", *got)

	got, err = ValidateDeclineReason(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	tooLong := strings.Repeat("r", maxDeclineReasonLength+1)
	_, err = ValidateDeclineReason(&tooLong)
	assert.Error(t, err)
}
