package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Subjects(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	tests := []struct {
		key   string
		label string
		want  string
	}{
		{ProfileApproved, "Host", "Congratulations! Your Host Profile Has Been Approved"},
		{ProfileRejected, "Vendor", "Vendor Profile Application Update Required"},
		{ProfilePending, "Host", "Host Profile Under Review"},
		{ProfileOnHold, "Vendor", "Vendor Profile Application On Hold"},
		{ProfileSubmitted, "Host", "Host Profile Submitted Successfully"},
		{AdminNewSubmission, "Vendor", "New Vendor Profile Submitted for Review"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			out, err := r.Render(tt.key, map[string]string{"label": tt.label, "variant": "host", "first_name": "Ana"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Subject)
			assert.Contains(t, out.BodyHTML, "<title>"+tt.want)
		})
	}
}

func TestRenderer_RejectedNotesFallback(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(ProfileRejected, map[string]string{"label": "Host", "first_name": "Ana"})
	require.NoError(t, err)
	assert.Contains(t, out.BodyHTML, "Please review your submitted information")

	out, err = r.Render(ProfileRejected, map[string]string{"label": "Host", "review_notes": "License is blurry"})
	require.NoError(t, err)
	assert.Contains(t, out.BodyHTML, "License is blurry")
}

func TestRenderer_EscapesHTML(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(ProfileOnHold, map[string]string{"label": "Host", "review_notes": "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, out.BodyHTML, "<script>")
}

func TestRenderer_MobileCode(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(MobileVerificationCode, map[string]string{"code": "123456"})
	require.NoError(t, err)
	assert.Equal(t, "Your verification code is: 123456. This code expires in 10 minutes.", out.Body)
	assert.Empty(t, out.Subject)
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.False(t, r.Has("nope"))
	_, err = r.Render("nope", nil)
	assert.Error(t, err)
}

func TestStatusTemplate(t *testing.T) {
	key, ok := StatusTemplate("on_hold")
	assert.True(t, ok)
	assert.Equal(t, ProfileOnHold, key)
	_, ok = StatusTemplate("draft")
	assert.False(t, ok)
}
