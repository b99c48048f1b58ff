package util

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmtrain_backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "tech@example.com", Role: model.Technician}
	user.ID = 42

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Technician, claims.Role)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWTRejectsExpired(t *testing.T) {
	user := &model.User{Role: model.Manager}
	token, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestValidateMimeType(t *testing.T) {
	pdf := []byte("%PDF-1.7\n%binary")
	mime, err := ValidateMimeType(bytes.NewReader(pdf), AllowedCertificateMimeTypes)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mime)

	_, err = ValidateMimeType(bytes.NewReader([]byte("plain text")), AllowedCertificateMimeTypes)
	assert.Error(t, err)
}

func TestHasVideoExtension(t *testing.T) {
	assert.True(t, HasVideoExtension("intro.MP4"))
	assert.False(t, HasVideoExtension("notes.pdf"))
}

func TestParseProbeOutput(t *testing.T) {
	out := `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1280,"height":720}],
		"format":{"duration":"61.5","size":"2048","format_name":"mov,mp4,m4a"}}`

	info, err := parseProbeOutput(out, 1)
	require.NoError(t, err)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, "mov", info.Format)
	assert.Equal(t, int64(2048), info.Size)
	assert.Equal(t, 2, info.DurationMinutes())
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("true", false))
	assert.False(t, ParseBool("0", true))
	assert.True(t, ParseBool("maybe", true))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("12")
	assert.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, raw := range []string{"x", "", "0", "-3", "99999999999"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}
