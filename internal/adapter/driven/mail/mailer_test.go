package mail

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_MultipartAlternative(t *testing.T) {
	m := New("smtp.example.com", 465, "sender@example.com", "secret", "rcpt@example.com")

	raw, err := m.buildMessage("2 new free games", "plain digest", "<p>html digest</p>")
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "Promowatch <sender@example.com>", msg.Header.Get("From"))
	assert.Equal(t, "rcpt@example.com", msg.Header.Get("To"))
	assert.Equal(t, "2 new free games", msg.Header.Get("Subject"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/alternative", mediaType)
	require.NotEmpty(t, params["boundary"])

	mr := multipart.NewReader(msg.Body, params["boundary"])

	// Plain part first so text-only clients render the digest.
	first, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, first.Header.Get("Content-Type"), "text/plain")
	body, err := io.ReadAll(first)
	require.NoError(t, err)
	assert.Equal(t, "plain digest", string(body))

	second, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, second.Header.Get("Content-Type"), "text/html")
	body, err = io.ReadAll(second)
	require.NoError(t, err)
	assert.Equal(t, "<p>html digest</p>", string(body))

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestBuildMessage_NonASCIISubjectEncoded(t *testing.T) {
	m := New("smtp.example.com", 465, "sender@example.com", "secret", "rcpt@example.com")

	raw, err := m.buildMessage("Gratis Spiele für dich", "t", "h")
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	decoded, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Gratis Spiele für dich", decoded)
}
