package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	var nilSession *Session
	assert.True(t, nilSession.Expired(now, 0))

	assert.False(t, (&Session{}).Expired(now, 0), "zero expiry never expires")
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour)}).Expired(now, time.Minute))
	assert.True(t, (&Session{ExpiresAt: now.Add(30 * time.Second)}).Expired(now, time.Minute))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now, 0))
}

func TestNote_ContentText(t *testing.T) {
	body := "body"
	assert.Equal(t, "body", Note{Content: &body}.ContentText())
	assert.Equal(t, "", Note{}.ContentText())
}

func TestStoredFile_DisplayName(t *testing.T) {
	tests := map[string]string{
		"1700000000000-cat.png":        "cat.png",
		"1700000000000-my-holiday.jpg": "my-holiday.jpg",
		"plain.txt":                    "plain.txt",
	}
	for name, want := range tests {
		assert.Equal(t, want, StoredFile{Name: name}.DisplayName(), name)
	}
}

func TestFunctionResult_Pretty(t *testing.T) {
	r := FunctionResult{Raw: json.RawMessage(`{"message":"hi","status":"ok"}`)}
	assert.Equal(t, "{\n  \"message\": \"hi\",\n  \"status\": \"ok\"\n}", r.Pretty())

	bad := FunctionResult{Raw: json.RawMessage(`oops`)}
	assert.Equal(t, "oops", bad.Pretty())
}

func TestMessage_DecodesRealtimeRecord(t *testing.T) {
	var m Message
	err := json.Unmarshal([]byte(`{"id":"m1","content":"hey","user_id":"u1","created_at":"2025-01-01T10:00:00.123456+00:00"}`), &m)
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "u1", m.UserID)
	assert.Equal(t, 2025, m.CreatedAt.Year())
}
