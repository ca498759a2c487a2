package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondGreeting(t *testing.T) {
	responder := New(DefaultReplies(), "en")

	reply := responder.Respond("Hello there", "", "")

	assert.Contains(t, reply, "Hello")
}

func TestRespondStatus(t *testing.T) {
	responder := New(DefaultReplies(), "en")

	reply := responder.Respond("How are you doing?", "", "")

	assert.Equal(t, DefaultReplies().Status, reply)
}

func TestRespondWeather(t *testing.T) {
	responder := New(DefaultReplies(), "en")

	reply := responder.Respond("tell me about the weather", "", "")

	assert.Equal(t, DefaultReplies().Weather, reply)
}

func TestRespondHelp(t *testing.T) {
	responder := New(DefaultReplies(), "en")

	reply := responder.Respond("i need help with my account", "", "")

	assert.Equal(t, DefaultReplies().Help, reply)
}

func TestRespondQuestion(t *testing.T) {
	responder := New(DefaultReplies(), "en")

	reply := responder.Respond("what is the meaning of life", "", "")

	assert.Contains(t, reply, "fallback mode")
}

func TestRespondGeneric(t *testing.T) {
	responder := New(DefaultReplies(), "en")

	reply := responder.Respond("asdf qwerty", "", "")

	assert.Equal(t, DefaultReplies().Generic, reply)
}

func TestRespondKnowledgeShortCircuits(t *testing.T) {
	responder := New(DefaultReplies(), "en")
	knowledge := "KNOWLEDGE [billing]: Refunds\nWithin 14 days.\n\nKNOWLEDGE [support]: Hours\n9-5 UTC."

	reply := responder.Respond("hello, what about refunds?", knowledge, "")

	assert.True(t, strings.HasPrefix(reply, "Based on what I know: "))
	assert.Contains(t, reply, "Within 14 days.")
	// Only the first entry is surfaced.
	assert.NotContains(t, reply, "9-5 UTC")
}

func TestRespondNonDefaultLanguageNote(t *testing.T) {
	responder := New(DefaultReplies(), "en")

	reply := responder.Respond("hello", "", "fr")

	assert.Contains(t, reply, "has not been translated")
}

func TestRespondDefaultLanguageNoNote(t *testing.T) {
	responder := New(DefaultReplies(), "en")

	reply := responder.Respond("hello", "", "en")

	assert.NotContains(t, reply, "has not been translated")
}

func TestRespondNeverEmpty(t *testing.T) {
	responder := New(DefaultReplies(), "")

	assert.NotEmpty(t, responder.Respond("", "", ""))
}
