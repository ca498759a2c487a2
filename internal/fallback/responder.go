package fallback

import "strings"

// ReplyTable holds the canned replies, one per rule. Loaded as data so
// the wording can be tuned without touching the rule logic.
type ReplyTable struct {
	KnowledgePrefix  string
	Greeting         string
	Status           string
	Weather          string
	Help             string
	Question         string
	Generic          string
	UntranslatedNote string
}

// DefaultReplies returns the stock reply table.
func DefaultReplies() ReplyTable {
	return ReplyTable{
		KnowledgePrefix:  "Based on what I know: ",
		Greeting:         "Hello! How can I assist you today?",
		Status:           "I'm doing well and ready to help. What can I do for you?",
		Weather:          "I can talk about the weather if you tell me which location you're interested in.",
		Help:             "I can answer questions, look things up in my knowledge base, and chat with you. What do you need?",
		Question:         "I'm currently running in fallback mode and can't look that up. Please try again later.",
		Generic:          "I'm sorry, I couldn't process that right now. Could you rephrase or try again later?",
		UntranslatedNote: " (Note: this is an automatic fallback reply and has not been translated.)",
	}
}

var greetingTokens = []string{"hello", "hi", "hey"}
var statusTokens = []string{"how are you", "how do you feel"}
var helpTokens = []string{"help", "can you"}
var questionTokens = []string{"what", "who", "when", "where", "why", "how"}

// Responder generates a rule-based reply when the completion provider
// is unavailable. It never fails and always returns non-empty text.
type Responder struct {
	replies         ReplyTable
	defaultLanguage string
}

// New creates a responder. An empty defaultLanguage means "en".
func New(replies ReplyTable, defaultLanguage string) *Responder {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &Responder{replies: replies, defaultLanguage: defaultLanguage}
}

// Respond picks a reply for the user's message. The first matching rule
// wins; a knowledge blob short-circuits everything else. When language
// is not the default, an untranslated-fallback note is appended.
func (r *Responder) Respond(message, knowledge, language string) string {
	reply := r.pick(strings.ToLower(message), knowledge)
	if language != "" && language != r.defaultLanguage {
		reply += r.replies.UntranslatedNote
	}
	return reply
}

func (r *Responder) pick(lower, knowledge string) string {
	if knowledge != "" {
		return r.replies.KnowledgePrefix + firstParagraph(knowledge)
	}
	if containsAny(lower, greetingTokens) {
		return r.replies.Greeting
	}
	if containsAny(lower, statusTokens) {
		return r.replies.Status
	}
	if strings.Contains(lower, "weather") {
		return r.replies.Weather
	}
	if containsAny(lower, helpTokens) {
		return r.replies.Help
	}
	if containsAny(lower, questionTokens) {
		return r.replies.Question
	}
	return r.replies.Generic
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// firstParagraph returns the text up to the first blank-line separator.
func firstParagraph(text string) string {
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		return text[:idx]
	}
	return text
}
