package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/foxseedlab/matome/internal/completion"
	"github.com/foxseedlab/matome/internal/transcript"
)

// Options selects the template wording. It is not modified after construction.
type Options struct {
	Language          string
	IncludeTimestamps bool
}

type Prompt struct {
	System string
	User   string
}

const (
	summaryTemplate = "I want you to act as a professional video content editor. Summarize the essence " +
		"of the video in %s. Summarize the subtitles of the video and return an unordered list of no more " +
		"than 5 items. Do not repeat sentences, and keep every sentence concise, clear and complete. Good luck!"

	timestampTemplate = "I want you to act as a professional video content editor. Summarize the essence " +
		"of the video in %s. Start with one short sentence giving the gist of the video. Then summarize the " +
		"subtitles, prefixing each sentence with the start timestamp it refers to (like 10:24); each sentence " +
		"needs only one start time. Return an unordered list of no more than 5 items, and keep every sentence " +
		"concise, clear and complete. Good luck!"

	userTemplate = "Title: \"%s\"\nTranscript: \"%s\""
)

// languageNames maps the display names offered to users to the wording the model follows best.
var languageNames = map[string]string{
	"English":    "UK English",
	"中文":         "Simplified Chinese",
	"繁體中文":       "Traditional Chinese",
	"日本語":        "Japanese",
	"Italiano":   "Italian",
	"Deutsch":    "German",
	"Español":    "Spanish",
	"Français":   "French",
	"Nederlands": "Dutch",
	"한국어":        "Korean",
	"ភាសាខ្មែរ":  "Khmer",
	"हिंदी":      "Hindi",
}

var newlines = regexp.MustCompile(`[\r\n]+`)

// Builder assembles prompts with a fallback language for requests that do not name one.
type Builder struct {
	defaultLanguage string
}

func NewBuilder(defaultLanguage string) *Builder {
	return &Builder{defaultLanguage: defaultLanguage}
}

func (b *Builder) Build(title string, fragments []transcript.Fragment, opts Options) Prompt {
	language := opts.Language
	if strings.TrimSpace(language) == "" {
		language = b.defaultLanguage
	}
	return Build(title, fragments, Options{Language: language, IncludeTimestamps: opts.IncludeTimestamps})
}

// Build renders the system instructions and the user message for one video.
func Build(title string, fragments []transcript.Fragment, opts Options) Prompt {
	template := summaryTemplate
	if opts.IncludeTimestamps {
		template = timestampTemplate
	}
	return Prompt{
		System: fmt.Sprintf(template, ResolveLanguage(opts.Language)),
		User:   fmt.Sprintf(userTemplate, collapse(title), collapse(transcript.Join(transcript.Sort(fragments)))),
	}
}

func ResolveLanguage(language string) string {
	if name, ok := languageNames[language]; ok {
		return name
	}
	return language
}

func (p Prompt) Messages() []completion.Message {
	return []completion.Message{
		{Role: completion.RoleSystem, Content: p.System},
		{Role: completion.RoleUser, Content: p.User},
	}
}

func collapse(s string) string {
	return strings.TrimSpace(newlines.ReplaceAllString(s, " "))
}
