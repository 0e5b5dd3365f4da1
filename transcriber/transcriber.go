// Package transcriber sends captured audio to a remote speech-to-text
// service and returns the recognized text.
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoSpeech reports that the service returned no recognizable text.
var ErrNoSpeech = errors.New("could not understand audio")

type Transcriber interface {
	Name() string
	// Transcribe sends a FLAC payload and returns the transcript. locale
	// is a BCP 47 tag such as "id-ID"; the base language is what goes on
	// the wire.
	Transcribe(ctx context.Context, flacData []byte, locale string) (string, error)
}

// New builds the default transcriber from the environment.
func New() (Transcriber, error) {
	key := os.Getenv("GROQ_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("GROQ_API_KEY not set")
	}
	return NewGroq(key), nil
}

// baseLang strips the region: "id-ID" becomes "id".
func baseLang(locale string) string {
	if i := strings.IndexByte(locale, '-'); i >= 0 {
		return locale[:i]
	}
	return locale
}
