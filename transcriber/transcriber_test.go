package transcriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBaseLang(t *testing.T) {
	cases := map[string]string{
		"id-ID": "id",
		"en-US": "en",
		"id":    "id",
		"":      "",
	}
	for in, want := range cases {
		if got := baseLang(in); got != want {
			t.Errorf("baseLang(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGroqTranscribe(t *testing.T) {
	var gotLang, gotModel, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		gotLang = r.FormValue("language")
		gotModel = r.FormValue("model")
		gotAuth = r.Header.Get("Authorization")
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			file.Close()
		}
		w.Write([]byte(`{"text":" halo dunia "}`))
	}))
	defer srv.Close()

	g := NewGroq("test-key")
	g.apiURL = srv.URL

	text, err := g.Transcribe(context.Background(), []byte("fLaC..."), "id-ID")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "halo dunia" {
		t.Errorf("text = %q, want trimmed %q", text, "halo dunia")
	}
	if gotLang != "id" {
		t.Errorf("language field = %q, want id", gotLang)
	}
	if gotModel != "whisper-large-v3-turbo" {
		t.Errorf("model field = %q", gotModel)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestGroqEmptyTextIsNoSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"   "}`))
	}))
	defer srv.Close()

	g := NewGroq("k")
	g.apiURL = srv.URL

	_, err := g.Transcribe(context.Background(), nil, "en-US")
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
}

func TestGroqServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGroq("k")
	g.apiURL = srv.URL

	_, err := g.Transcribe(context.Background(), nil, "en-US")
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if errors.Is(err, ErrNoSpeech) {
		t.Fatal("server error must not be reported as no-speech")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	if _, err := New(); err == nil {
		t.Fatal("expected error without GROQ_API_KEY")
	}
	t.Setenv("GROQ_API_KEY", "abc")
	tr, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Name() != "groq" {
		t.Errorf("Name = %q, want groq", tr.Name())
	}
}
