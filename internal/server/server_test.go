package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/supertonic-go/internal/server"
	"github.com/example/supertonic-go/internal/tts"
	"github.com/example/supertonic-go/internal/voice"
)

type stubSynthesizer struct {
	result tts.Result
	err    error
	delay  time.Duration
	gotReq tts.Request
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, req tts.Request) (tts.Result, error) {
	s.gotReq = req

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return tts.Result{}, ctx.Err()
		}
	}

	return s.result, s.err
}

func postTTS(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/tts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandleHealth(t *testing.T) {
	h := server.NewHandler(&stubSynthesizer{}, 1.05)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestHandleVoices(t *testing.T) {
	h := server.NewHandler(&stubSynthesizer{}, 1.05)

	req := httptest.NewRequest(http.MethodGet, "/voices", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var ids []voice.ID
	if err := json.NewDecoder(rec.Body).Decode(&ids); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []voice.ID{voice.F1, voice.F2, voice.M1, voice.M2}
	if len(ids) != len(want) {
		t.Fatalf("voices = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("voices[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestHandleTTS_Success(t *testing.T) {
	synth := &stubSynthesizer{
		result: tts.Result{
			WAVBuffer:       []byte("RIFF-fake-wav-bytes"),
			SampleRate:      24000,
			DurationSeconds: 1.234,
		},
	}
	h := server.NewHandler(synth, 1.05)

	rec := postTTS(t, h, `{"text":"Hello.","voiceStyle":"F1","totalStep":5,"speed":1.0}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q, want audio/wav", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	if d := rec.Header().Get("X-Audio-Duration-Seconds"); d != "1.234" {
		t.Errorf("X-Audio-Duration-Seconds = %q, want 1.234", d)
	}
	if sr := rec.Header().Get("X-Audio-Sample-Rate"); sr != "24000" {
		t.Errorf("X-Audio-Sample-Rate = %q, want 24000", sr)
	}
	if rec.Body.String() != "RIFF-fake-wav-bytes" {
		t.Errorf("body = %q, want WAV bytes passed through", rec.Body.String())
	}

	if synth.gotReq.Speed != 1.0 {
		t.Errorf("forwarded speed = %v, want 1.0", synth.gotReq.Speed)
	}
}

func TestHandleTTS_DefaultSpeedWhenOmitted(t *testing.T) {
	synth := &stubSynthesizer{result: tts.Result{SampleRate: 24000}}
	h := server.NewHandler(synth, 1.05)

	postTTS(t, h, `{"text":"Hello.","voiceStyle":"F1"}`)

	if synth.gotReq.Speed != 1.05 {
		t.Errorf("forwarded speed = %v, want server default 1.05", synth.gotReq.Speed)
	}
}

func TestHandleTTS_EmptyTextIs400(t *testing.T) {
	h := server.NewHandler(&stubSynthesizer{}, 1.05)

	rec := postTTS(t, h, `{"text":"   ","voiceStyle":"F1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleTTS_UnknownVoiceIs400(t *testing.T) {
	h := server.NewHandler(&stubSynthesizer{}, 1.05)

	rec := postTTS(t, h, `{"text":"Hi.","voiceStyle":"Q9"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleTTS_InvalidJSONIs400(t *testing.T) {
	h := server.NewHandler(&stubSynthesizer{}, 1.05)

	rec := postTTS(t, h, `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleTTS_OversizedTextIs413(t *testing.T) {
	h := server.NewHandler(&stubSynthesizer{}, 1.05, server.WithMaxTextBytes(10))

	bigText := strings.Repeat("x", 11)
	rec := postTTS(t, h, `{"text":"`+bigText+`","voiceStyle":"F1"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestHandleTTS_GenericErrorMapsTo500(t *testing.T) {
	synth := &stubSynthesizer{err: errors.New("wrapped")}
	h := server.NewHandler(synth, 1.05)

	rec := postTTS(t, h, `{"text":"Hi.","voiceStyle":"F1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 for a generic error", rec.Code)
	}
}

func TestHandleTTS_RequestTimeoutPropagates(t *testing.T) {
	synth := &stubSynthesizer{delay: 50 * time.Millisecond}
	h := server.NewHandler(synth, 1.05,
		server.WithRequestTimeout(5*time.Millisecond),
	)

	rec := postTTS(t, h, `{"text":"Hi.","voiceStyle":"F1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 on timeout", rec.Code)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"info", false},
		{"DEBUG", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"bogus", true},
	}

	for _, tt := range tests {
		_, err := server.ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
