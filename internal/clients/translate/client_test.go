package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "zh-CN", r.URL.Query().Get("tl"))
		assert.Equal(t, "Strong earnings growth", r.URL.Query().Get("q"))
		w.Write([]byte(`[[["盈利强劲增长","Strong earnings growth",null,null,10]],null,"en"]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	result := client.Translate(context.Background(), "Strong earnings growth")
	assert.Equal(t, "盈利强劲增长", result)
}

func TestTranslateJoinsSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[["第一句。","First sentence.",null,null,10],["第二句。","Second sentence.",null,null,10]],null,"en"]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	result := client.Translate(context.Background(), "First sentence. Second sentence.")
	assert.Equal(t, "第一句。第二句。", result)
}

func TestTranslateFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "empty payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("[]"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))

			result := client.Translate(context.Background(), "original text")
			assert.Equal(t, "original text", result)
		})
	}
}

func TestTranslateBlankInput(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"))

	assert.Equal(t, "", client.Translate(context.Background(), ""))
	assert.Equal(t, "   ", client.Translate(context.Background(), "   "))
}
