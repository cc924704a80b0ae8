package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGCS answers every JSON API call with an empty object and records the paths.
type fakeGCS struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)

	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"bucket":"resumes","name":"resumes/u1/cv.pdf"}`)
}

func (f *fakeGCS) aclCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, p := range f.paths {
		if strings.Contains(p, "/acl") {
			n++
		}
	}
	return n
}

func TestGCSUploader(t *testing.T) {
	tests := []struct {
		name       string
		publicRead bool
		wantACL    int
	}{
		{"bucket level access", false, 0},
		{"object acl", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeGCS{}
			srv := httptest.NewServer(fake)
			t.Cleanup(srv.Close)
			t.Setenv("STORAGE_EMULATOR_HOST", srv.URL)

			u, err := NewGCSUploader(context.Background(), "resumes", tt.publicRead)
			require.NoError(t, err)
			t.Cleanup(func() { _ = u.Close() })

			url, err := u.Upload(context.Background(), "resumes/u1/cv.pdf", "application/pdf", strings.NewReader("%PDF"))
			require.NoError(t, err)
			assert.Equal(t, "https://storage.googleapis.com/resumes/resumes/u1/cv.pdf", url)
			assert.Equal(t, tt.wantACL, fake.aclCalls())
		})
	}
}
