// Package capture records the JSON response bodies a resty client sees so
// they can later be fed through the payload batch parser. This is the
// network-interception half of extraction: anything resembling JSON is
// kept verbatim, classification happens downstream.
package capture

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
)

// Recorder accumulates raw JSON payloads in arrival order.
type Recorder struct {
	mu       sync.Mutex
	payloads []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Attach hooks the recorder into a resty client. Only responses with a
// JSON content type or a body that looks like JSON are kept.
func (r *Recorder) Attach(client *resty.Client) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		body := string(res.Body())
		if !looksLikeJSON(res.Header().Get("content-type"), body) {
			return nil
		}
		r.mu.Lock()
		r.payloads = append(r.payloads, body)
		r.mu.Unlock()
		return nil
	})
}

// Record appends one payload directly, for captures arriving outside a
// resty client (browser instrumentation dumps, replay files).
func (r *Recorder) Record(payload string) {
	r.mu.Lock()
	r.payloads = append(r.payloads, payload)
	r.mu.Unlock()
}

// Payloads returns the captured bodies in arrival order.
func (r *Recorder) Payloads() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.payloads))
	copy(out, r.payloads)
	return out
}

// Dump writes every payload to its own file under dir, named by position.
func (r *Recorder) Dump(dir string) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	for i, payload := range r.Payloads() {
		// zero-padded so lexical directory order matches arrival order
		name := filepath.Join(dir, fmt.Sprintf("%05d.json", i))
		if err := os.WriteFile(name, []byte(payload), 0600); err != nil {
			slog.Warn("failed to write captured payload", "file", name, "err", err)
			return err
		}
	}
	return nil
}

// LoadDir reads previously dumped payloads back, in file name order.
func LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var payloads []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, string(contents))
	}
	return payloads, nil
}

func looksLikeJSON(contentType, body string) bool {
	if strings.Contains(contentType, "application/json") {
		return true
	}
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
