package fetch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"fedcite/internal/util"
)

const (
	RateLimitLogName = "429_headers.json"
	MissingLogName   = "missing_xml_files.txt"
)

// FailureLog appends download failures to the shared log files. All writes
// go through one mutex since every worker reports here.
type FailureLog struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func NewFailureLog(dir string) *FailureLog {
	return &FailureLog{dir: dir, now: time.Now}
}

type rateLimitEntry struct {
	Time           time.Time         `json:"time"`
	DocumentNumber string            `json:"document_number"`
	URL            string            `json:"url"`
	Headers        map[string]string `json:"headers"`
}

// RateLimited records the headers of a 429 response as one JSON line.
func (f *FailureLog) RateLimited(docID, url string, header http.Header) error {
	headers := make(map[string]string, len(header))
	for k := range header {
		headers[k] = header.Get(k)
	}
	b, err := json.Marshal(rateLimitEntry{Time: f.now().UTC(), DocumentNumber: docID, URL: url, Headers: headers})
	if err != nil {
		return fmt.Errorf("encode rate limit entry: %w", err)
	}
	return f.append(RateLimitLogName, append(b, '\n'))
}

// Missing records a document whose text is permanently unavailable as
// "<status> | <id> | <url>".
func (f *FailureLog) Missing(status int, docID, url string) error {
	return f.append(MissingLogName, []byte(fmt.Sprintf("%d | %s | %s\n", status, docID, url)))
}

func (f *FailureLog) append(name string, line []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return util.AppendFile(filepath.Join(f.dir, name), line)
}
