// Package restyutil writes every http exchange of a resty client to an Output, it is meant
// for inspecting what a scraper actually sent and received.
package restyutil

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

const redacted = "<redacted>"

// Output receives one formatted exchange per id.
type Output interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears dir and writes every exchange into it as a separate file.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write exchange file", "id", id, "err", err)
	}
}

// MemoryOutput keeps every exchange in memory.
type MemoryOutput struct {
	lock      sync.Mutex
	exchanges map[string]string
}

func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{exchanges: map[string]string{}}
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.exchanges[id] = contents
}

// Exchanges returns a copy of everything written so far keyed by id.
func (o *MemoryOutput) Exchanges() map[string]string {
	o.lock.Lock()
	defer o.lock.Unlock()
	out := make(map[string]string, len(o.exchanges))
	for k, v := range o.exchanges {
		out[k] = v
	}
	return out
}

// Dumper numbers exchanges across every client it instruments, so a fresh client per
// session does not overwrite the files of the previous one.
type Dumper struct {
	output    Output
	redact    []string
	idcounter atomic.Uint64
}

// NewDumper creates a Dumper, the values of the form fields named in redactFields are
// replaced before anything is written.
func NewDumper(output Output, redactFields ...string) *Dumper {
	return &Dumper{output: output, redact: redactFields}
}

// Instrument registers the dump hook on client, a nil Dumper is a no-op.
func (d *Dumper) Instrument(client *resty.Client) {
	if d == nil || d.output == nil {
		return
	}
	client.OnAfterResponse(d.onAfterResponse)
}

func (d *Dumper) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	id := d.idcounter.Add(1)
	d.output.Write(
		fmt.Sprintf("%03d-%s", id, strings.ToLower(res.Request.Method)),
		d.formatExchange(res),
	)
	return nil
}

func formatHeaders(headers http.Header) string {
	var out strings.Builder
	for _, k := range slices.Sorted(maps.Keys(headers)) {
		for _, v := range headers[k] {
			fmt.Fprintf(&out, "%s: %s\n", k, v)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func (d *Dumper) formatRequestBody(req *resty.Request) string {
	if len(req.FormData) > 0 {
		form := url.Values{}
		for k, vals := range req.FormData {
			if slices.Contains(d.redact, k) {
				form[k] = []string{redacted}
				continue
			}
			form[k] = vals
		}
		return form.Encode()
	}
	switch body := req.Body.(type) {
	case nil:
		return ""
	case string:
		return body
	case []byte:
		return string(body)
	default:
		return fmt.Sprintf("<%T>", body)
	}
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response url
// 7: response headers in ("Key: Value" format)
// 8: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s %s

%s

%s`

func (d *Dumper) formatExchange(res *resty.Response) string {
	var requestHeaders http.Header
	if res.Request.RawRequest != nil {
		requestHeaders = res.Request.RawRequest.Header
	}

	responseUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		responseUrl = res.RawResponse.Request.URL.String()
	}

	return fmt.Sprintf(
		exchangeTemplate,

		res.Request.Method, res.Request.URL,
		formatHeaders(requestHeaders),
		d.formatRequestBody(res.Request),

		strconv.Itoa(res.StatusCode()), responseUrl,
		formatHeaders(res.Header()),
		string(res.Body()),
	)
}
