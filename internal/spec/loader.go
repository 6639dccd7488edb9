package spec

import (
    "context"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    "gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
    InputError      ErrorCode = "InputError"
    NetworkError    ErrorCode = "NetworkError"
    ParseError      ErrorCode = "ParseError"
    ValidationError ErrorCode = "ValidationError"
)

// SpecError is a structured error with optional location and field path.
type SpecError struct {
    Code     ErrorCode
    Message  string
    Location string // file path or URL
    Path     string // e.g. "classes[0].routes[2].method"
    Cause    error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
    // HTTPTimeout bounds each HTTP request.
    HTTPTimeout time.Duration
    // MaxRetries for transient HTTP failures (>=500, 429, or network errors).
    MaxRetries int
    // BackoffBase is the base delay for exponential backoff.
    BackoffBase time.Duration
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
    return Settings{
        HTTPTimeout: 10 * time.Second,
        MaxRetries:  3,
        BackoffBase: 200 * time.Millisecond,
    }
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option             { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option  { return func(s *Settings) { s.BackoffBase = d } }

// Load reads and validates a descriptor catalog. input may be a YAML or JSON
// file, a directory of such files (merged in lexical order), or an http/https
// URL.
func Load(ctx context.Context, input string, opts ...Option) (*Catalog, error) {
    if strings.TrimSpace(input) == "" {
        return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
    }

    settings := DefaultSettings()
    for _, opt := range opts {
        opt(&settings)
    }

    u, uerr := url.Parse(input)
    isURL := uerr == nil && u.Scheme != "" && u.Host != ""

    if isURL {
        scheme := strings.ToLower(u.Scheme)
        if scheme != "http" && scheme != "https" {
            return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
        }
        raw, err := fetchWithRetry(ctx, input, settings)
        if err != nil {
            return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
        }
        cat, err := Parse(raw, input)
        if err != nil {
            return nil, err
        }
        if err := Validate(cat, input); err != nil {
            return nil, err
        }
        return cat, nil
    }

    abs, err := filepath.Abs(input)
    if err != nil {
        return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
    }
    st, err := os.Stat(abs)
    if err != nil {
        return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("stat %s: %v", abs, err), Location: abs, Cause: err}
    }

    files := []string{abs}
    if st.IsDir() {
        files, err = descriptorFiles(abs)
        if err != nil {
            return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read dir %s: %v", abs, err), Location: abs, Cause: err}
        }
        if len(files) == 0 {
            return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: no .yaml, .yml or .json files in %s", abs), Location: abs}
        }
    }

    merged := &Catalog{}
    for _, f := range files {
        if err := ctx.Err(); err != nil {
            return nil, err
        }
        raw, rerr := os.ReadFile(f)
        if rerr != nil {
            return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", f, rerr), Location: f, Cause: rerr}
        }
        cat, perr := Parse(raw, f)
        if perr != nil {
            return nil, perr
        }
        merge(merged, cat)
    }
    if err := Validate(merged, abs); err != nil {
        return nil, err
    }
    return merged, nil
}

// Parse decodes a catalog without validating it. JSON is accepted as YAML.
func Parse(data []byte, location string) (*Catalog, error) {
    var cat Catalog
    if err := yaml.Unmarshal(data, &cat); err != nil {
        return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
    }
    return &cat, nil
}

// merge folds src into dst. Header fields keep the first non-empty value.
func merge(dst, src *Catalog) {
    if dst.Title == "" {
        dst.Title = src.Title
    }
    if dst.APIVersion == "" {
        dst.APIVersion = src.APIVersion
    }
    if dst.BasePath == "" {
        dst.BasePath = src.BasePath
    }
    dst.Classes = append(dst.Classes, src.Classes...)
    dst.Models = append(dst.Models, src.Models...)
}

func descriptorFiles(dir string) ([]string, error) {
    entries, err := os.ReadDir(dir)
    if err != nil {
        return nil, err
    }
    var out []string
    for _, e := range entries {
        if e.IsDir() {
            continue
        }
        switch strings.ToLower(filepath.Ext(e.Name())) {
        case ".yaml", ".yml", ".json":
            out = append(out, filepath.Join(dir, e.Name()))
        }
    }
    sort.Strings(out)
    return out, nil
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
    client := &http.Client{Timeout: settings.HTTPTimeout}
    var lastErr error
    backoff := settings.BackoffBase
    if backoff <= 0 {
        backoff = 200 * time.Millisecond
    }
    attempts := settings.MaxRetries
    if attempts <= 0 {
        attempts = 1
    }
    for i := 0; i < attempts; i++ {
        body, retry, err := fetchOnce(ctx, client, rawURL)
        if err == nil {
            return body, nil
        }
        if !retry {
            return nil, err
        }
        lastErr = err
        if i == attempts-1 {
            break
        }
        select {
        case <-ctx.Done():
            return nil, ctx.Err()
        case <-time.After(backoff):
        }
        backoff *= 2
    }
    if lastErr == nil {
        lastErr = errors.New("fetch failed")
    }
    return nil, lastErr
}

// fetchOnce performs one GET. retry is true for network errors, 429 and 5xx.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
    if err != nil {
        return nil, false, err
    }
    resp, err := client.Do(req)
    if err != nil {
        return nil, ctx.Err() == nil, err
    }
    defer resp.Body.Close()
    if resp.StatusCode < 300 {
        body, err := io.ReadAll(resp.Body)
        return body, false, err
    }
    if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
        return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
    }
    snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
    return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
