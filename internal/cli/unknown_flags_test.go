package cli

import (
    "errors"
    "io"
    "strings"
    "testing"

    "github.com/mark3labs/routedoc/internal/spec"
)

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
    t.Parallel()

    tests := []struct {
        args  []string
        usage string
    }{
        {[]string{"generate", "--unknown-flag"}, "routedoc generate [flags]"},
        {[]string{"generate", "--lang", "go"}, "--include-classes"},
        {[]string{"init", "--unknown-flag"}, "routedoc init [flags]"},
        {[]string{"--nope"}, "routedoc [flags]"},
    }
    for _, tc := range tests {
        tc := tc
        t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
            t.Parallel()
            root := NewRootCmd()
            root.SetOut(io.Discard)
            root.SetErr(io.Discard)
            root.SetArgs(tc.args)

            err := root.Execute()
            if err == nil {
                t.Fatalf("expected error for unknown flag")
            }
            if !errors.Is(err, ErrUsage) {
                t.Fatalf("expected usage error, got %T: %v", err, err)
            }
            if !strings.Contains(err.Error(), "unknown flag") || !strings.Contains(err.Error(), "Usage:") {
                t.Fatalf("unexpected error text: %v", err)
            }
            if !strings.Contains(err.Error(), tc.usage) {
                t.Fatalf("help text should mention %q: %v", tc.usage, err)
            }
        })
    }
}

func TestUsageError_KeepsCause(t *testing.T) {
    t.Parallel()

    cause := &spec.SpecError{Code: spec.ParseError, Message: "parse catalog.yaml: bad indent"}
    err := usageErrorf("catalog: %w", cause)
    if !errors.Is(err, ErrUsage) {
        t.Fatalf("expected usage error")
    }
    var se *spec.SpecError
    if !errors.As(err, &se) || se.Code != spec.ParseError {
        t.Fatalf("cause not reachable: %v", err)
    }
    if err.Error() != "catalog: parse catalog.yaml: bad indent" {
        t.Fatalf("message = %q", err.Error())
    }
    if errors.Unwrap(newUsageError("plain")) != nil {
        t.Fatalf("plain usage error should have no cause")
    }
}
