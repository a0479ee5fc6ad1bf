package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jihghong/tw-stock-daily/database"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCMD.SetOut(&out)
	rootCMD.SetErr(&out)
	rootCMD.SetArgs(args)
	err := rootCMD.Execute()
	return out.String(), err
}

func TestBareInvocationPrintsUsageAndFails(t *testing.T) {
	out, err := execute(t)
	if err == nil {
		t.Error("expected the bare invocation to fail")
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage output, got %q", out)
	}
}

func TestBareGroupCommandsPrintUsageAndFail(t *testing.T) {
	for _, group := range []string{"quotes", "future", "twse"} {
		out, err := execute(t, group)
		if err == nil {
			t.Errorf("expected bare %q to fail", group)
		}
		if !strings.Contains(out, "Usage:") {
			t.Errorf("%s: expected usage output, got %q", group, out)
		}
	}
}

func TestUnknownCommandPrintsUsageAndFails(t *testing.T) {
	out, err := execute(t, "bogus")
	if err == nil {
		t.Error("expected an unknown command to fail")
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage output, got %q", out)
	}
}

func TestRuntimeErrorDoesNotPrintUsage(t *testing.T) {
	t.Setenv(database.PathEnv, "")

	out, err := execute(t, "quotes", "update")
	if err == nil {
		t.Fatal("expected a configuration error without the path variable")
	}
	if strings.Contains(out, "Usage:") {
		t.Errorf("runtime failures must not dump usage, got %q", out)
	}
}
