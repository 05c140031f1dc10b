package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"bridge", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	err := runCLI([]string{"bridge", "unknown"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCLIWithoutCommand(t *testing.T) {
	err := runCLI([]string{"bridge"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDescribeCommandListsMembers(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return describeCommand(nil)
	})
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}
	wants := []string{
		"Measurable",
		`Demo\Counter`,
		`Demo\Shapes\Circle`,
		"  public $count = 0\n",
		"  protected $label = \"counter\"\n",
		"  private $sep = \",\"\n",
		"  public function add(int $amount)\n",
		"  final public function scaled(float $factor)\n",
		"  protected function reset()\n",
		"  abstract public function area();\n",
		"  public function greet(string $name, string $greeting = null)\n",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("describe output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, `Demo\Counter`) > strings.Index(out, `Demo\Shapes\Circle`) {
		t.Fatalf("expected registration order:\n%s", out)
	}
}

func TestDescribeCommandNamespaceFilter(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return describeCommand([]string{"-namespace", `demo\shapes`})
	})
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}
	if !strings.Contains(out, `Demo\Shapes\Shape`) || !strings.Contains(out, `Demo\Shapes\Circle`) {
		t.Fatalf("expected shapes namespace classes:\n%s", out)
	}
	if strings.Contains(out, "Counter") || strings.Contains(out, "Measurable") {
		t.Fatalf("namespace filter leaked other classes:\n%s", out)
	}
}

func TestDescribeCommandUnknownNamespace(t *testing.T) {
	_, err := captureStdout(t, func() error {
		return describeCommand([]string{"-namespace", "Nowhere"})
	})
	if err == nil || !strings.Contains(err.Error(), "no classes in namespace Nowhere") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDescribeCommandRejectsArguments(t *testing.T) {
	err := describeCommand([]string{"extra"})
	if err == nil || !strings.Contains(err.Error(), "unexpected argument") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStubsCommandCheck(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return stubsCommand([]string{"-check"})
	})
	if err != nil {
		t.Fatalf("stubs -check failed: %v\n%s", err, out)
	}
	wants := []string{
		"<?php\n",
		"interface Measurable\n",
		"namespace Demo {\n",
		"class Counter\n",
		`namespace Demo\Shapes {`,
		"final class Circle\n",
		`    public function larger(\Demo\Shapes\Circle $other) {}`,
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("stub missing %q:\n%s", want, out)
		}
	}
}

func TestStubsCommandNamespace(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return stubsCommand([]string{"-namespace", "Demo"})
	})
	if err != nil {
		t.Fatalf("stubs failed: %v", err)
	}
	if strings.Contains(out, "Measurable") {
		t.Fatalf("root namespace should be filtered out:\n%s", out)
	}
	if !strings.Contains(out, "class Greeter") || !strings.Contains(out, "abstract class Shape") {
		t.Fatalf("expected Demo classes and children:\n%s", out)
	}
}

func TestFlagParseErrorsAreReturned(t *testing.T) {
	if err := stubsCommand([]string{"-bogus"}); err == nil {
		t.Fatalf("expected flag parse error")
	}
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	out := <-done
	_ = r.Close()
	return out, runErr
}
