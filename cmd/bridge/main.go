package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/mgomes/classbridge/engine"
	"github.com/mgomes/classbridge/stubs"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "describe":
		return describeCommand(args[2:])
	case "stubs":
		return stubsCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

type commonFlags struct {
	namespace *string
	verbose   *bool
}

func newFlagSet(name string) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	return fs, commonFlags{
		namespace: fs.String("namespace", "", "only include classes under this namespace"),
		verbose:   fs.Bool("verbose", false, "log registration events to stderr"),
	}
}

func (f commonFlags) logger() (*zap.Logger, error) {
	if !*f.verbose {
		return zap.NewNop(), nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

func openSandbox(f commonFlags) (*sandbox, error) {
	log, err := f.logger()
	if err != nil {
		return nil, err
	}
	sb, err := newSandbox(log)
	if err != nil {
		return nil, fmt.Errorf("start demo extension: %w", err)
	}
	return sb, nil
}

func describeCommand(args []string) (err error) {
	fs, common := newFlagSet("describe")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("bridge describe: unexpected argument %q", fs.Arg(0))
	}
	sb, err := openSandbox(common)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sb.Close())
	}()

	infos, err := sb.classes(*common.namespace)
	if err != nil {
		return err
	}
	for i, info := range infos {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(describeClass(info))
	}
	return nil
}

var (
	classStyle = lipgloss.NewStyle().Bold(true)
	kindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func describeClass(info engine.ClassInfo) string {
	var b strings.Builder
	b.WriteString(kindStyle.Render(info.Type.String()) + " " + classStyle.Render(info.Name) + "\n")
	for _, p := range info.Properties {
		fmt.Fprintf(&b, "  %s $%s = %s\n", p.Flags.Visibility(), p.Name, p.Default.Inspect())
	}
	for _, m := range info.Methods {
		line := m.Signature()
		if m.Abstract {
			line += ";"
		}
		fmt.Fprintf(&b, "  %s\n", line)
	}
	if len(info.Properties) == 0 && len(info.Methods) == 0 {
		b.WriteString("  (no members)\n")
	}
	return b.String()
}

func stubsCommand(args []string) (err error) {
	fs, common := newFlagSet("stubs")
	check := fs.Bool("check", false, "parse the generated stub and fail on syntax errors")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("bridge stubs: unexpected argument %q", fs.Arg(0))
	}
	sb, err := openSandbox(common)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sb.Close())
	}()

	infos, err := sb.classes(*common.namespace)
	if err != nil {
		return err
	}
	if !*check {
		_, err = os.Stdout.Write(stubs.Render(infos))
		return err
	}
	src, err := stubs.Check(infos)
	if err != nil {
		return fmt.Errorf("stub check failed: %w", err)
	}
	_, err = os.Stdout.Write(src)
	return err
}

func replCommand(args []string) (err error) {
	fs, common := newFlagSet("repl")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sb, err := openSandbox(common)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sb.Close())
	}()
	return runREPL(sb.engine, *common.namespace)
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <describe|stubs|repl> [flags]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  describe   list the demo classes with their methods and properties")
	fmt.Fprintln(os.Stderr, "  stubs      print PHP stubs for the demo classes")
	fmt.Fprintln(os.Stderr, "  repl       instantiate demo classes and call their methods interactively")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  -namespace string")
	fmt.Fprintln(os.Stderr, "    only include classes under this namespace")
	fmt.Fprintln(os.Stderr, "  -verbose")
	fmt.Fprintln(os.Stderr, "    log registration events to stderr")
	fmt.Fprintln(os.Stderr, "  -check")
	fmt.Fprintln(os.Stderr, "    (stubs) parse the generated stub and fail on syntax errors")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
