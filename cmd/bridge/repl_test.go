package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgomes/classbridge/bridge"
)

func newTestModel(t *testing.T) replModel {
	t.Helper()
	sb, err := newSandbox(nil)
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	t.Cleanup(func() {
		if err := sb.Close(); err != nil {
			t.Fatalf("close sandbox: %v", err)
		}
	})
	return newREPLModel(sb.engine, "")
}

func mustEvaluate(t *testing.T, m replModel, input string) string {
	t.Helper()
	output, isErr := m.evaluate(input)
	if isErr {
		t.Fatalf("evaluate %q: %s", input, output)
	}
	return output
}

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newTestModel(t)
	m.textInput.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after quit command")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestUpdateNonQuitCommandDoesNotReturnCmd(t *testing.T) {
	m := newTestModel(t)
	m.textInput.SetValue(":help")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if cmd != nil {
		t.Fatalf("expected no command for non-quit input")
	}
	if rm.quitting {
		t.Fatalf("quitting should remain false")
	}
	if !rm.showHelp {
		t.Fatalf("help toggle should be enabled")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after command")
	}
}

func TestUpdateEnterRecordsHistory(t *testing.T) {
	m := newTestModel(t)
	m.textInput.SetValue("new Counter")

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)
	if len(rm.history) != 1 || rm.history[0].isErr {
		t.Fatalf("unexpected history %+v", rm.history)
	}
	if got := rm.history[0].output; got != `$1 = <Demo\Counter instance>` {
		t.Fatalf("unexpected output %q", got)
	}
	if len(rm.cmdHistory) != 1 || rm.cmdHistory[0] != "new Counter" {
		t.Fatalf("unexpected command history %v", rm.cmdHistory)
	}

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyUp})
	rm = model.(replModel)
	if rm.textInput.Value() != "new Counter" {
		t.Fatalf("expected history recall, got %q", rm.textInput.Value())
	}
}

func TestEvaluateCallsEveryConvention(t *testing.T) {
	m := newTestModel(t)
	mustEvaluate(t, m, "new Counter")

	if got := mustEvaluate(t, m, "$1->increment()"); got != "null" {
		t.Fatalf("void call returned %q", got)
	}
	mustEvaluate(t, m, "$1->add(5);")
	if got := mustEvaluate(t, m, "$1->VALUE()"); got != "6" {
		t.Fatalf("expected 6, got %q", got)
	}
	if got := mustEvaluate(t, m, "$1->scaled(0.5)"); got != "3" {
		t.Fatalf("expected 3, got %q", got)
	}
}

func TestEvaluatePropertyAccess(t *testing.T) {
	m := newTestModel(t)
	mustEvaluate(t, m, "new Counter")

	if got := mustEvaluate(t, m, "$1->count"); got != "0" {
		t.Fatalf("expected default 0, got %q", got)
	}
	if got := mustEvaluate(t, m, `$1->owner = "ada"`); got != `"ada"` {
		t.Fatalf("unexpected assignment result %q", got)
	}
	if got := mustEvaluate(t, m, "$1->owner"); got != `"ada"` {
		t.Fatalf("assignment not stored, got %q", got)
	}
	if out, isErr := m.evaluate("$1->label"); !isErr || !strings.Contains(out, "protected") {
		t.Fatalf("expected protected property error, got %q", out)
	}
}

func TestEvaluateStringAndObjectArguments(t *testing.T) {
	m := newTestModel(t)
	mustEvaluate(t, m, "new Greeter")
	if got := mustEvaluate(t, m, `$1->greet("Ada, Countess", 'Welcome')`); got != `"Welcome, Ada, Countess!"` {
		t.Fatalf("unexpected greeting %q", got)
	}

	mustEvaluate(t, m, `new Demo\Shapes\Circle`)
	mustEvaluate(t, m, "new Circle()")
	mustEvaluate(t, m, "$2->grow(2)")
	if got := mustEvaluate(t, m, "$2->larger($3)"); got != "true" {
		t.Fatalf("expected grown circle to be larger, got %q", got)
	}
	if out, isErr := m.evaluate("$2->larger($1)"); !isErr || !strings.Contains(out, "must be") {
		t.Fatalf("expected argument type error, got %q", out)
	}
}

func TestEvaluateErrors(t *testing.T) {
	m := newTestModel(t)
	mustEvaluate(t, m, "new Counter")

	cases := []struct {
		input string
		want  string
	}{
		{"new Shape", "cannot instantiate"},
		{"new Measurable", "cannot instantiate"},
		{"new Missing", "unknown class"},
		{"$9->value()", "undefined object $9"},
		{"$1->missing()", "unknown method"},
		{"$1->reset()", "not accessible"},
		{"$1->add()", "too few arguments"},
		{`$1->add("x")`, "must be int"},
		{"$1->add(5", "cannot parse"},
		{`$1->add("open)`, "unterminated string"},
		{"$1->add(1,,2)", "empty argument"},
		{"$1->add(five)", "cannot parse literal"},
		{"print 1", "unrecognized input"},
	}
	for _, tc := range cases {
		out, isErr := m.evaluate(tc.input)
		if !isErr {
			t.Fatalf("%s: expected error, got %q", tc.input, out)
		}
		if !strings.Contains(out, tc.want) {
			t.Fatalf("%s: expected %q in %q", tc.input, tc.want, out)
		}
	}
}

func TestUnsetDestroysObject(t *testing.T) {
	m := newTestModel(t)
	mustEvaluate(t, m, "new Counter")
	mustEvaluate(t, m, "unset $1")
	if _, ok := m.objects[1]; ok {
		t.Fatalf("object still tracked after unset")
	}
	if out, isErr := m.evaluate("$1->value()"); !isErr || !strings.Contains(out, "undefined object") {
		t.Fatalf("unexpected result %q", out)
	}
}

func TestResetCommandDestroysAllObjects(t *testing.T) {
	m := newTestModel(t)
	mustEvaluate(t, m, "new Counter")
	mustEvaluate(t, m, "new Greeter")

	m, _ = m.handleCommand(":reset")
	if len(m.objects) != 0 {
		t.Fatalf("expected no objects, got %d", len(m.objects))
	}
	last := m.history[len(m.history)-1]
	if last.isErr || last.output != "Objects destroyed" {
		t.Fatalf("unexpected history entry %+v", last)
	}
}

func TestClassesCommand(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleCommand(":classes")
	out := m.history[len(m.history)-1].output
	for _, name := range []string{"Measurable", `Demo\Counter`, `Demo\Greeter`, `Demo\Shapes\Shape`, `Demo\Shapes\Circle`} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in %q", name, out)
		}
	}
}

func TestResolveClassPrefersNamespace(t *testing.T) {
	m := newTestModel(t)
	m.namespace = `Demo\Shapes`
	if got := m.resolveClass("circle"); got != `Demo\Shapes\Circle` {
		t.Fatalf("unexpected resolution %q", got)
	}
	if got := m.resolveClass(`\Demo\Counter`); got != `Demo\Counter` {
		t.Fatalf("unexpected resolution %q", got)
	}
}

func TestAutocompleteMembers(t *testing.T) {
	m := newTestModel(t)
	mustEvaluate(t, m, "new Counter")

	m.textInput.SetValue("$1->inc")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "$1->increment(" {
		t.Fatalf("unexpected completion %q", got)
	}

	m.textInput.SetValue("new Gre")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "new Greeter" {
		t.Fatalf("unexpected completion %q", got)
	}

	m.textInput.SetValue("$1->re")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "$1->re" {
		t.Fatalf("protected members should not complete, got %q", got)
	}
}

func TestParseLiteral(t *testing.T) {
	m := newTestModel(t)
	cases := []struct {
		in   string
		want bridge.Value
	}{
		{"NULL", bridge.NewNil()},
		{"true", bridge.NewBool(true)},
		{"-12", bridge.NewInt(-12)},
		{"2.5", bridge.NewFloat(2.5)},
		{`"a\"b"`, bridge.NewString(`a"b`)},
		{`'it\'s'`, bridge.NewString("it's")},
	}
	for _, tc := range cases {
		got, err := m.parseLiteral(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%s: expected %s, got %s", tc.in, tc.want.Inspect(), got.Inspect())
		}
	}
}
