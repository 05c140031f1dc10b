package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dlclark/regexp2"

	"github.com/mgomes/classbridge/bridge"
	"github.com/mgomes/classbridge/engine"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

// memberAccessRe matches $N->name, $N->name(args) and $N->name = value.
var memberAccessRe = regexp2.MustCompile(
	`^\$(\d+)\s*->\s*([\p{L}_][\p{L}\p{N}_]*)\s*(?:\((.*)\)|=\s*(.+))?$`,
	regexp2.Singleline)

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

type replModel struct {
	textInput   textinput.Model
	engine      *engine.Engine
	namespace   string
	objects     map[int64]*engine.Object
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showObjects bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
	Tab   key.Binding
	CtrlO key.Binding
	CtrlH key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous command"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next command"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "autocomplete"),
	),
	CtrlO: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "toggle objects"),
	),
	CtrlH: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newREPLModel(eng *engine.Engine, namespace string) replModel {
	ti := textinput.New()
	ti.Placeholder = "new Counter, $1->add(5), $1->count ..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "bridge> "

	return replModel{
		textInput:  ti,
		engine:     eng,
		namespace:  strings.Trim(namespace, `\`),
		objects:    make(map[int64]*engine.Object),
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlO):
			m.showObjects = !m.showObjects
			return m, nil

		case key.Matches(msg, keys.CtrlH):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(input)
				m.textInput.SetValue("")
				m.historyIdx = -1
				return m, cmd
			}

			output, isErr := m.evaluate(input)
			m.history = append(m.history, historyEntry{
				input:  input,
				output: output,
				isErr:  isErr,
			})
			m.cmdHistory = append(m.cmdHistory, input)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":objects", ":o":
		m.showObjects = !m.showObjects
	case ":classes":
		m.history = append(m.history, historyEntry{
			input:  input,
			output: "Classes: " + strings.Join(m.engine.Classes(), ", "),
		})
	case ":reset", ":r":
		var errs []error
		for _, id := range m.objectIDs() {
			if err := m.engine.Destroy(m.objects[id]); err != nil {
				errs = append(errs, err)
			}
			delete(m.objects, id)
		}
		entry := historyEntry{input: input, output: "Objects destroyed"}
		if err := errors.Join(errs...); err != nil {
			entry.output = err.Error()
			entry.isErr = true
		}
		m.history = append(m.history, entry)
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", cmd),
			isErr:  true,
		})
	}
	return m, nil
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	if input == "" {
		return m
	}

	words := strings.Fields(input)
	if len(words) == 0 {
		return m
	}
	lastWord := words[len(words)-1]

	var completions []string
	switch {
	case len(words) >= 2 && strings.EqualFold(words[len(words)-2], "new"):
		for _, name := range m.engine.Classes() {
			short := name[strings.LastIndex(name, `\`)+1:]
			for _, candidate := range []string{short, name} {
				if strings.HasPrefix(strings.ToLower(candidate), strings.ToLower(lastWord)) {
					completions = append(completions, candidate)
					break
				}
			}
		}
	case strings.Contains(lastWord, "->"):
		i := strings.Index(lastWord, "->")
		obj, err := m.lookupObject(lastWord[:i])
		if err != nil {
			return m
		}
		info, err := m.engine.Describe(obj.ClassName())
		if err != nil {
			return m
		}
		prefix := strings.ToLower(lastWord[i+2:])
		for _, method := range info.Methods {
			if method.Flags.Visibility() == bridge.Public && strings.HasPrefix(strings.ToLower(method.Name), prefix) {
				completions = append(completions, lastWord[:i+2]+method.Name+"(")
			}
		}
		for _, p := range info.Properties {
			if p.Flags.Visibility() == bridge.Public && strings.HasPrefix(strings.ToLower(p.Name), prefix) {
				completions = append(completions, lastWord[:i+2]+p.Name)
			}
		}
	default:
		for _, k := range []string{"new", "unset"} {
			if strings.HasPrefix(k, lastWord) {
				completions = append(completions, k)
			}
		}
		for _, id := range m.objectIDs() {
			ref := fmt.Sprintf("$%d", id)
			if strings.HasPrefix(ref, lastWord) {
				completions = append(completions, ref)
			}
		}
	}

	if len(completions) == 1 {
		prefix := strings.TrimSuffix(input, lastWord)
		m.textInput.SetValue(prefix + completions[0])
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		m.history = append(m.history, historyEntry{
			input:  "",
			output: "Completions: " + strings.Join(completions, ", "),
			isErr:  false,
		})
	}

	return m
}

// evaluate runs one statement: `new Class`, `unset $N`, `$N->method(args)`,
// `$N->property` or `$N->property = value`.
func (m replModel) evaluate(input string) (string, bool) {
	input = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), ";"))

	var (
		result bridge.Value
		err    error
	)
	switch {
	case hasKeyword(input, "new"):
		result, err = m.instantiate(strings.TrimSpace(input[len("new"):]))
	case hasKeyword(input, "unset"):
		result, err = m.unset(strings.TrimSpace(input[len("unset"):]))
	case strings.HasPrefix(input, "$"):
		result, err = m.access(input)
	default:
		err = fmt.Errorf("unrecognized input %q (try :help)", input)
	}
	if err != nil {
		return err.Error(), true
	}
	return formatValue(result), false
}

func hasKeyword(input, keyword string) bool {
	if len(input) <= len(keyword) || !strings.EqualFold(input[:len(keyword)], keyword) {
		return false
	}
	next := input[len(keyword)]
	return next == ' ' || next == '\t'
}

func (m replModel) instantiate(name string) (bridge.Value, error) {
	name = strings.TrimSpace(strings.TrimSuffix(name, "()"))
	if name == "" {
		return bridge.NewNil(), errors.New("new: class name required")
	}
	obj, err := m.engine.Instantiate(m.resolveClass(name))
	if err != nil {
		return bridge.NewNil(), err
	}
	m.objects[obj.ID()] = obj
	return bridge.NewObject(obj), nil
}

// resolveClass maps a short name to the qualified name of a registered
// class. The REPL namespace is tried first, then any unique suffix match.
func (m replModel) resolveClass(name string) string {
	name = strings.TrimPrefix(name, `\`)
	if strings.Contains(name, `\`) {
		return name
	}
	classes := m.engine.Classes()
	if m.namespace != "" {
		for _, c := range classes {
			if strings.EqualFold(c, m.namespace+`\`+name) {
				return c
			}
		}
	}
	var match string
	for _, c := range classes {
		if strings.EqualFold(c, name) {
			return c
		}
		if strings.HasSuffix(strings.ToLower(c), `\`+strings.ToLower(name)) {
			if match != "" {
				return name
			}
			match = c
		}
	}
	if match != "" {
		return match
	}
	return name
}

func (m replModel) unset(ref string) (bridge.Value, error) {
	obj, err := m.lookupObject(ref)
	if err != nil {
		return bridge.NewNil(), err
	}
	delete(m.objects, obj.ID())
	if err := m.engine.Destroy(obj); err != nil {
		return bridge.NewNil(), err
	}
	return bridge.NewNil(), nil
}

func (m replModel) access(input string) (bridge.Value, error) {
	match, err := memberAccessRe.FindStringMatch(input)
	if err != nil {
		return bridge.NewNil(), err
	}
	if match == nil {
		return bridge.NewNil(), fmt.Errorf("cannot parse %q; expected $N->member", input)
	}
	groups := match.Groups()
	obj, err := m.lookupObject("$" + groups[1].String())
	if err != nil {
		return bridge.NewNil(), err
	}
	member := groups[2].String()

	switch {
	case len(groups[3].Captures) > 0:
		args, err := m.parseArgs(groups[3].String())
		if err != nil {
			return bridge.NewNil(), err
		}
		return m.engine.Call(obj, member, args...)
	case len(groups[4].Captures) > 0:
		val, err := m.parseLiteral(strings.TrimSpace(groups[4].String()))
		if err != nil {
			return bridge.NewNil(), err
		}
		if err := m.engine.SetProperty(obj, member, val); err != nil {
			return bridge.NewNil(), err
		}
		return val, nil
	default:
		return m.engine.Property(obj, member)
	}
}

func (m replModel) lookupObject(ref string) (*engine.Object, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(ref), "$"), 10, 64)
	if err != nil || !strings.HasPrefix(strings.TrimSpace(ref), "$") {
		return nil, fmt.Errorf("invalid object reference %q", ref)
	}
	obj, ok := m.objects[id]
	if !ok {
		return nil, fmt.Errorf("undefined object $%d", id)
	}
	return obj, nil
}

func (m replModel) parseArgs(src string) ([]bridge.Value, error) {
	tokens, err := splitArgs(src)
	if err != nil {
		return nil, err
	}
	args := make([]bridge.Value, len(tokens))
	for i, tok := range tokens {
		if args[i], err = m.parseLiteral(tok); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// splitArgs splits a comma separated argument list, keeping commas inside
// quoted strings.
func splitArgs(src string) ([]string, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		escaped bool
	)
	for _, r := range src {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case quote == 0 && r == ',':
			tokens = append(tokens, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if quote != 0 {
		return nil, errors.New("unterminated string")
	}
	tokens = append(tokens, strings.TrimSpace(current.String()))
	for _, tok := range tokens {
		if tok == "" {
			return nil, errors.New("empty argument")
		}
	}
	return tokens, nil
}

func (m replModel) parseLiteral(tok string) (bridge.Value, error) {
	switch strings.ToLower(tok) {
	case "null":
		return bridge.NewNil(), nil
	case "true":
		return bridge.NewBool(true), nil
	case "false":
		return bridge.NewBool(false), nil
	}
	switch {
	case strings.HasPrefix(tok, "$"):
		obj, err := m.lookupObject(tok)
		if err != nil {
			return bridge.NewNil(), err
		}
		return bridge.NewObject(obj), nil
	case len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"':
		s, err := strconv.Unquote(tok)
		if err != nil {
			return bridge.NewNil(), fmt.Errorf("invalid string %s", tok)
		}
		return bridge.NewString(s), nil
	case len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'':
		s := strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(tok[1 : len(tok)-1])
		return bridge.NewString(s), nil
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return bridge.NewInt(i), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return bridge.NewFloat(f), nil
	}
	return bridge.NewNil(), fmt.Errorf("cannot parse literal %q", tok)
}

func (m replModel) objectIDs() []int64 {
	ids := make([]int64, 0, len(m.objects))
	for id := range m.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func formatValue(v bridge.Value) string {
	if obj, ok := v.Object().(*engine.Object); ok {
		return fmt.Sprintf("$%d = %s", obj.ID(), v.String())
	}
	return v.Inspect()
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("ClassBridge REPL")
	classes := mutedStyle.Render(fmt.Sprintf("%d classes", len(m.engine.Classes())))
	b.WriteString(header + " " + classes + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width-2, 60))) + "\n\n")

	reservedLines := 8
	if m.showHelp {
		reservedLines += 12
	}
	if m.showObjects {
		reservedLines += len(m.objects) + 3
	}
	availableHeight := m.height - reservedLines

	historyStart := 0
	if len(m.history) > availableHeight {
		historyStart = len(m.history) - availableHeight
	}

	for i := historyStart; i < len(m.history); i++ {
		entry := m.history[i]
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString("  " + errorStyle.Render("✗ "+entry.output) + "\n")
		} else {
			b.WriteString("  " + resultStyle.Render("→ "+entry.output) + "\n")
		}
		b.WriteString("\n")
	}

	if m.showObjects {
		b.WriteString(m.renderObjectsPanel())
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+o") + helpDescStyle.Render(" objects  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func (m replModel) renderObjectsPanel() string {
	if len(m.objects) == 0 {
		return borderStyle.Render(mutedStyle.Render("No live objects"))
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Objects"))
	refStyle := lipgloss.NewStyle().Foreground(highlightColor)
	for _, id := range m.objectIDs() {
		line := fmt.Sprintf("  %s = %s", refStyle.Render(fmt.Sprintf("$%d", id)), m.objects[id].ClassName())
		lines = append(lines, line)
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate command history"},
		{"Tab", "Complete classes, members and objects"},
		{"new C", "Instantiate class C as $N"},
		{"$N->m()", "Call method m"},
		{"$N->p", "Read property p (assign with =)"},
		{"unset $N", "Destroy object $N"},
		{":classes", "List registered classes"},
		{":objects", "Toggle objects panel"},
		{":help", "Toggle this help"},
		{":clear", "Clear history"},
		{":reset", "Destroy all objects"},
		{":quit", "Exit REPL"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range help {
		line := fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-9s", h.key)),
			helpDescStyle.Render(h.desc))
		lines = append(lines, line)
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func runREPL(eng *engine.Engine, namespace string) error {
	p := tea.NewProgram(newREPLModel(eng, namespace), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
