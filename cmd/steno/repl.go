package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/shandley/stenograph/steno"
	"github.com/spf13/cobra"
)

var (
	accentColor    = lipgloss.Color("#8B5CF6")
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

	warnStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

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

func newREPLCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive steno shell with live vocabulary reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runREPL(opts, logger)
		},
	}
}

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

// configReloadMsg arrives when a --vocab or --primitives file changes on
// disk.
type configReloadMsg struct {
	path string
}

type replModel struct {
	textInput   textinput.Model
	opts        *appOptions
	logger      *zap.Logger
	parser      *steno.Parser
	mapper      *steno.Mapper
	watcher     *fsnotify.Watcher
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showVocab   bool
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
	CtrlV key.Binding
	CtrlK key.Binding
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
		key.WithHelp("enter", "map command"),
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
	CtrlV: key.NewBinding(
		key.WithKeys("ctrl+v"),
		key.WithHelp("ctrl+v", "toggle vocabulary"),
	),
	CtrlK: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newREPLModel(opts *appOptions, logger *zap.Logger) (replModel, error) {
	ti := textinput.New()
	ti.Placeholder = "verb:target +add -excl .flag ..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "steno> "

	parser, err := opts.buildParser(logger)
	if err != nil {
		return replModel{}, err
	}
	mapper, _, err := opts.buildMapper(logger)
	if err != nil {
		return replModel{}, err
	}

	var watcher *fsnotify.Watcher
	if len(opts.vocabFiles)+len(opts.primitiveFiles) > 0 {
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return replModel{}, fmt.Errorf("watch config files: %w", err)
		}
		for _, path := range opts.vocabFiles {
			if err := watcher.Add(path); err != nil {
				logger.Warn("cannot watch vocab file", zap.String("path", path), zap.Error(err))
			}
		}
		for _, path := range opts.primitiveFiles {
			if err := watcher.Add(path); err != nil {
				logger.Warn("cannot watch primitives file", zap.String("path", path), zap.Error(err))
			}
		}
	}

	return replModel{
		textInput:  ti,
		opts:       opts,
		logger:     logger,
		parser:     parser,
		mapper:     mapper,
		watcher:    watcher,
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}, nil
}

func (m replModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tea.EnterAltScreen}
	if m.watcher != nil {
		cmds = append(cmds, watchReloads(m.watcher))
	}
	return tea.Batch(cmds...)
}

// watchReloads blocks on the watcher until a config file is rewritten.
func watchReloads(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					return configReloadMsg{path: ev.Name}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
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

	case configReloadMsg:
		m = m.reloadConfig(msg.path)
		return m, watchReloads(m.watcher)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlV):
			m.showVocab = !m.showVocab
			return m, nil

		case key.Matches(msg, keys.CtrlK):
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

func (m replModel) reloadConfig(path string) replModel {
	parser, err := m.opts.buildParser(m.logger)
	if err != nil {
		m.history = append(m.history, historyEntry{
			output: fmt.Sprintf("reload failed: %v", err),
			isErr:  true,
		})
		return m
	}
	mapper, _, err := m.opts.buildMapper(m.logger)
	if err != nil {
		m.history = append(m.history, historyEntry{
			output: fmt.Sprintf("reload failed: %v", err),
			isErr:  true,
		})
		return m
	}
	m.parser = parser
	m.mapper = mapper
	m.history = append(m.history, historyEntry{
		output: fmt.Sprintf("Reloaded %s", path),
	})
	return m
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":vocab", ":v":
		m.showVocab = !m.showVocab
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

// handleAutocomplete completes the token under the cursor against the
// resolved vocabulary: verbs for bare words, flags after a dot, modes
// after ? or ~.
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

	vocab := m.parser.Vocabulary()
	var completions []string
	switch {
	case strings.HasPrefix(lastWord, "."):
		for name := range vocab.Flags {
			if strings.HasPrefix("."+name, lastWord) {
				completions = append(completions, "."+name)
			}
		}
	case strings.HasPrefix(lastWord, "?") || strings.HasPrefix(lastWord, "~"):
		sigil := lastWord[:1]
		for name := range vocab.Modes {
			if strings.HasPrefix(sigil+name, lastWord) {
				completions = append(completions, sigil+name)
			}
		}
	default:
		for _, verb := range vocab.VerbTokens() {
			if strings.HasPrefix(verb, lastWord) {
				completions = append(completions, verb+":")
			}
		}
	}
	sort.Strings(completions)

	if len(completions) == 1 {
		prefix := strings.TrimSuffix(input, lastWord)
		m.textInput.SetValue(prefix + completions[0])
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		m.history = append(m.history, historyEntry{
			output: "Completions: " + strings.Join(completions, " "),
		})
	}
	return m
}

func (m replModel) evaluate(input string) (string, bool) {
	res, err := m.parser.Parse(input)
	if err != nil {
		return err.Error(), true
	}

	result := m.mapper.Map(res.Intent)
	out := renderResult(result)
	for _, w := range res.Warnings {
		out += "\n" + warnStyle.Render("⚠ "+w)
	}
	return out, result.Kind == steno.ResultError
}

func renderResult(result steno.MappingResult) string {
	switch result.Kind {
	case steno.ResultDirect:
		var b strings.Builder
		fmt.Fprintf(&b, "direct %s", result.Direct.Primitive)
		if len(result.Direct.Inputs) > 0 {
			slots := make([]string, 0, len(result.Direct.Inputs))
			for slot, val := range result.Direct.Inputs {
				slots = append(slots, slot+"="+val)
			}
			sort.Strings(slots)
			fmt.Fprintf(&b, "  %s", strings.Join(slots, " "))
		}
		if len(result.Direct.Params) > 0 {
			params := make([]string, 0, len(result.Direct.Params))
			for name, val := range result.Direct.Params {
				params = append(params, fmt.Sprintf("%s=%v", name, val))
			}
			sort.Strings(params)
			fmt.Fprintf(&b, "  [%s]", strings.Join(params, " "))
		}
		return b.String()
	case steno.ResultDelegate:
		return "delegate: " + result.Delegate.Reason
	case steno.ResultClarify:
		var b strings.Builder
		b.WriteString(result.Clarify.Question)
		for i, opt := range result.Clarify.Options {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, opt.Label)
		}
		return b.String()
	case steno.ResultError:
		return result.Err.Message
	}
	return string(result.Kind)
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("steno REPL")
	b.WriteString(header + " " + mutedStyle.Render("v"+version) + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width-2, 60))) + "\n\n")

	reservedLines := 8
	if m.showHelp {
		reservedLines += 10
	}
	if m.showVocab {
		reservedLines += len(m.parser.Vocabulary().Verbs) + 3
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

	if m.showVocab {
		b.WriteString(renderVocabPanel(m.parser.Vocabulary()))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+v") + helpDescStyle.Render(" vocab  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func renderVocabPanel(vocab *steno.ResolvedVocabulary) string {
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Vocabulary"))
	nameStyle := lipgloss.NewStyle().Foreground(highlightColor)

	verbs := make([]string, 0, len(vocab.Verbs))
	for v := range vocab.Verbs {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	for _, v := range verbs {
		def := vocab.Verbs[v]
		desc := def.Name
		if def.AliasOf != "" {
			desc = "alias of " + def.AliasOf
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", nameStyle.Render(fmt.Sprintf("%-5s", v)), mutedStyle.Render(desc)))
	}

	flags := make([]string, 0, len(vocab.Flags))
	for f := range vocab.Flags {
		flags = append(flags, "."+f)
	}
	sort.Strings(flags)
	lines = append(lines, mutedStyle.Render("  flags: "+strings.Join(flags, " ")))

	modes := make([]string, 0, len(vocab.Modes))
	for mode := range vocab.Modes {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	lines = append(lines, mutedStyle.Render("  modes: "+strings.Join(modes, " ")))

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate command history"},
		{"Tab", "Autocomplete verbs, flags and modes"},
		{"Enter", "Parse and map the command"},
		{":help", "Toggle this help"},
		{":vocab", "Toggle vocabulary panel"},
		{":clear", "Clear history"},
		{":quit", "Exit REPL"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range help {
		line := fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-8s", h.key)),
			helpDescStyle.Render(h.desc))
		lines = append(lines, line)
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func runREPL(opts *appOptions, logger *zap.Logger) error {
	model, err := newREPLModel(opts, logger)
	if err != nil {
		return err
	}
	if model.watcher != nil {
		defer model.watcher.Close()
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
