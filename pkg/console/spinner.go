package console

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sammayer/ci-log-processor/pkg/styles"
)

// Spinner shows a minimal dot animation on stderr during network
// operations. It is automatically disabled outside a terminal and when the
// ACCESSIBLE environment variable is set, so screen readers and CI logs
// never see animation frames.
type Spinner struct {
	program *tea.Program
	enabled bool
	running bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// spinnerModel drives the animation. Because the program runs with
// tea.WithoutRenderer, frames are printed manually in Update.
type spinnerModel struct {
	spinner spinner.Model
	message string
	output  *os.File
}

func (m spinnerModel) Init() tea.Cmd { return m.spinner.Tick }
func (m spinnerModel) View() string  { return "" }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.output != nil {
			fmt.Fprintf(m.output, "%s%s%s %s", ansiCarriageReturn, ansiClearLine, m.spinner.View(), m.message)
		}
		return m, cmd
	}
	return m, nil
}

// NewSpinner creates a spinner with the given message using MiniDot style.
func NewSpinner(message string) *Spinner {
	enabled := IsStderrTerminal() && os.Getenv("ACCESSIBLE") == ""
	s := &Spinner{enabled: enabled}

	if enabled {
		model := spinnerModel{
			spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.Info)),
			message: message,
			output:  os.Stderr,
		}
		s.program = tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithoutRenderer())
	}
	return s
}

// Start begins the animation. Safe to call when the spinner is disabled.
func (s *Spinner) Start() {
	if !s.enabled || s.program == nil {
		return
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		_, _ = s.program.Run()
	}()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.stop("")
}

// StopWithMessage ends the animation and prints a final message. The
// message is printed even when the spinner was disabled, so non-TTY users
// still get the outcome line.
func (s *Spinner) StopWithMessage(msg string) {
	s.stop(msg)
}

func (s *Spinner) stop(msg string) {
	if s.enabled && s.program != nil {
		s.mu.Lock()
		running := s.running
		s.running = false
		s.mu.Unlock()
		if running {
			s.program.Quit()
			s.wg.Wait()
			ClearLine()
		}
	}
	if msg != "" {
		fmt.Fprintf(os.Stderr, "%s\n", msg)
	}
}
