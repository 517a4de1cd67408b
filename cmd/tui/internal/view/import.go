package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pfm/internal/importer"
)

const (
	importTimeout = 2 * time.Minute
	maxSkipShown  = 8
)

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	email         string

	state      importState
	filePicker filepicker.Model
	spinner    spinner.Model
	path       string

	result *importer.Result
	err    error
}

func NewImportModel(impSvc *importer.Service, email string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ImportModel{
		importService: impSvc,
		email:         email,
		filePicker:    fp,
		spinner:       s,
	}
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == importStateResult {
				m.state = importStateFilePick
				m.result = nil
				m.err = nil

				return m, m.filePicker.Init()
			}

			if m.state == importStateFilePick {
				return m, Back
			}
		}

	case importResultMsg:
		m.state = importStateResult
		m.result = msg.result
		m.err = msg.err

		return m, nil
	}

	switch m.state {
	case importStateImporting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case importStateResult:
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.path = path

		return m, tea.Batch(m.spinner.Tick, m.importCmd(path))
	}

	return m, cmd
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	svc, email := m.importService, m.email

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := svc.Import(ctx, email, f)

		return importResultMsg{result: res, err: err}
	}
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case importStateFilePick:
		return style.Render(
			"Select a CSV file to import (app export or bank statement):\n\n" +
				m.filePicker.View() + "\n" + faintStyle.Render("Esc: back"))
	case importStateImporting:
		return style.Render(fmt.Sprintf("%s Importing %s...", m.spinner.View(), filepath.Base(m.path)))
	case importStateResult:
		return style.Render(m.viewResult() + "\n\n" + faintStyle.Render("Esc: import another file"))
	}

	return ""
}

func (m ImportModel) viewResult() string {
	if m.err != nil {
		if errors.Is(m.err, importer.ErrUnknownFormat) {
			return errorStyle.Render("Unrecognized file: " + m.err.Error())
		}

		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	r := m.result

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", successStyle.Render(fmt.Sprintf("Imported %d transactions.", len(r.Imported))))
	fmt.Fprintf(&b, "Format: %s, encoding: %s\n", r.Profile, r.Charset)

	if r.QuotaReached {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf(
			"Monthly transaction limit reached; %d rows were not imported. Upgrade to Premium!", r.NotAttempted)))
	}

	if r.Usage != nil {
		fmt.Fprintf(&b, "\n%d of %d free transactions used this month.", r.Usage.Used, r.Usage.Limit)
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "\n\n%s", warningStyle.Render(fmt.Sprintf("Skipped %d rows:", len(r.Skipped))))

		for i, s := range r.Skipped {
			if i == maxSkipShown {
				fmt.Fprintf(&b, "\n  ... and %d more", len(r.Skipped)-maxSkipShown)
				break
			}

			fmt.Fprintf(&b, "\n  line %d: %s", s.Line, s.Reason)
		}
	}

	return b.String()
}
