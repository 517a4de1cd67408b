package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pfm/internal/account"
)

const (
	modeLogin    = "login"
	modeRegister = "register"
)

// LoggedInMsg carries the account once credentials are accepted.
type LoggedInMsg struct {
	Account *account.Account
}

type LoginModel struct {
	CommonModel
	accounts *account.Service

	form    *huh.Form
	fields  *loginFields
	working bool
	err     error
}

// loginFields is shared with the form, which outlives model copies.
type loginFields struct {
	mode     string
	name     string
	email    string
	password string
	answer   string
}

func NewLoginModel(accounts *account.Service) LoginModel {
	fields := &loginFields{mode: modeLogin}

	return LoginModel{accounts: accounts, fields: fields, form: buildLoginForm(fields)}
}

func buildLoginForm(f *loginFields) *huh.Form {
	registering := func() bool { return f.mode != modeRegister }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Personal Finance").
				Options(
					huh.NewOption("Log in", modeLogin),
					huh.NewOption("Create an account", modeRegister),
				).
				Value(&f.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}

					return nil
				}),
		).WithHideFunc(registering),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return errors.New("enter a valid email")
					}

					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password),
		),
		huh.NewGroup(
			huh.NewInput().
				Title(account.DefaultSecurityQuestion).
				Description("Used to reset your password. Leave blank for the default.").
				Value(&f.answer),
		).WithHideFunc(registering),
	).WithWidth(50).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

type loginResultMsg struct {
	account *account.Account
	err     error
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.working = false

		if msg.err != nil {
			m.err = msg.err
			m.fields.password = ""
			m.form = buildLoginForm(m.fields)

			return m, m.form.Init()
		}

		acc := msg.account

		return m, func() tea.Msg { return LoggedInMsg{Account: acc} }

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	if m.working {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateAborted {
		return m, tea.Quit
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.working = true
	m.err = nil

	return m, m.submitCmd()
}

func (m LoginModel) submitCmd() tea.Cmd {
	mode := m.fields.mode
	params := account.RegisterParams{
		Name:           m.fields.name,
		Email:          m.fields.email,
		Password:       m.fields.password,
		SecurityAnswer: m.fields.answer,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			session *account.Session
			err     error
		)

		if mode == modeRegister {
			session, err = m.accounts.Register(ctx, params)
		} else {
			session, err = m.accounts.Login(ctx, params.Email, params.Password)
		}

		if err != nil {
			return loginResultMsg{err: err}
		}

		return loginResultMsg{account: session.Account}
	}
}

func (m LoginModel) View() string {
	if m.working {
		return lipgloss.NewStyle().Padding(2).Render("Signing in...")
	}

	content := m.form.View()
	if m.err != nil {
		content = errorStyle.Render(loginErrorText(m.err)) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, account.ErrEmailTaken):
		return "Email already registered"
	case errors.Is(err, account.ErrNameRequired):
		return "Name is required"
	case errors.Is(err, account.ErrWeakPassword):
		return "Password must be at least 6 characters"
	}

	return fmt.Sprintf("Error: %v", err)
}
