package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/atriahub/pkg/authsdk"
	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/pterm/pterm"
)

// ErrNonInteractive is returned when input is needed but prompting is off.
var ErrNonInteractive = errors.New("input required but prompts are disabled (--non-interactive)")

// Prompter asks the terminal for whatever the hub cannot find elsewhere.
// ATRIAX_EMAIL and ATRIAX_PASSWORD win over prompting.
type Prompter struct {
	NonInteractive bool

	// ask reads one line; masked input hides it. Replaced in tests.
	ask func(prompt string, masked bool) (string, error)
}

func NewPrompter(nonInteractive bool) *Prompter {
	return &Prompter{NonInteractive: nonInteractive, ask: ptermAsk}
}

func ptermAsk(prompt string, masked bool) (string, error) {
	input := pterm.DefaultInteractiveTextInput
	if masked {
		input = *input.WithMask("*")
	}
	return input.Show(prompt)
}

// Credentials implements hub.CredentialSource.
func (p *Prompter) Credentials(ctx context.Context) (*hub.Credentials, error) {
	if creds, err := hub.CredentialsFromEnv().Credentials(ctx); err == nil {
		return creds, nil
	}
	if p.NonInteractive {
		return nil, fmt.Errorf("set ATRIAX_EMAIL and ATRIAX_PASSWORD: %w", ErrNonInteractive)
	}

	pterm.Info.Println("Sign in to the Atria hub")
	email, err := p.line("Email", false)
	if err != nil {
		return nil, err
	}
	password, err := p.line("Password", true)
	if err != nil {
		return nil, err
	}

	return &hub.Credentials{Email: email, Password: password}, nil
}

// OneTimeCode implements hub.MFAPrompt.
func (p *Prompter) OneTimeCode(ctx context.Context, factor authsdk.Factor) (string, error) {
	if p.NonInteractive {
		return "", fmt.Errorf("set ATRIAX_TOTP_SECRET: %w", ErrNonInteractive)
	}

	name := factor.FriendlyName
	if name == "" {
		name = factor.FactorType
	}
	return p.line(fmt.Sprintf("One-time code (%s)", name), false)
}

// Password asks for a password without consulting the environment.
func (p *Prompter) Password(prompt string) (string, error) {
	if p.NonInteractive {
		return "", ErrNonInteractive
	}
	return p.line(prompt, true)
}

func (p *Prompter) line(prompt string, masked bool) (string, error) {
	v, err := p.ask(prompt, masked)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(prompt))
	}
	return v, nil
}
