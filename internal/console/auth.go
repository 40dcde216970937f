package console

import (
	"context"
	"errors"

	"github.com/fractionmaster/fractionmaster/internal/account"
	"github.com/fractionmaster/fractionmaster/internal/model"
)

func (c *Console) welcome(ctx context.Context) error {
	c.println("")
	c.println(c.tr.T("AppTitle"))
	return c.menu(ctx, []menuItem{
		{"1", c.tr.T("MenuLogin"), c.login},
		{"2", c.tr.T("MenuRegister"), c.register},
		{"q", c.tr.T("MenuQuit"), c.quit},
	})
}

func (c *Console) login(ctx context.Context) error {
	username, err := c.prompt(ctx, "PromptUsername")
	if err != nil {
		return err
	}
	password, err := c.promptRaw(ctx, "PromptPassword")
	if err != nil {
		return err
	}
	snap, ok := c.tutor.Login(username, password)
	if !ok {
		c.println(c.tr.T("LoginFailed"))
		return nil
	}
	c.println(c.tr.Td("WelcomeBack", map[string]any{"Name": snap.Profile.Name}))
	return nil
}

func (c *Console) register(ctx context.Context) error {
	fields := []struct {
		msgID string
		dst   *string
		raw   bool
	}{
		{"PromptUsername", new(string), false},
		{"PromptPassword", new(string), true},
		{"PromptName", new(string), false},
		{"PromptGrade", new(string), false},
		{"PromptSection", new(string), false},
	}
	for _, f := range fields {
		read := c.prompt
		if f.raw {
			read = c.promptRaw
		}
		v, err := read(ctx, f.msgID)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	username, password := *fields[0].dst, *fields[1].dst
	profile := model.Profile{
		Name:       *fields[2].dst,
		GradeLevel: *fields[3].dst,
		Section:    *fields[4].dst,
	}
	if profile.Name == "" {
		profile.Name = username
	}

	err := c.tutor.Register(username, password, profile)
	switch {
	case errors.Is(err, account.ErrUsernameTaken):
		c.println(c.tr.T("UsernameTaken"))
	case errors.Is(err, account.ErrEmptyCredentials):
		c.println(c.tr.T("CredentialsRequired"))
	case err != nil:
		return err
	default:
		c.println(c.tr.Td("Registered", map[string]any{"Name": profile.Name}))
	}
	return nil
}
