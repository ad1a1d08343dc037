package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) register(ctx context.Context, args []string) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email (optional)", a.out)
	if err != nil {
		return err
	}
	fullName, err := GetSimpleText(a.reader, "Enter full name (optional)", a.out)
	if err != nil {
		return err
	}

	id, err := a.api.Register(ctx, username, password, email, fullName)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered, your user id is %s\n", id)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	token, err := a.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.tokens.Save(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	fmt.Fprintln(a.out, "Logged in")
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := a.tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	notes, err := a.api.ListNotes(ctx)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "No notes")
		return nil
	}

	for _, n := range notes {
		text, _, _ := strings.Cut(n.Text, "\n")
		fmt.Fprintf(a.out, "%s  %s\n", n.ID, text)
	}
	return nil
}

func (a *App) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	n, err := a.api.GetNote(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "ID:     %s\n", n.ID)
	fmt.Fprintf(a.out, "Shared: %s\n", strings.Join(n.AuthorizedUsers, ", "))
	if n.Image != nil {
		fmt.Fprintf(a.out, "Image:  %s%s\n", strings.TrimRight(a.config.ServerURL, "/"), n.Image.URL)
	}
	fmt.Fprintf(a.out, "\n%s\n", n.Text)
	return nil
}

// noteText joins args, or prompts for a multi-line text when there are
// none.
func (a *App) noteText(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return GetMultiline(a.reader, "Enter note text", a.out)
}

func (a *App) create(ctx context.Context, args []string) error {
	text, err := a.noteText(args)
	if err != nil {
		return err
	}

	id, err := a.api.CreateNote(ctx, text, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created note %s\n", id)
	return nil
}

func (a *App) update(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	text, err := a.noteText(args[1:])
	if err != nil {
		return err
	}

	if err := a.api.UpdateNote(ctx, args[0], &text, nil); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Note updated")
	return nil
}

func (a *App) attach(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}

	img, err := loadImage(args[1])
	if err != nil {
		return err
	}

	if err := a.api.UpdateNote(ctx, args[0], nil, img); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Image attached")
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.api.DeleteNote(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Note deleted")
	return nil
}

func (a *App) share(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	if err := a.api.ShareNote(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Note shared")
	return nil
}

func (a *App) unshare(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	if err := a.api.UnshareNote(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Note unshared")
	return nil
}
