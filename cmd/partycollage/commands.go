// ABOUTME: CLI subcommands for parties, sessions, and media
// ABOUTME: Each command parses its own flags and writes human-readable output

package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/partycollage/internal/gallery"
	"github.com/2389/partycollage/internal/session"
	"github.com/2389/partycollage/internal/store"
)

type command func(ctx context.Context, a *app, args []string, out io.Writer) error

var commands = map[string]command{
	"init":      runInit,
	"create":    runCreate,
	"login":     runLogin,
	"logout":    runLogout,
	"whoami":    runWhoami,
	"parties":   runParties,
	"delete":    runDelete,
	"countdown": runCountdown,
	"sweep":     runSweep,
	"media":     runMedia,
	"migrate":   runMigrate,
	"stats":     runStats,
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func positional(fs *flag.FlagSet, want int, usage string) ([]string, error) {
	if fs.NArg() != want {
		return nil, fmt.Errorf("usage: partycollage %s", usage)
	}
	return fs.Args(), nil
}

func runInit(ctx context.Context, a *app, args []string, out io.Writer) error {
	mig, err := a.gallery.MigrateLegacy(ctx)
	if err != nil {
		return fmt.Errorf("migrating legacy media: %w", err)
	}
	if mig.Imported > 0 {
		fmt.Fprintf(out, "Imported %d legacy media items\n", mig.Imported)
	}

	seed, err := a.gallery.Seed(ctx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	if seed.Seeded {
		green.Fprint(out, "✓ ")
		fmt.Fprintf(out, "Demo party %q created with %d items (password %q)\n",
			gallery.DemoParty, seed.Items, gallery.DemoPassword)
	} else {
		fmt.Fprintln(out, "Parties already exist; nothing to seed")
	}
	return nil
}

func runCreate(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := newFlagSet("create")
	days := fs.Int("days", a.cfg.Session.DefaultExpiryDays, "days until the party expires")
	noExpiry := fs.Bool("no-expiry", false, "never expire")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, 2, "create [--days N|--no-expiry] NAME PASSWORD")
	if err != nil {
		return err
	}
	if !*noExpiry && *days < 1 {
		return fmt.Errorf("%w: --days must be at least 1", session.ErrValidation)
	}

	opt := session.WithExpiresInDays(*days)
	if *noExpiry {
		opt = session.WithoutExpiry()
	}

	user, err := a.sessions.CreateParty(ctx, pos[0], pos[1], opt)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprint(out, "✓ ")
	fmt.Fprintf(out, "Created party %s and signed in as %s\n", user.Username, user.Email)
	return nil
}

func runLogin(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := newFlagSet("login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, 2, "login NAME PASSWORD")
	if err != nil {
		return err
	}

	user, err := a.sessions.Login(ctx, pos[0], pos[1])
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprint(out, "✓ ")
	fmt.Fprintf(out, "Signed in to %s\n", user.Username)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string, out io.Writer) error {
	a.sessions.Logout(ctx)
	fmt.Fprintln(out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string, out io.Writer) error {
	user := a.sessions.CurrentUser(ctx)
	if user == nil {
		fmt.Fprintln(out, "Not signed in")
		return nil
	}
	fmt.Fprintf(out, "%s <%s>\n", user.Username, user.Email)
	fmt.Fprintf(out, "id:     %s\n", user.ID)
	fmt.Fprintf(out, "avatar: %s\n", user.Avatar)
	return nil
}

func runParties(ctx context.Context, a *app, args []string, out io.Writer) error {
	a.sessions.Sweep(ctx)
	parties := a.sessions.Parties(ctx)
	if len(parties) == 0 {
		fmt.Fprintln(out, "No parties")
		return nil
	}

	now := time.Now()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCREATED\tEXPIRES IN")
	for _, p := range parties {
		left := "never"
		if c, ok := p.TimeLeft(now); ok {
			left = c.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.CreatedAt.Format(time.DateTime), left)
	}
	return tw.Flush()
}

func runDelete(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := newFlagSet("delete")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var name string
	switch fs.NArg() {
	case 0:
		party, err := a.sessions.CurrentParty(ctx)
		if err != nil {
			return err
		}
		name = party.Name
	case 1:
		name = fs.Arg(0)
	default:
		return errors.New("usage: partycollage delete [NAME]")
	}

	res, err := a.sessions.DeleteParty(ctx, name)
	if err != nil {
		return err
	}
	if !res.PartyRemoved {
		color.New(color.FgYellow).Fprintf(out, "No party named %s; ", name)
	}
	fmt.Fprintf(out, "Removed %d media items and signed out\n", res.MediaRemoved)
	return nil
}

func runCountdown(ctx context.Context, a *app, args []string, out io.Writer) error {
	party, err := a.sessions.CurrentParty(ctx)
	if err != nil {
		return err
	}
	c, ok := party.TimeLeft(time.Now())
	if !ok {
		fmt.Fprintf(out, "%s never expires\n", party.Name)
		return nil
	}
	fmt.Fprintf(out, "%s expires in %s\n", party.Name, c)
	return nil
}

func runSweep(ctx context.Context, a *app, args []string, out io.Writer) error {
	res := a.sessions.Sweep(ctx)
	if len(res.Expired) == 0 {
		fmt.Fprintln(out, "No expired parties")
		return nil
	}
	fmt.Fprintf(out, "Removed %d expired parties (%s) and %d media items\n",
		len(res.Expired), strings.Join(res.Expired, ", "), res.MediaRemoved)
	return nil
}

func runMigrate(ctx context.Context, a *app, args []string, out io.Writer) error {
	res, err := a.gallery.MigrateLegacy(ctx)
	if err != nil {
		return err
	}
	if res.AlreadyDone {
		fmt.Fprintln(out, "Legacy media already imported")
		return nil
	}
	fmt.Fprintf(out, "Imported %d items, skipped %d\n", res.Imported, res.Skipped)
	return nil
}

func runMedia(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: partycollage media list|add|rm")
	}
	switch args[0] {
	case "list", "ls":
		return runMediaList(ctx, a, args[1:], out)
	case "add":
		return runMediaAdd(ctx, a, args[1:], out)
	case "rm", "remove":
		return runMediaRemove(ctx, a, args[1:], out)
	default:
		return fmt.Errorf("unknown media command: %s", args[0])
	}
}

func runMediaList(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := newFlagSet("media list")
	sortBy := fs.String("sort", gallery.SortDate, "date, type, mood or color")
	typ := fs.String("type", gallery.FilterAll, "all, photos or videos")
	var tags stringList
	fs.Var(&tags, "tag", "only items with this tag (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.sessions.Sweep(ctx)
	items, err := a.gallery.List(ctx, gallery.ListOptions{SortBy: *sortBy, Type: *typ, Tags: tags})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No media")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tCREATOR\tTAKEN\tTAGS")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Type, item.Creator, item.Timestamp.Format(time.DateTime), strings.Join(item.Tags, " "))
	}
	return tw.Flush()
}

func runMediaAdd(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := newFlagSet("media add")
	typ := fs.String("type", store.MediaTypePhoto, "photo or video")
	url := fs.String("url", "", "media URL")
	file := fs.String("file", "", "embed a local file as a data URL")
	tags := fs.String("tags", "", "comma-separated tags")
	mood := fs.String("mood", "", "mood label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*url == "") == (*file == "") {
		return errors.New("exactly one of --url or --file is required")
	}

	item := &store.MediaItem{Type: *typ, URL: *url, Mood: *mood}
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("reading media file: %w", err)
		}
		item.URL = "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	for _, tag := range strings.Split(*tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			item.Tags = append(item.Tags, tag)
		}
	}
	if item.Mood != "" {
		item.Tags = append(item.Tags, "#"+strings.ToLower(item.Mood)+"vibes")
	}

	stored, err := a.gallery.Add(ctx, item)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprint(out, "✓ ")
	fmt.Fprintf(out, "Added %s %s", stored.Type, stored.ID)
	if stored.DominantColor != "" {
		fmt.Fprintf(out, " (%s)", stored.DominantColor)
	}
	fmt.Fprintln(out)
	return nil
}

func runMediaRemove(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: partycollage media rm ID")
	}
	if err := a.gallery.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %s\n", args[0])
	return nil
}

func runStats(ctx context.Context, a *app, args []string, out io.Writer) error {
	a.sessions.Sweep(ctx)

	items, err := a.store.ListMedia(ctx)
	if err != nil {
		return fmt.Errorf("listing media: %w", err)
	}
	photos, _ := gallery.FilterType(items, gallery.FilterPhotos)

	fmt.Fprintf(out, "parties: %d\n", len(a.sessions.Parties(ctx)))
	fmt.Fprintf(out, "media:   %d (%d photos, %d videos)\n", len(items), len(photos), len(items)-len(photos))

	if a.metrics == nil {
		return nil
	}

	samples, err := a.metrics.Snapshot()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, sample := range samples {
		fmt.Fprintln(out, sample)
	}
	return nil
}
