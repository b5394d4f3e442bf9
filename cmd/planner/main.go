// Command planner is the terminal client for the daily planner server.
//
// With no arguments it opens the interactive day view. Subcommands cover
// account management, scripted listing and adding, and a headless reminder
// watcher.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/example/daily-planner/client/api"
	"github.com/example/daily-planner/client/creds"
	"github.com/example/daily-planner/client/notifier"
	"github.com/example/daily-planner/client/store"
	"github.com/example/daily-planner/client/ui"
)

const defaultBaseURL = "http://localhost:3000"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func run(args []string) int {
	if len(args) == 0 {
		return doTUI(today())
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		printHelp()
		return 0

	case "register":
		if len(a) != 1 {
			ui.Fail("usage: planner register <email>")
			return 2
		}
		return doRegister(a[0])

	case "login":
		if len(a) != 1 {
			ui.Fail("usage: planner login <email>")
			return 2
		}
		return doLogin(a[0])

	case "logout":
		return doLogout()

	case "ls":
		date := today()
		if len(a) == 1 {
			date = a[0]
		} else if len(a) > 1 {
			ui.Fail("usage: planner ls [date]")
			return 2
		}
		return doList(date)

	case "add":
		// planner add [date] HH:MM <title...>
		if len(a) < 2 {
			ui.Fail("usage: planner add [date] HH:MM <title...>")
			return 2
		}
		date := today()
		if _, err := time.Parse("2006-01-02", a[0]); err == nil {
			date = a[0]
			a = a[1:]
			if len(a) < 2 {
				ui.Fail("usage: planner add [date] HH:MM <title...>")
				return 2
			}
		}
		return doAdd(date, a[0], strings.Join(a[1:], " "))

	case "notify":
		return doNotify()

	case "view":
		date := today()
		if len(a) == 1 {
			date = a[0]
		}
		return doTUI(date)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	printHelp()
	return 2
}

func printHelp() {
	fmt.Printf(`planner - daily task planner client

Usage:
  planner [subcommand] [args]

Subcommands:
  (none)                      Open the interactive day view for today
  view [date]                 Open the interactive day view for a date
  register <email>            Create an account (prompts for password)
  login <email>               Log in and store the token (prompts for password)
  logout                      Remove the stored token
  ls [date]                   List tasks for a date (default today)
  add [date] HH:MM <title...> Add a task
  notify                      Watch for due reminders in the foreground

Environment:
  PLANNER_API_URL   Server base URL (default %s)
  PLANNER_TOKEN     Bearer token override (skips the credentials file)

Examples:
  planner login me@example.com
  planner add 09:30 "Stand-up meeting"
  planner ls 2026-09-01
`, defaultBaseURL)
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func baseURL() string {
	if v := strings.TrimSpace(os.Getenv("PLANNER_API_URL")); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultBaseURL
}

// authedClient builds a client with the stored token, failing when the user
// is not logged in.
func authedClient() (*api.Client, error) {
	ti, err := creds.GetToken()
	if err != nil {
		return nil, err
	}
	if ti == nil {
		return nil, fmt.Errorf("not logged in, run `planner login <email>` first")
	}
	return api.New(baseURL(), ti.Token), nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// -------------- subcommand impls ----------------

func doRegister(email string) int {
	password, err := promptPassword()
	if err != nil {
		ui.Fail("read password: " + err.Error())
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := api.New(baseURL(), "")
	if err := client.Register(ctx, email, password); err != nil {
		ui.Fail("register: " + errText(err))
		return 1
	}
	ui.Ok("account created, now run `planner login " + email + "`")
	return 0
}

func doLogin(email string) int {
	password, err := promptPassword()
	if err != nil {
		ui.Fail("read password: " + err.Error())
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := api.New(baseURL(), "")
	tokens, err := client.Login(ctx, email, password)
	if err != nil {
		ui.Fail("login: " + errText(err))
		return 1
	}

	var expires *time.Time
	if tokens.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		expires = &t
	}
	if err := creds.SetToken(tokens.AccessToken, expires); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.Ok("logged in as " + email)
	return 0
}

func doLogout() int {
	if err := creds.DeleteToken(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.Ok("logged out")
	return 0
}

func doList(date string) int {
	client, err := authedClient()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tasks, err := client.ListTasks(ctx, date)
	if err != nil {
		ui.Fail("list: " + errText(err))
		return 1
	}

	fmt.Println(ui.Heading(date, len(tasks)))
	if len(tasks) == 0 {
		fmt.Println(ui.Muted("no tasks"))
		return 0
	}
	for _, t := range tasks {
		fmt.Println(ui.TaskLine(t))
	}
	return 0
}

func doAdd(date, hhmm, title string) int {
	if _, err := time.Parse("15:04", hhmm); err != nil {
		ui.Fail("add: time must be HH:MM, got " + hhmm)
		return 2
	}
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail("add: empty title")
		return 2
	}

	client, err := authedClient()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := client.CreateTask(ctx, api.Draft{
		Date:  date,
		Title: title,
		Time:  hhmm,
	})
	if err != nil {
		ui.Fail("add: " + errText(err))
		return 1
	}
	ui.Ok("added " + created.Time + " " + created.Title)
	return 0
}

// doNotify polls the server every minute and rings the terminal bell for due
// reminders. Dedup records persist across runs.
func doNotify() int {
	client, err := authedClient()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}

	dir, err := creds.Dir()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	sent, err := notifier.OpenFileSentStore(filepath.Join(dir, "notifications.json"))
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	perms, err := notifier.OpenPermissionStore(filepath.Join(dir, "settings.json"))
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if perms.Query() != notifier.PermissionGranted {
		// The watcher only makes sense with notifications on; treat running
		// it as the user's decision.
		if err := perms.Set(notifier.PermissionGranted); err != nil {
			ui.Fail("enable notifications: " + err.Error())
			return 1
		}
	}

	snapshot := store.New()
	n := notifier.New(snapshot, sent, perms.Query)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	refresh := func(now time.Time) {
		rctx, rcancel := context.WithTimeout(ctx, 10*time.Second)
		defer rcancel()
		tasks, err := client.ListTasks(rctx, now.Format("2006-01-02"))
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.Muted("offline, retrying next minute"))
			return
		}
		snapshot.Replace(tasks)
	}

	fmt.Println(ui.Muted("watching for reminders, press Ctrl-C to stop"))
	refresh(time.Now())

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			ui.Ok("stopped")
			return 0
		case now := <-ticker.C:
			refresh(now)
			for _, ev := range n.Check(now) {
				fmt.Printf("\a%s %s\n", ui.Bell(), ev.Title)
			}
		}
	}
}

func doTUI(date string) int {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		ui.Fail("date must be YYYY-MM-DD, got " + date)
		return 2
	}

	client, err := authedClient()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}

	dir, err := creds.Dir()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	sent, err := notifier.OpenFileSentStore(filepath.Join(dir, "notifications.json"))
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	perms, err := notifier.OpenPermissionStore(filepath.Join(dir, "settings.json"))
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}

	snapshot := store.New()
	n := notifier.New(snapshot, sent, perms.Query)

	if err := ui.Run(client, snapshot, n, perms, date); err != nil {
		ui.Fail("ui: " + err.Error())
		return 1
	}
	return 0
}

// errText strips the client prefix from server errors for terminal output.
func errText(err error) string {
	if apiErr, ok := err.(*api.APIError); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
