// Command smoketest проверяет запущенный сервер от начала до конца.
//
//	smoketest -url http://localhost:5000 -email demo@example.com -password Secret1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/maynagashev/autoassist/internal/apiclient"
)

type check struct {
	name string
	run  func(ctx context.Context) (string, error)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("smoketest", flag.ContinueOnError)
	fs.SetOutput(out)
	baseURL := fs.String("url", "http://localhost:5000", "server base URL")
	email := fs.String("email", "", "login email (optional)")
	password := fs.String("password", "", "login password (optional)")
	timeout := fs.Duration("timeout", 30*time.Second, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := apiclient.NewHTTPClient(*baseURL)
	checks := buildChecks(client, *email, *password)

	failed := 0
	for _, c := range checks {
		detail, err := c.run(ctx)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %-12s %v\n", c.name, err)
			continue
		}
		fmt.Fprintf(out, "ok   %-12s %s\n", c.name, detail)
	}

	fmt.Fprintf(out, "\n%d/%d checks passed against %s\n", len(checks)-failed, len(checks), *baseURL)
	if failed > 0 {
		return 1
	}
	return 0
}

func buildChecks(client apiclient.Client, email, password string) []check {
	checks := []check{
		{name: "health", run: func(ctx context.Context) (string, error) {
			env, err := client.Health(ctx)
			if err != nil {
				return "", err
			}
			return env.Message, nil
		}},
		{name: "index", run: func(ctx context.Context) (string, error) {
			env, err := client.Index(ctx)
			if err != nil {
				return "", err
			}
			return env.Message, nil
		}},
		{name: "cars", run: func(ctx context.Context) (string, error) {
			cars, page, err := client.ListCars(ctx, url.Values{"limit": {"5"}})
			if err != nil {
				return "", err
			}
			if page == nil {
				return "", errors.New("response has no pagination")
			}
			return fmt.Sprintf("%d of %d cars", len(cars), page.Total), nil
		}},
	}

	if email == "" || password == "" {
		return checks
	}
	return append(checks,
		check{name: "login", run: func(ctx context.Context) (string, error) {
			res, err := client.Login(ctx, email, password)
			if err != nil {
				return "", err
			}
			if res.User == nil {
				return "", errors.New("login response has no user")
			}
			return "user " + res.User.Username, nil
		}},
		check{name: "verify", run: func(ctx context.Context) (string, error) {
			user, err := client.Verify(ctx)
			if err != nil {
				return "", err
			}
			if user == nil {
				return "", errors.New("verify response has no user")
			}
			return fmt.Sprintf("token valid for user %d", user.ID), nil
		}},
	)
}
