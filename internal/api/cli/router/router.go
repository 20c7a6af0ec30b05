package router

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dtroode/heartcare-server/internal/api/cli"
	"github.com/dtroode/heartcare-server/internal/api/cli/handler"
	"github.com/dtroode/heartcare-server/internal/api/cli/middleware"
	"github.com/dtroode/heartcare-server/internal/api/cli/session"
	"github.com/dtroode/heartcare-server/internal/logger"
)

type route struct {
	name    string
	usage   string
	summary string
	handler cli.HandlerFunc
}

// Router maps terminal commands to handlers and applies middleware.
type Router struct {
	authHandler     *handler.Auth
	analysisHandler *handler.Analysis
	holder          *session.Holder
	out             io.Writer
	logger          *logger.Logger
}

// New creates new Router instance. Help output goes to out.
func New(
	authHandler *handler.Auth,
	analysisHandler *handler.Analysis,
	holder *session.Holder,
	out io.Writer,
	logger *logger.Logger,
) *Router {
	return &Router{
		authHandler:     authHandler,
		analysisHandler: analysisHandler,
		holder:          holder,
		out:             out,
		logger:          logger,
	}
}

// Register builds the command table. Every command is logged, and the
// analysis commands require a logged in user.
func (r *Router) Register() *Mux {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.holder, r.logger)

	public := chain(logging.HandleCommand)
	private := chain(logging.HandleCommand, authenticate.HandleCommand)

	m := &Mux{routes: map[string]route{}}

	m.add(route{name: "signup", usage: "signup [username]", summary: "create an account",
		handler: public(r.authHandler.Signup)})
	m.add(route{name: "login", usage: "login [username]", summary: "log in",
		handler: public(r.authHandler.Login)})
	m.add(route{name: "logout", usage: "logout", summary: "log out",
		handler: public(r.authHandler.Logout)})
	m.add(route{name: "analyze", usage: "analyze <path>", summary: "upload an ECG image and classify it",
		handler: private(r.analysisHandler.Analyze)})
	m.add(route{name: "history", usage: "history", summary: "show your profile and recent results",
		handler: private(r.analysisHandler.History)})
	m.add(route{name: "reanalyze", usage: "reanalyze <n>", summary: "classify the n-th history entry again",
		handler: private(r.analysisHandler.Reanalyze)})
	m.add(route{name: "help", usage: "help", summary: "show this help",
		handler: func(context.Context, cli.Request) error {
			_, err := io.WriteString(r.out, m.Help())
			return err
		}})
	m.add(route{name: "exit", usage: "exit", summary: "leave",
		handler: func(context.Context, cli.Request) error { return cli.ErrExit }})

	return m
}

// chain applies mws so that the first one runs outermost.
func chain(mws ...cli.Middleware) func(cli.HandlerFunc) cli.HandlerFunc {
	return func(h cli.HandlerFunc) cli.HandlerFunc {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

// Mux dispatches parsed command lines.
type Mux struct {
	routes map[string]route
	order  []string
}

func (m *Mux) add(r route) {
	m.routes[r.name] = r
	m.order = append(m.order, r.name)
}

// Dispatch runs the command on line. Blank lines are ignored.
func (m *Mux) Dispatch(ctx context.Context, line string) error {
	req, ok := cli.ParseRequest(line)
	if !ok {
		return nil
	}

	r, ok := m.routes[req.Name]
	if !ok {
		return &cli.UnknownCommandError{Name: req.Name}
	}

	return r.handler(ctx, req)
}

// Help returns the command overview in registration order.
func (m *Mux) Help() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, name := range m.order {
		r := m.routes[name]
		fmt.Fprintf(tw, "  %s\t%s\n", r.usage, r.summary)
	}
	_ = tw.Flush()
	return b.String()
}
