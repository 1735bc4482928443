package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/adapters/file"
	"github.com/aretw0/parley/internal/adapters/openai"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/internal/sanitize"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"
)

const defaultModel = "gpt-3.5-turbo"

// BuildEngine loads the flow and wires the model provider.
func BuildEngine(ctx context.Context, opts RunOptions, logger *slog.Logger, engOpts ...parley.Option) (*parley.Engine, error) {
	loader := file.NewLoader(opts.FlowPath, file.WithLoaderLogger(logger))

	def, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	var provider ports.ModelProvider
	if opts.APIKey != "" || opts.BaseURL != "" {
		model := def.Identity.Model
		if model == "" {
			model = defaultModel
		}
		provOpts := []openai.Option{}
		if opts.BaseURL != "" {
			provOpts = append(provOpts, openai.WithBaseURL(opts.BaseURL))
		}
		provider = openai.New(opts.APIKey, model, provOpts...)
	}

	return parley.NewFromLoader(ctx, loader, provider,
		append([]parley.Option{parley.WithLogger(logger)}, engOpts...)...)
}

// RunInteractive starts the terminal conversation loop. When watch is
// true the definition is hot-reloaded on file changes.
func RunInteractive(ctx context.Context, opts RunOptions, watch bool) error {
	logger := createLogger(opts.Debug)

	eng, err := BuildEngine(ctx, opts, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	if err := eng.Validate(); err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		tui.PrintBanner()
	}

	render := func(s string) string { return s }
	if interactive {
		glam := tui.NewRenderer()
		render = func(s string) string {
			out, err := glam(s)
			if err != nil {
				return s
			}
			return strings.TrimRight(out, "\n") + "\n"
		}
	}

	if watch {
		changes, err := eng.Watch(ctx)
		if err != nil {
			return err
		}
		go func() {
			for range changes {
				if err := eng.Reload(ctx); err != nil {
					printSystemMessage("reload failed: %v", err)
					continue
				}
				printSystemMessage("definition reloaded")
			}
		}()
	}

	sess, save, err := openSession(ctx, opts, eng)
	if err != nil {
		return err
	}

	if state, ok := eng.Definition().State(sess.CurrentStateID); ok {
		fmt.Print(render(state.Prompt))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nBye!")
			return nil
		default:
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return nil
		}
		if strings.HasPrefix(input, "/") {
			handleCommand(input, sess)
			continue
		}

		input, err := sanitize.Input(input)
		if err != nil {
			printSystemMessage("input rejected: %v", err)
			continue
		}

		result, err := eng.ProcessUtterance(ctx, sess, input)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownState) {
				// The reloaded flow dropped our state; restart the session.
				printSystemMessage("current state no longer exists, restarting conversation")
				fresh := eng.StartSession(sess.ID)
				*sess = *fresh
				if state, ok := eng.Definition().State(sess.CurrentStateID); ok {
					fmt.Print(render(state.Prompt))
				}
				continue
			}
			return err
		}

		fmt.Print(render(result.Response))
		if err := save(ctx, sess); err != nil {
			logger.Warn("failed to persist session", "err", err)
		}

		if result.Disqualified {
			return nil
		}
		if state, ok := eng.Definition().State(sess.CurrentStateID); ok && state.Terminal {
			return nil
		}
	}
}

// openSession returns the session to drive and a save function. With a
// session ID the session is file-backed and resumable; otherwise it is
// ephemeral and save is a no-op.
func openSession(ctx context.Context, opts RunOptions, eng *parley.Engine) (*domain.Session, func(context.Context, *domain.Session) error, error) {
	if opts.SessionID == "" {
		noop := func(context.Context, *domain.Session) error { return nil }
		return eng.StartSession(""), noop, nil
	}

	mgr := session.NewManager(file.NewStore(opts.SessionDir))
	if opts.Fresh {
		if err := mgr.Delete(ctx, opts.SessionID); err != nil {
			return nil, nil, err
		}
	}

	sess, err := mgr.LoadOrStart(ctx, opts.SessionID, eng.Definition().InitialStateID)
	if err != nil {
		return nil, nil, err
	}
	printSystemMessage("Session '%s' active.", sess.ID)

	return sess, mgr.Save, nil
}

func handleCommand(input string, sess *domain.Session) {
	switch input {
	case "/usage":
		printSystemMessage("tokens in=%d out=%d total=%d cost=$%.4f",
			sess.Usage.InputTokens, sess.Usage.OutputTokens,
			sess.Usage.TotalTokens, sess.Usage.EstimatedCostUSD)
	case "/facts":
		if len(sess.Facts) == 0 {
			printSystemMessage("no facts collected yet")
			return
		}
		keys := make([]string, 0, len(sess.Facts))
		for k := range sess.Facts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			printSystemMessage("%s = %s", k, sess.Facts[k])
		}
	case "/state":
		printSystemMessage("current state: %s", sess.CurrentStateID)
	default:
		printSystemMessage("unknown command (try /usage, /facts, /state)")
	}
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}
