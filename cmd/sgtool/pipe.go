package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sightglass-data/sgtool/internal/model"
	"github.com/sightglass-data/sgtool/internal/plugin"
	"github.com/sightglass-data/sgtool/internal/tui"
	"github.com/sightglass-data/sgtool/pkg/syncer"
)

type pipeOptions struct {
	NonInteractive bool
}

func newPipeCmd(root *rootFlags) *cobra.Command {
	opts := pipeOptions{}

	cmd := &cobra.Command{
		Use:   "pipe <source> <target> <directive>...",
		Short: "Move directives from a source syncer into a target syncer",
		Long: `Pipe constructs a source and a target syncer from SYNCER://DEFINITION
references, loads every directive from the source, and dumps the rows into the
target. Transactional stores commit once every transfer has succeeded and roll
back otherwise.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))
			return runPipe(cmd, root, opts, args)
		},
	}

	return cmd
}

func runPipe(cmd *cobra.Command, root *rootFlags, opts pipeOptions, args []string) error {
	directives := args[2:]
	for _, directive := range directives {
		if strings.TrimSpace(directive) == "" {
			return newCommandError("pipe", "validating directives", errors.New("directives cannot be empty"), "Pass the table, file, or key names to move.")
		}
	}

	sourceDef, err := plugin.ParseDefinition(args[0])
	if err != nil {
		return err
	}

	targetDef, err := plugin.ParseDefinition(args[1])
	if err != nil {
		return err
	}

	app, err := newAppContext(root)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	source, err := app.Resolver.Construct(ctx, sourceDef.Ref, sourceDef.Config)
	if err != nil {
		return err
	}
	defer closeSyncer(cmd, source, app)

	target, err := app.Resolver.Construct(ctx, targetDef.Ref, targetDef.Config)
	if err != nil {
		return err
	}
	defer closeSyncer(cmd, target, app)

	modelState := tui.NewModel(sourceDef.Ref, targetDef.Ref, directives)
	interactive := !opts.NonInteractive

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(modelState)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	transferErr := runTransfers(ctx, interactive, program, &modelState, source, target, directives)

	outcome, settleErr := settleStores(ctx, app, source, target, transferErr)
	dispatchTuiMessage(interactive, program, &modelState, outcome)

	if interactive {
		if program != nil {
			program.Send(tea.QuitMsg{})
		}
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), modelState.View())
	}

	if transferErr != nil {
		return transferErr
	}

	return settleErr
}

// runTransfers moves each directive from source to target in order, stopping
// at the first failure so the stores can be rolled back with as little
// half-written state as possible.
func runTransfers(ctx context.Context, interactive bool, program *tea.Program, state *tui.Model, source, target syncer.Syncer, directives []string) error {
	for _, directive := range directives {
		started := time.Now()
		dispatchTuiMessage(interactive, program, state, tui.TransferStartMsg{Directive: directive, Time: started})

		rows, err := source.Load(ctx, directive)
		if err == nil {
			err = target.Dump(ctx, directive, rows)
		}

		result := model.TransferResult{
			Directive: directive,
			Status:    model.StatusFailed,
			Duration:  time.Since(started),
		}
		if err == nil {
			result.Status = model.StatusSuccess
			result.Rows = len(rows)
		} else {
			result.Error = err
			result.Message = err.Error()
		}

		dispatchTuiMessage(interactive, program, state, tui.TransferCompleteMsg{Result: result})

		if err != nil {
			return fmt.Errorf("transfer %s: %w", directive, err)
		}
	}

	return nil
}

// settleStores commits every transactional store when all transfers succeeded
// and rolls them back otherwise. File- and object-backed stores carry no
// transaction, so a run touching none reports nothing to commit.
func settleStores(ctx context.Context, app *appContext, source, target syncer.Syncer, transferErr error) (tui.OutcomeMsg, error) {
	var stores []syncer.Syncer
	for _, s := range []syncer.Syncer{source, target} {
		if _, ok := s.(syncer.Transactor); ok {
			stores = append(stores, s)
		}
	}

	if len(stores) == 0 {
		return tui.OutcomeMsg{Committed: transferErr == nil, Message: "nothing to commit"}, nil
	}

	if transferErr != nil {
		rollbackStores(ctx, app, stores)
		return tui.OutcomeMsg{Committed: false, Message: fmt.Sprintf("rolled back %s", pluralStores(len(stores)))}, nil
	}

	for i, s := range stores {
		if err := s.(syncer.Transactor).Commit(ctx); err != nil {
			rollbackStores(ctx, app, stores[i+1:])
			outcome := tui.OutcomeMsg{Committed: false, Message: fmt.Sprintf("commit failed for %s", s.Name())}
			return outcome, fmt.Errorf("commit %s: %w", s.Name(), err)
		}
	}

	return tui.OutcomeMsg{Committed: true, Message: fmt.Sprintf("committed %s", pluralStores(len(stores)))}, nil
}

func rollbackStores(ctx context.Context, app *appContext, stores []syncer.Syncer) {
	for _, s := range stores {
		if err := s.(syncer.Transactor).Rollback(ctx); err != nil {
			app.Log.Warn(fmt.Sprintf("rolling back syncer %s: %v", s.Name(), err))
		}
	}
}

func pluralStores(n int) string {
	if n == 1 {
		return "1 store"
	}
	return fmt.Sprintf("%d stores", n)
}

func dispatchTuiMessage(interactive bool, program *tea.Program, state *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}
