package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/control-theory/plotdeck/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|toggle]",
	Short:     "Show or change the persisted theme",
	Long:      `Without arguments, print the theme the next run starts with. With an argument, change and persist it.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(theme.Dark), string(theme.Light), "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := theme.DefaultStorePath()
		if err != nil {
			return err
		}
		return runTheme(cmd, theme.NewStore(path), args)
	},
}

func runTheme(cmd *cobra.Command, store *theme.Store, args []string) error {
	current, err := store.Load()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), current)
		return nil
	}

	state := theme.NewState(current)
	unsubscribe := store.Persist(state, func(saveErr error) { err = saveErr })
	defer unsubscribe()

	if args[0] == "toggle" {
		state.Toggle()
	} else {
		t, parseErr := theme.Parse(args[0])
		if parseErr != nil {
			return parseErr
		}
		state.Set(t)
	}
	if err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), state.Current())
	return nil
}
