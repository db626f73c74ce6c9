package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/xor-shift/chanserv/bot/chanstore"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the services on the terminal",
	Args:  cobra.NoArgs,
	RunE:  run,
}

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Manage registered channels",
}

func init() {
	channelCmd.AddCommand(channelRegisterCmd)
	channelCmd.AddCommand(channelDropCmd)
	channelCmd.AddCommand(channelListCmd)
	channelCmd.AddCommand(channelAccessCmd)
}

//withStore runs fn against a freshly opened store and closes it afterwards
func withStore(fn func(store *chanstore.Store) error) error {
	_, store, err := boot()
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}

func parseLevel(str string) (int, error) {
	level, err := strconv.Atoi(str)
	if err != nil {
		return 0, errors.Errorf("bad level %q", str)
	}
	return level, nil
}

var channelRegisterCmd = &cobra.Command{
	Use:   "register <channel> <founder>",
	Short: "Register a channel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *chanstore.Store) error {
			ci, err := store.Register(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s to %s\n", ci.Name, ci.Founder)
			return nil
		})
	},
}

var channelDropCmd = &cobra.Command{
	Use:   "drop <channel>",
	Short: "Drop a channel registration and its access list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *chanstore.Store) error {
			if err := store.Drop(args[0]); err != nil {
				return err
			}
			fmt.Printf("Dropped %s\n", args[0])
			return nil
		})
	},
}

var channelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered channels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *chanstore.Store) error {
			channels, err := store.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CHANNEL\tFOUNDER\tSET LEVEL\tDESCRIPTION")
			for _, ci := range channels {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", ci.Name, ci.Founder, ci.SetLevel, ci.Description)
			}
			return w.Flush()
		})
	},
}

var channelAccessCmd = &cobra.Command{
	Use:   "access <channel> <account> <level>",
	Short: "Set an account's access level on a channel, 0 removes it",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevel(args[2])
		if err != nil {
			return err
		}

		return withStore(func(store *chanstore.Store) error {
			if level == 0 {
				removed, err := store.DelAccess(args[0], args[1])
				if err == nil && !removed {
					fmt.Printf("%s has no access on %s\n", args[1], args[0])
				}
				return err
			}
			return store.SetAccess(args[0], args[1], level)
		})
	},
}

var setPermCmd = &cobra.Command{
	Use:   "setperm <ident> <level>",
	Short: "Set a user's services permission level",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevel(args[1])
		if err != nil {
			return err
		}

		return withStore(func(store *chanstore.Store) error {
			return store.SetUserPerm(args[0], level)
		})
	},
}
