package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/osirenko/finch/internal/client"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <category>",
		Short: "Set the category on a batch of transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, _ := cmd.Flags().GetInt64Slice("ids")
			if len(ids) == 0 {
				return fmt.Errorf("no transaction ids given")
			}

			s, c := newSession(nil)
			defer s.Close()

			if err := c.SetCategory(cmd.Context(), ids, args[0]); err != nil {
				return err
			}
			fmt.Printf("set category %q on %d transaction(s)\n", args[0], len(ids))
			return nil
		},
	}

	cmd.Flags().Int64Slice("ids", nil, "transaction ids, comma-separated")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}

			s, c := newSession(nil)
			defer s.Close()

			if err := c.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("deleted transaction %d\n", id)
			return nil
		},
	}
	return cmd
}

func tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <add|remove> <tag>",
		Short: "Add or remove a tag on a batch of transactions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var action client.TagAction
			switch args[0] {
			case "add":
				action = client.TagAdd
			case "remove":
				action = client.TagRemove
			default:
				return fmt.Errorf("action must be add or remove, got %q", args[0])
			}

			ids, _ := cmd.Flags().GetInt64Slice("ids")
			if len(ids) == 0 {
				return fmt.Errorf("no transaction ids given")
			}

			s, c := newSession(nil)
			defer s.Close()

			if err := c.ManageTag(cmd.Context(), ids, args[1], action); err != nil {
				return err
			}
			fmt.Printf("%s tag %q on %d transaction(s)\n", args[0], args[1], len(ids))
			return nil
		},
	}

	cmd.Flags().Int64Slice("ids", nil, "transaction ids, comma-separated")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}
